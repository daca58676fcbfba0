package middleware

import (
	"bufio"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/akinalp/vita/pkg/ratelimit"
)

// statusRecorder, ResponseWriter'ı sarıp yazılan status code'u yakalar.
// http.ResponseWriter status'u geri okutmaz — kendimiz kaydederiz.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Hijack, WebSocket upgrade'inin wrapper'dan geçebilmesi için gerekli.
// gorilla/websocket, ResponseWriter'ın http.Hijacker olmasını bekler.
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	if hj, ok := r.ResponseWriter.(http.Hijacker); ok {
		return hj.Hijack()
	}
	return nil, nil, http.ErrNotSupported
}

func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// RequestLogger, her request'i method/path/status/süre/IP ile loglar.
//
// Body ve header'lar LOGLANMAZ: auth endpoint'lerinden şifre ve token
// geçer, access log'a sızmamalılar.
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		log.Printf("[http] %s %s %d %s ip=%s",
			r.Method, r.URL.Path, rec.status, time.Since(start).Round(time.Microsecond), ratelimit.ExtractIP(r))
	})
}
