package middleware

import (
	"bytes"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/akinalp/vita/pkg/redis"
)

// ResponseCacheMiddleware, GET endpoint'lerinin JSON çıktısını Redis'te tutar.
//
// Kurallar:
//   - Sadece GET istekleri cache'lenir
//   - Sadece 200 yanıtlar cache'lenir
//   - "X-No-Cache: 1" header'ı cache'i bypass eder (debug/force refresh)
//   - Cache hit → "X-Cache: HIT" header'ı ile doğrudan Redis'ten servis
//
// Kullanıcıya özel veriler için KULLANILMAZ — key'de kullanıcı kimliği yok.
// Ülke listesi gibi herkese aynı dönen endpoint'ler içindir.
type ResponseCacheMiddleware struct {
	rdb *redis.Client
}

// NewResponseCacheMiddleware, constructor.
func NewResponseCacheMiddleware(rdb *redis.Client) *ResponseCacheMiddleware {
	return &ResponseCacheMiddleware{rdb: rdb}
}

// bodyRecorder, response body'yi hem client'a hem buffer'a yazar.
type bodyRecorder struct {
	http.ResponseWriter
	status int
	buf    bytes.Buffer
}

func (r *bodyRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *bodyRecorder) Write(b []byte) (int, error) {
	r.buf.Write(b)
	return r.ResponseWriter.Write(b)
}

// Cache, verilen TTL ile response cache middleware'ı üretir.
func (m *ResponseCacheMiddleware) Cache(ttl time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet || r.Header.Get("X-No-Cache") != "" {
				next.ServeHTTP(w, r)
				return
			}

			key := cacheKey(r)

			if cached, err := m.rdb.Get(r.Context(), key); err == nil {
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("X-Cache", "HIT")
				w.WriteHeader(http.StatusOK)
				_, _ = w.Write([]byte(cached))
				return
			} else if !errors.Is(err, redis.ErrNotFound) {
				// Redis hatası cache miss gibi davranır — endpoint çalışmaya devam eder.
				log.Printf("[cache] read failed (treating as miss): %v", err)
			}

			rec := &bodyRecorder{ResponseWriter: w, status: http.StatusOK}
			rec.Header().Set("X-Cache", "MISS")
			next.ServeHTTP(rec, r)

			if rec.status == http.StatusOK && rec.buf.Len() > 0 {
				if err := m.rdb.Set(r.Context(), key, rec.buf.String(), ttl); err != nil {
					log.Printf("[cache] write failed: %v", err)
				}
			}
		})
	}
}

// Invalidate, path pattern'ine uyan cache girdilerini düşürür.
// Örn: veri değişince Invalidate(ctx üzerinden) "GET /api/countries*".
func (m *ResponseCacheMiddleware) Invalidate(r *http.Request, pattern string) {
	if _, err := m.rdb.DeleteByPattern(r.Context(), "cache:"+pattern); err != nil {
		log.Printf("[cache] invalidation failed: %v", err)
	}
}

// cacheKey, path + query'den deterministik key üretir.
// MD5 burada güvenlik için değil, kısa ve sabit uzunlukta key için —
// collision riski bu kullanımda pratikte yok.
func cacheKey(r *http.Request) string {
	sum := md5.Sum([]byte(r.URL.Path + "?" + r.URL.RawQuery))
	return "cache:" + hex.EncodeToString(sum[:])
}
