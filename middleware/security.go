package middleware

import "net/http"

// SecurityHeaders, her response'a temel güvenlik header'larını ekler ve
// request body boyutunu sınırlar.
//
// Bu bir JSON API'dir — header set'i ona göre seçildi:
//   - nosniff: browser'ın content-type tahminini kapatır
//   - DENY: API response'ları iframe'e gömülemez
//   - CSP default-src 'none': API çıktısı yanlışlıkla sayfa olarak
//     render edilirse hiçbir kaynak yüklenmez
//
// MaxBytesReader: dev JSON body'leri decode aşamasında keser —
// bellek şişirme saldırısına karşı ilk savunma hattı.
func SecurityHeaders(maxBodySize int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-Frame-Options", "DENY")
			h.Set("Referrer-Policy", "no-referrer")
			h.Set("Content-Security-Policy", "default-src 'none'")
			h.Set("Cache-Control", "no-store")

			if r.Body != nil && maxBodySize > 0 {
				r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
			}

			next.ServeHTTP(w, r)
		})
	}
}
