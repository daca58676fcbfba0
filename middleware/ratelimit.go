package middleware

import (
	"log"
	"net/http"

	"github.com/akinalp/vita/pkg"
	"github.com/akinalp/vita/pkg/ratelimit"
	"github.com/akinalp/vita/pkg/redis"
)

// RateLimitMiddleware, IP bazlı rate limiting'i route'lara uygular.
// Her route grubu kendi kuralıyla sarılır:
//
//	mux.Handle("POST /api/auth/login", rl.Limit(ratelimit.LoginRule)(loginHandler))
type RateLimitMiddleware struct {
	limiter *ratelimit.Limiter
}

// NewRateLimitMiddleware, constructor.
func NewRateLimitMiddleware(limiter *ratelimit.Limiter) *RateLimitMiddleware {
	return &RateLimitMiddleware{limiter: limiter}
}

// Limit, verilen kuralla rate limiting middleware'ı üretir.
//
// Limit aşılınca: 429 + Retry-After header + okunabilir mesaj.
// Redis'e ulaşılamazsa FAIL-OPEN: istek geçer, hata loglanır.
// Login'i Redis outage'ında tamamen kilitlemek, limiti kaçırmaktan
// daha büyük bir hasardır.
func (m *RateLimitMiddleware) Limit(rule ratelimit.Rule) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := ratelimit.ExtractIP(r)

			result, err := m.limiter.Allow(r.Context(), rule, ip)
			if err != nil {
				log.Printf("[ratelimit] check failed (fail-open): %v", err)
				next.ServeHTTP(w, r)
				return
			}

			if !result.Allowed {
				log.Printf("[ratelimit] blocked: scope=%s ip=%s count=%d", rule.Scope, ip, result.Current)
				w.Header().Set("Retry-After", redis.FormatRetryAfter(result.RetryAfter))
				pkg.ErrorWithMessage(w, http.StatusTooManyRequests,
					"too many requests, try again in "+ratelimit.FormatRetryMessage(result.RetryAfter))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
