// Package ratelimit — Redis destekli, IP bazlı fixed-window rate limiting.
//
// Tasarım:
// - Her (kural, IP) çifti için Redis'te atomik INCR sayacı tutulur.
// - Pencerenin ilk isteğinde key'e TTL verilir; TTL dolunca sayaç kendiliğinden silinir.
// - Limit aşılırsa caller 429 + Retry-After dönmeli.
//
// Neden Redis, in-memory değil?
// - Sayaçlar process restart'ında kaybolmamalı — saldırgan sunucuyu
//   yeniden başlatma penceresinde limiti sıfırlayamaz.
// - Birden fazla instance aynı sayaçları paylaşabilir.
//
// Neden ayrı paket?
// handlers ↔ middleware arasında import cycle oluşmaması için
// rate limiter bağımsız bir paket olarak konumlandırıldı.
// pkg/ratelimit sadece Counter interface'ine bağımlıdır (leaf dependency).
package ratelimit

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"
)

// Counter, limiter'ın ihtiyaç duyduğu sayaç operasyonları.
// Production'da pkg/redis.Client bu interface'i sağlar;
// testlerde miniredis destekli client ile aynı yol kullanılır.
type Counter interface {
	IncrementWithWindow(ctx context.Context, key string, window time.Duration) (int64, error)
	TTL(ctx context.Context, key string) (time.Duration, error)
}

// Rule, bir endpoint grubunun rate limit kuralı.
// Scope, Redis key'inin parçasıdır — farklı kurallar farklı sayaç tutar.
type Rule struct {
	Scope  string
	Limit  int64
	Window time.Duration
}

// Endpoint bazlı kurallar. Hassas endpoint'ler daha sıkı:
// brute-force hedefi olan login/reset düşük limitli, refresh daha gevşek.
var (
	LoginRule    = Rule{Scope: "login", Limit: 5, Window: 5 * time.Minute}
	RegisterRule = Rule{Scope: "register", Limit: 3, Window: time.Hour}
	RefreshRule  = Rule{Scope: "refresh", Limit: 10, Window: time.Minute}
	ResetRule    = Rule{Scope: "reset", Limit: 3, Window: time.Hour}
	VerifyRule   = Rule{Scope: "verify", Limit: 10, Window: 15 * time.Minute}
	GeneralRule  = Rule{Scope: "general", Limit: 120, Window: time.Minute}
)

// Result, tek bir Allow kontrolünün sonucu.
type Result struct {
	Allowed    bool
	Current    int64         // pencere içindeki güncel istek sayısı
	RetryAfter time.Duration // limit aşıldıysa kalan bekleme süresi
}

// Limiter, Counter üzerinden kuralları uygular.
type Limiter struct {
	counter Counter
}

// New, verilen sayaç backend'i ile Limiter oluşturur.
func New(counter Counter) *Limiter {
	return &Limiter{counter: counter}
}

// Allow, verilen IP'nin kurala göre istek yapmaya devam edebilip
// edemeyeceğini kontrol eder. Her çağrı sayacı artırır.
//
// Redis'e ulaşılamazsa error döner — karar caller'ındır.
// Middleware fail-open davranır: Redis down'ken login'i tamamen
// kilitlemek, rate limit'i kaçırmaktan daha kötü bir outage'dır.
func (l *Limiter) Allow(ctx context.Context, rule Rule, ip string) (Result, error) {
	key := "ratelimit:" + rule.Scope + ":" + ip

	count, err := l.counter.IncrementWithWindow(ctx, key, rule.Window)
	if err != nil {
		return Result{}, fmt.Errorf("rate limit counter failed: %w", err)
	}

	if count <= rule.Limit {
		return Result{Allowed: true, Current: count}, nil
	}

	// Limit aşıldı — kalan pencere süresini Retry-After için oku.
	retryAfter, err := l.counter.TTL(ctx, key)
	if err != nil || retryAfter <= 0 {
		retryAfter = rule.Window
	}
	return Result{Allowed: false, Current: count, RetryAfter: retryAfter}, nil
}

// ExtractIP, HTTP request'ten client IP adresini çıkarır.
//
// Öncelik sırası:
// 1. X-Forwarded-For header (reverse proxy arkasındaysa, ilk IP)
// 2. X-Real-IP header (nginx gibi proxy'ler ekler)
// 3. RemoteAddr (doğrudan bağlantı)
//
// Production'da uygulama genellikle nginx/Caddy arkasındadır —
// RemoteAddr o durumda proxy'nin IP'sidir, gerçek client header'dadır.
func ExtractIP(r *http.Request) string {
	// X-Forwarded-For: client, proxy1, proxy2 — ilk değer gerçek client
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		for i := 0; i < len(xff); i++ {
			if xff[i] == ',' {
				return xff[:i]
			}
		}
		return xff
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// FormatRetryMessage, kalan süreyi okunabilir formata çevirir.
// Örn: 120s → "2 minute(s)", 45s → "45 second(s)"
func FormatRetryMessage(d time.Duration) string {
	seconds := int(d.Round(time.Second).Seconds())
	if seconds < 1 {
		seconds = 1
	}
	if seconds >= 60 {
		return fmt.Sprintf("%d minute(s)", (seconds+59)/60)
	}
	return fmt.Sprintf("%d second(s)", seconds)
}
