package redis

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"time"
)

// Doğrulama kodu akışı (email verify + password reset):
//   - 6 haneli kod üretilir, email ile gönderilir, Redis'te 15 dk TTL ile saklanır
//   - Kullanıcı kodu girer; 3 yanlış denemede kod yakılır (brute force koruması)
//   - Yeni kod istemek için 60 sn cooldown (email spam koruması)
//
// Kod ve deneme sayacı ayrı key'lerde tutulur ama aynı TTL ile yaşarlar.

const (
	codeTTL         = 15 * time.Minute
	maxCodeAttempts = 3
	resendCooldown  = 60 * time.Second
)

// Kod doğrulama hataları. Hepsi client'a generic mesajla döner —
// ayrım sadece server log'ları içindir.
var (
	ErrCodeNotFound    = errors.New("verification code not found or expired")
	ErrCodeMismatch    = errors.New("verification code mismatch")
	ErrTooManyAttempts = errors.New("too many verification attempts")
	ErrResendCooldown  = errors.New("resend cooldown active")
)

// GenerateCode, kriptografik olarak güvenli 6 haneli kod üretir.
// math/rand KULLANMA — doğrulama kodu tahmin edilebilir olmamalı.
func GenerateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", fmt.Errorf("failed to generate code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// StoreCode, kodu verilen amaç (purpose: "verify" | "reset") için saklar.
// Önceki kod ve deneme sayacı sıfırlanır — yeni kod eskisini geçersiz kılar.
func (c *Client) StoreCode(ctx context.Context, purpose, email, code string) error {
	if err := c.Set(ctx, codeKey(purpose, email), code, codeTTL); err != nil {
		return err
	}
	if err := c.Delete(ctx, attemptsKey(purpose, email)); err != nil {
		return err
	}
	// Cooldown marker'ı — resend isteği bu key'e bakar.
	return c.Set(ctx, cooldownKey(purpose, email), "1", resendCooldown)
}

// CheckResendCooldown, yeni kod gönderilebilir mi kontrol eder.
// Cooldown aktifse ErrResendCooldown ve kalan süre döner.
func (c *Client) CheckResendCooldown(ctx context.Context, purpose, email string) (time.Duration, error) {
	remaining, err := c.TTL(ctx, cooldownKey(purpose, email))
	if errors.Is(err, ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	if remaining > 0 {
		return remaining, ErrResendCooldown
	}
	return 0, nil
}

// VerifyCode, girilen kodu saklanan ile karşılaştırır.
//
// Başarılı eşleşmede kod tek kullanımlıktır — hemen silinir.
// Yanlış denemede sayaç artar; limit aşılınca kod da yakılır ki
// saldırgan 4. denemeye doğru kodla bile devam edemesin.
func (c *Client) VerifyCode(ctx context.Context, purpose, email, code string) error {
	stored, err := c.Get(ctx, codeKey(purpose, email))
	if errors.Is(err, ErrNotFound) {
		return ErrCodeNotFound
	}
	if err != nil {
		return err
	}

	attempts, err := c.IncrementWithWindow(ctx, attemptsKey(purpose, email), codeTTL)
	if err != nil {
		return err
	}
	if attempts > maxCodeAttempts {
		_ = c.Delete(ctx, codeKey(purpose, email))
		return ErrTooManyAttempts
	}

	if stored != code {
		if attempts == maxCodeAttempts {
			_ = c.Delete(ctx, codeKey(purpose, email))
			return ErrTooManyAttempts
		}
		return ErrCodeMismatch
	}

	return c.Delete(ctx, codeKey(purpose, email), attemptsKey(purpose, email))
}

func codeKey(purpose, email string) string {
	return "code:" + purpose + ":" + email
}

func attemptsKey(purpose, email string) string {
	return "code_attempts:" + purpose + ":" + email
}

func cooldownKey(purpose, email string) string {
	return "code_cooldown:" + purpose + ":" + email
}

// --- Refresh token metadata cache ---
//
// Refresh endpoint'i sıcak yoldur: her access token yenilemesinde DB'ye
// gitmek yerine token hash → user_id eşlemesini kısa TTL ile cache'leriz.
// Cache sadece HINT'tir — rotation ve reuse detection her zaman DB
// transaction'ı içinde doğrulanır. Cache invalidation rotation anında yapılır.

const tokenMetaTTL = 5 * time.Minute

// CacheTokenUser, token hash → user_id eşlemesini yazar.
func (c *Client) CacheTokenUser(ctx context.Context, tokenHash, userID string) error {
	return c.Set(ctx, "rt_meta:"+tokenHash, userID, tokenMetaTTL)
}

// GetCachedTokenUser, cache'lenmiş user_id'yi okur. Yoksa ErrNotFound.
func (c *Client) GetCachedTokenUser(ctx context.Context, tokenHash string) (string, error) {
	return c.Get(ctx, "rt_meta:"+tokenHash)
}

// InvalidateTokenUser, rotation/revoke sonrası cache girdisini düşürür.
func (c *Client) InvalidateTokenUser(ctx context.Context, tokenHash string) error {
	return c.Delete(ctx, "rt_meta:"+tokenHash)
}

// --- Rate limit yardımcıları ---

// RateLimitKey, IP + endpoint bazlı sayaç key'i üretir.
func RateLimitKey(scope, ip string) string {
	return "ratelimit:" + scope + ":" + ip
}

// FormatRetryAfter, Retry-After header'ı için kalan süreyi saniyeye yuvarlar.
func FormatRetryAfter(d time.Duration) string {
	secs := int(d.Round(time.Second).Seconds())
	if secs < 1 {
		secs = 1
	}
	return strconv.Itoa(secs)
}
