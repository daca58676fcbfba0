// Package models — Refresh token modeli ve rotation durum makinesi.
//
// Neden refresh token ayrı tabloda?
// Access token kısa ömürlü (1 saat) — imza ile stateless doğrulanır.
// Refresh token uzun ömürlü (30 gün) — access token yenilemek için kullanılır.
// Refresh token'ları DB'de tutarak:
//   - Çalınan token'ı iptal edebiliriz (revoke)
//   - Kullanıcının tüm cihaz oturumlarını görebiliriz
//   - Rotation lineage'ını takip edip reuse detection yapabiliriz
package models

import "time"

// TokenState, bir refresh token'ın rotation durum makinesindeki halidir.
//
// Geçişler:
//   active → rotated  (başarılı refresh — replaced_by_id set edilir)
//   active → expired  (zaman bazlı, doğrulama anında hesaplanır)
//   active/rotated → revoked (logout, explicit revoke veya reuse detection)
type TokenState string

const (
	TokenStateActive  TokenState = "active"
	TokenStateRotated TokenState = "rotated"
	TokenStateExpired TokenState = "expired"
	TokenStateRevoked TokenState = "revoked"
)

// RefreshToken, bir cihaz oturumunun DB kaydı.
//
// TokenHash: Raw token'ın SHA-256 hex hash'i (64 karakter).
// Raw token sadece issuance anında client'a döner, bir daha üretilemez.
// DB sızsa bile hash'ten token'a geri dönülemez.
//
// ReplacedByID / ParentTokenID: rotation lineage zinciri.
// Eski token rotate edildiğinde ReplacedByID yeni token'ı gösterir;
// yeni token ParentTokenID ile eskisine bağlanır. Reuse detection bu
// zinciri ileri yönde yürüyerek tüm torunları revoke eder.
type RefreshToken struct {
	ID            string     `json:"id"`
	UserID        string     `json:"user_id"`
	TokenHash     string     `json:"-"` // API'ye gönderilmez
	DeviceID      *string    `json:"device_id"`
	DeviceName    *string    `json:"device_name"`
	UserAgent     *string    `json:"-"`
	IPAddress     *string    `json:"-"`
	IssuedAt      time.Time  `json:"issued_at"`
	ExpiresAt     time.Time  `json:"expires_at"`
	IsRevoked     bool       `json:"is_revoked"`
	RevokedAt     *time.Time `json:"revoked_at"`
	ReplacedByID  *string    `json:"-"`
	ParentTokenID *string    `json:"-"`
}

// State, token'ın verilen andaki rotation durumunu hesaplar.
//
// Sıralama önemli: revoked/rotated, expired'dan ÖNCE kontrol edilir.
// Süresi dolmuş AMA rotate edilmiş bir token hâlâ reuse kanıtıdır —
// saldırgan eski bir token'la gelirse lineage yine de poison edilmeli.
func (t *RefreshToken) State(now time.Time) TokenState {
	if t.IsRevoked {
		if t.ReplacedByID != nil {
			return TokenStateRotated
		}
		return TokenStateRevoked
	}
	if now.After(t.ExpiresAt) {
		return TokenStateExpired
	}
	return TokenStateActive
}

// DeviceInfo, issuance sırasında request'ten çıkarılan client bilgileri.
// Hepsi opsiyonel — header göndermeyen client'lar için nil kalır.
type DeviceInfo struct {
	DeviceID   *string
	DeviceName *string
	UserAgent  *string
	IPAddress  *string
}

// RefreshRequest, POST /api/auth/refresh body'si.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// LogoutRequest, POST /api/auth/logout body'si.
type LogoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// LogoutAllRequest, POST /api/auth/logout-all body'si.
// ExceptToken verilirse o cihazın oturumu açık kalır.
type LogoutAllRequest struct {
	ExceptToken string `json:"except_token"`
}
