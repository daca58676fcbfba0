package repository

import (
	"context"
	"time"

	"github.com/akinalp/vita/models"
)

// RefreshTokenRepository, refresh token rotation için veri erişim interface'i.
//
// Rotation'ın güvenlik açısından kritik operasyonu RevokeIfActive'dir:
// "token'ı revoke et AMA sadece hâlâ aktifse" — tek bir conditional UPDATE.
// İki eşzamanlı refresh isteğinden yalnızca biri bu UPDATE'te satır
// etkileyebilir; kaybeden taraf reuse yoluna düşer.
type RefreshTokenRepository interface {
	Create(ctx context.Context, token *models.RefreshToken) error
	GetByTokenHash(ctx context.Context, tokenHash string) (*models.RefreshToken, error)

	// RevokeIfActive, token'ı revoke eder ve etkilenen satır sayısını döner.
	// 1 → bu çağrı token'ı revoke etti (rotation yarışının kazananı).
	// 0 → token zaten revoke edilmişti (kaybeden, veya reuse girişimi).
	RevokeIfActive(ctx context.Context, id string, revokedAt time.Time) (int64, error)

	// SetReplacedBy, rotate edilen token'ın lineage pointer'ını yeni token'a bağlar.
	SetReplacedBy(ctx context.Context, id, replacedByID string) error

	// RevokeDescendants, verilen token'dan başlayıp replaced_by_id zincirini
	// ileri yönde yürüyerek tüm torunları revoke eder. Reuse detection'ın
	// "lineage poisoning" adımıdır.
	RevokeDescendants(ctx context.Context, id string, revokedAt time.Time) (int, error)

	// RevokeAllForUser, kullanıcının tüm aktif token'larını revoke eder.
	// exceptID boş değilse o token atlanır (logout-all-except-current).
	RevokeAllForUser(ctx context.Context, userID, exceptID string, revokedAt time.Time) (int, error)

	// RevokeDeviceTokens, kullanıcı + cihaz çiftinin tüm aktif token'larını
	// revoke eder. Reuse detection'ın konservatif temizlik adımı.
	RevokeDeviceTokens(ctx context.Context, userID, deviceID string, revokedAt time.Time) (int, error)

	// DeleteExpired, süresi en az graceperiod kadar önce dolmuş token'ları
	// fiziksel olarak siler. Background cleanup job'ı tarafından çağrılır.
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}
