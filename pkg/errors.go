// Package pkg, projede paylaşılan utility'leri barındırır.
// Bu dosya domain-level error tanımlarını içerir.
//
// Go'da error'lar basit değerlerdir (string taşıyan struct'lar).
// errors.New() ile sabit error değişkenleri tanımlarız.
// Böylece error karşılaştırması string yerine referans ile yapılır:
//
//	if errors.Is(err, pkg.ErrNotFound) { ... }
//
// Bu, typo'ya açık string karşılaştırmasından çok daha güvenlidir.
package pkg

import "errors"

// Domain-level error'lar.
// Handler katmanı bu error'ları HTTP status code'larına map'ler.
// Service katmanı bunları döner, handler yakalar.
var (
	ErrNotFound      = errors.New("not found")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrForbidden     = errors.New("forbidden")
	ErrAlreadyExists = errors.New("already exists")
	ErrBadRequest    = errors.New("bad request")
	ErrInternal      = errors.New("internal error")
	ErrRateLimited   = errors.New("rate limited")
)

// Auth hata taksonomisi.
//
// Bu error'lar service katmanında AYRI AYRI üretilir ve loglanır,
// ama HTTP response'ta HEPSİ aynı generic 401 mesajına düşer.
//
// Neden? Enumeration/oracle saldırılarını önlemek için:
// "token expired" vs "token revoked" vs "token not found" ayrımı
// saldırgana sistemin iç durumu hakkında bilgi sızdırır.
// Client sadece yetkisiz olduğunu bilir, asıl sebep server loglarında kalır.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountNotVerified = errors.New("account not verified")
	ErrAccountDeactivated = errors.New("account deactivated")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenRevoked       = errors.New("token revoked")
	ErrTokenNotFound      = errors.New("token not found")
	ErrTokenReuseDetected = errors.New("token reuse detected")
)

// IsAuthError, verilen error'ın auth taksonomisine ait olup olmadığını döner.
// Response katmanı bu kontrole göre generic 401 mesajı üretir.
func IsAuthError(err error) bool {
	for _, target := range []error{
		ErrInvalidCredentials,
		ErrAccountNotVerified,
		ErrAccountDeactivated,
		ErrTokenExpired,
		ErrTokenRevoked,
		ErrTokenNotFound,
		ErrTokenReuseDetected,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
