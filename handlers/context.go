// Package handlers, HTTP handler katmanını barındırır.
//
// Handler'ın görevi İNCE olmak:
// 1. Request'i parse et (JSON decode, URL parametreleri)
// 2. Service'i çağır
// 3. Response'u yaz (pkg.JSON / pkg.Error)
//
// İş kuralı handler'da YAŞAMAZ — service katmanındadır.
package handlers

import (
	"net/http"

	"github.com/akinalp/vita/models"
)

// contextKey, context.WithValue için özel tip.
// Neden string değil? Farklı paketlerin aynı string key'i kullanıp
// birbirinin değerini ezmesini önlemek için — tip sistemi çakışmayı imkansız kılar.
type contextKey string

// UserContextKey, auth middleware'in context'e koyduğu *models.User'ın anahtarı.
const UserContextKey contextKey = "user"

// UserFromContext, request context'inden login olmuş kullanıcıyı çıkarır.
// Auth middleware'den geçmemiş bir route'ta çağrılırsa (nil, false) döner.
func UserFromContext(r *http.Request) (*models.User, bool) {
	user, ok := r.Context().Value(UserContextKey).(*models.User)
	return user, ok
}
