// Package middleware, HTTP request pipeline'ına eklenen ara katmanları barındırır.
//
// Middleware Pattern nedir?
// Her HTTP request, handler'a ulaşmadan önce bir veya daha fazla middleware'dan geçer.
// Zincir: Logging → Security → RateLimit → Auth → Handler
//
// Go'da middleware bir fonksiyondur:
//   func(next http.Handler) http.Handler
//
// "next" parametresi zincirdeki bir sonraki handler'dır.
// Middleware kendi işini yapar, sonra next'i çağırır.
// Hata varsa next'i çağırmaz → request burada durur.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/akinalp/vita/handlers"
	"github.com/akinalp/vita/models"
	"github.com/akinalp/vita/pkg"
	"github.com/akinalp/vita/pkg/cache"
	"github.com/akinalp/vita/repository"
	"github.com/akinalp/vita/services"
)

// AuthMiddleware, JWT token doğrulama middleware'ı.
//
// userCache: JWT geçerli olsa bile kullanıcı her request'te kontrol edilir
// (silinmiş/deaktive hesap erişemesin). Her request'te DB'ye gitmemek için
// kullanıcı kaydı kısa TTL ile bellekte tutulur.
type AuthMiddleware struct {
	authService services.AuthService
	userRepo    repository.UserRepository
	userCache   *cache.TTLCache[string, *models.User]
}

// NewAuthMiddleware, constructor.
func NewAuthMiddleware(
	authService services.AuthService,
	userRepo repository.UserRepository,
	userCache *cache.TTLCache[string, *models.User],
) *AuthMiddleware {
	return &AuthMiddleware{
		authService: authService,
		userRepo:    userRepo,
		userCache:   userCache,
	}
}

// Require, JWT token zorunlu kılan middleware.
//
// Akış:
// 1. "Authorization: Bearer <token>" header'ını parse et
// 2. AuthService.ValidateAccessToken() ile doğrula
// 3. Kullanıcıyı cache'ten (yoksa DB'den) getir, is_active kontrol et
// 4. Context'e ekle → next handler'ı çağır
//
// Tüm başarısızlıklar aynı generic 401 mesajına düşer (pkg.Error).
func (m *AuthMiddleware) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString, ok := bearerToken(r)
		if !ok {
			pkg.Error(w, pkg.ErrTokenNotFound)
			return
		}

		claims, err := m.authService.ValidateAccessToken(tokenString)
		if err != nil {
			pkg.Error(w, err)
			return
		}

		user, cached := m.userCache.Get(claims.UserID)
		if !cached {
			user, err = m.userRepo.GetByID(r.Context(), claims.UserID)
			if err != nil {
				// Token geçerli ama kullanıcı yok — hesap silinmiş olabilir.
				pkg.Error(w, pkg.ErrTokenRevoked)
				return
			}
			user.PasswordHash = ""
			m.userCache.Set(claims.UserID, user)
		}

		if !user.IsActive {
			pkg.Error(w, pkg.ErrAccountDeactivated)
			return
		}

		ctx := context.WithValue(r.Context(), handlers.UserContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// bearerToken, Authorization header'ından raw JWT'yi çıkarır.
func bearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
		return "", false
	}
	token := strings.TrimPrefix(authHeader, "Bearer ")
	if token == "" {
		return "", false
	}
	return token, true
}
