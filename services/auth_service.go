// Package services, business logic katmanını barındırır.
//
// Service Layer Pattern nedir?
// Handler (HTTP/WS) ile Repository (DB) arasında oturan katmandır.
// Tüm iş kuralları burada yaşar:
//   - Şifre hash'leme, JWT üretme
//   - Refresh token rotation ve reuse detection
//   - Doğrulama kodu akışları
//
// Service ASLA http.Request/Response bilmez — sadece domain modelleri alır/verir.
// Service ASLA doğrudan SQL çalıştırmaz — Repository interface'i kullanır.
package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/akinalp/vita/database"
	"github.com/akinalp/vita/models"
	"github.com/akinalp/vita/pkg"
	"github.com/akinalp/vita/pkg/email"
	"github.com/akinalp/vita/pkg/redis"
	"github.com/akinalp/vita/repository"
)

// Doğrulama kodu amaçları — Redis key namespace'i olarak kullanılır.
const (
	codePurposeVerify = "verify"
	codePurposeReset  = "reset"
)

// scopePasswordReset, reset JWT'sinin scope claim değeri.
// Bu scope'lu token API erişimi için KULLANILAMAZ — sadece
// reset-password endpoint'i kabul eder.
const scopePasswordReset = "password_reset"

// resetTokenExpiry, verify-reset-code sonrası dönen JWT'nin ömrü.
const resetTokenExpiry = 15 * time.Minute

// expiredTokenGracePeriod: süresi dolan token'lar hemen silinmez —
// bir süre DB'de kalır ki geç gelen reuse denemeleri tespit edilip
// loglanabilsin. Cleanup job bu süreden eski olanları siler.
const expiredTokenGracePeriod = 7 * 24 * time.Hour

// AuthService interface'i — dışarıya açık API.
// Handler bu interface'e bağımlıdır, concrete struct'a değil.
type AuthService interface {
	// Register, kullanıcı kaydı oluşturur ve doğrulama kodu gönderir.
	// Token DÖNMEZ — email doğrulanana kadar login yapılamaz.
	Register(ctx context.Context, req *models.RegisterRequest) (*models.User, error)
	VerifyEmail(ctx context.Context, req *models.VerifyEmailRequest) error
	ResendVerificationCode(ctx context.Context, emailAddr string) error

	Login(ctx context.Context, req *models.LoginRequest, device *models.DeviceInfo) (*AuthResult, error)

	// Refresh, rotation yapar: eski refresh token'ı revoke eder, yenisini
	// üretir. Revoke edilmiş (rotate edilmiş) bir token ile çağrılırsa
	// reuse detection tetiklenir ve ilgili lineage komple revoke edilir.
	Refresh(ctx context.Context, rawToken string, device *models.DeviceInfo) (*AuthResult, error)

	Logout(ctx context.Context, rawToken string) error
	LogoutAll(ctx context.Context, userID, exceptRawToken string) (int, error)

	ForgotPassword(ctx context.Context, emailAddr string) error
	VerifyResetCode(ctx context.Context, emailAddr, code string) (string, error)
	ResetPassword(ctx context.Context, req *models.ResetPasswordRequest) error

	// ValidateAccessToken, JWT'yi doğrular. Reset scope'lu token'ları reddeder.
	ValidateAccessToken(tokenString string) (*models.TokenClaims, error)

	// CleanupExpiredTokens, grace period'u geçmiş token'ları siler.
	// Background cleanup job'ı tarafından periyodik çağrılır.
	CleanupExpiredTokens(ctx context.Context) (int64, error)
}

// AuthResult, login/refresh sonrası dönen token çifti + kullanıcı.
type AuthResult struct {
	Tokens models.TokenPair `json:"tokens"`
	User   models.User      `json:"user"`
}

// TokenRepoFactory, verilen querier'a (DB veya Tx) bağlı token repo üretir.
// Rotation transaction içinde tx-scoped repo'ya ihtiyaç duyar.
type TokenRepoFactory func(db database.TxQuerier) repository.RefreshTokenRepository

// authService, AuthService interface'inin implementasyonu.
type authService struct {
	conn         *sql.DB
	userRepo     repository.UserRepository
	tokenRepo    repository.RefreshTokenRepository
	newTokenRepo TokenRepoFactory
	rdb          *redis.Client
	sender       email.EmailSender // nil → email devre dışı, kodlar loglanır
	jwtSecret    []byte
	accessExp    time.Duration
	refreshExp   time.Duration
}

// NewAuthService, constructor.
//
// sender nil olabilir: RESEND_API_KEY yoksa email gönderimi devre dışı
// kalır ve doğrulama kodları sadece loglanır (development kolaylığı).
func NewAuthService(
	conn *sql.DB,
	userRepo repository.UserRepository,
	newTokenRepo TokenRepoFactory,
	rdb *redis.Client,
	sender email.EmailSender,
	jwtSecret string,
	accessExpMinutes int,
	refreshExpDays int,
) AuthService {
	return &authService{
		conn:         conn,
		userRepo:     userRepo,
		tokenRepo:    newTokenRepo(conn),
		newTokenRepo: newTokenRepo,
		rdb:          rdb,
		sender:       sender,
		jwtSecret:    []byte(jwtSecret),
		accessExp:    time.Duration(accessExpMinutes) * time.Minute,
		refreshExp:   time.Duration(refreshExpDays) * 24 * time.Hour,
	}
}

// Register, yeni kullanıcı kaydı oluşturur.
//
// Akış: validate → bcrypt hash → user insert → doğrulama kodu üret +
// email gönder. Kayıt token DÖNDÜRMEZ: doğrulanmamış hesap login olamaz,
// dolayısıyla kayıt anında oturum açmak tutarsız olurdu.
func (s *authService) Register(ctx context.Context, req *models.RegisterRequest) (*models.User, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", pkg.ErrBadRequest, err.Error())
	}

	// Bcrypt hash (cost=12)
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), 12)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	var fullName *string
	if req.FullName != "" {
		fullName = &req.FullName
	}

	user := &models.User{
		Email:        req.Email,
		PasswordHash: string(hash),
		FullName:     fullName,
		Timezone:     "UTC",
		IsActive:     true,
		IsVerified:   false,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, pkg.ErrAlreadyExists) {
			return nil, fmt.Errorf("%w: email already registered", pkg.ErrAlreadyExists)
		}
		return nil, err
	}

	if err := s.sendCode(ctx, codePurposeVerify, user.Email); err != nil {
		// Kayıt başarılı ama kod gönderilemedi — kullanıcı resend-code ile
		// tekrar isteyebilir. Kaydı geri almak daha kötü bir deneyim olur.
		log.Printf("[auth] failed to send verification code to %s: %v", user.Email, err)
	}

	user.PasswordHash = ""
	return user, nil
}

// VerifyEmail, 6 haneli kod ile email doğrulamasını tamamlar.
func (s *authService) VerifyEmail(ctx context.Context, req *models.VerifyEmailRequest) error {
	if err := req.Validate(); err != nil {
		return fmt.Errorf("%w: %s", pkg.ErrBadRequest, err.Error())
	}

	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, pkg.ErrNotFound) {
			// Kod hatasıyla aynı mesaj — email enumeration engeli.
			return fmt.Errorf("%w: invalid or expired code", pkg.ErrBadRequest)
		}
		return err
	}
	if user.IsVerified {
		return nil // idempotent — tekrar doğrulama zararsız
	}

	if err := s.rdb.VerifyCode(ctx, codePurposeVerify, req.Email, req.Code); err != nil {
		log.Printf("[auth] email verification failed for %s: %v", req.Email, err)
		return fmt.Errorf("%w: invalid or expired code", pkg.ErrBadRequest)
	}

	if err := s.userRepo.SetVerified(ctx, user.ID); err != nil {
		return err
	}

	log.Printf("[auth] email verified: %s", req.Email)
	return nil
}

// ResendVerificationCode, yeni doğrulama kodu üretip gönderir.
// 60 sn cooldown — email spam koruması.
func (s *authService) ResendVerificationCode(ctx context.Context, emailAddr string) error {
	user, err := s.userRepo.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, pkg.ErrNotFound) {
			return nil // enumeration engeli — her durumda "gönderildi" görünür
		}
		return err
	}
	if user.IsVerified {
		return nil
	}

	if remaining, err := s.rdb.CheckResendCooldown(ctx, codePurposeVerify, emailAddr); err != nil {
		if errors.Is(err, redis.ErrResendCooldown) {
			return fmt.Errorf("%w: please wait %d seconds before requesting a new code",
				pkg.ErrRateLimited, int(remaining.Seconds())+1)
		}
		return err
	}

	return s.sendCode(ctx, codePurposeVerify, emailAddr)
}

// Login, kimlik doğrulaması yapar ve token çifti üretir.
//
// Tüm başarısızlık yolları (email yok, şifre yanlış, doğrulanmamış,
// deaktive) handler katmanında AYNI generic 401 mesajına düşer —
// ayrım sadece server loglarında görünür.
func (s *authService) Login(ctx context.Context, req *models.LoginRequest, device *models.DeviceInfo) (*AuthResult, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", pkg.ErrBadRequest, err.Error())
	}

	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, pkg.ErrNotFound) {
			// Timing side-channel'ı küçült: kullanıcı yokken de bcrypt çalıştır.
			_, _ = bcrypt.GenerateFromPassword([]byte(req.Password), 12)
			log.Printf("[auth] login failed: unknown email %s", req.Email)
			return nil, pkg.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		log.Printf("[auth] login failed: wrong password for %s", req.Email)
		return nil, pkg.ErrInvalidCredentials
	}

	if !user.IsVerified {
		log.Printf("[auth] login blocked: unverified account %s", req.Email)
		return nil, pkg.ErrAccountNotVerified
	}
	if !user.IsActive {
		log.Printf("[auth] login blocked: deactivated account %s", req.Email)
		return nil, pkg.ErrAccountDeactivated
	}

	raw, _, err := s.issueRefreshToken(ctx, s.tokenRepo, user.ID, device, nil)
	if err != nil {
		return nil, err
	}

	return s.buildAuthResult(user, raw)
}

// Refresh, refresh token rotation'ın kalbi.
//
// Tüm karar + yazma adımları TEK transaction içinde koşar:
//  1. Token'ı hash ile bul
//  2. Duruma göre dallan:
//     - active  → conditional revoke (yarışın kazananı belirlenir) + yeni token
//     - rotated → REUSE: lineage + cihaz token'ları komple revoke edilir
//     - revoked → REUSE: revoke edilmiş token'ın sunulması da şüphelidir
//     - expired → reddet
//
// İki eşzamanlı refresh aynı token'la gelirse: _txlock=immediate sayesinde
// her transaction BEGIN IMMEDIATE ile açılır ve yazma kilidini baştan alır —
// transaction'lar serileşir. Kaybeden, kazanan commit ettikten SONRA okur,
// token'ı rotate edilmiş görür ve reuse yoluna düşer. Yarış penceresi yoktur.
func (s *authService) Refresh(ctx context.Context, rawToken string, device *models.DeviceInfo) (*AuthResult, error) {
	if rawToken == "" {
		return nil, fmt.Errorf("%w: refresh_token is required", pkg.ErrBadRequest)
	}
	tokenHash := hashToken(rawToken)

	var (
		user   *models.User
		newRaw string
	)

	txErr := database.WithTx(ctx, s.conn, func(tx *sql.Tx) error {
		repo := s.newTokenRepo(tx)
		now := time.Now().UTC()

		token, err := repo.GetByTokenHash(ctx, tokenHash)
		if err != nil {
			if errors.Is(err, pkg.ErrTokenNotFound) {
				log.Printf("[auth] refresh failed: unknown token hash")
				return pkg.ErrTokenNotFound
			}
			return err
		}

		switch token.State(now) {
		case models.TokenStateActive:
			affected, err := repo.RevokeIfActive(ctx, token.ID, now)
			if err != nil {
				return err
			}
			if affected == 0 {
				// Yarışı kaybettik — token az önce başka bir request
				// tarafından rotate edildi. Reuse gibi ele al.
				return s.handleReuse(ctx, repo, token, now)
			}

			user, err = s.userRepo.GetByID(ctx, token.UserID)
			if err != nil {
				return err
			}
			if !user.IsActive {
				log.Printf("[auth] refresh blocked: deactivated account %s", user.Email)
				return pkg.ErrAccountDeactivated
			}

			newRaw, _, err = s.rotateToken(ctx, repo, token, device)
			return err

		case models.TokenStateRotated:
			// Rotate edilmiş token tekrar kullanıldı — REUSE.
			// Meşru client eski token'ı asla tekrar göndermez:
			// ya token çalındı ya da client ciddi şekilde bozuk.
			return s.handleReuse(ctx, repo, token, now)

		case models.TokenStateRevoked:
			// Revoke edilmiş token'ın tekrar sunulması da reuse muamelesi
			// görür: logout sonrası meşru client o token'ı bir daha
			// göndermez, gönderense ya çalıntı kopyadır ya bozuk client.
			// Zincir zaten ölüdür ama cihaz token'ları da süpürülür.
			log.Printf("[auth] refresh rejected: revoked token presented again, user %s", token.UserID)
			return s.handleReuse(ctx, repo, token, now)

		default: // expired
			log.Printf("[auth] refresh rejected: expired token for user %s", token.UserID)
			return pkg.ErrTokenExpired
		}
	})
	if txErr != nil {
		// Eski cache girdisini her durumda düşür.
		_ = s.rdb.InvalidateTokenUser(ctx, tokenHash)
		return nil, txErr
	}

	_ = s.rdb.InvalidateTokenUser(ctx, tokenHash)
	return s.buildAuthResult(user, newRaw)
}

// handleReuse, reuse detection'ın temizlik adımı. Transaction içinde koşar.
//
// Konservatif yaklaşım: sadece zinciri değil, aynı kullanıcı + cihazın
// TÜM aktif token'larını da revoke ederiz. Token çalındıysa saldırganın
// o cihaz üzerinden aldığı tüm oturumlar kapanır; meşru kullanıcı
// yeniden login olur. Güvenlik > kullanım konforu.
func (s *authService) handleReuse(ctx context.Context, repo repository.RefreshTokenRepository, token *models.RefreshToken, now time.Time) error {
	descendants, err := repo.RevokeDescendants(ctx, token.ID, now)
	if err != nil {
		return err
	}

	deviceRevoked := 0
	if token.DeviceID != nil {
		deviceRevoked, err = repo.RevokeDeviceTokens(ctx, token.UserID, *token.DeviceID, now)
		if err != nil {
			return err
		}
	}

	log.Printf("[auth] TOKEN REUSE DETECTED: user=%s token=%s descendants_revoked=%d device_revoked=%d",
		token.UserID, token.ID, descendants, deviceRevoked)

	return pkg.ErrTokenReuseDetected
}

// rotateToken, eski token'ın yerine yenisini üretir ve lineage'ı bağlar.
func (s *authService) rotateToken(ctx context.Context, repo repository.RefreshTokenRepository, old *models.RefreshToken, device *models.DeviceInfo) (string, *models.RefreshToken, error) {
	// Cihaz bilgisi gelmemişse eski token'ınki devralınır —
	// lineage boyunca cihaz kimliği korunur.
	if device == nil {
		device = &models.DeviceInfo{
			DeviceID:   old.DeviceID,
			DeviceName: old.DeviceName,
			UserAgent:  old.UserAgent,
			IPAddress:  old.IPAddress,
		}
	} else if device.DeviceID == nil {
		device.DeviceID = old.DeviceID
	}

	raw, newToken, err := s.issueRefreshToken(ctx, repo, old.UserID, device, &old.ID)
	if err != nil {
		return "", nil, err
	}

	if err := repo.SetReplacedBy(ctx, old.ID, newToken.ID); err != nil {
		return "", nil, err
	}

	return raw, newToken, nil
}

// Logout, refresh token'ı revoke eder. Bilinmeyen token hata değildir —
// logout idempotent'tir, client her durumda çıkış yapmış sayılır.
func (s *authService) Logout(ctx context.Context, rawToken string) error {
	if rawToken == "" {
		return nil
	}
	tokenHash := hashToken(rawToken)

	token, err := s.tokenRepo.GetByTokenHash(ctx, tokenHash)
	if err != nil {
		if errors.Is(err, pkg.ErrTokenNotFound) {
			return nil
		}
		return err
	}

	if _, err := s.tokenRepo.RevokeIfActive(ctx, token.ID, time.Now().UTC()); err != nil {
		return err
	}
	_ = s.rdb.InvalidateTokenUser(ctx, tokenHash)

	log.Printf("[auth] logout: user=%s token=%s", token.UserID, token.ID)
	return nil
}

// LogoutAll, kullanıcının tüm oturumlarını kapatır.
// exceptRawToken verilirse o cihazın oturumu açık kalır.
// Dönen değer: revoke edilen token sayısı.
func (s *authService) LogoutAll(ctx context.Context, userID, exceptRawToken string) (int, error) {
	exceptID := ""
	if exceptRawToken != "" {
		token, err := s.tokenRepo.GetByTokenHash(ctx, hashToken(exceptRawToken))
		if err == nil && token.UserID == userID {
			exceptID = token.ID
		}
	}

	revoked, err := s.tokenRepo.RevokeAllForUser(ctx, userID, exceptID, time.Now().UTC())
	if err != nil {
		return 0, err
	}

	log.Printf("[auth] logout-all: user=%s revoked=%d", userID, revoked)
	return revoked, nil
}

// ForgotPassword, şifre sıfırlama kodu gönderir.
// Her durumda başarı döner — email'in kayıtlı olup olmadığı sızdırılmaz.
func (s *authService) ForgotPassword(ctx context.Context, emailAddr string) error {
	user, err := s.userRepo.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, pkg.ErrNotFound) {
			log.Printf("[auth] forgot-password for unknown email %s (ignored)", emailAddr)
			return nil
		}
		return err
	}
	if !user.IsActive {
		return nil
	}

	if remaining, err := s.rdb.CheckResendCooldown(ctx, codePurposeReset, emailAddr); err != nil {
		if errors.Is(err, redis.ErrResendCooldown) {
			return fmt.Errorf("%w: please wait %d seconds before requesting a new code",
				pkg.ErrRateLimited, int(remaining.Seconds())+1)
		}
		return err
	}

	return s.sendCode(ctx, codePurposeReset, emailAddr)
}

// VerifyResetCode, sıfırlama kodunu doğrular ve kısa ömürlü reset JWT'si döner.
//
// Neden iki adım (kod → JWT → yeni şifre)?
// Client kodu doğruladıktan sonra kullanıcı yeni şifresini yazarken
// kod expire olabilir. JWT, "kod doğrulandı" kanıtını 15 dk taşır
// ve tek amaçlıdır (scope=password_reset).
func (s *authService) VerifyResetCode(ctx context.Context, emailAddr, code string) (string, error) {
	user, err := s.userRepo.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, pkg.ErrNotFound) {
			return "", fmt.Errorf("%w: invalid or expired code", pkg.ErrBadRequest)
		}
		return "", err
	}

	if err := s.rdb.VerifyCode(ctx, codePurposeReset, emailAddr, code); err != nil {
		log.Printf("[auth] reset code verification failed for %s: %v", emailAddr, err)
		return "", fmt.Errorf("%w: invalid or expired code", pkg.ErrBadRequest)
	}

	now := time.Now()
	claims := &models.TokenClaims{
		UserID: user.ID,
		Scope:  scopePasswordReset,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(resetTokenExpiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    "vita",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign reset token: %w", err)
	}
	return signed, nil
}

// ResetPassword, reset JWT'si ile yeni şifreyi kaydeder.
// Şifre değişince kullanıcının TÜM oturumları kapatılır —
// çalınan hesabı kurtaran kullanıcı saldırganı da dışarı atar.
func (s *authService) ResetPassword(ctx context.Context, req *models.ResetPasswordRequest) error {
	if err := req.Validate(); err != nil {
		return fmt.Errorf("%w: %s", pkg.ErrBadRequest, err.Error())
	}

	claims, err := s.parseToken(req.ResetToken)
	if err != nil || claims.Scope != scopePasswordReset {
		return pkg.ErrTokenExpired
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), 12)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.userRepo.UpdatePassword(ctx, claims.UserID, string(hash)); err != nil {
		return err
	}

	revoked, err := s.tokenRepo.RevokeAllForUser(ctx, claims.UserID, "", time.Now().UTC())
	if err != nil {
		return err
	}

	log.Printf("[auth] password reset: user=%s sessions_revoked=%d", claims.UserID, revoked)
	return nil
}

// ValidateAccessToken, JWT access token'ı doğrular ve claims'i döner.
func (s *authService) ValidateAccessToken(tokenString string) (*models.TokenClaims, error) {
	claims, err := s.parseToken(tokenString)
	if err != nil {
		return nil, pkg.ErrTokenExpired
	}
	// Reset token'ı API erişimi için kullanılamaz.
	if claims.Scope != "" {
		return nil, pkg.ErrTokenExpired
	}
	return claims, nil
}

// CleanupExpiredTokens, grace period'u geçmiş token'ları fiziksel siler.
func (s *authService) CleanupExpiredTokens(ctx context.Context) (int64, error) {
	before := time.Now().UTC().Add(-expiredTokenGracePeriod)
	return s.tokenRepo.DeleteExpired(ctx, before)
}

// ─── Private Helpers ───

// hashToken, raw refresh token'ın SHA-256 hex hash'ini üretir.
// DB'de sadece hash saklanır — DB sızsa bile token'lar kullanılamaz.
func hashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// issueRefreshToken, 32 byte random token üretir, hash'ini DB'ye yazar.
// Raw token SADECE burada var olur — dönen string client'a gider,
// bir daha üretilemez.
func (s *authService) issueRefreshToken(ctx context.Context, repo repository.RefreshTokenRepository, userID string, device *models.DeviceInfo, parentID *string) (string, *models.RefreshToken, error) {
	rawBytes := make([]byte, 32)
	if _, err := rand.Read(rawBytes); err != nil {
		return "", nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}
	raw := hex.EncodeToString(rawBytes)

	now := time.Now().UTC()
	token := &models.RefreshToken{
		UserID:        userID,
		TokenHash:     hashToken(raw),
		IssuedAt:      now,
		ExpiresAt:     now.Add(s.refreshExp),
		ParentTokenID: parentID,
	}
	if device != nil {
		token.DeviceID = device.DeviceID
		token.DeviceName = device.DeviceName
		token.UserAgent = device.UserAgent
		token.IPAddress = device.IPAddress
	}

	if err := repo.Create(ctx, token); err != nil {
		return "", nil, err
	}

	// Hot-path cache: refresh endpoint'i için hash → user eşlemesi.
	// Sadece hint'tir — asıl doğrulama her zaman DB transaction'ında.
	_ = s.rdb.CacheTokenUser(ctx, token.TokenHash, userID)

	return raw, token, nil
}

// buildAuthResult, access JWT'yi imzalar ve sonucu paketler.
func (s *authService) buildAuthResult(user *models.User, rawRefresh string) (*AuthResult, error) {
	now := time.Now()
	claims := &models.TokenClaims{
		UserID: user.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessExp)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    "vita",
		},
	}

	accessToken := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := accessToken.SignedString(s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign access token: %w", err)
	}

	user.PasswordHash = ""

	return &AuthResult{
		Tokens: models.TokenPair{
			AccessToken:  signed,
			RefreshToken: rawRefresh,
			TokenType:    "bearer",
		},
		User: *user,
	}, nil
}

func (s *authService) parseToken(tokenString string) (*models.TokenClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.TokenClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*models.TokenClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}
	return claims, nil
}

// sendCode, amaca göre kod üretir, Redis'e yazar ve email gönderir.
// Email devre dışıysa (sender nil) kod loglanır.
func (s *authService) sendCode(ctx context.Context, purpose, emailAddr string) error {
	code, err := redis.GenerateCode()
	if err != nil {
		return err
	}

	if err := s.rdb.StoreCode(ctx, purpose, emailAddr, code); err != nil {
		return fmt.Errorf("failed to store %s code: %w", purpose, err)
	}

	if s.sender == nil {
		log.Printf("[auth] email disabled — %s code for %s: %s", purpose, emailAddr, code)
		return nil
	}

	switch purpose {
	case codePurposeReset:
		err = s.sender.SendResetCode(ctx, emailAddr, code)
	default:
		err = s.sender.SendVerificationCode(ctx, emailAddr, code)
	}
	if err != nil {
		return fmt.Errorf("failed to send %s email: %w", purpose, err)
	}

	log.Printf("[auth] %s code sent to %s", purpose, emailAddr)
	return nil
}
