package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/akinalp/vita/models"
	"github.com/akinalp/vita/pkg"
	"github.com/akinalp/vita/pkg/ratelimit"
	"github.com/akinalp/vita/services"
)

// AuthHandler, auth endpoint'lerini yöneten struct.
// Rate limiting route seviyesinde middleware olarak uygulanır —
// handler içinde limit kontrolü YOK, handler sadece köprü.
type AuthHandler struct {
	authService services.AuthService
}

// NewAuthHandler, constructor.
func NewAuthHandler(authService services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// deviceInfo, request header'larından cihaz bilgilerini çıkarır.
// X-Device-Id / X-Device-Name opsiyonel client header'larıdır;
// user agent ve IP her zaman alınır. Token kaydına issuance
// metadata'sı olarak yazılır.
func deviceInfo(r *http.Request) *models.DeviceInfo {
	info := &models.DeviceInfo{}

	if v := r.Header.Get("X-Device-Id"); v != "" {
		info.DeviceID = &v
	}
	if v := r.Header.Get("X-Device-Name"); v != "" {
		info.DeviceName = &v
	}
	if v := r.UserAgent(); v != "" {
		info.UserAgent = &v
	}
	if ip := ratelimit.ExtractIP(r); ip != "" {
		info.IPAddress = &ip
	}

	return info
}

// Register godoc
// POST /api/auth/register
// Token DÖNMEZ — önce email doğrulanmalı.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest

	// json.NewDecoder: Request body'yi Go struct'ına parse eder.
	// r.Body bir io.Reader'dır — stream olarak okunur, hepsini belleğe almaz.
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.authService.Register(r.Context(), &req)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusCreated, map[string]any{
		"user":    user,
		"message": "verification code sent to your email",
	})
}

// VerifyEmail godoc
// POST /api/auth/verify-email
// Body: { "email": "...", "code": "123456" }
func (h *AuthHandler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	var req models.VerifyEmailRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.authService.VerifyEmail(r.Context(), &req); err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, map[string]string{"message": "email verified"})
}

// ResendCode godoc
// POST /api/auth/resend-code
// Body: { "email": "..." }
// Email kayıtlı olsun olmasın aynı yanıt döner (enumeration engeli).
func (h *AuthHandler) ResendCode(w http.ResponseWriter, r *http.Request) {
	var req models.ForgotPasswordRequest // aynı shape: sadece email

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.authService.ResendVerificationCode(r.Context(), req.Email); err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, map[string]string{"message": "if the email is registered, a code has been sent"})
}

// Login godoc
// POST /api/auth/login
//
// Rate limiting route middleware'inde (ratelimit.LoginRule).
// Başarısızlık sebebi ne olursa olsun response aynı generic 401'dir.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.authService.Login(r.Context(), &req, deviceInfo(r))
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, result)
}

// Refresh godoc
// POST /api/auth/refresh
// Body: { "refresh_token": "..." }
//
// Rotation: dönen refresh token YENİDİR, eskisi artık geçersizdir.
// Client her refresh sonrası sakladığı token'ı değiştirmek zorundadır.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req models.RefreshRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.RefreshToken == "" {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "refresh_token is required")
		return
	}

	result, err := h.authService.Refresh(r.Context(), req.RefreshToken, deviceInfo(r))
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, result)
}

// Logout godoc
// POST /api/auth/logout
// Body: { "refresh_token": "..." }
// Idempotent — bilinmeyen token da 200 döner.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	var req models.LogoutRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.authService.Logout(r.Context(), req.RefreshToken); err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

// LogoutAll godoc
// POST /api/auth/logout-all  (auth gerekli)
// Body: { "except_token": "..." } — verilirse o cihaz açık kalır.
func (h *AuthHandler) LogoutAll(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r)
	if !ok {
		pkg.Error(w, pkg.ErrUnauthorized)
		return
	}

	var req models.LogoutAllRequest
	// Body opsiyonel — boş body geçerli.
	_ = json.NewDecoder(r.Body).Decode(&req)

	revoked, err := h.authService.LogoutAll(r.Context(), user.ID, req.ExceptToken)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, map[string]any{"revoked_sessions": revoked})
}

// ForgotPassword godoc
// POST /api/auth/forgot-password
// Body: { "email": "..." }
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req models.ForgotPasswordRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.authService.ForgotPassword(r.Context(), req.Email); err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, map[string]string{"message": "if the email is registered, a reset code has been sent"})
}

// VerifyResetCode godoc
// POST /api/auth/verify-reset-code
// Body: { "email": "...", "code": "123456" }
// Başarıda 15 dk ömürlü reset token döner.
func (h *AuthHandler) VerifyResetCode(w http.ResponseWriter, r *http.Request) {
	var req models.VerifyEmailRequest // aynı shape: email + code

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	resetToken, err := h.authService.VerifyResetCode(r.Context(), req.Email, req.Code)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, map[string]string{"reset_token": resetToken})
}

// ResetPassword godoc
// POST /api/auth/reset-password
// Body: { "reset_token": "...", "new_password": "..." }
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req models.ResetPasswordRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.authService.ResetPassword(r.Context(), &req); err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, map[string]string{"message": "password reset, please login again"})
}
