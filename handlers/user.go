package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/akinalp/vita/models"
	"github.com/akinalp/vita/pkg"
	"github.com/akinalp/vita/services"
)

// UserHandler, profil endpoint'lerini yöneten struct.
// Tüm endpoint'ler auth middleware arkasındadır — kullanıcı context'ten gelir.
type UserHandler struct {
	userService services.UserService
}

// NewUserHandler, constructor.
func NewUserHandler(userService services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// Me godoc
// GET /api/users/me
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r)
	if !ok {
		pkg.Error(w, pkg.ErrUnauthorized)
		return
	}

	// Cache'teki kopya stale olabilir — taze kaydı service'ten al.
	profile, err := h.userService.GetProfile(r.Context(), user.ID)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, profile)
}

// UpdateMe godoc
// PATCH /api/users/me
// Body: { "full_name": "...", "profile_image": "...", "timezone": "..." }
// Sadece gönderilen field'lar güncellenir.
func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r)
	if !ok {
		pkg.Error(w, pkg.ErrUnauthorized)
		return
	}

	var req models.UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	updated, err := h.userService.UpdateProfile(r.Context(), user.ID, &req)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, updated)
}

// ChangePassword godoc
// POST /api/users/me/change-password
// Body: { "current_password": "...", "new_password": "..." }
func (h *UserHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r)
	if !ok {
		pkg.Error(w, pkg.ErrUnauthorized)
		return
	}

	var req struct {
		CurrentPassword string `json:"current_password"`
		NewPassword     string `json:"new_password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.userService.ChangePassword(r.Context(), user.ID, req.CurrentPassword, req.NewPassword); err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, map[string]string{"message": "password changed, other sessions logged out"})
}

// DeactivateMe godoc
// POST /api/users/me/deactivate
// Body: { "password": "..." }
// Soft delete — hesap geri açılabilir (support akışıyla).
func (h *UserHandler) DeactivateMe(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r)
	if !ok {
		pkg.Error(w, pkg.ErrUnauthorized)
		return
	}

	var req struct {
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.userService.DeactivateAccount(r.Context(), user.ID, req.Password); err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, map[string]string{"message": "account deactivated"})
}
