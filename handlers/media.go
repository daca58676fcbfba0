package handlers

import (
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"

	"github.com/akinalp/vita/pkg"
	"github.com/akinalp/vita/services"
)

// MediaHandler, chat dosya eki endpoint'lerini yönetir.
// Dosya içeriği public URL ile DEĞİL, ownership kontrolü yapan
// download endpoint'i üzerinden servis edilir — depo private kalır.
type MediaHandler struct {
	mediaService services.MediaService
}

// NewMediaHandler, constructor.
func NewMediaHandler(mediaService services.MediaService) *MediaHandler {
	return &MediaHandler{mediaService: mediaService}
}

// Upload godoc
// POST /api/chat/uploads — multipart form, "file" field'ı.
// Yanıt: pending durumda MediaUpload kaydı (upload_id client'ta kalır).
func (h *MediaHandler) Upload(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r)
	if !ok {
		pkg.Error(w, pkg.ErrUnauthorized)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "multipart form with a 'file' field is required")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")

	upload, err := h.mediaService.Upload(r.Context(), user.ID,
		header.Filename, contentType, header.Size, file)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusCreated, map[string]any{"upload": upload})
}

// List godoc
// GET /api/chat/uploads
func (h *MediaHandler) List(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r)
	if !ok {
		pkg.Error(w, pkg.ErrUnauthorized)
		return
	}

	uploads, err := h.mediaService.List(r.Context(), user.ID)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, map[string]any{"uploads": uploads})
}

// Download godoc
// GET /api/chat/uploads/{id}/content
// JSON envelope DEĞİL — dosya içeriğini olduğu gibi stream eder.
func (h *MediaHandler) Download(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r)
	if !ok {
		pkg.Error(w, pkg.ErrUnauthorized)
		return
	}

	upload, rc, err := h.mediaService.Download(r.Context(), user.ID, r.PathValue("id"))
	if err != nil {
		pkg.Error(w, err)
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", upload.MimeType)
	w.Header().Set("Content-Length", strconv.FormatInt(upload.SizeBytes, 10))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", upload.FileName))

	if _, err := io.Copy(w, rc); err != nil {
		// Header'lar gitti, yanıt yarıda kesildi — sadece logla.
		log.Printf("[media] streaming %s interrupted: %v", upload.ID, err)
	}
}

// Delete godoc
// DELETE /api/chat/uploads/{id}
func (h *MediaHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r)
	if !ok {
		pkg.Error(w, pkg.ErrUnauthorized)
		return
	}

	if err := h.mediaService.Delete(r.Context(), user.ID, r.PathValue("id")); err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, map[string]string{"message": "upload deleted"})
}
