package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/akinalp/vita/pkg"
	"github.com/akinalp/vita/services"
)

// ChatHandler, chat thread REST endpoint'lerini yönetir.
// Mesaj GÖNDERİMİ burada değildir — streaming gerektirdiği için
// WebSocket üzerinden yapılır (ws paketi). REST tarafı thread
// listeleme/okuma/arşivleme/silme işlerini kapsar.
type ChatHandler struct {
	chatService services.ChatService
}

// NewChatHandler, constructor.
func NewChatHandler(chatService services.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

// ListThreads godoc
// GET /api/chat/threads?include_archived=1
func (h *ChatHandler) ListThreads(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r)
	if !ok {
		pkg.Error(w, pkg.ErrUnauthorized)
		return
	}

	includeArchived := r.URL.Query().Get("include_archived") != ""

	threads, err := h.chatService.ListThreads(r.Context(), user.ID, includeArchived)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, map[string]any{"threads": threads})
}

// GetThread godoc
// GET /api/chat/threads/{id}
// Thread + tüm mesajları döner.
func (h *ChatHandler) GetThread(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r)
	if !ok {
		pkg.Error(w, pkg.ErrUnauthorized)
		return
	}

	threadID := r.PathValue("id")

	thread, messages, err := h.chatService.GetThread(r.Context(), user.ID, threadID)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, map[string]any{
		"thread":   thread,
		"messages": messages,
	})
}

// ArchiveThread godoc
// POST /api/chat/threads/{id}/archive
// Body: { "archived": true|false }
func (h *ChatHandler) ArchiveThread(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r)
	if !ok {
		pkg.Error(w, pkg.ErrUnauthorized)
		return
	}

	var req struct {
		Archived bool `json:"archived"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.chatService.ArchiveThread(r.Context(), user.ID, r.PathValue("id"), req.Archived); err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, map[string]bool{"archived": req.Archived})
}

// DeleteThread godoc
// DELETE /api/chat/threads/{id}
func (h *ChatHandler) DeleteThread(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r)
	if !ok {
		pkg.Error(w, pkg.ErrUnauthorized)
		return
	}

	if err := h.chatService.DeleteThread(r.Context(), user.ID, r.PathValue("id")); err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, map[string]string{"message": "thread deleted"})
}
