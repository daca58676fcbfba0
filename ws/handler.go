package ws

import (
	"context"
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/akinalp/vita/models"
)

// TokenValidator, WebSocket handler'ın JWT doğrulaması için kullandığı interface.
//
// Neden services.AuthService değil?
// Interface Segregation: handler'ın tek ihtiyacı ValidateAccessToken.
// main.go'da authService bu interface'i implicit olarak karşılar.
type TokenValidator interface {
	ValidateAccessToken(tokenString string) (*models.TokenClaims, error)
}

// upgrader, HTTP bağlantısını WebSocket'e yükseltir.
//
// WebSocket upgrade: bağlantı normal HTTP isteği olarak başlar,
// "Upgrade: websocket" handshake'i ile kalıcı çift yönlü kanala dönüşür.
func newUpgrader(allowedOrigins []string) websocket.Upgrader {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}

	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		// CheckOrigin: CORS listesiyle aynı origin seti.
		// Origin header'sız istekler (native mobil client'lar) kabul edilir —
		// origin kontrolü browser tabanlı CSRF'e karşıdır, native client
		// zaten header'ı istediği gibi set edebilir.
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				return true
			}
			return allowed[origin]
		},
	}
}

// Handler, WebSocket bağlantı isteklerini işleyen HTTP handler'ı.
type Handler struct {
	hub            *Hub
	tokenValidator TokenValidator
	chat           ChatStreamer
	upgrader       websocket.Upgrader
}

// NewHandler, constructor.
func NewHandler(hub *Hub, tokenValidator TokenValidator, chat ChatStreamer, allowedOrigins []string) *Handler {
	return &Handler{
		hub:            hub,
		tokenValidator: tokenValidator,
		chat:           chat,
		upgrader:       newUpgrader(allowedOrigins),
	}
}

// HandleConnection, GET /ws/chat?token=JWT isteğini WebSocket'e yükseltir.
//
// Token neden query parameter'da?
// Browser WebSocket API'si custom header göndermeye izin vermez.
// Access token kısa ömürlü olduğu için URL'de taşınması kabul edilebilir
// bir risk — yine de access log'larda query string maskelenmeli.
//
// Akış:
// 1. Query'den token al, doğrula
// 2. HTTP → WebSocket upgrade
// 3. Client oluştur, Hub'a kaydet
// 4. WritePump goroutine'de, ReadPump bu goroutine'de (bağlantı boyunca bloklar)
func (h *Handler) HandleConnection(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		http.Error(w, "missing token", http.StatusUnauthorized)
		return
	}

	claims, err := h.tokenValidator.ValidateAccessToken(token)
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[ws] upgrade failed for user %s: %v", claims.UserID, err)
		return
	}

	// Bağlantı ömrüne bağlı context — disconnect'te devam eden
	// AI stream'leri bu context üzerinden iptal edilir.
	ctx, cancel := context.WithCancel(context.Background())

	client := &Client{
		hub:    h.hub,
		conn:   conn,
		userID: claims.UserID,
		send:   make(chan []byte, sendBufferSize),
		ctx:    ctx,
		cancel: cancel,
		chat:   h.chat,
	}

	h.hub.register <- client

	go client.WritePump()
	client.ReadPump() // bağlantı kapanana kadar bloklar
}
