package ws

import (
	"encoding/json"
	"log"
	"sync"
	"sync/atomic"
)

// Hub, tüm WebSocket bağlantılarını yöneten merkezi yapıdır.
//
// Chat stream'leri client'a özel aktığı için Hub'ın asıl işi herkese
// broadcast değil, bağlantı yaşam döngüsüdür: kayıt, çıkarma, graceful
// shutdown. BroadcastToUser yine mevcuttur — bir kullanıcının tüm
// cihazlarına bildirim (ör: başka cihazdan thread silindi) göndermek için.
type Hub struct {
	// clients: userID → Client set (bir kullanıcının birden fazla cihazı olabilir).
	// Go'da set yoktur — map[*Client]bool kullanılır, bool her zaman true'dur.
	clients map[string]map[*Client]bool

	// mu: clients map'ini koruyan read-write mutex.
	mu sync.RWMutex

	// register/unregister: Client giriş/çıkış sinyalleri.
	register   chan *Client
	unregister chan *Client

	// seq: Her outbound event'e verilen artan sayaç.
	// atomic.Int64 — birden fazla goroutine güvenle artırabilir.
	seq atomic.Int64
}

// NewHub, yeni bir Hub oluşturur.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Run, Hub'ın ana event loop'udur. main.go'da `go hub.Run()` ile başlatılır.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.addClient(client)

		case client := <-h.unregister:
			h.removeClient(client)
		}
	}
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client.userID]; !ok {
		h.clients[client.userID] = make(map[*Client]bool)
	}
	h.clients[client.userID][client] = true

	log.Printf("[ws] client connected: user=%s (connections: %d)",
		client.userID, len(h.clients[client.userID]))
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if clients, ok := h.clients[client.userID]; ok {
		if _, exists := clients[client]; exists {
			delete(clients, client)
			// Sıra önemli: ÖNCE stream context'i iptal edilir ki devam eden
			// AI stream goroutine'i yeni chunk üretmeyi bıraksın, SONRA send
			// channel kapatılır. closeSend ayrıca closed flag'ini set eder —
			// cancel ile close arasındaki aralıkta yola çıkmış bir sendEvent
			// kapalı channel'a yazmaya çalışıp panic'leyemez.
			client.cancel()
			client.closeSend()

			if len(clients) == 0 {
				delete(h.clients, client.userID)
				log.Printf("[ws] user fully disconnected: %s", client.userID)
			} else {
				log.Printf("[ws] client disconnected: user=%s (remaining: %d)",
					client.userID, len(clients))
			}
		}
	}
}

// BroadcastToUser, kullanıcının TÜM bağlantılarına event gönderir.
// Aynı hesabın diğer cihazlarını senkron tutmak için kullanılır.
func (h *Hub) BroadcastToUser(userID string, event Event) {
	event.Seq = h.seq.Add(1)

	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("[ws] failed to marshal user event: %v", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	if clients, ok := h.clients[userID]; ok {
		for client := range clients {
			select {
			case client.send <- data:
			default:
				// Buffer dolu — bu client yavaş, kapat
				go func(c *Client) { h.unregister <- c }(client)
			}
		}
	}
}

// nextSeq, outbound event sequence numarası üretir.
func (h *Hub) nextSeq() int64 {
	return h.seq.Add(1)
}

// OnlineUserIDs, bağlı kullanıcı ID'lerini döner.
func (h *Hub) OnlineUserIDs() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	ids := make([]string, 0, len(h.clients))
	for userID := range h.clients {
		ids = append(ids, userID)
	}
	return ids
}

// Shutdown, tüm client bağlantılarını kapatır (graceful shutdown).
func (h *Hub) Shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, clients := range h.clients {
		for client := range clients {
			client.cancel()
			client.closeSend()
		}
	}
	h.clients = make(map[string]map[*Client]bool)
	log.Println("[ws] hub shut down, all connections closed")
}
