package ws

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/akinalp/vita/models"
	"github.com/akinalp/vita/pkg"
	"github.com/akinalp/vita/services"
)

// WebSocket bağlantı sabitleri
const (
	// writeWait: Bir mesajı yazmak için maksimum bekleme süresi.
	writeWait = 10 * time.Second

	// pongWait: Client'ın heartbeat göndermesi için beklenen maksimum süre.
	// 3 heartbeat kaçırma = 30s × 3 = 90s.
	pongWait = 90 * time.Second

	// maxMessageSize: Client'ın gönderebileceği maksimum mesaj boyutu (byte).
	// Chat mesajı 8000 karaktere kadar — UTF-8 + JSON overhead payı ile 64KB.
	maxMessageSize = 64 * 1024

	// sendBufferSize: Her client'ın send channel buffer boyutu.
	// AI chunk'ları hızlı üretilir — buffer cömert tutulur.
	// Buffer yine de dolarsa client donmuş demektir, bağlantı kapatılır.
	sendBufferSize = 512
)

// Client, tek bir WebSocket bağlantısını temsil eder.
//
// Her bağlantı için iki goroutine çalışır:
// - ReadPump: Client'dan gelen event'leri okur (heartbeat, chat_message)
// - WritePump: send channel'daki event'leri bağlantıya yazar
//
// gorilla/websocket aynı anda tek okuma + tek yazma destekler —
// iki goroutine bu yüzden ayrıdır, birbirini bloklamaz.
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	userID string

	// send: client'a gidecek marshal'lanmış event'lerin buffer'ı.
	// closeMu + closed, send'in kapanışını gönderimlere karşı korur:
	// kapalı channel'a gönderim panic'tir ve AI stream goroutine'i
	// bağlantı kopuşuyla yarışabilir.
	send    chan []byte
	closeMu sync.Mutex
	closed  bool

	mu sync.Mutex // conn yazmalarını korur

	// ctx/cancel: bağlantının yaşam döngüsü. Bağlantı kopunca cancel
	// çağrılır → devam eden AI stream'i context üzerinden iptal olur.
	ctx    context.Context
	cancel context.CancelFunc

	// streaming: aynı anda tek AI stream'i. İkinci chat_message,
	// ilki bitmeden gelirse reddedilir.
	streaming atomic.Bool

	chat ChatStreamer
}

// ChatStreamer, ws paketinin chat service'ten ihtiyaç duyduğu dar interface.
//
// Neden services.ChatService değil?
// Interface Segregation: client'ın tek ihtiyacı SendMessage.
// services.ChatService bu interface'i implicit olarak karşılar.
type ChatStreamer interface {
	SendMessage(ctx context.Context, userID string, req *models.SendMessageRequest, sink services.ChatSink) error
}

// ReadPump, bağlantıdan gelen event'leri okur ve işler.
// Bağlantı kapanana kadar bloklar; kapanınca Hub'dan çıkış yapar.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)

	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		log.Printf("[ws] failed to set read deadline for user %s: %v", c.userID, err)
		return
	}

	for {
		_, rawMessage, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[ws] unexpected close for user %s: %v", c.userID, err)
			}
			return
		}

		var event Event
		if err := json.Unmarshal(rawMessage, &event); err != nil {
			log.Printf("[ws] invalid message from user %s: %v", c.userID, err)
			continue
		}

		c.handleEvent(event)
	}
}

// handleEvent, client'dan gelen event'leri türüne göre işler.
func (c *Client) handleEvent(event Event) {
	switch event.Op {
	case OpHeartbeat:
		// Heartbeat geldi — deadline'ı yenile ve ack gönder.
		if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
			log.Printf("[ws] failed to set read deadline for user %s: %v", c.userID, err)
			return
		}
		c.sendEvent(Event{Op: OpHeartbeatAck})

	case OpChatMessage:
		c.handleChatMessage(event)

	default:
		log.Printf("[ws] unknown op from user %s: %s", c.userID, event.Op)
	}
}

// handleChatMessage, chat_message event'ini işler.
//
// Stream UZUN sürer (AI yanıtı saniyeler alabilir) — ReadPump'ı bloklamamak
// için ayrı goroutine'de koşar. ReadPump bu sırada heartbeat almaya devam
// eder, bağlantı timeout'a düşmez.
func (c *Client) handleChatMessage(event Event) {
	dataBytes, err := json.Marshal(event.Data)
	if err != nil {
		return
	}

	var data ChatMessageData
	if err := json.Unmarshal(dataBytes, &data); err != nil {
		c.sendEvent(Event{Op: OpError, Data: ErrorData{Message: "invalid chat_message payload"}})
		return
	}

	// Aynı anda tek stream — ikinci mesaj ilki bitmeden reddedilir.
	if !c.streaming.CompareAndSwap(false, true) {
		c.sendEvent(Event{Op: OpError, Data: ErrorData{Message: "a response is already being generated"}})
		return
	}

	go func() {
		defer c.streaming.Store(false)

		req := &models.SendMessageRequest{
			ThreadID: data.ThreadID,
			Content:  data.Content,
		}

		sink := &clientSink{client: c}
		if err := c.chat.SendMessage(c.ctx, c.userID, req, sink); err != nil {
			log.Printf("[ws] chat stream failed for user %s: %v", c.userID, err)
			c.sendEvent(Event{Op: OpError, Data: ErrorData{Message: wsErrorMessage(err)}})
		}
	}()
}

// wsErrorMessage, service hatasını client'a uygun generic mesaja çevirir.
// Validation hataları aynen iletilir, geri kalan her şey generic'tir.
func wsErrorMessage(err error) string {
	switch {
	case errors.Is(err, pkg.ErrBadRequest):
		return err.Error()
	case errors.Is(err, pkg.ErrNotFound):
		return "thread not found"
	default:
		return "failed to generate response, please try again"
	}
}

// clientSink, services.ChatSink'in tek bağlantıya yazan implementasyonu.
// Chunk'lar broadcast EDİLMEZ — stream sadece mesajı gönderen bağlantıya akar.
type clientSink struct {
	client   *Client
	threadID string
}

func (s *clientSink) ThreadCreated(thread *models.ChatThread) {
	s.threadID = thread.ID
	s.client.sendEvent(Event{Op: OpThreadCreated, Data: map[string]any{"thread": thread}})
}

func (s *clientSink) Chunk(text string) error {
	// Bağlantı kapandıysa stream'i durdur — AI çağrısı boşa devam etmesin.
	select {
	case <-s.client.ctx.Done():
		return s.client.ctx.Err()
	default:
	}

	s.client.sendEvent(Event{Op: OpAssistantChunk, Data: ChunkData{ThreadID: s.threadID, Content: text}})
	return nil
}

func (s *clientSink) Completed(message *models.ChatMessage, thread *models.ChatThread) {
	s.client.sendEvent(Event{Op: OpMessageComplete, Data: map[string]any{
		"message": message,
		"thread":  thread,
	}})
}

func (s *clientSink) Blocked(category, reason string) {
	s.client.sendEvent(Event{Op: OpModerationBlocked, Data: BlockedData{
		ThreadID: s.threadID,
		Category: category,
		Reason:   reason,
	}})
}

// sendEvent, client'a tek bir event gönderir.
// Bağlantı kapatılmışsa gönderim sessizce düşer — stream goroutine'i
// hâlâ koşuyorken removeClient'ın channel'ı kapatmasıyla yarışılabilir.
func (c *Client) sendEvent(event Event) {
	event.Seq = c.hub.nextSeq()

	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("[ws] failed to marshal event for user %s: %v", c.userID, err)
		return
	}

	c.closeMu.Lock()
	defer c.closeMu.Unlock()

	if c.closed {
		return
	}

	select {
	case c.send <- data:
		// Buffer'a eklendi
	default:
		// Buffer dolu — client muhtemelen donmuş, bağlantıyı kapat.
		// unregister'a goroutine ile gönderilir: Run loop'u tam bu client'ı
		// çıkarıyorsa closeSend closeMu bekler, burada bloklanmak deadlock olur.
		log.Printf("[ws] send buffer full for user %s, dropping connection", c.userID)
		go func() { c.hub.unregister <- c }()
	}
}

// closeSend, send channel'ını tam bir kez kapatır ve sonraki gönderimleri
// düşürür. Hub removeClient/Shutdown çağırır; cancel()'dan SONRA çağrılmalıdır.
func (c *Client) closeSend() {
	c.closeMu.Lock()
	defer c.closeMu.Unlock()

	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// WritePump, send channel'daki mesajları bağlantıya yazar.
func (c *Client) WritePump() {
	defer c.conn.Close()

	for {
		message, ok := <-c.send
		if !ok {
			// Channel kapatıldı — Hub client'ı çıkardı
			c.writeMessage(websocket.CloseMessage, nil)
			return
		}

		if err := c.writeMessage(websocket.TextMessage, message); err != nil {
			return
		}
	}
}

// writeMessage, bağlantıya mesaj yazar (mutex ile korunur).
// gorilla/websocket conn'a aynı anda birden fazla yazma YASAK.
func (c *Client) writeMessage(messageType int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.conn.WriteMessage(messageType, data)
}
