// Package ws, AI chat streaming için WebSocket bağlantı yönetimini sağlar.
//
// Mimari:
// - Hub: Tüm bağlantıları yöneten merkezi yapı (Observer pattern)
// - Client: Her WebSocket bağlantısını temsil eder
// - Event: Client-server arası iletilen mesaj formatı
//
// Chat akışı:
// 1. Client { op: "chat_message", d: { thread_id, content } } gönderir
// 2. Client goroutine'i ChatService.SendMessage'ı çağırır
// 3. AI yanıtı üretilirken her parça "assistant_chunk" event'i olarak
//    AYNI bağlantıya akar (broadcast yok — sohbet kullanıcıya özeldir)
// 4. Yanıt tamamlanınca "message_complete" gelir
package ws

// Event, WebSocket üzerinden iletilen bir mesajı temsil eder.
//
// Op (operation): Event türü — "chat_message", "assistant_chunk" vb.
// Data: Event'e özgü payload.
// Seq: Her outbound event'e verilen artan sayı. Frontend chunk
// sıralamasını ve kayıp event'leri seq ile tespit eder.
type Event struct {
	Op   string `json:"op"`
	Data any    `json:"d,omitempty"`
	Seq  int64  `json:"seq,omitempty"`
}

// Client → Server operasyonları
const (
	OpHeartbeat   = "heartbeat"    // Client her 30sn'de gönderir — "hâlâ bağlıyım" sinyali
	OpChatMessage = "chat_message" // Kullanıcı AI'a mesaj gönderiyor
)

// Server → Client operasyonları
const (
	OpHeartbeatAck      = "heartbeat_ack"      // Heartbeat'e yanıt
	OpThreadCreated     = "thread_created"     // Boş thread_id ile mesaj geldi, yeni thread açıldı
	OpAssistantChunk    = "assistant_chunk"    // AI yanıtının bir parçası
	OpMessageComplete   = "message_complete"   // Yanıt tamamlandı ve kaydedildi
	OpModerationBlocked = "moderation_blocked" // Mesaj moderasyonu geçemedi
	OpError             = "error"              // İşlem hatası (generic mesaj)
)

// ChatMessageData, chat_message event'inin payload'ı.
// ThreadID boş → yeni thread açılır.
type ChatMessageData struct {
	ThreadID string `json:"thread_id"`
	Content  string `json:"content"`
}

// ChunkData, assistant_chunk payload'ı.
type ChunkData struct {
	ThreadID string `json:"thread_id"`
	Content  string `json:"content"`
}

// BlockedData, moderation_blocked payload'ı.
type BlockedData struct {
	ThreadID string `json:"thread_id"`
	Category string `json:"category"`
	Reason   string `json:"reason"`
}

// ErrorData, error payload'ı. Mesaj her zaman generic'tir —
// iç hata detayları client'a sızdırılmaz.
type ErrorData struct {
	Message string `json:"message"`
}
