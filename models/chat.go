// Package models — AI chatbot domain modelleri.
package models

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// MessageRole, bir chat mesajının kimden geldiğini belirtir.
type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
	RoleSystem    MessageRole = "system"
)

// ChatThread, bir kullanıcının AI sohbet oturumunu temsil eder.
//
// MessageCount denormalize bir sayaçtır — her mesajda increment edilir.
// Liste ekranında COUNT(*) sorgusu yerine doğrudan okunur, ayrıca
// özet (summary) tetikleme eşiği bu sayaç üzerinden kontrol edilir.
type ChatThread struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	Title        *string   `json:"title"`
	IsArchived   bool      `json:"is_archived"`
	MessageCount int       `json:"message_count"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ChatMessage, thread içindeki tek bir mesaj.
// ModelUsed sadece assistant mesajlarında dolu — hangi AI modelinin
// yanıt ürettiğini kaydeder (model değişikliklerini izlemek için).
type ChatMessage struct {
	ID        string      `json:"id"`
	ThreadID  string      `json:"thread_id"`
	Role      MessageRole `json:"role"`
	Content   string      `json:"content"`
	ModelUsed *string     `json:"model_used,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
}

// ChatSummary, uzun thread'lerin rolling özeti.
// UpToMessage: özetin kaçıncı mesaja kadar olan geçmişi kapsadığı.
type ChatSummary struct {
	ID          string    `json:"id"`
	ThreadID    string    `json:"thread_id"`
	Content     string    `json:"content"`
	UpToMessage int       `json:"up_to_message"`
	CreatedAt   time.Time `json:"created_at"`
}

// ModerationLog, engellenen bir mesajın audit kaydı.
type ModerationLog struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Content   string    `json:"content"`
	Category  string    `json:"category"`
	Reason    *string   `json:"reason"`
	CreatedAt time.Time `json:"created_at"`
}

// SendMessageRequest, WebSocket üzerinden gelen chat mesajı.
// ThreadID boşsa yeni thread açılır — client'a thread_created event'i döner.
type SendMessageRequest struct {
	ThreadID string `json:"thread_id"`
	Content  string `json:"content"`
}

// Validate, SendMessageRequest geçerlilik kontrolü.
// Mesaj boş olamaz, 8000 karakteri aşamaz (AI context limiti).
func (r *SendMessageRequest) Validate() error {
	r.Content = strings.TrimSpace(r.Content)
	if r.Content == "" {
		return fmt.Errorf("message content is required")
	}
	if utf8.RuneCountInString(r.Content) > 8000 {
		return fmt.Errorf("message must be at most 8000 characters")
	}
	return nil
}
