package repository

import (
	"context"

	"github.com/akinalp/vita/models"
)

// MessageRepository, chat mesajları için interface.
type MessageRepository interface {
	Create(ctx context.Context, msg *models.ChatMessage) error

	// ListByThread, thread'in mesajlarını kronolojik sırayla döner.
	// limit > 0 ise SON limit mesaj döner (AI context penceresi için).
	ListByThread(ctx context.Context, threadID string, limit int) ([]*models.ChatMessage, error)

	CountByThread(ctx context.Context, threadID string) (int, error)
}
