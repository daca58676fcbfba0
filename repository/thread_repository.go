package repository

import (
	"context"

	"github.com/akinalp/vita/models"
)

// ThreadRepository, chat thread CRUD operasyonları için interface.
type ThreadRepository interface {
	Create(ctx context.Context, thread *models.ChatThread) error
	GetByID(ctx context.Context, id string) (*models.ChatThread, error)
	ListByUser(ctx context.Context, userID string, includeArchived bool) ([]*models.ChatThread, error)
	UpdateTitle(ctx context.Context, id, title string) error
	SetArchived(ctx context.Context, id string, archived bool) error
	IncrementMessageCount(ctx context.Context, id string, delta int) error
	Delete(ctx context.Context, id string) error
}
