package repository

import (
	"context"

	"github.com/akinalp/vita/models"
)

// ModerationLogRepository, engellenen mesajların audit kaydı için interface.
// Sadece yazma + listeleme — moderasyon kararları değiştirilemez (immutable log).
type ModerationLogRepository interface {
	Create(ctx context.Context, entry *models.ModerationLog) error
	ListByUser(ctx context.Context, userID string, limit int) ([]*models.ModerationLog, error)
}
