package repository

import (
	"context"

	"github.com/akinalp/vita/models"
)

// SummaryRepository, thread özet kayıtları için interface.
// Her thread'in en fazla bir güncel özeti vardır — Upsert eskisini ezer.
type SummaryRepository interface {
	Upsert(ctx context.Context, summary *models.ChatSummary) error
	GetByThread(ctx context.Context, threadID string) (*models.ChatSummary, error)
}
