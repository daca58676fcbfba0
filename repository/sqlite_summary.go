package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/akinalp/vita/database"
	"github.com/akinalp/vita/models"
	"github.com/akinalp/vita/pkg"
)

// sqliteSummaryRepo, SummaryRepository'nin SQLite implementasyonu.
type sqliteSummaryRepo struct {
	db database.TxQuerier
}

// NewSQLiteSummaryRepo, constructor.
func NewSQLiteSummaryRepo(db database.TxQuerier) SummaryRepository {
	return &sqliteSummaryRepo{db: db}
}

// Upsert, thread'in özetini yazar — varsa günceller, yoksa ekler.
// ON CONFLICT thread_id UNIQUE index'ine dayanır.
func (r *sqliteSummaryRepo) Upsert(ctx context.Context, summary *models.ChatSummary) error {
	summary.CreatedAt = time.Now().UTC()
	if summary.ID == "" {
		summary.ID = uuid.NewString()
	}

	query := `
		INSERT INTO chat_summaries (id, thread_id, content, up_to_message, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(thread_id) DO UPDATE SET
			content = excluded.content,
			up_to_message = excluded.up_to_message,
			created_at = excluded.created_at`

	_, err := r.db.ExecContext(ctx, query,
		summary.ID, summary.ThreadID, summary.Content, summary.UpToMessage, summary.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert summary: %w", err)
	}

	return nil
}

func (r *sqliteSummaryRepo) GetByThread(ctx context.Context, threadID string) (*models.ChatSummary, error) {
	query := `SELECT id, thread_id, content, up_to_message, created_at
		FROM chat_summaries WHERE thread_id = ?`

	s := &models.ChatSummary{}
	err := r.db.QueryRowContext(ctx, query, threadID).Scan(
		&s.ID, &s.ThreadID, &s.Content, &s.UpToMessage, &s.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, pkg.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get summary: %w", err)
	}
	return s, nil
}
