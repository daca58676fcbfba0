package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/akinalp/vita/database"
	"github.com/akinalp/vita/models"
)

// sqliteModerationRepo, ModerationLogRepository'nin SQLite implementasyonu.
type sqliteModerationRepo struct {
	db database.TxQuerier
}

// NewSQLiteModerationRepo, constructor.
func NewSQLiteModerationRepo(db database.TxQuerier) ModerationLogRepository {
	return &sqliteModerationRepo{db: db}
}

func (r *sqliteModerationRepo) Create(ctx context.Context, entry *models.ModerationLog) error {
	entry.ID = uuid.NewString()
	entry.CreatedAt = time.Now().UTC()

	// İçerik 500 karakterle kırpılır — audit için yeterli,
	// kötü niyetli dev payload'lar log tablosunu şişiremez.
	content := entry.Content
	if len(content) > 500 {
		content = content[:500]
	}

	query := `
		INSERT INTO moderation_logs (id, user_id, content, category, reason, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		entry.ID, entry.UserID, content, entry.Category, entry.Reason, entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create moderation log: %w", err)
	}

	return nil
}

func (r *sqliteModerationRepo) ListByUser(ctx context.Context, userID string, limit int) ([]*models.ModerationLog, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `SELECT id, user_id, content, category, reason, created_at
		FROM moderation_logs WHERE user_id = ?
		ORDER BY created_at DESC LIMIT ?`

	rows, err := r.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list moderation logs: %w", err)
	}
	defer rows.Close()

	var entries []*models.ModerationLog
	for rows.Next() {
		e := &models.ModerationLog{}
		if err := rows.Scan(&e.ID, &e.UserID, &e.Content, &e.Category, &e.Reason, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan moderation log: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate moderation logs: %w", err)
	}

	return entries, nil
}
