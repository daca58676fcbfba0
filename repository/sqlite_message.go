package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/akinalp/vita/database"
	"github.com/akinalp/vita/models"
)

// sqliteMessageRepo, MessageRepository'nin SQLite implementasyonu.
type sqliteMessageRepo struct {
	db database.TxQuerier
}

// NewSQLiteMessageRepo, constructor.
func NewSQLiteMessageRepo(db database.TxQuerier) MessageRepository {
	return &sqliteMessageRepo{db: db}
}

func (r *sqliteMessageRepo) Create(ctx context.Context, msg *models.ChatMessage) error {
	msg.ID = uuid.NewString()
	msg.CreatedAt = time.Now().UTC()

	query := `
		INSERT INTO chat_messages (id, thread_id, role, content, model_used, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		msg.ID, msg.ThreadID, string(msg.Role), msg.Content, msg.ModelUsed, msg.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create message: %w", err)
	}

	return nil
}

// ListByThread, mesajları kronolojik sırada döner.
// limit > 0 → son limit mesaj (en yeni N, ama yine kronolojik sırada).
// Subquery ile önce DESC limit alınır, dışta ASC'e çevrilir.
func (r *sqliteMessageRepo) ListByThread(ctx context.Context, threadID string, limit int) ([]*models.ChatMessage, error) {
	var query string
	args := []any{threadID}

	if limit > 0 {
		query = `
			SELECT id, thread_id, role, content, model_used, created_at FROM (
				SELECT id, thread_id, role, content, model_used, created_at
				FROM chat_messages WHERE thread_id = ?
				ORDER BY created_at DESC, id DESC LIMIT ?
			) ORDER BY created_at ASC, id ASC`
		args = append(args, limit)
	} else {
		query = `
			SELECT id, thread_id, role, content, model_used, created_at
			FROM chat_messages WHERE thread_id = ?
			ORDER BY created_at ASC, id ASC`
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer rows.Close()

	var messages []*models.ChatMessage
	for rows.Next() {
		m := &models.ChatMessage{}
		var role string
		if err := rows.Scan(&m.ID, &m.ThreadID, &role, &m.Content, &m.ModelUsed, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		m.Role = models.MessageRole(role)
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate messages: %w", err)
	}

	return messages, nil
}

func (r *sqliteMessageRepo) CountByThread(ctx context.Context, threadID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM chat_messages WHERE thread_id = ?`, threadID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count messages: %w", err)
	}
	return count, nil
}
