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

// sqliteThreadRepo, ThreadRepository'nin SQLite implementasyonu.
type sqliteThreadRepo struct {
	db database.TxQuerier
}

// NewSQLiteThreadRepo, constructor.
func NewSQLiteThreadRepo(db database.TxQuerier) ThreadRepository {
	return &sqliteThreadRepo{db: db}
}

const threadColumns = `id, user_id, title, is_archived, message_count, created_at, updated_at`

func (r *sqliteThreadRepo) Create(ctx context.Context, thread *models.ChatThread) error {
	now := time.Now().UTC()
	thread.ID = uuid.NewString()
	thread.CreatedAt = now
	thread.UpdatedAt = now

	query := `
		INSERT INTO chat_threads (id, user_id, title, is_archived, message_count, created_at, updated_at)
		VALUES (?, ?, ?, 0, 0, ?, ?)`

	_, err := r.db.ExecContext(ctx, query, thread.ID, thread.UserID, thread.Title, thread.CreatedAt, thread.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create thread: %w", err)
	}

	return nil
}

func (r *sqliteThreadRepo) GetByID(ctx context.Context, id string) (*models.ChatThread, error) {
	query := `SELECT ` + threadColumns + ` FROM chat_threads WHERE id = ?`

	t := &models.ChatThread{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&t.ID, &t.UserID, &t.Title, &t.IsArchived, &t.MessageCount,
		&t.CreatedAt, &t.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, pkg.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get thread: %w", err)
	}
	return t, nil
}

func (r *sqliteThreadRepo) ListByUser(ctx context.Context, userID string, includeArchived bool) ([]*models.ChatThread, error) {
	query := `SELECT ` + threadColumns + ` FROM chat_threads WHERE user_id = ?`
	if !includeArchived {
		query += ` AND is_archived = 0`
	}
	query += ` ORDER BY updated_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list threads: %w", err)
	}
	defer rows.Close()

	var threads []*models.ChatThread
	for rows.Next() {
		t := &models.ChatThread{}
		if err := rows.Scan(
			&t.ID, &t.UserID, &t.Title, &t.IsArchived, &t.MessageCount,
			&t.CreatedAt, &t.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan thread: %w", err)
		}
		threads = append(threads, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate threads: %w", err)
	}

	return threads, nil
}

func (r *sqliteThreadRepo) UpdateTitle(ctx context.Context, id, title string) error {
	query := `UPDATE chat_threads SET title = ?, updated_at = ? WHERE id = ?`

	res, err := r.db.ExecContext(ctx, query, title, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to update thread title: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return pkg.ErrNotFound
	}
	return nil
}

func (r *sqliteThreadRepo) SetArchived(ctx context.Context, id string, archived bool) error {
	query := `UPDATE chat_threads SET is_archived = ?, updated_at = ? WHERE id = ?`

	res, err := r.db.ExecContext(ctx, query, archived, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to archive thread: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return pkg.ErrNotFound
	}
	return nil
}

func (r *sqliteThreadRepo) IncrementMessageCount(ctx context.Context, id string, delta int) error {
	query := `UPDATE chat_threads SET message_count = message_count + ?, updated_at = ? WHERE id = ?`

	_, err := r.db.ExecContext(ctx, query, delta, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to increment message count: %w", err)
	}
	return nil
}

// Delete, thread'i siler — mesajlar ve özet FK CASCADE ile birlikte gider.
func (r *sqliteThreadRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM chat_threads WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete thread: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return pkg.ErrNotFound
	}
	return nil
}
