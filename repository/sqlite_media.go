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

// sqliteMediaRepo, MediaRepository'nin SQLite implementasyonu.
type sqliteMediaRepo struct {
	db database.TxQuerier
}

// NewSQLiteMediaRepo, constructor.
func NewSQLiteMediaRepo(db database.TxQuerier) MediaRepository {
	return &sqliteMediaRepo{db: db}
}

const mediaColumns = `id, user_id, message_id, file_name, object_key, mime_type, size_bytes, status, created_at`

func (r *sqliteMediaRepo) Create(ctx context.Context, upload *models.MediaUpload) error {
	upload.ID = uuid.NewString()
	upload.CreatedAt = time.Now().UTC()
	if upload.Status == "" {
		upload.Status = models.MediaStatusPending
	}

	query := `
		INSERT INTO media_uploads (id, user_id, message_id, file_name, object_key, mime_type, size_bytes, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		upload.ID, upload.UserID, upload.MessageID, upload.FileName,
		upload.ObjectKey, upload.MimeType, upload.SizeBytes, string(upload.Status), upload.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create media upload: %w", err)
	}

	return nil
}

func (r *sqliteMediaRepo) GetByID(ctx context.Context, id string) (*models.MediaUpload, error) {
	query := `SELECT ` + mediaColumns + ` FROM media_uploads WHERE id = ?`

	m := &models.MediaUpload{}
	var status string
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&m.ID, &m.UserID, &m.MessageID, &m.FileName, &m.ObjectKey,
		&m.MimeType, &m.SizeBytes, &status, &m.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, pkg.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get media upload: %w", err)
	}
	m.Status = models.MediaStatus(status)
	return m, nil
}

func (r *sqliteMediaRepo) ListByUser(ctx context.Context, userID string, limit int) ([]*models.MediaUpload, error) {
	query := `SELECT ` + mediaColumns + ` FROM media_uploads WHERE user_id = ?
		ORDER BY created_at DESC, id DESC LIMIT ?`

	rows, err := r.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list media uploads: %w", err)
	}
	defer rows.Close()

	var uploads []*models.MediaUpload
	for rows.Next() {
		m := &models.MediaUpload{}
		var status string
		if err := rows.Scan(
			&m.ID, &m.UserID, &m.MessageID, &m.FileName, &m.ObjectKey,
			&m.MimeType, &m.SizeBytes, &status, &m.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan media upload: %w", err)
		}
		m.Status = models.MediaStatus(status)
		uploads = append(uploads, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate media uploads: %w", err)
	}

	return uploads, nil
}

func (r *sqliteMediaRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM media_uploads WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete media upload: %w", err)
	}
	return nil
}
