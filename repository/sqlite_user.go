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

// sqliteUserRepo, UserRepository interface'inin SQLite implementasyonu.
type sqliteUserRepo struct {
	db database.TxQuerier
}

// NewSQLiteUserRepo, constructor.
func NewSQLiteUserRepo(db database.TxQuerier) UserRepository {
	return &sqliteUserRepo{db: db}
}

const userColumns = `id, email, password_hash, full_name, profile_image, timezone,
	is_active, is_verified, created_at, updated_at`

func scanUser(row *sql.Row) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(
		&user.ID, &user.Email, &user.PasswordHash,
		&user.FullName, &user.ProfileImage, &user.Timezone,
		&user.IsActive, &user.IsVerified,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, pkg.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}
	return user, nil
}

func (r *sqliteUserRepo) Create(ctx context.Context, user *models.User) error {
	// Timestamp'leri Go tarafında üretiyoruz (SQL DEFAULT yerine) —
	// driver'ın TIMESTAMP string'ini geri parse etme derdine girmeden
	// struct'taki time.Time değerleriyle birebir aynı değer DB'ye gider.
	now := time.Now().UTC()
	user.ID = uuid.NewString()
	user.CreatedAt = now
	user.UpdatedAt = now

	query := `
		INSERT INTO users (id, email, password_hash, full_name, profile_image, timezone,
			is_active, is_verified, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		user.ID, user.Email, user.PasswordHash,
		user.FullName, user.ProfileImage, user.Timezone,
		user.IsActive, user.IsVerified,
		user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		// UNIQUE constraint ihlali → email zaten kayıtlı.
		// modernc.org/sqlite hata mesajında "UNIQUE constraint failed" geçer.
		if isUniqueViolation(err) {
			return pkg.ErrAlreadyExists
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

func (r *sqliteUserRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = ?`
	return scanUser(r.db.QueryRowContext(ctx, query, id))
}

func (r *sqliteUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = ?`
	return scanUser(r.db.QueryRowContext(ctx, query, email))
}

// UpdateProfile, sadece non-nil field'ları günceller (partial update).
// COALESCE(?, col): parametre NULL ise mevcut değer korunur.
func (r *sqliteUserRepo) UpdateProfile(ctx context.Context, id string, fullName, profileImage, timezone *string) (*models.User, error) {
	query := `
		UPDATE users SET
			full_name     = COALESCE(?, full_name),
			profile_image = COALESCE(?, profile_image),
			timezone      = COALESCE(?, timezone),
			updated_at    = ?
		WHERE id = ?`

	res, err := r.db.ExecContext(ctx, query, fullName, profileImage, timezone, time.Now().UTC(), id)
	if err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return nil, pkg.ErrNotFound
	}

	return r.GetByID(ctx, id)
}

func (r *sqliteUserRepo) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	query := `UPDATE users SET password_hash = ?, updated_at = ? WHERE id = ?`

	res, err := r.db.ExecContext(ctx, query, passwordHash, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return pkg.ErrNotFound
	}
	return nil
}

func (r *sqliteUserRepo) SetVerified(ctx context.Context, id string) error {
	query := `UPDATE users SET is_verified = 1, updated_at = ? WHERE id = ?`

	res, err := r.db.ExecContext(ctx, query, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to set user verified: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return pkg.ErrNotFound
	}
	return nil
}

// Deactivate, soft delete: row silinmez, is_active=0 yapılır.
// Login, refresh ve auth middleware bu flag'i kontrol eder.
func (r *sqliteUserRepo) Deactivate(ctx context.Context, id string) error {
	query := `UPDATE users SET is_active = 0, updated_at = ? WHERE id = ?`

	res, err := r.db.ExecContext(ctx, query, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to deactivate user: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return pkg.ErrNotFound
	}
	return nil
}
