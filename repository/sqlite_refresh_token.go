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

// sqliteRefreshTokenRepo, RefreshTokenRepository'nin SQLite implementasyonu.
//
// Rotation'ın atomikliği iki mekanizmaya dayanır:
//   - RevokeIfActive'deki conditional UPDATE (WHERE is_revoked = 0)
//   - Service katmanının bu çağrıları database.WithTx içinde yapması
// SQLite'ın yazma kilidi + busy_timeout pragma'sı eşzamanlı transaction'ları
// serileştirir; conditional UPDATE de kazananı belirler.
type sqliteRefreshTokenRepo struct {
	db database.TxQuerier
}

// NewSQLiteRefreshTokenRepo, constructor.
func NewSQLiteRefreshTokenRepo(db database.TxQuerier) RefreshTokenRepository {
	return &sqliteRefreshTokenRepo{db: db}
}

const refreshTokenColumns = `id, user_id, token_hash, device_id, device_name,
	user_agent, ip_address, issued_at, expires_at, is_revoked, revoked_at,
	replaced_by_id, parent_token_id`

func scanRefreshToken(row *sql.Row) (*models.RefreshToken, error) {
	t := &models.RefreshToken{}
	err := row.Scan(
		&t.ID, &t.UserID, &t.TokenHash,
		&t.DeviceID, &t.DeviceName, &t.UserAgent, &t.IPAddress,
		&t.IssuedAt, &t.ExpiresAt,
		&t.IsRevoked, &t.RevokedAt,
		&t.ReplacedByID, &t.ParentTokenID,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, pkg.ErrTokenNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan refresh token: %w", err)
	}
	return t, nil
}

func (r *sqliteRefreshTokenRepo) Create(ctx context.Context, token *models.RefreshToken) error {
	token.ID = uuid.NewString()

	query := `
		INSERT INTO refresh_tokens (id, user_id, token_hash, device_id, device_name,
			user_agent, ip_address, issued_at, expires_at, is_revoked, parent_token_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, 0, ?)`

	_, err := r.db.ExecContext(ctx, query,
		token.ID, token.UserID, token.TokenHash,
		token.DeviceID, token.DeviceName, token.UserAgent, token.IPAddress,
		token.IssuedAt, token.ExpiresAt, token.ParentTokenID,
	)
	if err != nil {
		return fmt.Errorf("failed to create refresh token: %w", err)
	}

	return nil
}

func (r *sqliteRefreshTokenRepo) GetByTokenHash(ctx context.Context, tokenHash string) (*models.RefreshToken, error) {
	query := `SELECT ` + refreshTokenColumns + ` FROM refresh_tokens WHERE token_hash = ?`
	return scanRefreshToken(r.db.QueryRowContext(ctx, query, tokenHash))
}

// RevokeIfActive, rotation yarışının karar noktası.
//
// WHERE id = ? AND is_revoked = 0 → UPDATE atomiktir:
// iki transaction aynı anda bu satıra yazamaz, SQLite serileştirir.
// İlk gelen 1 satır etkiler; ikincisi 0 görür ve reuse yoluna düşer.
func (r *sqliteRefreshTokenRepo) RevokeIfActive(ctx context.Context, id string, revokedAt time.Time) (int64, error) {
	query := `UPDATE refresh_tokens SET is_revoked = 1, revoked_at = ? WHERE id = ? AND is_revoked = 0`

	res, err := r.db.ExecContext(ctx, query, revokedAt, id)
	if err != nil {
		return 0, fmt.Errorf("failed to revoke token: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return affected, nil
}

func (r *sqliteRefreshTokenRepo) SetReplacedBy(ctx context.Context, id, replacedByID string) error {
	query := `UPDATE refresh_tokens SET replaced_by_id = ? WHERE id = ?`

	_, err := r.db.ExecContext(ctx, query, replacedByID, id)
	if err != nil {
		return fmt.Errorf("failed to set replaced_by: %w", err)
	}
	return nil
}

// RevokeDescendants, replaced_by_id zincirini ileri yönde yürür.
//
// Neden iteratif, neden recursive CTE değil?
// Zincir pratikte kısadır (token başına bir rotation) ve iteratif yürüyüş
// her adımı ayrı ayrı loglamaya imkan verir. Cycle koruması: ziyaret
// edilen ID'ler set'te tutulur — bozuk veri sonsuz döngüye sokamaz.
func (r *sqliteRefreshTokenRepo) RevokeDescendants(ctx context.Context, id string, revokedAt time.Time) (int, error) {
	revoked := 0
	seen := map[string]bool{}
	current := id

	for current != "" && !seen[current] {
		seen[current] = true

		var replacedBy sql.NullString
		var isRevoked bool
		err := r.db.QueryRowContext(ctx,
			`SELECT replaced_by_id, is_revoked FROM refresh_tokens WHERE id = ?`, current,
		).Scan(&replacedBy, &isRevoked)
		if errors.Is(err, sql.ErrNoRows) {
			break
		}
		if err != nil {
			return revoked, fmt.Errorf("failed to walk token lineage: %w", err)
		}

		if !isRevoked {
			if _, err := r.db.ExecContext(ctx,
				`UPDATE refresh_tokens SET is_revoked = 1, revoked_at = ? WHERE id = ?`,
				revokedAt, current,
			); err != nil {
				return revoked, fmt.Errorf("failed to revoke descendant: %w", err)
			}
			revoked++
		}

		if !replacedBy.Valid {
			break
		}
		current = replacedBy.String
	}

	return revoked, nil
}

func (r *sqliteRefreshTokenRepo) RevokeAllForUser(ctx context.Context, userID, exceptID string, revokedAt time.Time) (int, error) {
	query := `UPDATE refresh_tokens SET is_revoked = 1, revoked_at = ?
		WHERE user_id = ? AND is_revoked = 0 AND id != ?`

	res, err := r.db.ExecContext(ctx, query, revokedAt, userID, exceptID)
	if err != nil {
		return 0, fmt.Errorf("failed to revoke user tokens: %w", err)
	}
	affected, _ := res.RowsAffected()
	return int(affected), nil
}

func (r *sqliteRefreshTokenRepo) RevokeDeviceTokens(ctx context.Context, userID, deviceID string, revokedAt time.Time) (int, error) {
	query := `UPDATE refresh_tokens SET is_revoked = 1, revoked_at = ?
		WHERE user_id = ? AND device_id = ? AND is_revoked = 0`

	res, err := r.db.ExecContext(ctx, query, revokedAt, userID, deviceID)
	if err != nil {
		return 0, fmt.Errorf("failed to revoke device tokens: %w", err)
	}
	affected, _ := res.RowsAffected()
	return int(affected), nil
}

// DeleteExpired, süresi dolmuş token'ları fiziksel olarak siler.
// before genellikle now - grace period'dur: yakın geçmişte expire olan
// token'lar bir süre daha tutulur ki reuse denemeleri loglanabilsin.
func (r *sqliteRefreshTokenRepo) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM refresh_tokens WHERE expires_at < ?`, before)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired tokens: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return affected, nil
}
