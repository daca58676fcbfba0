package repository

import (
	"context"
	"io/fs"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akinalp/vita/database"
	"github.com/akinalp/vita/models"
	"github.com/akinalp/vita/pkg"
)

func newTestDB(t *testing.T) *database.DB {
	t.Helper()

	migrationsFS, err := fs.Sub(database.EmbeddedMigrations, "migrations")
	require.NoError(t, err)

	db, err := database.New(filepath.Join(t.TempDir(), "test.db"), migrationsFS)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func createTestUser(t *testing.T, db *database.DB, email string) *models.User {
	t.Helper()

	user := &models.User{
		Email:        email,
		PasswordHash: "hash",
		Timezone:     "UTC",
		IsActive:     true,
		IsVerified:   true,
	}
	require.NoError(t, NewSQLiteUserRepo(db.Conn).Create(context.Background(), user))
	return user
}

func newToken(userID, hash string, device *string) *models.RefreshToken {
	now := time.Now().UTC()
	return &models.RefreshToken{
		UserID:    userID,
		TokenHash: hash,
		DeviceID:  device,
		IssuedAt:  now,
		ExpiresAt: now.Add(30 * 24 * time.Hour),
	}
}

func TestRefreshTokenCreateAndGet(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "token@example.com")
	repo := NewSQLiteRefreshTokenRepo(db.Conn)
	ctx := context.Background()

	token := newToken(user.ID, "hash-1", nil)
	require.NoError(t, repo.Create(ctx, token))
	assert.NotEmpty(t, token.ID)

	got, err := repo.GetByTokenHash(ctx, "hash-1")
	require.NoError(t, err)
	assert.Equal(t, token.ID, got.ID)
	assert.Equal(t, user.ID, got.UserID)
	assert.False(t, got.IsRevoked)
	assert.Equal(t, models.TokenStateActive, got.State(time.Now().UTC()))

	_, err = repo.GetByTokenHash(ctx, "no-such-hash")
	assert.ErrorIs(t, err, pkg.ErrTokenNotFound)
}

func TestRevokeIfActiveIsConditional(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "race@example.com")
	repo := NewSQLiteRefreshTokenRepo(db.Conn)
	ctx := context.Background()

	token := newToken(user.ID, "hash-race", nil)
	require.NoError(t, repo.Create(ctx, token))

	now := time.Now().UTC()

	// İlk revoke kazanır
	affected, err := repo.RevokeIfActive(ctx, token.ID, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)

	// İkinci çağrı (yarışın kaybedeni) 0 görür — hata değil
	affected, err = repo.RevokeIfActive(ctx, token.ID, now)
	require.NoError(t, err)
	assert.Equal(t, int64(0), affected)
}

func TestRevokeDescendantsWalksLineage(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "lineage@example.com")
	repo := NewSQLiteRefreshTokenRepo(db.Conn)
	ctx := context.Background()
	now := time.Now().UTC()

	// Rotation zinciri kur: t1 → t2 → t3 (t3 aktif uç)
	t1 := newToken(user.ID, "hash-t1", nil)
	require.NoError(t, repo.Create(ctx, t1))

	t2 := newToken(user.ID, "hash-t2", nil)
	t2.ParentTokenID = &t1.ID
	require.NoError(t, repo.Create(ctx, t2))
	_, err := repo.RevokeIfActive(ctx, t1.ID, now)
	require.NoError(t, err)
	require.NoError(t, repo.SetReplacedBy(ctx, t1.ID, t2.ID))

	t3 := newToken(user.ID, "hash-t3", nil)
	t3.ParentTokenID = &t2.ID
	require.NoError(t, repo.Create(ctx, t3))
	_, err = repo.RevokeIfActive(ctx, t2.ID, now)
	require.NoError(t, err)
	require.NoError(t, repo.SetReplacedBy(ctx, t2.ID, t3.ID))

	// t1'in durumu artık "rotated" (revoked + replaced_by set)
	got1, err := repo.GetByTokenHash(ctx, "hash-t1")
	require.NoError(t, err)
	assert.Equal(t, models.TokenStateRotated, got1.State(now))

	// t1'den başlayan zincir yürünür — aktif olan tek token t3 revoke edilir
	revoked, err := repo.RevokeDescendants(ctx, t1.ID, now)
	require.NoError(t, err)
	assert.Equal(t, 1, revoked)

	got3, err := repo.GetByTokenHash(ctx, "hash-t3")
	require.NoError(t, err)
	assert.True(t, got3.IsRevoked)
	assert.Equal(t, models.TokenStateRevoked, got3.State(now))
}

func TestRevokeDeviceTokens(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "device@example.com")
	repo := NewSQLiteRefreshTokenRepo(db.Conn)
	ctx := context.Background()

	phone := "phone-1"
	laptop := "laptop-1"

	require.NoError(t, repo.Create(ctx, newToken(user.ID, "hash-p1", &phone)))
	require.NoError(t, repo.Create(ctx, newToken(user.ID, "hash-p2", &phone)))
	require.NoError(t, repo.Create(ctx, newToken(user.ID, "hash-l1", &laptop)))

	revoked, err := repo.RevokeDeviceTokens(ctx, user.ID, phone, time.Now().UTC())
	require.NoError(t, err)
	assert.Equal(t, 2, revoked)

	// Diğer cihazın token'ı dokunulmadan kalır
	got, err := repo.GetByTokenHash(ctx, "hash-l1")
	require.NoError(t, err)
	assert.False(t, got.IsRevoked)
}

func TestRevokeAllForUserExcept(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "all@example.com")
	other := createTestUser(t, db, "other@example.com")
	repo := NewSQLiteRefreshTokenRepo(db.Conn)
	ctx := context.Background()

	keep := newToken(user.ID, "hash-keep", nil)
	require.NoError(t, repo.Create(ctx, keep))
	require.NoError(t, repo.Create(ctx, newToken(user.ID, "hash-a", nil)))
	require.NoError(t, repo.Create(ctx, newToken(user.ID, "hash-b", nil)))
	require.NoError(t, repo.Create(ctx, newToken(other.ID, "hash-other", nil)))

	revoked, err := repo.RevokeAllForUser(ctx, user.ID, keep.ID, time.Now().UTC())
	require.NoError(t, err)
	assert.Equal(t, 2, revoked)

	got, err := repo.GetByTokenHash(ctx, "hash-keep")
	require.NoError(t, err)
	assert.False(t, got.IsRevoked)

	// Başka kullanıcının token'ları etkilenmez
	got, err = repo.GetByTokenHash(ctx, "hash-other")
	require.NoError(t, err)
	assert.False(t, got.IsRevoked)
}

func TestDeleteExpired(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "expired@example.com")
	repo := NewSQLiteRefreshTokenRepo(db.Conn)
	ctx := context.Background()
	now := time.Now().UTC()

	old := newToken(user.ID, "hash-old", nil)
	old.ExpiresAt = now.Add(-10 * 24 * time.Hour)
	require.NoError(t, repo.Create(ctx, old))

	fresh := newToken(user.ID, "hash-fresh", nil)
	require.NoError(t, repo.Create(ctx, fresh))

	deleted, err := repo.DeleteExpired(ctx, now.Add(-7*24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	_, err = repo.GetByTokenHash(ctx, "hash-old")
	assert.ErrorIs(t, err, pkg.ErrTokenNotFound)
	_, err = repo.GetByTokenHash(ctx, "hash-fresh")
	assert.NoError(t, err)
}
