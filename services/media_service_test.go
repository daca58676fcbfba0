package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akinalp/vita/database"
	"github.com/akinalp/vita/models"
	"github.com/akinalp/vita/pkg"
	"github.com/akinalp/vita/repository"
)

// fakeStore, bellek üzerinde çalışan ObjectStorage implementasyonu.
type fakeStore struct {
	objects map[string][]byte
	types   map[string]string
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		objects: make(map[string][]byte),
		types:   make(map[string]string),
	}
}

func (f *fakeStore) Upload(_ context.Context, key, contentType string, _ int64, reader io.Reader) error {
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}
	f.objects[key] = data
	f.types[key] = contentType
	return nil
}

func (f *fakeStore) Download(_ context.Context, key string) (io.ReadCloser, error) {
	data, ok := f.objects[key]
	if !ok {
		return nil, fmt.Errorf("object %s not found", key)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (f *fakeStore) Delete(_ context.Context, key string) error {
	delete(f.objects, key)
	delete(f.types, key)
	return nil
}

type mediaTestEnv struct {
	media     MediaService
	mediaRepo repository.MediaRepository
	store     *fakeStore
	userID    string
	otherID   string
}

func newMediaTestEnv(t *testing.T) *mediaTestEnv {
	t.Helper()

	migrationsFS, err := fs.Sub(database.EmbeddedMigrations, "migrations")
	require.NoError(t, err)

	db, err := database.New(filepath.Join(t.TempDir(), "test.db"), migrationsFS)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	// media_uploads user'a FK ile bağlı — gerçek kullanıcılar gerekli
	userRepo := repository.NewSQLiteUserRepo(db.Conn)
	user := &models.User{Email: "media@example.com", PasswordHash: "x", Timezone: "UTC", IsActive: true, IsVerified: true}
	require.NoError(t, userRepo.Create(context.Background(), user))
	other := &models.User{Email: "other@example.com", PasswordHash: "x", Timezone: "UTC", IsActive: true, IsVerified: true}
	require.NoError(t, userRepo.Create(context.Background(), other))

	mediaRepo := repository.NewSQLiteMediaRepo(db.Conn)
	store := newFakeStore()

	return &mediaTestEnv{
		media:     NewMediaService(mediaRepo, store, 1024*1024),
		mediaRepo: mediaRepo,
		store:     store,
		userID:    user.ID,
		otherID:   other.ID,
	}
}

func TestMediaUpload(t *testing.T) {
	env := newMediaTestEnv(t)
	ctx := context.Background()

	content := []byte("fake png bytes")
	upload, err := env.media.Upload(ctx, env.userID, "photo.png", "image/png",
		int64(len(content)), bytes.NewReader(content))
	require.NoError(t, err)

	assert.NotEmpty(t, upload.ID)
	assert.Equal(t, "photo.png", upload.FileName)
	assert.Equal(t, "image/png", upload.MimeType)
	assert.Equal(t, models.MediaStatusPending, upload.Status)

	// Object key kullanıcıya göre ayrılır ve client dosya adını içermez
	assert.True(t, strings.HasPrefix(upload.ObjectKey, "chat_uploads/"+env.userID+"/"))
	assert.NotContains(t, upload.ObjectKey, "photo")
	assert.True(t, strings.HasSuffix(upload.ObjectKey, ".png"))

	// İçerik depoya yazıldı, content type korundu
	assert.Equal(t, content, env.store.objects[upload.ObjectKey])
	assert.Equal(t, "image/png", env.store.types[upload.ObjectKey])
}

func TestMediaUploadValidation(t *testing.T) {
	env := newMediaTestEnv(t)
	ctx := context.Background()
	body := bytes.NewReader([]byte("x"))

	// Listede olmayan MIME tipi reddedilir
	_, err := env.media.Upload(ctx, env.userID, "a.exe", "application/x-msdownload", 1, body)
	assert.ErrorIs(t, err, pkg.ErrBadRequest)

	// Boş dosya reddedilir
	_, err = env.media.Upload(ctx, env.userID, "a.png", "image/png", 0, body)
	assert.ErrorIs(t, err, pkg.ErrBadRequest)

	// Boyut limiti aşılırsa reddedilir (env limiti 1MB)
	_, err = env.media.Upload(ctx, env.userID, "a.png", "image/png", 2*1024*1024, body)
	assert.ErrorIs(t, err, pkg.ErrBadRequest)

	// Hiçbiri depoya yazılmadı
	assert.Empty(t, env.store.objects)
}

func TestMediaDownloadAndOwnership(t *testing.T) {
	env := newMediaTestEnv(t)
	ctx := context.Background()

	content := []byte("document body")
	upload, err := env.media.Upload(ctx, env.userID, "notes.txt", "text/plain",
		int64(len(content)), bytes.NewReader(content))
	require.NoError(t, err)

	// Sahibi indirebilir
	meta, rc, err := env.media.Download(ctx, env.userID, upload.ID)
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, content, data)
	assert.Equal(t, "notes.txt", meta.FileName)

	// Başkasının upload'ı "not found" — varlık bilgisi sızmaz
	_, _, err = env.media.Download(ctx, env.otherID, upload.ID)
	assert.ErrorIs(t, err, pkg.ErrNotFound)

	_, _, err = env.media.Download(ctx, env.userID, "no-such-upload")
	assert.ErrorIs(t, err, pkg.ErrNotFound)
}

func TestMediaList(t *testing.T) {
	env := newMediaTestEnv(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := env.media.Upload(ctx, env.userID, fmt.Sprintf("f%d.png", i), "image/png",
			4, bytes.NewReader([]byte("data")))
		require.NoError(t, err)
	}
	_, err := env.media.Upload(ctx, env.otherID, "theirs.png", "image/png",
		4, bytes.NewReader([]byte("data")))
	require.NoError(t, err)

	// Sadece kendi upload'ları listelenir
	uploads, err := env.media.List(ctx, env.userID)
	require.NoError(t, err)
	assert.Len(t, uploads, 3)
	for _, u := range uploads {
		assert.Equal(t, env.userID, u.UserID)
	}
}

func TestMediaDelete(t *testing.T) {
	env := newMediaTestEnv(t)
	ctx := context.Background()

	upload, err := env.media.Upload(ctx, env.userID, "bye.png", "image/png",
		4, bytes.NewReader([]byte("data")))
	require.NoError(t, err)

	// Başkası silemez
	assert.ErrorIs(t, env.media.Delete(ctx, env.otherID, upload.ID), pkg.ErrNotFound)

	require.NoError(t, env.media.Delete(ctx, env.userID, upload.ID))

	// Hem kayıt hem obje gitti
	_, err = env.mediaRepo.GetByID(ctx, upload.ID)
	assert.ErrorIs(t, err, pkg.ErrNotFound)
	assert.Empty(t, env.store.objects)

	// Silinmiş upload tekrar silinemez
	assert.ErrorIs(t, env.media.Delete(ctx, env.userID, upload.ID), pkg.ErrNotFound)
}

func TestMediaDisabledWithoutStorage(t *testing.T) {
	env := newMediaTestEnv(t)
	disabled := NewMediaService(env.mediaRepo, nil, 1024)

	_, err := disabled.Upload(context.Background(), env.userID, "a.png", "image/png",
		1, bytes.NewReader([]byte("x")))
	assert.ErrorIs(t, err, pkg.ErrBadRequest)

	_, _, err = disabled.Download(context.Background(), env.userID, "any")
	assert.ErrorIs(t, err, pkg.ErrBadRequest)
}
