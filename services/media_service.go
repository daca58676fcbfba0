package services

import (
	"context"
	"fmt"
	"io"
	"log"
	"path"

	"github.com/google/uuid"

	"github.com/akinalp/vita/models"
	"github.com/akinalp/vita/pkg"
	"github.com/akinalp/vita/pkg/storage"
	"github.com/akinalp/vita/repository"
)

// listUploadsLimit: upload listesinde dönen maksimum kayıt sayısı.
const listUploadsLimit = 50

// MediaService, chat dosya eklerinin iş mantığı.
//
// Akış: client dosyayı REST ile yükler, upload_id alır; içerik ownership
// kontrolü yapan download endpoint'i üzerinden geri okunur. Dosyanın kendisi
// obje deposunda, metadata'sı SQLite'ta (media_uploads) durur.
type MediaService interface {
	// Upload, dosyayı doğrular, obje deposuna yazar ve pending kayıt açar.
	Upload(ctx context.Context, userID, fileName, contentType string, size int64, reader io.Reader) (*models.MediaUpload, error)

	// List, kullanıcının upload'larını en yeniden eskiye döner.
	List(ctx context.Context, userID string) ([]*models.MediaUpload, error)

	// Download, upload metadata'sını ve içerik stream'ini döner.
	// Çağıran taraf ReadCloser'ı kapatmakla yükümlüdür.
	Download(ctx context.Context, userID, uploadID string) (*models.MediaUpload, io.ReadCloser, error)

	// Delete, dosyayı depodan ve kaydı veritabanından siler.
	Delete(ctx context.Context, userID, uploadID string) error
}

type mediaService struct {
	mediaRepo repository.MediaRepository
	store     storage.ObjectStorage // nil → upload devre dışı (STORAGE_ENDPOINT yok)
	maxSize   int64
}

// NewMediaService, constructor.
func NewMediaService(mediaRepo repository.MediaRepository, store storage.ObjectStorage, maxSize int64) MediaService {
	return &mediaService{
		mediaRepo: mediaRepo,
		store:     store,
		maxSize:   maxSize,
	}
}

func (s *mediaService) Upload(ctx context.Context, userID, fileName, contentType string, size int64, reader io.Reader) (*models.MediaUpload, error) {
	if s.store == nil {
		return nil, fmt.Errorf("%w: file uploads are not enabled on this server", pkg.ErrBadRequest)
	}

	if !models.AllowedMediaTypes[contentType] {
		return nil, fmt.Errorf("%w: unsupported file type: %s", pkg.ErrBadRequest, contentType)
	}
	if size <= 0 {
		return nil, fmt.Errorf("%w: empty file not allowed", pkg.ErrBadRequest)
	}
	if size > s.maxSize {
		return nil, fmt.Errorf("%w: file too large, max size is %d bytes", pkg.ErrBadRequest, s.maxSize)
	}
	if fileName == "" {
		fileName = "upload"
	}

	// Object key kullanıcıya göre ayrılır; dosya adı yerine UUID kullanılır —
	// client'ın verdiği isim path traversal malzemesi olamaz.
	key := fmt.Sprintf("chat_uploads/%s/%s%s", userID, uuid.NewString(), path.Ext(fileName))

	if err := s.store.Upload(ctx, key, contentType, size, reader); err != nil {
		return nil, fmt.Errorf("failed to store file: %w", err)
	}

	upload := &models.MediaUpload{
		UserID:    userID,
		FileName:  fileName,
		ObjectKey: key,
		MimeType:  contentType,
		SizeBytes: size,
		Status:    models.MediaStatusPending,
	}
	if err := s.mediaRepo.Create(ctx, upload); err != nil {
		// DB kaydı başarısızsa depodaki obje yetim kalmasın.
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			log.Printf("[media] failed to clean up orphan object %s: %v", key, delErr)
		}
		return nil, err
	}

	log.Printf("[media] upload stored: user=%s id=%s size=%d type=%s",
		userID, upload.ID, size, contentType)
	return upload, nil
}

func (s *mediaService) List(ctx context.Context, userID string) ([]*models.MediaUpload, error) {
	return s.mediaRepo.ListByUser(ctx, userID, listUploadsLimit)
}

func (s *mediaService) Download(ctx context.Context, userID, uploadID string) (*models.MediaUpload, io.ReadCloser, error) {
	upload, err := s.getOwned(ctx, userID, uploadID)
	if err != nil {
		return nil, nil, err
	}

	rc, err := s.store.Download(ctx, upload.ObjectKey)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read file: %w", err)
	}
	return upload, rc, nil
}

func (s *mediaService) Delete(ctx context.Context, userID, uploadID string) error {
	upload, err := s.getOwned(ctx, userID, uploadID)
	if err != nil {
		return err
	}

	if err := s.store.Delete(ctx, upload.ObjectKey); err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	if err := s.mediaRepo.Delete(ctx, upload.ID); err != nil {
		return err
	}

	log.Printf("[media] upload deleted: user=%s id=%s", userID, uploadID)
	return nil
}

// getOwned, upload'ı getirir ve sahiplik kontrolü yapar.
// Başkasının upload'ı da "not found" döner — varlık bilgisi sızdırılmaz.
func (s *mediaService) getOwned(ctx context.Context, userID, uploadID string) (*models.MediaUpload, error) {
	if s.store == nil {
		return nil, fmt.Errorf("%w: file uploads are not enabled on this server", pkg.ErrBadRequest)
	}

	upload, err := s.mediaRepo.GetByID(ctx, uploadID)
	if err != nil {
		return nil, err
	}
	if upload.UserID != userID {
		return nil, pkg.ErrNotFound
	}
	return upload, nil
}
