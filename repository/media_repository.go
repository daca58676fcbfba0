package repository

import (
	"context"

	"github.com/akinalp/vita/models"
)

// MediaRepository, chat dosya eki metadata kayıtları için interface.
// Dosyanın kendisi obje deposundadır — burada sadece kayıt tutulur.
type MediaRepository interface {
	Create(ctx context.Context, upload *models.MediaUpload) error
	GetByID(ctx context.Context, id string) (*models.MediaUpload, error)

	// ListByUser, kullanıcının upload'larını en yeniden eskiye döner.
	ListByUser(ctx context.Context, userID string, limit int) ([]*models.MediaUpload, error)

	Delete(ctx context.Context, id string) error
}
