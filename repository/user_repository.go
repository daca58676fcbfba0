// Package repository, veri erişim katmanını tanımlar.
//
// Repository Pattern nedir?
// Service katmanı ile veritabanı arasına soyutlama koyar:
//   - Her entity için bir interface (ne yapılabilir)
//   - Her interface için bir SQLite implementasyonu (nasıl yapılır)
//
// Service'ler interface'e bağımlıdır — testlerde gerçek SQLite dosyası
// veya in-memory DB ile aynı kod yolu çalışır, mock gerekmez.
package repository

import (
	"context"

	"github.com/akinalp/vita/models"
)

// UserRepository, kullanıcı CRUD operasyonları için interface.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateProfile(ctx context.Context, id string, fullName, profileImage, timezone *string) (*models.User, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	SetVerified(ctx context.Context, id string) error
	Deactivate(ctx context.Context, id string) error
}
