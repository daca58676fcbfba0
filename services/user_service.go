package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/akinalp/vita/models"
	"github.com/akinalp/vita/pkg"
	"github.com/akinalp/vita/pkg/cache"
	"github.com/akinalp/vita/repository"
)

// UserService interface'i — profil operasyonları.
type UserService interface {
	GetProfile(ctx context.Context, userID string) (*models.User, error)
	UpdateProfile(ctx context.Context, userID string, req *models.UpdateProfileRequest) (*models.User, error)
	ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error

	// DeactivateAccount, hesabı soft-delete eder ve tüm oturumları kapatır.
	// Şifre onayı ister — çalınan access token tek başına hesabı kapatamaz.
	DeactivateAccount(ctx context.Context, userID, password string) error
}

// userService, UserService implementasyonu.
//
// userCache, auth middleware ile PAYLAŞILAN in-memory cache'tir:
// middleware her request'te JWT'deki user'ı buradan okur. Profil
// değişikliği ve deaktivasyon cache'i invalidate eder ki middleware
// stale kayıtla devam etmesin.
type userService struct {
	userRepo  repository.UserRepository
	tokenRepo repository.RefreshTokenRepository
	userCache *cache.TTLCache[string, *models.User]
}

// NewUserService, constructor.
func NewUserService(
	userRepo repository.UserRepository,
	tokenRepo repository.RefreshTokenRepository,
	userCache *cache.TTLCache[string, *models.User],
) UserService {
	return &userService{
		userRepo:  userRepo,
		tokenRepo: tokenRepo,
		userCache: userCache,
	}
}

func (s *userService) GetProfile(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.PasswordHash = ""
	return user, nil
}

func (s *userService) UpdateProfile(ctx context.Context, userID string, req *models.UpdateProfileRequest) (*models.User, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", pkg.ErrBadRequest, err.Error())
	}

	user, err := s.userRepo.UpdateProfile(ctx, userID, req.FullName, req.ProfileImage, req.Timezone)
	if err != nil {
		return nil, err
	}

	s.userCache.Delete(userID)

	user.PasswordHash = ""
	return user, nil
}

func (s *userService) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	if len(newPassword) < 8 {
		return fmt.Errorf("%w: password must be at least 8 characters", pkg.ErrBadRequest)
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(currentPassword)); err != nil {
		return fmt.Errorf("%w: current password is incorrect", pkg.ErrUnauthorized)
	}
	if currentPassword == newPassword {
		return fmt.Errorf("%w: new password must be different from current password", pkg.ErrBadRequest)
	}

	newHash, err := bcrypt.GenerateFromPassword([]byte(newPassword), 12)
	if err != nil {
		return fmt.Errorf("failed to hash new password: %w", err)
	}

	if err := s.userRepo.UpdatePassword(ctx, userID, string(newHash)); err != nil {
		return err
	}

	// Şifre değişti → diğer tüm oturumlar kapansın.
	// Mevcut access token ömrünü doldurana kadar çalışmaya devam eder
	// (kısa ömürlü olduğu için kabul edilebilir).
	if _, err := s.tokenRepo.RevokeAllForUser(ctx, userID, "", time.Now().UTC()); err != nil {
		return err
	}

	log.Printf("[user] password changed: user=%s", userID)
	return nil
}

func (s *userService) DeactivateAccount(ctx context.Context, userID, password string) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return fmt.Errorf("%w: password is incorrect", pkg.ErrUnauthorized)
	}

	if err := s.userRepo.Deactivate(ctx, userID); err != nil {
		if errors.Is(err, pkg.ErrNotFound) {
			return nil
		}
		return err
	}

	if _, err := s.tokenRepo.RevokeAllForUser(ctx, userID, "", time.Now().UTC()); err != nil {
		return err
	}

	s.userCache.Delete(userID)

	log.Printf("[user] account deactivated: user=%s", userID)
	return nil
}
