package service

import (
	"context"
	"fmt"
	"time"

	"github.com/morphcute/mlbb-gifters/internal/model"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const bcryptCost = 12

// UserService covers staff management and the ban list. Role is immutable
// after creation; users are never hard-deleted here.
type UserService interface {
	CreateGifter(ctx context.Context, actor Actor, name, email, password string) (*model.User, error)
	Ban(ctx context.Context, actor Actor, userID, reason string) error
	Unban(ctx context.Context, actor Actor, userID string) error
	BannedUsers(ctx context.Context, actor Actor) ([]model.User, error)
	Gifters(ctx context.Context, actor Actor) ([]model.User, error)
}

type userServiceImpl struct {
	db      *gorm.DB
	authSvc *AuthorizationService
}

// NewUserService creates the user management service.
func NewUserService(db *gorm.DB, authSvc *AuthorizationService) UserService {
	return &userServiceImpl{db: db, authSvc: authSvc}
}

// CreateGifter registers a new gifter account with a bcrypt-hashed password.
func (s *userServiceImpl) CreateGifter(ctx context.Context, actor Actor, name, email, password string) (*model.User, error) {
	if err := s.authSvc.Authorize(actor, "users", "manage"); err != nil {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	hash := string(hashed)

	gifter := &model.User{
		ID:        uuid.NewString(),
		Email:     email,
		Name:      name,
		Role:      model.RoleGifter,
		Password:  &hash,
		CreatedAt: time.Now(),
	}
	if err := s.db.WithContext(ctx).Create(gifter).Error; err != nil {
		return nil, fmt.Errorf("failed to create gifter: %w", err)
	}
	return gifter, nil
}

// Ban flags a user with a reason. Their in-game identity is also blocked from
// future orders by the anti-abuse gate.
func (s *userServiceImpl) Ban(ctx context.Context, actor Actor, userID, reason string) error {
	if err := s.authSvc.Authorize(actor, "users", "ban"); err != nil {
		return err
	}

	res := s.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", userID).
		Updates(map[string]any{"is_banned": true, "ban_reason": reason})
	if res.Error != nil {
		return fmt.Errorf("failed to ban user: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// Unban clears the ban flag and reason.
func (s *userServiceImpl) Unban(ctx context.Context, actor Actor, userID string) error {
	if err := s.authSvc.Authorize(actor, "users", "ban"); err != nil {
		return err
	}

	res := s.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", userID).
		Updates(map[string]any{"is_banned": false, "ban_reason": nil})
	if res.Error != nil {
		return fmt.Errorf("failed to unban user: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// BannedUsers lists banned users, newest first.
func (s *userServiceImpl) BannedUsers(ctx context.Context, actor Actor) ([]model.User, error) {
	if err := s.authSvc.Authorize(actor, "users", "ban"); err != nil {
		return nil, err
	}

	var users []model.User
	err := s.db.WithContext(ctx).
		Where("is_banned = ?", true).
		Order("created_at desc").
		Find(&users).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list banned users: %w", err)
	}
	return users, nil
}

// Gifters lists all gifter accounts.
func (s *userServiceImpl) Gifters(ctx context.Context, actor Actor) ([]model.User, error) {
	if err := s.authSvc.Authorize(actor, "users", "manage"); err != nil {
		return nil, err
	}

	var gifters []model.User
	err := s.db.WithContext(ctx).
		Where("role = ?", model.RoleGifter).
		Order("name asc").
		Find(&gifters).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list gifters: %w", err)
	}
	return gifters, nil
}
