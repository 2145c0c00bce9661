package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/morphcute/mlbb-gifters/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SkinService manages the catalog and its public projections.
type SkinService interface {
	Create(ctx context.Context, actor Actor, req *model.SkinRequest) (*model.Skin, error)
	Update(ctx context.Context, actor Actor, id string, req *model.SkinUpdateRequest) (*model.Skin, error)
	Get(ctx context.Context, id string) (*model.Skin, error)
	Available(ctx context.Context) ([]model.SkinAvailability, error)
	Upcoming(ctx context.Context) ([]model.Skin, error)
	All(ctx context.Context, actor Actor) ([]model.SkinAvailability, error)
}

type skinServiceImpl struct {
	db      *gorm.DB
	authSvc *AuthorizationService
}

// NewSkinService creates the catalog service.
func NewSkinService(db *gorm.DB, authSvc *AuthorizationService) SkinService {
	return &skinServiceImpl{db: db, authSvc: authSvc}
}

func (s *skinServiceImpl) Create(ctx context.Context, actor Actor, req *model.SkinRequest) (*model.Skin, error) {
	if err := s.authSvc.Authorize(actor, "skins", "manage"); err != nil {
		return nil, err
	}

	now := time.Now()
	releaseDate := req.ReleaseDate
	if releaseDate.IsZero() {
		releaseDate = now
	}
	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	skin := &model.Skin{
		ID:           uuid.NewString(),
		Name:         req.Name,
		Price:        req.Price,
		DisplayPrice: req.DisplayPrice,
		Description:  req.Description,
		ImageURL:     req.ImageURL,
		IsActive:     isActive,
		ReleaseDate:  releaseDate,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.db.WithContext(ctx).Create(skin).Error; err != nil {
		return nil, fmt.Errorf("failed to create skin: %w", err)
	}
	return skin, nil
}

// Update applies the non-nil fields of req; everything else keeps its stored
// value.
func (s *skinServiceImpl) Update(ctx context.Context, actor Actor, id string, req *model.SkinUpdateRequest) (*model.Skin, error) {
	if err := s.authSvc.Authorize(actor, "skins", "manage"); err != nil {
		return nil, err
	}

	var skin model.Skin
	if err := s.db.WithContext(ctx).First(&skin, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSkinNotFound
		}
		return nil, fmt.Errorf("failed to get skin: %w", err)
	}

	if req.Name != nil {
		skin.Name = *req.Name
	}
	if req.Price != nil {
		skin.Price = *req.Price
	}
	if req.DisplayPrice != nil {
		skin.DisplayPrice = req.DisplayPrice
	}
	if req.Description != nil {
		skin.Description = req.Description
	}
	if req.ImageURL != nil {
		skin.ImageURL = req.ImageURL
	}
	if req.IsActive != nil {
		skin.IsActive = *req.IsActive
	}
	if req.ReleaseDate != nil {
		skin.ReleaseDate = *req.ReleaseDate
	}
	skin.UpdatedAt = time.Now()

	if err := s.db.WithContext(ctx).Save(&skin).Error; err != nil {
		return nil, fmt.Errorf("failed to update skin: %w", err)
	}
	return &skin, nil
}

func (s *skinServiceImpl) Get(ctx context.Context, id string) (*model.Skin, error) {
	var skin model.Skin
	if err := s.db.WithContext(ctx).First(&skin, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSkinNotFound
		}
		return nil, fmt.Errorf("failed to get skin: %w", err)
	}
	return &skin, nil
}

// Available lists released, active skins that have at least one unused slot,
// newest release first, with the derived free-slot count.
func (s *skinServiceImpl) Available(ctx context.Context) ([]model.SkinAvailability, error) {
	now := time.Now()
	var skins []model.Skin
	err := s.db.WithContext(ctx).
		Where("is_active = ? AND release_date <= ?", true, now).
		Where("EXISTS (SELECT 1 FROM gifter_slots WHERE gifter_slots.skin_id = skins.id AND gifter_slots.is_used = ?)", false).
		Order("release_date desc").
		Find(&skins).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list available skins: %w", err)
	}
	return s.withFreeSlots(ctx, skins)
}

// Upcoming lists active skins with a future release date, soonest first.
func (s *skinServiceImpl) Upcoming(ctx context.Context) ([]model.Skin, error) {
	var skins []model.Skin
	err := s.db.WithContext(ctx).
		Where("is_active = ? AND release_date > ?", true, time.Now()).
		Order("release_date asc").
		Find(&skins).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list upcoming skins: %w", err)
	}
	return skins, nil
}

// All lists every skin with free-slot counts (admin catalog view).
func (s *skinServiceImpl) All(ctx context.Context, actor Actor) ([]model.SkinAvailability, error) {
	if err := s.authSvc.Authorize(actor, "skins", "manage"); err != nil {
		return nil, err
	}

	var skins []model.Skin
	if err := s.db.WithContext(ctx).Order("name asc").Find(&skins).Error; err != nil {
		return nil, fmt.Errorf("failed to list skins: %w", err)
	}
	return s.withFreeSlots(ctx, skins)
}

func (s *skinServiceImpl) withFreeSlots(ctx context.Context, skins []model.Skin) ([]model.SkinAvailability, error) {
	result := make([]model.SkinAvailability, 0, len(skins))
	for _, skin := range skins {
		var count int64
		err := s.db.WithContext(ctx).Model(&model.GifterSlot{}).
			Where("skin_id = ? AND is_used = ?", skin.ID, false).
			Count(&count).Error
		if err != nil {
			return nil, fmt.Errorf("failed to count free slots: %w", err)
		}
		result = append(result, model.SkinAvailability{Skin: skin, FreeSlots: count})
	}
	return result, nil
}
