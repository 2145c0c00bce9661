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

// SlotService owns creation, reservation and release of gifter slots.
// Availability is always derived from unused rows, never stored.
type SlotService interface {
	AddSlots(ctx context.Context, actor Actor, skinID, gifterID string, quantity int) error
	AddOwnSlots(ctx context.Context, actor Actor, skinID string, quantity int) error
	AvailableCount(ctx context.Context, skinID string) (int64, error)
	GifterInventory(ctx context.Context, actor Actor, gifterID string) ([]model.SkinAvailability, error)
	UnusedSlots(ctx context.Context, actor Actor) ([]model.GifterSlot, error)
}

type slotServiceImpl struct {
	db      *gorm.DB
	authSvc *AuthorizationService
}

// NewSlotService creates the slot inventory service.
func NewSlotService(db *gorm.DB, authSvc *AuthorizationService) SlotService {
	return &slotServiceImpl{db: db, authSvc: authSvc}
}

// AddSlots creates quantity unused slots for (skin, gifter). Admin only; no
// upper bound is enforced, capacity is self-declared.
func (s *slotServiceImpl) AddSlots(ctx context.Context, actor Actor, skinID, gifterID string, quantity int) error {
	if err := s.authSvc.Authorize(actor, "slots", "add"); err != nil {
		return err
	}
	return s.createSlots(ctx, skinID, gifterID, quantity)
}

// AddOwnSlots lets a gifter declare capacity for themselves.
func (s *slotServiceImpl) AddOwnSlots(ctx context.Context, actor Actor, skinID string, quantity int) error {
	if err := s.authSvc.Authorize(actor, "slots", "add_own"); err != nil {
		return err
	}
	return s.createSlots(ctx, skinID, actor.UserID, quantity)
}

func (s *slotServiceImpl) createSlots(ctx context.Context, skinID, gifterID string, quantity int) error {
	if quantity < 1 {
		quantity = 1
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var skin model.Skin
		if err := tx.First(&skin, "id = ?", skinID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSkinNotFound
			}
			return fmt.Errorf("failed to load skin: %w", err)
		}

		var gifter model.User
		if err := tx.First(&gifter, "id = ? AND role = ?", gifterID, model.RoleGifter).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return fmt.Errorf("failed to load gifter: %w", err)
		}

		slots := make([]model.GifterSlot, 0, quantity)
		now := time.Now()
		for i := 0; i < quantity; i++ {
			slots = append(slots, model.GifterSlot{
				ID:        uuid.NewString(),
				SkinID:    skinID,
				GifterID:  gifterID,
				IsUsed:    false,
				CreatedAt: now,
			})
		}
		if err := tx.Create(&slots).Error; err != nil {
			return fmt.Errorf("failed to create slots: %w", err)
		}
		return nil
	})
}

// AvailableCount returns the number of unused slots for a skin.
func (s *slotServiceImpl) AvailableCount(ctx context.Context, skinID string) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.GifterSlot{}).
		Where("skin_id = ? AND is_used = ?", skinID, false).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count available slots: %w", err)
	}
	return count, nil
}

// GifterInventory lists active skins with the gifter's own free-slot counts.
func (s *slotServiceImpl) GifterInventory(ctx context.Context, actor Actor, gifterID string) ([]model.SkinAvailability, error) {
	if err := s.authSvc.Authorize(actor, "slots", "view_own"); err != nil {
		return nil, err
	}
	if actor.Role == model.RoleGifter && actor.UserID != gifterID {
		return nil, ErrForbidden
	}

	var skins []model.Skin
	if err := s.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("name asc").
		Find(&skins).Error; err != nil {
		return nil, fmt.Errorf("failed to list skins: %w", err)
	}

	result := make([]model.SkinAvailability, 0, len(skins))
	for _, skin := range skins {
		var count int64
		err := s.db.WithContext(ctx).Model(&model.GifterSlot{}).
			Where("skin_id = ? AND gifter_id = ? AND is_used = ?", skin.ID, gifterID, false).
			Count(&count).Error
		if err != nil {
			return nil, fmt.Errorf("failed to count gifter slots: %w", err)
		}
		result = append(result, model.SkinAvailability{Skin: skin, FreeSlots: count})
	}
	return result, nil
}

// UnusedSlots lists all unused slots with skin and gifter preloaded (admin
// dashboard view).
func (s *slotServiceImpl) UnusedSlots(ctx context.Context, actor Actor) ([]model.GifterSlot, error) {
	if err := s.authSvc.Authorize(actor, "slots", "list"); err != nil {
		return nil, err
	}

	var slots []model.GifterSlot
	err := s.db.WithContext(ctx).
		Where("is_used = ?", false).
		Preload("Skin").
		Preload("Gifter").
		Find(&slots).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list unused slots: %w", err)
	}
	return slots, nil
}

// reserveSlot marks one unused slot for the skin as used by the order, on the
// caller's transaction. If gifterID is non-empty only that gifter's slots are
// considered, otherwise any gifter's (first by primary key).
//
// The update is conditional on is_used still being false, so two concurrent
// reservations of the last slot have at most one winner; the loser moves on to
// the next candidate and fails with a no-slots error when none remain.
func reserveSlot(tx *gorm.DB, skinID, gifterID, orderID string) (*model.GifterSlot, error) {
	query := tx.Where("skin_id = ? AND is_used = ?", skinID, false)
	if gifterID != "" {
		query = query.Where("gifter_id = ?", gifterID)
	}

	var candidates []model.GifterSlot
	if err := query.Order("id asc").Find(&candidates).Error; err != nil {
		return nil, fmt.Errorf("failed to find free slots: %w", err)
	}

	for i := range candidates {
		res := tx.Model(&model.GifterSlot{}).
			Where("id = ? AND is_used = ?", candidates[i].ID, false).
			Updates(map[string]any{"is_used": true, "order_id": orderID})
		if res.Error != nil {
			return nil, fmt.Errorf("failed to reserve slot: %w", res.Error)
		}
		if res.RowsAffected == 1 {
			candidates[i].IsUsed = true
			candidates[i].OrderID = &orderID
			return &candidates[i], nil
		}
		// Lost the race for this slot; try the next one.
	}

	if gifterID != "" {
		return nil, ErrGifterNoFreeSlots
	}
	return nil, ErrNoFreeSlots
}

// releaseSlot returns the order's used slot for (skin, gifter) to the pool, on
// the caller's transaction. It prefers the slot bound to the order and falls
// back to any used slot for the pair (rows predating the order binding). A
// missing slot is not an error: historical data may be inconsistent and the
// reassignment must not block on it.
func releaseSlot(tx *gorm.DB, skinID, gifterID, orderID string) error {
	var slot model.GifterSlot
	err := tx.Where("order_id = ? AND is_used = ?", orderID, true).First(&slot).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		err = tx.Where("skin_id = ? AND gifter_id = ? AND is_used = ?", skinID, gifterID, true).
			First(&slot).Error
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to find used slot: %w", err)
	}

	res := tx.Model(&model.GifterSlot{}).
		Where("id = ?", slot.ID).
		Updates(map[string]any{"is_used": false, "order_id": nil})
	if res.Error != nil {
		return fmt.Errorf("failed to release slot: %w", res.Error)
	}
	return nil
}
