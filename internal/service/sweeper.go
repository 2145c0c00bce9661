package service

import (
	"context"
	"fmt"
	"time"

	"github.com/morphcute/mlbb-gifters/internal/model"

	"gorm.io/gorm"
)

// CooldownSweeper moves FOLLOWED orders whose cooldown deadline has passed to
// READY_FOR_GIFTING. It is triggered on an external schedule and must be safe
// to run concurrently with itself and with per-order operations.
type CooldownSweeper struct {
	db *gorm.DB
}

// NewCooldownSweeper creates the sweeper.
func NewCooldownSweeper(db *gorm.DB) *CooldownSweeper {
	return &CooldownSweeper{db: db}
}

// Sweep transitions every order with status FOLLOWED and ready_at <= now in a
// single batch update and returns the count. The predicate makes it
// idempotent: a repeat run with the same now matches nothing new, and an
// order never transitions before its deadline.
func (s *CooldownSweeper) Sweep(ctx context.Context, now time.Time) (int64, error) {
	res := s.db.WithContext(ctx).Model(&model.Order{}).
		Where("status = ? AND ready_at <= ?", model.StatusFollowed, now).
		Update("status", model.StatusReadyForGifting)
	if res.Error != nil {
		return 0, fmt.Errorf("cooldown sweep failed: %w", res.Error)
	}

	sweepTransitions.Add(float64(res.RowsAffected))
	return res.RowsAffected, nil
}
