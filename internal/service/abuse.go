package service

import (
	"fmt"
	"time"

	"github.com/morphcute/mlbb-gifters/internal/model"

	"gorm.io/gorm"
)

const (
	// rateLimitMax orders within rateLimitWindow from the same MLID or email
	// reject the next submission.
	rateLimitMax    = 3
	rateLimitWindow = 5 * time.Minute
)

// lockBuyerKey serializes create-order transactions for the same buyer so
// the rate-limit count cannot race a concurrent insert. On postgres the
// advisory lock is held until the transaction commits; under READ COMMITTED
// two concurrent counts would otherwise both pass the threshold. sqlite's
// single-writer lock already serializes, so no lock is taken there.
func lockBuyerKey(tx *gorm.DB, mlid string) error {
	if tx.Dialector.Name() != "postgres" {
		return nil
	}
	if err := tx.Exec("SELECT pg_advisory_xact_lock(hashtext(?))", mlid).Error; err != nil {
		return fmt.Errorf("failed to lock buyer key: %w", err)
	}
	return nil
}

// checkOrderAllowed runs the anti-abuse checks on the create-order
// transaction handle, so the decision and the insert are one atomic unit.
// It returns a *PolicyError for rejections and a plain error for store
// failures.
func checkOrderAllowed(tx *gorm.DB, email, mlid, server string, now time.Time) error {
	if err := lockBuyerKey(tx, mlid); err != nil {
		return err
	}

	// Rate limit: trailing window, matched by MLID or by buyer email.
	windowStart := now.Add(-rateLimitWindow)
	var recent int64
	err := tx.Model(&model.Order{}).
		Joins("JOIN users ON users.id = orders.buyer_id").
		Where("(orders.buyer_mlid = ? OR users.email = ?) AND orders.created_at >= ?",
			mlid, email, windowStart).
		Count(&recent).Error
	if err != nil {
		return fmt.Errorf("failed to count recent orders: %w", err)
	}
	if recent >= rateLimitMax {
		return rejectf("Too many recent orders. Please try again later.")
	}

	// Ban propagation: any banned user with a prior order under the same
	// MLID+server pair blocks reordering under a new email.
	var banned int64
	err = tx.Model(&model.User{}).
		Where("is_banned = ?", true).
		Where("EXISTS (SELECT 1 FROM orders WHERE orders.buyer_id = users.id AND orders.buyer_mlid = ? AND orders.buyer_server = ?)",
			mlid, server).
		Count(&banned).Error
	if err != nil {
		return fmt.Errorf("failed to check banned accounts: %w", err)
	}
	if banned > 0 {
		return rejectf("This MLBB Account (%s %s) is banned.", mlid, server)
	}

	return nil
}

// checkBuyerAllowed rejects when an existing user for the email is banned,
// surfacing the recorded reason.
func checkBuyerAllowed(buyer *model.User) error {
	if buyer == nil || !buyer.IsBanned {
		return nil
	}
	reason := "No reason provided"
	if buyer.BanReason != nil && *buyer.BanReason != "" {
		reason = *buyer.BanReason
	}
	return rejectf("User is banned. Reason: %s", reason)
}
