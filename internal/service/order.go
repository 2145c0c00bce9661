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

// FriendshipCooldown is the mandatory in-game friendship duration before a
// gift can be sent. ReadyAt is always exactly FollowedAt plus this.
const FriendshipCooldown = 8 * 24 * time.Hour

// OrderService is the order lifecycle state machine. Every multi-entity
// operation runs in one all-or-nothing transaction; slot handling is delegated
// to the allocator on the same transaction handle.
type OrderService interface {
	Create(ctx context.Context, req *model.OrderRequest) (*model.Order, error)
	Get(ctx context.Context, id string) (*model.Order, error)
	Track(ctx context.Context, mlid, server string) ([]model.Order, error)

	Assign(ctx context.Context, actor Actor, orderID, targetGifterID string) (*model.Order, error)
	MarkFollowed(ctx context.Context, actor Actor, orderID string) (*model.Order, error)
	MarkSent(ctx context.Context, actor Actor, orderID string) (*model.Order, error)
	Refund(ctx context.Context, actor Actor, orderID string) (*model.Order, error)
	Invalidate(ctx context.Context, actor Actor, orderID string) (*model.Order, error)
	Delete(ctx context.Context, actor Actor, orderID string) error

	ListAll(ctx context.Context, actor Actor) ([]model.Order, error)
	ListForGifter(ctx context.Context, actor Actor, gifterID string) ([]model.Order, error)
}

type orderServiceImpl struct {
	db      *gorm.DB
	authSvc *AuthorizationService
}

// NewOrderService creates the order state machine service.
func NewOrderService(db *gorm.DB, authSvc *AuthorizationService) OrderService {
	return &orderServiceImpl{db: db, authSvc: authSvc}
}

// Create places a new PENDING order. The anti-abuse checks, the lazy buyer
// creation and the order insert share one transaction, and the checks take a
// per-buyer lock first so concurrent submissions cannot slip past the rate
// limit.
func (s *orderServiceImpl) Create(ctx context.Context, req *model.OrderRequest) (*model.Order, error) {
	var order *model.Order
	now := time.Now()

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkOrderAllowed(tx, req.Email, req.BuyerMLID, req.BuyerServer, now); err != nil {
			return err
		}

		var skin model.Skin
		if err := tx.First(&skin, "id = ?", req.SkinID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSkinNotFound
			}
			return fmt.Errorf("failed to load skin: %w", err)
		}
		if !skin.Purchasable(now) {
			return ErrSkinNotPurchasable
		}

		// Find or lazily create the buyer by email.
		var buyer model.User
		err := tx.Where("email = ?", req.Email).First(&buyer).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			buyer = model.User{
				ID:        uuid.NewString(),
				Email:     req.Email,
				Name:      req.Name,
				Role:      model.RoleBuyer,
				CreatedAt: now,
			}
			if err := tx.Create(&buyer).Error; err != nil {
				return fmt.Errorf("failed to create buyer: %w", err)
			}
		case err != nil:
			return fmt.Errorf("failed to find buyer: %w", err)
		default:
			if err := checkBuyerAllowed(&buyer); err != nil {
				return err
			}
		}

		order = &model.Order{
			ID:          uuid.NewString(),
			BuyerID:     buyer.ID,
			SkinID:      skin.ID,
			Status:      model.StatusPending,
			BuyerIGN:    req.BuyerIGN,
			BuyerMLID:   req.BuyerMLID,
			BuyerServer: req.BuyerServer,
			CreatedAt:   now,
		}
		if err := tx.Create(order).Error; err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}
		return nil
	})
	if err != nil {
		var policyErr *PolicyError
		if errors.As(err, &policyErr) {
			ordersRejected.WithLabelValues("policy").Inc()
		}
		return nil, err
	}

	ordersCreated.Inc()
	return order, nil
}

// Get returns an order with skin and buyer for the public tracking page.
func (s *orderServiceImpl) Get(ctx context.Context, id string) (*model.Order, error) {
	var order model.Order
	err := s.db.WithContext(ctx).
		Preload("Skin").
		Preload("Buyer").
		First(&order, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return &order, nil
}

// Track returns a buyer's orders keyed by their in-game identity.
func (s *orderServiceImpl) Track(ctx context.Context, mlid, server string) ([]model.Order, error) {
	var orders []model.Order
	err := s.db.WithContext(ctx).
		Where("buyer_mlid = ? AND buyer_server = ?", mlid, server).
		Preload("Skin").
		Order("created_at desc").
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to track orders: %w", err)
	}
	return orders, nil
}

// Assign reserves a slot and moves the order to ASSIGNED. When the order
// already has a gifter, the old slot is returned to the pool first so
// capacity is neither leaked nor double-reserved; release and reserve share
// the transaction with the order update. An empty targetGifterID means any
// gifter with a free slot.
func (s *orderServiceImpl) Assign(ctx context.Context, actor Actor, orderID, targetGifterID string) (*model.Order, error) {
	if err := s.authSvc.Authorize(actor, "orders", "assign"); err != nil {
		return nil, err
	}

	var order model.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&order, "id = ?", orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOrderNotFound
			}
			return fmt.Errorf("failed to load order: %w", err)
		}
		if order.Status.Terminal() {
			return ErrInvalidTransition
		}

		if order.GifterID != nil {
			if err := releaseSlot(tx, order.SkinID, *order.GifterID, order.ID); err != nil {
				return err
			}
		}

		slot, err := reserveSlot(tx, order.SkinID, targetGifterID, order.ID)
		if err != nil {
			return err
		}

		// Reassigning out of FOLLOWED or READY_FOR_GIFTING restarts the
		// friendship, so any cooldown timestamps from the previous gifter are
		// cleared along with the status.
		order.GifterID = &slot.GifterID
		order.Status = model.StatusAssigned
		order.FollowedAt = nil
		order.ReadyAt = nil
		if err := tx.Model(&model.Order{}).Where("id = ?", order.ID).
			Updates(map[string]any{
				"gifter_id":   slot.GifterID,
				"status":      model.StatusAssigned,
				"followed_at": nil,
				"ready_at":    nil,
			}).Error; err != nil {
			return fmt.Errorf("failed to update order: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// MarkFollowed records that the gifter befriended the buyer in game and arms
// the cooldown: ReadyAt is exactly FollowedAt plus the friendship cooldown.
func (s *orderServiceImpl) MarkFollowed(ctx context.Context, actor Actor, orderID string) (*model.Order, error) {
	if err := s.authSvc.Authorize(actor, "orders", "follow"); err != nil {
		return nil, err
	}

	now := time.Now()
	readyAt := now.Add(FriendshipCooldown)
	return s.transition(ctx, orderID, []model.OrderStatus{model.StatusAssigned}, map[string]any{
		"status":      model.StatusFollowed,
		"followed_at": now,
		"ready_at":    readyAt,
	})
}

// MarkSent completes the order after the cooldown elapsed. FOLLOWED is also
// accepted so a gift sent just as the sweeper runs does not bounce.
func (s *orderServiceImpl) MarkSent(ctx context.Context, actor Actor, orderID string) (*model.Order, error) {
	if err := s.authSvc.Authorize(actor, "orders", "send"); err != nil {
		return nil, err
	}

	return s.transition(ctx, orderID,
		[]model.OrderStatus{model.StatusFollowed, model.StatusReadyForGifting},
		map[string]any{"status": model.StatusSent, "sent_at": time.Now()})
}

// Refund moves the order to REFUNDED. The reserved slot is intentionally not
// released: a refunded order may still represent consumed in-game effort.
func (s *orderServiceImpl) Refund(ctx context.Context, actor Actor, orderID string) (*model.Order, error) {
	if err := s.authSvc.Authorize(actor, "orders", "refund"); err != nil {
		return nil, err
	}
	return s.transition(ctx, orderID, nonTerminalStatuses, map[string]any{
		"status": model.StatusRefunded,
	})
}

// Invalidate marks a bogus order INVALID.
func (s *orderServiceImpl) Invalidate(ctx context.Context, actor Actor, orderID string) (*model.Order, error) {
	if err := s.authSvc.Authorize(actor, "orders", "invalidate"); err != nil {
		return nil, err
	}
	return s.transition(ctx, orderID, nonTerminalStatuses, map[string]any{
		"status": model.StatusInvalid,
	})
}

// Delete hard-deletes an order. Only REFUNDED and INVALID orders may be
// removed (admin cleanup).
func (s *orderServiceImpl) Delete(ctx context.Context, actor Actor, orderID string) error {
	if err := s.authSvc.Authorize(actor, "orders", "delete"); err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var order model.Order
		if err := tx.First(&order, "id = ?", orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOrderNotFound
			}
			return fmt.Errorf("failed to load order: %w", err)
		}
		if order.Status != model.StatusRefunded && order.Status != model.StatusInvalid {
			return ErrInvalidTransition
		}
		if err := tx.Delete(&model.Order{}, "id = ?", orderID).Error; err != nil {
			return fmt.Errorf("failed to delete order: %w", err)
		}
		return nil
	})
}

// ListAll returns every order, newest first (admin dashboard).
func (s *orderServiceImpl) ListAll(ctx context.Context, actor Actor) ([]model.Order, error) {
	if err := s.authSvc.Authorize(actor, "orders", "list"); err != nil {
		return nil, err
	}

	var orders []model.Order
	err := s.db.WithContext(ctx).
		Preload("Skin").
		Preload("Buyer").
		Order("created_at desc").
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

// ListForGifter returns the orders assigned to one gifter, newest first. A
// gifter may only see their own.
func (s *orderServiceImpl) ListForGifter(ctx context.Context, actor Actor, gifterID string) ([]model.Order, error) {
	if err := s.authSvc.Authorize(actor, "orders", "list_own"); err != nil {
		return nil, err
	}
	if actor.Role == model.RoleGifter && actor.UserID != gifterID {
		return nil, ErrForbidden
	}

	var orders []model.Order
	err := s.db.WithContext(ctx).
		Where("gifter_id = ?", gifterID).
		Preload("Skin").
		Preload("Buyer").
		Order("created_at desc").
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list gifter orders: %w", err)
	}
	return orders, nil
}

var nonTerminalStatuses = []model.OrderStatus{
	model.StatusPending,
	model.StatusAssigned,
	model.StatusFollowed,
	model.StatusReadyForGifting,
}

// transition applies updates to the order if its current status is in from,
// inside a transaction so a concurrent sweep or transition never produces a
// torn state.
func (s *orderServiceImpl) transition(ctx context.Context, orderID string, from []model.OrderStatus, updates map[string]any) (*model.Order, error) {
	var order model.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&order, "id = ?", orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOrderNotFound
			}
			return fmt.Errorf("failed to load order: %w", err)
		}

		allowed := false
		for _, st := range from {
			if order.Status == st {
				allowed = true
				break
			}
		}
		if !allowed {
			return ErrInvalidTransition
		}

		if err := tx.Model(&model.Order{}).Where("id = ?", orderID).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to update order: %w", err)
		}
		return tx.First(&order, "id = ?", orderID).Error
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}
