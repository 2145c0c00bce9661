package model

import "time"

// OrderStatus is the order lifecycle state. The string values are persisted
// and must round-trip exactly.
type OrderStatus string

const (
	StatusPending         OrderStatus = "PENDING"
	StatusAssigned        OrderStatus = "ASSIGNED"
	StatusFollowed        OrderStatus = "FOLLOWED"
	StatusReadyForGifting OrderStatus = "READY_FOR_GIFTING"
	StatusSent            OrderStatus = "SENT"
	StatusRefunded        OrderStatus = "REFUNDED"
	StatusInvalid         OrderStatus = "INVALID"
)

// Terminal reports whether no further transitions are allowed from s.
func (s OrderStatus) Terminal() bool {
	return s == StatusSent || s == StatusRefunded || s == StatusInvalid
}

// Order is a buyer's request for one skin, fulfilled by a gifter.
//
// The buyer identity fields (IGN, MLID, server) are denormalized onto the
// order because the same person may reorder with different in-game accounts.
// GifterID is set iff the order has reached ASSIGNED or later; ReadyAt is the
// cooldown deadline set when the order becomes FOLLOWED.
type Order struct {
	ID          string      `json:"id" gorm:"type:varchar(36);primaryKey"`
	BuyerID     string      `json:"buyer_id" gorm:"type:varchar(36);not null;index"`
	SkinID      string      `json:"skin_id" gorm:"type:varchar(36);not null;index"`
	GifterID    *string     `json:"gifter_id,omitempty" gorm:"type:varchar(36);index"`
	Status      OrderStatus `json:"status" gorm:"type:varchar(24);not null;index"`
	BuyerIGN    string      `json:"buyer_ign" gorm:"type:varchar(255);not null"`
	BuyerMLID   string      `json:"buyer_mlid" gorm:"column:buyer_mlid;type:varchar(32);not null;index"`
	BuyerServer string      `json:"buyer_server" gorm:"type:varchar(32);not null"`
	CreatedAt   time.Time   `json:"created_at" gorm:"index"`
	FollowedAt  *time.Time  `json:"followed_at,omitempty"`
	ReadyAt     *time.Time  `json:"ready_at,omitempty" gorm:"index"`
	SentAt      *time.Time  `json:"sent_at,omitempty"`

	Skin  *Skin `json:"skin,omitempty" gorm:"foreignKey:SkinID"`
	Buyer *User `json:"buyer,omitempty" gorm:"foreignKey:BuyerID"`
}

// OrderRequest is the public order submission body.
type OrderRequest struct {
	SkinID      string `json:"skin_id" binding:"required"`
	Name        string `json:"name" binding:"required"`
	Email       string `json:"email" binding:"required,email"`
	BuyerIGN    string `json:"ign" binding:"required"`
	BuyerMLID   string `json:"mlid" binding:"required"`
	BuyerServer string `json:"server" binding:"required"`
}
