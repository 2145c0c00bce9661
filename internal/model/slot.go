package model

import "time"

// GifterSlot is one unit of fulfillment capacity: one gifter's declared
// ability to gift one copy of one skin. Unused slots are the available
// inventory for the (skin, gifter) pair.
//
// OrderID records which order currently holds a used slot. Older rows may
// predate the column; release falls back to a (gifter, skin, is_used) lookup
// for those.
type GifterSlot struct {
	ID        string    `json:"id" gorm:"type:varchar(36);primaryKey"`
	SkinID    string    `json:"skin_id" gorm:"type:varchar(36);not null;index:idx_slots_skin_used"`
	GifterID  string    `json:"gifter_id" gorm:"type:varchar(36);not null;index"`
	IsUsed    bool      `json:"is_used" gorm:"not null;default:false;index:idx_slots_skin_used"`
	OrderID   *string   `json:"order_id,omitempty" gorm:"type:varchar(36);index"`
	CreatedAt time.Time `json:"created_at"`

	Skin   *Skin `json:"skin,omitempty" gorm:"foreignKey:SkinID"`
	Gifter *User `json:"gifter,omitempty" gorm:"foreignKey:GifterID"`
}
