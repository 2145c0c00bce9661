package model

import "time"

// Skin is a purchasable catalog item.
type Skin struct {
	ID           string    `json:"id" gorm:"type:varchar(36);primaryKey"`
	Name         string    `json:"name" gorm:"type:varchar(255);not null"`
	Price        int       `json:"price" gorm:"not null"` // in-game currency units (diamonds)
	DisplayPrice *string   `json:"display_price,omitempty"`
	Description  *string   `json:"description,omitempty"`
	ImageURL     *string   `json:"image_url,omitempty"`
	IsActive     bool      `json:"is_active" gorm:"not null;default:true;index"`
	ReleaseDate  time.Time `json:"release_date" gorm:"index"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Purchasable reports whether the skin can be ordered at the given instant.
func (s *Skin) Purchasable(now time.Time) bool {
	return s.IsActive && !s.ReleaseDate.After(now)
}

// SkinUpdateRequest is the admin partial-update body for a skin. Nil fields
// keep the stored value, so a single flag (say is_active) can be toggled
// without resending the rest.
type SkinUpdateRequest struct {
	Name         *string    `json:"name"`
	Price        *int       `json:"price" binding:"omitempty,gt=0"`
	DisplayPrice *string    `json:"display_price"`
	Description  *string    `json:"description"`
	ImageURL     *string    `json:"image_url"`
	IsActive     *bool      `json:"is_active"`
	ReleaseDate  *time.Time `json:"release_date"`
}

// SkinRequest is the admin create body for a skin.
type SkinRequest struct {
	Name         string    `json:"name" binding:"required"`
	Price        int       `json:"price" binding:"required,gt=0"`
	DisplayPrice *string   `json:"display_price"`
	Description  *string   `json:"description"`
	ImageURL     *string   `json:"image_url"`
	IsActive     *bool     `json:"is_active"`
	ReleaseDate  time.Time `json:"release_date"`
}

// SkinAvailability pairs a skin with its derived free-slot count.
type SkinAvailability struct {
	Skin      Skin  `json:"skin"`
	FreeSlots int64 `json:"free_slots"`
}
