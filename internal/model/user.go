package model

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Role identifies what a user is allowed to do.
type Role string

const (
	RoleAdmin  Role = "ADMIN"
	RoleGifter Role = "GIFTER"
	RoleBuyer  Role = "BUYER"
)

// User represents an account. Buyers are created lazily on their first order
// and carry no password; staff (admins and gifters) log in with one.
type User struct {
	ID        string    `json:"id" gorm:"type:varchar(36);primaryKey"`
	Email     string    `json:"email" gorm:"type:varchar(255);uniqueIndex;not null"`
	Name      string    `json:"name" gorm:"type:varchar(255)"`
	Role      Role      `json:"role" gorm:"type:varchar(16);not null;index"`
	Password  *string   `json:"-" gorm:"type:varchar(255)"`
	IsBanned  bool      `json:"is_banned" gorm:"not null;default:false;index"`
	BanReason *string   `json:"ban_reason,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// SessionClaims is the JWT payload for a logged-in staff session.
type SessionClaims struct {
	UserID string `json:"user_id"`
	Role   Role   `json:"role"`
	jwt.RegisteredClaims
}

// LoginRequest is the login form body.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse carries the session token and the authenticated user.
type LoginResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}
