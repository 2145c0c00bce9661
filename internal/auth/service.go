// Package auth implements staff authentication: password login, JWT session
// tokens and redis-backed revocation.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/morphcute/mlbb-gifters/internal/model"

	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const sessionTTL = 24 * time.Hour

var (
	// ErrInvalidCredentials is returned for a bad email/password pair or a
	// login attempt by a passwordless (buyer) account.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInvalidToken is returned for expired, malformed or revoked tokens.
	ErrInvalidToken = errors.New("invalid token")
)

// Service authenticates staff users. The signing secret is injected from
// configuration at construction, never held in package state.
type Service struct {
	db     *gorm.DB
	redis  *redis.Client
	secret []byte
}

// NewService creates the authentication service.
func NewService(db *gorm.DB, redisClient *redis.Client, secret string) *Service {
	return &Service{db: db, redis: redisClient, secret: []byte(secret)}
}

// Login verifies the password against the stored bcrypt hash, issues a 24h
// session token and registers it in redis so it can be revoked.
func (s *Service) Login(ctx context.Context, email, password string) (*model.LoginResponse, error) {
	var user model.User
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if user.Password == nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*user.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := s.generateToken(&user)
	if err != nil {
		return nil, err
	}
	if err := s.redis.Set(ctx, sessionKey(token), user.ID, sessionTTL).Err(); err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}

	user.Password = nil
	return &model.LoginResponse{Token: token, User: user}, nil
}

// Logout revokes the session token.
func (s *Service) Logout(ctx context.Context, token string) error {
	if err := s.redis.Del(ctx, sessionKey(token)).Err(); err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	return nil
}

// ValidateToken verifies the JWT signature and expiry, then requires the
// session to still exist in redis (logout deletes it).
func (s *Service) ValidateToken(ctx context.Context, tokenString string) (*model.SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &model.SessionClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}
	claims, ok := token.Claims.(*model.SessionClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	exists, err := s.redis.Exists(ctx, sessionKey(tokenString)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to check session: %w", err)
	}
	if exists == 0 {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (s *Service) generateToken(user *model.User) (string, error) {
	claims := &model.SessionClaims{
		UserID: user.ID,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(sessionTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

func sessionKey(token string) string {
	return "session:" + token
}
