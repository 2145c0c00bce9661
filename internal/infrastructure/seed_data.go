package infrastructure

import (
	"fmt"
	"log"
	"time"

	"github.com/morphcute/mlbb-gifters/internal/model"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// SeedDataManager sets up development sample data: one admin, one gifter, a
// few skins and starter slots. Seeding is idempotent (keyed by email / name).
type SeedDataManager struct {
	db *gorm.DB
}

// NewSeedDataManager creates the seed manager.
func NewSeedDataManager(db *gorm.DB) *SeedDataManager {
	return &SeedDataManager{db: db}
}

// SeedAll populates staff accounts, skins and slots if they do not exist yet.
func (m *SeedDataManager) SeedAll() error {
	hashed, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash seed password: %w", err)
	}
	hash := string(hashed)

	if _, err := m.ensureUser("admin@example.com", "Admin User", model.RoleAdmin, &hash); err != nil {
		return err
	}
	gifter, err := m.ensureUser("gifter@example.com", "Gifter One", model.RoleGifter, &hash)
	if err != nil {
		return err
	}

	released := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	skins := []model.Skin{
		{Name: "Fanny - Skylark", Price: 1089, IsActive: true, ReleaseDate: released},
		{Name: "Gusion - K'", Price: 1288, IsActive: true, ReleaseDate: released},
		{Name: "Chou - Iori Yagami", Price: 1288, IsActive: true, ReleaseDate: released},
		{Name: "Upcoming Legend Skin", Price: 8999, IsActive: true, ReleaseDate: time.Now().Add(7 * 24 * time.Hour)},
	}

	for _, s := range skins {
		skin, created, err := m.ensureSkin(s)
		if err != nil {
			return err
		}
		if !created || skin.ReleaseDate.After(time.Now()) {
			continue
		}
		// Two starter slots per released skin.
		for i := 0; i < 2; i++ {
			slot := model.GifterSlot{
				ID:        uuid.NewString(),
				SkinID:    skin.ID,
				GifterID:  gifter.ID,
				IsUsed:    false,
				CreatedAt: time.Now(),
			}
			if err := m.db.Create(&slot).Error; err != nil {
				return fmt.Errorf("failed to seed slot: %w", err)
			}
		}
		log.Printf("seeded skin %q with starter slots", skin.Name)
	}

	return nil
}

func (m *SeedDataManager) ensureUser(email, name string, role model.Role, password *string) (*model.User, error) {
	var user model.User
	err := m.db.Where("email = ?", email).First(&user).Error
	if err == nil {
		return &user, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, fmt.Errorf("failed to look up seed user: %w", err)
	}

	user = model.User{
		ID:        uuid.NewString(),
		Email:     email,
		Name:      name,
		Role:      role,
		Password:  password,
		CreatedAt: time.Now(),
	}
	if err := m.db.Create(&user).Error; err != nil {
		return nil, fmt.Errorf("failed to seed user %s: %w", email, err)
	}
	return &user, nil
}

func (m *SeedDataManager) ensureSkin(s model.Skin) (*model.Skin, bool, error) {
	var existing model.Skin
	err := m.db.Where("name = ?", s.Name).First(&existing).Error
	if err == nil {
		return &existing, false, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, false, fmt.Errorf("failed to look up seed skin: %w", err)
	}

	s.ID = uuid.NewString()
	s.CreatedAt = time.Now()
	s.UpdatedAt = time.Now()
	if err := m.db.Create(&s).Error; err != nil {
		return nil, false, fmt.Errorf("failed to seed skin %s: %w", s.Name, err)
	}
	return &s, true, nil
}
