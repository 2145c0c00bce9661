package service

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/morphcute/mlbb-gifters/internal/infrastructure"
	"github.com/morphcute/mlbb-gifters/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupDB opens a per-test in-memory database to avoid cross-test
// interference and runs the real migrations against it.
func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.ReplaceAll(t.Name(), "/", "_")
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, infrastructure.MigrateSchemas(db))
	return db
}

func newAuthz(t *testing.T) *AuthorizationService {
	t.Helper()
	authz, err := NewAuthorizationService()
	require.NoError(t, err)
	return authz
}

var (
	adminActor = Actor{UserID: "admin-1", Role: model.RoleAdmin}
	anonActor  = Actor{}
	buyerActor = Actor{UserID: "buyer-1", Role: model.RoleBuyer}
)

func gifterActor(g *model.User) Actor {
	return Actor{UserID: g.ID, Role: model.RoleGifter}
}

func createUser(t *testing.T, db *gorm.DB, email string, role model.Role) *model.User {
	t.Helper()
	user := &model.User{
		ID:        uuid.NewString(),
		Email:     email,
		Name:      email,
		Role:      role,
		CreatedAt: time.Now(),
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func createSkin(t *testing.T, db *gorm.DB, name string, price int, releaseDate time.Time) *model.Skin {
	t.Helper()
	skin := &model.Skin{
		ID:          uuid.NewString(),
		Name:        name,
		Price:       price,
		IsActive:    true,
		ReleaseDate: releaseDate,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	require.NoError(t, db.Create(skin).Error)
	return skin
}

func orderRequest(skinID, email, mlid string) *model.OrderRequest {
	return &model.OrderRequest{
		SkinID:      skinID,
		Name:        "Buyer " + mlid,
		Email:       email,
		BuyerIGN:    "ign-" + mlid,
		BuyerMLID:   mlid,
		BuyerServer: "2901",
	}
}

func unusedCount(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var count int64
	require.NoError(t, db.Model(&model.GifterSlot{}).Where("is_used = ?", false).Count(&count).Error)
	return count
}

func ctx() context.Context {
	return context.Background()
}
