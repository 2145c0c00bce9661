package infrastructure

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/morphcute/mlbb-gifters/internal/config"
	"github.com/morphcute/mlbb-gifters/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ConnectDatabase establishes a connection to PostgreSQL using GORM.
func ConnectDatabase(cfg *config.Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBSSLMode,
	)

	gormConfig := &gorm.Config{
		Logger: logger.New(
			log.New(os.Stdout, "\r\n", log.LstdFlags),
			logger.Config{
				SlowThreshold:             time.Second,
				LogLevel:                  logger.Silent,
				IgnoreRecordNotFoundError: true,
				Colorful:                  true,
			},
		),
	}

	db, err := gorm.Open(postgres.Open(dsn), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return db, nil
}

// MigrateSchemas performs all database migrations in dependency order.
func MigrateSchemas(db *gorm.DB) error {
	if err := db.AutoMigrate(&model.User{}); err != nil {
		return fmt.Errorf("failed to migrate User table: %w", err)
	}
	if err := db.AutoMigrate(&model.Skin{}); err != nil {
		return fmt.Errorf("failed to migrate Skin table: %w", err)
	}
	if err := db.AutoMigrate(&model.GifterSlot{}); err != nil {
		return fmt.Errorf("failed to migrate GifterSlot table: %w", err)
	}
	if err := db.AutoMigrate(&model.Order{}); err != nil {
		return fmt.Errorf("failed to migrate Order table: %w", err)
	}
	return createIndexes(db)
}

// createIndexes adds composite indexes the hot queries depend on: slot
// reservation by (skin, gifter, is_used), the rate-limit window scan and the
// cooldown sweep predicate.
func createIndexes(db *gorm.DB) error {
	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_gifter_slots_skin_gifter_used
		ON gifter_slots(skin_id, gifter_id, is_used)
	`).Error; err != nil {
		return err
	}

	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_orders_mlid_created
		ON orders(buyer_mlid, created_at)
	`).Error; err != nil {
		return err
	}

	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_orders_status_ready
		ON orders(status, ready_at)
	`).Error; err != nil {
		return err
	}

	return nil
}
