package config

import (
	"fmt"

	"mealrec/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// InitDB opens the postgres connection, enables pgvector and migrates every
// model. The embedding column width follows cfg.Embedding.Dimensions.
func InitDB(cfg *Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.Exec("CREATE EXTENSION IF NOT EXISTS vector").Error; err != nil {
		return nil, fmt.Errorf("enable pgvector: %w", err)
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.Allergen{},
		&models.Profile{},
		&models.Food{},
		&models.FoodPreference{},
		&models.Meal{},
		&models.MealItem{},
		&models.Alert{},
	)
	if err != nil {
		return nil, fmt.Errorf("AutoMigrate failed: %w", err)
	}

	// The vector width is a runtime setting, so this table is created by hand.
	err = db.Exec(fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		food_id    BIGINT PRIMARY KEY,
		embedding  vector(%d) NOT NULL,
		document   TEXT NOT NULL,
		name       TEXT NOT NULL DEFAULT '',
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`, models.FoodEmbedding{}.TableName(), cfg.Embedding.Dimensions)).Error
	if err != nil {
		return nil, fmt.Errorf("create embedding table: %w", err)
	}
	return db, nil
}
