// Package repository holds one store interface per entity together with the
// gorm implementations used in production.
package repository

import (
	"context"
	"errors"
	"time"

	"mealrec/models"

	"gorm.io/gorm"
)

var ErrNotFound = errors.New("record not found")

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id uint) (*models.User, error)
}

type ProfileRepository interface {
	// GetByUserID loads the profile with its allergies.
	GetByUserID(ctx context.Context, userID uint) (*models.Profile, error)
	// Update saves the profile fields and, when allergies is non-nil, swaps
	// the allergy set in the same transaction. Unknown allergen names are
	// created.
	Update(ctx context.Context, profile *models.Profile, allergies []string) error
}

type PreferenceRepository interface {
	// ListByProfile loads preferences with their foods.
	ListByProfile(ctx context.Context, profileID uint) ([]models.FoodPreference, error)
	Upsert(ctx context.Context, profileID, foodID uint, value models.PreferenceValue) error
	Delete(ctx context.Context, profileID, foodID uint) error
}

type FoodRepository interface {
	Get(ctx context.Context, id uint) (*models.Food, error)
	// FindByIDs loads foods with allergens; missing ids are skipped and the
	// result order is unspecified.
	FindByIDs(ctx context.Context, ids []uint) ([]models.Food, error)
	Search(ctx context.Context, query string, limit int) ([]models.Food, error)
	ListByClass(ctx context.Context, class string) ([]models.Food, error)
	FindInBatches(ctx context.Context, size int, fn func(batch []models.Food) error) error
}

type MealRepository interface {
	Create(ctx context.Context, meal *models.Meal) error
	Get(ctx context.Context, userID, mealID uint) (*models.Meal, error)
	ListByUser(ctx context.Context, userID uint) ([]models.Meal, error)
	// ReplaceItems rewrites title, day and the full item list of a meal.
	ReplaceItems(ctx context.Context, meal *models.Meal) error
	Delete(ctx context.Context, userID, mealID uint) error
	// ItemsBetween returns items with foods for meals whose day is in [from, to).
	ItemsBetween(ctx context.Context, userID uint, from, to time.Time) ([]DatedItem, error)
}

type AlertRepository interface {
	Create(ctx context.Context, alert *models.Alert) error
	ListByUser(ctx context.Context, userID uint, limit int) ([]models.Alert, error)
}

// DatedItem is a meal item tagged with the day of its meal.
type DatedItem struct {
	Day  time.Time
	Item models.MealItem
}

func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
