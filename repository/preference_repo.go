package repository

import (
	"context"
	"time"

	"mealrec/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type preferenceRepository struct {
	db *gorm.DB
}

func NewPreferenceRepository(db *gorm.DB) PreferenceRepository {
	return &preferenceRepository{db: db}
}

func (r *preferenceRepository) ListByProfile(ctx context.Context, profileID uint) ([]models.FoodPreference, error) {
	var prefs []models.FoodPreference
	err := r.db.WithContext(ctx).
		Preload("Food").
		Where("profile_id = ?", profileID).
		Order("id").
		Find(&prefs).Error
	return prefs, err
}

// Upsert relies on the (profile_id, food_id) unique index so a second write
// on the same pair overwrites the value.
func (r *preferenceRepository) Upsert(ctx context.Context, profileID, foodID uint, value models.PreferenceValue) error {
	pref := models.FoodPreference{
		ProfileID:  profileID,
		FoodID:     foodID,
		Preference: value,
		UpdatedAt:  time.Now(),
	}
	return r.db.WithContext(ctx).
		Omit("Food").
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "profile_id"}, {Name: "food_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"preference", "updated_at"}),
		}).
		Create(&pref).Error
}

func (r *preferenceRepository) Delete(ctx context.Context, profileID, foodID uint) error {
	res := r.db.WithContext(ctx).
		Where("profile_id = ? AND food_id = ?", profileID, foodID).
		Delete(&models.FoodPreference{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
