package repository

import (
	"context"

	"mealrec/models"

	"gorm.io/gorm"
)

type profileRepository struct {
	db *gorm.DB
}

func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &profileRepository{db: db}
}

func (r *profileRepository) GetByUserID(ctx context.Context, userID uint) (*models.Profile, error) {
	var profile models.Profile
	err := r.db.WithContext(ctx).
		Preload("Allergies").
		Where("user_id = ?", userID).
		First(&profile).Error
	if err != nil {
		return nil, translate(err)
	}
	return &profile, nil
}

func (r *profileRepository) Update(ctx context.Context, profile *models.Profile, allergies []string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Allergies", "Preferences").Save(profile).Error; err != nil {
			return err
		}
		if allergies == nil {
			return nil
		}
		allergens := make([]models.Allergen, 0, len(allergies))
		for _, name := range allergies {
			a := models.Allergen{Name: name}
			if err := tx.Where(models.Allergen{Name: name}).FirstOrCreate(&a).Error; err != nil {
				return err
			}
			allergens = append(allergens, a)
		}
		if err := tx.Model(profile).Association("Allergies").Replace(allergens); err != nil {
			return err
		}
		profile.Allergies = allergens
		return nil
	})
}
