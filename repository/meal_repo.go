package repository

import (
	"context"
	"time"

	"mealrec/models"

	"gorm.io/gorm"
)

type mealRepository struct {
	db *gorm.DB
}

func NewMealRepository(db *gorm.DB) MealRepository {
	return &mealRepository{db: db}
}

func preloadItems(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC, id ASC")
}

func (r *mealRepository) Create(ctx context.Context, meal *models.Meal) error {
	return r.db.WithContext(ctx).Omit("Items.Food").Create(meal).Error
}

func (r *mealRepository) Get(ctx context.Context, userID, mealID uint) (*models.Meal, error) {
	var meal models.Meal
	err := r.db.WithContext(ctx).
		Preload("Items", preloadItems).
		Preload("Items.Food").
		Where("id = ? AND user_id = ?", mealID, userID).
		First(&meal).Error
	if err != nil {
		return nil, translate(err)
	}
	return &meal, nil
}

func (r *mealRepository) ListByUser(ctx context.Context, userID uint) ([]models.Meal, error) {
	var meals []models.Meal
	err := r.db.WithContext(ctx).
		Preload("Items", preloadItems).
		Preload("Items.Food").
		Where("user_id = ?", userID).
		Order("day DESC, created_at DESC").
		Find(&meals).Error
	return meals, err
}

func (r *mealRepository) ReplaceItems(ctx context.Context, meal *models.Meal) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Meal{}).
			Where("id = ? AND user_id = ?", meal.ID, meal.UserID).
			Updates(map[string]interface{}{"title": meal.Title, "day": meal.Day})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		if err := tx.Where("meal_id = ?", meal.ID).Delete(&models.MealItem{}).Error; err != nil {
			return err
		}
		for i := range meal.Items {
			meal.Items[i].ID = 0
			meal.Items[i].MealID = meal.ID
		}
		if len(meal.Items) == 0 {
			return nil
		}
		return tx.Omit("Food").Create(&meal.Items).Error
	})
}

func (r *mealRepository) Delete(ctx context.Context, userID, mealID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ? AND user_id = ?", mealID, userID).Delete(&models.Meal{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return tx.Where("meal_id = ?", mealID).Delete(&models.MealItem{}).Error
	})
}

func (r *mealRepository) ItemsBetween(ctx context.Context, userID uint, from, to time.Time) ([]DatedItem, error) {
	var meals []models.Meal
	err := r.db.WithContext(ctx).
		Preload("Items", preloadItems).
		Preload("Items.Food").
		Where("user_id = ? AND day >= ? AND day < ?", userID, from, to).
		Order("day ASC, created_at ASC").
		Find(&meals).Error
	if err != nil {
		return nil, err
	}
	var out []DatedItem
	for _, m := range meals {
		for _, it := range m.Items {
			out = append(out, DatedItem{Day: m.Day, Item: it})
		}
	}
	return out, nil
}
