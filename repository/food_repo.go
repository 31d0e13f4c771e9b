package repository

import (
	"context"

	"mealrec/models"

	"gorm.io/gorm"
)

type foodRepository struct {
	db *gorm.DB
}

func NewFoodRepository(db *gorm.DB) FoodRepository {
	return &foodRepository{db: db}
}

func (r *foodRepository) Get(ctx context.Context, id uint) (*models.Food, error) {
	var food models.Food
	if err := r.db.WithContext(ctx).Preload("Allergens").First(&food, id).Error; err != nil {
		return nil, translate(err)
	}
	return &food, nil
}

func (r *foodRepository) FindByIDs(ctx context.Context, ids []uint) ([]models.Food, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var foods []models.Food
	err := r.db.WithContext(ctx).
		Preload("Allergens").
		Where("id IN ?", ids).
		Find(&foods).Error
	return foods, err
}

func (r *foodRepository) Search(ctx context.Context, query string, limit int) ([]models.Food, error) {
	if limit <= 0 {
		limit = 20
	}
	var foods []models.Food
	err := r.db.WithContext(ctx).
		Preload("Allergens").
		Where("representative_name ILIKE ? OR food_class ILIKE ?", "%"+query+"%", "%"+query+"%").
		Order("representative_name").
		Limit(limit).
		Find(&foods).Error
	return foods, err
}

func (r *foodRepository) ListByClass(ctx context.Context, class string) ([]models.Food, error) {
	var foods []models.Food
	err := r.db.WithContext(ctx).
		Where("food_class = ?", class).
		Order("representative_name").
		Find(&foods).Error
	return foods, err
}

func (r *foodRepository) FindInBatches(ctx context.Context, size int, fn func(batch []models.Food) error) error {
	var batch []models.Food
	return r.db.WithContext(ctx).
		Order("id").
		FindInBatches(&batch, size, func(tx *gorm.DB, _ int) error {
			return fn(batch)
		}).Error
}
