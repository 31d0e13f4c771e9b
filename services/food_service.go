package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"mealrec/models"
	"mealrec/repository"
)

// NutrientAmounts are nutrient values for a given weight; nil when the
// catalog has no value.
type NutrientAmounts struct {
	EnergyKcal    *float64 `json:"energy_kcal"`
	ProteinG      *float64 `json:"protein_g"`
	FatG          *float64 `json:"fat_g"`
	CarbohydrateG *float64 `json:"carbohydrate_g"`
	SugarsG       *float64 `json:"sugars_g"`
}

// ScaleNutrients converts per-100 g catalog values to weightG grams.
func ScaleNutrients(f *models.Food, weightG float64) NutrientAmounts {
	ratio := weightG / 100.0
	scale := func(v *float64) *float64 {
		if v == nil {
			return nil
		}
		x := *v * ratio
		return &x
	}
	return NutrientAmounts{
		EnergyKcal:    scale(f.EnergyKcal),
		ProteinG:      scale(f.ProteinG),
		FatG:          scale(f.FatG),
		CarbohydrateG: scale(f.CarbohydrateG),
		SugarsG:       scale(f.SugarsG),
	}
}

type FoodService struct {
	foods      repository.FoodRepository
	recognizer *FoodRecognizer
}

func NewFoodService(foods repository.FoodRepository, recognizer *FoodRecognizer) *FoodService {
	return &FoodService{foods: foods, recognizer: recognizer}
}

func (s *FoodService) Search(ctx context.Context, query string, limit int) ([]models.Food, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: q is required", ErrValidation)
	}
	return s.foods.Search(ctx, query, limit)
}

func (s *FoodService) Get(ctx context.Context, id uint) (*models.Food, error) {
	f, err := s.foods.Get(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrFoodNotFound
	}
	return f, err
}

// Options lists the catalog foods of one food class.
func (s *FoodService) Options(ctx context.Context, class string) ([]models.Food, error) {
	class = strings.TrimSpace(class)
	if class == "" {
		return nil, fmt.Errorf("%w: class is required", ErrValidation)
	}
	return s.foods.ListByClass(ctx, class)
}

type NutritionPreview struct {
	FoodID    uint            `json:"food_id"`
	FoodName  string          `json:"food_name"`
	FoodClass string          `json:"food_class"`
	BaseG     float64         `json:"base_g"`
	InputG    float64         `json:"input_g"`
	Nutrition NutrientAmounts `json:"nutrition"`
}

// CalcNutrition previews what weightG grams of a food contribute.
func (s *FoodService) CalcNutrition(ctx context.Context, foodID uint, weightG float64) (*NutritionPreview, error) {
	if weightG <= 0 {
		return nil, fmt.Errorf("%w: weight_g must be positive", ErrValidation)
	}
	f, err := s.Get(ctx, foodID)
	if err != nil {
		return nil, err
	}
	return &NutritionPreview{
		FoodID:    f.ID,
		FoodName:  f.RepresentativeName,
		FoodClass: f.FoodClass,
		BaseG:     100,
		InputG:    weightG,
		Nutrition: ScaleNutrients(f, weightG),
	}, nil
}

func (s *FoodService) Recognize(ctx context.Context, dataURI string) (*RecognitionResult, error) {
	if s.recognizer == nil {
		return nil, fmt.Errorf("%w: photo recognition is not configured", ErrUpstream)
	}
	return s.recognizer.Recognize(ctx, dataURI)
}
