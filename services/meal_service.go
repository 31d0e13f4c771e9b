package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"mealrec/models"
	"mealrec/repository"
	"mealrec/utils"
)

type MealService struct {
	meals    repository.MealRepository
	foods    repository.FoodRepository
	profiles repository.ProfileRepository
	alerts   *AlertBus
	fallback int
	now      func() time.Time
}

func NewMealService(meals repository.MealRepository, foods repository.FoodRepository, profiles repository.ProfileRepository, alerts *AlertBus, fallbackKcal int) *MealService {
	if fallbackKcal <= 0 {
		fallbackKcal = 2000
	}
	return &MealService{meals: meals, foods: foods, profiles: profiles, alerts: alerts, fallback: fallbackKcal, now: time.Now}
}

type MealItemInput struct {
	FoodID  uint    `json:"food_id"`
	WeightG float64 `json:"weight_g"`
}

type MealInput struct {
	Title string          `json:"title"`
	Day   string          `json:"day"` // YYYY-MM-DD, defaults to today
	Items []MealItemInput `json:"items"`
}

type MealItemView struct {
	ID        uint            `json:"id"`
	FoodID    uint            `json:"food_id"`
	FoodName  string          `json:"food_name"`
	WeightG   float64         `json:"weight_g"`
	Nutrition NutrientAmounts `json:"nutrition"`
	Safe      bool            `json:"safe"`
	Warnings  []string        `json:"warnings"`
	Findings  []utils.Warning `json:"findings,omitempty"`
}

type MealView struct {
	ID        uint           `json:"id"`
	Title     string         `json:"title"`
	Day       string         `json:"day"`
	CreatedAt time.Time      `json:"created_at"`
	MealSafe  bool           `json:"meal_safe"`
	TotalKcal float64        `json:"total_kcal"`
	Items     []MealItemView `json:"items"`
}

func (s *MealService) Create(ctx context.Context, userID uint, in MealInput) (*MealView, error) {
	meal, findings, err := s.build(ctx, userID, in)
	if err != nil {
		return nil, err
	}
	if err := s.meals.Create(ctx, meal); err != nil {
		return nil, fmt.Errorf("create meal: %w", err)
	}
	s.emitAllergenAlerts(ctx, userID, meal, findings)
	return mealView(meal, findings), nil
}

func (s *MealService) Update(ctx context.Context, userID, mealID uint, in MealInput) (*MealView, error) {
	meal, findings, err := s.build(ctx, userID, in)
	if err != nil {
		return nil, err
	}
	meal.ID = mealID
	if err := s.meals.ReplaceItems(ctx, meal); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrMealNotFound
		}
		return nil, fmt.Errorf("update meal: %w", err)
	}
	s.emitAllergenAlerts(ctx, userID, meal, findings)
	return mealView(meal, findings), nil
}

func (s *MealService) Get(ctx context.Context, userID, mealID uint) (*MealView, error) {
	meal, err := s.meals.Get(ctx, userID, mealID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrMealNotFound
		}
		return nil, err
	}
	return mealView(meal, nil), nil
}

func (s *MealService) List(ctx context.Context, userID uint) ([]MealView, error) {
	meals, err := s.meals.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]MealView, 0, len(meals))
	for i := range meals {
		out = append(out, *mealView(&meals[i], nil))
	}
	return out, nil
}

func (s *MealService) Delete(ctx context.Context, userID, mealID uint) error {
	if err := s.meals.Delete(ctx, userID, mealID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrMealNotFound
		}
		return err
	}
	return nil
}

// build validates the input, resolves foods and assesses every item
// against the owner's profile.
func (s *MealService) build(ctx context.Context, userID uint, in MealInput) (*models.Meal, [][]utils.Warning, error) {
	now := s.now()
	day, _ := DayBounds(now)
	if in.Day != "" {
		d, err := time.ParseInLocation("2006-01-02", in.Day, now.Location())
		if err != nil {
			return nil, nil, fmt.Errorf("%w: day must be YYYY-MM-DD", ErrValidation)
		}
		day = d
	}
	if len(in.Items) == 0 {
		return nil, nil, fmt.Errorf("%w: a meal needs at least one item", ErrValidation)
	}

	ids := make([]uint, 0, len(in.Items))
	for i, it := range in.Items {
		if it.WeightG <= 0 {
			return nil, nil, fmt.Errorf("%w: item %d: weight_g must be positive", ErrValidation, i)
		}
		ids = append(ids, it.FoodID)
	}
	foods, err := s.foods.FindByIDs(ctx, ids)
	if err != nil {
		return nil, nil, fmt.Errorf("load foods: %w", err)
	}
	byID := make(map[uint]*models.Food, len(foods))
	for i := range foods {
		byID[foods[i].ID] = &foods[i]
	}

	actx, err := s.assessmentContext(ctx, userID, now)
	if err != nil {
		return nil, nil, err
	}

	title := strings.TrimSpace(in.Title)
	if title == "" {
		title = "식사"
	}
	meal := &models.Meal{UserID: userID, Title: title, Day: day}
	findings := make([][]utils.Warning, len(in.Items))
	for i, it := range in.Items {
		food, ok := byID[it.FoodID]
		if !ok {
			return nil, nil, fmt.Errorf("%w: id %d", ErrFoodNotFound, it.FoodID)
		}
		ws := utils.AssessMealItem(food, it.WeightG, actx)
		findings[i] = ws
		meal.Items = append(meal.Items, models.MealItem{
			Position: i,
			FoodID:   food.ID,
			Food:     *food,
			WeightG:  it.WeightG,
			Warnings: strings.Join(utils.WarningMessages(ws), "; "),
		})
	}
	return meal, findings, nil
}

func (s *MealService) assessmentContext(ctx context.Context, userID uint, now time.Time) (utils.AssessmentContext, error) {
	profile, err := s.profiles.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return utils.AssessmentContext{CalorieTarget: float64(s.fallback)}, nil
		}
		return utils.AssessmentContext{}, fmt.Errorf("load profile: %w", err)
	}
	target := ResolveTarget(profile, now, s.fallback)
	age := 0
	if profile.BirthDate != nil {
		age = utils.CalculateAge(*profile.BirthDate, now)
	}
	return utils.BuildAssessmentContext(profile, target.Kcal, age), nil
}

func (s *MealService) emitAllergenAlerts(ctx context.Context, userID uint, meal *models.Meal, findings [][]utils.Warning) {
	for i, ws := range findings {
		for _, w := range ws {
			if w.Code != "allergen_conflict" {
				continue
			}
			s.alerts.Emit(ctx, userID, AlertAllergen,
				fmt.Sprintf("%s (%s): %s", meal.Title, meal.Items[i].Food.RepresentativeName, w.Message))
		}
	}
}

func mealView(m *models.Meal, findings [][]utils.Warning) *MealView {
	v := &MealView{
		ID:        m.ID,
		Title:     m.Title,
		Day:       m.Day.Format("2006-01-02"),
		CreatedAt: m.CreatedAt,
		MealSafe:  true,
		Items:     make([]MealItemView, 0, len(m.Items)),
	}
	for i, it := range m.Items {
		iv := MealItemView{
			ID:        it.ID,
			FoodID:    it.FoodID,
			FoodName:  it.Food.RepresentativeName,
			WeightG:   it.WeightG,
			Nutrition: ScaleNutrients(&it.Food, it.WeightG),
			Warnings:  splitWarnings(it.Warnings),
		}
		if findings != nil {
			iv.Findings = findings[i]
		}
		iv.Safe = len(iv.Warnings) == 0
		if !iv.Safe {
			v.MealSafe = false
		}
		if iv.Nutrition.EnergyKcal != nil {
			v.TotalKcal += *iv.Nutrition.EnergyKcal
		}
		v.Items = append(v.Items, iv)
	}
	return v
}

func splitWarnings(s string) []string {
	if s == "" {
		return []string{}
	}
	parts := strings.Split(s, "; ")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
