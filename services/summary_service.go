package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"mealrec/models"
	"mealrec/repository"
)

const maxHistoryDays = 90

// SummaryService reports intake per calendar day against the user's target.
type SummaryService struct {
	meals    repository.MealRepository
	profiles repository.ProfileRepository
	fallback int
	now      func() time.Time
}

func NewSummaryService(meals repository.MealRepository, profiles repository.ProfileRepository, fallbackKcal int) *SummaryService {
	if fallbackKcal <= 0 {
		fallbackKcal = 2000
	}
	return &SummaryService{meals: meals, profiles: profiles, fallback: fallbackKcal, now: time.Now}
}

type DaySummary struct {
	Day       string           `json:"day"`
	Items     int              `json:"items"`
	Nutrition NutritionSummary `json:"nutrition"`
	Flag      MacroFlag        `json:"macro_flag,omitempty"`
}

// Daily summarizes one day; an empty day string means today.
func (s *SummaryService) Daily(ctx context.Context, userID uint, day string) (*DaySummary, error) {
	now := s.now()
	from, _ := DayBounds(now)
	if day != "" {
		d, err := time.ParseInLocation("2006-01-02", day, now.Location())
		if err != nil {
			return nil, fmt.Errorf("%w: day must be YYYY-MM-DD", ErrValidation)
		}
		from = d
	}
	history, err := s.summarize(ctx, userID, from, 1)
	if err != nil {
		return nil, err
	}
	return &history[0], nil
}

// History returns the last days days ending today, oldest first. Days
// without meals are included with zero totals.
func (s *SummaryService) History(ctx context.Context, userID uint, days int) ([]DaySummary, error) {
	if days <= 0 || days > maxHistoryDays {
		return nil, fmt.Errorf("%w: days must be between 1 and %d", ErrValidation, maxHistoryDays)
	}
	today, _ := DayBounds(s.now())
	return s.summarize(ctx, userID, today.AddDate(0, 0, -(days-1)), days)
}

func (s *SummaryService) summarize(ctx context.Context, userID uint, from time.Time, days int) ([]DaySummary, error) {
	to := from.AddDate(0, 0, days)

	profile, err := s.profiles.GetByUserID(ctx, userID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	target := ResolveTarget(profile, s.now(), s.fallback)

	dated, err := s.meals.ItemsBetween(ctx, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("load meals: %w", err)
	}
	byDay := make(map[string][]models.MealItem, days)
	for _, d := range dated {
		key := d.Day.Format("2006-01-02")
		byDay[key] = append(byDay[key], d.Item)
	}

	out := make([]DaySummary, 0, days)
	for i := 0; i < days; i++ {
		key := from.AddDate(0, 0, i).Format("2006-01-02")
		items := byDay[key]
		n := AggregateNutrition(items, target)
		out = append(out, DaySummary{Day: key, Items: len(items), Nutrition: n, Flag: EvaluateMacroFlag(n)})
	}
	return out, nil
}
