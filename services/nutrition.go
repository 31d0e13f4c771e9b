package services

import (
	"math"
	"time"

	"mealrec/models"
	"mealrec/utils"
)

const (
	TargetFromProfile  = "profile"
	TargetFromFallback = "fallback"
)

// CalorieTarget is the reference budget for one day.
type CalorieTarget struct {
	Kcal   int    `json:"kcal"`
	Source string `json:"source"`
}

// ResolveTarget uses the profile's recommended kcal, or fallback when the
// profile lacks gender, height, weight or birth date.
func ResolveTarget(p *models.Profile, now time.Time, fallback int) CalorieTarget {
	if kcal, ok := utils.RecommendedKcal(p, now); ok {
		return CalorieTarget{Kcal: kcal, Source: TargetFromProfile}
	}
	return CalorieTarget{Kcal: fallback, Source: TargetFromFallback}
}

// NutritionSummary is the aggregate of one day's meal items.
type NutritionSummary struct {
	TotalKcal     float64 `json:"total_kcal"`
	TotalCarbsG   float64 `json:"total_carbs_g"`
	TotalProteinG float64 `json:"total_protein_g"`
	TotalFatG     float64 `json:"total_fat_g"`
	TotalSugarsG  float64 `json:"total_sugars_g"`

	CarbPct    int `json:"carb_pct"`
	ProteinPct int `json:"protein_pct"`
	FatPct     int `json:"fat_pct"`

	TargetKcal    int     `json:"target_kcal"`
	TargetSource  string  `json:"target_source"`
	RemainingKcal float64 `json:"remaining_kcal"`
}

// AggregateNutrition sums per-item contributions (per-100 g value x weight/100).
// Absent food values contribute nothing. Percentages always sum to 100 unless
// the macro mass is zero, in which case all three are zero.
func AggregateNutrition(items []models.MealItem, target CalorieTarget) NutritionSummary {
	var s NutritionSummary
	for i := range items {
		it := &items[i]
		ratio := it.WeightG / 100.0
		s.TotalKcal += contribution(it.Food.EnergyKcal, ratio)
		s.TotalCarbsG += contribution(it.Food.CarbohydrateG, ratio)
		s.TotalProteinG += contribution(it.Food.ProteinG, ratio)
		s.TotalFatG += contribution(it.Food.FatG, ratio)
		s.TotalSugarsG += contribution(it.Food.SugarsG, ratio)
	}

	s.CarbPct, s.ProteinPct, s.FatPct = MacroSplit(s.TotalCarbsG, s.TotalProteinG, s.TotalFatG)

	s.TargetKcal = target.Kcal
	s.TargetSource = target.Source
	s.RemainingKcal = float64(target.Kcal) - s.TotalKcal
	return s
}

// MacroSplit rounds carbs and protein and gives fat the remainder, so the
// three always sum to 100. When carbs and protein both round up and fat is
// near zero, fat comes out as -1 (50.5/49.5/0 gives 51/50/-1).
func MacroSplit(carbs, protein, fat float64) (carbPct, proteinPct, fatPct int) {
	mass := carbs + protein + fat
	if mass <= 0 {
		return 0, 0, 0
	}
	carbPct = int(math.Round(100 * carbs / mass))
	proteinPct = int(math.Round(100 * protein / mass))
	return carbPct, proteinPct, 100 - carbPct - proteinPct
}

func contribution(per100g *float64, ratio float64) float64 {
	if per100g == nil {
		return 0
	}
	return *per100g * ratio
}

// DayBounds returns [start of day, start of next day) in t's location.
func DayBounds(t time.Time) (time.Time, time.Time) {
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return start, start.AddDate(0, 0, 1)
}
