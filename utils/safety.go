package utils

import (
	"fmt"
	"math"
	"strings"

	"mealrec/models"
)

type AssessmentContext struct {
	AgeYears      int
	CalorieTarget float64 // if 0, engine will assume 2000 kcal for % of day conversions
	Allergies     []string
}

// WarningSeverity categorizes how serious the flag is.
type WarningSeverity string

const (
	Info    WarningSeverity = "info"
	Caution WarningSeverity = "caution"
	High    WarningSeverity = "high"
)

// Warning is a structured finding you can show in your API / UI.
type Warning struct {
	Code           string          `json:"code"`
	Severity       WarningSeverity `json:"severity"`
	Message        string          `json:"message"`
	Metric         string          `json:"metric,omitempty"`
	Value          float64         `json:"value,omitempty"`
	Limit          float64         `json:"limit,omitempty"`
	PercentOfLimit float64         `json:"percent_of_limit,omitempty"`
	Reference      string          `json:"reference,omitempty"`
}

// BuildAssessmentContext derives the context from a profile. A nil profile
// or an undetermined calorie target leaves the 2000 kcal default in place.
func BuildAssessmentContext(p *models.Profile, kcalTarget int, ageYears int) AssessmentContext {
	ctx := AssessmentContext{AgeYears: ageYears, CalorieTarget: float64(kcalTarget)}
	if p != nil {
		ctx.Allergies = p.AllergyNames()
	}
	return ctx
}

// AllergenConflicts lists the food's allergens that the user is allergic to.
func AllergenConflicts(food *models.Food, allergies []string) []string {
	if food == nil || len(allergies) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(allergies))
	for _, a := range allergies {
		set[a] = struct{}{}
	}
	var out []string
	for _, a := range food.Allergens {
		if _, ok := set[a.Name]; ok {
			out = append(out, a.Name)
		}
	}
	return out
}

// AssessMealItem runs the rule set over one logged portion. Only emits
// findings when the underlying values are present.
func AssessMealItem(food *models.Food, weightG float64, ctx AssessmentContext) []Warning {
	warnings := []Warning{}
	if food == nil || weightG <= 0 {
		return warnings
	}

	if hits := AllergenConflicts(food, ctx.Allergies); len(hits) > 0 {
		warnings = append(warnings, Warning{
			Code:     "allergen_conflict",
			Severity: High,
			Message:  fmt.Sprintf("Contains %s, which is on your allergy list.", strings.Join(hits, ", ")),
		})
	}

	ratio := weightG / 100.0
	scaled := func(v *float64) float64 {
		if v == nil {
			return 0
		}
		return *v * ratio
	}
	carbG := scaled(food.CarbohydrateG)
	protG := scaled(food.ProteinG)
	fatG := scaled(food.FatG)
	sugarG := scaled(food.SugarsG)
	kcal := scaled(food.EnergyKcal)
	if kcal <= 0 {
		kcal = energyFromMacros(carbG, protG, fatG)
	}

	kcalTarget := ctx.CalorieTarget
	if kcalTarget <= 0 {
		kcalTarget = 2000
	}
	sugarDailyLimitG := (0.10 * kcalTarget) / 4.0 // <10% kcal/day

	// 1) Sugars. Total sugars stand in for added sugars, which the catalog lacks.
	if ctx.AgeYears > 0 && ctx.AgeYears < 2 {
		if sugarG > 0 {
			warnings = append(warnings, Warning{
				Code:      "sugars_infants",
				Severity:  High,
				Message:   "Under age 2: avoid sugary foods.",
				Metric:    "sugar_g",
				Value:     round2(sugarG),
				Reference: dgaRef("Added sugars: avoid for <2y"),
			})
		}
	} else if sugarG > 0 {
		if kcal > 0 {
			pct := (sugarG * 4.0) / kcal
			if pct >= 0.10 {
				warnings = append(warnings, Warning{
					Code:      "sugars_high_item",
					Severity:  Caution,
					Message:   fmt.Sprintf("High sugars for this item (%.0f%% of its calories).", pct*100),
					Metric:    "sugar_%_of_item_kcal",
					Value:     round2(pct * 100),
					Limit:     10,
					Reference: dgaRef("Added sugars ≤10% kcal"),
				})
			}
		}
		share := sugarG / sugarDailyLimitG
		switch {
		case share >= 0.40:
			warnings = append(warnings, Warning{
				Code:           "sugars_very_high_daily_share",
				Severity:       High,
				Message:        fmt.Sprintf("This portion provides ~%.0f%% of the daily sugar limit.", share*100),
				Metric:         "sugar_%_of_daily_limit",
				Value:          round2(share * 100),
				Limit:          100,
				PercentOfLimit: round2(share * 100),
				Reference:      dgaRef("<10% kcal/day from added sugars"),
			})
		case share >= 0.20:
			warnings = append(warnings, Warning{
				Code:           "sugars_high_daily_share",
				Severity:       Caution,
				Message:        fmt.Sprintf("High share of the daily sugar limit from one portion (~%.0f%%).", share*100),
				Metric:         "sugar_%_of_daily_limit",
				Value:          round2(share * 100),
				Limit:          100,
				PercentOfLimit: round2(share * 100),
				Reference:      dgaRef("<10% kcal/day from added sugars"),
			})
		}
	}

	// 2) AMDR, per item macro kcal
	if totalFromMacros := 4*carbG + 4*protG + 9*fatG; totalFromMacros > 0 {
		fPct := (9 * fatG) / totalFromMacros
		if fPct > 0.35 {
			warnings = append(warnings, Warning{
				Code:      "fat_share_high",
				Severity:  Info,
				Message:   fmt.Sprintf("Fat supplies %.0f%% of this item's calories, above the 20–35%% range.", fPct*100),
				Metric:    "fat_%_of_item_kcal",
				Value:     round2(fPct * 100),
				Limit:     35,
				Reference: dgaRef("AMDR fat 20–35% kcal"),
			})
		}
		cPct := (4 * carbG) / totalFromMacros
		if cPct > 0.65 {
			warnings = append(warnings, Warning{
				Code:      "carb_share_high",
				Severity:  Info,
				Message:   fmt.Sprintf("Carbohydrates supply %.0f%% of this item's calories, above the 45–65%% range.", cPct*100),
				Metric:    "carb_%_of_item_kcal",
				Value:     round2(cPct * 100),
				Limit:     65,
				Reference: dgaRef("AMDR carbohydrate 45–65% kcal"),
			})
		}
	}

	// 3) Energy density straight from the per-100 g value
	if food.EnergyKcal != nil {
		switch kcalPer100g := *food.EnergyKcal; {
		case kcalPer100g >= 275:
			warnings = append(warnings, Warning{
				Code:      "energy_density_very_high",
				Severity:  Info,
				Message:   "Very energy-dense food; mindful portions can help fit it into a healthy pattern.",
				Metric:    "kcal_per_100g",
				Value:     round2(kcalPer100g),
				Reference: dgaRef("Focus on nutrient density; moderate high-energy-density foods"),
			})
		case kcalPer100g >= 150:
			warnings = append(warnings, Warning{
				Code:      "energy_density_high",
				Severity:  Info,
				Message:   "High energy density; balance with lower-calorie, nutrient-dense sides.",
				Metric:    "kcal_per_100g",
				Value:     round2(kcalPer100g),
				Reference: dgaRef("Emphasize nutrient-dense foods"),
			})
		}
	}

	return warnings
}

// WarningMessages flattens findings for storage on a meal item.
func WarningMessages(ws []Warning) []string {
	out := make([]string, 0, len(ws))
	for _, w := range ws {
		out = append(out, w.Message)
	}
	return out
}

func energyFromMacros(carbG, protG, fatG float64) float64 {
	if carbG <= 0 && protG <= 0 && fatG <= 0 {
		return 0
	}
	return 4.0*carbG + 4.0*protG + 9.0*fatG
}

func dgaRef(where string) string {
	return "Dietary Guidelines for Americans, 2020-2025: " + where
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
