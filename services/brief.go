package services

import (
	"fmt"
	"strings"

	"mealrec/models"
)

// SystemRole is the fixed instruction sent with every recommendation brief.
const SystemRole = "당신은 사용자의 건강 상태와 식습관을 고려해 한 끼 식사를 추천하는 영양사입니다. " +
	"제공된 후보 음식 중에서만 추천하고, 추천 이유를 영양 정보와 함께 간결하게 설명하세요."

// MacroFlag is at most one guidance hint derived from today's intake.
type MacroFlag string

const (
	MacroFlagNone       MacroFlag = ""
	MacroFlagProteinLow MacroFlag = "protein_low"
	MacroFlagCarbHigh   MacroFlag = "carb_high"
)

const macroFlagMinKcal = 300

// EvaluateMacroFlag only looks at days with more than 300 kcal logged.
// Protein below 25% wins over carbohydrate above 65%.
func EvaluateMacroFlag(s NutritionSummary) MacroFlag {
	if s.TotalKcal <= macroFlagMinKcal {
		return MacroFlagNone
	}
	switch {
	case s.ProteinPct < 25:
		return MacroFlagProteinLow
	case s.CarbPct > 65:
		return MacroFlagCarbHigh
	}
	return MacroFlagNone
}

// Constraints is the user's dietary situation as it appears in the brief.
type Constraints struct {
	Vegetarian bool
	Vegan      bool
	Allergies  []string
	Disliked   []string
	Liked      []string
}

// BriefCandidate is one ranked food with its per-100 g profile.
type BriefCandidate struct {
	FoodID        uint     `json:"food_id"`
	Name          string   `json:"name"`
	EnergyKcal    *float64 `json:"energy_kcal"`
	ProteinG      *float64 `json:"protein_g"`
	FatG          *float64 `json:"fat_g"`
	CarbohydrateG *float64 `json:"carbohydrate_g"`
	SugarsG       *float64 `json:"sugars_g"`
	TasteProfile  []string `json:"taste_profile"`
	Situations    []string `json:"situational_tags"`
	CookingMethod string   `json:"cooking_method"`
	Allergens     []string `json:"allergens"`
}

func NewBriefCandidate(f *models.Food) BriefCandidate {
	return BriefCandidate{
		FoodID:        f.ID,
		Name:          f.RepresentativeName,
		EnergyKcal:    f.EnergyKcal,
		ProteinG:      f.ProteinG,
		FatG:          f.FatG,
		CarbohydrateG: f.CarbohydrateG,
		SugarsG:       f.SugarsG,
		TasteProfile:  []string(f.TasteProfile),
		Situations:    []string(f.SituationalTags),
		CookingMethod: f.CookingMethod,
		Allergens:     f.AllergenNames(),
	}
}

// RecommendationBrief is everything the generator is told about one request.
// It only becomes text in Render.
type RecommendationBrief struct {
	Username    string
	Query       string
	Constraints Constraints
	Nutrition   NutritionSummary
	Flag        MacroFlag
	Candidates  []BriefCandidate
}

// ConstraintSentence lists the dietary flags and name lists, skipping empty ones.
func (b RecommendationBrief) ConstraintSentence() string {
	var parts []string
	if b.Constraints.Vegetarian {
		parts = append(parts, "채식 식단을 따릅니다")
	}
	if b.Constraints.Vegan {
		parts = append(parts, "비건 식단을 따릅니다")
	}
	if len(b.Constraints.Allergies) > 0 {
		parts = append(parts, fmt.Sprintf("%s 알레르기가 있습니다", strings.Join(b.Constraints.Allergies, ", ")))
	}
	if len(b.Constraints.Disliked) > 0 {
		parts = append(parts, fmt.Sprintf("%s을(를) 싫어합니다", strings.Join(b.Constraints.Disliked, ", ")))
	}
	if len(b.Constraints.Liked) > 0 {
		parts = append(parts, fmt.Sprintf("%s을(를) 좋아합니다", strings.Join(b.Constraints.Liked, ", ")))
	}
	if len(parts) == 0 {
		return "특별한 식단 제약이 없습니다."
	}
	return "사용자는 " + strings.Join(parts, ", ") + "."
}

func (b RecommendationBrief) flagSentence() string {
	switch b.Flag {
	case MacroFlagProteinLow:
		return "오늘 단백질 섭취 비율이 낮으므로 단백질이 풍부한 메뉴를 우선 고려하세요."
	case MacroFlagCarbHigh:
		return "오늘 탄수화물 섭취 비율이 높으므로 탄수화물이 적은 메뉴를 우선 고려하세요."
	}
	return ""
}

// Render serializes the brief into the user turn.
func (b RecommendationBrief) Render() string {
	var sb strings.Builder
	n := b.Nutrition

	fmt.Fprintf(&sb, "사용자 이름: %s\n", b.Username)
	fmt.Fprintf(&sb, "요청: %s\n\n", b.Query)
	sb.WriteString(b.ConstraintSentence())
	sb.WriteString("\n\n")

	fmt.Fprintf(&sb, "오늘 섭취량: %.0f kcal / 목표 %d kcal (남은 열량 %.0f kcal).\n",
		n.TotalKcal, n.TargetKcal, n.RemainingKcal)
	fmt.Fprintf(&sb, "탄수화물 %d%%, 단백질 %d%%, 지방 %d%%.\n", n.CarbPct, n.ProteinPct, n.FatPct)
	if s := b.flagSentence(); s != "" {
		sb.WriteString(s)
		sb.WriteString("\n")
	}

	sb.WriteString("\n추천 후보 (100g 기준):\n")
	for i, c := range b.Candidates {
		fmt.Fprintf(&sb, "%d. %s - 열량 %s kcal, 탄수화물 %s g, 단백질 %s g, 지방 %s g, 당류 %s g",
			i+1, c.Name,
			amount(c.EnergyKcal), amount(c.CarbohydrateG), amount(c.ProteinG), amount(c.FatG), amount(c.SugarsG))
		if len(c.TasteProfile) > 0 {
			fmt.Fprintf(&sb, "; 맛: %s", strings.Join(c.TasteProfile, ", "))
		}
		if len(c.Situations) > 0 {
			fmt.Fprintf(&sb, "; 상황: %s", strings.Join(c.Situations, ", "))
		}
		if c.CookingMethod != "" {
			fmt.Fprintf(&sb, "; 조리법: %s", c.CookingMethod)
		}
		if len(c.Allergens) > 0 {
			fmt.Fprintf(&sb, "; 알레르기 유발 성분: %s", strings.Join(c.Allergens, ", "))
		} else {
			sb.WriteString("; 알레르기 유발 성분: 없음")
		}
		sb.WriteString("\n")
	}
	sb.WriteString("\n위 후보 중 하나 이상을 골라 남은 열량과 영양 균형에 맞게 추천해 주세요.")
	return sb.String()
}

func amount(v *float64) string {
	if v == nil {
		return "정보 없음"
	}
	return fmt.Sprintf("%.1f", *v)
}
