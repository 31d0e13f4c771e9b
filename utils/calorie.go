package utils

import (
	"errors"
	"math"
	"time"

	"mealrec/models"
)

var activityFactors = map[models.ActivityLevel]float64{
	models.ActivityLow:        1.2,
	models.ActivityLight:      1.375,
	models.ActivityActive:     1.55,
	models.ActivityVeryActive: 1.725,
}

// ActivityFactor returns the TDEE multiplier; unknown or empty levels count as low.
func ActivityFactor(level models.ActivityLevel) float64 {
	if f, ok := activityFactors[level]; ok {
		return f
	}
	return activityFactors[models.ActivityLow]
}

// CalculateAge returns whole years between birth and now. The year only
// counts once now's (month, day) reaches the birth (month, day).
func CalculateAge(birth, now time.Time) int {
	age := now.Year() - birth.Year()
	if now.Month() < birth.Month() || (now.Month() == birth.Month() && now.Day() < birth.Day()) {
		age--
	}
	return age
}

// BMR is the Mifflin-St Jeor basal metabolic rate.
func BMR(gender models.Gender, heightCm, weightKg float64, age int) float64 {
	bmr := 10*weightKg + 6.25*heightCm - 5*float64(age)
	if gender == models.GenderMale {
		return bmr + 5
	}
	return bmr - 161
}

// TargetKcal rounds BMR x activity factor half away from zero.
func TargetKcal(gender models.Gender, heightCm, weightKg float64, age int, level models.ActivityLevel) int {
	return int(math.Round(BMR(gender, heightCm, weightKg, age) * ActivityFactor(level)))
}

// RecommendedKcal is the profile's daily energy budget. ok is false when
// gender, height, weight or birth date is missing.
func RecommendedKcal(p *models.Profile, now time.Time) (kcal int, ok bool) {
	if p == nil || p.Gender == "" || p.HeightCm == nil || p.WeightKg == nil || p.BirthDate == nil {
		return 0, false
	}
	age := CalculateAge(*p.BirthDate, now)
	return TargetKcal(p.Gender, *p.HeightCm, *p.WeightKg, age, p.ActivityLevel), true
}

// CalculateBMI expects height in centimeters and weight in kilograms.
func CalculateBMI(heightCm, weightKg float64) (float64, error) {
	if heightCm <= 0 || weightKg <= 0 {
		return 0, errors.New("height and weight must be positive")
	}
	if heightCm < 50 || heightCm > 250 || weightKg < 10 || weightKg > 400 {
		return 0, errors.New("height/weight out of plausible range")
	}
	h := heightCm / 100.0
	return weightKg / (h * h), nil
}

func BMICategory(bmi float64) string {
	switch {
	case bmi < 18.5:
		return "Underweight"
	case bmi < 25.0:
		return "Normal weight"
	case bmi < 30.0:
		return "Overweight"
	default:
		return "Obese"
	}
}
