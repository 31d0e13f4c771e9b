package models

import (
	"time"

	"gorm.io/gorm"
)

type Gender string

const (
	GenderMale   Gender = "M"
	GenderFemale Gender = "F"
)

type ActivityLevel string

const (
	ActivityLow        ActivityLevel = "low"
	ActivityLight      ActivityLevel = "light"
	ActivityActive     ActivityLevel = "active"
	ActivityVeryActive ActivityLevel = "very_active"
)

// Profile holds the physiological and dietary attributes of one user.
// Nullable columns stay nil until the user fills them in.
type Profile struct {
	gorm.Model
	UserID         uint          `gorm:"uniqueIndex;not null"`
	Gender         Gender        `gorm:"size:1"`
	HeightCm       *float64
	WeightKg       *float64
	BirthDate      *time.Time    `gorm:"type:date"`
	ActivityLevel  ActivityLevel `gorm:"size:20"`
	IsVegetarian   bool          `gorm:"not null;default:false"`
	IsVegan        bool          `gorm:"not null;default:false"`
	ProfilePicture string

	Allergies   []Allergen `gorm:"many2many:profile_allergies;"`
	Preferences []FoodPreference
}

func (p *Profile) AllergyNames() []string {
	names := make([]string, 0, len(p.Allergies))
	for _, a := range p.Allergies {
		names = append(names, a.Name)
	}
	return names
}
