package models

import "time"

type PreferenceValue string

const (
	Like    PreferenceValue = "LIKE"
	Dislike PreferenceValue = "DISLIKE"
)

func (v PreferenceValue) Valid() bool {
	return v == Like || v == Dislike
}

// FoodPreference is unique per (profile, food); writes overwrite the value.
type FoodPreference struct {
	ID         uint            `gorm:"primaryKey"`
	ProfileID  uint            `gorm:"uniqueIndex:idx_profile_food;not null"`
	FoodID     uint            `gorm:"uniqueIndex:idx_profile_food;not null"`
	Food       Food
	Preference PreferenceValue `gorm:"size:10;not null"`
	UpdatedAt  time.Time
}
