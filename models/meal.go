package models

import (
	"time"

	"gorm.io/gorm"
)

// Meal is one logged eating occasion on a calendar day.
type Meal struct {
	gorm.Model
	UserID uint      `gorm:"index;not null"`
	Title  string    `gorm:"size:100"`
	Day    time.Time `gorm:"type:date;index;not null"`
	Items  []MealItem
}

type MealItem struct {
	gorm.Model
	MealID   uint    `gorm:"index;not null"`
	Position int     `gorm:"not null;default:0"`
	FoodID   uint    `gorm:"not null"`
	Food     Food
	WeightG  float64 `gorm:"not null;check:weight_g > 0"`
	Warnings string  // semicolon separated assessment messages
}
