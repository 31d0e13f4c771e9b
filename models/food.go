package models

import (
	"gorm.io/datatypes"
)

type Allergen struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"size:100;uniqueIndex;not null" json:"name"`
}

// Food is a catalog entry. Nutrient values are per 100 g and nil when unknown.
type Food struct {
	ID                 uint     `gorm:"primaryKey" json:"id"`
	RepresentativeName string   `gorm:"size:200;uniqueIndex;not null" json:"representative_name"`
	FoodClass          string   `gorm:"size:100;index" json:"food_class"`
	EnergyKcal         *float64 `json:"energy_kcal"`
	ProteinG           *float64 `json:"protein_g"`
	FatG               *float64 `json:"fat_g"`
	CarbohydrateG      *float64 `json:"carbohydrate_g"`
	SugarsG            *float64 `json:"sugars_g"`
	Description        string   `gorm:"type:text" json:"description"`
	CookingMethod      string   `gorm:"size:100" json:"cooking_method"`

	MainIngredients datatypes.JSONSlice[string] `gorm:"type:jsonb" json:"main_ingredients"`
	TasteProfile    datatypes.JSONSlice[string] `gorm:"type:jsonb" json:"taste_profile"`
	SituationalTags datatypes.JSONSlice[string] `gorm:"type:jsonb" json:"situational_tags"`

	Allergens []Allergen `gorm:"many2many:food_allergens;" json:"allergens"`
}

func (f *Food) AllergenNames() []string {
	names := make([]string, 0, len(f.Allergens))
	for _, a := range f.Allergens {
		names = append(names, a.Name)
	}
	return names
}
