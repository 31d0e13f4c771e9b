package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"mealrec/models"
	"mealrec/repository"
)

type PreferenceService struct {
	profiles    repository.ProfileRepository
	preferences repository.PreferenceRepository
	foods       repository.FoodRepository
}

func NewPreferenceService(profiles repository.ProfileRepository, preferences repository.PreferenceRepository, foods repository.FoodRepository) *PreferenceService {
	return &PreferenceService{profiles: profiles, preferences: preferences, foods: foods}
}

type FoodRef struct {
	FoodID uint   `json:"food_id"`
	Name   string `json:"name"`
}

// PreferenceLists is a user's preferences partitioned by value.
type PreferenceLists struct {
	Liked    []FoodRef `json:"liked"`
	Disliked []FoodRef `json:"disliked"`
}

func (s *PreferenceService) List(ctx context.Context, userID uint) (*PreferenceLists, error) {
	profile, err := s.profile(ctx, userID)
	if err != nil {
		return nil, err
	}
	prefs, err := s.preferences.ListByProfile(ctx, profile.ID)
	if err != nil {
		return nil, err
	}
	out := &PreferenceLists{Liked: []FoodRef{}, Disliked: []FoodRef{}}
	for _, p := range prefs {
		ref := FoodRef{FoodID: p.FoodID, Name: p.Food.RepresentativeName}
		if p.Preference == models.Like {
			out.Liked = append(out.Liked, ref)
		} else {
			out.Disliked = append(out.Disliked, ref)
		}
	}
	return out, nil
}

// Set records LIKE or DISLIKE for a food, replacing any earlier value.
func (s *PreferenceService) Set(ctx context.Context, userID, foodID uint, value string) error {
	v := models.PreferenceValue(strings.ToUpper(strings.TrimSpace(value)))
	if !v.Valid() {
		return fmt.Errorf("%w: preference must be LIKE or DISLIKE", ErrValidation)
	}
	profile, err := s.profile(ctx, userID)
	if err != nil {
		return err
	}
	if _, err := s.foods.Get(ctx, foodID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrFoodNotFound
		}
		return err
	}
	return s.preferences.Upsert(ctx, profile.ID, foodID, v)
}

func (s *PreferenceService) Remove(ctx context.Context, userID, foodID uint) error {
	profile, err := s.profile(ctx, userID)
	if err != nil {
		return err
	}
	if err := s.preferences.Delete(ctx, profile.ID, foodID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrPreferenceNotFound
		}
		return err
	}
	return nil
}

func (s *PreferenceService) profile(ctx context.Context, userID uint) (*models.Profile, error) {
	p, err := s.profiles.GetByUserID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrProfileNotFound
	}
	return p, err
}
