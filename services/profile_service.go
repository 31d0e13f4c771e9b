package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"mealrec/models"
	"mealrec/repository"
	"mealrec/utils"
)

type ProfileService struct {
	users    repository.UserRepository
	profiles repository.ProfileRepository
	images   ImageStore
	now      func() time.Time
}

func NewProfileService(users repository.UserRepository, profiles repository.ProfileRepository, images ImageStore) *ProfileService {
	return &ProfileService{users: users, profiles: profiles, images: images, now: time.Now}
}

// ProfileView is the profile as shown to its owner, with derived values.
type ProfileView struct {
	UserID          uint     `json:"user_id"`
	Username        string   `json:"username"`
	Email           string   `json:"email"`
	Gender          string   `json:"gender,omitempty"`
	HeightCm        *float64 `json:"height_cm"`
	WeightKg        *float64 `json:"weight_kg"`
	BirthDate       string   `json:"birth_date,omitempty"`
	Age             *int     `json:"age"`
	ActivityLevel   string   `json:"activity_level"`
	IsVegetarian    bool     `json:"is_vegetarian"`
	IsVegan         bool     `json:"is_vegan"`
	Allergies       []string `json:"allergies"`
	ProfilePicture  string   `json:"profile_picture,omitempty"`
	RecommendedKcal *int     `json:"recommended_kcal"`
	BMI             *float64 `json:"bmi"`
	BMICategory     string   `json:"bmi_category,omitempty"`
}

// ProfileInput is a partial update; nil fields are left unchanged.
type ProfileInput struct {
	Gender         *string   `json:"gender"`
	HeightCm       *float64  `json:"height_cm"`
	WeightKg       *float64  `json:"weight_kg"`
	BirthDate      *string   `json:"birth_date"` // YYYY-MM-DD
	ActivityLevel  *string   `json:"activity_level"`
	IsVegetarian   *bool     `json:"is_vegetarian"`
	IsVegan        *bool     `json:"is_vegan"`
	Allergies      *[]string `json:"allergies"`
	ProfilePicture string    `json:"profile_picture"` // data URI
}

func (s *ProfileService) Get(ctx context.Context, userID uint) (*ProfileView, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, s.notFound(err)
	}
	profile, err := s.profiles.GetByUserID(ctx, userID)
	if err != nil {
		return nil, s.notFound(err)
	}
	return s.view(user, profile), nil
}

func (s *ProfileService) Update(ctx context.Context, userID uint, in ProfileInput) (*ProfileView, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, s.notFound(err)
	}
	profile, err := s.profiles.GetByUserID(ctx, userID)
	if err != nil {
		return nil, s.notFound(err)
	}
	if err := applyProfileInput(profile, in, s.now()); err != nil {
		return nil, err
	}

	if in.ProfilePicture != "" {
		if s.images == nil {
			return nil, fmt.Errorf("%w: image uploads are not configured", ErrValidation)
		}
		url, err := s.images.UploadDataURI(ctx, in.ProfilePicture, fmt.Sprintf("user-%d", userID))
		if err != nil {
			return nil, fmt.Errorf("failed to upload image: %w", err)
		}
		profile.ProfilePicture = url
	}

	var allergies []string
	if in.Allergies != nil {
		allergies = normalizeNames(*in.Allergies)
	}
	if err := s.profiles.Update(ctx, profile, allergies); err != nil {
		return nil, fmt.Errorf("save profile: %w", err)
	}
	return s.view(user, profile), nil
}

func applyProfileInput(p *models.Profile, in ProfileInput, now time.Time) error {
	if in.Gender != nil {
		g := models.Gender(strings.ToUpper(*in.Gender))
		if g != models.GenderMale && g != models.GenderFemale {
			return fmt.Errorf("%w: gender must be M or F", ErrValidation)
		}
		p.Gender = g
	}
	if in.HeightCm != nil {
		if *in.HeightCm <= 0 {
			return fmt.Errorf("%w: height_cm must be positive", ErrValidation)
		}
		p.HeightCm = in.HeightCm
	}
	if in.WeightKg != nil {
		if *in.WeightKg <= 0 {
			return fmt.Errorf("%w: weight_kg must be positive", ErrValidation)
		}
		p.WeightKg = in.WeightKg
	}
	if in.BirthDate != nil {
		bd, err := time.Parse("2006-01-02", *in.BirthDate)
		if err != nil {
			return fmt.Errorf("%w: birth_date must be YYYY-MM-DD", ErrValidation)
		}
		if bd.After(now) {
			return fmt.Errorf("%w: birth_date is in the future", ErrValidation)
		}
		p.BirthDate = &bd
	}
	if in.ActivityLevel != nil {
		p.ActivityLevel = models.ActivityLevel(*in.ActivityLevel)
	}
	if in.IsVegetarian != nil {
		p.IsVegetarian = *in.IsVegetarian
	}
	if in.IsVegan != nil {
		p.IsVegan = *in.IsVegan
	}
	return nil
}

func (s *ProfileService) view(user *models.User, p *models.Profile) *ProfileView {
	now := s.now()
	v := &ProfileView{
		UserID:         user.ID,
		Username:       user.Username,
		Email:          user.Email,
		Gender:         string(p.Gender),
		HeightCm:       p.HeightCm,
		WeightKg:       p.WeightKg,
		ActivityLevel:  string(p.ActivityLevel),
		IsVegetarian:   p.IsVegetarian,
		IsVegan:        p.IsVegan,
		Allergies:      p.AllergyNames(),
		ProfilePicture: p.ProfilePicture,
	}
	if v.ActivityLevel == "" {
		v.ActivityLevel = string(models.ActivityLow)
	}
	if p.BirthDate != nil {
		v.BirthDate = p.BirthDate.Format("2006-01-02")
		age := utils.CalculateAge(*p.BirthDate, now)
		v.Age = &age
	}
	if kcal, ok := utils.RecommendedKcal(p, now); ok {
		v.RecommendedKcal = &kcal
	}
	if p.HeightCm != nil && p.WeightKg != nil {
		if bmi, err := utils.CalculateBMI(*p.HeightCm, *p.WeightKg); err == nil {
			rounded := float64(int(bmi*10+0.5)) / 10
			v.BMI = &rounded
			v.BMICategory = utils.BMICategory(bmi)
		}
	}
	return v
}

func (s *ProfileService) notFound(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrProfileNotFound
	}
	return err
}

func normalizeNames(names []string) []string {
	out := make([]string, 0, len(names))
	seen := make(map[string]struct{}, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}
