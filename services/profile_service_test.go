package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"mealrec/models"
)

type fakeImageStore struct {
	uploads []string
}

func (f *fakeImageStore) UploadDataURI(_ context.Context, dataURI, prefix string) (string, error) {
	if _, _, err := DecodeDataURI(dataURI); err != nil {
		return "", err
	}
	f.uploads = append(f.uploads, prefix)
	return "https://cdn.example.com/" + prefix + ".png", nil
}

func newTestProfileService() (*ProfileService, *fakeProfiles, *fakeImageStore) {
	f := newPipelineFixture()
	images := &fakeImageStore{}
	svc := NewProfileService(f.users, f.profiles, images)
	svc.now = func() time.Time { return testNow }
	return svc, f.profiles, images
}

func TestProfile_GetDerivesValues(t *testing.T) {
	svc, _, _ := newTestProfileService()
	v, err := svc.Get(context.Background(), 10)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if v.Age == nil || *v.Age != 30 {
		t.Fatalf("age = %v, want 30", v.Age)
	}
	if v.RecommendedKcal == nil || *v.RecommendedKcal != 1779 {
		t.Fatalf("recommended = %v, want 1779", v.RecommendedKcal)
	}
	if v.BMI == nil || *v.BMI != 22.9 || v.BMICategory != "Normal weight" {
		t.Fatalf("bmi = %v %q", v.BMI, v.BMICategory)
	}
	if len(v.Allergies) != 1 || v.Allergies[0] != "땅콩" {
		t.Fatalf("allergies = %v", v.Allergies)
	}
}

func TestProfile_Update(t *testing.T) {
	svc, profiles, images := newTestProfileService()
	gender, level, bd := "m", "active", "1995-03-11"
	allergies := []string{" 우유 ", "새우", "우유", ""}

	v, err := svc.Update(context.Background(), 10, ProfileInput{
		Gender:         &gender,
		ActivityLevel:  &level,
		BirthDate:      &bd,
		Allergies:      &allergies,
		ProfilePicture: "data:image/png;base64,iVBORw0KGgo=",
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	// birthday is tomorrow, so still 29
	if *v.Age != 29 || v.Gender != "M" {
		t.Fatalf("view = %+v", v)
	}
	if want := []string{"우유", "새우"}; len(v.Allergies) != 2 || v.Allergies[0] != want[0] || v.Allergies[1] != want[1] {
		t.Fatalf("allergies = %v, want %v", v.Allergies, want)
	}
	if len(images.uploads) != 1 || v.ProfilePicture == "" {
		t.Fatalf("picture not uploaded: %+v", images.uploads)
	}
	if profiles.byUserID[10].ActivityLevel != models.ActivityActive {
		t.Fatalf("activity not saved")
	}
}

func TestProfile_UpdateIsAllOrNothing(t *testing.T) {
	svc, profiles, _ := newTestProfileService()
	profiles.allergyErr = errors.New("allergens table locked")
	weight := 64.0
	allergies := []string{"우유"}

	if _, err := svc.Update(context.Background(), 10, ProfileInput{WeightKg: &weight, Allergies: &allergies}); err == nil {
		t.Fatal("expected the allergy write to fail")
	}
	stored := profiles.byUserID[10]
	if *stored.WeightKg != 70 {
		t.Fatalf("weight saved despite failed update: %v", *stored.WeightKg)
	}
	if len(stored.Allergies) != 1 || stored.Allergies[0].Name != "땅콩" {
		t.Fatalf("allergies = %+v", stored.Allergies)
	}
}

func TestProfile_UpdateValidation(t *testing.T) {
	svc, _, _ := newTestProfileService()
	neg, badGender, badDate, future := -1.0, "X", "03/10/1995", "2030-01-01"

	for _, in := range []ProfileInput{
		{HeightCm: &neg},
		{WeightKg: &neg},
		{Gender: &badGender},
		{BirthDate: &badDate},
		{BirthDate: &future},
	} {
		if _, err := svc.Update(context.Background(), 10, in); !errors.Is(err, ErrValidation) {
			t.Errorf("Update(%+v) err = %v, want ErrValidation", in, err)
		}
	}
	if _, err := svc.Get(context.Background(), 404); !errors.Is(err, ErrProfileNotFound) {
		t.Fatalf("missing profile err = %v", err)
	}
}

func TestPreferences_SetOverwritesAndPartitions(t *testing.T) {
	f := newPipelineFixture()
	svc := NewPreferenceService(f.profiles, f.prefs, f.foods)
	ctx := context.Background()

	if err := svc.Set(ctx, 10, 4, "like"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	lists, err := svc.List(ctx, 10)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(lists.Liked) != 2 || len(lists.Disliked) != 0 {
		t.Fatalf("lists = %+v, want food 4 flipped to liked", lists)
	}

	if err := svc.Set(ctx, 10, 4, "MAYBE"); !errors.Is(err, ErrValidation) {
		t.Fatalf("bad value err = %v", err)
	}
	if err := svc.Set(ctx, 10, 99, "LIKE"); !errors.Is(err, ErrFoodNotFound) {
		t.Fatalf("unknown food err = %v", err)
	}
	if err := svc.Remove(ctx, 10, 4); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if err := svc.Remove(ctx, 10, 4); !errors.Is(err, ErrPreferenceNotFound) {
		t.Fatalf("second remove err = %v", err)
	}
}
