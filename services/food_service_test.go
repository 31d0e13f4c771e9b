package services

import (
	"context"
	"errors"
	"testing"
)

type fakeDetector struct {
	labels []string
	err    error
}

func (f fakeDetector) DetectLabels(context.Context, []byte) ([]string, error) {
	return f.labels, f.err
}

const tinyPNG = "data:image/png;base64,iVBORw0KGgo="

func TestFoodService_CalcNutrition(t *testing.T) {
	f := newPipelineFixture()
	svc := NewFoodService(f.foods, nil)

	p, err := svc.CalcNutrition(context.Background(), 2, 250)
	if err != nil {
		t.Fatalf("CalcNutrition: %v", err)
	}
	if p.BaseG != 100 || p.InputG != 250 || p.FoodName != "된장찌개" {
		t.Fatalf("preview = %+v", p)
	}
	if p.Nutrition.EnergyKcal == nil || *p.Nutrition.EnergyKcal != 150 {
		t.Fatalf("kcal = %v, want 150", p.Nutrition.EnergyKcal)
	}
	if p.Nutrition.SugarsG != nil {
		t.Fatalf("absent sugars should stay nil, got %v", *p.Nutrition.SugarsG)
	}

	if _, err := svc.CalcNutrition(context.Background(), 2, 0); !errors.Is(err, ErrValidation) {
		t.Fatalf("zero weight err = %v", err)
	}
	if _, err := svc.CalcNutrition(context.Background(), 99, 100); !errors.Is(err, ErrFoodNotFound) {
		t.Fatalf("unknown food err = %v", err)
	}
	if _, err := svc.Search(context.Background(), "  ", 10); !errors.Is(err, ErrValidation) {
		t.Fatalf("blank search err = %v", err)
	}
}

func TestFoodService_Recognize(t *testing.T) {
	f := newPipelineFixture()
	svc := NewFoodService(f.foods, NewFoodRecognizer(fakeDetector{labels: []string{"찌개", "된장"}}, f.foods))

	res, err := svc.Recognize(context.Background(), tinyPNG)
	if err != nil {
		t.Fatalf("Recognize: %v", err)
	}
	if len(res.Labels) != 2 {
		t.Fatalf("labels = %v", res.Labels)
	}
	got := make([]uint, len(res.Options))
	for i, o := range res.Options {
		got[i] = o.ID
	}
	if !equalIDs(got, []uint{2, 3}) {
		t.Fatalf("options = %v, want [2 3] without duplicates", got)
	}

	if _, err := svc.Recognize(context.Background(), "not-a-data-uri"); !errors.Is(err, ErrValidation) {
		t.Fatalf("bad uri err = %v", err)
	}

	failing := NewFoodService(f.foods, NewFoodRecognizer(fakeDetector{err: errors.New("throttled")}, f.foods))
	if _, err := failing.Recognize(context.Background(), tinyPNG); !errors.Is(err, ErrUpstream) {
		t.Fatalf("detector failure err = %v", err)
	}
	if _, err := NewFoodService(f.foods, nil).Recognize(context.Background(), tinyPNG); !errors.Is(err, ErrUpstream) {
		t.Fatalf("unconfigured err = %v", err)
	}
}
