package services

import (
	"context"
	"errors"
	"testing"
	"time"
)

func newTestSummaryService() *SummaryService {
	f := newPipelineFixture()
	svc := NewSummaryService(f.meals, f.profiles, 2000)
	svc.now = func() time.Time { return testNow }
	return svc
}

func TestSummary_Daily(t *testing.T) {
	svc := newTestSummaryService()

	today, err := svc.Daily(context.Background(), 10, "")
	if err != nil {
		t.Fatalf("Daily: %v", err)
	}
	if today.Day != "2025-03-10" || today.Items != 1 || today.Nutrition.TotalKcal != 300 {
		t.Fatalf("today = %+v", today)
	}

	yesterday, err := svc.Daily(context.Background(), 10, "2025-03-09")
	if err != nil {
		t.Fatalf("Daily: %v", err)
	}
	if yesterday.Nutrition.TotalKcal != 1500 {
		t.Fatalf("yesterday kcal = %v, want 1500", yesterday.Nutrition.TotalKcal)
	}
	// 1500 kcal of rice: carbs dominate, protein well under 25%
	if yesterday.Flag != MacroFlagProteinLow {
		t.Fatalf("flag = %q", yesterday.Flag)
	}

	if _, err := svc.Daily(context.Background(), 10, "yesterday"); !errors.Is(err, ErrValidation) {
		t.Fatalf("bad day err = %v", err)
	}
}

func TestSummary_HistoryFillsEmptyDays(t *testing.T) {
	svc := newTestSummaryService()
	days, err := svc.History(context.Background(), 10, 3)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(days) != 3 {
		t.Fatalf("len = %d", len(days))
	}
	want := []struct {
		day  string
		kcal float64
	}{{"2025-03-08", 0}, {"2025-03-09", 1500}, {"2025-03-10", 300}}
	for i, w := range want {
		if days[i].Day != w.day || days[i].Nutrition.TotalKcal != w.kcal {
			t.Errorf("day %d = %s %.0f, want %s %.0f", i, days[i].Day, days[i].Nutrition.TotalKcal, w.day, w.kcal)
		}
		if days[i].Nutrition.TargetKcal != 1779 {
			t.Errorf("day %d target = %d", i, days[i].Nutrition.TargetKcal)
		}
	}

	if _, err := svc.History(context.Background(), 10, 0); !errors.Is(err, ErrValidation) {
		t.Fatalf("days=0 err = %v", err)
	}
}
