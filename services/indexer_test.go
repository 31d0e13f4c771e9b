package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"mealrec/models"

	"github.com/rs/zerolog"
)

func TestBuildDocument(t *testing.T) {
	f := &models.Food{
		RepresentativeName: "김치찌개",
		Description:        "잘 익은 김치와 돼지고기를 넣고 끓인 찌개",
		MainIngredients:    []string{"김치", "돼지고기", "두부"},
		TasteProfile:       []string{"얼큰함", "새콤함"},
		SituationalTags:    []string{"점심", "비 오는 날"},
		CookingMethod:      "끓이기",
	}
	want := "음식명: 김치찌개. 설명: 잘 익은 김치와 돼지고기를 넣고 끓인 찌개. 주요 재료: 김치, 돼지고기, 두부. " +
		"맛: 얼큰함, 새콤함. 상황: 점심, 비 오는 날. 조리법: 끓이기."
	if got := BuildDocument(f); got != want {
		t.Fatalf("document:\n got %q\nwant %q", got, want)
	}
}

type fakeEmbedder struct {
	batches [][]string
	err     error
}

func (f *fakeEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.batches = append(f.batches, texts)
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{float32(i), 1}
	}
	return out, nil
}

type fakeIndexWriter struct {
	entries []IndexEntry
}

func (f *fakeIndexWriter) Upsert(_ context.Context, entries []IndexEntry) error {
	f.entries = append(f.entries, entries...)
	return nil
}

func TestIndexer_RunBatches(t *testing.T) {
	var catalog []models.Food
	for i := uint(1); i <= 250; i++ {
		catalog = append(catalog, models.Food{ID: i, RepresentativeName: fmt.Sprintf("음식%d", i)})
	}
	emb := &fakeEmbedder{}
	w := &fakeIndexWriter{}

	n, err := NewIndexer(newFakeFoods(catalog...), emb, w, zerolog.Nop()).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if n != 250 || len(w.entries) != 250 {
		t.Fatalf("indexed %d, upserted %d; want 250", n, len(w.entries))
	}
	if len(emb.batches) != 3 || len(emb.batches[0]) != IndexBatchSize || len(emb.batches[2]) != 50 {
		t.Fatalf("batch sizes wrong: %d batches", len(emb.batches))
	}
	first := w.entries[0]
	if first.FoodID != 1 || first.Name != "음식1" || first.Document != BuildDocument(&catalog[0]) {
		t.Fatalf("first entry = %+v", first)
	}
}

func TestIndexer_EmbedFailureStops(t *testing.T) {
	foods := newFakeFoods(models.Food{ID: 1, RepresentativeName: "a"})
	_, err := NewIndexer(foods, &fakeEmbedder{err: errors.New("quota")}, &fakeIndexWriter{}, zerolog.Nop()).Run(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
}
