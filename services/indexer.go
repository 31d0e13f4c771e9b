package services

import (
	"context"
	"fmt"
	"strings"

	"mealrec/models"
	"mealrec/repository"

	"github.com/rs/zerolog"
)

const IndexBatchSize = 100

// BuildDocument renders the text that gets embedded for a food. Retrieval
// quality depends on this exact shape.
func BuildDocument(f *models.Food) string {
	return fmt.Sprintf("음식명: %s. 설명: %s. 주요 재료: %s. 맛: %s. 상황: %s. 조리법: %s.",
		f.RepresentativeName,
		f.Description,
		strings.Join(f.MainIngredients, ", "),
		strings.Join(f.TasteProfile, ", "),
		strings.Join(f.SituationalTags, ", "),
		f.CookingMethod,
	)
}

// IndexWriter is the write side of the semantic index.
type IndexWriter interface {
	Upsert(ctx context.Context, entries []IndexEntry) error
}

// Indexer rebuilds the semantic index from the food catalog.
type Indexer struct {
	foods    repository.FoodRepository
	embedder Embedder
	index    IndexWriter
	log      zerolog.Logger
}

func NewIndexer(foods repository.FoodRepository, embedder Embedder, index IndexWriter, log zerolog.Logger) *Indexer {
	return &Indexer{foods: foods, embedder: embedder, index: index, log: log.With().Str("component", "indexer").Logger()}
}

// Run embeds and upserts the whole catalog in batches of IndexBatchSize and
// returns how many foods were indexed.
func (ix *Indexer) Run(ctx context.Context) (int, error) {
	total := 0
	err := ix.foods.FindInBatches(ctx, IndexBatchSize, func(batch []models.Food) error {
		docs := make([]string, len(batch))
		for i := range batch {
			docs[i] = BuildDocument(&batch[i])
		}
		vectors, err := ix.embedder.Embed(ctx, docs)
		if err != nil {
			return fmt.Errorf("embed batch at offset %d: %w", total, err)
		}
		if len(vectors) != len(batch) {
			return fmt.Errorf("embed batch at offset %d: got %d vectors for %d foods", total, len(vectors), len(batch))
		}

		entries := make([]IndexEntry, len(batch))
		for i := range batch {
			entries[i] = IndexEntry{
				FoodID:    batch[i].ID,
				Embedding: vectors[i],
				Document:  docs[i],
				Name:      batch[i].RepresentativeName,
			}
		}
		if err := ix.index.Upsert(ctx, entries); err != nil {
			return fmt.Errorf("upsert batch at offset %d: %w", total, err)
		}
		total += len(batch)
		ix.log.Info().Int("indexed", total).Msg("batch indexed")
		return nil
	})
	if err != nil {
		return total, err
	}
	return total, nil
}
