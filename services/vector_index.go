package services

import (
	"context"
	"fmt"
	"time"

	"mealrec/models"

	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// VectorIndex is the semantic index over food documents, stored in postgres
// with pgvector. It is built once at startup and closed on shutdown.
type VectorIndex struct {
	db       *gorm.DB
	embedder Embedder
	closer   func()
}

func NewVectorIndex(db *gorm.DB, embedder Embedder) *VectorIndex {
	idx := &VectorIndex{db: db, embedder: embedder}
	if c, ok := embedder.(interface{ Close() }); ok {
		idx.closer = c.Close
	}
	return idx
}

// Query embeds text and returns the k nearest foods by cosine distance.
// Embedding failures are wrapped with ErrEmbedding.
func (v *VectorIndex) Query(ctx context.Context, text string, k int) ([]IndexMatch, error) {
	vectors, err := v.embedder.Embed(ctx, []string{text})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEmbedding, err)
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("%w: got %d vectors for one query", ErrEmbedding, len(vectors))
	}

	var rows []struct {
		FoodID   uint
		Distance float64
	}
	err = v.db.WithContext(ctx).
		Raw(`SELECT food_id, embedding <=> ? AS distance FROM food_embeddings ORDER BY distance LIMIT ?`,
			pgvector.NewVector(vectors[0]), k).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("nearest neighbour query: %w", err)
	}

	matches := make([]IndexMatch, 0, len(rows))
	for _, r := range rows {
		matches = append(matches, IndexMatch{FoodID: r.FoodID, Distance: r.Distance})
	}
	return matches, nil
}

// IndexEntry is one document to upsert; Name is kept as metadata.
type IndexEntry struct {
	FoodID    uint
	Embedding []float32
	Document  string
	Name      string
}

func (v *VectorIndex) Upsert(ctx context.Context, entries []IndexEntry) error {
	if len(entries) == 0 {
		return nil
	}
	now := time.Now()
	rows := make([]models.FoodEmbedding, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, models.FoodEmbedding{
			FoodID:    e.FoodID,
			Embedding: pgvector.NewVector(e.Embedding),
			Document:  e.Document,
			Name:      e.Name,
			UpdatedAt: now,
		})
	}
	return v.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "food_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"embedding", "document", "name", "updated_at"}),
		}).
		Create(&rows).Error
}

func (v *VectorIndex) Count(ctx context.Context) (int64, error) {
	var n int64
	err := v.db.WithContext(ctx).Model(&models.FoodEmbedding{}).Count(&n).Error
	return n, err
}

// Close releases the embedder's connections. The database handle is owned
// by the caller.
func (v *VectorIndex) Close() error {
	if v.closer != nil {
		v.closer()
	}
	return nil
}
