package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
)

const DefaultRetrieveK = 20

// IndexMatch is one nearest-neighbour hit, smaller distance is closer.
type IndexMatch struct {
	FoodID   uint
	Distance float64
}

// SemanticIndex answers nearest-neighbour queries over the food catalog.
type SemanticIndex interface {
	Query(ctx context.Context, text string, k int) ([]IndexMatch, error)
}

// Retriever turns free text into candidate food ids, nearest first. It does
// not re-rank what the index returns.
type Retriever struct {
	index SemanticIndex
	log   zerolog.Logger
}

func NewRetriever(index SemanticIndex, log zerolog.Logger) *Retriever {
	return &Retriever{index: index, log: log.With().Str("component", "retriever").Logger()}
}

// Retrieve returns an empty slice, not an error, when there are no matches or
// the query could not be embedded. Index failures are ErrUpstream.
func (r *Retriever) Retrieve(ctx context.Context, query string, k int) ([]uint, error) {
	if k <= 0 {
		k = DefaultRetrieveK
	}
	matches, err := r.index.Query(ctx, query, k)
	if err != nil {
		if errors.Is(err, ErrEmbedding) {
			r.log.Warn().Err(err).Msg("query embedding failed, continuing without candidates")
			return []uint{}, nil
		}
		return nil, fmt.Errorf("%w: semantic index query: %w", ErrUpstream, err)
	}

	ids := make([]uint, 0, len(matches))
	seen := make(map[uint]struct{}, len(matches))
	for _, m := range matches {
		if _, dup := seen[m.FoodID]; dup {
			continue
		}
		seen[m.FoodID] = struct{}{}
		ids = append(ids, m.FoodID)
	}
	r.log.Debug().Int("k", k).Int("matches", len(ids)).Msg("semantic retrieval done")
	return ids, nil
}
