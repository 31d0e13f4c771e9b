package services

import (
	"mealrec/models"
)

const DefaultCandidateLimit = 5

type RankOutcome int

const (
	RankOK RankOutcome = iota
	// RankNoMatches: nothing retrieved, or nothing that still exists in the catalog.
	RankNoMatches
	// RankNoSafeCandidates: every retrieved food carries one of the user's allergens.
	RankNoSafeCandidates
)

// RankInput carries everything the filter needs for one request.
type RankInput struct {
	Candidates []uint                // retrieval order, nearest first
	Foods      map[uint]*models.Food // resolved catalog records with allergens
	Allergies  []string
	Liked      map[uint]struct{}
	Disliked   map[uint]struct{}
	Limit      int
}

// RankCandidates applies the allergen hard rule, then the dislike soft rule,
// then moves liked foods to the front. Relative retrieval order is kept
// within the liked and the non-liked groups.
func RankCandidates(in RankInput) ([]*models.Food, RankOutcome) {
	limit := in.Limit
	if limit <= 0 {
		limit = DefaultCandidateLimit
	}

	allergic := make(map[string]struct{}, len(in.Allergies))
	for _, a := range in.Allergies {
		allergic[a] = struct{}{}
	}

	known := 0
	safe := make([]*models.Food, 0, len(in.Candidates))
	for _, id := range in.Candidates {
		food, ok := in.Foods[id]
		if !ok || food == nil {
			continue
		}
		known++
		if hasAllergen(food, allergic) {
			continue
		}
		safe = append(safe, food)
	}
	if known == 0 {
		return nil, RankNoMatches
	}
	if len(safe) == 0 {
		return nil, RankNoSafeCandidates
	}

	pool := make([]*models.Food, 0, len(safe))
	for _, f := range safe {
		if _, no := in.Disliked[f.ID]; !no {
			pool = append(pool, f)
		}
	}
	// Dislikes are soft: if they would empty the pool, keep the safe order.
	if len(pool) == 0 {
		pool = safe
	}

	ranked := make([]*models.Food, 0, len(pool))
	for _, f := range pool {
		if _, ok := in.Liked[f.ID]; ok {
			ranked = append(ranked, f)
		}
	}
	for _, f := range pool {
		if _, ok := in.Liked[f.ID]; !ok {
			ranked = append(ranked, f)
		}
	}

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked, RankOK
}

func hasAllergen(food *models.Food, allergic map[string]struct{}) bool {
	if len(allergic) == 0 {
		return false
	}
	for _, a := range food.Allergens {
		if _, hit := allergic[a.Name]; hit {
			return true
		}
	}
	return false
}
