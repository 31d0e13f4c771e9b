package services

import (
	"math/rand"
	"testing"

	"mealrec/models"
)

func foodWith(id uint, name string, allergens ...string) *models.Food {
	f := &models.Food{ID: id, RepresentativeName: name}
	for i, a := range allergens {
		f.Allergens = append(f.Allergens, models.Allergen{ID: uint(i + 1), Name: a})
	}
	return f
}

func foodMap(foods ...*models.Food) map[uint]*models.Food {
	m := make(map[uint]*models.Food, len(foods))
	for _, f := range foods {
		m[f.ID] = f
	}
	return m
}

func set(ids ...uint) map[uint]struct{} {
	s := make(map[uint]struct{}, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

func ids(foods []*models.Food) []uint {
	out := make([]uint, len(foods))
	for i, f := range foods {
		out[i] = f.ID
	}
	return out
}

func equalIDs(a, b []uint) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestRankCandidates_LikedFirstStable(t *testing.T) {
	a, b, c := foodWith(1, "A"), foodWith(2, "B"), foodWith(3, "C")
	ranked, outcome := RankCandidates(RankInput{
		Candidates: []uint{1, 2, 3},
		Foods:      foodMap(a, b, c),
		Liked:      set(2),
	})
	if outcome != RankOK {
		t.Fatalf("outcome = %v", outcome)
	}
	if got, want := ids(ranked), []uint{2, 1, 3}; !equalIDs(got, want) {
		t.Fatalf("order = %v, want %v", got, want)
	}
}

func TestRankCandidates_AllergensAreHard(t *testing.T) {
	peanut := foodWith(1, "땅콩조림", "땅콩")
	milk := foodWith(2, "크림수프", "우유")
	rice := foodWith(3, "비빔밥")

	ranked, outcome := RankCandidates(RankInput{
		Candidates: []uint{1, 2, 3},
		Foods:      foodMap(peanut, milk, rice),
		Allergies:  []string{"땅콩"},
		Liked:      set(1),
	})
	if outcome != RankOK {
		t.Fatalf("outcome = %v", outcome)
	}
	if got, want := ids(ranked), []uint{2, 3}; !equalIDs(got, want) {
		t.Fatalf("order = %v, want %v (liked allergen food must not come back)", got, want)
	}
}

func TestRankCandidates_NoSafeCandidates(t *testing.T) {
	ranked, outcome := RankCandidates(RankInput{
		Candidates: []uint{1, 2},
		Foods:      foodMap(foodWith(1, "A", "새우"), foodWith(2, "B", "게", "새우")),
		Allergies:  []string{"새우"},
	})
	if outcome != RankNoSafeCandidates || len(ranked) != 0 {
		t.Fatalf("got %v %v, want no safe candidates", ids(ranked), outcome)
	}
}

func TestRankCandidates_NoMatches(t *testing.T) {
	t.Run("empty retrieval", func(t *testing.T) {
		if _, outcome := RankCandidates(RankInput{}); outcome != RankNoMatches {
			t.Fatalf("outcome = %v, want RankNoMatches", outcome)
		}
	})
	t.Run("ids missing from catalog", func(t *testing.T) {
		_, outcome := RankCandidates(RankInput{Candidates: []uint{9, 10}, Foods: foodMap(foodWith(1, "A"))})
		if outcome != RankNoMatches {
			t.Fatalf("outcome = %v, want RankNoMatches", outcome)
		}
	})
}

func TestRankCandidates_Dislikes(t *testing.T) {
	a, b, c := foodWith(1, "A"), foodWith(2, "B"), foodWith(3, "C")

	t.Run("removed when others remain", func(t *testing.T) {
		ranked, _ := RankCandidates(RankInput{Candidates: []uint{1, 2, 3}, Foods: foodMap(a, b, c), Disliked: set(2)})
		if got, want := ids(ranked), []uint{1, 3}; !equalIDs(got, want) {
			t.Fatalf("order = %v, want %v", got, want)
		}
	})
	t.Run("kept when they are all that is left", func(t *testing.T) {
		ranked, outcome := RankCandidates(RankInput{Candidates: []uint{1, 2}, Foods: foodMap(a, b), Disliked: set(1, 2)})
		if outcome != RankOK {
			t.Fatalf("outcome = %v, dislikes alone must not empty the pool", outcome)
		}
		if got, want := ids(ranked), []uint{1, 2}; !equalIDs(got, want) {
			t.Fatalf("order = %v, want %v", got, want)
		}
	})
}

func TestRankCandidates_Limit(t *testing.T) {
	var foods []*models.Food
	var cands []uint
	for i := uint(1); i <= 12; i++ {
		foods = append(foods, foodWith(i, "F"))
		cands = append(cands, i)
	}
	ranked, _ := RankCandidates(RankInput{Candidates: cands, Foods: foodMap(foods...), Liked: set(11)})
	if len(ranked) != DefaultCandidateLimit {
		t.Fatalf("len = %d, want %d", len(ranked), DefaultCandidateLimit)
	}
	if ranked[0].ID != 11 {
		t.Fatalf("first = %d, want liked 11", ranked[0].ID)
	}

	ranked, _ = RankCandidates(RankInput{Candidates: cands, Foods: foodMap(foods...), Limit: 3})
	if got, want := ids(ranked), []uint{1, 2, 3}; !equalIDs(got, want) {
		t.Fatalf("order = %v, want %v", got, want)
	}
}

func TestRankCandidates_NeverReturnsAllergens(t *testing.T) {
	names := []string{"땅콩", "우유", "밀", "대두", "새우", "달걀"}
	rng := rand.New(rand.NewSource(42))
	for round := 0; round < 500; round++ {
		var foods []*models.Food
		var cands []uint
		for i := uint(1); i <= 15; i++ {
			var as []string
			for _, n := range names {
				if rng.Intn(5) == 0 {
					as = append(as, n)
				}
			}
			foods = append(foods, foodWith(i, "F", as...))
			cands = append(cands, i)
		}
		rng.Shuffle(len(cands), func(i, j int) { cands[i], cands[j] = cands[j], cands[i] })
		allergies := []string{names[rng.Intn(len(names))], names[rng.Intn(len(names))]}

		ranked, _ := RankCandidates(RankInput{
			Candidates: cands,
			Foods:      foodMap(foods...),
			Allergies:  allergies,
			Liked:      set(uint(rng.Intn(15) + 1)),
			Disliked:   set(uint(rng.Intn(15) + 1)),
		})
		for _, f := range ranked {
			for _, a := range f.Allergens {
				for _, al := range allergies {
					if a.Name == al {
						t.Fatalf("round %d: food %d carries %q", round, f.ID, al)
					}
				}
			}
		}
	}
}
