package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"mealrec/config"
	"mealrec/models"
	"mealrec/repository"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

const (
	StatusOK               = "ok"
	StatusNoMatches        = "no_matches"
	StatusNoSafeCandidates = "no_safe_candidates"
)

// Recommendation is the result of one pipeline run. Text is empty unless
// Status is StatusOK.
type Recommendation struct {
	Status     string           `json:"status"`
	Text       string           `json:"recommendation"`
	Candidates []BriefCandidate `json:"candidates"`
	Nutrition  NutritionSummary `json:"nutrition"`
	Flag       MacroFlag        `json:"macro_flag,omitempty"`
}

// Recommender runs the read-only recommendation pipeline.
type Recommender struct {
	users       repository.UserRepository
	profiles    repository.ProfileRepository
	preferences repository.PreferenceRepository
	foods       repository.FoodRepository
	meals       repository.MealRepository
	retriever   *Retriever
	generator   TextGenerator
	metrics     *Metrics
	cfg         config.RecommendationConfig
	log         zerolog.Logger
	now         func() time.Time
}

type RecommenderDeps struct {
	Users       repository.UserRepository
	Profiles    repository.ProfileRepository
	Preferences repository.PreferenceRepository
	Foods       repository.FoodRepository
	Meals       repository.MealRepository
	Retriever   *Retriever
	Generator   TextGenerator
	Metrics     *Metrics
	Config      config.RecommendationConfig
	Log         zerolog.Logger
	Now         func() time.Time
}

func NewRecommender(d RecommenderDeps) *Recommender {
	now := d.Now
	if now == nil {
		now = time.Now
	}
	cfg := d.Config
	if cfg.RetrieveK <= 0 {
		cfg.RetrieveK = DefaultRetrieveK
	}
	if cfg.CandidateLimit <= 0 {
		cfg.CandidateLimit = DefaultCandidateLimit
	}
	if cfg.FallbackKcal <= 0 {
		cfg.FallbackKcal = 2000
	}
	return &Recommender{
		users:       d.Users,
		profiles:    d.Profiles,
		preferences: d.Preferences,
		foods:       d.Foods,
		meals:       d.Meals,
		retriever:   d.Retriever,
		generator:   d.Generator,
		metrics:     d.Metrics,
		cfg:         cfg,
		log:         d.Log.With().Str("component", "recommender").Logger(),
		now:         now,
	}
}

type userContext struct {
	user     *models.User
	profile  *models.Profile
	liked    map[uint]struct{}
	disliked map[uint]struct{}
	likedN   []string
	dislikeN []string
}

// Recommend answers a free-text request for userID. Empty results come back
// as a Recommendation with a non-ok Status, never as an error.
func (r *Recommender) Recommend(ctx context.Context, userID uint, query string) (*Recommendation, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		r.metrics.outcome("invalid")
		return nil, fmt.Errorf("%w: query text is required", ErrValidation)
	}

	if r.cfg.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.cfg.RequestTimeout)
		defer cancel()
	}
	now := r.now()
	log := r.log.With().Uint("user_id", userID).Logger()

	// Stage 1: user context and semantic retrieval are independent.
	var (
		uc         userContext
		candidates []uint
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		uc, err = r.loadUserContext(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		candidates, err = r.retriever.Retrieve(gctx, query, r.cfg.RetrieveK)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, r.fail(log, err)
	}
	if r.metrics != nil {
		r.metrics.RetrievedCandidates.Observe(float64(len(candidates)))
	}

	// Stage 2: candidate details and today's intake are independent.
	var (
		foods    []models.Food
		dayItems []repository.DatedItem
	)
	from, to := DayBounds(now)
	g, gctx = errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		foods, err = r.foods.FindByIDs(gctx, candidates)
		if err != nil {
			return fmt.Errorf("load candidate foods: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		dayItems, err = r.meals.ItemsBetween(gctx, userID, from, to)
		if err != nil {
			return fmt.Errorf("load today's meals: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, r.fail(log, err)
	}

	items := make([]models.MealItem, len(dayItems))
	for i, d := range dayItems {
		items[i] = d.Item
	}
	target := ResolveTarget(uc.profile, now, r.cfg.FallbackKcal)
	summary := AggregateNutrition(items, target)

	byID := make(map[uint]*models.Food, len(foods))
	for i := range foods {
		byID[foods[i].ID] = &foods[i]
	}
	ranked, outcome := RankCandidates(RankInput{
		Candidates: candidates,
		Foods:      byID,
		Allergies:  uc.profile.AllergyNames(),
		Liked:      uc.liked,
		Disliked:   uc.disliked,
		Limit:      r.cfg.CandidateLimit,
	})
	if r.metrics != nil {
		r.metrics.RankedCandidates.Observe(float64(len(ranked)))
	}

	switch outcome {
	case RankNoMatches:
		log.Info().Str("outcome", StatusNoMatches).Msg("no semantic matches")
		r.metrics.outcome(StatusNoMatches)
		return &Recommendation{Status: StatusNoMatches, Candidates: []BriefCandidate{}, Nutrition: summary}, nil
	case RankNoSafeCandidates:
		log.Info().Str("outcome", StatusNoSafeCandidates).Int("retrieved", len(candidates)).Msg("all candidates excluded by allergens")
		r.metrics.outcome(StatusNoSafeCandidates)
		return &Recommendation{Status: StatusNoSafeCandidates, Candidates: []BriefCandidate{}, Nutrition: summary}, nil
	}

	brief := RecommendationBrief{
		Username: uc.user.Username,
		Query:    query,
		Constraints: Constraints{
			Vegetarian: uc.profile.IsVegetarian,
			Vegan:      uc.profile.IsVegan,
			Allergies:  uc.profile.AllergyNames(),
			Disliked:   uc.dislikeN,
			Liked:      uc.likedN,
		},
		Nutrition: summary,
		Flag:      EvaluateMacroFlag(summary),
	}
	for _, f := range ranked {
		brief.Candidates = append(brief.Candidates, NewBriefCandidate(f))
	}

	start := time.Now()
	text, err := r.generator.Generate(ctx, SystemRole, brief.Render())
	if r.metrics != nil {
		r.metrics.GenerationDuration.Observe(time.Since(start).Seconds())
	}
	if err != nil {
		return nil, r.fail(log, fmt.Errorf("%w: generation: %w", ErrUpstream, err))
	}

	log.Info().Int("candidates", len(brief.Candidates)).Str("macro_flag", string(brief.Flag)).Msg("recommendation generated")
	r.metrics.outcome(StatusOK)
	return &Recommendation{
		Status:     StatusOK,
		Text:       text,
		Candidates: brief.Candidates,
		Nutrition:  summary,
		Flag:       brief.Flag,
	}, nil
}

func (r *Recommender) loadUserContext(ctx context.Context, userID uint) (userContext, error) {
	var uc userContext
	user, err := r.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return uc, ErrProfileNotFound
		}
		return uc, fmt.Errorf("load user: %w", err)
	}
	profile, err := r.profiles.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return uc, ErrProfileNotFound
		}
		return uc, fmt.Errorf("load profile: %w", err)
	}
	prefs, err := r.preferences.ListByProfile(ctx, profile.ID)
	if err != nil {
		return uc, fmt.Errorf("load preferences: %w", err)
	}

	uc.user = user
	uc.profile = profile
	uc.liked = make(map[uint]struct{})
	uc.disliked = make(map[uint]struct{})
	for _, p := range prefs {
		switch p.Preference {
		case models.Like:
			uc.liked[p.FoodID] = struct{}{}
			uc.likedN = append(uc.likedN, p.Food.RepresentativeName)
		case models.Dislike:
			uc.disliked[p.FoodID] = struct{}{}
			uc.dislikeN = append(uc.dislikeN, p.Food.RepresentativeName)
		}
	}
	return uc, nil
}

// fail records the outcome of a failed run and returns the error to hand
// back. An expired deadline is always reported as ErrUpstream, whichever
// stage it hit.
func (r *Recommender) fail(log zerolog.Logger, err error) error {
	switch {
	case errors.Is(err, ErrProfileNotFound):
		r.metrics.outcome("profile_not_found")
		log.Warn().Err(err).Msg("recommendation rejected")
	case errors.Is(err, context.Canceled):
		r.metrics.outcome("canceled")
		log.Info().Err(err).Msg("recommendation canceled by caller")
	case errors.Is(err, context.DeadlineExceeded):
		r.metrics.outcome("timeout")
		log.Error().Err(err).Msg("recommendation timed out")
		if !errors.Is(err, ErrUpstream) {
			err = fmt.Errorf("%w: %w", ErrUpstream, err)
		}
	default:
		r.metrics.outcome("upstream_failure")
		log.Error().Err(err).Msg("recommendation failed")
	}
	return err
}
