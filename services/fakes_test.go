package services

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"mealrec/models"
	"mealrec/repository"

	"gorm.io/gorm"
)

func gormModel(id uint) gorm.Model { return gorm.Model{ID: id} }

func f64(v float64) *float64 { return &v }

type fakeUsers struct {
	mu     sync.Mutex
	byID   map[uint]*models.User
	nextID uint
}

func newFakeUsers(users ...*models.User) *fakeUsers {
	f := &fakeUsers{byID: map[uint]*models.User{}, nextID: 1}
	for _, u := range users {
		f.byID[u.ID] = u
		if u.ID >= f.nextID {
			f.nextID = u.ID + 1
		}
	}
	return f
}

func (f *fakeUsers) Create(_ context.Context, u *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u.ID = f.nextID
	f.nextID++
	cp := *u
	f.byID[u.ID] = &cp
	return nil
}

func (f *fakeUsers) FindByEmail(_ context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byID {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeUsers) FindByID(_ context.Context, id uint) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

type fakeProfiles struct {
	mu       sync.Mutex
	byUserID map[uint]*models.Profile
	// allergyErr fails Update before anything is stored.
	allergyErr error
}

func newFakeProfiles(profiles ...*models.Profile) *fakeProfiles {
	f := &fakeProfiles{byUserID: map[uint]*models.Profile{}}
	for _, p := range profiles {
		f.byUserID[p.UserID] = p
	}
	return f
}

func (f *fakeProfiles) GetByUserID(_ context.Context, userID uint) (*models.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.byUserID[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *p
	cp.Allergies = append([]models.Allergen(nil), p.Allergies...)
	return &cp, nil
}

func (f *fakeProfiles) Update(_ context.Context, p *models.Profile, names []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if names != nil {
		if f.allergyErr != nil {
			return f.allergyErr
		}
		allergens := make([]models.Allergen, 0, len(names))
		for i, n := range names {
			allergens = append(allergens, models.Allergen{ID: uint(i + 1), Name: n})
		}
		p.Allergies = allergens
	}
	stored := *p
	f.byUserID[p.UserID] = &stored
	return nil
}

type fakePreferences struct {
	mu    sync.Mutex
	foods map[uint]models.Food
	prefs []models.FoodPreference
}

func (f *fakePreferences) ListByProfile(_ context.Context, profileID uint) ([]models.FoodPreference, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.FoodPreference
	for _, p := range f.prefs {
		if p.ProfileID == profileID {
			p.Food = f.foods[p.FoodID]
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakePreferences) Upsert(_ context.Context, profileID, foodID uint, v models.PreferenceValue) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.prefs {
		if f.prefs[i].ProfileID == profileID && f.prefs[i].FoodID == foodID {
			f.prefs[i].Preference = v
			return nil
		}
	}
	f.prefs = append(f.prefs, models.FoodPreference{ID: uint(len(f.prefs) + 1), ProfileID: profileID, FoodID: foodID, Preference: v})
	return nil
}

func (f *fakePreferences) Delete(_ context.Context, profileID, foodID uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.prefs {
		if f.prefs[i].ProfileID == profileID && f.prefs[i].FoodID == foodID {
			f.prefs = append(f.prefs[:i], f.prefs[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

type fakeFoods struct {
	byID map[uint]models.Food
}

func newFakeFoods(foods ...models.Food) *fakeFoods {
	f := &fakeFoods{byID: map[uint]models.Food{}}
	for _, food := range foods {
		f.byID[food.ID] = food
	}
	return f
}

func (f *fakeFoods) Get(_ context.Context, id uint) (*models.Food, error) {
	food, ok := f.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &food, nil
}

func (f *fakeFoods) FindByIDs(_ context.Context, ids []uint) ([]models.Food, error) {
	var out []models.Food
	for _, id := range ids {
		if food, ok := f.byID[id]; ok {
			out = append(out, food)
		}
	}
	// real stores give no order guarantee
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (f *fakeFoods) sorted() []models.Food {
	out := make([]models.Food, 0, len(f.byID))
	for _, food := range f.byID {
		out = append(out, food)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (f *fakeFoods) Search(_ context.Context, query string, limit int) ([]models.Food, error) {
	var out []models.Food
	for _, food := range f.sorted() {
		if strings.Contains(food.RepresentativeName, query) || strings.Contains(food.FoodClass, query) {
			out = append(out, food)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeFoods) ListByClass(_ context.Context, class string) ([]models.Food, error) {
	var out []models.Food
	for _, food := range f.sorted() {
		if food.FoodClass == class {
			out = append(out, food)
		}
	}
	return out, nil
}

func (f *fakeFoods) FindInBatches(_ context.Context, size int, fn func([]models.Food) error) error {
	all := f.sorted()
	for start := 0; start < len(all); start += size {
		end := start + size
		if end > len(all) {
			end = len(all)
		}
		if err := fn(all[start:end]); err != nil {
			return err
		}
	}
	return nil
}

type fakeMeals struct {
	mu     sync.Mutex
	meals  []models.Meal
	nextID uint
}

func (f *fakeMeals) Create(_ context.Context, m *models.Meal) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	m.ID = f.nextID
	for i := range m.Items {
		m.Items[i].ID = uint(i + 1)
		m.Items[i].MealID = m.ID
	}
	f.meals = append(f.meals, *m)
	return nil
}

func (f *fakeMeals) Get(_ context.Context, userID, mealID uint) (*models.Meal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range f.meals {
		if m.ID == mealID && m.UserID == userID {
			cp := m
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeMeals) ListByUser(_ context.Context, userID uint) ([]models.Meal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Meal
	for _, m := range f.meals {
		if m.UserID == userID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeMeals) ReplaceItems(_ context.Context, meal *models.Meal) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.meals {
		if f.meals[i].ID == meal.ID && f.meals[i].UserID == meal.UserID {
			f.meals[i] = *meal
			return nil
		}
	}
	return repository.ErrNotFound
}

func (f *fakeMeals) Delete(_ context.Context, userID, mealID uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.meals {
		if f.meals[i].ID == mealID && f.meals[i].UserID == userID {
			f.meals = append(f.meals[:i], f.meals[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (f *fakeMeals) ItemsBetween(_ context.Context, userID uint, from, to time.Time) ([]repository.DatedItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []repository.DatedItem
	for _, m := range f.meals {
		if m.UserID != userID || m.Day.Before(from) || !m.Day.Before(to) {
			continue
		}
		for _, it := range m.Items {
			out = append(out, repository.DatedItem{Day: m.Day, Item: it})
		}
	}
	return out, nil
}

type fakeAlerts struct {
	mu     sync.Mutex
	alerts []models.Alert
}

func (f *fakeAlerts) Create(_ context.Context, a *models.Alert) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	a.ID = uint(len(f.alerts) + 1)
	f.alerts = append(f.alerts, *a)
	return nil
}

func (f *fakeAlerts) ListByUser(_ context.Context, userID uint, limit int) ([]models.Alert, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Alert
	for _, a := range f.alerts {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type fakeIndex struct {
	mu      sync.Mutex
	matches []IndexMatch
	err     error
	calls   int
	lastK   int
}

func (f *fakeIndex) Query(_ context.Context, _ string, k int) ([]IndexMatch, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.lastK = k
	if f.err != nil {
		return nil, f.err
	}
	return f.matches, nil
}

func matchesFor(ids ...uint) []IndexMatch {
	out := make([]IndexMatch, len(ids))
	for i, id := range ids {
		out[i] = IndexMatch{FoodID: id, Distance: float64(i) / 10}
	}
	return out
}

type fakeGenerator struct {
	mu       sync.Mutex
	text     string
	err      error
	block    bool
	calls    int
	role     string
	userTurn string
}

func (f *fakeGenerator) Generate(ctx context.Context, role, turn string) (string, error) {
	f.mu.Lock()
	f.calls++
	f.role = role
	f.userTurn = turn
	block, text, err := f.block, f.text, f.err
	f.mu.Unlock()
	if block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return text, err
}

type fakeBroadcaster struct {
	mu       sync.Mutex
	payloads map[uint][]any
}

func (f *fakeBroadcaster) Broadcast(userID uint, payload any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.payloads == nil {
		f.payloads = map[uint][]any{}
	}
	f.payloads[userID] = append(f.payloads[userID], payload)
}
