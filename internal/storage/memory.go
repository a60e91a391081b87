package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"flowpulse/internal/series"
	"flowpulse/pkg/contracts/domain"
)

type userData struct {
	flows    map[string]domain.DailyFlowRecord
	prices   map[string]domain.DailyPriceBar
	analyses map[string]domain.SavedAnalysis
}

func newUserData() *userData {
	return &userData{
		flows:    make(map[string]domain.DailyFlowRecord),
		prices:   make(map[string]domain.DailyPriceBar),
		analyses: make(map[string]domain.SavedAnalysis),
	}
}

// MemoryRepository is a goroutine-safe in-process Repository
type MemoryRepository struct {
	mu    sync.RWMutex
	users map[string]*userData

	// per-user locks held by Atomically, keyed by user ID
	locks sync.Map
}

// NewMemoryRepository creates an empty in-memory repository
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{users: make(map[string]*userData)}
}

func (m *MemoryRepository) user(userID string) *userData {
	u, ok := m.users[userID]
	if !ok {
		u = newUserData()
		m.users[userID] = u
	}
	return u
}

// SaveFlows upserts records by (date, category)
func (m *MemoryRepository) SaveFlows(ctx context.Context, userID string, records []domain.DailyFlowRecord) (int, error) {
	if userID == "" {
		return 0, ErrMissingUser
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	u := m.user(userID)
	for _, r := range records {
		u.flows[r.Key()] = r
	}
	return len(records), nil
}

// SavePrices upserts bars by date
func (m *MemoryRepository) SavePrices(ctx context.Context, userID string, bars []domain.DailyPriceBar) (int, error) {
	if userID == "" {
		return 0, ErrMissingUser
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	u := m.user(userID)
	for _, b := range bars {
		u.prices[series.DayKey(b.Date)] = b
	}
	return len(bars), nil
}

// Flows returns the user's records matching filter in (date, category) order
func (m *MemoryRepository) Flows(ctx context.Context, userID string, filter Filter) ([]domain.DailyFlowRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.users[userID]
	if !ok {
		return []domain.DailyFlowRecord{}, nil
	}

	out := make([]domain.DailyFlowRecord, 0, len(u.flows))
	for _, r := range u.flows {
		if filter.Matches(r.Date, r.Category) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].Category < out[j].Category
	})
	return out, nil
}

// Prices returns the user's bars matching filter in date order. Filter.Category is ignored.
func (m *MemoryRepository) Prices(ctx context.Context, userID string, filter Filter) ([]domain.DailyPriceBar, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.users[userID]
	if !ok {
		return []domain.DailyPriceBar{}, nil
	}

	filter.Category = ""
	out := make([]domain.DailyPriceBar, 0, len(u.prices))
	for _, b := range u.prices {
		if filter.Matches(b.Date, "") {
			out = append(out, b)
		}
	}
	return series.SortPrices(out), nil
}

// Atomically runs fn while holding the user's lock. Writes made before fn
// fails are kept.
func (m *MemoryRepository) Atomically(ctx context.Context, userID string, fn func(tx Repository) error) error {
	if userID == "" {
		return ErrMissingUser
	}

	v, _ := m.locks.LoadOrStore(userID, &sync.Mutex{})
	lock := v.(*sync.Mutex)
	lock.Lock()
	defer lock.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(m)
}

// ClearData drops the user's flows and prices. Saved analyses are kept.
func (m *MemoryRepository) ClearData(ctx context.Context, userID string) error {
	if userID == "" {
		return ErrMissingUser
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if u, ok := m.users[userID]; ok {
		u.flows = make(map[string]domain.DailyFlowRecord)
		u.prices = make(map[string]domain.DailyPriceBar)
	}
	return nil
}

// SaveAnalysis inserts or replaces an analysis by ID
func (m *MemoryRepository) SaveAnalysis(ctx context.Context, analysis *domain.SavedAnalysis) error {
	if analysis == nil || analysis.ID == "" {
		return fmt.Errorf("save analysis: missing id")
	}
	if analysis.UserID == "" {
		return ErrMissingUser
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.user(analysis.UserID).analyses[analysis.ID] = *analysis
	return nil
}

// ListAnalyses returns the user's analyses newest first
func (m *MemoryRepository) ListAnalyses(ctx context.Context, userID string) ([]domain.SavedAnalysis, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	out := []domain.SavedAnalysis{}
	if u, ok := m.users[userID]; ok {
		for _, a := range u.analyses {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

// GetAnalysis returns one analysis or ErrNotFound
func (m *MemoryRepository) GetAnalysis(ctx context.Context, userID, id string) (*domain.SavedAnalysis, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if u, ok := m.users[userID]; ok {
		if a, ok := u.analyses[id]; ok {
			return &a, nil
		}
	}
	return nil, fmt.Errorf("analysis %s: %w", id, ErrNotFound)
}

// DeleteAnalysis removes one analysis or returns ErrNotFound
func (m *MemoryRepository) DeleteAnalysis(ctx context.Context, userID, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if u, ok := m.users[userID]; ok {
		if _, ok := u.analyses[id]; ok {
			delete(u.analyses, id)
			return nil
		}
	}
	return fmt.Errorf("analysis %s: %w", id, ErrNotFound)
}

// Ping always succeeds
func (m *MemoryRepository) Ping(context.Context) error { return nil }

// Close is a no-op
func (m *MemoryRepository) Close() error { return nil }
