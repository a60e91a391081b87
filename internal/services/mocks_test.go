package services

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/stretchr/testify/mock"

	"flowpulse/internal/dataprocessing"
	"flowpulse/internal/storage"
	"flowpulse/pkg/contracts/domain"
)

type mockIngester struct {
	mock.Mock
}

func (m *mockIngester) ReconstructDailyFlow(ctx context.Context, files []domain.UploadedFile) (*dataprocessing.FlowResult, error) {
	args := m.Called(ctx, files)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dataprocessing.FlowResult), args.Error(1)
}

func (m *mockIngester) IngestPriceQuotes(ctx context.Context, content string) (*dataprocessing.PriceResult, error) {
	args := m.Called(ctx, content)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dataprocessing.PriceResult), args.Error(1)
}

type mockCache struct {
	mock.Mock
}

func (m *mockCache) Get(ctx context.Context, userID, name string, dest any) (bool, error) {
	args := m.Called(ctx, userID, name, dest)
	return args.Bool(0), args.Error(1)
}

func (m *mockCache) Generation(ctx context.Context, userID string) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockCache) Set(ctx context.Context, userID, name string, generation int64, value any) error {
	return m.Called(ctx, userID, name, generation, value).Error(0)
}

func (m *mockCache) Invalidate(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}

func (m *mockCache) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *mockCache) Close() error {
	return m.Called().Error(0)
}

type publishedEvent struct {
	userID    string
	eventType string
	data      interface{}
}

// recordingNotifier keeps every published event
type recordingNotifier struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (n *recordingNotifier) Publish(_ context.Context, userID, eventType string, data interface{}) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, publishedEvent{userID: userID, eventType: eventType, data: data})
}

func (n *recordingNotifier) Events() []publishedEvent {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]publishedEvent(nil), n.events...)
}

// faultyRepository fails the configured operations and delegates the rest
type faultyRepository struct {
	*storage.MemoryRepository
	flowsErr  error
	pricesErr error
	saveErr   error
	pingErr   error
}

func newFaultyRepository() *faultyRepository {
	return &faultyRepository{MemoryRepository: storage.NewMemoryRepository()}
}

func (r *faultyRepository) Flows(ctx context.Context, userID string, filter storage.Filter) ([]domain.DailyFlowRecord, error) {
	if r.flowsErr != nil {
		return nil, r.flowsErr
	}
	return r.MemoryRepository.Flows(ctx, userID, filter)
}

func (r *faultyRepository) Prices(ctx context.Context, userID string, filter storage.Filter) ([]domain.DailyPriceBar, error) {
	if r.pricesErr != nil {
		return nil, r.pricesErr
	}
	return r.MemoryRepository.Prices(ctx, userID, filter)
}

func (r *faultyRepository) SaveFlows(ctx context.Context, userID string, records []domain.DailyFlowRecord) (int, error) {
	if r.saveErr != nil {
		return 0, r.saveErr
	}
	return r.MemoryRepository.SaveFlows(ctx, userID, records)
}

func (r *faultyRepository) Atomically(ctx context.Context, userID string, fn func(tx storage.Repository) error) error {
	return r.MemoryRepository.Atomically(ctx, userID, func(storage.Repository) error {
		return fn(r)
	})
}

func (r *faultyRepository) Ping(ctx context.Context) error {
	return r.pingErr
}

// gatedRepository returns the flows of its first Flows call only after
// release is closed, so the caller works on a snapshot taken before anything
// that happens in between.
type gatedRepository struct {
	*storage.MemoryRepository
	once    sync.Once
	calls   atomic.Int32
	entered chan struct{}
	release chan struct{}
}

func newGatedRepository(repo *storage.MemoryRepository) *gatedRepository {
	return &gatedRepository{
		MemoryRepository: repo,
		entered:          make(chan struct{}),
		release:          make(chan struct{}),
	}
}

func (r *gatedRepository) Flows(ctx context.Context, userID string, filter storage.Filter) ([]domain.DailyFlowRecord, error) {
	r.calls.Add(1)
	flows, err := r.MemoryRepository.Flows(ctx, userID, filter)
	r.once.Do(func() {
		close(r.entered)
		<-r.release
	})
	return flows, err
}

func (r *gatedRepository) Atomically(ctx context.Context, userID string, fn func(tx storage.Repository) error) error {
	return r.MemoryRepository.Atomically(ctx, userID, func(storage.Repository) error {
		return fn(r)
	})
}
