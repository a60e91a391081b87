package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"flowpulse/internal/analytics"
	"flowpulse/internal/cache"
	"flowpulse/internal/quantum"
	"flowpulse/internal/shared/testutil"
	"flowpulse/internal/storage"
	"flowpulse/pkg/contracts/domain"
)

var analyticsStart = testutil.Day(2024, 3, 1)

func seededRepository(t *testing.T) (*storage.MemoryRepository, []domain.DailyFlowRecord, []domain.DailyPriceBar) {
	t.Helper()
	repo := storage.NewMemoryRepository()

	flows := append(
		testutil.FlowSeries("Estrangeiro", analyticsStart, 500, -200, 300, 800, -900, 400, 100, -50, 700, 200),
		testutil.FlowSeries("Institucional", analyticsStart, -300, 150, -250, -600, 700, -350, -80, 60, -500, -100)...,
	)
	prices := testutil.PriceSeries(analyticsStart, 128000, 127500, 128200, 129000, 127800, 128600, 128700, 128650, 129400, 129600)

	ctx := context.Background()
	_, err := repo.SaveFlows(ctx, "alice", flows)
	require.NoError(t, err)
	_, err = repo.SavePrices(ctx, "alice", prices)
	require.NoError(t, err)

	stored, err := repo.Flows(ctx, "alice", storage.Filter{})
	require.NoError(t, err)
	return repo, stored, prices
}

func newTestAnalyticsService(t *testing.T, repo storage.Repository, reportCache *mockCache) *AnalyticsService {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	if reportCache == nil {
		return NewAnalyticsService(repo, nil, nil, AnalyticsOptions{}, logger)
	}
	return NewAnalyticsService(repo, reportCache, nil, AnalyticsOptions{}, logger)
}

func TestAnalyticsReportsMatchCoreFunctions(t *testing.T) {
	repo, flows, prices := seededRepository(t)
	svc := newTestAnalyticsService(t, repo, nil)
	ctx := context.Background()

	stats, err := svc.Stats(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, analytics.DescriptiveStats(flows, prices), stats)

	enhanced, err := svc.Enhanced(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, analytics.EnhancedStats(flows, prices), enhanced)

	trends, err := svc.Trends(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, analytics.PeriodTrends(flows), trends)

	q, err := svc.Quantum(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, quantum.Analyze(flows, prices), *q)
}

func TestAnalyticsEmptyDataYieldsEmptyReports(t *testing.T) {
	svc := newTestAnalyticsService(t, storage.NewMemoryRepository(), nil)
	ctx := context.Background()

	stats, err := svc.Stats(ctx, "nobody")
	require.NoError(t, err)
	assert.NotNil(t, stats)
	assert.Empty(t, stats)

	patterns, err := svc.Patterns(ctx, "nobody")
	require.NoError(t, err)
	assert.NotNil(t, patterns)
	assert.Empty(t, patterns)

	alerts, err := svc.Alerts(ctx, "nobody")
	require.NoError(t, err)
	assert.NotNil(t, alerts)

	divergences, err := svc.Divergences(ctx, "nobody", "Estrangeiro", 0)
	require.NoError(t, err)
	assert.NotNil(t, divergences)
	assert.Empty(t, divergences)
}

func TestDivergencesRequiresCategory(t *testing.T) {
	svc := newTestAnalyticsService(t, storage.NewMemoryRepository(), nil)

	_, err := svc.Divergences(context.Background(), "alice", "", 5)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestDivergencesUsesDefaultWindow(t *testing.T) {
	repo, flows, prices := seededRepository(t)
	reportCache := new(mockCache)
	reportCache.On("Get", mock.Anything, "alice", "divergences:Estrangeiro:5", mock.Anything).Return(false, nil).Once()
	reportCache.On("Generation", mock.Anything, "alice").Return(int64(3), nil).Once()
	reportCache.On("Set", mock.Anything, "alice", "divergences:Estrangeiro:5", int64(3), mock.Anything).Return(nil).Once()
	svc := newTestAnalyticsService(t, repo, reportCache)

	got, err := svc.Divergences(context.Background(), "alice", "Estrangeiro", -1)

	require.NoError(t, err)
	want := analytics.DivergencesByCategory(flows, prices, "Estrangeiro", analytics.DefaultDivergenceWindow)
	if want == nil {
		want = []domain.Divergence{}
	}
	assert.Equal(t, want, got)
	reportCache.AssertExpectations(t)
}

func TestAnalyticsServesCachedReport(t *testing.T) {
	cachedStats := []domain.DescriptiveStats{{Category: "Estrangeiro", Days: 42}}
	reportCache := new(mockCache)
	reportCache.On("Get", mock.Anything, "alice", ReportStats, mock.Anything).
		Run(func(args mock.Arguments) {
			dest := args.Get(3).(*[]domain.DescriptiveStats)
			*dest = cachedStats
		}).
		Return(true, nil).Once()

	repo := newFaultyRepository()
	repo.flowsErr = errors.New("repository must not be read")
	svc := newTestAnalyticsService(t, repo, reportCache)

	stats, err := svc.Stats(context.Background(), "alice")

	require.NoError(t, err)
	assert.Equal(t, cachedStats, stats)
	reportCache.AssertExpectations(t)
	reportCache.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestAnalyticsCacheFailureFallsBackToCompute(t *testing.T) {
	repo, flows, _ := seededRepository(t)
	reportCache := new(mockCache)
	reportCache.On("Get", mock.Anything, "alice", ReportPatterns, mock.Anything).Return(false, errors.New("redis down"))
	reportCache.On("Generation", mock.Anything, "alice").Return(int64(0), nil)
	reportCache.On("Set", mock.Anything, "alice", ReportPatterns, int64(0), mock.Anything).Return(errors.New("redis down"))
	logger, logs := testutil.NewTestLogger(t)
	svc := NewAnalyticsService(repo, reportCache, nil, AnalyticsOptions{}, logger)

	patterns, err := svc.Patterns(context.Background(), "alice")

	require.NoError(t, err)
	want := analytics.Patterns(flows)
	if want == nil {
		want = []domain.BehaviorPattern{}
	}
	assert.Equal(t, want, patterns)
	assert.True(t, logs.ContainsMessage("report cache read failed"))
	assert.True(t, logs.ContainsMessage("report cache write failed"))
}

func TestAnalyticsSkipsStoreWithoutGeneration(t *testing.T) {
	repo, _, _ := seededRepository(t)
	reportCache := new(mockCache)
	reportCache.On("Get", mock.Anything, "alice", ReportTrends, mock.Anything).Return(false, nil)
	reportCache.On("Generation", mock.Anything, "alice").Return(int64(0), errors.New("redis down"))
	logger, logs := testutil.NewTestLogger(t)
	svc := NewAnalyticsService(repo, reportCache, nil, AnalyticsOptions{}, logger)

	trends, err := svc.Trends(context.Background(), "alice")

	require.NoError(t, err)
	assert.NotEmpty(t, trends)
	assert.True(t, logs.ContainsMessage("report cache generation read failed"))
	reportCache.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestAnalyticsStaleReportIsDiscarded(t *testing.T) {
	repo, _, _ := seededRepository(t)
	reportCache := new(mockCache)
	reportCache.On("Get", mock.Anything, "alice", ReportAlerts, mock.Anything).Return(false, nil)
	reportCache.On("Generation", mock.Anything, "alice").Return(int64(4), nil)
	reportCache.On("Set", mock.Anything, "alice", ReportAlerts, int64(4), mock.Anything).
		Return(fmt.Errorf("cache set alerts: %w", cache.ErrStale))
	logger, logs := testutil.NewTestLogger(t)
	svc := NewAnalyticsService(repo, reportCache, nil, AnalyticsOptions{}, logger)

	_, err := svc.Alerts(context.Background(), "alice")

	require.NoError(t, err)
	assert.True(t, logs.ContainsMessage("stale report discarded"))
	assert.False(t, logs.ContainsMessage("report cache write failed"))
}

func TestAnalyticsRepositoryFailure(t *testing.T) {
	repo := newFaultyRepository()
	repo.pricesErr = errors.New("connection reset")
	svc := newTestAnalyticsService(t, repo, nil)

	_, err := svc.Stats(context.Background(), "alice")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load prices")

	_, err = svc.Dashboard(context.Background(), "alice")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "compute dashboard")
}

func TestDashboardCombinesEveryReport(t *testing.T) {
	repo, flows, prices := seededRepository(t)
	svc := newTestAnalyticsService(t, repo, nil)

	report, err := svc.Dashboard(context.Background(), "alice")
	require.NoError(t, err)

	assert.Equal(t, len(flows), report.FlowRecords)
	assert.Equal(t, len(prices), report.PriceBars)
	assert.WithinDuration(t, time.Now(), report.GeneratedAt, time.Minute)
	assert.Equal(t, analytics.DescriptiveStats(flows, prices), report.Stats)
	assert.Equal(t, analytics.EnhancedStats(flows, prices), report.Enhanced)
	assert.Equal(t, analytics.PeriodTrends(flows), report.PeriodTrends)
	assert.Equal(t, quantum.Analyze(flows, prices), report.Quantum)
	assert.NotNil(t, report.Patterns)
	assert.NotNil(t, report.Alerts)
	assert.NotNil(t, report.Divergences)
}

func TestDashboardEmptyUser(t *testing.T) {
	svc := newTestAnalyticsService(t, storage.NewMemoryRepository(), nil)

	report, err := svc.Dashboard(context.Background(), "nobody")

	require.NoError(t, err)
	assert.Zero(t, report.FlowRecords)
	assert.Empty(t, report.Stats)
	assert.NotNil(t, report.Stats)
	assert.Empty(t, report.Divergences)
}

func TestDashboardHonoursCancellation(t *testing.T) {
	repo, _, _ := seededRepository(t)
	svc := newTestAnalyticsService(t, repo, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Dashboard(ctx, "alice")

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMetricReport(t *testing.T) {
	assert.Equal(t, "divergences", metricReport("divergences:Estrangeiro:5"))
	assert.Equal(t, "stats", metricReport("stats"))
}
