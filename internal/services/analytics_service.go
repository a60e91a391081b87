package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"flowpulse/internal/analytics"
	"flowpulse/internal/cache"
	"flowpulse/internal/infrastructure"
	"flowpulse/internal/quantum"
	"flowpulse/internal/storage"
	"flowpulse/pkg/contracts/domain"
)

// Report names used for cache keys and metric attributes
const (
	ReportStats       = "stats"
	ReportDivergences = "divergences"
	ReportEnhanced    = "enhanced"
	ReportTrends      = "trends"
	ReportPatterns    = "patterns"
	ReportAlerts      = "alerts"
	ReportQuantum     = "quantum"
	ReportDashboard   = "dashboard"
)

// AnalyticsOptions tunes the analytics service
type AnalyticsOptions struct {
	// DivergenceWindow is used when a request does not name one
	DivergenceWindow int

	// DashboardTimeout bounds the concurrent dashboard computation, 0 means no bound
	DashboardTimeout time.Duration
}

// AnalyticsService computes reports over one snapshot of the user's data
type AnalyticsService struct {
	repo    storage.Repository
	cache   cache.ReportCache
	metrics *infrastructure.BusinessMetrics
	opts    AnalyticsOptions
	tracer  trace.Tracer
	logger  *slog.Logger
}

// snapshot is the user's flows and prices loaded together
type snapshot struct {
	flow   []domain.DailyFlowRecord
	prices []domain.DailyPriceBar
}

// NewAnalyticsService creates an analytics service. A nil cache disables caching.
func NewAnalyticsService(repo storage.Repository, reportCache cache.ReportCache, metrics *infrastructure.BusinessMetrics, opts AnalyticsOptions, logger *slog.Logger) *AnalyticsService {
	if reportCache == nil {
		reportCache = cache.Noop{}
	}
	if opts.DivergenceWindow <= 0 {
		opts.DivergenceWindow = analytics.DefaultDivergenceWindow
	}
	return &AnalyticsService{
		repo:    repo,
		cache:   reportCache,
		metrics: metrics,
		opts:    opts,
		tracer:  otel.Tracer(infrastructure.ServiceName),
		logger:  infrastructure.WithComponent(logger, "analytics_service"),
	}
}

// Stats returns descriptive statistics per investor category
func (s *AnalyticsService) Stats(ctx context.Context, userID string) ([]domain.DescriptiveStats, error) {
	return cached(ctx, s, userID, ReportStats, func(snap snapshot) []domain.DescriptiveStats {
		return nonNil(analytics.DescriptiveStats(snap.flow, snap.prices))
	})
}

// Divergences returns divergences of one category. A window of zero or less uses the configured default.
func (s *AnalyticsService) Divergences(ctx context.Context, userID, category string, window int) ([]domain.Divergence, error) {
	if category == "" {
		return nil, fmt.Errorf("%w: category is required", ErrInvalidInput)
	}
	if window <= 0 {
		window = s.opts.DivergenceWindow
	}

	name := fmt.Sprintf("%s:%s:%d", ReportDivergences, category, window)
	return cached(ctx, s, userID, name, func(snap snapshot) []domain.Divergence {
		return nonNil(analytics.DivergencesByCategory(snap.flow, snap.prices, category, window))
	})
}

// Enhanced returns the enhanced statistics per category
func (s *AnalyticsService) Enhanced(ctx context.Context, userID string) ([]domain.EnhancedStats, error) {
	return cached(ctx, s, userID, ReportEnhanced, func(snap snapshot) []domain.EnhancedStats {
		return nonNil(analytics.EnhancedStats(snap.flow, snap.prices))
	})
}

// Trends returns the 7, 14 and 30 day trends per category
func (s *AnalyticsService) Trends(ctx context.Context, userID string) ([]domain.CategoryTrends, error) {
	return cached(ctx, s, userID, ReportTrends, func(snap snapshot) []domain.CategoryTrends {
		return nonNil(analytics.PeriodTrends(snap.flow))
	})
}

func (s *AnalyticsService) Patterns(ctx context.Context, userID string) ([]domain.BehaviorPattern, error) {
	return cached(ctx, s, userID, ReportPatterns, func(snap snapshot) []domain.BehaviorPattern {
		return nonNil(analytics.Patterns(snap.flow))
	})
}

func (s *AnalyticsService) Alerts(ctx context.Context, userID string) ([]domain.MovementAlert, error) {
	return cached(ctx, s, userID, ReportAlerts, func(snap snapshot) []domain.MovementAlert {
		return nonNil(analytics.MovementAlerts(snap.flow, snap.prices))
	})
}

// Quantum returns inflections, extremes, cycles, momentum and the daily comparison
func (s *AnalyticsService) Quantum(ctx context.Context, userID string) (*domain.QuantumReport, error) {
	report, err := cached(ctx, s, userID, ReportQuantum, func(snap snapshot) domain.QuantumReport {
		return quantum.Analyze(snap.flow, snap.prices)
	})
	if err != nil {
		return nil, err
	}
	return &report, nil
}

// Dashboard computes every report over a single snapshot. The independent
// analyses run concurrently.
func (s *AnalyticsService) Dashboard(ctx context.Context, userID string) (*domain.DashboardReport, error) {
	var cachedReport domain.DashboardReport
	if hit := s.lookup(ctx, userID, ReportDashboard, &cachedReport); hit {
		return &cachedReport, nil
	}
	var report domain.DashboardReport

	ctx, span := s.tracer.Start(ctx, "AnalyticsService.Dashboard")
	defer span.End()

	if s.opts.DashboardTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.DashboardTimeout)
		defer cancel()
	}

	gen, cacheable := s.generation(ctx, userID)
	start := time.Now()
	snap, err := s.load(ctx, userID)
	if err == nil {
		err = s.computeDashboard(ctx, snap, &report)
	}
	infrastructure.RecordAnalyticsMetrics(ctx, s.metrics, ReportDashboard, time.Since(start), err)
	if err != nil {
		infrastructure.RecordError(ctx, err)
		return nil, fmt.Errorf("compute dashboard: %w", err)
	}

	s.logger.DebugContext(ctx, "dashboard computed",
		slog.String("user_id", userID),
		slog.Int("flow_records", report.FlowRecords),
		slog.Duration("duration", time.Since(start)))
	if cacheable {
		s.store(ctx, userID, ReportDashboard, gen, report)
	}
	return &report, nil
}

func (s *AnalyticsService) computeDashboard(ctx context.Context, snap snapshot, report *domain.DashboardReport) error {
	report.GeneratedAt = time.Now().UTC()
	report.FlowRecords = len(snap.flow)
	report.PriceBars = len(snap.prices)

	g, gctx := errgroup.WithContext(ctx)
	run := func(fn func()) {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			fn()
			return nil
		})
	}

	run(func() { report.Stats = nonNil(analytics.DescriptiveStats(snap.flow, snap.prices)) })
	run(func() { report.Enhanced = nonNil(analytics.EnhancedStats(snap.flow, snap.prices)) })
	run(func() { report.PeriodTrends = nonNil(analytics.PeriodTrends(snap.flow)) })
	run(func() { report.Patterns = nonNil(analytics.Patterns(snap.flow)) })
	run(func() { report.Alerts = nonNil(analytics.MovementAlerts(snap.flow, snap.prices)) })
	run(func() {
		report.Divergences = nonNil(analytics.AllDivergences(snap.flow, snap.prices, s.opts.DivergenceWindow))
	})
	run(func() { report.Quantum = quantum.Analyze(snap.flow, snap.prices) })

	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

// load reads flows and prices concurrently
func (s *AnalyticsService) load(ctx context.Context, userID string) (snapshot, error) {
	var snap snapshot
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		flow, err := s.repo.Flows(gctx, userID, storage.Filter{})
		if err != nil {
			return fmt.Errorf("load flows: %w", err)
		}
		snap.flow = flow
		return nil
	})
	g.Go(func() error {
		prices, err := s.repo.Prices(gctx, userID, storage.Filter{})
		if err != nil {
			return fmt.Errorf("load prices: %w", err)
		}
		snap.prices = prices
		return nil
	})
	return snap, g.Wait()
}

// lookup reads a cached report into dest. Cache failures count as misses.
func (s *AnalyticsService) lookup(ctx context.Context, userID, name string, dest any) bool {
	hit, err := s.cache.Get(ctx, userID, name, dest)
	if err != nil {
		s.logger.WarnContext(ctx, "report cache read failed",
			slog.String("report", name),
			slog.String("error", err.Error()))
		hit = false
	}
	infrastructure.RecordCacheLookup(ctx, s.metrics, metricReport(name), hit)
	return hit
}

// generation reads the user's cache generation. It must be read before the
// snapshot is loaded; false means the report must not be stored.
func (s *AnalyticsService) generation(ctx context.Context, userID string) (int64, bool) {
	gen, err := s.cache.Generation(ctx, userID)
	if err != nil {
		s.logger.WarnContext(ctx, "report cache generation read failed",
			slog.String("error", err.Error()))
		return 0, false
	}
	return gen, true
}

func (s *AnalyticsService) store(ctx context.Context, userID, name string, gen int64, value any) {
	err := s.cache.Set(ctx, userID, name, gen, value)
	switch {
	case err == nil:
	case errors.Is(err, cache.ErrStale):
		s.logger.DebugContext(ctx, "stale report discarded",
			slog.String("report", name),
			slog.Int64("generation", gen))
	default:
		s.logger.WarnContext(ctx, "report cache write failed",
			slog.String("report", name),
			slog.String("error", err.Error()))
	}
}

// cached serves a report from the cache or computes it over a fresh snapshot
func cached[T any](ctx context.Context, s *AnalyticsService, userID, name string, compute func(snapshot) T) (T, error) {
	var out T
	if hit := s.lookup(ctx, userID, name, &out); hit {
		return out, nil
	}
	var zero T

	report := metricReport(name)
	ctx, span := s.tracer.Start(ctx, "AnalyticsService."+report,
		trace.WithAttributes(attribute.String("report", name)))
	defer span.End()

	gen, cacheable := s.generation(ctx, userID)
	start := time.Now()
	snap, err := s.load(ctx, userID)
	if err != nil {
		infrastructure.RecordAnalyticsMetrics(ctx, s.metrics, report, time.Since(start), err)
		infrastructure.RecordError(ctx, err)
		return zero, err
	}

	out = compute(snap)
	infrastructure.RecordAnalyticsMetrics(ctx, s.metrics, report, time.Since(start), nil)
	if cacheable {
		s.store(ctx, userID, name, gen, out)
	}
	return out, nil
}

// metricReport strips the parameters from a cache name
func metricReport(name string) string {
	report, _, _ := strings.Cut(name, ":")
	return report
}
