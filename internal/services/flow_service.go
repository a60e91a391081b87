package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"flowpulse/internal/cache"
	"flowpulse/internal/dataprocessing"
	"flowpulse/internal/infrastructure"
	"flowpulse/internal/storage"
	"flowpulse/pkg/contracts/domain"
	"flowpulse/pkg/contracts/events"
)

// Notifier pushes change events to a user's connected clients
type Notifier interface {
	Publish(ctx context.Context, userID, eventType string, data interface{})
}

type noopNotifier struct{}

func (noopNotifier) Publish(context.Context, string, string, interface{}) {}

// FlowService ingests uploads and serves the user's stored series
type FlowService struct {
	ingester dataprocessing.Ingester
	repo     storage.Repository
	cache    cache.ReportCache
	notifier Notifier
	metrics  *infrastructure.BusinessMetrics
	tracer   trace.Tracer
	logger   *slog.Logger
}

// NewFlowService creates a flow service. A nil cache or notifier disables that concern.
func NewFlowService(ingester dataprocessing.Ingester, repo storage.Repository, reportCache cache.ReportCache, notifier Notifier, metrics *infrastructure.BusinessMetrics, logger *slog.Logger) *FlowService {
	if reportCache == nil {
		reportCache = cache.Noop{}
	}
	if notifier == nil {
		notifier = noopNotifier{}
	}
	return &FlowService{
		ingester: ingester,
		repo:     repo,
		cache:    reportCache,
		notifier: notifier,
		metrics:  metrics,
		tracer:   otel.Tracer(infrastructure.ServiceName),
		logger:   infrastructure.WithComponent(logger, "flow_service"),
	}
}

// UploadFlows reconstructs daily flows from the uploaded reports and merges
// them into the user's stored history. Stored days of the touched months are
// re-differenced together with the fresh rows so a late report fixes the
// daily values of the days around it.
func (s *FlowService) UploadFlows(ctx context.Context, userID string, files []domain.UploadedFile) (*domain.UploadSummary, error) {
	ctx, span := s.tracer.Start(ctx, "FlowService.UploadFlows",
		trace.WithAttributes(attribute.Int("files", len(files))))
	defer span.End()

	start := time.Now()
	summary, warnings, err := s.uploadFlows(ctx, userID, files)
	records := 0
	if summary != nil {
		records = summary.TotalRecords
	}
	infrastructure.RecordUploadMetrics(ctx, s.metrics, events.KindFlows, records, warnings, time.Since(start), err)
	if err != nil {
		infrastructure.RecordError(ctx, err)
		s.logger.WarnContext(ctx, "flow upload rejected",
			slog.String("user_id", userID),
			slog.Int("files", len(files)),
			slog.String("error", err.Error()))
		return nil, err
	}

	s.logger.InfoContext(ctx, "flow upload stored",
		slog.String("user_id", userID),
		slog.Int("records", summary.TotalRecords),
		slog.Int("warnings", warnings))
	s.dataChanged(ctx, userID, events.DataUpdate{
		Kind:      events.KindFlows,
		Records:   summary.TotalRecords,
		StartDate: summary.StartDate,
		EndDate:   summary.EndDate,
	})
	return summary, nil
}

func (s *FlowService) uploadFlows(ctx context.Context, userID string, files []domain.UploadedFile) (*domain.UploadSummary, int, error) {
	result, err := s.ingester.ReconstructDailyFlow(ctx, files)
	if err != nil {
		return nil, 0, fmt.Errorf("reconstruct daily flow: %w", err)
	}

	dates := make([]time.Time, len(result.Records))
	for i, r := range result.Records {
		dates[i] = r.Date
	}
	from, to, ok := dataprocessing.MonthSpan(dates)
	if !ok {
		return nil, len(result.Warnings), dataprocessing.ErrNoValidRecords
	}

	err = s.repo.Atomically(ctx, userID, func(tx storage.Repository) error {
		stored, err := tx.Flows(ctx, userID, storage.Filter{From: from, To: to})
		if err != nil {
			return fmt.Errorf("load stored flows: %w", err)
		}
		merged := dataprocessing.MergeFlows(stored, result.Records)
		if _, err := tx.SaveFlows(ctx, userID, merged); err != nil {
			return fmt.Errorf("save flows: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, len(result.Warnings), err
	}

	return newUploadSummary(len(result.Records), dates, result.Warnings), len(result.Warnings), nil
}

// UploadPrices aggregates intraday quotes into daily bars and merges them into
// the stored bars. Derived changes are recomputed over the merged series.
func (s *FlowService) UploadPrices(ctx context.Context, userID, content string) (*domain.UploadSummary, error) {
	ctx, span := s.tracer.Start(ctx, "FlowService.UploadPrices")
	defer span.End()

	start := time.Now()
	summary, warnings, err := s.uploadPrices(ctx, userID, content)
	records := 0
	if summary != nil {
		records = summary.TotalRecords
	}
	infrastructure.RecordUploadMetrics(ctx, s.metrics, events.KindPrices, records, warnings, time.Since(start), err)
	if err != nil {
		infrastructure.RecordError(ctx, err)
		s.logger.WarnContext(ctx, "price upload rejected",
			slog.String("user_id", userID),
			slog.String("error", err.Error()))
		return nil, err
	}

	s.logger.InfoContext(ctx, "price upload stored",
		slog.String("user_id", userID),
		slog.Int("bars", summary.TotalRecords),
		slog.Int("warnings", warnings))
	s.dataChanged(ctx, userID, events.DataUpdate{
		Kind:      events.KindPrices,
		Records:   summary.TotalRecords,
		StartDate: summary.StartDate,
		EndDate:   summary.EndDate,
	})
	return summary, nil
}

func (s *FlowService) uploadPrices(ctx context.Context, userID, content string) (*domain.UploadSummary, int, error) {
	result, err := s.ingester.IngestPriceQuotes(ctx, content)
	if err != nil {
		return nil, 0, fmt.Errorf("ingest price quotes: %w", err)
	}

	err = s.repo.Atomically(ctx, userID, func(tx storage.Repository) error {
		stored, err := tx.Prices(ctx, userID, storage.Filter{})
		if err != nil {
			return fmt.Errorf("load stored prices: %w", err)
		}
		merged := dataprocessing.MergePrices(stored, result.Bars)
		if _, err := tx.SavePrices(ctx, userID, merged); err != nil {
			return fmt.Errorf("save prices: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, len(result.Warnings), err
	}

	dates := make([]time.Time, len(result.Bars))
	for i, b := range result.Bars {
		dates[i] = b.Date
	}
	return newUploadSummary(len(result.Bars), dates, result.Warnings), len(result.Warnings), nil
}

// Flows returns the user's stored flow records matching filter
func (s *FlowService) Flows(ctx context.Context, userID string, filter storage.Filter) ([]domain.DailyFlowRecord, error) {
	ctx, span := s.tracer.Start(ctx, "FlowService.Flows")
	defer span.End()

	if err := validateFilter(filter); err != nil {
		return nil, err
	}
	records, err := s.repo.Flows(ctx, userID, filter)
	if err != nil {
		infrastructure.RecordError(ctx, err)
		return nil, fmt.Errorf("load flows: %w", err)
	}
	return nonNil(records), nil
}

// Prices returns the user's stored price bars matching filter
func (s *FlowService) Prices(ctx context.Context, userID string, filter storage.Filter) ([]domain.DailyPriceBar, error) {
	ctx, span := s.tracer.Start(ctx, "FlowService.Prices")
	defer span.End()

	if err := validateFilter(filter); err != nil {
		return nil, err
	}
	bars, err := s.repo.Prices(ctx, userID, filter)
	if err != nil {
		infrastructure.RecordError(ctx, err)
		return nil, fmt.Errorf("load prices: %w", err)
	}
	return nonNil(bars), nil
}

// ClearData deletes the user's flows and prices. Saved analyses are kept.
func (s *FlowService) ClearData(ctx context.Context, userID string) error {
	ctx, span := s.tracer.Start(ctx, "FlowService.ClearData")
	defer span.End()

	if err := s.repo.ClearData(ctx, userID); err != nil {
		infrastructure.RecordError(ctx, err)
		return fmt.Errorf("clear data: %w", err)
	}

	s.logger.InfoContext(ctx, "user data cleared", slog.String("user_id", userID))
	s.dataChanged(ctx, userID, events.DataUpdate{Kind: events.KindCleared})
	return nil
}

// dataChanged drops cached reports and tells the user's clients to refresh
func (s *FlowService) dataChanged(ctx context.Context, userID string, update events.DataUpdate) {
	if err := s.cache.Invalidate(ctx, userID); err != nil {
		s.logger.WarnContext(ctx, "report cache invalidation failed",
			slog.String("user_id", userID),
			slog.String("error", err.Error()))
	}
	s.notifier.Publish(ctx, userID, string(events.MessageTypeDataUpdated), update)
}

func newUploadSummary(total int, dates []time.Time, warnings []domain.IngestionWarning) *domain.UploadSummary {
	summary := &domain.UploadSummary{
		Success:      true,
		TotalRecords: total,
		Warnings:     warnings,
	}
	for i := range dates {
		d := dates[i]
		if summary.StartDate == nil || d.Before(*summary.StartDate) {
			summary.StartDate = &d
		}
		if summary.EndDate == nil || d.After(*summary.EndDate) {
			summary.EndDate = &d
		}
	}
	return summary
}

func validateFilter(filter storage.Filter) error {
	if !filter.From.IsZero() && !filter.To.IsZero() && filter.From.After(filter.To) {
		return ErrInvalidDateRange
	}
	return nil
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
