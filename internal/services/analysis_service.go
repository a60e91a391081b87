package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"flowpulse/internal/infrastructure"
	"flowpulse/internal/series"
	"flowpulse/internal/storage"
	"flowpulse/pkg/contracts/domain"
	"flowpulse/pkg/contracts/events"
)

// CreateAnalysisInput names a period of the user's data to keep in the history.
// Nil dates are taken from the first and last stored flow day.
type CreateAnalysisInput struct {
	Name        string
	Description string
	StartDate   *time.Time
	EndDate     *time.Time
}

// AnalysisService manages the saved analysis history
type AnalysisService struct {
	repo     storage.Repository
	notifier Notifier
	now      func() time.Time
	tracer   trace.Tracer
	logger   *slog.Logger
}

// NewAnalysisService creates an analysis service. A nil notifier disables events.
func NewAnalysisService(repo storage.Repository, notifier Notifier, logger *slog.Logger) *AnalysisService {
	if notifier == nil {
		notifier = noopNotifier{}
	}
	return &AnalysisService{
		repo:     repo,
		notifier: notifier,
		now:      time.Now,
		tracer:   otel.Tracer(infrastructure.ServiceName),
		logger:   infrastructure.WithComponent(logger, "analysis_service"),
	}
}

// Create stores a new analysis. TotalDays counts the distinct days with flow
// data inside [StartDate, EndDate].
func (s *AnalysisService) Create(ctx context.Context, userID string, input CreateAnalysisInput) (*domain.SavedAnalysis, error) {
	ctx, span := s.tracer.Start(ctx, "AnalysisService.Create")
	defer span.End()

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if input.StartDate != nil && input.EndDate != nil && input.StartDate.After(*input.EndDate) {
		return nil, ErrInvalidDateRange
	}

	flows, err := s.repo.Flows(ctx, userID, storage.Filter{})
	if err != nil {
		infrastructure.RecordError(ctx, err)
		return nil, fmt.Errorf("load flows: %w", err)
	}

	start, end, err := analysisPeriod(flows, input.StartDate, input.EndDate)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	analysis := &domain.SavedAnalysis{
		ID:          uuid.NewString(),
		UserID:      userID,
		Name:        name,
		Description: strings.TrimSpace(input.Description),
		StartDate:   start,
		EndDate:     end,
		TotalDays:   countDays(flows, start, end),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.SaveAnalysis(ctx, analysis); err != nil {
		infrastructure.RecordError(ctx, err)
		return nil, fmt.Errorf("save analysis: %w", err)
	}

	s.logger.InfoContext(ctx, "analysis saved",
		slog.String("user_id", userID),
		slog.String("analysis_id", analysis.ID),
		slog.Int("total_days", analysis.TotalDays))
	s.notifier.Publish(ctx, userID, string(events.MessageTypeAnalysisSaved), events.AnalysisSaved{
		ID:        analysis.ID,
		Name:      analysis.Name,
		StartDate: analysis.StartDate,
		EndDate:   analysis.EndDate,
		TotalDays: analysis.TotalDays,
	})
	return analysis, nil
}

// List returns the user's analyses newest first
func (s *AnalysisService) List(ctx context.Context, userID string) ([]domain.SavedAnalysis, error) {
	ctx, span := s.tracer.Start(ctx, "AnalysisService.List")
	defer span.End()

	analyses, err := s.repo.ListAnalyses(ctx, userID)
	if err != nil {
		infrastructure.RecordError(ctx, err)
		return nil, fmt.Errorf("list analyses: %w", err)
	}
	return nonNil(analyses), nil
}

func (s *AnalysisService) Get(ctx context.Context, userID, id string) (*domain.SavedAnalysis, error) {
	ctx, span := s.tracer.Start(ctx, "AnalysisService.Get")
	defer span.End()

	return s.repo.GetAnalysis(ctx, userID, id)
}

func (s *AnalysisService) Delete(ctx context.Context, userID, id string) error {
	ctx, span := s.tracer.Start(ctx, "AnalysisService.Delete")
	defer span.End()

	if err := s.repo.DeleteAnalysis(ctx, userID, id); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "analysis deleted",
		slog.String("user_id", userID),
		slog.String("analysis_id", id))
	return nil
}

// analysisPeriod fills missing bounds from the stored flow dates
func analysisPeriod(flows []domain.DailyFlowRecord, start, end *time.Time) (time.Time, time.Time, error) {
	if start != nil && end != nil {
		return *start, *end, nil
	}
	if len(flows) == 0 {
		return time.Time{}, time.Time{}, fmt.Errorf("derive analysis period: %w", ErrNoData)
	}

	first, last := flows[0].Date, flows[0].Date
	for _, r := range flows[1:] {
		if r.Date.Before(first) {
			first = r.Date
		}
		if r.Date.After(last) {
			last = r.Date
		}
	}
	if start != nil {
		first = *start
	}
	if end != nil {
		last = *end
	}
	if first.After(last) {
		return time.Time{}, time.Time{}, ErrInvalidDateRange
	}
	return first, last, nil
}

func countDays(flows []domain.DailyFlowRecord, start, end time.Time) int {
	days := make(map[string]struct{})
	for _, r := range flows {
		if r.Date.Before(start) || r.Date.After(end) {
			continue
		}
		days[series.DayKey(r.Date)] = struct{}{}
	}
	return len(days)
}
