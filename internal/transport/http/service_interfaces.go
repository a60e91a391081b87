package http

import (
	"context"

	"flowpulse/internal/services"
	"flowpulse/internal/storage"
	"flowpulse/pkg/contracts/domain"
)

// FlowServiceInterface defines ingestion and retrieval of a user's series
type FlowServiceInterface interface {
	UploadFlows(ctx context.Context, userID string, files []domain.UploadedFile) (*domain.UploadSummary, error)
	UploadPrices(ctx context.Context, userID, content string) (*domain.UploadSummary, error)
	Flows(ctx context.Context, userID string, filter storage.Filter) ([]domain.DailyFlowRecord, error)
	Prices(ctx context.Context, userID string, filter storage.Filter) ([]domain.DailyPriceBar, error)
	ClearData(ctx context.Context, userID string) error
}

// AnalyticsServiceInterface defines the analytics reports
type AnalyticsServiceInterface interface {
	Stats(ctx context.Context, userID string) ([]domain.DescriptiveStats, error)
	Divergences(ctx context.Context, userID, category string, window int) ([]domain.Divergence, error)
	Enhanced(ctx context.Context, userID string) ([]domain.EnhancedStats, error)
	Trends(ctx context.Context, userID string) ([]domain.CategoryTrends, error)
	Patterns(ctx context.Context, userID string) ([]domain.BehaviorPattern, error)
	Alerts(ctx context.Context, userID string) ([]domain.MovementAlert, error)
	Quantum(ctx context.Context, userID string) (*domain.QuantumReport, error)
	Dashboard(ctx context.Context, userID string) (*domain.DashboardReport, error)
}

// AnalysisServiceInterface defines the saved analysis history
type AnalysisServiceInterface interface {
	Create(ctx context.Context, userID string, input services.CreateAnalysisInput) (*domain.SavedAnalysis, error)
	List(ctx context.Context, userID string) ([]domain.SavedAnalysis, error)
	Get(ctx context.Context, userID, id string) (*domain.SavedAnalysis, error)
	Delete(ctx context.Context, userID, id string) error
}

// HealthServiceInterface defines the probes and diagnostics
type HealthServiceInterface interface {
	HealthCheck(ctx context.Context) services.HealthStatus
	ReadinessCheck(ctx context.Context) services.HealthStatus
	LivenessCheck(ctx context.Context) services.HealthStatus
	Version() map[string]interface{}
	GetDetailedHealth(ctx context.Context) map[string]interface{}
}
