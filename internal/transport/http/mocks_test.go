package http

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/mock"

	apierrors "flowpulse/internal/errors"
	"flowpulse/internal/infrastructure"
	"flowpulse/internal/services"
	"flowpulse/internal/shared/testutil"
	"flowpulse/internal/storage"
	"flowpulse/pkg/contracts/domain"
)

// MockFlowService is a mock implementation of FlowServiceInterface
type MockFlowService struct {
	mock.Mock
}

func (m *MockFlowService) UploadFlows(ctx context.Context, userID string, files []domain.UploadedFile) (*domain.UploadSummary, error) {
	args := m.Called(userID, files)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.UploadSummary), args.Error(1)
}

func (m *MockFlowService) UploadPrices(ctx context.Context, userID, content string) (*domain.UploadSummary, error) {
	args := m.Called(userID, content)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.UploadSummary), args.Error(1)
}

func (m *MockFlowService) Flows(ctx context.Context, userID string, filter storage.Filter) ([]domain.DailyFlowRecord, error) {
	args := m.Called(userID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.DailyFlowRecord), args.Error(1)
}

func (m *MockFlowService) Prices(ctx context.Context, userID string, filter storage.Filter) ([]domain.DailyPriceBar, error) {
	args := m.Called(userID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.DailyPriceBar), args.Error(1)
}

func (m *MockFlowService) ClearData(ctx context.Context, userID string) error {
	return m.Called(userID).Error(0)
}

// MockAnalyticsService is a mock implementation of AnalyticsServiceInterface
type MockAnalyticsService struct {
	mock.Mock
}

func (m *MockAnalyticsService) Stats(ctx context.Context, userID string) ([]domain.DescriptiveStats, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.DescriptiveStats), args.Error(1)
}

func (m *MockAnalyticsService) Divergences(ctx context.Context, userID, category string, window int) ([]domain.Divergence, error) {
	args := m.Called(userID, category, window)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Divergence), args.Error(1)
}

func (m *MockAnalyticsService) Enhanced(ctx context.Context, userID string) ([]domain.EnhancedStats, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.EnhancedStats), args.Error(1)
}

func (m *MockAnalyticsService) Trends(ctx context.Context, userID string) ([]domain.CategoryTrends, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CategoryTrends), args.Error(1)
}

func (m *MockAnalyticsService) Patterns(ctx context.Context, userID string) ([]domain.BehaviorPattern, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.BehaviorPattern), args.Error(1)
}

func (m *MockAnalyticsService) Alerts(ctx context.Context, userID string) ([]domain.MovementAlert, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.MovementAlert), args.Error(1)
}

func (m *MockAnalyticsService) Quantum(ctx context.Context, userID string) (*domain.QuantumReport, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.QuantumReport), args.Error(1)
}

func (m *MockAnalyticsService) Dashboard(ctx context.Context, userID string) (*domain.DashboardReport, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DashboardReport), args.Error(1)
}

// MockAnalysisService is a mock implementation of AnalysisServiceInterface
type MockAnalysisService struct {
	mock.Mock
}

func (m *MockAnalysisService) Create(ctx context.Context, userID string, input services.CreateAnalysisInput) (*domain.SavedAnalysis, error) {
	args := m.Called(userID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SavedAnalysis), args.Error(1)
}

func (m *MockAnalysisService) List(ctx context.Context, userID string) ([]domain.SavedAnalysis, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.SavedAnalysis), args.Error(1)
}

func (m *MockAnalysisService) Get(ctx context.Context, userID, id string) (*domain.SavedAnalysis, error) {
	args := m.Called(userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SavedAnalysis), args.Error(1)
}

func (m *MockAnalysisService) Delete(ctx context.Context, userID, id string) error {
	return m.Called(userID, id).Error(0)
}

func newTestErrorHandler(t *testing.T) *apierrors.ErrorHandler {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	return apierrors.NewErrorHandler(logger, false)
}

// asUser attaches userID the way the UserID middleware does
func asUser(req *http.Request, userID string) *http.Request {
	return req.WithContext(infrastructure.WithUserID(req.Context(), userID))
}
