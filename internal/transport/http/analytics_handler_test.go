package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flowpulse/internal/services"
	"flowpulse/internal/shared/testutil"
	"flowpulse/pkg/contracts/domain"
)

func newTestAnalyticsHandler(t *testing.T, service *MockAnalyticsService) *AnalyticsHandler {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	return NewAnalyticsHandler(service, logger, newTestErrorHandler(t))
}

func TestAnalyticsHandler_Reports(t *testing.T) {
	tests := []struct {
		name           string
		path           string
		setupMock      func(*MockAnalyticsService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "stats",
			path: "/stats",
			setupMock: func(m *MockAnalyticsService) {
				m.On("Stats", "alice").Return([]domain.DescriptiveStats{{Category: "Estrangeiro", Days: 10}}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"count":1`,
		},
		{
			name: "enhanced",
			path: "/enhanced",
			setupMock: func(m *MockAnalyticsService) {
				m.On("Enhanced", "alice").Return([]domain.EnhancedStats{}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"count":0`,
		},
		{
			name: "trends",
			path: "/trends",
			setupMock: func(m *MockAnalyticsService) {
				m.On("Trends", "alice").Return([]domain.CategoryTrends{{Category: "Institucional"}}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"Institucional"`,
		},
		{
			name: "patterns",
			path: "/patterns",
			setupMock: func(m *MockAnalyticsService) {
				m.On("Patterns", "alice").Return([]domain.BehaviorPattern{}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"data":[]`,
		},
		{
			name: "alerts failure",
			path: "/alerts",
			setupMock: func(m *MockAnalyticsService) {
				m.On("Alerts", "alice").Return(nil, errors.New("load flows: connection reset"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `"Internal Server Error"`,
		},
		{
			name: "quantum",
			path: "/quantum",
			setupMock: func(m *MockAnalyticsService) {
				m.On("Quantum", "alice").Return(&domain.QuantumReport{}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"status":"success"`,
		},
		{
			name: "dashboard timeout",
			path: "/dashboard",
			setupMock: func(m *MockAnalyticsService) {
				m.On("Dashboard", "alice").Return(nil, context.DeadlineExceeded)
			},
			expectedStatus: http.StatusGatewayTimeout,
			expectedBody:   `"Request Timeout"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockAnalyticsService)
			tt.setupMock(mockService)
			handler := newTestAnalyticsHandler(t, mockService)

			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			rec := httptest.NewRecorder()

			handler.Routes().ServeHTTP(rec, asUser(req, "alice"))

			assert.Equal(t, tt.expectedStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.expectedBody)
			mockService.AssertExpectations(t)
		})
	}
}

func TestAnalyticsHandler_Divergences(t *testing.T) {
	divergence := domain.Divergence{
		Date:     testutil.Day(2024, 3, 5),
		Category: "Estrangeiro",
		Type:     domain.DivergenceBullish,
	}

	tests := []struct {
		name           string
		query          string
		setupMock      func(*MockAnalyticsService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:  "explicit window",
			query: "?category=Estrangeiro&window=10",
			setupMock: func(m *MockAnalyticsService) {
				m.On("Divergences", "alice", "Estrangeiro", 10).Return([]domain.Divergence{divergence}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"count":1`,
		},
		{
			name:  "default window",
			query: "?category=Estrangeiro",
			setupMock: func(m *MockAnalyticsService) {
				m.On("Divergences", "alice", "Estrangeiro", 0).Return([]domain.Divergence{}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"count":0`,
		},
		{
			name:           "missing category",
			query:          "?window=5",
			setupMock:      func(m *MockAnalyticsService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   "category is required",
		},
		{
			name:           "window out of range",
			query:          "?category=Estrangeiro&window=0",
			setupMock:      func(m *MockAnalyticsService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   "window must be between 1 and 250",
		},
		{
			name:           "window not a number",
			query:          "?category=Estrangeiro&window=five",
			setupMock:      func(m *MockAnalyticsService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   "window must be a valid integer",
		},
		{
			name:  "service rejects input",
			query: "?category=Estrangeiro",
			setupMock: func(m *MockAnalyticsService) {
				m.On("Divergences", "alice", "Estrangeiro", 0).Return(nil, services.ErrInvalidInput)
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `"INVALID_PARAMETER"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockAnalyticsService)
			tt.setupMock(mockService)
			handler := newTestAnalyticsHandler(t, mockService)

			req := httptest.NewRequest(http.MethodGet, "/divergences"+tt.query, nil)
			rec := httptest.NewRecorder()

			handler.Routes().ServeHTTP(rec, asUser(req, "alice"))

			assert.Equal(t, tt.expectedStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.expectedBody)
			mockService.AssertExpectations(t)
		})
	}
}

func TestAnalyticsHandler_Dashboard(t *testing.T) {
	generated := time.Date(2024, 3, 10, 18, 0, 0, 0, time.UTC)
	mockService := new(MockAnalyticsService)
	mockService.On("Dashboard", "alice").Return(&domain.DashboardReport{
		GeneratedAt: generated,
		FlowRecords: 20,
		PriceBars:   10,
		Stats:       []domain.DescriptiveStats{{Category: "Estrangeiro"}},
	}, nil)
	handler := newTestAnalyticsHandler(t, mockService)

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	rec := httptest.NewRecorder()
	handler.Routes().ServeHTTP(rec, asUser(req, "alice"))

	require.Equal(t, http.StatusOK, rec.Code)
	var response struct {
		Status string                 `json:"status"`
		Data   domain.DashboardReport `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, "success", response.Status)
	assert.Equal(t, 20, response.Data.FlowRecords)
	assert.True(t, generated.Equal(response.Data.GeneratedAt))
	require.Len(t, response.Data.Stats, 1)
	mockService.AssertExpectations(t)
}
