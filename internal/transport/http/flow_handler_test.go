package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"flowpulse/internal/dataprocessing"
	"flowpulse/internal/services"
	"flowpulse/internal/shared/testutil"
	"flowpulse/internal/storage"
	"flowpulse/pkg/contracts/domain"
)

const testUploadLimit = 1 << 20

func newTestFlowHandler(t *testing.T, service *MockFlowService, limit int64) *FlowHandler {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	return NewFlowHandler(service, limit, logger, newTestErrorHandler(t))
}

func TestFlowHandler_UploadFlows(t *testing.T) {
	start, end := testutil.Day(2024, 3, 1), testutil.Day(2024, 3, 4)
	files := []domain.UploadedFile{
		{Name: "d1.csv", Content: "report one"},
		{Name: "d4.csv", Content: "report four"},
	}

	tests := []struct {
		name           string
		body           string
		limit          int64
		setupMock      func(*MockFlowService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:  "successful upload",
			body:  `{"files":[{"name":"d1.csv","content":"report one"},{"name":"d4.csv","content":"report four"}]}`,
			limit: testUploadLimit,
			setupMock: func(m *MockFlowService) {
				m.On("UploadFlows", "alice", files).Return(&domain.UploadSummary{
					Success:      true,
					TotalRecords: 2,
					StartDate:    &start,
					EndDate:      &end,
				}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"total_records":2`,
		},
		{
			name:           "no files",
			body:           `{"files":[]}`,
			limit:          testUploadLimit,
			setupMock:      func(m *MockFlowService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `"VALIDATION_FAILED"`,
		},
		{
			name:           "unknown field",
			body:           `{"files":[{"name":"a.csv","content":"x"}],"mode":"full"}`,
			limit:          testUploadLimit,
			setupMock:      func(m *MockFlowService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `"INVALID_REQUEST"`,
		},
		{
			name:  "nothing usable in the reports",
			body:  `{"files":[{"name":"d1.csv","content":"report one"},{"name":"d4.csv","content":"report four"}]}`,
			limit: testUploadLimit,
			setupMock: func(m *MockFlowService) {
				m.On("UploadFlows", "alice", files).Return(nil, dataprocessing.ErrNoValidRecords)
			},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `"NO_VALID_DATA"`,
		},
		{
			name:           "body over the upload limit",
			body:           `{"files":[{"name":"d1.csv","content":"` + strings.Repeat("x", 256) + `"}]}`,
			limit:          64,
			setupMock:      func(m *MockFlowService) {},
			expectedStatus: http.StatusRequestEntityTooLarge,
			expectedBody:   `"PAYLOAD_TOO_LARGE"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockFlowService)
			tt.setupMock(mockService)
			handler := newTestFlowHandler(t, mockService, tt.limit)

			req := httptest.NewRequest(http.MethodPost, "/upload", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()

			handler.FlowRoutes().ServeHTTP(rec, asUser(req, "alice"))

			assert.Equal(t, tt.expectedStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.expectedBody)
			mockService.AssertExpectations(t)
		})
	}
}

func TestFlowHandler_UploadFlowsMultipart(t *testing.T) {
	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	part, err := form.CreateFormFile("files", "d1.csv")
	require.NoError(t, err)
	_, err = part.Write([]byte("Posi\xe7\xe3o at\xe9 o dia 01/03/2024"))
	require.NoError(t, err)
	part, err = form.CreateFormFile("files", "d2.csv")
	require.NoError(t, err)
	_, err = part.Write([]byte("already utf-8 até"))
	require.NoError(t, err)
	require.NoError(t, form.Close())

	mockService := new(MockFlowService)
	mockService.On("UploadFlows", "alice", mock.MatchedBy(func(files []domain.UploadedFile) bool {
		return len(files) == 2 &&
			files[0].Name == "d1.csv" && files[0].Content == "Posição até o dia 01/03/2024" &&
			files[1].Name == "d2.csv" && files[1].Content == "already utf-8 até"
	})).Return(&domain.UploadSummary{Success: true, TotalRecords: 1}, nil)
	handler := newTestFlowHandler(t, mockService, testUploadLimit)

	req := httptest.NewRequest(http.MethodPost, "/upload", &body)
	req.Header.Set("Content-Type", form.FormDataContentType())
	rec := httptest.NewRecorder()

	handler.FlowRoutes().ServeHTTP(rec, asUser(req, "alice"))

	assert.Equal(t, http.StatusOK, rec.Code)
	mockService.AssertExpectations(t)
}

func TestFlowHandler_UploadPrices(t *testing.T) {
	t.Run("json body", func(t *testing.T) {
		mockService := new(MockFlowService)
		mockService.On("UploadPrices", "alice", "quotes").
			Return(&domain.UploadSummary{Success: true, TotalRecords: 3}, nil)
		handler := newTestFlowHandler(t, mockService, testUploadLimit)

		req := httptest.NewRequest(http.MethodPost, "/upload", strings.NewReader(`{"content":"quotes"}`))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()

		handler.PriceRoutes().ServeHTTP(rec, asUser(req, "alice"))

		assert.Equal(t, http.StatusOK, rec.Code)
		var summary domain.UploadSummary
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
		assert.True(t, summary.Success)
		assert.Equal(t, 3, summary.TotalRecords)
		mockService.AssertExpectations(t)
	})

	t.Run("multipart file", func(t *testing.T) {
		var body bytes.Buffer
		form := multipart.NewWriter(&body)
		part, err := form.CreateFormFile("file", "winfut.csv")
		require.NoError(t, err)
		_, err = part.Write([]byte("quotes"))
		require.NoError(t, err)
		require.NoError(t, form.Close())

		mockService := new(MockFlowService)
		mockService.On("UploadPrices", "alice", "quotes").
			Return(&domain.UploadSummary{Success: true, TotalRecords: 1}, nil)
		handler := newTestFlowHandler(t, mockService, testUploadLimit)

		req := httptest.NewRequest(http.MethodPost, "/upload", &body)
		req.Header.Set("Content-Type", form.FormDataContentType())
		rec := httptest.NewRecorder()

		handler.PriceRoutes().ServeHTTP(rec, asUser(req, "alice"))

		assert.Equal(t, http.StatusOK, rec.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("multipart without file part", func(t *testing.T) {
		var body bytes.Buffer
		form := multipart.NewWriter(&body)
		require.NoError(t, form.WriteField("note", "nothing attached"))
		require.NoError(t, form.Close())

		mockService := new(MockFlowService)
		handler := newTestFlowHandler(t, mockService, testUploadLimit)

		req := httptest.NewRequest(http.MethodPost, "/upload", &body)
		req.Header.Set("Content-Type", form.FormDataContentType())
		rec := httptest.NewRecorder()

		handler.PriceRoutes().ServeHTTP(rec, asUser(req, "alice"))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), `"VALIDATION_FAILED"`)
		mockService.AssertNotCalled(t, "UploadPrices", mock.Anything, mock.Anything)
	})
}

func TestFlowHandler_ListFlows(t *testing.T) {
	records := testutil.FlowSeries("Estrangeiro", testutil.Day(2024, 3, 1), 200, -150)

	tests := []struct {
		name           string
		query          string
		setupMock      func(*MockFlowService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:  "filtered listing",
			query: "?from=2024-03-01&to=2024-03-31&category=Estrangeiro",
			setupMock: func(m *MockFlowService) {
				m.On("Flows", "alice", storage.Filter{
					Category: "Estrangeiro",
					From:     testutil.Day(2024, 3, 1),
					To:       testutil.Day(2024, 3, 31),
				}).Return(records, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"count":2`,
		},
		{
			name:  "no filter",
			query: "",
			setupMock: func(m *MockFlowService) {
				m.On("Flows", "alice", storage.Filter{}).Return([]domain.DailyFlowRecord{}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"data":[]`,
		},
		{
			name:           "malformed date",
			query:          "?from=01/03/2024",
			setupMock:      func(m *MockFlowService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   "YYYY-MM-DD",
		},
		{
			name:  "inverted range",
			query: "?from=2024-03-31&to=2024-03-01",
			setupMock: func(m *MockFlowService) {
				m.On("Flows", "alice", mock.Anything).Return(nil, services.ErrInvalidDateRange)
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `"INVALID_DATE_RANGE"`,
		},
		{
			name:  "repository failure",
			query: "",
			setupMock: func(m *MockFlowService) {
				m.On("Flows", "alice", storage.Filter{}).Return(nil, errors.New("connection reset"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `"Internal Server Error"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockFlowService)
			tt.setupMock(mockService)
			handler := newTestFlowHandler(t, mockService, testUploadLimit)

			req := httptest.NewRequest(http.MethodGet, "/"+tt.query, nil)
			rec := httptest.NewRecorder()

			handler.FlowRoutes().ServeHTTP(rec, asUser(req, "alice"))

			assert.Equal(t, tt.expectedStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.expectedBody)
			mockService.AssertExpectations(t)
		})
	}
}

func TestFlowHandler_ListPrices(t *testing.T) {
	bars := testutil.PriceSeries(testutil.Day(2024, 3, 1), 128000, 129280)
	mockService := new(MockFlowService)
	mockService.On("Prices", "alice", storage.Filter{From: testutil.Day(2024, 3, 2)}).Return(bars[1:], nil)
	handler := newTestFlowHandler(t, mockService, testUploadLimit)

	req := httptest.NewRequest(http.MethodGet, "/?from=2024-03-02", nil)
	rec := httptest.NewRecorder()

	handler.PriceRoutes().ServeHTTP(rec, asUser(req, "alice"))

	assert.Equal(t, http.StatusOK, rec.Code)
	var response struct {
		Status string                 `json:"status"`
		Count  int                    `json:"count"`
		Data   []domain.DailyPriceBar `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, "success", response.Status)
	require.Equal(t, 1, response.Count)
	assert.Equal(t, int64(1280), response.Data[0].PointChange)
}

func TestFlowHandler_ClearData(t *testing.T) {
	t.Run("deletes the caller's data", func(t *testing.T) {
		mockService := new(MockFlowService)
		mockService.On("ClearData", "alice").Return(nil)
		handler := newTestFlowHandler(t, mockService, testUploadLimit)

		rec := httptest.NewRecorder()
		handler.ClearData(rec, asUser(httptest.NewRequest(http.MethodDelete, "/api/data", nil), "alice"))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"status":"success"`)
		mockService.AssertExpectations(t)
	})

	t.Run("missing user", func(t *testing.T) {
		mockService := new(MockFlowService)
		mockService.On("ClearData", "").Return(storage.ErrMissingUser)
		handler := newTestFlowHandler(t, mockService, testUploadLimit)

		rec := httptest.NewRecorder()
		handler.ClearData(rec, httptest.NewRequest(http.MethodDelete, "/api/data", nil))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
