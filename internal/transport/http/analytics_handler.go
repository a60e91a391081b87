package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	apierrors "flowpulse/internal/errors"
	customMiddleware "flowpulse/internal/middleware"
)

const (
	maxCategoryLength = 64
	maxWindow         = 250
)

// AnalyticsHandler serves the analytics reports over the caller's stored data
type AnalyticsHandler struct {
	service        AnalyticsServiceInterface
	queryValidator *customMiddleware.QueryParamValidator
	logger         *slog.Logger
	errorHandler   *apierrors.ErrorHandler
}

// NewAnalyticsHandler creates a new analytics handler
func NewAnalyticsHandler(service AnalyticsServiceInterface, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *AnalyticsHandler {
	return &AnalyticsHandler{
		service:        service,
		queryValidator: customMiddleware.NewQueryParamValidator(errorHandler),
		logger:         logger.With(slog.String("component", "analytics_handler")),
		errorHandler:   errorHandler,
	}
}

// Routes returns the analytics routes
func (h *AnalyticsHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/stats", reportList(h, "stats", h.service.Stats))
	r.Get("/enhanced", reportList(h, "enhanced", h.service.Enhanced))
	r.Get("/trends", reportList(h, "trends", h.service.Trends))
	r.Get("/patterns", reportList(h, "patterns", h.service.Patterns))
	r.Get("/alerts", reportList(h, "alerts", h.service.Alerts))
	r.Get("/divergences", h.GetDivergences)
	r.Get("/quantum", h.GetQuantum)
	r.Get("/dashboard", h.GetDashboard)
	return r
}

// reportList adapts a per-user report method into a list endpoint
func reportList[T any](h *AnalyticsHandler, report string, fetch func(context.Context, string) ([]T, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := fetch(r.Context(), requestUser(r))
		if err != nil {
			h.logger.ErrorContext(r.Context(), "analytics report failed",
				slog.String("report", report),
				slog.String("error", err.Error()),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)
			h.errorHandler.HandleError(w, r, err)
			return
		}
		renderList(w, r, items)
	}
}

// GetDivergences handles GET /api/analytics/divergences?category=&window=.
// A missing window uses the configured default.
func (h *AnalyticsHandler) GetDivergences(w http.ResponseWriter, r *http.Request) {
	category, ok := h.queryValidator.ValidateRequired(w, r, "category", maxCategoryLength)
	if !ok {
		return
	}
	window, ok := h.queryValidator.ValidateInt(w, r, "window", 1, maxWindow, 0)
	if !ok {
		return
	}

	divergences, err := h.service.Divergences(r.Context(), requestUser(r), category, window)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	renderList(w, r, divergences)
}

// GetQuantum handles GET /api/analytics/quantum
func (h *AnalyticsHandler) GetQuantum(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.Quantum(r.Context(), requestUser(r))
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	renderData(w, r, report)
}

// GetDashboard handles GET /api/analytics/dashboard
func (h *AnalyticsHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.Dashboard(r.Context(), requestUser(r))
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	renderData(w, r, report)
}
