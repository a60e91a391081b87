package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	apierrors "flowpulse/internal/errors"
	customMiddleware "flowpulse/internal/middleware"
	"flowpulse/internal/services"
	api "flowpulse/pkg/contracts/api/v1"
	"flowpulse/pkg/contracts/domain"
)

// AnalysisHandler manages the saved analysis history
type AnalysisHandler struct {
	service      AnalysisServiceInterface
	validate     *validator.Validate
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewAnalysisHandler creates a new analysis handler
func NewAnalysisHandler(service AnalysisServiceInterface, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *AnalysisHandler {
	return &AnalysisHandler{
		service:      service,
		validate:     customMiddleware.NewValidator(),
		logger:       logger.With(slog.String("component", "analysis_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the analysis routes
func (h *AnalysisHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/", h.ListAnalyses)
	r.With(customMiddleware.RequireContentType(h.errorHandler, "application/json")).Post("/", h.CreateAnalysis)
	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", h.GetAnalysis)
		r.Delete("/", h.DeleteAnalysis)
	})
	return r
}

// CreateAnalysis handles POST /api/analyses
func (h *AnalysisHandler) CreateAnalysis(w http.ResponseWriter, r *http.Request) {
	var req api.CreateAnalysisRequest
	if err := customMiddleware.DecodeJSON(r, h.validate, &req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	analysis, err := h.service.Create(r.Context(), requestUser(r), services.CreateAnalysisInput{
		Name:        req.Name,
		Description: req.Description,
		StartDate:   parseOptionalDate(req.StartDate),
		EndDate:     parseOptionalDate(req.EndDate),
	})
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "analysis created",
		slog.String("analysis_id", analysis.ID),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)
	render.Status(r, http.StatusCreated)
	renderData(w, r, analysis)
}

// ListAnalyses handles GET /api/analyses
func (h *AnalysisHandler) ListAnalyses(w http.ResponseWriter, r *http.Request) {
	analyses, err := h.service.List(r.Context(), requestUser(r))
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	renderList(w, r, analyses)
}

// GetAnalysis handles GET /api/analyses/{id}
func (h *AnalysisHandler) GetAnalysis(w http.ResponseWriter, r *http.Request) {
	analysis, err := h.service.Get(r.Context(), requestUser(r), chi.URLParam(r, "id"))
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	renderData(w, r, analysis)
}

// DeleteAnalysis handles DELETE /api/analyses/{id}
func (h *AnalysisHandler) DeleteAnalysis(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), requestUser(r), chi.URLParam(r, "id")); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.NoContent(w, r)
}

// parseOptionalDate converts a validated isodate field, "" meaning unset
func parseOptionalDate(value string) *time.Time {
	if value == "" {
		return nil
	}
	t, err := time.Parse(domain.DateLayout, value)
	if err != nil {
		return nil
	}
	return &t
}
