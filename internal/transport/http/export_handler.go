package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	apierrors "flowpulse/internal/errors"
	"flowpulse/internal/exporter"
	customMiddleware "flowpulse/internal/middleware"
	"flowpulse/internal/storage"
)

const (
	contentTypeCSV  = "text/csv; charset=utf-8"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// ExportHandler streams the caller's data and reports as downloadable files
type ExportHandler struct {
	flows          FlowServiceInterface
	analytics      AnalyticsServiceInterface
	csv            *exporter.CSVWriter
	queryValidator *customMiddleware.QueryParamValidator
	logger         *slog.Logger
	errorHandler   *apierrors.ErrorHandler
}

// NewExportHandler creates a new export handler
func NewExportHandler(flows FlowServiceInterface, analytics AnalyticsServiceInterface, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *ExportHandler {
	return &ExportHandler{
		flows:          flows,
		analytics:      analytics,
		csv:            exporter.NewCSVWriter(),
		queryValidator: customMiddleware.NewQueryParamValidator(errorHandler),
		logger:         logger.With(slog.String("component", "export_handler")),
		errorHandler:   errorHandler,
	}
}

// Routes returns the export routes
func (h *ExportHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/dashboard.xlsx", h.ExportDashboard)
	r.Get("/flows.csv", h.ExportFlows)
	r.Get("/prices.csv", h.ExportPrices)
	return r
}

// ExportDashboard handles GET /api/export/dashboard.xlsx
func (h *ExportHandler) ExportDashboard(w http.ResponseWriter, r *http.Request) {
	userID := requestUser(r)

	report, err := h.analytics.Dashboard(r.Context(), userID)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	flows, err := h.flows.Flows(r.Context(), userID, storage.Filter{})
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	prices, err := h.flows.Prices(r.Context(), userID, storage.Filter{})
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	workbook, err := exporter.DashboardWorkbook(report, flows, prices)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	defer workbook.Close()

	setAttachment(w, contentTypeXLSX, "dashboard", "xlsx")
	if _, err := workbook.WriteTo(w); err != nil {
		h.logWriteFailure(r, "dashboard.xlsx", err)
	}
}

// ExportFlows handles GET /api/export/flows.csv?from=&to=&category=
func (h *ExportHandler) ExportFlows(w http.ResponseWriter, r *http.Request) {
	filter, ok := seriesFilter(w, r, h.queryValidator)
	if !ok {
		return
	}

	records, err := h.flows.Flows(r.Context(), requestUser(r), filter)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	setAttachment(w, contentTypeCSV, "flows", "csv")
	if err := h.csv.WriteCSV(w, exporter.FlowsCSV(records)); err != nil {
		h.logWriteFailure(r, "flows.csv", err)
	}
}

// ExportPrices handles GET /api/export/prices.csv?from=&to=
func (h *ExportHandler) ExportPrices(w http.ResponseWriter, r *http.Request) {
	filter, ok := seriesFilter(w, r, h.queryValidator)
	if !ok {
		return
	}

	bars, err := h.flows.Prices(r.Context(), requestUser(r), filter)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	setAttachment(w, contentTypeCSV, "prices", "csv")
	if err := h.csv.WriteCSV(w, exporter.PricesCSV(bars)); err != nil {
		h.logWriteFailure(r, "prices.csv", err)
	}
}

// the status line is already sent once streaming starts
func (h *ExportHandler) logWriteFailure(r *http.Request, file string, err error) {
	h.logger.ErrorContext(r.Context(), "export write failed",
		slog.String("file", file),
		slog.String("error", err.Error()),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)
}

func setAttachment(w http.ResponseWriter, contentType, name, ext string) {
	filename := fmt.Sprintf("flowpulse-%s-%s.%s", name, time.Now().UTC().Format("20060102"), ext)
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
}
