package http

import (
	"net/http"

	apierrors "flowpulse/internal/errors"
)

// MetricsHandler exposes the Prometheus scrape endpoint
type MetricsHandler struct {
	prometheus   http.Handler
	errorHandler *apierrors.ErrorHandler
}

// NewMetricsHandler wraps the exporter handler. A nil handler means metrics
// are disabled and every scrape answers 503.
func NewMetricsHandler(prometheus http.Handler, errorHandler *apierrors.ErrorHandler) *MetricsHandler {
	return &MetricsHandler{
		prometheus:   prometheus,
		errorHandler: errorHandler,
	}
}

// ServeHTTP handles GET /metrics
func (h *MetricsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.prometheus == nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrServiceUnavailable)
		return
	}
	h.prometheus.ServeHTTP(w, r)
}
