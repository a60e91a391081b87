package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"flowpulse/internal/services"
)

// HealthHandler serves the orchestrator probes and the diagnostic endpoints
type HealthHandler struct {
	service HealthServiceInterface
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(service HealthServiceInterface) *HealthHandler {
	return &HealthHandler{service: service}
}

// RegisterProbes mounts /healthz, /readyz and /livez on r. Probes answer
// GET and HEAD and are never cached by intermediaries.
func (h *HealthHandler) RegisterProbes(r chi.Router) {
	probes := map[string]http.HandlerFunc{
		"/healthz": h.HealthCheck,
		"/readyz":  h.ReadinessCheck,
		"/livez":   h.LivenessCheck,
	}
	for path, fn := range probes {
		r.With(noStore).Get(path, fn)
		r.With(noStore).Head(path, fn)
	}
}

// HealthCheck handles GET /healthz
func (h *HealthHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, h.service.HealthCheck(r.Context()))
}

// ReadinessCheck handles GET /readyz. Any dependency that is not ready
// turns the answer into a 503 so load balancers stop routing here.
func (h *HealthHandler) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	status := h.service.ReadinessCheck(r.Context())
	if status.Status != services.StatusReady {
		render.Status(r, http.StatusServiceUnavailable)
	}
	render.JSON(w, r, status)
}

// LivenessCheck handles GET /livez
func (h *HealthHandler) LivenessCheck(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, h.service.LivenessCheck(r.Context()))
}

// Version handles GET /api/version
func (h *HealthHandler) Version(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, h.service.Version())
}

// DetailedHealth handles GET /api/health
func (h *HealthHandler) DetailedHealth(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, h.service.GetDetailedHealth(r.Context()))
}

func noStore(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store")
		next.ServeHTTP(w, r)
	})
}
