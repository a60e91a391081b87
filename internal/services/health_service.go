package services

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"flowpulse/internal/infrastructure"
	"flowpulse/pkg/contracts"
)

const readinessTimeout = 2 * time.Second

// Health states reported by the probes
const (
	StatusOK       = "ok"
	StatusReady    = "ready"
	StatusNotReady = "not_ready"
	StatusAlive    = "alive"
	StatusDisabled = "disabled"
)

// Pinger is a dependency whose connectivity can be checked
type Pinger interface {
	Ping(ctx context.Context) error
}

// ClientCounter reports realtime connection statistics
type ClientCounter interface {
	ClientCount() int
	Stats() map[string]interface{}
}

// HealthService provides health check functionality
type HealthService struct {
	version   string
	storage   Pinger
	cache     Pinger
	hub       ClientCounter
	startTime time.Time
	logger    *slog.Logger
}

// HealthStatus represents the health status response
type HealthStatus struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Runtime   map[string]interface{} `json:"runtime,omitempty"`
	Services  map[string]interface{} `json:"services,omitempty"`
}

// ServiceHealth represents individual service health
type ServiceHealth struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Uptime  string `json:"uptime,omitempty"`
}

// SystemStats represents system statistics
type SystemStats struct {
	UptimeSeconds    float64 `json:"uptime_seconds"`
	WebSocketClients int     `json:"websocket_clients"`
	Goroutines       int     `json:"goroutines"`
	GoVersion        string  `json:"go_version"`
	OS               string  `json:"os"`
	Arch             string  `json:"arch"`
}

// NewHealthService creates a health service. Nil dependencies are reported as disabled.
func NewHealthService(storage, cache Pinger, hub ClientCounter, logger *slog.Logger) *HealthService {
	logger = infrastructure.WithComponent(logger, "health_service")
	logger.Debug("health service initialized",
		slog.String("version", contracts.Version),
		slog.Bool("cache_enabled", cache != nil))

	return &HealthService{
		version:   contracts.Version,
		storage:   storage,
		cache:     cache,
		hub:       hub,
		startTime: time.Now(),
		logger:    logger,
	}
}

// HealthCheck returns overall health status
func (hs *HealthService) HealthCheck(ctx context.Context) HealthStatus {
	return HealthStatus{
		Status:    StatusOK,
		Timestamp: time.Now(),
		Version:   hs.version,
	}
}

// ReadinessCheck pings storage and cache
func (hs *HealthService) ReadinessCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    StatusReady,
		Timestamp: time.Now(),
		Version:   hs.version,
		Services:  make(map[string]interface{}),
	}

	status.Services["storage"] = hs.checkDependency(ctx, "storage", hs.storage)
	status.Services["cache"] = hs.checkDependency(ctx, "cache", hs.cache)
	status.Services["websocket"] = hs.checkWebSocketHealth()

	for _, service := range status.Services {
		if sh, ok := service.(ServiceHealth); ok && sh.Status == StatusNotReady {
			status.Status = StatusNotReady
			break
		}
	}

	if status.Status != StatusReady {
		hs.logger.WarnContext(ctx, "readiness check failed", slog.Any("services", status.Services))
	}
	return status
}

// LivenessCheck returns liveness status
func (hs *HealthService) LivenessCheck(ctx context.Context) HealthStatus {
	return HealthStatus{
		Status:    StatusAlive,
		Timestamp: time.Now(),
		Version:   hs.version,
		Runtime: map[string]interface{}{
			"uptime":     time.Since(hs.startTime).Seconds(),
			"go_version": runtime.Version(),
			"goroutines": runtime.NumGoroutine(),
		},
	}
}

// Version returns version information
func (hs *HealthService) Version() map[string]interface{} {
	info := contracts.GetBuildInfo()
	return map[string]interface{}{
		"version":      info.Version,
		"api_version":  info.APIVersion,
		"data_format":  info.DataFormat,
		"build_time":   info.BuildTime,
		"git_commit":   info.GitCommit,
		"go_version":   info.GoVersion,
		"os":           info.OS,
		"arch":         info.Architecture,
		"uptime":       time.Since(hs.startTime).Seconds(),
		"start_time":   hs.startTime.Format(time.RFC3339),
		"current_time": time.Now().Format(time.RFC3339),
	}
}

// SystemStats returns system statistics
func (hs *HealthService) SystemStats(ctx context.Context) SystemStats {
	clients := 0
	if hs.hub != nil {
		clients = hs.hub.ClientCount()
	}
	return SystemStats{
		UptimeSeconds:    time.Since(hs.startTime).Seconds(),
		WebSocketClients: clients,
		Goroutines:       runtime.NumGoroutine(),
		GoVersion:        runtime.Version(),
		OS:               runtime.GOOS,
		Arch:             runtime.GOARCH,
	}
}

func (hs *HealthService) checkDependency(ctx context.Context, name string, dep Pinger) ServiceHealth {
	if dep == nil {
		return ServiceHealth{
			Status:  StatusDisabled,
			Message: name + " is not configured",
		}
	}

	pingCtx, cancel := context.WithTimeout(ctx, readinessTimeout)
	defer cancel()
	if err := dep.Ping(pingCtx); err != nil {
		return ServiceHealth{
			Status:  StatusNotReady,
			Message: fmt.Sprintf("%s ping failed: %v", name, err),
		}
	}

	return ServiceHealth{
		Status:  StatusReady,
		Message: name + " is healthy",
	}
}

// checkWebSocketHealth checks WebSocket service health
func (hs *HealthService) checkWebSocketHealth() ServiceHealth {
	if hs.hub == nil {
		return ServiceHealth{
			Status:  StatusDisabled,
			Message: "websocket hub is not running",
		}
	}
	return ServiceHealth{
		Status:  StatusReady,
		Message: fmt.Sprintf("%d clients connected", hs.hub.ClientCount()),
		Uptime:  time.Since(hs.startTime).String(),
	}
}

// GetDetailedHealth returns comprehensive health information
func (hs *HealthService) GetDetailedHealth(ctx context.Context) map[string]interface{} {
	detailed := map[string]interface{}{
		"health":    hs.HealthCheck(ctx),
		"readiness": hs.ReadinessCheck(ctx),
		"liveness":  hs.LivenessCheck(ctx),
		"stats":     hs.SystemStats(ctx),
	}
	if hs.hub != nil {
		detailed["websocket"] = hs.hub.Stats()
	}
	return detailed
}
