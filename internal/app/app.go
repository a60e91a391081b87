package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"flowpulse/internal/cache"
	"flowpulse/internal/config"
	"flowpulse/internal/dataprocessing"
	apierrors "flowpulse/internal/errors"
	"flowpulse/internal/infrastructure"
	customMiddleware "flowpulse/internal/middleware"
	"flowpulse/internal/services"
	"flowpulse/internal/storage"
	handlers "flowpulse/internal/transport/http"
	ws "flowpulse/internal/websocket"
	"flowpulse/pkg/contracts"
)

// AppName is logged at startup
const AppName = "FlowPulse"

// compressionLevel is the gzip level for JSON and CSV responses
const compressionLevel = 5

// Application represents the main application container
type Application struct {
	Config        *config.Config
	Router        *chi.Mux
	Server        *http.Server
	Logger        *slog.Logger
	OTelProviders *infrastructure.OTelProviders
	Metrics       *infrastructure.BusinessMetrics
	Repository    storage.Repository
	WebSocketHub  *ws.Hub
	ErrorHandler  *apierrors.ErrorHandler
	Services      *ServiceContainer

	// reportCache is nil when caching is disabled
	reportCache *cache.RedisCache
}

// ServiceContainer holds all application services
type ServiceContainer struct {
	Flow      *services.FlowService
	Analytics *services.AnalyticsService
	Analysis  *services.AnalysisService
	Health    *services.HealthService
}

// NewApplication loads the configuration and logger, then wires the application
func NewApplication() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	return New(context.Background(), cfg, logger)
}

// New wires every component from cfg. Storage and cache connections are
// opened with ctx.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Application, error) {
	logger.InfoContext(ctx, "Application starting",
		slog.String("name", AppName),
		slog.String("version", contracts.Version),
		slog.String("storage_driver", cfg.Storage.Driver),
		slog.Bool("cache_enabled", cfg.Cache.Enabled))

	otelProviders, err := infrastructure.InitializeOTel(
		infrastructure.OTelConfigFromMonitoring(cfg.Monitoring, contracts.Version), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	metrics, err := infrastructure.CreateBusinessMetrics(otelProviders.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create business metrics: %w", err)
	}

	app := &Application{
		Config:        cfg,
		Logger:        logger,
		OTelProviders: otelProviders,
		Metrics:       metrics,
		ErrorHandler:  apierrors.NewErrorHandler(logger, false),
	}

	if err := app.initializeServices(ctx); err != nil {
		app.release(ctx)
		return nil, err
	}

	app.setupRouter()
	app.createServer()
	return app, nil
}

func (a *Application) initializeServices(ctx context.Context) error {
	repo, err := storage.Open(ctx, a.Config.Storage.Driver, storage.PostgresConfig{
		DSN:             a.Config.Storage.DSN,
		MaxOpenConns:    a.Config.Storage.MaxOpenConns,
		MaxIdleConns:    a.Config.Storage.MaxIdleConns,
		ConnMaxLifetime: a.Config.Storage.ConnMaxLifetime,
		SlowQuery:       a.Config.Storage.SlowQuery,
	}, a.Logger)
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}
	a.Repository = repo

	// Interfaces stay nil when the cache is off so the services skip it
	var (
		reportCache cache.ReportCache
		cachePinger services.Pinger
	)
	if a.Config.Cache.Enabled {
		redisCache, err := cache.NewRedisCache(ctx, cache.Options{
			Addr:     a.Config.Cache.Addr,
			Password: a.Config.Cache.Password,
			DB:       a.Config.Cache.DB,
			TTL:      a.Config.Cache.TTL,
		}, a.Logger)
		if err != nil {
			return fmt.Errorf("failed to connect report cache: %w", err)
		}
		a.reportCache = redisCache
		reportCache = redisCache
		cachePinger = redisCache
	}

	hub := ws.NewHub(a.Logger, a.Metrics)
	hub.Start()
	a.WebSocketHub = hub

	processor := dataprocessing.NewProcessor(dataprocessing.ProcessingOptions{
		MaxFiles:       a.Config.Ingestion.MaxFiles,
		MaxRowsPerFile: a.Config.Ingestion.MaxRowsPerFile,
		DateScanLines:  a.Config.Ingestion.DateScanLines,
	}, a.Logger)

	a.Services = &ServiceContainer{
		Flow: services.NewFlowService(processor, repo, reportCache, hub, a.Metrics, a.Logger),
		Analytics: services.NewAnalyticsService(repo, reportCache, a.Metrics, services.AnalyticsOptions{
			DivergenceWindow: a.Config.Analytics.DivergenceWindow,
			DashboardTimeout: a.Config.Analytics.DashboardTimeout,
		}, a.Logger),
		Analysis: services.NewAnalysisService(repo, hub, a.Logger),
		Health:   services.NewHealthService(repo, cachePinger, hub, a.Logger),
	}
	return nil
}

// setupRouter configures the HTTP router with all routes
func (a *Application) setupRouter() {
	r := chi.NewRouter()

	// The websocket route only gets middleware that leaves the
	// ResponseWriter hijackable
	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)

	// CORS sits outside the groups so preflights reach it before routing
	if a.Config.Security.EnableCORS {
		r.Use(customMiddleware.CORS(a.getCORSConfig()))
	}

	r.With(customMiddleware.WebSocketTraceMiddleware(a.Logger)).
		Handle("/ws", ws.NewHandler(a.WebSocketHub, ws.Options{
			AllowedOrigins:  a.Config.Security.AllowedOrigins,
			ReadBufferSize:  a.Config.WebSocket.ReadBufferSize,
			WriteBufferSize: a.Config.WebSocket.WriteBufferSize,
			PingPeriod:      a.Config.WebSocket.PingPeriod,
			PongWait:        a.Config.WebSocket.PongWait,
		}, a.Logger))

	// Prometheus scrapes bypass logging and rate limiting
	r.Handle("/metrics", handlers.NewMetricsHandler(a.OTelProviders.PrometheusHTTP, a.ErrorHandler))

	r.Group(func(r chi.Router) {
		// RequestID → RealIP → OTel → Logger → Recoverer
		r.Use(customMiddleware.NewOTelMiddleware(a.OTelProviders, a.Metrics).Handler)
		r.Use(customMiddleware.StructuredLogger(a.Logger))
		r.Use(customMiddleware.Recoverer(a.Logger))
		r.Use(customMiddleware.SecurityHeaders)

		healthHandler := handlers.NewHealthHandler(a.Services.Health)
		healthHandler.RegisterProbes(r)

		a.setupAPIRoutes(r, healthHandler)
	})

	r.NotFound(a.ErrorHandler.NotFound)
	r.MethodNotAllowed(a.ErrorHandler.MethodNotAllowed)

	a.Router = r
}

// setupAPIRoutes configures API endpoints
func (a *Application) setupAPIRoutes(r chi.Router, healthHandler *handlers.HealthHandler) {
	// Keyed by user where known, else by client IP
	rateLimit := func(next http.Handler) http.Handler { return next }
	if a.Config.Security.RateLimit.Enabled {
		rateLimit = customMiddleware.NewRateLimiter(
			a.Config.Security.RateLimit.RPS,
			a.Config.Security.RateLimit.Burst,
			a.Logger,
		).Handler
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Use(apierrors.NewErrorMiddleware(a.ErrorHandler, a.Logger).Handler)
		r.Use(customMiddleware.Compress(compressionLevel))

		// Anonymous endpoints
		r.Group(func(r chi.Router) {
			r.Use(rateLimit)
			r.Use(middleware.Timeout(a.Config.Server.ReadTimeout))
			r.Get("/version", healthHandler.Version)
			r.Get("/health", healthHandler.DetailedHealth)
			r.With(customMiddleware.RequireContentType(a.ErrorHandler, "application/json")).
				Post("/logs", handlers.NewClientLogHandler(a.Logger, a.ErrorHandler).Handle)
		})

		r.Group(func(r chi.Router) {
			r.Use(customMiddleware.UserID(a.Config.Security.UserHeader, a.ErrorHandler, a.Logger))
			r.Use(rateLimit)
			r.Use(middleware.Timeout(a.Config.Server.WriteTimeout))

			flowHandler := handlers.NewFlowHandler(a.Services.Flow, a.Config.Ingestion.MaxUploadBytes, a.Logger, a.ErrorHandler)
			r.Mount("/flows", flowHandler.FlowRoutes())
			r.Mount("/prices", flowHandler.PriceRoutes())
			r.Delete("/data", flowHandler.ClearData)

			analyticsHandler := handlers.NewAnalyticsHandler(a.Services.Analytics, a.Logger, a.ErrorHandler)
			r.Mount("/analytics", analyticsHandler.Routes())

			analysisHandler := handlers.NewAnalysisHandler(a.Services.Analysis, a.Logger, a.ErrorHandler)
			r.Mount("/analyses", analysisHandler.Routes())

			exportHandler := handlers.NewExportHandler(a.Services.Flow, a.Services.Analytics, a.Logger, a.ErrorHandler)
			r.With(customMiddleware.TraceMiddleware("export")).Mount("/export", exportHandler.Routes())
		})
	})
}

func (a *Application) getCORSConfig() customMiddleware.CORSConfig {
	return customMiddleware.CORSConfig{
		AllowedOrigins: a.Config.Security.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{
			"Accept",
			"Content-Type",
			customMiddleware.RequestIDHeader,
			a.Config.Security.UserHeader,
		},
		ExposedHeaders: []string{
			customMiddleware.RequestIDHeader,
			"Content-Disposition",
		},
		MaxAge: 300,
		Logger: a.Logger,
	}
}

// createServer creates the HTTP server
func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:           a.Config.Server.Addr(),
		Handler:        a.Router,
		ReadTimeout:    a.Config.Server.ReadTimeout,
		WriteTimeout:   a.Config.Server.WriteTimeout,
		IdleTimeout:    a.Config.Server.IdleTimeout,
		MaxHeaderBytes: a.Config.Server.MaxHeaderBytes,
	}
}

// Start serves HTTP in the background. A listen failure is logged and cancels ctx.
func (a *Application) Start(ctx context.Context, cancel context.CancelFunc) error {
	a.Logger.InfoContext(ctx, "Starting application",
		slog.String("name", AppName),
		slog.String("version", contracts.Version),
		slog.String("address", a.Server.Addr),
		slog.String("level", a.Config.Logging.Level))

	go func() {
		if err := a.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Logger.ErrorContext(ctx, "Server error", slog.String("error", err.Error()))
			// Signal shutdown through context instead of os.Exit
			cancel()
		}
	}()

	return nil
}

// Stop gracefully stops the application
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down application")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	var shutdownErr error
	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		shutdownErr = fmt.Errorf("server shutdown error: %w", err)
	}

	a.release(shutdownCtx)

	a.Logger.InfoContext(ctx, "Application shutdown complete")
	return shutdownErr
}

// release stops background work and closes connections. It tolerates a
// partially initialized application.
func (a *Application) release(ctx context.Context) {
	if a.WebSocketHub != nil {
		a.WebSocketHub.Stop()
	}

	if a.reportCache != nil {
		if err := a.reportCache.Close(); err != nil {
			a.Logger.ErrorContext(ctx, "Error closing report cache", slog.String("error", err.Error()))
		}
	}

	if a.Repository != nil {
		if err := a.Repository.Close(); err != nil {
			a.Logger.ErrorContext(ctx, "Error closing storage", slog.String("error", err.Error()))
		}
	}

	if a.OTelProviders != nil {
		if err := a.OTelProviders.Shutdown(ctx); err != nil {
			a.Logger.ErrorContext(ctx, "Error shutting down OpenTelemetry", slog.String("error", err.Error()))
		}
	}
}

// Run runs the application until interrupted or the server fails
func (a *Application) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	if err := a.Start(ctx, cancel); err != nil {
		return err
	}

	select {
	case sig := <-sigChan:
		a.Logger.InfoContext(ctx, "Received interrupt signal", slog.String("signal", sig.String()))
	case <-ctx.Done():
		a.Logger.WarnContext(ctx, "Server stopped unexpectedly")
	}

	// ctx may already be cancelled
	stopCtx, stopCancel := context.WithTimeout(context.Background(), a.Config.Server.ShutdownTimeout+time.Second)
	defer stopCancel()
	return a.Stop(stopCtx)
}
