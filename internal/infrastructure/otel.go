package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.28.0"
	"go.opentelemetry.io/otel/trace"

	"flowpulse/internal/config"
)

const (
	ServiceName = "flowpulse"
	MeterName   = "flowpulse"
)

// OTelConfig holds OpenTelemetry configuration
type OTelConfig struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	TraceExporter  string // "stdout" or "none"
	EnableMetrics  bool
	EnableTracing  bool
	SampleRatio    float64
}

// OTelProviders holds the OpenTelemetry providers
type OTelProviders struct {
	TracerProvider *sdktrace.TracerProvider
	MeterProvider  *sdkmetric.MeterProvider
	Tracer         trace.Tracer
	Meter          metric.Meter
	PrometheusHTTP http.Handler
	Logger         *slog.Logger
}

// OTelConfigFromMonitoring maps the monitoring section of the application config
func OTelConfigFromMonitoring(m config.MonitoringConfig, version string) *OTelConfig {
	return &OTelConfig{
		ServiceName:    ServiceName,
		ServiceVersion: version,
		Environment:    m.Environment,
		TraceExporter:  m.TraceExporter,
		EnableMetrics:  m.EnableMetrics,
		EnableTracing:  m.EnableTracing,
		SampleRatio:    m.SampleRatio,
	}
}

// DefaultOTelConfig returns metrics on and tracing off
func DefaultOTelConfig() *OTelConfig {
	env := os.Getenv("ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	return &OTelConfig{
		ServiceName:    ServiceName,
		ServiceVersion: "dev",
		Environment:    env,
		TraceExporter:  "none",
		EnableMetrics:  true,
		EnableTracing:  false,
		SampleRatio:    1.0,
	}
}

// InitializeOTel initializes tracing and metrics. Tracer and Meter are always
// usable: when a signal is disabled they fall back to the global no-op providers.
func InitializeOTel(cfg *OTelConfig, logger *slog.Logger) (*OTelProviders, error) {
	if cfg == nil {
		cfg = DefaultOTelConfig()
	}
	if logger == nil {
		logger = GetLogger()
	}

	ctx := context.Background()

	logger.InfoContext(ctx, "Initializing OpenTelemetry",
		slog.String("service", cfg.ServiceName),
		slog.String("version", cfg.ServiceVersion),
		slog.String("environment", cfg.Environment),
		slog.Bool("tracing_enabled", cfg.EnableTracing),
		slog.Bool("metrics_enabled", cfg.EnableMetrics))

	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(cfg.ServiceName),
		semconv.ServiceVersion(cfg.ServiceVersion),
		semconv.DeploymentEnvironmentName(cfg.Environment),
		attribute.String("service.instance.id", generateInstanceID()),
	)

	providers := &OTelProviders{
		Logger: logger,
		Tracer: otel.Tracer(MeterName),
		Meter:  otel.Meter(MeterName),
	}

	if cfg.EnableTracing {
		if err := initializeTracing(ctx, cfg, res, providers); err != nil {
			return nil, fmt.Errorf("failed to initialize tracing: %w", err)
		}
	}

	if cfg.EnableMetrics {
		if err := initializeMetrics(ctx, cfg, res, providers); err != nil {
			return nil, fmt.Errorf("failed to initialize metrics: %w", err)
		}
	}

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return providers, nil
}

func initializeTracing(ctx context.Context, cfg *OTelConfig, res *resource.Resource, providers *OTelProviders) error {
	var exporter sdktrace.SpanExporter

	switch cfg.TraceExporter {
	case "stdout":
		exp, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
		if err != nil {
			return fmt.Errorf("failed to create trace exporter: %w", err)
		}
		exporter = exp
	case "none", "":
	default:
		return fmt.Errorf("unsupported trace exporter: %s", cfg.TraceExporter)
	}

	opts := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.SampleRatio))),
	}
	if exporter != nil {
		opts = append(opts, sdktrace.WithBatcher(exporter))
	}

	tp := sdktrace.NewTracerProvider(opts...)
	providers.TracerProvider = tp
	providers.Tracer = tp.Tracer(MeterName, trace.WithInstrumentationVersion(cfg.ServiceVersion))
	otel.SetTracerProvider(tp)

	providers.Logger.InfoContext(ctx, "Tracing initialized",
		slog.String("exporter", cfg.TraceExporter),
		slog.Float64("sample_ratio", cfg.SampleRatio))
	return nil
}

// initializeMetrics wires an OTel meter provider to a dedicated Prometheus
// registry that also carries the Go runtime and process collectors.
func initializeMetrics(ctx context.Context, cfg *OTelConfig, res *resource.Resource, providers *OTelProviders) error {
	registry := promclient.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	exporter, err := prometheus.New(prometheus.WithRegisterer(registry))
	if err != nil {
		return fmt.Errorf("failed to create prometheus exporter: %w", err)
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(exporter),
	)

	providers.MeterProvider = mp
	providers.Meter = mp.Meter(MeterName, metric.WithInstrumentationVersion(cfg.ServiceVersion))
	providers.PrometheusHTTP = promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry})
	otel.SetMeterProvider(mp)

	providers.Logger.InfoContext(ctx, "Metrics initialized", slog.String("exporter", "prometheus"))
	return nil
}

// BusinessMetrics holds all application-specific metrics
type BusinessMetrics struct {
	// HTTP metrics
	HTTPRequestsTotal   metric.Int64Counter
	HTTPRequestDuration metric.Float64Histogram
	HTTPActiveRequests  metric.Int64UpDownCounter

	// Ingestion metrics
	UploadsTotal     metric.Int64Counter
	UploadDuration   metric.Float64Histogram
	RecordsIngested  metric.Int64Counter
	IngestionWarning metric.Int64Counter

	// Analytics metrics
	AnalyticsRuns     metric.Int64Counter
	AnalyticsDuration metric.Float64Histogram
	CacheHits         metric.Int64Counter
	CacheMisses       metric.Int64Counter

	// Realtime metrics
	WebSocketConnections metric.Int64UpDownCounter
	WebSocketBroadcasts  metric.Int64Counter

	SystemErrors metric.Int64Counter
}

// CreateBusinessMetrics creates application-specific metrics
func CreateBusinessMetrics(meter metric.Meter) (*BusinessMetrics, error) {
	var (
		m    BusinessMetrics
		errs []error
	)

	counter := func(name, desc string) metric.Int64Counter {
		c, err := meter.Int64Counter(name, metric.WithDescription(desc))
		errs = append(errs, err)
		return c
	}
	upDown := func(name, desc string) metric.Int64UpDownCounter {
		c, err := meter.Int64UpDownCounter(name, metric.WithDescription(desc))
		errs = append(errs, err)
		return c
	}
	seconds := func(name, desc string) metric.Float64Histogram {
		h, err := meter.Float64Histogram(name, metric.WithDescription(desc), metric.WithUnit("s"))
		errs = append(errs, err)
		return h
	}

	m.HTTPRequestsTotal = counter("http_requests_total", "Total number of HTTP requests")
	m.HTTPRequestDuration = seconds("http_request_duration_seconds", "HTTP request duration in seconds")
	m.HTTPActiveRequests = upDown("http_active_requests", "Number of active HTTP requests")

	m.UploadsTotal = counter("ingestion_uploads_total", "Total number of flow and price uploads")
	m.UploadDuration = seconds("ingestion_upload_duration_seconds", "Upload processing duration in seconds")
	m.RecordsIngested = counter("ingestion_records_total", "Total number of records persisted from uploads")
	m.IngestionWarning = counter("ingestion_warnings_total", "Total number of skipped files and rows")

	m.AnalyticsRuns = counter("analytics_runs_total", "Total number of analytics report computations")
	m.AnalyticsDuration = seconds("analytics_duration_seconds", "Analytics report computation duration in seconds")
	m.CacheHits = counter("report_cache_hits_total", "Total number of report cache hits")
	m.CacheMisses = counter("report_cache_misses_total", "Total number of report cache misses")

	m.WebSocketConnections = upDown("websocket_connections", "Number of connected websocket clients")
	m.WebSocketBroadcasts = counter("websocket_broadcasts_total", "Total number of websocket broadcasts")

	m.SystemErrors = counter("system_errors_total", "Total number of system errors")

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return &m, nil
}

// Shutdown gracefully shuts down OpenTelemetry providers
func (p *OTelProviders) Shutdown(ctx context.Context) error {
	var errs []error

	if p.TracerProvider != nil {
		if err := p.TracerProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tracer provider shutdown: %w", err))
		}
	}

	if p.MeterProvider != nil {
		if err := p.MeterProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("meter provider shutdown: %w", err))
		}
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("opentelemetry shutdown: %w", err)
	}

	p.Logger.InfoContext(ctx, "OpenTelemetry shutdown complete")
	return nil
}

// generateInstanceID generates a unique instance identifier
func generateInstanceID() string {
	hostname, _ := os.Hostname()
	return fmt.Sprintf("%s-%d", hostname, time.Now().Unix())
}

// TraceIDFromContext extracts trace ID from context for logging correlation
func TraceIDFromContext(ctx context.Context) string {
	spanCtx := trace.SpanContextFromContext(ctx)
	if spanCtx.IsValid() {
		return spanCtx.TraceID().String()
	}
	return ""
}

// RecordError records an error on the current span
func RecordError(ctx context.Context, err error, options ...trace.EventOption) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}

	span.RecordError(err, options...)
	span.SetStatus(codes.Error, err.Error())
}

func statusAttr(err error) attribute.KeyValue {
	if err != nil {
		return attribute.String("status", "failure")
	}
	return attribute.String("status", "success")
}

// RecordUploadMetrics records one processed upload of kind "flows" or "prices"
func RecordUploadMetrics(ctx context.Context, metrics *BusinessMetrics, kind string, records, warnings int, duration time.Duration, err error) {
	if metrics == nil {
		return
	}

	kindAttr := attribute.String("kind", kind)
	metrics.UploadsTotal.Add(ctx, 1, metric.WithAttributes(kindAttr, statusAttr(err)))
	metrics.UploadDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(kindAttr, statusAttr(err)))

	if err != nil {
		metrics.SystemErrors.Add(ctx, 1, metric.WithAttributes(attribute.String("source", "ingestion")))
		return
	}
	metrics.RecordsIngested.Add(ctx, int64(records), metric.WithAttributes(kindAttr))
	if warnings > 0 {
		metrics.IngestionWarning.Add(ctx, int64(warnings), metric.WithAttributes(kindAttr))
	}
}

// RecordAnalyticsMetrics records one report computation
func RecordAnalyticsMetrics(ctx context.Context, metrics *BusinessMetrics, report string, duration time.Duration, err error) {
	if metrics == nil {
		return
	}

	attrs := metric.WithAttributes(attribute.String("report", report), statusAttr(err))
	metrics.AnalyticsRuns.Add(ctx, 1, attrs)
	metrics.AnalyticsDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordCacheLookup records a report cache hit or miss
func RecordCacheLookup(ctx context.Context, metrics *BusinessMetrics, report string, hit bool) {
	if metrics == nil {
		return
	}

	attrs := metric.WithAttributes(attribute.String("report", report))
	if hit {
		metrics.CacheHits.Add(ctx, 1, attrs)
	} else {
		metrics.CacheMisses.Add(ctx, 1, attrs)
	}
}
