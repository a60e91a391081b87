package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration
type Config struct {
	Server     ServerConfig     `yaml:"server" envconfig:"SERVER"`
	Security   SecurityConfig   `yaml:"security" envconfig:"SECURITY"`
	Logging    LoggingConfig    `yaml:"logging" envconfig:"LOGGING"`
	Storage    StorageConfig    `yaml:"storage" envconfig:"STORAGE"`
	Cache      CacheConfig      `yaml:"cache" envconfig:"CACHE"`
	Ingestion  IngestionConfig  `yaml:"ingestion" envconfig:"INGESTION"`
	Analytics  AnalyticsConfig  `yaml:"analytics" envconfig:"ANALYTICS"`
	Monitoring MonitoringConfig `yaml:"monitoring" envconfig:"MONITORING"`
	WebSocket  WebSocketConfig  `yaml:"websocket" envconfig:"WEBSOCKET"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Host            string        `yaml:"host" envconfig:"HOST" default:"0.0.0.0"`
	Port            int           `yaml:"port" envconfig:"PORT" default:"8080" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT" default:"30s" validate:"gt=0"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" default:"60s" validate:"gt=0"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT" default:"120s"`
	MaxHeaderBytes  int           `yaml:"max_header_bytes" envconfig:"MAX_HEADER_BYTES" default:"1048576"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" default:"30s"`
}

// Addr returns the listen address
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// SecurityConfig contains security-related configuration
type SecurityConfig struct {
	AllowedOrigins []string        `yaml:"allowed_origins" envconfig:"ALLOWED_ORIGINS" default:"http://localhost:3000,http://localhost:8080"`
	EnableCORS     bool            `yaml:"enable_cors" envconfig:"ENABLE_CORS" default:"true"`
	UserHeader     string          `yaml:"user_header" envconfig:"USER_HEADER" default:"X-User-ID" validate:"required"`
	RateLimit      RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED" default:"true"`
	RPS     float64 `yaml:"rps" envconfig:"RPS" default:"20"`
	Burst   int     `yaml:"burst" envconfig:"BURST" default:"40"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" default:"info" validate:"oneof=debug info warn warning error"`
	Format   string `yaml:"format" envconfig:"FORMAT" default:"json" validate:"oneof=json text"`
	Output   string `yaml:"output" envconfig:"OUTPUT" default:"console" validate:"oneof=console stderr file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" default:"logs/flowpulse.log"`
}

// StorageConfig selects and configures the repository driver
type StorageConfig struct {
	Driver          string        `yaml:"driver" envconfig:"DRIVER" default:"memory" validate:"oneof=memory postgres"`
	DSN             string        `yaml:"dsn" envconfig:"DSN" validate:"required_if=Driver postgres"`
	MaxOpenConns    int           `yaml:"max_open_conns" envconfig:"MAX_OPEN_CONNS" default:"25"`
	MaxIdleConns    int           `yaml:"max_idle_conns" envconfig:"MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" envconfig:"CONN_MAX_LIFETIME" default:"5m"`
	SlowQuery       time.Duration `yaml:"slow_query" envconfig:"SLOW_QUERY" default:"200ms"`
}

// CacheConfig configures the Redis report cache
type CacheConfig struct {
	Enabled  bool          `yaml:"enabled" envconfig:"ENABLED" default:"false"`
	Addr     string        `yaml:"addr" envconfig:"ADDR" default:"localhost:6379" validate:"required_if=Enabled true"`
	Password string        `yaml:"password" envconfig:"PASSWORD"`
	DB       int           `yaml:"db" envconfig:"DB" default:"0" validate:"min=0"`
	TTL      time.Duration `yaml:"ttl" envconfig:"TTL" default:"10m"`
}

// IngestionConfig bounds uploads
type IngestionConfig struct {
	MaxFiles       int   `yaml:"max_files" envconfig:"MAX_FILES" default:"100" validate:"min=0"`
	MaxRowsPerFile int   `yaml:"max_rows_per_file" envconfig:"MAX_ROWS_PER_FILE" default:"100000" validate:"min=0"`
	MaxUploadBytes int64 `yaml:"max_upload_bytes" envconfig:"MAX_UPLOAD_BYTES" default:"33554432" validate:"gt=0"`
	DateScanLines  int   `yaml:"date_scan_lines" envconfig:"DATE_SCAN_LINES" default:"5" validate:"min=1"`
}

// AnalyticsConfig tunes the analytics endpoints
type AnalyticsConfig struct {
	DivergenceWindow int           `yaml:"divergence_window" envconfig:"DIVERGENCE_WINDOW" default:"5" validate:"min=1"`
	DashboardTimeout time.Duration `yaml:"dashboard_timeout" envconfig:"DASHBOARD_TIMEOUT" default:"30s"`
}

// MonitoringConfig switches metrics and tracing
type MonitoringConfig struct {
	Environment   string  `yaml:"environment" envconfig:"ENVIRONMENT" default:"development"`
	EnableMetrics bool    `yaml:"enable_metrics" envconfig:"ENABLE_METRICS" default:"true"`
	EnableTracing bool    `yaml:"enable_tracing" envconfig:"ENABLE_TRACING" default:"false"`
	TraceExporter string  `yaml:"trace_exporter" envconfig:"TRACE_EXPORTER" default:"stdout" validate:"oneof=stdout none"`
	SampleRatio   float64 `yaml:"sample_ratio" envconfig:"SAMPLE_RATIO" default:"1.0" validate:"min=0,max=1"`
}

// WebSocketConfig contains WebSocket configuration
type WebSocketConfig struct {
	ReadBufferSize  int           `yaml:"read_buffer_size" envconfig:"READ_BUFFER_SIZE" default:"1024"`
	WriteBufferSize int           `yaml:"write_buffer_size" envconfig:"WRITE_BUFFER_SIZE" default:"1024"`
	PingPeriod      time.Duration `yaml:"ping_period" envconfig:"PING_PERIOD" default:"30s"`
	PongWait        time.Duration `yaml:"pong_wait" envconfig:"PONG_WAIT" default:"60s"`
}

// Load builds the configuration from .env, environment variables and the
// optional YAML file named by FLOWPULSE_CONFIG, then validates it.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if path := os.Getenv(ConfigFileEnv); path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

// loadFromFile overlays the keys present in a YAML file onto cfg
func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// Validate checks field constraints
func (c *Config) Validate() error {
	return validator.New().Struct(c)
}

// Default returns the configuration used when nothing is set
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    60 * time.Second,
			IdleTimeout:     120 * time.Second,
			MaxHeaderBytes:  1 << 20,
			ShutdownTimeout: 30 * time.Second,
		},
		Security: SecurityConfig{
			AllowedOrigins: []string{"http://localhost:3000", "http://localhost:8080"},
			EnableCORS:     true,
			UserHeader:     DefaultUserHeader,
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     20,
				Burst:   40,
			},
		},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "console",
			FilePath: "logs/flowpulse.log",
		},
		Storage: StorageConfig{
			Driver:          "memory",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 5 * time.Minute,
			SlowQuery:       200 * time.Millisecond,
		},
		Cache: CacheConfig{
			Addr: "localhost:6379",
			TTL:  DefaultReportCacheTTL,
		},
		Ingestion: IngestionConfig{
			MaxFiles:       100,
			MaxRowsPerFile: 100000,
			MaxUploadBytes: 32 << 20,
			DateScanLines:  5,
		},
		Analytics: AnalyticsConfig{
			DivergenceWindow: 5,
			DashboardTimeout: 30 * time.Second,
		},
		Monitoring: MonitoringConfig{
			Environment:   "development",
			EnableMetrics: true,
			TraceExporter: "stdout",
			SampleRatio:   1.0,
		},
		WebSocket: WebSocketConfig{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			PingPeriod:      30 * time.Second,
			PongWait:        60 * time.Second,
		},
	}
}
