package config

import "time"

// Application constants
const (
	AppName = "FlowPulse"

	// EnvPrefix namespaces every environment variable, e.g. FLOWPULSE_SERVER_PORT
	EnvPrefix = "FLOWPULSE"
	// ConfigFileEnv names the optional YAML configuration file
	ConfigFileEnv = "FLOWPULSE_CONFIG"

	DefaultUserHeader     = "X-User-ID"
	DefaultReportCacheTTL = 10 * time.Minute
)
