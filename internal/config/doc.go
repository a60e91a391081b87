// Package config loads the FlowPulse configuration.
//
// # Configuration Sources
//
// Configuration is assembled in this order, later sources winning:
//
//	1. default tags on the Config structs
//	2. a .env file in the working directory, if present
//	3. environment variables with the FLOWPULSE_ prefix
//	4. the YAML file named by FLOWPULSE_CONFIG, if set
//
// Variables follow the struct nesting:
//
//	FLOWPULSE_SERVER_PORT=8080
//	FLOWPULSE_STORAGE_DRIVER=postgres
//	FLOWPULSE_STORAGE_DSN="host=localhost user=flowpulse dbname=flowpulse sslmode=disable"
//	FLOWPULSE_CACHE_ENABLED=true
//	FLOWPULSE_ANALYTICS_DIVERGENCE_WINDOW=5
//
// # Validation
//
// Load validates the result with validator struct tags: enumerated values
// (storage driver, log level and format), port range, a DSN when the
// postgres driver is selected and a Redis address when the cache is enabled.
//
// # Testing
//
// Tests use Default(), which mirrors the default tags without touching the
// environment.
package config
