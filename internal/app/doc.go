// Package app wires the FlowPulse server together and manages its lifecycle.
//
// New builds every component from a config.Config in dependency order:
//
//  1. OpenTelemetry providers and business metrics
//  2. the storage repository (memory or PostgreSQL)
//  3. the optional Redis report cache
//  4. the websocket hub that fans out user events
//  5. the ingestion processor and the services
//  6. the chi router with middleware and handlers
//
// Run starts the HTTP server and blocks until SIGINT or SIGTERM, then shuts
// the server down and releases the hub, cache, storage and telemetry. The
// package never calls os.Exit; errors are returned to cmd/server.
package app
