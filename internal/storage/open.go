package storage

import (
	"context"
	"fmt"
	"log/slog"
)

// Driver names accepted by Open
const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
)

// Open builds the Repository selected by driver
func Open(ctx context.Context, driver string, pg PostgresConfig, logger *slog.Logger) (Repository, error) {
	switch driver {
	case "", DriverMemory:
		return NewMemoryRepository(), nil
	case DriverPostgres:
		return OpenPostgres(ctx, pg, logger)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
	}
}
