package storage

import (
	"context"
	"errors"
	"time"

	"flowpulse/pkg/contracts/domain"
)

// Storage errors
var (
	ErrNotFound      = errors.New("record not found")
	ErrMissingUser   = errors.New("user id is required")
	ErrUnknownDriver = errors.New("unknown storage driver")
)

// Filter narrows a flow or price query. Zero values mean no restriction.
type Filter struct {
	Category string
	From     time.Time
	To       time.Time
}

// Matches reports whether a record on date with category passes the filter
func (f Filter) Matches(date time.Time, category string) bool {
	if f.Category != "" && category != f.Category {
		return false
	}
	if !f.From.IsZero() && date.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && date.After(f.To) {
		return false
	}
	return true
}

// Repository is the persistence contract used by the service layer
type Repository interface {
	// SaveFlows upserts records and returns how many were written
	SaveFlows(ctx context.Context, userID string, records []domain.DailyFlowRecord) (int, error)
	// SavePrices upserts bars and returns how many were written
	SavePrices(ctx context.Context, userID string, bars []domain.DailyPriceBar) (int, error)
	Flows(ctx context.Context, userID string, filter Filter) ([]domain.DailyFlowRecord, error)
	Prices(ctx context.Context, userID string, filter Filter) ([]domain.DailyPriceBar, error)
	// ClearData removes every flow record and price bar of the user
	ClearData(ctx context.Context, userID string) error
	// Atomically runs fn with the user's writes serialized against other
	// Atomically calls for the same user. Reads and writes through tx see
	// each other; the Postgres driver rolls them back when fn fails.
	Atomically(ctx context.Context, userID string, fn func(tx Repository) error) error

	SaveAnalysis(ctx context.Context, analysis *domain.SavedAnalysis) error
	// ListAnalyses returns the user's saved analyses, newest first
	ListAnalyses(ctx context.Context, userID string) ([]domain.SavedAnalysis, error)
	GetAnalysis(ctx context.Context, userID, id string) (*domain.SavedAnalysis, error)
	DeleteAnalysis(ctx context.Context, userID, id string) error

	Ping(ctx context.Context) error
	Close() error
}
