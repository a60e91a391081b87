package dataprocessing

import (
	"context"

	"flowpulse/pkg/contracts/domain"
)

// Ingester defines the ingestion operations used by the service layer
type Ingester interface {
	// ReconstructDailyFlow parses flow reports and derives daily records
	ReconstructDailyFlow(ctx context.Context, files []domain.UploadedFile) (*FlowResult, error)

	// IngestPriceQuotes parses intraday quotes into daily bars with derived changes
	IngestPriceQuotes(ctx context.Context, content string) (*PriceResult, error)
}

// ProcessingOptions configures ingestion limits
type ProcessingOptions struct {
	// MaxFiles caps the number of files in one upload, 0 means no limit
	MaxFiles int

	// MaxRowsPerFile caps the lines read from a single file, 0 means no limit
	MaxRowsPerFile int

	// DateScanLines is how many leading lines are searched for the report date
	DateScanLines int
}

// DefaultOptions returns default processing options
func DefaultOptions() ProcessingOptions {
	return ProcessingOptions{
		MaxFiles:       100,
		MaxRowsPerFile: 100000,
		DateScanLines:  5,
	}
}

// FlowResult is the outcome of a flow report upload
type FlowResult struct {
	Records        []domain.DailyFlowRecord  `json:"records"`
	Warnings       []domain.IngestionWarning `json:"warnings,omitempty"`
	FilesProcessed int                       `json:"files_processed"`
	FilesSkipped   int                       `json:"files_skipped"`
}

// PriceResult is the outcome of a price quote upload
type PriceResult struct {
	Bars     []domain.DailyPriceBar    `json:"bars"`
	Warnings []domain.IngestionWarning `json:"warnings,omitempty"`
}
