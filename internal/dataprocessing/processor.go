package dataprocessing

import (
	"context"
	"fmt"
	"log/slog"

	"flowpulse/pkg/contracts/domain"
)

// Processor runs flow and price ingestion with configured limits
type Processor struct {
	opts   ProcessingOptions
	logger *slog.Logger
}

// NewProcessor creates a new ingestion processor
func NewProcessor(opts ProcessingOptions, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.DateScanLines <= 0 {
		opts.DateScanLines = DefaultOptions().DateScanLines
	}
	return &Processor{
		opts:   opts,
		logger: logger.With(slog.String("component", "ingestion")),
	}
}

// ReconstructDailyFlow parses every flow report and derives one daily record per
// (date, category). Files without a date marker are skipped with a warning.
func (p *Processor) ReconstructDailyFlow(ctx context.Context, files []domain.UploadedFile) (*FlowResult, error) {
	if len(files) == 0 {
		return nil, ErrNoFiles
	}
	if p.opts.MaxFiles > 0 && len(files) > p.opts.MaxFiles {
		return nil, fmt.Errorf("%w: %d files, limit is %d", ErrTooManyFiles, len(files), p.opts.MaxFiles)
	}

	result := &FlowResult{}
	var rows []CumulativeRow

	for _, file := range files {
		fileRows, warnings, err := ParseFlowReport(file, p.opts)
		if err != nil {
			p.logger.WarnContext(ctx, "Skipping flow report",
				slog.String("file", file.Name),
				slog.String("error", err.Error()))
			result.FilesSkipped++
			result.Warnings = append(result.Warnings, domain.IngestionWarning{
				File:   file.Name,
				Reason: ErrReportDateNotFound.Error(),
			})
			continue
		}

		p.logWarnings(ctx, warnings)
		result.Warnings = append(result.Warnings, warnings...)
		result.FilesProcessed++
		rows = append(rows, fileRows...)

		p.logger.DebugContext(ctx, "Flow report parsed",
			slog.String("file", file.Name),
			slog.Int("rows", len(fileRows)))
	}

	if len(rows) == 0 {
		return result, ErrNoValidRecords
	}

	rows, duplicates := DedupeCumulativeRows(rows)
	p.logWarnings(ctx, duplicates)
	result.Warnings = append(result.Warnings, duplicates...)
	result.Records = ReconstructDaily(rows)

	p.logger.InfoContext(ctx, "Daily flow reconstructed",
		slog.Int("files", result.FilesProcessed),
		slog.Int("skipped_files", result.FilesSkipped),
		slog.Int("records", len(result.Records)),
		slog.Int("warnings", len(result.Warnings)))

	return result, nil
}

// IngestPriceQuotes parses intraday quotes into daily bars and computes derived changes.
// An upload without any valid row is rejected with ErrNoValidRecords.
func (p *Processor) IngestPriceQuotes(ctx context.Context, content string) (*PriceResult, error) {
	bars, warnings := ParsePriceQuotes(content, p.opts)
	p.logWarnings(ctx, warnings)

	result := &PriceResult{Warnings: warnings}
	if len(bars) == 0 {
		return result, ErrNoValidRecords
	}
	result.Bars = ComputeDerivedChanges(bars)

	p.logger.InfoContext(ctx, "Price quotes aggregated",
		slog.Int("bars", len(result.Bars)),
		slog.Int("warnings", len(warnings)))

	return result, nil
}

func (p *Processor) logWarnings(ctx context.Context, warnings []domain.IngestionWarning) {
	for _, w := range warnings {
		p.logger.WarnContext(ctx, "Row skipped",
			slog.String("file", w.File),
			slog.Int("line", w.Line),
			slog.String("reason", w.Reason))
	}
}
