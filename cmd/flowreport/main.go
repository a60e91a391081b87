// Command flowreport runs the FlowPulse analytics over report files on disk
// without a server. Flow reports are read from a directory or a single file,
// the optional quote export from one file, and the chosen report is printed as
// JSON or written to -out.
//
//	flowreport -flows data/participacao -quotes data/win.csv -report dashboard -out dashboard.xlsx
//	flowreport -flows data/participacao -report divergences -category Estrangeiro -window 10
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"flowpulse/internal/config"
	"flowpulse/internal/dataprocessing"
	"flowpulse/internal/exporter"
	"flowpulse/internal/files"
	"flowpulse/internal/infrastructure"
	"flowpulse/internal/services"
	"flowpulse/internal/storage"
	"flowpulse/pkg/contracts"
	"flowpulse/pkg/contracts/domain"
)

// localUser owns the data loaded by one run
const localUser = "local"

// Report names accepted by -report
const (
	reportStats       = "stats"
	reportEnhanced    = "enhanced"
	reportTrends      = "trends"
	reportPatterns    = "patterns"
	reportAlerts      = "alerts"
	reportDivergences = "divergences"
	reportQuantum     = "quantum"
	reportDashboard   = "dashboard"
	reportFlows       = "flows"
	reportPrices      = "prices"
)

var reports = []string{
	reportStats, reportEnhanced, reportTrends, reportPatterns, reportAlerts,
	reportDivergences, reportQuantum, reportDashboard, reportFlows, reportPrices,
}

var errUsage = errors.New("usage")

type options struct {
	flowsPath  string
	quotesPath string
	report     string
	category   string
	window     int
	out        string
	logLevel   string
	version    bool
}

func main() {
	opts, err := parseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if opts.version {
		fmt.Println(contracts.GetBuildInfo())
		return
	}

	logger, err := infrastructure.NewLogger(config.LoggingConfig{
		Level:  opts.logLevel,
		Format: "text",
		Output: "stderr",
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, opts, os.Stdout, logger); err != nil {
		logger.Error("flowreport failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func parseFlags(args []string, output io.Writer) (options, error) {
	var opts options
	fs := flag.NewFlagSet("flowreport", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.StringVar(&opts.flowsPath, "flows", "", "flow report CSV file or directory of reports (required)")
	fs.StringVar(&opts.quotesPath, "quotes", "", "intraday quote export CSV")
	fs.StringVar(&opts.report, "report", reportDashboard, "report to produce: "+strings.Join(reports, ", "))
	fs.StringVar(&opts.category, "category", "", "investor category for the divergences report")
	fs.IntVar(&opts.window, "window", 0, "divergence window in days, 0 for the default")
	fs.StringVar(&opts.out, "out", "", "output file (.json, .csv or .xlsx), stdout JSON when empty")
	fs.StringVar(&opts.logLevel, "log-level", "warn", "log level: debug, info, warn, error")
	fs.BoolVar(&opts.version, "version", false, "print the version and exit")

	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	if opts.version {
		return opts, nil
	}
	if err := opts.validate(); err != nil {
		return opts, fmt.Errorf("%w: %v", errUsage, err)
	}
	return opts, nil
}

func (o options) validate() error {
	if o.flowsPath == "" {
		return errors.New("-flows is required")
	}
	known := false
	for _, r := range reports {
		if r == o.report {
			known = true
			break
		}
	}
	if !known {
		return fmt.Errorf("unknown report %q", o.report)
	}
	if o.report == reportDivergences && o.category == "" {
		return errors.New("-category is required for the divergences report")
	}
	if o.window < 0 {
		return errors.New("-window must not be negative")
	}

	switch ext := strings.ToLower(filepath.Ext(o.out)); ext {
	case "", ".json":
	case ".csv":
		if o.report != reportFlows && o.report != reportPrices {
			return fmt.Errorf("csv output supports the flows and prices reports, not %q", o.report)
		}
	case ".xlsx":
		if o.report != reportDashboard {
			return fmt.Errorf("xlsx output supports the dashboard report, not %q", o.report)
		}
	default:
		return fmt.Errorf("unsupported output extension %q", ext)
	}
	return nil
}

// run loads the files into an in-memory repository and renders the report
func run(ctx context.Context, opts options, stdout io.Writer, logger *slog.Logger) error {
	repo := storage.NewMemoryRepository()
	processor := dataprocessing.NewProcessor(dataprocessing.DefaultOptions(), logger)
	flows := services.NewFlowService(processor, repo, nil, nil, nil, logger)
	analytics := services.NewAnalyticsService(repo, nil, nil, services.AnalyticsOptions{}, logger)

	uploads, err := loadFlowFiles(opts.flowsPath)
	if err != nil {
		return err
	}
	summary, err := flows.UploadFlows(ctx, localUser, uploads)
	if err != nil {
		return fmt.Errorf("ingest flow reports: %w", err)
	}
	logSummary(ctx, logger, "flow reports loaded", summary)

	if opts.quotesPath != "" {
		found, err := files.NewDiscovery("").FindReports(opts.quotesPath)
		if err != nil {
			return fmt.Errorf("read quotes: %w", err)
		}
		quotes, err := files.ReadReports(found[:1], files.DefaultMaxFileSize)
		if err != nil {
			return fmt.Errorf("read quotes: %w", err)
		}
		summary, err := flows.UploadPrices(ctx, localUser, quotes[0].Content)
		if err != nil {
			return fmt.Errorf("ingest quotes: %w", err)
		}
		logSummary(ctx, logger, "quotes loaded", summary)
	}

	switch strings.ToLower(filepath.Ext(opts.out)) {
	case ".xlsx":
		return writeWorkbook(ctx, opts.out, flows, analytics)
	case ".csv":
		return writeSeriesCSV(ctx, opts, flows)
	}

	result, err := buildReport(ctx, opts, flows, analytics)
	if err != nil {
		return err
	}
	if opts.out == "" {
		return writeJSON(stdout, result)
	}

	if err := os.MkdirAll(filepath.Dir(opts.out), 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	file, err := os.Create(opts.out)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	if err := writeJSON(file, result); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

func buildReport(ctx context.Context, opts options, flows *services.FlowService, analytics *services.AnalyticsService) (interface{}, error) {
	switch opts.report {
	case reportStats:
		return analytics.Stats(ctx, localUser)
	case reportEnhanced:
		return analytics.Enhanced(ctx, localUser)
	case reportTrends:
		return analytics.Trends(ctx, localUser)
	case reportPatterns:
		return analytics.Patterns(ctx, localUser)
	case reportAlerts:
		return analytics.Alerts(ctx, localUser)
	case reportDivergences:
		return analytics.Divergences(ctx, localUser, opts.category, opts.window)
	case reportQuantum:
		return analytics.Quantum(ctx, localUser)
	case reportFlows:
		return flows.Flows(ctx, localUser, storage.Filter{Category: opts.category})
	case reportPrices:
		return flows.Prices(ctx, localUser, storage.Filter{})
	default:
		return analytics.Dashboard(ctx, localUser)
	}
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return nil
}

func writeWorkbook(ctx context.Context, path string, flows *services.FlowService, analytics *services.AnalyticsService) error {
	report, err := analytics.Dashboard(ctx, localUser)
	if err != nil {
		return err
	}
	records, err := flows.Flows(ctx, localUser, storage.Filter{})
	if err != nil {
		return err
	}
	bars, err := flows.Prices(ctx, localUser, storage.Filter{})
	if err != nil {
		return err
	}

	f, err := exporter.DashboardWorkbook(report, records, bars)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

func writeSeriesCSV(ctx context.Context, opts options, flows *services.FlowService) error {
	var content exporter.WriteOptions
	if opts.report == reportPrices {
		bars, err := flows.Prices(ctx, localUser, storage.Filter{})
		if err != nil {
			return err
		}
		content = exporter.PricesCSV(bars)
	} else {
		records, err := flows.Flows(ctx, localUser, storage.Filter{Category: opts.category})
		if err != nil {
			return err
		}
		content = exporter.FlowsCSV(records)
	}
	return exporter.NewCSVWriter().WriteFile(opts.out, content)
}

// loadFlowFiles reads one report, or every .csv file of a directory in name order
func loadFlowFiles(path string) ([]domain.UploadedFile, error) {
	found, err := files.NewDiscovery("").FindReports(path)
	if err != nil {
		return nil, err
	}
	return files.ReadReports(found, files.DefaultMaxFileSize)
}

func logSummary(ctx context.Context, logger *slog.Logger, msg string, summary *domain.UploadSummary) {
	attrs := []slog.Attr{
		slog.Int("records", summary.TotalRecords),
		slog.Int("warnings", len(summary.Warnings)),
	}
	if summary.StartDate != nil && summary.EndDate != nil {
		attrs = append(attrs,
			slog.String("from", summary.StartDate.Format("2006-01-02")),
			slog.String("to", summary.EndDate.Format("2006-01-02")))
	}
	logger.LogAttrs(ctx, slog.LevelInfo, msg, attrs...)

	for _, w := range summary.Warnings {
		logger.WarnContext(ctx, "skipped input", slog.Any("warning", w))
	}
}
