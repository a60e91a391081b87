package dataprocessing

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"flowpulse/pkg/contracts/domain"
)

// reportDatePattern matches "... até o dia DD/MM/YYYY"
var reportDatePattern = regexp.MustCompile(`at[ée] o dia (\d{2})/(\d{2})/(\d{4})`)

// Line markers of non-data rows in flow reports
var flowHeaderMarkers = []string{
	"Tipos de Investidores",
	"Investidores no Volume",
}

const accumulatedMarker = "Dados acumulados"

// CumulativeRow is one category's accumulated buys and sells as read from a report
type CumulativeRow struct {
	Date     time.Time
	Category string
	Buys     int64
	Sells    int64
	File     string
}

// Flow returns accumulated buys minus accumulated sells
func (r CumulativeRow) Flow() int64 {
	return r.Buys - r.Sells
}

// ExtractReportDate finds the report date marker in the first scanLines lines
func ExtractReportDate(content string, scanLines int) (time.Time, error) {
	lines := splitLines(content)
	if scanLines > 0 && len(lines) > scanLines {
		lines = lines[:scanLines]
	}

	for _, line := range lines {
		match := reportDatePattern.FindStringSubmatch(line)
		if match == nil {
			continue
		}
		day, _ := strconv.Atoi(match[1])
		month, _ := strconv.Atoi(match[2])
		year, _ := strconv.Atoi(match[3])
		if date, ok := calendarDate(year, month, day); ok {
			return date, nil
		}
	}
	return time.Time{}, ErrReportDateNotFound
}

// calendarDate builds a UTC date after checking the accepted bounds.
// Dates that do not exist, like 31/02, are rejected.
func calendarDate(year, month, day int) (time.Time, bool) {
	if year < 2000 || year > 2030 || month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}
	date := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if date.Day() != day {
		return time.Time{}, false
	}
	return date, true
}

// ParseFlowReport reads the accumulated rows of one flow report.
// A missing date marker fails the whole file; malformed rows are skipped and reported.
func ParseFlowReport(file domain.UploadedFile, opts ProcessingOptions) ([]CumulativeRow, []domain.IngestionWarning, error) {
	date, err := ExtractReportDate(file.Content, opts.DateScanLines)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", file.Name, err)
	}

	var (
		rows     []CumulativeRow
		warnings []domain.IngestionWarning
	)

	lines := splitLines(file.Content)
	for i, raw := range lines {
		if opts.MaxRowsPerFile > 0 && i >= opts.MaxRowsPerFile {
			warnings = append(warnings, domain.IngestionWarning{
				File:   file.Name,
				Line:   i + 1,
				Reason: fmt.Sprintf("row limit of %d reached, remaining lines ignored", opts.MaxRowsPerFile),
			})
			break
		}

		line := strings.TrimSpace(raw)
		if line == "" || isFlowHeader(line) {
			continue
		}

		parts := strings.Split(line, ";")
		if len(parts) < 5 {
			continue
		}

		category := strings.TrimSpace(parts[0])
		if category == "" || strings.Contains(category, accumulatedMarker) {
			continue
		}

		buys, buyErr := parseBRInt(parts[1])
		sells, sellErr := parseBRInt(parts[3])
		if buyErr != nil || sellErr != nil {
			warnings = append(warnings, domain.IngestionWarning{
				File:   file.Name,
				Line:   i + 1,
				Reason: fmt.Sprintf("invalid buys/sells for %q", category),
			})
			continue
		}

		rows = append(rows, CumulativeRow{
			Date:     date,
			Category: category,
			Buys:     buys,
			Sells:    sells,
			File:     file.Name,
		})
	}

	return rows, warnings, nil
}

func isFlowHeader(line string) bool {
	for _, marker := range flowHeaderMarkers {
		if strings.Contains(line, marker) {
			return true
		}
	}
	return false
}
