package dataprocessing

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"flowpulse/pkg/contracts/domain"
)

const (
	quoteDateLayout = "2/1/2006"
	quoteFields     = 9
)

// quoteRow is one intraday WINFUT quote
type quoteRow struct {
	date                   time.Time
	open, high, low, close int64
	volume                 decimal.Decimal
	quantity               int64
}

// ParsePriceQuotes aggregates intraday quote rows into daily bars in ascending
// date order. Line 0 is the header. Rows with a malformed date or OHLC value
// are skipped and reported.
func ParsePriceQuotes(content string, opts ProcessingOptions) ([]domain.DailyPriceBar, []domain.IngestionWarning) {
	var warnings []domain.IngestionWarning
	bars := make(map[string]*domain.DailyPriceBar)

	lines := splitLines(content)
	for i := 1; i < len(lines); i++ {
		if opts.MaxRowsPerFile > 0 && i > opts.MaxRowsPerFile {
			warnings = append(warnings, domain.IngestionWarning{
				Line:   i + 1,
				Reason: fmt.Sprintf("row limit of %d reached, remaining lines ignored", opts.MaxRowsPerFile),
			})
			break
		}

		line := strings.TrimSpace(lines[i])
		if line == "" {
			continue
		}
		parts := strings.Split(line, ";")
		if len(parts) < quoteFields {
			continue
		}

		row, err := parseQuoteRow(parts)
		if err != nil {
			warnings = append(warnings, domain.IngestionWarning{
				Line:   i + 1,
				Reason: err.Error(),
			})
			continue
		}

		key := row.date.Format(domain.DateLayout)
		bar, ok := bars[key]
		if !ok {
			bars[key] = &domain.DailyPriceBar{
				Date:          row.date,
				Open:          row.open,
				High:          row.high,
				Low:           row.low,
				Close:         row.close,
				TotalVolume:   row.volume,
				TotalQuantity: row.quantity,
			}
			continue
		}

		bar.High = max(bar.High, row.high)
		bar.Low = min(bar.Low, row.low)
		bar.Close = row.close
		bar.TotalVolume = bar.TotalVolume.Add(row.volume)
		bar.TotalQuantity += row.quantity
	}

	result := make([]domain.DailyPriceBar, 0, len(bars))
	for _, bar := range bars {
		result = append(result, *bar)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Date.Before(result[j].Date)
	})
	return result, warnings
}

func parseQuoteRow(parts []string) (quoteRow, error) {
	date, err := time.Parse(quoteDateLayout, strings.TrimSpace(parts[1]))
	if err != nil {
		return quoteRow{}, fmt.Errorf("invalid date %q", strings.TrimSpace(parts[1]))
	}

	var ohlc [4]int64
	for j := range ohlc {
		v, err := parseBRInt(parts[3+j])
		if err != nil {
			return quoteRow{}, fmt.Errorf("invalid OHLC value: %w", err)
		}
		ohlc[j] = v
	}

	volume, err := ParseBRNumber(parts[7])
	if err != nil {
		volume = decimal.Zero
	}
	quantity, err := parseBRInt(parts[8])
	if err != nil {
		quantity = 0
	}

	return quoteRow{
		date:     date,
		open:     ohlc[0],
		high:     ohlc[1],
		low:      ohlc[2],
		close:    ohlc[3],
		volume:   volume,
		quantity: quantity,
	}, nil
}

// ComputeDerivedChanges returns a copy of bars with point change, percent change
// and range filled in. The first bar gets zero changes and a zero previous close
// yields a zero percent change.
func ComputeDerivedChanges(bars []domain.DailyPriceBar) []domain.DailyPriceBar {
	out := make([]domain.DailyPriceBar, len(bars))
	for i, bar := range bars {
		bar.PointChange = 0
		bar.PercentChange = 0
		if i > 0 {
			prevClose := bars[i-1].Close
			bar.PointChange = bar.Close - prevClose
			if prevClose != 0 {
				bar.PercentChange = float64(bar.PointChange) / float64(prevClose) * 100
			}
		}
		bar.Range = bar.High - bar.Low
		out[i] = bar
	}
	return out
}
