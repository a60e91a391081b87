package dataprocessing

import (
	"sort"
	"time"

	"flowpulse/pkg/contracts/domain"
)

// MergeFlows reconstructs daily values over stored and freshly uploaded
// records together. Cumulative values are the source of truth, so a report
// that lands between two stored days corrects the day after it as well.
// Fresh records win on the same (date, category).
func MergeFlows(stored, fresh []domain.DailyFlowRecord) []domain.DailyFlowRecord {
	byKey := make(map[string]CumulativeRow, len(stored)+len(fresh))
	for _, r := range stored {
		byKey[r.Key()] = cumulativeFromRecord(r)
	}
	for _, r := range fresh {
		byKey[r.Key()] = cumulativeFromRecord(r)
	}

	rows := make([]CumulativeRow, 0, len(byKey))
	for _, row := range byKey {
		rows = append(rows, row)
	}
	return ReconstructDaily(rows)
}

func cumulativeFromRecord(r domain.DailyFlowRecord) CumulativeRow {
	return CumulativeRow{
		Date:     r.Date,
		Category: r.Category,
		Buys:     r.CumulativeBuys,
		Sells:    r.CumulativeSells,
	}
}

// MergePrices combines stored and fresh bars by date, fresh winning, and
// recomputes derived changes over the whole ordered series
func MergePrices(stored, fresh []domain.DailyPriceBar) []domain.DailyPriceBar {
	byDate := make(map[string]domain.DailyPriceBar, len(stored)+len(fresh))
	for _, b := range stored {
		byDate[b.Date.Format(domain.DateLayout)] = b
	}
	for _, b := range fresh {
		byDate[b.Date.Format(domain.DateLayout)] = b
	}

	merged := make([]domain.DailyPriceBar, 0, len(byDate))
	for _, b := range byDate {
		merged = append(merged, b)
	}
	sort.Slice(merged, func(i, j int) bool { return merged[i].Date.Before(merged[j].Date) })

	return ComputeDerivedChanges(merged)
}

// MonthSpan returns the first day of the earliest month and the last day of
// the latest month touched by dates. ok is false for an empty input.
func MonthSpan(dates []time.Time) (from, to time.Time, ok bool) {
	if len(dates) == 0 {
		return time.Time{}, time.Time{}, false
	}
	minDate, maxDate := dates[0], dates[0]
	for _, d := range dates[1:] {
		if d.Before(minDate) {
			minDate = d
		}
		if d.After(maxDate) {
			maxDate = d
		}
	}
	from = time.Date(minDate.Year(), minDate.Month(), 1, 0, 0, 0, 0, time.UTC)
	to = time.Date(maxDate.Year(), maxDate.Month()+1, 0, 0, 0, 0, 0, time.UTC)
	return from, to, true
}
