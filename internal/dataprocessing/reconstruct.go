package dataprocessing

import (
	"fmt"
	"sort"

	"flowpulse/pkg/contracts/domain"
)

// SortCumulativeRows orders rows by (date, category), then by source file name
// and values so that rows sharing a key always land in the same order no matter
// how the files were uploaded.
func SortCumulativeRows(rows []CumulativeRow) {
	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		switch {
		case !a.Date.Equal(b.Date):
			return a.Date.Before(b.Date)
		case a.Category != b.Category:
			return a.Category < b.Category
		case a.File != b.File:
			return a.File < b.File
		case a.Buys != b.Buys:
			return a.Buys < b.Buys
		default:
			return a.Sells < b.Sells
		}
	})
}

// DedupeCumulativeRows keeps one row per (date, category), the last one in
// SortCumulativeRows order, and reports every dropped row as a warning. The
// result is sorted.
func DedupeCumulativeRows(rows []CumulativeRow) ([]CumulativeRow, []domain.IngestionWarning) {
	sorted := make([]CumulativeRow, len(rows))
	copy(sorted, rows)
	SortCumulativeRows(sorted)

	unique := make([]CumulativeRow, 0, len(sorted))
	var warnings []domain.IngestionWarning
	for i, row := range sorted {
		if i+1 < len(sorted) && sameKey(row, sorted[i+1]) {
			kept := sorted[i+1]
			warnings = append(warnings, domain.IngestionWarning{
				File: row.File,
				Reason: fmt.Sprintf("duplicate %s %s ignored, kept %s (buys %d, sells %d)",
					row.Date.Format(domain.DateLayout), row.Category, kept.File, kept.Buys, kept.Sells),
			})
			continue
		}
		unique = append(unique, row)
	}
	return unique, warnings
}

func sameKey(a, b CumulativeRow) bool {
	return a.Date.Equal(b.Date) && a.Category == b.Category
}

// ReconstructDaily converts accumulated month-to-date rows into daily records.
//
// For each report date in ascending order and each category present on it, the
// daily value is the accumulated value minus the one of the preceding report
// date. The accumulated value is used as is on the first date, when the category
// is absent on the preceding date, or when the preceding date is in another month.
// Duplicate keys resolve as in DedupeCumulativeRows.
func ReconstructDaily(rows []CumulativeRow) []domain.DailyFlowRecord {
	if len(rows) == 0 {
		return nil
	}

	sorted := make([]CumulativeRow, len(rows))
	copy(sorted, rows)
	SortCumulativeRows(sorted)

	byDate := make(map[string]map[string]CumulativeRow)
	var dates []string
	for _, row := range sorted {
		key := row.Date.Format(domain.DateLayout)
		if _, ok := byDate[key]; !ok {
			byDate[key] = make(map[string]CumulativeRow)
			dates = append(dates, key)
		}
		byDate[key][row.Category] = row
	}

	records := make([]domain.DailyFlowRecord, 0, len(sorted))
	for i, key := range dates {
		current := byDate[key]
		categories := make([]string, 0, len(current))
		for category := range current {
			categories = append(categories, category)
		}
		sort.Strings(categories)

		var previous map[string]CumulativeRow
		if i > 0 {
			previous = byDate[dates[i-1]]
		}

		for _, category := range categories {
			row := current[category]
			record := domain.DailyFlowRecord{
				Date:            row.Date,
				Category:        category,
				CumulativeBuys:  row.Buys,
				CumulativeSells: row.Sells,
				CumulativeFlow:  row.Flow(),
				DailyBuys:       row.Buys,
				DailySells:      row.Sells,
				DailyFlow:       row.Flow(),
			}

			if prev, ok := previous[category]; ok && sameMonth(prev, row) {
				record.DailyBuys = row.Buys - prev.Buys
				record.DailySells = row.Sells - prev.Sells
				record.DailyFlow = row.Flow() - prev.Flow()
			}

			records = append(records, record)
		}
	}

	return records
}

func sameMonth(a, b CumulativeRow) bool {
	return a.Date.Year() == b.Date.Year() && a.Date.Month() == b.Date.Month()
}
