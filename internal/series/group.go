package series

import (
	"sort"

	"flowpulse/pkg/contracts/domain"
)

// Grouped maps an investor category to its records in ascending date order
type Grouped map[string][]domain.DailyFlowRecord

// GroupByCategory partitions records by category. The input is not modified.
func GroupByCategory(records []domain.DailyFlowRecord) Grouped {
	groups := make(Grouped)
	for _, r := range records {
		groups[r.Category] = append(groups[r.Category], r)
	}
	for _, recs := range groups {
		sort.SliceStable(recs, func(i, j int) bool {
			return recs[i].Date.Before(recs[j].Date)
		})
	}
	return groups
}

// Categories returns the category keys in lexicographic order
func (g Grouped) Categories() []string {
	keys := make([]string, 0, len(g))
	for k := range g {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Each calls fn for every category in lexicographic order
func (g Grouped) Each(fn func(category string, records []domain.DailyFlowRecord)) {
	for _, category := range g.Categories() {
		fn(category, g[category])
	}
}

// Flows extracts the daily flow of each record as float64
func Flows(records []domain.DailyFlowRecord) []float64 {
	flows := make([]float64, len(records))
	for i, r := range records {
		flows[i] = float64(r.DailyFlow)
	}
	return flows
}

// FilterCategory returns the records of a single category
func FilterCategory(records []domain.DailyFlowRecord, category string) []domain.DailyFlowRecord {
	var out []domain.DailyFlowRecord
	for _, r := range records {
		if r.Category == category {
			out = append(out, r)
		}
	}
	return out
}

// SortPrices returns a copy of bars in ascending date order
func SortPrices(bars []domain.DailyPriceBar) []domain.DailyPriceBar {
	sorted := make([]domain.DailyPriceBar, len(bars))
	copy(sorted, bars)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})
	return sorted
}

// SortRecords returns a copy of records in ascending date order
func SortRecords(records []domain.DailyFlowRecord) []domain.DailyFlowRecord {
	sorted := make([]domain.DailyFlowRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})
	return sorted
}
