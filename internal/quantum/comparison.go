package quantum

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"flowpulse/internal/series"
	"flowpulse/pkg/contracts/domain"
)

const (
	// comparisonDays is the number of most recent distinct dates compared
	comparisonDays = 30
	// divergenceFlow is the |flow| a category needs to count as buying or selling
	divergenceFlow = 100
	noDominant     = "N/A"
)

// Compare ranks the categories of each of the last 30 distinct dates by
// absolute flow and flags days where some categories buy while others sell.
// Results are newest first.
func Compare(flow []domain.DailyFlowRecord) []domain.DailyComparison {
	byDay := make(map[string][]domain.DailyFlowRecord)
	dates := make(map[string]time.Time)
	for _, r := range flow {
		key := series.DayKey(r.Date)
		byDay[key] = append(byDay[key], r)
		if _, ok := dates[key]; !ok {
			dates[key] = r.Date
		}
	}

	keys := make([]string, 0, len(byDay))
	for k := range byDay {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	if len(keys) > comparisonDays {
		keys = keys[len(keys)-comparisonDays:]
	}

	out := make([]domain.DailyComparison, 0, len(keys))
	for i := len(keys) - 1; i >= 0; i-- {
		out = append(out, compareDay(dates[keys[i]], byDay[keys[i]]))
	}
	return out
}

func compareDay(date time.Time, records []domain.DailyFlowRecord) domain.DailyComparison {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Category < records[j].Category
	})

	var total float64
	for _, r := range records {
		total += math.Abs(float64(r.DailyFlow))
	}

	shares := make([]domain.CategoryShare, len(records))
	for i, r := range records {
		f := float64(r.DailyFlow)
		shares[i] = domain.CategoryShare{
			Category: r.Category,
			Flow:     f,
			Share:    series.Ratio(math.Abs(f), total) * 100,
		}
	}
	sort.SliceStable(shares, func(i, j int) bool {
		return math.Abs(shares[i].Flow) > math.Abs(shares[j].Flow)
	})

	dominant := noDominant
	if len(shares) > 0 && shares[0].Category != "" {
		dominant = shares[0].Category
	}

	var buyers, sellers []string
	for _, s := range shares {
		switch {
		case s.Flow > divergenceFlow:
			buyers = append(buyers, s.Category)
		case s.Flow < -divergenceFlow:
			sellers = append(sellers, s.Category)
		}
	}
	divergent := len(buyers) > 0 && len(sellers) > 0

	description := fmt.Sprintf("%s dominando", dominant)
	if divergent {
		description += fmt.Sprintf(" - Divergência: %s comprando vs %s vendendo",
			strings.Join(buyers, ", "), strings.Join(sellers, ", "))
	}

	return domain.DailyComparison{
		Date:        date,
		Categories:  shares,
		Dominant:    dominant,
		Divergence:  divergent,
		Description: description,
	}
}
