package analytics

import (
	"fmt"
	"math"

	"flowpulse/internal/series"
	"flowpulse/pkg/contracts/domain"
)

// TrendPeriods are the trailing horizons scored by PeriodTrends
var TrendPeriods = []int{7, 14, 30}

// periodClassifier labels a horizon mean; |mean| must exceed 10 to leave NEUTRO
var periodClassifier = series.TrendClassifier[domain.Trend]{
	Threshold: 10,
	Up:        domain.TrendBuyer,
	Down:      domain.TrendSeller,
	Flat:      domain.TrendNeutral,
}

// PeriodTrends scores the 7, 14 and 30 day horizons of every category.
// Horizons longer than the available history are omitted.
func PeriodTrends(flow []domain.DailyFlowRecord) []domain.CategoryTrends {
	groups := series.GroupByCategory(flow)
	out := make([]domain.CategoryTrends, 0, len(groups))

	groups.Each(func(category string, records []domain.DailyFlowRecord) {
		flows := series.Flows(records)
		periods := make([]domain.PeriodTrend, 0, len(TrendPeriods))

		for _, days := range TrendPeriods {
			if len(flows) < days {
				continue
			}
			periods = append(periods, scorePeriod(days, flows[len(flows)-days:]))
		}

		out = append(out, domain.CategoryTrends{Category: category, Periods: periods})
	})
	return out
}

func scorePeriod(days int, window []float64) domain.PeriodTrend {
	mean := series.Mean(window)
	trend := domain.PeriodTrend{
		Period:   fmt.Sprintf("%dd", days),
		Trend:    periodClassifier.Label(mean),
		MeanFlow: mean,
	}
	if trend.Trend == domain.TrendNeutral {
		return trend
	}

	var positive, negative int
	for _, f := range window {
		if f > 0 {
			positive++
		} else if f < 0 {
			negative++
		}
	}

	trend.Intensity = math.Min(100, series.Ratio(math.Abs(mean), series.AbsMax(window))*100)
	trend.Confidence = math.Min(100, float64(max(positive, negative))/float64(len(window))*100)
	return trend
}
