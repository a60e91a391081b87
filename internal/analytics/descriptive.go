package analytics

import (
	"math"

	"flowpulse/internal/series"
	"flowpulse/pkg/contracts/domain"
)

// DescriptiveStats summarizes every category's daily flow. When prices are
// supplied each summary also carries the flow/price correlation.
func DescriptiveStats(flow []domain.DailyFlowRecord, prices []domain.DailyPriceBar) []domain.DescriptiveStats {
	groups := series.GroupByCategory(flow)
	stats := make([]domain.DescriptiveStats, 0, len(groups))

	groups.Each(func(category string, records []domain.DailyFlowRecord) {
		stats = append(stats, describe(category, records, prices))
	})
	return stats
}

// describe builds the summary of one category. records must be date ordered and non-empty.
func describe(category string, records []domain.DailyFlowRecord, prices []domain.DailyPriceBar) domain.DescriptiveStats {
	flows := series.Flows(records)
	n := float64(len(flows))

	var buyers, sellers int
	for _, f := range flows {
		switch {
		case f > 0:
			buyers++
		case f < 0:
			sellers++
		}
	}

	mean := series.Mean(flows)
	sd := series.StdDev(flows)

	trend := domain.TrendSeller
	if flows[len(flows)-1] > 0 {
		trend = domain.TrendBuyer
	}

	stats := domain.DescriptiveStats{
		Category:      category,
		Days:          len(flows),
		MeanFlow:      mean,
		MedianFlow:    series.Median(flows),
		StdDevFlow:    sd,
		BuyerDays:     buyers,
		SellerDays:    sellers,
		BuyerDaysPct:  float64(buyers) / n * 100,
		SellerDaysPct: float64(sellers) / n * 100,
		CurrentTrend:  trend,
		TotalFlow:     series.Sum(flows),
		Volatility:    series.Ratio(sd, math.Abs(mean)),
	}

	if len(prices) > 0 {
		corr := Correlation(records, prices)
		stats.Correlation = &corr
	}
	return stats
}

// Correlation returns the Pearson correlation between daily flow and the
// same-day price change expressed as a fraction. Days without a price bar are
// ignored; fewer than two matched days yield 0.
func Correlation(records []domain.DailyFlowRecord, prices []domain.DailyPriceBar) float64 {
	pairs := series.JoinFlowPrice(records, prices)
	x := make([]float64, len(pairs))
	y := make([]float64, len(pairs))
	for i, p := range pairs {
		x[i] = float64(p.Left.DailyFlow)
		y[i] = p.Right.PercentChange / 100
	}
	return series.Pearson(x, y)
}
