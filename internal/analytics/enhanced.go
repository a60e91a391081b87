package analytics

import (
	"math"

	"flowpulse/internal/series"
	"flowpulse/pkg/contracts/domain"
)

// trendStrengthWindow is the number of most recent days compared against the full mean
const trendStrengthWindow = 7

// EnhancedStats extends DescriptiveStats with buy/sell intensity, consistency
// and trend strength for every category.
func EnhancedStats(flow []domain.DailyFlowRecord, prices []domain.DailyPriceBar) []domain.EnhancedStats {
	groups := series.GroupByCategory(flow)
	out := make([]domain.EnhancedStats, 0, len(groups))

	groups.Each(func(category string, records []domain.DailyFlowRecord) {
		base := describe(category, records, prices)
		flows := series.Flows(records)

		var buys, sells []float64
		for _, f := range flows {
			if f > 0 {
				buys = append(buys, f)
			} else if f < 0 {
				sells = append(sells, f)
			}
		}

		recent := flows[max(0, len(flows)-trendStrengthWindow):]
		var strength float64
		if base.MeanFlow != 0 {
			strength = series.Clamp((series.Mean(recent)-base.MeanFlow)/math.Abs(base.MeanFlow)*100, -100, 100)
		}

		out = append(out, domain.EnhancedStats{
			DescriptiveStats: base,
			BuyIntensity:     series.Mean(buys),
			SellIntensity:    math.Abs(series.Mean(sells)),
			Consistency:      series.Clamp(100*(1-math.Min(base.Volatility, 1)), 0, 100),
			TrendStrength:    strength,
		})
	})
	return out
}
