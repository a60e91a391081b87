package analytics

import (
	"math"

	"flowpulse/internal/series"
	"flowpulse/pkg/contracts/domain"
)

// DefaultDivergenceWindow is used when a non-positive window is requested
const DefaultDivergenceWindow = 5

const (
	bullishDescription = "Preço fez nova mínima, mas fluxo não acompanhou"
	bearishDescription = "Preço fez nova máxima, mas fluxo não acompanhou"
)

// DetectDivergences scans flow joined with price bars for windows where the
// closing price made a new extreme on the last day while flow did not.
//
// flow is treated as a single series; pass one category's records or use
// DivergencesByCategory. Results are in ascending date order.
func DetectDivergences(flow []domain.DailyFlowRecord, prices []domain.DailyPriceBar, window int) []domain.Divergence {
	if window <= 0 {
		window = DefaultDivergenceWindow
	}
	if len(flow) < window+2 || len(prices) < window+2 {
		return nil
	}

	merged := series.JoinFlowPrice(series.SortRecords(flow), series.SortPrices(prices))
	if len(merged) < window+2 {
		return nil
	}

	var out []domain.Divergence
	for i := window; i < len(merged); i++ {
		frame := merged[i-window : i+1]
		last := len(frame) - 1

		var maxPrice, minPrice, maxFlow, minFlow int
		for j, p := range frame {
			if p.Right.Close > frame[maxPrice].Right.Close {
				maxPrice = j
			}
			if p.Right.Close < frame[minPrice].Right.Close {
				minPrice = j
			}
			if p.Left.DailyFlow > frame[maxFlow].Left.DailyFlow {
				maxFlow = j
			}
			if p.Left.DailyFlow < frame[minFlow].Left.DailyFlow {
				minFlow = j
			}
		}

		current := frame[last]
		if minPrice == last && minFlow != last {
			out = append(out, domain.Divergence{
				Date:        current.Left.Date,
				Category:    current.Left.Category,
				Type:        domain.DivergenceBullish,
				Description: bullishDescription,
				Signal:      domain.SignalBuy,
				Price:       current.Right.Close,
				Flow:        current.Left.DailyFlow,
				Intensity:   math.Abs(float64(minFlow-last)) / float64(window),
			})
		}
		if maxPrice == last && maxFlow != last {
			out = append(out, domain.Divergence{
				Date:        current.Left.Date,
				Category:    current.Left.Category,
				Type:        domain.DivergenceBearish,
				Description: bearishDescription,
				Signal:      domain.SignalSell,
				Price:       current.Right.Close,
				Flow:        current.Left.DailyFlow,
				Intensity:   math.Abs(float64(maxFlow-last)) / float64(window),
			})
		}
	}
	return out
}

// DivergencesByCategory runs DetectDivergences on a single category's records
func DivergencesByCategory(flow []domain.DailyFlowRecord, prices []domain.DailyPriceBar, category string, window int) []domain.Divergence {
	return DetectDivergences(series.FilterCategory(flow, category), prices, window)
}

// AllDivergences runs DetectDivergences for every category, in category order
func AllDivergences(flow []domain.DailyFlowRecord, prices []domain.DailyPriceBar, window int) []domain.Divergence {
	var out []domain.Divergence
	series.GroupByCategory(flow).Each(func(_ string, records []domain.DailyFlowRecord) {
		out = append(out, DetectDivergences(records, prices, window)...)
	})
	return out
}
