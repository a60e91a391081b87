package quantum

import (
	"flowpulse/pkg/contracts/domain"
)

// Analyze runs the five quantum analyses over one snapshot. prices are
// accepted so the report can later correlate regimes with price and are
// currently unused.
func Analyze(flow []domain.DailyFlowRecord, _ []domain.DailyPriceBar) domain.QuantumReport {
	return domain.QuantumReport{
		InflectionPoints: orEmpty(InflectionPoints(flow)),
		PeaksValleys:     orEmpty(PeaksAndValleys(flow)),
		Cycles:           orEmpty(Cycles(flow)),
		Momentum:         orEmpty(Momentum(flow)),
		Comparison:       orEmpty(Compare(flow)),
	}
}

// orEmpty keeps JSON output as [] instead of null
func orEmpty[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
