package analytics

import (
	"fmt"
	"math"

	"flowpulse/internal/series"
	"flowpulse/pkg/contracts/domain"
)

const (
	// minPatternRun is the shortest run of same-signed days reported as a pattern
	minPatternRun = 5
	// reversalHistory is the history needed to compare the last 3 days with the 7 before
	reversalHistory = 10
	// reversalMinMean is the minimum |mean| of the last 3 days for a reversal
	reversalMinMean = 50
)

// Patterns detects consistent accumulation, consistent distribution and
// recent reversals in every category.
func Patterns(flow []domain.DailyFlowRecord) []domain.BehaviorPattern {
	var out []domain.BehaviorPattern

	series.GroupByCategory(flow).Each(func(category string, records []domain.DailyFlowRecord) {
		flows := series.Flows(records)

		if days, total := longestRun(flows, func(f float64) bool { return f > 0 }); days >= minPatternRun {
			out = append(out, domain.BehaviorPattern{
				Category:        category,
				Pattern:         domain.PatternAccumulation,
				Description:     fmt.Sprintf("Acumulação por %d dias consecutivos", days),
				Confidence:      runConfidence(days),
				ConsecutiveDays: days,
				AccumulatedFlow: total,
			})
		}

		if days, total := longestRun(flows, func(f float64) bool { return f < 0 }); days >= minPatternRun {
			out = append(out, domain.BehaviorPattern{
				Category:        category,
				Pattern:         domain.PatternDistribution,
				Description:     fmt.Sprintf("Distribuição por %d dias consecutivos", days),
				Confidence:      runConfidence(days),
				ConsecutiveDays: days,
				AccumulatedFlow: math.Abs(total),
			})
		}

		if p, ok := recentReversal(category, flows); ok {
			out = append(out, p)
		}
	})
	return out
}

// longestRun returns the length and sum of the first longest run of values matching keep
func longestRun(flows []float64, keep func(float64) bool) (days int, total float64) {
	var run int
	var acc float64
	for _, f := range flows {
		if !keep(f) {
			run, acc = 0, 0
			continue
		}
		run++
		acc += f
		if run > days {
			days, total = run, acc
		}
	}
	return days, total
}

func runConfidence(days int) float64 {
	return math.Min(100, float64(days)*10)
}

func recentReversal(category string, flows []float64) (domain.BehaviorPattern, bool) {
	if len(flows) < reversalHistory {
		return domain.BehaviorPattern{}, false
	}
	last3 := flows[len(flows)-3:]
	prev7 := flows[len(flows)-reversalHistory : len(flows)-3]

	m3 := series.Mean(last3)
	m7 := series.Mean(prev7)
	if series.Sign(m3) == series.Sign(m7) || math.Abs(m3) <= reversalMinMean {
		return domain.BehaviorPattern{}, false
	}

	return domain.BehaviorPattern{
		Category:        category,
		Pattern:         domain.PatternReversal,
		Description:     fmt.Sprintf("Mudança de %s para %s", side(m7), side(m3)),
		Confidence:      math.Min(100, math.Abs(m3-m7)/math.Abs(series.OrOne(m7))*50),
		ConsecutiveDays: 3,
		AccumulatedFlow: series.Sum(last3),
	}, true
}

func side(mean float64) string {
	if mean > 0 {
		return "comprador"
	}
	return "vendedor"
}
