package quantum

import (
	"math"

	"flowpulse/internal/series"
	"flowpulse/pkg/contracts/domain"
)

const (
	// cycleThreshold separates accumulation and distribution days from lateral ones
	cycleThreshold = 100
	// minCycleDays is the shortest run reported as a cycle
	minCycleDays = 5
)

// Cycles merges consecutive days of the same regime (accumulation above 100,
// distribution below -100, lateral otherwise) and reports every run of at
// least five days.
func Cycles(flow []domain.DailyFlowRecord) []domain.FlowCycle {
	var out []domain.FlowCycle
	series.GroupByCategory(flow).Each(func(category string, records []domain.DailyFlowRecord) {
		out = append(out, categoryCycles(category, records)...)
	})
	sortNewestFirst(out, func(c domain.FlowCycle) int64 { return c.StartDate.Unix() })
	return out
}

func cycleType(f float64) domain.CycleType {
	switch {
	case f > cycleThreshold:
		return domain.CycleAccumulation
	case f < -cycleThreshold:
		return domain.CycleDistribution
	default:
		return domain.CycleLateral
	}
}

func categoryCycles(category string, records []domain.DailyFlowRecord) []domain.FlowCycle {
	flows := series.Flows(records)

	var out []domain.FlowCycle
	emit := func(start, end int) {
		run := flows[start : end+1]
		if len(run) < minCycleDays {
			return
		}
		mean := series.Mean(run)
		sd := series.StdDev(run)
		out = append(out, domain.FlowCycle{
			Category:    category,
			StartDate:   records[start].Date,
			EndDate:     records[end].Date,
			Type:        cycleType(run[0]),
			Days:        len(run),
			MeanFlow:    mean,
			TotalFlow:   series.Sum(run),
			Consistency: series.Clamp(100*(1-sd/math.Abs(series.OrOne(mean))), 0, 100),
			Force:       math.Min(100, math.Abs(mean)/10),
		})
	}

	start := 0
	for i := 1; i <= len(flows); i++ {
		if i < len(flows) && cycleType(flows[i]) == cycleType(flows[start]) {
			continue
		}
		emit(start, i-1)
		start = i
	}
	return out
}
