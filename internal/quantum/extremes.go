package quantum

import (
	"fmt"
	"math"

	"flowpulse/internal/series"
	"flowpulse/pkg/contracts/domain"
)

// extremeRadius is the number of neighbours compared on each side
const extremeRadius = 2

// PeaksAndValleys finds days whose flow is strictly above (or below) both
// neighbours on each side and more than one standard deviation away from the
// category mean. Two deviations promote a local extreme to a buy peak or sell valley.
func PeaksAndValleys(flow []domain.DailyFlowRecord) []domain.PeakOrValley {
	var out []domain.PeakOrValley
	series.GroupByCategory(flow).Each(func(category string, records []domain.DailyFlowRecord) {
		out = append(out, categoryExtremes(category, records)...)
	})
	sortNewestFirst(out, func(p domain.PeakOrValley) int64 { return p.Date.Unix() })
	return out
}

func categoryExtremes(category string, records []domain.DailyFlowRecord) []domain.PeakOrValley {
	flows := series.Flows(records)
	mean := series.Mean(flows)
	sd := series.StdDev(flows)
	guard := series.OrOne(sd)

	var (
		out     []domain.PeakOrValley
		indexes []int
	)
	for i := extremeRadius; i < len(flows)-extremeRadius; i++ {
		v := flows[i]
		above, below := true, true
		for j := i - extremeRadius; j <= i+extremeRadius; j++ {
			if j == i {
				continue
			}
			above = above && v > flows[j]
			below = below && v < flows[j]
		}

		switch {
		case above && v > mean+sd:
			kind := domain.ExtremeLocalPeak
			if v > mean+2*sd {
				kind = domain.ExtremeBuyPeak
			}
			sigmas := (v - mean) / guard
			out = append(out, domain.PeakOrValley{
				Date:      records[i].Date,
				Category:  category,
				Type:      kind,
				Value:     v,
				Intensity: series.Clamp(sigmas*25, 0, 100),
				Context:   fmt.Sprintf("Pico de %s (%sσ acima da média)", series.FormatMillions(v), series.FormatDecimal(sigmas)),
			})
			indexes = append(indexes, i)
		case below && v < mean-sd:
			kind := domain.ExtremeLocalValley
			if v < mean-2*sd {
				kind = domain.ExtremeSellValley
			}
			sigmas := (mean - v) / guard
			out = append(out, domain.PeakOrValley{
				Date:      records[i].Date,
				Category:  category,
				Type:      kind,
				Value:     v,
				Intensity: series.Clamp(sigmas*25, 0, 100),
				Context:   fmt.Sprintf("Vale de %s (%sσ abaixo da média)", series.FormatMillions(math.Abs(v)), series.FormatDecimal(sigmas)),
			})
			indexes = append(indexes, i)
		}
	}

	for k := 0; k+1 < len(out); k++ {
		gap := indexes[k+1] - indexes[k]
		out[k].DaysToNext = &gap
	}
	return out
}
