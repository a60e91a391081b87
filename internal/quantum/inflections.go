package quantum

import (
	"math"

	"flowpulse/internal/series"
	"flowpulse/pkg/contracts/domain"
)

const (
	// minRegimeDays is how long the prior regime must have lasted
	minRegimeDays = 3
	// minInflectionIntensity is the intensity an inflection must exceed to be reported
	minInflectionIntensity = 20
)

// regimeClassifier labels the trailing 4-day mean flow
var regimeClassifier = series.TrendClassifier[domain.Direction]{
	Window:    4,
	Threshold: 50,
	Up:        domain.DirectionUp,
	Down:      domain.DirectionDown,
	Flat:      domain.DirectionLateral,
}

// InflectionPoints finds the days on which a category's trailing regime
// switched into ALTA or BAIXA after at least three days in its prior regime.
func InflectionPoints(flow []domain.DailyFlowRecord) []domain.InflectionPoint {
	var out []domain.InflectionPoint
	series.GroupByCategory(flow).Each(func(category string, records []domain.DailyFlowRecord) {
		out = append(out, categoryInflections(category, records)...)
	})
	sortNewestFirst(out, func(p domain.InflectionPoint) int64 { return p.Date.Unix() })
	return out
}

func categoryInflections(category string, records []domain.DailyFlowRecord) []domain.InflectionPoint {
	flows := series.Flows(records)

	var (
		out    []domain.InflectionPoint
		regime = domain.DirectionLateral
		days   int
		sum    float64
	)
	for i := regimeClassifier.Window - 1; i < len(flows); i++ {
		label, _, _ := regimeClassifier.ClassifyAt(flows, i)
		current := flows[i]

		if label != regime && label != domain.DirectionLateral {
			prevMean := sum / float64(max(days, 1))
			var variation float64
			if prevMean != 0 {
				variation = (current - prevMean) / math.Abs(prevMean) * 100
			}
			intensity := math.Min(100, math.Abs(variation))

			if days >= minRegimeDays && intensity > minInflectionIntensity {
				out = append(out, domain.InflectionPoint{
					Date:         records[i].Date,
					Category:     category,
					Type:         inflectionType(regime, label),
					PreviousFlow: prevMean,
					CurrentFlow:  current,
					Variation:    variation,
					Intensity:    intensity,
					DaysInRegime: days,
				})
			}
			regime, days, sum = label, 0, 0
		}
		days++
		sum += current
	}
	return out
}

func inflectionType(from, to domain.Direction) domain.InflectionType {
	switch {
	case from == domain.DirectionLateral && to == domain.DirectionUp:
		return domain.InflectionStartUp
	case from == domain.DirectionLateral && to == domain.DirectionDown:
		return domain.InflectionStartDown
	case from == domain.DirectionDown && to == domain.DirectionUp:
		return domain.InflectionReversalUp
	default:
		return domain.InflectionReversalDown
	}
}
