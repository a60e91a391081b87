package quantum

import (
	"math"

	"flowpulse/internal/series"
	"flowpulse/pkg/contracts/domain"
)

const (
	// minMomentumDays is the history a category needs for momentum
	minMomentumDays = 10
	// velocityThreshold is the |velocity| needed to call a direction
	velocityThreshold = 50
	// forecastThreshold is the |momentum| needed for a directional forecast
	forecastThreshold = 100
)

// momentumWeights weigh the last seven days, oldest first
var momentumWeights = []float64{1.0, 1.2, 1.4, 1.6, 1.8, 2.0, 2.2}

// Momentum scores velocity, acceleration and weighted momentum for every
// category with at least ten days of history, in category order.
func Momentum(flow []domain.DailyFlowRecord) []domain.MomentumAnalysis {
	var out []domain.MomentumAnalysis
	series.GroupByCategory(flow).Each(func(category string, records []domain.DailyFlowRecord) {
		if len(records) < minMomentumDays {
			return
		}
		out = append(out, categoryMomentum(category, series.Flows(records)))
	})
	return out
}

func categoryMomentum(category string, flows []float64) domain.MomentumAnalysis {
	n := len(flows)
	last3 := series.Mean(flows[n-3:])
	prev3 := series.Mean(flows[n-6 : n-3])
	older3 := series.Mean(flows[n-9 : n-6])

	velocity := last3 - prev3
	acceleration := velocity - (prev3 - older3)

	last7 := flows[n-7:]
	var weighted float64
	for i, f := range last7 {
		weighted += f * momentumWeights[i]
	}
	momentum := weighted / series.Sum(momentumWeights)

	forecast := domain.DirectionLateral
	switch {
	case momentum > forecastThreshold && velocity > 0:
		forecast = domain.DirectionUp
	case momentum < -forecastThreshold && velocity < 0:
		forecast = domain.DirectionDown
	}

	sd := series.StdDevAround(last7, last3)

	return domain.MomentumAnalysis{
		Category:           category,
		Momentum:           momentum,
		Velocity:           velocity,
		Acceleration:       acceleration,
		Direction:          momentumDirection(velocity, acceleration),
		TrendStrength:      math.Min(100, math.Abs(momentum-series.Mean(flows))/10),
		Forecast3Days:      forecast,
		ForecastConfidence: series.Clamp(100*(1-sd/math.Abs(series.OrOne(last3))), 0, 100),
	}
}

func momentumDirection(velocity, acceleration float64) domain.MomentumDirection {
	switch {
	case velocity > velocityThreshold && acceleration > 0:
		return domain.MomentumAcceleratingBuy
	case velocity > velocityThreshold && acceleration < 0:
		return domain.MomentumDeceleratingBuy
	case velocity < -velocityThreshold && acceleration < 0:
		return domain.MomentumAcceleratingSell
	case velocity < -velocityThreshold && acceleration > 0:
		return domain.MomentumDeceleratingSell
	default:
		return domain.MomentumStable
	}
}
