package analytics

import (
	"fmt"
	"math"
	"sort"

	"flowpulse/internal/series"
	"flowpulse/pkg/contracts/domain"
)

const (
	// alertMinHistory is the history a category needs before it is scanned for alerts
	alertMinHistory = 10
	// alertLookback is the number of trailing days scanned
	alertLookback = 5
	// alertMinFlow is the minimum |flow| for strong flow and acceleration alerts
	alertMinFlow = 100
	// alertLimit caps the number of alerts returned
	alertLimit = 10
	// relevanceBandWidth groups relevance into bands inside which newer alerts win
	relevanceBandWidth = 10
)

// MovementAlerts scans the most recent days of every category with enough
// history for strong inflows, strong outflows, reversals and accelerations.
// At most ten alerts are returned, most relevant first.
//
// prices are accepted for parity with the other analyses and are currently unused.
func MovementAlerts(flow []domain.DailyFlowRecord, _ []domain.DailyPriceBar) []domain.MovementAlert {
	var alerts []domain.MovementAlert

	series.GroupByCategory(flow).Each(func(category string, records []domain.DailyFlowRecord) {
		if len(records) < alertMinHistory {
			return
		}
		alerts = append(alerts, scanAlerts(category, records)...)
	})

	sortAlerts(alerts)
	if len(alerts) > alertLimit {
		alerts = alerts[:alertLimit]
	}
	return alerts
}

// sortAlerts orders alerts by relevance band, newest first inside a band.
// Exact relevance, category and type break the remaining ties.
func sortAlerts(alerts []domain.MovementAlert) {
	sort.Slice(alerts, func(i, j int) bool {
		a, b := alerts[i], alerts[j]
		if ra, rb := relevanceBand(a.Relevance), relevanceBand(b.Relevance); ra != rb {
			return ra > rb
		}
		if !a.Date.Equal(b.Date) {
			return a.Date.After(b.Date)
		}
		if a.Relevance != b.Relevance {
			return a.Relevance > b.Relevance
		}
		if a.Category != b.Category {
			return a.Category < b.Category
		}
		return a.Type < b.Type
	})
}

func relevanceBand(relevance float64) int {
	return int(math.Floor(relevance / relevanceBandWidth))
}

func scanAlerts(category string, records []domain.DailyFlowRecord) []domain.MovementAlert {
	flows := series.Flows(records)
	mean := series.Mean(flows)
	sd := series.StdDev(flows)
	guard := series.OrOne(sd)

	var out []domain.MovementAlert
	add := func(i int, kind domain.AlertType, description string, intensity, relevance float64) {
		out = append(out, domain.MovementAlert{
			Date:        records[i].Date,
			Category:    category,
			Type:        kind,
			Description: description,
			Intensity:   series.Clamp(intensity, 0, 100),
			Relevance:   series.Clamp(relevance, 0, 100),
		})
	}

	for i := max(alertLookback, len(flows)-alertLookback); i < len(flows); i++ {
		f := flows[i]

		if f > mean+2*sd && f > alertMinFlow {
			sigmas := (f - mean) / guard
			add(i, domain.AlertStrongInflow,
				fmt.Sprintf("Entrada forte de %s (%sσ acima da média)", series.FormatMillions(f), series.FormatDecimal(sigmas)),
				sigmas*25, math.Abs(f)/1000*50)
		}

		if f < mean-2*sd && f < -alertMinFlow {
			sigmas := (mean - f) / guard
			add(i, domain.AlertStrongOutflow,
				fmt.Sprintf("Saída forte de %s (%sσ abaixo da média)", series.FormatMillions(math.Abs(f)), series.FormatDecimal(sigmas)),
				sigmas*25, math.Abs(f)/1000*50)
		}

		prev := flows[i-1]
		if series.Sign(f) != series.Sign(prev) && math.Abs(f) > math.Abs(mean) {
			add(i, domain.AlertReversal,
				fmt.Sprintf("Reversão de %s para %s", flowSide(prev), flowSide(f)),
				math.Abs(f-prev)/guard*20, math.Abs(f)/500*50)
		}

		accel := f - series.Mean(flows[i-3:i])
		if math.Abs(accel) > sd && math.Abs(f) > alertMinFlow {
			kind := "vendas"
			if accel > 0 {
				kind = "compras"
			}
			add(i, domain.AlertAcceleration,
				fmt.Sprintf("Aceleração de %s: %s acima da média recente", kind, series.FormatMillions(math.Abs(accel))),
				math.Abs(accel)/guard*30, math.Abs(accel)/500*50)
		}
	}
	return out
}

func flowSide(f float64) string {
	if f > 0 {
		return "compra"
	}
	return "venda"
}
