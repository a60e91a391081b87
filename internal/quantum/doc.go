// Package quantum holds the second generation flow analyses: regime
// inflections, local peaks and valleys, accumulation and distribution cycles,
// momentum with a short-term forecast, and a per-day cross-category
// comparison.
//
// # Usage
//
//	report := quantum.Analyze(records, bars)
//	for _, p := range report.InflectionPoints {
//		fmt.Println(p.Date, p.Category, p.Type)
//	}
//
// Each analysis runs independently over the same input and shares no state
// with the others. Event-like results (inflections, extremes, cycles and
// comparisons) are returned newest first; momentum is returned in category
// order.
package quantum
