package exporter

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"flowpulse/pkg/contracts/domain"
)

// Workbook sheet names
const (
	SheetSummary     = "Summary"
	SheetStats       = "Stats"
	SheetEnhanced    = "Enhanced"
	SheetTrends      = "Trends"
	SheetPatterns    = "Patterns"
	SheetAlerts      = "Alerts"
	SheetDivergences = "Divergences"
	SheetInflections = "Inflections"
	SheetExtremes    = "Extremes"
	SheetCycles      = "Cycles"
	SheetMomentum    = "Momentum"
	SheetFlows       = "Flows"
	SheetPrices      = "Prices"
)

const defaultSheet = "Sheet1"

// table is the content of one worksheet
type table struct {
	name    string
	headers []string
	rows    [][]interface{}
}

// DashboardWorkbook lays out report, and the series it was computed from,
// as an XLSX workbook. The caller must Close the returned file.
func DashboardWorkbook(report *domain.DashboardReport, flows []domain.DailyFlowRecord, prices []domain.DailyPriceBar) (*excelize.File, error) {
	if report == nil {
		return nil, fmt.Errorf("dashboard workbook: nil report")
	}

	f := excelize.NewFile()
	if err := f.SetDocProps(&excelize.DocProperties{
		Title:   "FlowPulse dashboard",
		Creator: "FlowPulse",
		Created: report.GeneratedAt.Format(time.RFC3339),
	}); err != nil {
		f.Close()
		return nil, fmt.Errorf("set document properties: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("create header style: %w", err)
	}

	tables := []table{
		summaryTable(report),
		statsTable(report.Stats),
		enhancedTable(report.Enhanced),
		trendsTable(report.PeriodTrends),
		patternsTable(report.Patterns),
		alertsTable(report.Alerts),
		divergencesTable(report.Divergences),
		inflectionsTable(report.Quantum.InflectionPoints),
		extremesTable(report.Quantum.PeaksValleys),
		cyclesTable(report.Quantum.Cycles),
		momentumTable(report.Quantum.Momentum),
		flowsTable(flows),
		pricesTable(prices),
	}

	for i, t := range tables {
		if i == 0 {
			err = f.SetSheetName(defaultSheet, t.name)
		} else {
			_, err = f.NewSheet(t.name)
		}
		if err == nil {
			err = writeTable(f, t, headerStyle)
		}
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("write sheet %s: %w", t.name, err)
		}
	}

	f.SetActiveSheet(0)
	return f, nil
}

// WriteDashboardXLSX renders the workbook straight to w
func WriteDashboardXLSX(w io.Writer, report *domain.DashboardReport, flows []domain.DailyFlowRecord, prices []domain.DailyPriceBar) error {
	f, err := DashboardWorkbook(report, flows, prices)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeTable(f *excelize.File, t table, headerStyle int) error {
	headers := make([]interface{}, len(t.headers))
	for i, h := range t.headers {
		headers[i] = h
	}
	if err := f.SetSheetRow(t.name, "A1", &headers); err != nil {
		return err
	}

	lastCol, err := excelize.ColumnNumberToName(len(t.headers))
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(t.name, "A1", lastCol+"1", headerStyle); err != nil {
		return err
	}
	if err := f.SetColWidth(t.name, "A", lastCol, 16); err != nil {
		return err
	}

	for i, row := range t.rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := row
		if err := f.SetSheetRow(t.name, cell, &row); err != nil {
			return err
		}
	}

	return f.SetPanes(t.name, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

func summaryTable(report *domain.DashboardReport) table {
	return table{
		name:    SheetSummary,
		headers: []string{"metric", "value"},
		rows: [][]interface{}{
			{"generated_at", report.GeneratedAt.UTC().Format(time.RFC3339)},
			{"flow_records", report.FlowRecords},
			{"price_bars", report.PriceBars},
			{"categories", len(report.Stats)},
			{"divergences", len(report.Divergences)},
			{"alerts", len(report.Alerts)},
		},
	}
}

func statsTable(stats []domain.DescriptiveStats) table {
	t := table{
		name: SheetStats,
		headers: []string{
			"category", "days", "mean_flow", "median_flow", "std_dev_flow",
			"buyer_days", "seller_days", "buyer_days_pct", "seller_days_pct",
			"current_trend", "total_flow", "volatility", "price_correlation",
		},
	}
	for _, s := range stats {
		t.rows = append(t.rows, []interface{}{
			s.Category, s.Days, s.MeanFlow, s.MedianFlow, s.StdDevFlow,
			s.BuyerDays, s.SellerDays, s.BuyerDaysPct, s.SellerDaysPct,
			string(s.CurrentTrend), s.TotalFlow, s.Volatility, optionalFloat(s.Correlation),
		})
	}
	return t
}

func enhancedTable(stats []domain.EnhancedStats) table {
	t := table{
		name: SheetEnhanced,
		headers: []string{
			"category", "days", "mean_flow", "current_trend",
			"buy_intensity", "sell_intensity", "consistency", "trend_strength",
		},
	}
	for _, s := range stats {
		t.rows = append(t.rows, []interface{}{
			s.Category, s.Days, s.MeanFlow, string(s.CurrentTrend),
			s.BuyIntensity, s.SellIntensity, s.Consistency, s.TrendStrength,
		})
	}
	return t
}

func trendsTable(trends []domain.CategoryTrends) table {
	t := table{
		name:    SheetTrends,
		headers: []string{"category", "period", "trend", "mean_flow", "intensity", "confidence"},
	}
	for _, ct := range trends {
		for _, p := range ct.Periods {
			t.rows = append(t.rows, []interface{}{
				ct.Category, p.Period, string(p.Trend), p.MeanFlow, p.Intensity, p.Confidence,
			})
		}
	}
	return t
}

func patternsTable(patterns []domain.BehaviorPattern) table {
	t := table{
		name:    SheetPatterns,
		headers: []string{"category", "pattern", "description", "confidence", "consecutive_days", "accumulated_flow"},
	}
	for _, p := range patterns {
		t.rows = append(t.rows, []interface{}{
			p.Category, string(p.Pattern), p.Description, p.Confidence, p.ConsecutiveDays, p.AccumulatedFlow,
		})
	}
	return t
}

func alertsTable(alerts []domain.MovementAlert) table {
	t := table{
		name:    SheetAlerts,
		headers: []string{"date", "category", "type", "description", "intensity", "relevance"},
	}
	for _, a := range alerts {
		t.rows = append(t.rows, []interface{}{
			formatDate(a.Date), a.Category, string(a.Type), a.Description, a.Intensity, a.Relevance,
		})
	}
	return t
}

func divergencesTable(divergences []domain.Divergence) table {
	t := table{
		name:    SheetDivergences,
		headers: []string{"date", "category", "type", "signal", "price", "flow", "intensity", "description"},
	}
	for _, d := range divergences {
		t.rows = append(t.rows, []interface{}{
			formatDate(d.Date), d.Category, string(d.Type), string(d.Signal),
			d.Price, d.Flow, d.Intensity, d.Description,
		})
	}
	return t
}

func inflectionsTable(points []domain.InflectionPoint) table {
	t := table{
		name: SheetInflections,
		headers: []string{
			"date", "category", "type", "previous_flow", "current_flow",
			"variation", "intensity", "days_in_regime",
		},
	}
	for _, p := range points {
		t.rows = append(t.rows, []interface{}{
			formatDate(p.Date), p.Category, string(p.Type), p.PreviousFlow, p.CurrentFlow,
			p.Variation, p.Intensity, p.DaysInRegime,
		})
	}
	return t
}

func extremesTable(extremes []domain.PeakOrValley) table {
	t := table{
		name:    SheetExtremes,
		headers: []string{"date", "category", "type", "value", "intensity", "context", "days_to_next"},
	}
	for _, e := range extremes {
		var daysToNext interface{} = ""
		if e.DaysToNext != nil {
			daysToNext = *e.DaysToNext
		}
		t.rows = append(t.rows, []interface{}{
			formatDate(e.Date), e.Category, string(e.Type), e.Value, e.Intensity, e.Context, daysToNext,
		})
	}
	return t
}

func cyclesTable(cycles []domain.FlowCycle) table {
	t := table{
		name: SheetCycles,
		headers: []string{
			"category", "start_date", "end_date", "type", "days",
			"mean_flow", "total_flow", "consistency", "force",
		},
	}
	for _, c := range cycles {
		t.rows = append(t.rows, []interface{}{
			c.Category, formatDate(c.StartDate), formatDate(c.EndDate), string(c.Type), c.Days,
			c.MeanFlow, c.TotalFlow, c.Consistency, c.Force,
		})
	}
	return t
}

func momentumTable(momentum []domain.MomentumAnalysis) table {
	t := table{
		name: SheetMomentum,
		headers: []string{
			"category", "momentum", "velocity", "acceleration", "direction",
			"trend_strength", "forecast_3_days", "forecast_confidence",
		},
	}
	for _, m := range momentum {
		t.rows = append(t.rows, []interface{}{
			m.Category, m.Momentum, m.Velocity, m.Acceleration, string(m.Direction),
			m.TrendStrength, string(m.Forecast3Days), m.ForecastConfidence,
		})
	}
	return t
}

func flowsTable(records []domain.DailyFlowRecord) table {
	t := table{name: SheetFlows, headers: FlowHeaders}
	for _, r := range records {
		t.rows = append(t.rows, []interface{}{
			formatDate(r.Date), r.Category,
			r.CumulativeBuys, r.CumulativeSells, r.CumulativeFlow,
			r.DailyBuys, r.DailySells, r.DailyFlow,
		})
	}
	return t
}

func pricesTable(bars []domain.DailyPriceBar) table {
	t := table{name: SheetPrices, headers: PriceHeaders}
	for _, b := range bars {
		volume, _ := b.TotalVolume.Float64()
		t.rows = append(t.rows, []interface{}{
			formatDate(b.Date), b.Open, b.High, b.Low, b.Close,
			volume, b.TotalQuantity, b.PointChange, b.PercentChange, b.Range,
		})
	}
	return t
}

func optionalFloat(v *float64) interface{} {
	if v == nil {
		return ""
	}
	return *v
}
