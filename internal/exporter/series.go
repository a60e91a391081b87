package exporter

import (
	"flowpulse/pkg/contracts/domain"
)

// FlowHeaders are the column names of a flow export
var FlowHeaders = []string{
	"date", "category",
	"cumulative_buys", "cumulative_sells", "cumulative_flow",
	"daily_buys", "daily_sells", "daily_flow",
}

// PriceHeaders are the column names of a price export
var PriceHeaders = []string{
	"date", "open", "high", "low", "close",
	"total_volume", "total_quantity", "point_change", "percent_change", "range",
}

// FlowsCSV converts flow records into CSV rows in the given order
func FlowsCSV(records []domain.DailyFlowRecord) WriteOptions {
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{
			formatDate(r.Date),
			r.Category,
			formatInt(r.CumulativeBuys),
			formatInt(r.CumulativeSells),
			formatInt(r.CumulativeFlow),
			formatInt(r.DailyBuys),
			formatInt(r.DailySells),
			formatInt(r.DailyFlow),
		})
	}
	return WriteOptions{Headers: FlowHeaders, Records: rows, BOMPrefix: true}
}

// PricesCSV converts price bars into CSV rows in the given order
func PricesCSV(bars []domain.DailyPriceBar) WriteOptions {
	rows := make([][]string, 0, len(bars))
	for _, b := range bars {
		rows = append(rows, []string{
			formatDate(b.Date),
			formatInt(b.Open),
			formatInt(b.High),
			formatInt(b.Low),
			formatInt(b.Close),
			b.TotalVolume.StringFixed(2),
			formatInt(b.TotalQuantity),
			formatInt(b.PointChange),
			formatFloat(b.PercentChange),
			formatInt(b.Range),
		})
	}
	return WriteOptions{Headers: PriceHeaders, Records: rows, BOMPrefix: true}
}
