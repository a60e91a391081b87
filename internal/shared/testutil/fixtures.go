package testutil

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"flowpulse/pkg/contracts/domain"
)

// Day returns a UTC calendar date
func Day(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// FormatBR formats v with pt-BR separators and two decimals, e.g. 1234.5 -> "1.234,50"
func FormatBR(v float64) string {
	sign := ""
	if v < 0 {
		sign = "-"
		v = math.Abs(v)
	}
	raw := fmt.Sprintf("%.2f", v)
	intPart, frac, _ := strings.Cut(raw, ".")

	var grouped strings.Builder
	for i, c := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			grouped.WriteByte('.')
		}
		grouped.WriteRune(c)
	}
	return sign + grouped.String() + "," + frac
}

// FlowRow is one category line of a flow report, in thousands of BRL
type FlowRow struct {
	Category string
	Buys     float64
	Sells    float64
}

// FlowReportCSV renders a B3 investor participation report for date
func FlowReportCSV(date time.Time, rows ...FlowRow) string {
	var b strings.Builder
	b.WriteString("Participação dos Investidores\n")
	fmt.Fprintf(&b, "Dados acumulados do início do mês até o dia %s\n", date.Format("02/01/2006"))
	b.WriteString("Tipos de Investidores;Compras (R$ mil);Part. (%);Vendas (R$ mil);Part. (%)\n")
	for _, r := range rows {
		fmt.Fprintf(&b, "%s;%s;0,00;%s;0,00\n", r.Category, FormatBR(r.Buys), FormatBR(r.Sells))
	}
	return b.String()
}

// QuoteRow is one intraday WINFUT quote
type QuoteRow struct {
	Date     time.Time
	Time     string
	Open     float64
	High     float64
	Low      float64
	Close    float64
	Volume   float64
	Quantity int
}

// QuotesCSV renders a Profit-style quote export with header
func QuotesCSV(rows ...QuoteRow) string {
	var b strings.Builder
	b.WriteString("Ativo;Data;Hora;Abertura;Máximo;Mínimo;Fechamento;Volume;Quantidade\n")
	for _, r := range rows {
		at := r.Time
		if at == "" {
			at = "10:00:00"
		}
		fmt.Fprintf(&b, "WINFUT;%s;%s;%s;%s;%s;%s;%s;%d\n",
			r.Date.Format("02/01/2006"), at,
			FormatBR(r.Open), FormatBR(r.High), FormatBR(r.Low), FormatBR(r.Close),
			FormatBR(r.Volume), r.Quantity)
	}
	return b.String()
}

// FlowSeries builds one record per consecutive calendar day starting at start
func FlowSeries(category string, start time.Time, flows ...int64) []domain.DailyFlowRecord {
	records := make([]domain.DailyFlowRecord, len(flows))
	for i, f := range flows {
		buys, sells := f, int64(0)
		if f < 0 {
			buys, sells = 0, -f
		}
		records[i] = domain.DailyFlowRecord{
			Date:            start.AddDate(0, 0, i),
			Category:        category,
			CumulativeBuys:  buys,
			CumulativeSells: sells,
			CumulativeFlow:  f,
			DailyBuys:       buys,
			DailySells:      sells,
			DailyFlow:       f,
		}
	}
	return records
}

// PriceSeries builds one bar per consecutive calendar day with the given closes
func PriceSeries(start time.Time, closes ...int64) []domain.DailyPriceBar {
	bars := make([]domain.DailyPriceBar, len(closes))
	for i, c := range closes {
		bars[i] = domain.DailyPriceBar{
			Date:        start.AddDate(0, 0, i),
			Open:        c,
			High:        c + 100,
			Low:         c - 100,
			Close:       c,
			TotalVolume: decimal.NewFromInt(1000),
			Range:       200,
		}
		if i > 0 && closes[i-1] != 0 {
			bars[i].PointChange = c - closes[i-1]
			bars[i].PercentChange = float64(c-closes[i-1]) / float64(closes[i-1]) * 100
		}
	}
	return bars
}
