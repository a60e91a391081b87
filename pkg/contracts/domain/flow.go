package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the calendar-day layout used for keys and JSON dates
const DateLayout = "2006-01-02"

// UploadedFile is the raw decoded text of one uploaded report
type UploadedFile struct {
	Name    string `json:"name" validate:"required,max=255"`
	Content string `json:"content" validate:"required"`
}

// DailyFlowRecord is one investor category on one calendar day.
// Currency fields are thousands of BRL. Cumulative fields are month-to-date
// as published by B3, daily fields are derived by differencing.
type DailyFlowRecord struct {
	Date            time.Time `json:"date"`
	Category        string    `json:"category"`
	CumulativeBuys  int64     `json:"cumulative_buys"`
	CumulativeSells int64     `json:"cumulative_sells"`
	CumulativeFlow  int64     `json:"cumulative_flow"`
	DailyBuys       int64     `json:"daily_buys"`
	DailySells      int64     `json:"daily_sells"`
	DailyFlow       int64     `json:"daily_flow"`
}

// Key returns the (date, category) identity of the record
func (r DailyFlowRecord) Key() string {
	return r.Date.Format(DateLayout) + "|" + r.Category
}

// IsConsistent checks the flow = buys - sells invariants
func (r DailyFlowRecord) IsConsistent() bool {
	return r.CumulativeFlow == r.CumulativeBuys-r.CumulativeSells &&
		r.DailyFlow == r.DailyBuys-r.DailySells
}

// DailyPriceBar is one calendar day of the tracked index future (WINFUT),
// aggregated from intraday quote rows.
type DailyPriceBar struct {
	Date          time.Time       `json:"date"`
	Open          int64           `json:"open"`
	High          int64           `json:"high"`
	Low           int64           `json:"low"`
	Close         int64           `json:"close"`
	TotalVolume   decimal.Decimal `json:"total_volume"`
	TotalQuantity int64           `json:"total_quantity"`
	PointChange   int64           `json:"point_change"`
	PercentChange float64         `json:"percent_change"`
	Range         int64           `json:"range"`
}

// IsValid checks the OHLC envelope invariants
func (b DailyPriceBar) IsValid() bool {
	return b.High >= b.Open && b.High >= b.Close && b.High >= b.Low &&
		b.Low <= b.Open && b.Low <= b.Close
}

// IngestionWarning describes a file or row skipped during ingestion
type IngestionWarning struct {
	File   string `json:"file,omitempty"`
	Line   int    `json:"line,omitempty"`
	Reason string `json:"reason"`
}

// UploadSummary is returned to callers after a successful upload
type UploadSummary struct {
	Success      bool               `json:"success"`
	TotalRecords int                `json:"total_records"`
	StartDate    *time.Time         `json:"start_date,omitempty"`
	EndDate      *time.Time         `json:"end_date,omitempty"`
	Warnings     []IngestionWarning `json:"warnings,omitempty"`
}
