package domain

import (
	"time"
)

// Trend classifies the net side of an investor category
type Trend string

const (
	TrendBuyer   Trend = "COMPRADOR"
	TrendSeller  Trend = "VENDEDOR"
	TrendNeutral Trend = "NEUTRO"
)

// DescriptiveStats summarizes one category's daily flow series
type DescriptiveStats struct {
	Category      string   `json:"category"`
	Days          int      `json:"days"`
	MeanFlow      float64  `json:"mean_flow"`
	MedianFlow    float64  `json:"median_flow"`
	StdDevFlow    float64  `json:"std_dev_flow"`
	BuyerDays     int      `json:"buyer_days"`
	SellerDays    int      `json:"seller_days"`
	BuyerDaysPct  float64  `json:"buyer_days_pct"`
	SellerDaysPct float64  `json:"seller_days_pct"`
	CurrentTrend  Trend    `json:"current_trend"`
	TotalFlow     float64  `json:"total_flow"`
	Volatility    float64  `json:"volatility"`
	Correlation   *float64 `json:"price_correlation,omitempty"`
}

// DivergenceType is the direction of a price/flow divergence
type DivergenceType string

const (
	DivergenceBullish DivergenceType = "ALTA"
	DivergenceBearish DivergenceType = "BAIXA"
)

// Signal is the trading side suggested by a divergence
type Signal string

const (
	SignalBuy  Signal = "COMPRA"
	SignalSell Signal = "VENDA"
)

// Divergence flags a window where price made a new extreme that flow did not confirm
type Divergence struct {
	Date        time.Time      `json:"date"`
	Category    string         `json:"category,omitempty"`
	Type        DivergenceType `json:"type"`
	Description string         `json:"description"`
	Signal      Signal         `json:"signal"`
	Price       int64          `json:"price"`
	Flow        int64          `json:"flow"`
	Intensity   float64        `json:"intensity"` // 0-1
}

// EnhancedStats extends DescriptiveStats with intensity, consistency and trend strength
type EnhancedStats struct {
	DescriptiveStats
	BuyIntensity  float64 `json:"buy_intensity"`
	SellIntensity float64 `json:"sell_intensity"`
	Consistency   float64 `json:"consistency"`    // 0-100
	TrendStrength float64 `json:"trend_strength"` // -100..100
}

// PeriodTrend scores the trailing window of one horizon
type PeriodTrend struct {
	Period     string  `json:"period"` // 7d, 14d, 30d
	Trend      Trend   `json:"trend"`
	MeanFlow   float64 `json:"mean_flow"`
	Intensity  float64 `json:"intensity"`  // 0-100
	Confidence float64 `json:"confidence"` // 0-100
}

// CategoryTrends groups the period trends of one category
type CategoryTrends struct {
	Category string        `json:"category"`
	Periods  []PeriodTrend `json:"periods"`
}

// PatternType names a detected behavior pattern
type PatternType string

const (
	PatternAccumulation PatternType = "ACUMULACAO_CONSISTENTE"
	PatternDistribution PatternType = "DISTRIBUICAO_CONSISTENTE"
	PatternReversal     PatternType = "REVERSAO_RECENTE"
)

// BehaviorPattern is a run-based pattern found in a category's flow
type BehaviorPattern struct {
	Category        string      `json:"category"`
	Pattern         PatternType `json:"pattern"`
	Description     string      `json:"description"`
	Confidence      float64     `json:"confidence"` // 0-100
	ConsecutiveDays int         `json:"consecutive_days"`
	AccumulatedFlow float64     `json:"accumulated_flow"`
}

// AlertType names a movement alert
type AlertType string

const (
	AlertStrongInflow  AlertType = "ENTRADA_FORTE"
	AlertStrongOutflow AlertType = "SAIDA_FORTE"
	AlertReversal      AlertType = "REVERSAO"
	AlertAcceleration  AlertType = "ACELERACAO"
)

// MovementAlert flags an unusual recent day for a category
type MovementAlert struct {
	Date        time.Time `json:"date"`
	Category    string    `json:"category"`
	Type        AlertType `json:"type"`
	Description string    `json:"description"`
	Intensity   float64   `json:"intensity"` // 0-100
	Relevance   float64   `json:"relevance"` // 0-100
}
