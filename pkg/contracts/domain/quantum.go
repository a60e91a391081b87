package domain

import (
	"time"
)

// Direction is a coarse regime label shared by inflections and forecasts
type Direction string

const (
	DirectionUp      Direction = "ALTA"
	DirectionDown    Direction = "BAIXA"
	DirectionLateral Direction = "LATERAL"
)

// InflectionType labels a regime change by its (prior, new) combination
type InflectionType string

const (
	InflectionStartUp      InflectionType = "INICIO_ALTA"
	InflectionStartDown    InflectionType = "INICIO_BAIXA"
	InflectionReversalUp   InflectionType = "REVERSAO_ALTA"
	InflectionReversalDown InflectionType = "REVERSAO_BAIXA"
)

// InflectionPoint marks the day a category's trailing trend changed regime
type InflectionPoint struct {
	Date         time.Time      `json:"date"`
	Category     string         `json:"category"`
	Type         InflectionType `json:"type"`
	PreviousFlow float64        `json:"previous_flow"` // mean of the prior regime
	CurrentFlow  float64        `json:"current_flow"`
	Variation    float64        `json:"variation"` // percent
	Intensity    float64        `json:"intensity"` // 0-100
	DaysInRegime int            `json:"days_in_regime"`
}

// ExtremeType labels a local peak or valley
type ExtremeType string

const (
	ExtremeBuyPeak     ExtremeType = "PICO_COMPRA"
	ExtremeLocalPeak   ExtremeType = "PICO_LOCAL"
	ExtremeSellValley  ExtremeType = "VALE_VENDA"
	ExtremeLocalValley ExtremeType = "VALE_LOCAL"
)

// IsPeak reports whether the extreme is a peak
func (e ExtremeType) IsPeak() bool {
	return e == ExtremeBuyPeak || e == ExtremeLocalPeak
}

// PeakOrValley is a local extreme of a category's daily flow
type PeakOrValley struct {
	Date       time.Time   `json:"date"`
	Category   string      `json:"category"`
	Type       ExtremeType `json:"type"`
	Value      float64     `json:"value"`
	Intensity  float64     `json:"intensity"` // 0-100
	Context    string      `json:"context"`
	DaysToNext *int        `json:"days_to_next,omitempty"`
}

// CycleType is the regime of a flow cycle
type CycleType string

const (
	CycleAccumulation CycleType = "ACUMULACAO"
	CycleDistribution CycleType = "DISTRIBUICAO"
	CycleLateral      CycleType = "LATERAL"
)

// FlowCycle is a maximal run of days sharing one regime
type FlowCycle struct {
	Category    string    `json:"category"`
	StartDate   time.Time `json:"start_date"`
	EndDate     time.Time `json:"end_date"`
	Type        CycleType `json:"type"`
	Days        int       `json:"days"`
	MeanFlow    float64   `json:"mean_flow"`
	TotalFlow   float64   `json:"total_flow"`
	Consistency float64   `json:"consistency"` // 0-100
	Force       float64   `json:"force"`       // 0-100
}

// MomentumDirection combines velocity and acceleration signs
type MomentumDirection string

const (
	MomentumAcceleratingBuy  MomentumDirection = "ACELERANDO_COMPRA"
	MomentumDeceleratingBuy  MomentumDirection = "DESACELERANDO_COMPRA"
	MomentumAcceleratingSell MomentumDirection = "ACELERANDO_VENDA"
	MomentumDeceleratingSell MomentumDirection = "DESACELERANDO_VENDA"
	MomentumStable           MomentumDirection = "ESTAVEL"
)

// MomentumAnalysis scores the recent momentum of a category
type MomentumAnalysis struct {
	Category           string            `json:"category"`
	Momentum           float64           `json:"momentum"`
	Velocity           float64           `json:"velocity"`
	Acceleration       float64           `json:"acceleration"`
	Direction          MomentumDirection `json:"direction"`
	TrendStrength      float64           `json:"trend_strength"` // 0-100
	Forecast3Days      Direction         `json:"forecast_3_days"`
	ForecastConfidence float64           `json:"forecast_confidence"` // 0-100
}

// CategoryShare is one category's part of a day's absolute flow
type CategoryShare struct {
	Category string  `json:"category"`
	Flow     float64 `json:"flow"`
	Share    float64 `json:"share"` // percent of the day's total absolute flow
}

// DailyComparison ranks categories against each other on one day
type DailyComparison struct {
	Date        time.Time       `json:"date"`
	Categories  []CategoryShare `json:"categories"`
	Dominant    string          `json:"dominant"`
	Divergence  bool            `json:"divergence"`
	Description string          `json:"description"`
}

// QuantumReport bundles the five quantum sub-analyses
type QuantumReport struct {
	InflectionPoints []InflectionPoint  `json:"inflection_points"`
	PeaksValleys     []PeakOrValley     `json:"peaks_valleys"`
	Cycles           []FlowCycle        `json:"cycles"`
	Momentum         []MomentumAnalysis `json:"momentum"`
	Comparison       []DailyComparison  `json:"comparison"`
}
