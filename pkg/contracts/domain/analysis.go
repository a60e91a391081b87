package domain

import (
	"time"
)

// SavedAnalysis is a named snapshot of an analysed period kept in the user's history
type SavedAnalysis struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	StartDate   time.Time `json:"start_date"`
	EndDate     time.Time `json:"end_date"`
	TotalDays   int       `json:"total_days"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// DashboardReport carries every analytics report computed over one data snapshot
type DashboardReport struct {
	GeneratedAt  time.Time          `json:"generated_at"`
	FlowRecords  int                `json:"flow_records"`
	PriceBars    int                `json:"price_bars"`
	Stats        []DescriptiveStats `json:"stats"`
	Enhanced     []EnhancedStats    `json:"enhanced"`
	PeriodTrends []CategoryTrends   `json:"period_trends"`
	Patterns     []BehaviorPattern  `json:"patterns"`
	Alerts       []MovementAlert    `json:"alerts"`
	Divergences  []Divergence       `json:"divergences"`
	Quantum      QuantumReport      `json:"quantum"`
}
