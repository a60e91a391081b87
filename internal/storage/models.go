package storage

import (
	"time"

	"github.com/shopspring/decimal"

	"flowpulse/pkg/contracts/domain"
)

// flowModel is the b3_flows table row
type flowModel struct {
	ID              uint      `gorm:"primaryKey;autoIncrement"`
	UserID          string    `gorm:"size:64;not null;uniqueIndex:idx_flows_user_date_category,priority:1"`
	Date            time.Time `gorm:"type:date;not null;uniqueIndex:idx_flows_user_date_category,priority:2"`
	Category        string    `gorm:"size:100;not null;uniqueIndex:idx_flows_user_date_category,priority:3"`
	CumulativeBuys  int64     `gorm:"not null"`
	CumulativeSells int64     `gorm:"not null"`
	CumulativeFlow  int64     `gorm:"not null"`
	DailyBuys       int64     `gorm:"not null;default:0"`
	DailySells      int64     `gorm:"not null;default:0"`
	DailyFlow       int64     `gorm:"not null;default:0"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (flowModel) TableName() string {
	return "b3_flows"
}

// priceModel is the winfut_bars table row
type priceModel struct {
	ID            uint            `gorm:"primaryKey;autoIncrement"`
	UserID        string          `gorm:"size:64;not null;uniqueIndex:idx_prices_user_date,priority:1"`
	Date          time.Time       `gorm:"type:date;not null;uniqueIndex:idx_prices_user_date,priority:2"`
	Open          int64           `gorm:"not null"`
	High          int64           `gorm:"not null"`
	Low           int64           `gorm:"not null"`
	Close         int64           `gorm:"not null"`
	TotalVolume   decimal.Decimal `gorm:"type:numeric(24,2);not null"`
	TotalQuantity int64           `gorm:"not null"`
	PointChange   int64           `gorm:"not null;default:0"`
	PercentChange float64         `gorm:"not null;default:0"`
	Range         int64           `gorm:"column:price_range;not null;default:0"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (priceModel) TableName() string {
	return "winfut_bars"
}

// analysisModel is the analyses table row
type analysisModel struct {
	ID          string    `gorm:"primaryKey;size:36"`
	UserID      string    `gorm:"size:64;not null;index"`
	Name        string    `gorm:"size:255;not null"`
	Description string    `gorm:"type:text"`
	StartDate   time.Time `gorm:"type:date;not null"`
	EndDate     time.Time `gorm:"type:date;not null"`
	TotalDays   int       `gorm:"not null"`
	CreatedAt   time.Time `gorm:"index"`
	UpdatedAt   time.Time
}

func (analysisModel) TableName() string {
	return "analyses"
}

func newFlowModel(userID string, r domain.DailyFlowRecord) flowModel {
	return flowModel{
		UserID:          userID,
		Date:            r.Date,
		Category:        r.Category,
		CumulativeBuys:  r.CumulativeBuys,
		CumulativeSells: r.CumulativeSells,
		CumulativeFlow:  r.CumulativeFlow,
		DailyBuys:       r.DailyBuys,
		DailySells:      r.DailySells,
		DailyFlow:       r.DailyFlow,
	}
}

func (m flowModel) toDomain() domain.DailyFlowRecord {
	return domain.DailyFlowRecord{
		Date:            utcDay(m.Date),
		Category:        m.Category,
		CumulativeBuys:  m.CumulativeBuys,
		CumulativeSells: m.CumulativeSells,
		CumulativeFlow:  m.CumulativeFlow,
		DailyBuys:       m.DailyBuys,
		DailySells:      m.DailySells,
		DailyFlow:       m.DailyFlow,
	}
}

func newPriceModel(userID string, b domain.DailyPriceBar) priceModel {
	return priceModel{
		UserID:        userID,
		Date:          b.Date,
		Open:          b.Open,
		High:          b.High,
		Low:           b.Low,
		Close:         b.Close,
		TotalVolume:   b.TotalVolume,
		TotalQuantity: b.TotalQuantity,
		PointChange:   b.PointChange,
		PercentChange: b.PercentChange,
		Range:         b.Range,
	}
}

func (m priceModel) toDomain() domain.DailyPriceBar {
	return domain.DailyPriceBar{
		Date:          utcDay(m.Date),
		Open:          m.Open,
		High:          m.High,
		Low:           m.Low,
		Close:         m.Close,
		TotalVolume:   m.TotalVolume,
		TotalQuantity: m.TotalQuantity,
		PointChange:   m.PointChange,
		PercentChange: m.PercentChange,
		Range:         m.Range,
	}
}

func newAnalysisModel(a domain.SavedAnalysis) analysisModel {
	return analysisModel{
		ID:          a.ID,
		UserID:      a.UserID,
		Name:        a.Name,
		Description: a.Description,
		StartDate:   a.StartDate,
		EndDate:     a.EndDate,
		TotalDays:   a.TotalDays,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
}

func (m analysisModel) toDomain() domain.SavedAnalysis {
	return domain.SavedAnalysis{
		ID:          m.ID,
		UserID:      m.UserID,
		Name:        m.Name,
		Description: m.Description,
		StartDate:   utcDay(m.StartDate),
		EndDate:     utcDay(m.EndDate),
		TotalDays:   m.TotalDays,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

// utcDay normalizes a date column to midnight UTC
func utcDay(t time.Time) time.Time {
	y, mo, d := t.Date()
	return time.Date(y, mo, d, 0, 0, 0, 0, time.UTC)
}
