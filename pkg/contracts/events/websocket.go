// Package events contains the event contracts pushed to websocket clients
// when a user's stored data changes.
package events

import (
	"time"
)

// MessageType defines the type of WebSocket message
type MessageType string

const (
	// Connection messages
	MessageTypeConnect MessageType = "connection"

	// Data messages
	MessageTypeDataUpdated   MessageType = "data.updated"
	MessageTypeAnalysisSaved MessageType = "analysis.saved"
)

// Data update kinds
const (
	KindFlows   = "flows"
	KindPrices  = "prices"
	KindCleared = "cleared"
)

// DataUpdate describes what changed in a user's stored data
type DataUpdate struct {
	Kind      string     `json:"kind"`
	Records   int        `json:"records"`
	StartDate *time.Time `json:"start_date,omitempty"`
	EndDate   *time.Time `json:"end_date,omitempty"`
}

// AnalysisSaved announces a new entry in the user's analysis history
type AnalysisSaved struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	TotalDays int       `json:"total_days"`
}
