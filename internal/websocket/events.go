package websocket

import (
	"time"

	"flowpulse/pkg/contracts/events"
)

// Event types pushed to clients
const (
	TypeConnection    = string(events.MessageTypeConnect)
	TypeDataUpdated   = string(events.MessageTypeDataUpdated)
	TypeAnalysisSaved = string(events.MessageTypeAnalysisSaved)
)

// DataUpdate describes what changed in a user's stored data
type DataUpdate = events.DataUpdate

// Event is the JSON frame written to websocket clients
type Event struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	TraceID   string      `json:"trace_id,omitempty"`
}

// envelope is a marshalled event addressed to one user, or to everyone
// when userID is empty
type envelope struct {
	userID    string
	eventType string
	payload   []byte
}
