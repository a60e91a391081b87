package testutil

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"testing"
)

// LogRecord represents a captured log record
type LogRecord struct {
	Level   slog.Level
	Message string
	Attrs   map[string]any
}

// LogCapture is a slog.Handler that keeps every record for later assertions
type LogCapture struct {
	mu      *sync.Mutex
	records *[]LogRecord
	attrs   []slog.Attr
	t       *testing.T
}

// NewLogCapture creates a capturing handler. Records are echoed to t.Logf when t is set.
func NewLogCapture(t *testing.T) *LogCapture {
	return &LogCapture{
		mu:      &sync.Mutex{},
		records: &[]LogRecord{},
		t:       t,
	}
}

// NewTestLogger creates a logger backed by a LogCapture
func NewTestLogger(t *testing.T) (*slog.Logger, *LogCapture) {
	capture := NewLogCapture(t)
	return slog.New(capture), capture
}

// Enabled implements slog.Handler
func (h *LogCapture) Enabled(context.Context, slog.Level) bool {
	return true
}

// Handle implements slog.Handler
func (h *LogCapture) Handle(_ context.Context, r slog.Record) error {
	attrs := make(map[string]any, len(h.attrs)+r.NumAttrs())
	for _, a := range h.attrs {
		attrs[a.Key] = a.Value.Any()
	}
	r.Attrs(func(a slog.Attr) bool {
		attrs[a.Key] = a.Value.Any()
		return true
	})

	h.mu.Lock()
	*h.records = append(*h.records, LogRecord{Level: r.Level, Message: r.Message, Attrs: attrs})
	h.mu.Unlock()

	if h.t != nil {
		h.t.Logf("[%s] %s %v", r.Level, r.Message, attrs)
	}
	return nil
}

// WithAttrs implements slog.Handler
func (h *LogCapture) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	next.attrs = append(append([]slog.Attr{}, h.attrs...), attrs...)
	return &next
}

// WithGroup implements slog.Handler. Groups are flattened.
func (h *LogCapture) WithGroup(string) slog.Handler {
	return h
}

// Records returns a copy of all captured records
func (h *LogCapture) Records() []LogRecord {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]LogRecord, len(*h.records))
	copy(out, *h.records)
	return out
}

// CountLevel returns how many records were logged at level
func (h *LogCapture) CountLevel(level slog.Level) int {
	n := 0
	for _, r := range h.Records() {
		if r.Level == level {
			n++
		}
	}
	return n
}

// ContainsMessage reports whether any record message contains msg
func (h *LogCapture) ContainsMessage(msg string) bool {
	for _, r := range h.Records() {
		if strings.Contains(r.Message, msg) {
			return true
		}
	}
	return false
}

// ContainsAttr reports whether any record carries key=value
func (h *LogCapture) ContainsAttr(key string, value any) bool {
	for _, r := range h.Records() {
		if v, ok := r.Attrs[key]; ok && v == value {
			return true
		}
	}
	return false
}
