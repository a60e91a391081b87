package infrastructure

import (
	"context"
	"log/slog"
	"sync"
)

type ctxKey int

const (
	traceIDKey ctxKey = iota
	userIDKey
	scopeKey
)

// RequestScope is a mutable holder placed in the context by the outermost
// request middleware. Values set further down the chain, such as the user ID
// resolved by the authentication middleware, become visible to it after the
// handler returns.
type RequestScope struct {
	mu     sync.RWMutex
	userID string
}

// WithRequestScope attaches a fresh RequestScope to ctx
func WithRequestScope(ctx context.Context) (context.Context, *RequestScope) {
	scope := &RequestScope{}
	return context.WithValue(ctx, scopeKey, scope), scope
}

// UserID returns the user recorded during the request, or ""
func (s *RequestScope) UserID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.userID
}

// WithUserID stores the caller's user ID in ctx and records it on the
// enclosing RequestScope, if any.
func WithUserID(ctx context.Context, userID string) context.Context {
	if scope, ok := ctx.Value(scopeKey).(*RequestScope); ok {
		scope.mu.Lock()
		scope.userID = userID
		scope.mu.Unlock()
	}
	return context.WithValue(ctx, userIDKey, userID)
}

// UserIDFromContext returns the user ID stored with WithUserID, or ""
func UserIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(userIDKey).(string); ok {
		return id
	}
	return ""
}

// WithTraceID adds a trace ID to the context
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceIDKey, traceID)
}

// GetTraceID retrieves the trace ID from context
func GetTraceID(ctx context.Context) string {
	if traceID, ok := ctx.Value(traceIDKey).(string); ok {
		return traceID
	}
	return ""
}

// WithComponent creates a logger with a component field
func WithComponent(logger *slog.Logger, component string) *slog.Logger {
	if logger == nil {
		logger = GetLogger()
	}
	return logger.With(slog.String("component", component))
}
