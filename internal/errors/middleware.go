package errors

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
)

const (
	maxLoggedBody   = 500
	maxCapturedBody = 64 * 1024
)

// sensitiveFields are redacted from logged JSON bodies
var sensitiveFields = []string{
	"password", "token", "secret", "api_key", "apiKey", "dsn", "user_id", "userId",
}

// ErrorMiddleware logs failed requests with the request body attached and
// turns panics into problem responses
type ErrorMiddleware struct {
	handler *ErrorHandler
	logger  *slog.Logger
}

// NewErrorMiddleware creates a new error handling middleware
func NewErrorMiddleware(handler *ErrorHandler, logger *slog.Logger) *ErrorMiddleware {
	return &ErrorMiddleware{
		handler: handler,
		logger:  logger.With(slog.String("component", "error_middleware")),
	}
}

// Handler returns the middleware handler function
func (m *ErrorMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		// Uploads are multipart CSV payloads and are never buffered
		var requestBody []byte
		if captureBody(r) {
			requestBody, _ = io.ReadAll(r.Body)
			r.Body = io.NopCloser(bytes.NewReader(requestBody))
		}

		start := time.Now()
		defer func() {
			if rec := recover(); rec != nil {
				m.handler.HandlePanic(ww, r, rec)
			}
		}()

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status < http.StatusBadRequest {
			return
		}

		level := slog.LevelWarn
		if status >= http.StatusInternalServerError {
			level = slog.LevelError
		}

		attrs := []slog.Attr{
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", status),
			slog.Duration("duration", time.Since(start)),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		}
		if r.URL.RawQuery != "" {
			attrs = append(attrs, slog.String("query", r.URL.RawQuery))
		}
		if len(requestBody) > 0 {
			body := sanitizeRequestBody(string(requestBody))
			if len(body) > maxLoggedBody {
				body = body[:maxLoggedBody] + "..."
			}
			attrs = append(attrs, slog.String("request_body", body))
		}

		m.logger.LogAttrs(r.Context(), level, "request error", attrs...)
	})
}

func captureBody(r *http.Request) bool {
	if r.Body == nil || r.ContentLength <= 0 || r.ContentLength > maxCapturedBody {
		return false
	}
	return strings.HasPrefix(r.Header.Get("Content-Type"), "application/json")
}

// sanitizeRequestBody redacts sensitive fields from a JSON body
func sanitizeRequestBody(body string) string {
	var data map[string]interface{}
	if err := json.Unmarshal([]byte(body), &data); err != nil {
		return body
	}

	for _, field := range sensitiveFields {
		if _, exists := data[field]; exists {
			data[field] = "[REDACTED]"
		}
	}

	sanitized, err := json.Marshal(data)
	if err != nil {
		return body
	}
	return string(sanitized)
}
