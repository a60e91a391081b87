package errors

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime"
	"runtime/debug"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"flowpulse/internal/dataprocessing"
	"flowpulse/internal/services"
	"flowpulse/internal/storage"
)

// Common error types following RFC 7807
const (
	TypeValidation       = "/errors/validation"
	TypeNotFound         = "/errors/not-found"
	TypeUnauthorized     = "/errors/unauthorized"
	TypeRateLimit        = "/errors/rate-limit"
	TypeInternal         = "/errors/internal"
	TypeServiceDown      = "/errors/service-unavailable"
	TypeTimeout          = "/errors/timeout"
	TypeConflict         = "/errors/conflict"
	TypePayloadTooLarge  = "/errors/payload-too-large"
	TypeNoValidData      = "/errors/data/no-valid-records"
	TypeMethodNotAllowed = "/errors/method-not-allowed"
)

// sentinelMapping binds a sentinel error to the API error it surfaces as
type sentinelMapping struct {
	target error
	api    *APIError
}

// ErrorHandler provides centralized error handling
type ErrorHandler struct {
	logger       *slog.Logger
	includeStack bool
	sentinels    []sentinelMapping
}

// NewErrorHandler creates a new error handler that already knows the
// ingestion, storage and service sentinel errors
func NewErrorHandler(logger *slog.Logger, includeStack bool) *ErrorHandler {
	h := &ErrorHandler{
		logger:       logger.With(slog.String("component", "error_handler")),
		includeStack: includeStack,
	}

	h.Map(dataprocessing.ErrNoFiles, http.StatusBadRequest, "NO_FILES")
	h.Map(dataprocessing.ErrTooManyFiles, http.StatusBadRequest, "TOO_MANY_FILES")
	h.Map(dataprocessing.ErrNoValidRecords, http.StatusUnprocessableEntity, ErrNoValidData.ErrorCode)
	h.Map(dataprocessing.ErrReportDateNotFound, http.StatusUnprocessableEntity, "REPORT_DATE_NOT_FOUND")
	h.Map(dataprocessing.ErrInvalidNumber, http.StatusUnprocessableEntity, "INVALID_NUMBER")
	h.Map(storage.ErrNotFound, http.StatusNotFound, ErrNotFound.ErrorCode)
	h.Map(storage.ErrMissingUser, http.StatusUnauthorized, ErrUnauthorized.ErrorCode)
	h.Map(services.ErrNoData, http.StatusUnprocessableEntity, "NO_DATA")
	h.Map(services.ErrInvalidDateRange, http.StatusBadRequest, "INVALID_DATE_RANGE")
	h.Map(services.ErrInvalidInput, http.StatusBadRequest, ErrInvalidParameter.ErrorCode)
	return h
}

// Map registers a sentinel error so that any error wrapping it is rendered
// with status and code. The error text becomes the problem detail.
func (h *ErrorHandler) Map(target error, status int, code string) {
	h.sentinels = append(h.sentinels, sentinelMapping{
		target: target,
		api:    New(status, code, target.Error()),
	})
}

// HandleError converts any error to RFC 7807 format and responds
func (h *ErrorHandler) HandleError(w http.ResponseWriter, r *http.Request, err error) {
	if err == nil {
		return
	}

	reqID := middleware.GetReqID(r.Context())
	problem := h.ErrorToProblem(err, r)
	problem.WithExtension("trace_id", reqID)

	level := slog.LevelWarn
	if problem.Status >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	h.logger.LogAttrs(r.Context(), level, "request failed",
		slog.String("error", err.Error()),
		slog.Int("status", problem.Status),
		slog.String("request_id", reqID),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
	)

	if h.includeStack && problem.Status >= http.StatusInternalServerError {
		problem.WithExtension("stack", getStackTrace())
	}

	render.Render(w, r, problem)
}

// ErrorToProblem converts an error to RFC 7807 Problem Details
func (h *ErrorHandler) ErrorToProblem(err error, r *http.Request) *ProblemDetails {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return NewProblemDetails(
			http.StatusGatewayTimeout,
			TypeTimeout,
			"Request Timeout",
			"The request took too long to process and was cancelled",
			r.URL.Path,
		)
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return h.apiErrorToProblem(apiErr, r)
	}

	var maxBytes *http.MaxBytesError
	if errors.As(err, &maxBytes) {
		return h.apiErrorToProblem(ErrPayloadTooLarge, r).
			WithExtension("limit_bytes", maxBytes.Limit)
	}

	for _, m := range h.sentinels {
		if errors.Is(err, m.target) {
			problem := h.apiErrorToProblem(m.api, r)
			problem.Detail = err.Error()
			return problem
		}
	}

	return NewProblemDetails(
		http.StatusInternalServerError,
		TypeInternal,
		"Internal Server Error",
		"An unexpected error occurred while processing your request",
		r.URL.Path,
	)
}

// apiErrorToProblem converts APIError to ProblemDetails
func (h *ErrorHandler) apiErrorToProblem(apiErr *APIError, r *http.Request) *ProblemDetails {
	problem := NewProblemDetails(
		apiErr.StatusCode,
		problemType(apiErr.StatusCode),
		http.StatusText(apiErr.StatusCode),
		apiErr.Message,
		r.URL.Path,
	).WithExtension("error_code", apiErr.ErrorCode)

	if apiErr.Details != nil {
		problem.WithExtension("details", apiErr.Details)
	}
	return problem
}

// problemType maps a status code onto a problem type URI
func problemType(status int) string {
	switch status {
	case http.StatusBadRequest:
		return TypeValidation
	case http.StatusUnauthorized:
		return TypeUnauthorized
	case http.StatusNotFound:
		return TypeNotFound
	case http.StatusMethodNotAllowed:
		return TypeMethodNotAllowed
	case http.StatusConflict:
		return TypeConflict
	case http.StatusRequestEntityTooLarge:
		return TypePayloadTooLarge
	case http.StatusUnprocessableEntity:
		return TypeNoValidData
	case http.StatusTooManyRequests:
		return TypeRateLimit
	case http.StatusServiceUnavailable:
		return TypeServiceDown
	case http.StatusGatewayTimeout:
		return TypeTimeout
	default:
		return TypeInternal
	}
}

// HandlePanic recovers from panics and returns RFC 7807 error
func (h *ErrorHandler) HandlePanic(w http.ResponseWriter, r *http.Request, recovered interface{}) {
	reqID := middleware.GetReqID(r.Context())

	h.logger.ErrorContext(r.Context(), "panic recovered",
		slog.Any("panic", recovered),
		slog.String("request_id", reqID),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.String("stack", string(debug.Stack())),
	)

	problem := NewProblemDetails(
		http.StatusInternalServerError,
		TypeInternal,
		"Internal Server Error",
		"An unexpected error occurred",
		r.URL.Path,
	).WithExtension("trace_id", reqID)

	if h.includeStack {
		problem.WithExtension("panic", fmt.Sprintf("%v", recovered))
		problem.WithExtension("stack", getStackTrace())
	}

	render.Render(w, r, problem)
}

// NotFound returns a standard 404 error
func (h *ErrorHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	problem := NewProblemDetails(
		http.StatusNotFound,
		TypeNotFound,
		"Not Found",
		"The requested resource was not found",
		r.URL.Path,
	).WithExtension("trace_id", middleware.GetReqID(r.Context()))

	render.Render(w, r, problem)
}

// MethodNotAllowed returns a standard 405 error
func (h *ErrorHandler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	problem := NewProblemDetails(
		http.StatusMethodNotAllowed,
		TypeMethodNotAllowed,
		"Method Not Allowed",
		fmt.Sprintf("Method %s is not allowed for this endpoint", r.Method),
		r.URL.Path,
	).WithExtension("trace_id", middleware.GetReqID(r.Context()))

	render.Render(w, r, problem)
}

// getStackTrace returns the current stack trace
func getStackTrace() string {
	buf := make([]byte, 1024*8)
	n := runtime.Stack(buf, false)
	return string(buf[:n])
}
