package errors

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/render"
)

// APIError is an error with a stable code that clients can switch on
type APIError struct {
	StatusCode int         `json:"status_code"`
	ErrorCode  string      `json:"error_code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	return e.Message
}

// Is matches any APIError carrying the same code, so a detailed copy still
// satisfies errors.Is against the predefined value
func (e *APIError) Is(target error) bool {
	t, ok := target.(*APIError)
	return ok && t.ErrorCode == e.ErrorCode
}

// Render implements render.Renderer
func (e *APIError) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.StatusCode)
	return nil
}

// WithDetails returns a copy of e carrying details
func (e *APIError) WithDetails(details interface{}) *APIError {
	cp := *e
	cp.Details = details
	return &cp
}

// ValidationError describes one rejected field
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors groups every rejected field of a request
type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func New(statusCode int, errorCode, message string) *APIError {
	return &APIError{
		StatusCode: statusCode,
		ErrorCode:  errorCode,
		Message:    message,
	}
}

func NewWithDetails(statusCode int, errorCode, message string, details interface{}) *APIError {
	return New(statusCode, errorCode, message).WithDetails(details)
}

var (
	ErrInvalidRequest   = New(http.StatusBadRequest, "INVALID_REQUEST", "Invalid request format")
	ErrValidationFailed = New(http.StatusBadRequest, "VALIDATION_FAILED", "Request validation failed")
	ErrInvalidParameter = New(http.StatusBadRequest, "INVALID_PARAMETER", "Invalid parameter value")

	// Requests without the user header
	ErrUnauthorized = New(http.StatusUnauthorized, "UNAUTHORIZED", "User identification required")

	ErrNotFound = New(http.StatusNotFound, "NOT_FOUND", "Resource not found")

	ErrPayloadTooLarge = New(http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE", "Request body exceeds the upload limit")

	// Uploads where every file or row was rejected
	ErrNoValidData = New(http.StatusUnprocessableEntity, "NO_VALID_DATA", "No valid records found in upload")

	ErrServiceUnavailable = New(http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "Service temporarily unavailable")
)

// InvalidRequestWithError attaches the decoding error to ErrInvalidRequest
func InvalidRequestWithError(err error) *APIError {
	return ErrInvalidRequest.WithDetails(err.Error())
}

// ErrValidation reports a single invalid field
func ErrValidation(field, message string) *APIError {
	return ErrValidationFailed.WithDetails(ValidationError{Field: field, Message: message})
}

func NewValidationErrors(errors []ValidationError) *APIError {
	return ErrValidationFailed.WithDetails(ValidationErrors{Errors: errors})
}

// ErrorResponse is the envelope used where chi/render is not in play, such as
// a failed websocket upgrade
type ErrorResponse struct {
	Success bool      `json:"success"`
	Error   *APIError `json:"error"`
}

func WriteError(w http.ResponseWriter, err *APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(err.StatusCode)
	json.NewEncoder(w).Encode(ErrorResponse{Error: err})
}
