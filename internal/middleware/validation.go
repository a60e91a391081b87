package middleware

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"mime"
	"net/http"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	apierrors "flowpulse/internal/errors"
	"flowpulse/pkg/contracts/domain"
)

// NewValidator returns a validator with the custom tags used by request DTOs
// and JSON field names in error messages.
func NewValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("isodate", isISODate)
	_ = v.RegisterValidation("filename", isValidFilename)
	_ = v.RegisterValidation("userid", isValidUserID)

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ValidateStruct runs validate over v and converts field errors into a
// VALIDATION_FAILED APIError
func ValidateStruct(validate *validator.Validate, v interface{}) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !stderrors.As(err, &fieldErrs) {
		return apierrors.InvalidRequestWithError(err)
	}

	validationErrors := make([]apierrors.ValidationError, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		validationErrors = append(validationErrors, apierrors.ValidationError{
			Field:   fe.Field(),
			Message: formatValidationError(fe),
		})
	}
	return apierrors.NewValidationErrors(validationErrors)
}

// DecodeJSON decodes the request body into dst and validates it
func DecodeJSON(r *http.Request, validate *validator.Validate, dst interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			return err
		}
		return apierrors.InvalidRequestWithError(err)
	}
	return ValidateStruct(validate, dst)
}

// RequireContentType rejects request bodies whose media type is not one of
// allowed. Requests without a body pass through.
func RequireContentType(errorHandler *apierrors.ErrorHandler, allowed ...string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength == 0 && r.Header.Get("Transfer-Encoding") == "" {
				next.ServeHTTP(w, r)
				return
			}

			header := r.Header.Get("Content-Type")
			if header == "" {
				errorHandler.HandleError(w, r, apierrors.ErrValidation("Content-Type", "Content-Type header is required"))
				return
			}

			mediaType, _, err := mime.ParseMediaType(header)
			if err == nil {
				for _, want := range allowed {
					if strings.EqualFold(mediaType, want) {
						next.ServeHTTP(w, r)
						return
					}
				}
			}

			errorHandler.HandleError(w, r, apierrors.NewWithDetails(
				http.StatusUnsupportedMediaType,
				"UNSUPPORTED_MEDIA_TYPE",
				"Unsupported content type",
				map[string]interface{}{
					"content_type": header,
					"allowed":      allowed,
				},
			))
		})
	}
}

// formatValidationError formats validation error messages
func formatValidationError(err validator.FieldError) string {
	field := err.Field()
	param := err.Param()

	switch err.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, param)
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, param)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(param, " ", ", "))
	case "uuid", "uuid4":
		return fmt.Sprintf("%s must be a valid UUID", field)
	case "isodate":
		return fmt.Sprintf("%s must be a date in YYYY-MM-DD format", field)
	case "filename":
		return fmt.Sprintf("%s must be a valid filename", field)
	case "userid":
		return fmt.Sprintf("%s must be a valid user id", field)
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", field, param)
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", field, param)
	case "gtefield":
		return fmt.Sprintf("%s must not be before %s", field, param)
	default:
		return fmt.Sprintf("%s failed %s validation", field, err.Tag())
	}
}

// isISODate validates a YYYY-MM-DD calendar date
func isISODate(fl validator.FieldLevel) bool {
	_, err := time.Parse(domain.DateLayout, fl.Field().String())
	return err == nil
}

// isValidFilename rejects path components in uploaded file names
func isValidFilename(fl validator.FieldLevel) bool {
	filename := fl.Field().String()
	if filename == "" || len(filename) > 255 {
		return false
	}
	if strings.Contains(filename, "..") || strings.ContainsAny(filename, `/\`) {
		return false
	}
	return filepath.Base(filename) == filename
}

// QueryParamValidator parses query parameters and answers 400 through the
// error handler when one is malformed. Every method reports false once the
// response has been written.
type QueryParamValidator struct {
	errorHandler *apierrors.ErrorHandler
}

// NewQueryParamValidator creates a new query parameter validator
func NewQueryParamValidator(errorHandler *apierrors.ErrorHandler) *QueryParamValidator {
	return &QueryParamValidator{errorHandler: errorHandler}
}

// ValidateInt validates an integer query parameter
func (v *QueryParamValidator) ValidateInt(w http.ResponseWriter, r *http.Request, param string, min, max int, defaultValue int) (int, bool) {
	value := r.URL.Query().Get(param)
	if value == "" {
		return defaultValue, true
	}

	intValue, err := strconv.Atoi(value)
	if err != nil {
		v.errorHandler.HandleError(w, r, apierrors.ErrValidation(param, fmt.Sprintf("%s must be a valid integer", param)))
		return 0, false
	}

	if intValue < min || intValue > max {
		v.errorHandler.HandleError(w, r, apierrors.ErrValidation(param, fmt.Sprintf("%s must be between %d and %d", param, min, max)))
		return 0, false
	}

	return intValue, true
}

// ValidateDate validates an optional YYYY-MM-DD query parameter
func (v *QueryParamValidator) ValidateDate(w http.ResponseWriter, r *http.Request, param string) (*time.Time, bool) {
	value := r.URL.Query().Get(param)
	if value == "" {
		return nil, true
	}

	t, err := time.Parse(domain.DateLayout, value)
	if err != nil {
		v.errorHandler.HandleError(w, r, apierrors.ErrValidation(param, fmt.Sprintf("%s must be a date in YYYY-MM-DD format", param)))
		return nil, false
	}
	return &t, true
}

// ValidateRequired validates a required string query parameter
func (v *QueryParamValidator) ValidateRequired(w http.ResponseWriter, r *http.Request, param string, maxLen int) (string, bool) {
	value := strings.TrimSpace(r.URL.Query().Get(param))
	if value == "" {
		v.errorHandler.HandleError(w, r, apierrors.ErrValidation(param, fmt.Sprintf("%s is required", param)))
		return "", false
	}
	if len(value) > maxLen {
		v.errorHandler.HandleError(w, r, apierrors.ErrValidation(param, fmt.Sprintf("%s must be at most %d characters", param, maxLen)))
		return "", false
	}
	return value, true
}
