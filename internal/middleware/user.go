package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"regexp"

	"github.com/go-playground/validator/v10"

	apierrors "flowpulse/internal/errors"
	"flowpulse/internal/infrastructure"
)

// DefaultUserHeader identifies the calling user when no header is configured
const DefaultUserHeader = "X-User-ID"

var userIDPattern = regexp.MustCompile(`^[A-Za-z0-9._@:-]+$`)

// UserIDFromContext returns the user ID set by UserID, or "" when absent
func UserIDFromContext(ctx context.Context) string {
	return infrastructure.UserIDFromContext(ctx)
}

// UserID requires every request to carry a user identifier in header.
// Requests without a usable value are rejected with 401.
func UserID(header string, errorHandler *apierrors.ErrorHandler, logger *slog.Logger) func(next http.Handler) http.Handler {
	if header == "" {
		header = DefaultUserHeader
	}
	validate := NewValidator()
	logger = logger.With(slog.String("component", "user_middleware"))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := r.Header.Get(header)

			if err := validate.Var(userID, "required,max=128,userid"); err != nil {
				logger.WarnContext(r.Context(), "rejected request without valid user id",
					"header", header,
					"path", r.URL.Path,
				)
				errorHandler.HandleError(w, r, apierrors.NewWithDetails(
					http.StatusUnauthorized,
					apierrors.ErrUnauthorized.ErrorCode,
					"A valid "+header+" header is required",
					apierrors.ValidationError{Field: header, Message: "required"},
				))
				return
			}

			next.ServeHTTP(w, r.WithContext(infrastructure.WithUserID(r.Context(), userID)))
		})
	}
}

func isValidUserID(fl validator.FieldLevel) bool {
	return userIDPattern.MatchString(fl.Field().String())
}

// IsValidUserID reports whether id is acceptable as a user identifier
func IsValidUserID(id string) bool {
	return len(id) <= 128 && userIDPattern.MatchString(id)
}
