package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	apierrors "flowpulse/internal/errors"
	"flowpulse/internal/shared/testutil"
)

func TestUserID(t *testing.T) {
	tests := []struct {
		name       string
		header     string
		value      string
		wantStatus int
		wantUser   string
	}{
		{name: "valid id", header: DefaultUserHeader, value: "user-42", wantStatus: http.StatusOK, wantUser: "user-42"},
		{name: "email id", header: DefaultUserHeader, value: "ana@example.com", wantStatus: http.StatusOK, wantUser: "ana@example.com"},
		{name: "custom header", header: "X-Account", value: "acc_1", wantStatus: http.StatusOK, wantUser: "acc_1"},
		{name: "missing", header: DefaultUserHeader, value: "", wantStatus: http.StatusUnauthorized},
		{name: "whitespace", header: DefaultUserHeader, value: "a b", wantStatus: http.StatusUnauthorized},
		{name: "path characters", header: DefaultUserHeader, value: "../etc", wantStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, _ := testutil.NewTestLogger(t)
			errorHandler := apierrors.NewErrorHandler(logger, false)

			var seen string
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen = UserIDFromContext(r.Context())
			})

			r := httptest.NewRequest(http.MethodGet, "/api/flows", nil)
			if tt.value != "" {
				r.Header.Set(tt.header, tt.value)
			}
			w := httptest.NewRecorder()
			UserID(tt.header, errorHandler, logger)(next).ServeHTTP(w, r)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantUser, seen)
		})
	}
}

func TestUserIDFromContext_Empty(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Empty(t, UserIDFromContext(r.Context()))
}
