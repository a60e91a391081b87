package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "flowpulse/internal/errors"
	"flowpulse/internal/infrastructure"
	"flowpulse/internal/shared/testutil"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func TestRequestID(t *testing.T) {
	tests := []struct {
		name     string
		incoming string
	}{
		{name: "generates id", incoming: ""},
		{name: "keeps client id", incoming: "client-123"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen string
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen = middleware.GetReqID(r.Context())
			})

			r := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.incoming != "" {
				r.Header.Set(RequestIDHeader, tt.incoming)
			}
			w := httptest.NewRecorder()
			RequestID(next).ServeHTTP(w, r)

			require.NotEmpty(t, seen)
			assert.Equal(t, seen, w.Header().Get(RequestIDHeader))
			if tt.incoming != "" {
				assert.Equal(t, tt.incoming, seen)
			} else {
				assert.Len(t, seen, 36)
			}
		})
	}
}

func TestGetRequestID(t *testing.T) {
	var got string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = GetRequestID(r.Context())
	})

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set(RequestIDHeader, "abc")
	RequestID(next).ServeHTTP(httptest.NewRecorder(), r)

	assert.Equal(t, "abc", got)
}

func TestStructuredLogger(t *testing.T) {
	logger, logs := testutil.NewTestLogger(t)

	h := RequestID(StructuredLogger(logger)(okHandler))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/flows", nil))

	assert.True(t, logs.ContainsMessage("request completed"))
	assert.True(t, logs.ContainsAttr("path", "/api/flows"))
}

func TestStructuredLogger_UserFromInnerMiddleware(t *testing.T) {
	logger, logs := testutil.NewTestLogger(t)
	errorHandler := apierrors.NewErrorHandler(logger, false)

	h := StructuredLogger(logger)(UserID("", errorHandler, logger)(okHandler))
	r := httptest.NewRequest(http.MethodGet, "/api/stats", nil)
	r.Header.Set(DefaultUserHeader, "alice")
	h.ServeHTTP(httptest.NewRecorder(), r)

	assert.True(t, logs.ContainsAttr("user_id", "alice"))
}

func TestRecoverer(t *testing.T) {
	logger, logs := testutil.NewTestLogger(t)
	panicking := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set(RequestIDHeader, "req-9")
	RequestID(Recoverer(logger)(panicking)).ServeHTTP(w, r)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "application/problem+json", w.Header().Get("Content-Type"))

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, "req-9", body["trace_id"])
	assert.True(t, logs.ContainsMessage("panic recovered"))
}

func TestRateLimiter_PerClient(t *testing.T) {
	logger, logs := testutil.NewTestLogger(t)
	rl := NewRateLimiter(0.001, 2, logger)
	h := rl.Handler(okHandler)

	call := func(user string) int {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r = r.WithContext(infrastructure.WithUserID(r.Context(), user))
		w := httptest.NewRecorder()
		h.ServeHTTP(w, r)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, call("alice"))
	assert.Equal(t, http.StatusOK, call("alice"))
	assert.Equal(t, http.StatusTooManyRequests, call("alice"))

	// Another user has its own bucket
	assert.Equal(t, http.StatusOK, call("bob"))
	assert.True(t, logs.ContainsAttr("client", "alice"))
}

func TestRateLimiter_FallsBackToIP(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	rl := NewRateLimiter(0.001, 1, logger)
	h := rl.Handler(okHandler)

	call := func(addr string) *httptest.ResponseRecorder {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.RemoteAddr = addr
		w := httptest.NewRecorder()
		h.ServeHTTP(w, r)
		return w
	}

	assert.Equal(t, http.StatusOK, call("10.0.0.1:5000").Code)
	w := call("10.0.0.1:6000")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
	assert.Equal(t, http.StatusOK, call("10.0.0.2:5000").Code)
}

func TestCORS(t *testing.T) {
	tests := []struct {
		name       string
		allowed    []string
		origin     string
		method     string
		wantOrigin string
		wantStatus int
	}{
		{
			name:       "allowed origin",
			allowed:    []string{"http://localhost:3000"},
			origin:     "http://localhost:3000",
			method:     http.MethodGet,
			wantOrigin: "http://localhost:3000",
			wantStatus: http.StatusOK,
		},
		{
			name:       "rejected origin",
			allowed:    []string{"http://localhost:3000"},
			origin:     "http://evil.example",
			method:     http.MethodGet,
			wantOrigin: "",
			wantStatus: http.StatusOK,
		},
		{
			name:       "wildcard preflight",
			allowed:    []string{"*"},
			origin:     "http://any.example",
			method:     http.MethodOptions,
			wantOrigin: "http://any.example",
			wantStatus: http.StatusNoContent,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := CORS(CORSConfig{AllowedOrigins: tt.allowed})(okHandler)

			r := httptest.NewRequest(tt.method, "/api/flows", nil)
			r.Header.Set("Origin", tt.origin)
			w := httptest.NewRecorder()
			h.ServeHTTP(w, r)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantOrigin, w.Header().Get("Access-Control-Allow-Origin"))
			assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), DefaultUserHeader)
		})
	}
}

func TestSecurityHeaders(t *testing.T) {
	w := httptest.NewRecorder()
	SecurityHeaders(okHandler).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Empty(t, w.Header().Get("Strict-Transport-Security"))
}

func TestClientIP(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "192.168.1.10:44321"
	assert.Equal(t, "192.168.1.10", clientIP(r))

	r.RemoteAddr = "pipe"
	assert.Equal(t, "pipe", clientIP(r))
}
