package websocket

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	apierrors "flowpulse/internal/errors"
	"flowpulse/internal/middleware"
)

// UserQueryParam carries the user ID for browsers, which cannot set
// headers on websocket handshakes
const UserQueryParam = "user_id"

// Options tunes the upgrade and keepalive of handled connections.
// Zero values fall back to the package defaults.
type Options struct {
	// AllowedOrigins restricts the Origin header. Empty or "*" accepts all.
	AllowedOrigins  []string
	ReadBufferSize  int
	WriteBufferSize int
	PingPeriod      time.Duration
	PongWait        time.Duration
}

// Handler upgrades HTTP requests to websocket clients of the hub
type Handler struct {
	hub        *Hub
	upgrader   websocket.Upgrader
	pongWait   time.Duration
	pingPeriod time.Duration
	logger     *slog.Logger
}

// NewHandler creates an upgrade handler
func NewHandler(hub *Hub, opts Options, logger *slog.Logger) *Handler {
	if opts.ReadBufferSize <= 0 {
		opts.ReadBufferSize = 1024
	}
	if opts.WriteBufferSize <= 0 {
		opts.WriteBufferSize = 1024
	}
	if opts.PongWait <= 0 {
		opts.PongWait = defaultPongWait
	}
	if opts.PingPeriod <= 0 || opts.PingPeriod >= opts.PongWait {
		opts.PingPeriod = (opts.PongWait * 9) / 10
	}

	return &Handler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  opts.ReadBufferSize,
			WriteBufferSize: opts.WriteBufferSize,
			CheckOrigin:     originChecker(opts.AllowedOrigins),
		},
		pongWait:   opts.PongWait,
		pingPeriod: opts.PingPeriod,
		logger:     logger.With(slog.String("component", "websocket.handler")),
	}
}

// ServeHTTP implements http.Handler
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID := middleware.UserIDFromContext(ctx)
	if userID == "" {
		userID = r.URL.Query().Get(UserQueryParam)
	}
	if !middleware.IsValidUserID(userID) {
		apierrors.WriteError(w, apierrors.ErrUnauthorized)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied with an HTTP error
		h.logger.WarnContext(ctx, "websocket upgrade failed",
			slog.String("error", err.Error()),
			slog.String("user_id", userID))
		return
	}

	client := NewClient(h.hub, WrapConn(conn), userID, middleware.GetRequestID(ctx), h.logger)
	client.pongWait = h.pongWait
	client.pingPeriod = h.pingPeriod
	h.hub.Register(client)

	// Allow collection of memory referenced by the caller by doing all work in
	// new goroutines
	go client.WritePump()
	go client.ReadPump()
}

func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || len(allowed) == 0 {
			return true
		}
		for _, a := range allowed {
			if a == "*" || strings.EqualFold(a, origin) {
				return true
			}
		}
		return false
	}
}
