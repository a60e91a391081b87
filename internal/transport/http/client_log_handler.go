package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	apierrors "flowpulse/internal/errors"
	customMiddleware "flowpulse/internal/middleware"
	api "flowpulse/pkg/contracts/api/v1"
)

// ClientLogHandler handles client-side logging requests
type ClientLogHandler struct {
	validate     *validator.Validate
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewClientLogHandler creates a new client log handler
func NewClientLogHandler(logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *ClientLogHandler {
	return &ClientLogHandler{
		validate:     customMiddleware.NewValidator(),
		logger:       logger.With(slog.String("handler", "client_log")),
		errorHandler: errorHandler,
	}
}

var clientLevels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

// Handle processes POST /api/logs
func (h *ClientLogHandler) Handle(w http.ResponseWriter, r *http.Request) {
	var req api.ClientLogRequest
	if err := customMiddleware.DecodeJSON(r, h.validate, &req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	attrs := []slog.Attr{
		slog.String("client_source", req.Source),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	}
	if req.Timestamp != "" {
		attrs = append(attrs, slog.String("client_timestamp", req.Timestamp))
	}
	if userID := requestUser(r); userID != "" {
		attrs = append(attrs, slog.String("user_id", userID))
	}
	if req.Data != nil {
		attrs = append(attrs, slog.Any("data", req.Data))
	}

	h.logger.LogAttrs(r.Context(), clientLevels[req.Level], req.Message, attrs...)

	render.JSON(w, r, api.StatusResponse{Status: statusSuccess})
}
