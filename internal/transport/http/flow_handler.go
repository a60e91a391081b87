package http

import (
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"flowpulse/internal/dataprocessing"
	apierrors "flowpulse/internal/errors"
	customMiddleware "flowpulse/internal/middleware"
	api "flowpulse/pkg/contracts/api/v1"
	"flowpulse/pkg/contracts/domain"
)

const multipartMemory = 8 << 20

// FlowHandler handles uploads and listing of flow records and price bars
type FlowHandler struct {
	service        FlowServiceInterface
	validate       *validator.Validate
	queryValidator *customMiddleware.QueryParamValidator
	maxUploadBytes int64
	logger         *slog.Logger
	errorHandler   *apierrors.ErrorHandler
}

// NewFlowHandler creates a flow handler. maxUploadBytes bounds every upload body.
func NewFlowHandler(service FlowServiceInterface, maxUploadBytes int64, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *FlowHandler {
	return &FlowHandler{
		service:        service,
		validate:       customMiddleware.NewValidator(),
		queryValidator: customMiddleware.NewQueryParamValidator(errorHandler),
		maxUploadBytes: maxUploadBytes,
		logger:         logger.With(slog.String("component", "flow_handler")),
		errorHandler:   errorHandler,
	}
}

// FlowRoutes returns the routes mounted under /api/flows
func (h *FlowHandler) FlowRoutes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/", h.ListFlows)
	r.With(h.uploadContentTypes()).Post("/upload", h.UploadFlows)
	return r
}

// PriceRoutes returns the routes mounted under /api/prices
func (h *FlowHandler) PriceRoutes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/", h.ListPrices)
	r.With(h.uploadContentTypes()).Post("/upload", h.UploadPrices)
	return r
}

func (h *FlowHandler) uploadContentTypes() func(http.Handler) http.Handler {
	return customMiddleware.RequireContentType(h.errorHandler, "application/json", "multipart/form-data")
}

// UploadFlows handles POST /api/flows/upload. The body is either an
// UploadFlowsRequest or a multipart form with one or more "files" parts.
func (h *FlowHandler) UploadFlows(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetReqID(r.Context())
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)

	var req api.UploadFlowsRequest
	var err error
	if isMultipart(r) {
		req.Files, err = multipartFiles(r, "files")
		if err == nil {
			err = customMiddleware.ValidateStruct(h.validate, &req)
		}
	} else {
		err = customMiddleware.DecodeJSON(r, h.validate, &req)
	}
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "flow upload received",
		slog.String("request_id", reqID),
		slog.Int("files", len(req.Files)),
	)

	summary, err := h.service.UploadFlows(r.Context(), requestUser(r), req.Files)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, summary)
}

// UploadPrices handles POST /api/prices/upload. The body is either an
// UploadPricesRequest or a multipart form with a "file" part.
func (h *FlowHandler) UploadPrices(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetReqID(r.Context())
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)

	var req api.UploadPricesRequest
	var err error
	if isMultipart(r) {
		var files []domain.UploadedFile
		files, err = multipartFiles(r, "file")
		if err == nil && len(files) > 0 {
			req.Content = files[0].Content
		}
		if err == nil {
			err = customMiddleware.ValidateStruct(h.validate, &req)
		}
	} else {
		err = customMiddleware.DecodeJSON(r, h.validate, &req)
	}
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "price upload received",
		slog.String("request_id", reqID),
		slog.Int("bytes", len(req.Content)),
	)

	summary, err := h.service.UploadPrices(r.Context(), requestUser(r), req.Content)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, summary)
}

// ListFlows handles GET /api/flows?from=&to=&category=
func (h *FlowHandler) ListFlows(w http.ResponseWriter, r *http.Request) {
	filter, ok := seriesFilter(w, r, h.queryValidator)
	if !ok {
		return
	}

	records, err := h.service.Flows(r.Context(), requestUser(r), filter)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	renderList(w, r, records)
}

// ListPrices handles GET /api/prices?from=&to=
func (h *FlowHandler) ListPrices(w http.ResponseWriter, r *http.Request) {
	filter, ok := seriesFilter(w, r, h.queryValidator)
	if !ok {
		return
	}

	bars, err := h.service.Prices(r.Context(), requestUser(r), filter)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	renderList(w, r, bars)
}

// ClearData handles DELETE /api/data
func (h *FlowHandler) ClearData(w http.ResponseWriter, r *http.Request) {
	if err := h.service.ClearData(r.Context(), requestUser(r)); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "user data cleared",
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)
	render.JSON(w, r, api.StatusResponse{
		Status:  statusSuccess,
		Message: "flow and price data deleted",
	})
}

func isMultipart(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data")
}

// multipartFiles reads every part named field and decodes it to UTF-8 text
func multipartFiles(r *http.Request, field string) ([]domain.UploadedFile, error) {
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			return nil, err
		}
		return nil, apierrors.InvalidRequestWithError(err)
	}
	defer r.MultipartForm.RemoveAll()

	headers := r.MultipartForm.File[field]
	files := make([]domain.UploadedFile, 0, len(headers))
	for _, fh := range headers {
		raw, err := readPart(fh)
		if err != nil {
			return nil, apierrors.InvalidRequestWithError(fmt.Errorf("read %s: %w", fh.Filename, err))
		}
		files = append(files, domain.UploadedFile{
			Name:    fh.Filename,
			Content: dataprocessing.DecodeText(raw),
		})
	}
	return files, nil
}

func readPart(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}
