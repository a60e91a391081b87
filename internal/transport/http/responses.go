package http

import (
	"net/http"
	"strings"

	"github.com/go-chi/render"

	customMiddleware "flowpulse/internal/middleware"
	"flowpulse/internal/storage"
	api "flowpulse/pkg/contracts/api/v1"
)

const statusSuccess = "success"

func requestUser(r *http.Request) string {
	return customMiddleware.UserIDFromContext(r.Context())
}

func renderList[T any](w http.ResponseWriter, r *http.Request, items []T) {
	render.JSON(w, r, api.ListResponse{
		Status: statusSuccess,
		Count:  len(items),
		Data:   items,
	})
}

func renderData(w http.ResponseWriter, r *http.Request, data interface{}) {
	render.JSON(w, r, api.DataResponse{
		Status: statusSuccess,
		Data:   data,
	})
}

// seriesFilter reads the optional from, to and category query parameters.
// It writes the error response itself and reports false on invalid input.
func seriesFilter(w http.ResponseWriter, r *http.Request, qv *customMiddleware.QueryParamValidator) (storage.Filter, bool) {
	var filter storage.Filter

	from, ok := qv.ValidateDate(w, r, "from")
	if !ok {
		return filter, false
	}
	to, ok := qv.ValidateDate(w, r, "to")
	if !ok {
		return filter, false
	}
	if from != nil {
		filter.From = *from
	}
	if to != nil {
		filter.To = *to
	}
	filter.Category = strings.TrimSpace(r.URL.Query().Get("category"))
	return filter, true
}
