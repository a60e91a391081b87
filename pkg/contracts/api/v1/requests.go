// Package api contains the request and response contracts of the FlowPulse HTTP API.
// Version v1 represents the current stable API version.
package api

import (
	"flowpulse/pkg/contracts/domain"
)

// Upload requests

// UploadFlowsRequest carries one or more decoded investor-flow reports
type UploadFlowsRequest struct {
	Files []domain.UploadedFile `json:"files" validate:"required,min=1,dive"`
}

// UploadPricesRequest carries the text of an intraday quote export
type UploadPricesRequest struct {
	Content string `json:"content" validate:"required"`
}

// DateRangeRequest represents an inclusive calendar range in requests
type DateRangeRequest struct {
	From string `json:"from" query:"from" validate:"omitempty,isodate"`
	To   string `json:"to" query:"to" validate:"omitempty,isodate"`
}

// Analysis history requests

// CreateAnalysisRequest names a period of the stored data.
// Empty dates default to the first and last stored flow day.
type CreateAnalysisRequest struct {
	Name        string `json:"name" validate:"required,max=255"`
	Description string `json:"description,omitempty" validate:"max=2000"`
	StartDate   string `json:"start_date,omitempty" validate:"omitempty,isodate"`
	EndDate     string `json:"end_date,omitempty" validate:"omitempty,isodate"`
}

// Client log requests

// ClientLogRequest is a log line forwarded by a browser client
type ClientLogRequest struct {
	Level     string                 `json:"level" validate:"required,oneof=debug info warn error"`
	Message   string                 `json:"message" validate:"required,max=2000"`
	Data      map[string]interface{} `json:"data,omitempty"`
	Source    string                 `json:"source,omitempty" validate:"max=255"`
	Timestamp string                 `json:"timestamp,omitempty"`
}

// Responses

// ListResponse wraps a collection returned by a GET endpoint
type ListResponse struct {
	Status string      `json:"status"`
	Count  int         `json:"count"`
	Data   interface{} `json:"data"`
}

// StatusResponse is the body of mutating endpoints without a payload
type StatusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// DataResponse wraps a single object returned by a GET endpoint
type DataResponse struct {
	Status string      `json:"status"`
	Data   interface{} `json:"data"`
}
