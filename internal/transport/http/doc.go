// Package http implements the HTTP handlers of the FlowPulse API.
// Handlers stay thin: they decode and validate the request, call a service
// and render the result. Business rules live in internal/services.
//
// # Request Flow
//
//	HTTP Request → Chi Router → Middleware → Handler → Service → Repository
//	                                              ↓
//	HTTP Response ← Handler ← Service Response ←─┘
//
// # Routes
//
// Every /api route except /api/logs and /api/version requires the user
// header configured in security.user_header (X-User-ID by default):
//
//	POST   /api/flows/upload            flow reports, JSON or multipart "files"
//	POST   /api/prices/upload           quote export, JSON or multipart "file"
//	GET    /api/flows                   ?from=&to=&category=
//	GET    /api/prices                  ?from=&to=
//	DELETE /api/data                    delete flows and prices
//	GET    /api/analytics/{report}      stats, enhanced, trends, patterns,
//	                                    alerts, divergences, quantum, dashboard
//	GET    /api/export/dashboard.xlsx   workbook of the dashboard
//	GET    /api/export/flows.csv        flow records
//	GET    /api/export/prices.csv       price bars
//	POST   /api/analyses                save an analysis period
//	GET    /api/analyses[/{id}]         list or fetch saved analyses
//	DELETE /api/analyses/{id}           delete a saved analysis
//
// # Responses
//
// Collections are wrapped as {"status", "count", "data"} and single objects as
// {"status", "data"}. Errors follow RFC 7807 Problem Details and are rendered
// by internal/errors.ErrorHandler:
//
//	{
//	    "type": "/errors/validation",
//	    "title": "Bad Request",
//	    "status": 400,
//	    "detail": "start date is after end date",
//	    "instance": "/api/analyses",
//	    "error_code": "INVALID_DATE_RANGE",
//	    "trace_id": "..."
//	}
//
// # Testing
//
// Handlers are tested with httptest against testify mocks of the service
// interfaces in service_interfaces.go.
package http
