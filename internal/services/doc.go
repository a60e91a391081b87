// Package services implements the business logic layer of FlowPulse.
// It sits between the HTTP handlers and the repository, running ingestion,
// persistence and analytics for one user at a time.
//
// # Services
//
//	- FlowService: uploads of flow reports and price quotes, listing and clearing data
//	- AnalyticsService: descriptive, divergence, enhanced and quantum reports, cached per user
//	- AnalysisService: the saved analysis history
//	- HealthService: liveness, readiness and version information
//
// # Common Service Pattern
//
// Services take their collaborators in the constructor and a *slog.Logger
// that is tagged with the component name:
//
//	svc := services.NewFlowService(processor, repo, reportCache, hub, metrics, logger)
//	summary, err := svc.UploadFlows(ctx, userID, files)
//
// Every blocking method takes a context.Context as first argument and opens
// an OpenTelemetry span named after the service method.
//
// # Error Handling
//
// Services return sentinel errors wrapped with fmt.Errorf. Handlers map them
// onto HTTP status codes with errors.Is:
//
//	- ErrInvalidInput and ErrInvalidDateRange for bad requests
//	- ErrNoData when a derived value needs stored flows
//	- storage.ErrNotFound for missing analyses
//	- dataprocessing errors for rejected uploads
//
// Insufficient data for an analysis is never an error: the reports are empty.
//
// # Testing
//
// Services are tested against the in-memory repository and testify mocks:
//
//	ingester := new(mockIngester)
//	ingester.On("ReconstructDailyFlow", mock.Anything, files).Return(result, nil)
//	svc := NewFlowService(ingester, storage.NewMemoryRepository(), nil, nil, nil, logger)
package services
