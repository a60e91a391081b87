package services

import "errors"

// Service errors
var (
	// ErrNoData is returned when an operation needs stored flow data and the user has none
	ErrNoData = errors.New("no flow data available")

	// ErrInvalidDateRange is returned when a start date falls after its end date
	ErrInvalidDateRange = errors.New("start date is after end date")

	ErrInvalidInput = errors.New("invalid input")
)
