package dataprocessing

import "errors"

var (
	// ErrNoFiles is returned when an upload carries no file at all
	ErrNoFiles = errors.New("no files to process")

	// ErrTooManyFiles is returned when an upload exceeds ProcessingOptions.MaxFiles
	ErrTooManyFiles = errors.New("too many files in upload")

	// ErrNoValidRecords is returned when nothing usable was found in an upload
	ErrNoValidRecords = errors.New("no valid records found")

	// ErrReportDateNotFound is returned when a flow report has no date marker
	ErrReportDateNotFound = errors.New("report date marker not found")

	// ErrInvalidNumber is returned for fields that are not pt-BR numbers
	ErrInvalidNumber = errors.New("invalid number")
)
