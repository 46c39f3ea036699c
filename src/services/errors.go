package services

import "errors"

// Sentinel errors for explicit error handling
// These errors allow handlers to map failure modes onto stable HTTP
// responses using errors.Is() instead of string matching

var (
	// ErrFileNotFound indicates the requested file does not exist
	ErrFileNotFound = errors.New("file not found")

	// ErrNoBarcodesGenerated indicates the input produced no usable items
	ErrNoBarcodesGenerated = errors.New("no barcodes generated")

	// ErrNoLabelImages indicates there are no label images to collect into a PDF
	ErrNoLabelImages = errors.New("no label images found")

	// ErrInvalidFileType indicates an upload with an unsupported extension
	ErrInvalidFileType = errors.New("invalid file type")

	// ErrInvalidFilename indicates a filename that failed sanitization
	ErrInvalidFilename = errors.New("invalid filename")

	// ErrEmptyWorkbook indicates an Excel file without data rows
	ErrEmptyWorkbook = errors.New("workbook contains no data rows")
)
