package entity

import "errors"

// Domain errors
var (
	// Request errors
	ErrInvalidRequest  = errors.New("invalid request")
	ErrMissingField    = errors.New("required field is missing")
	ErrPayloadTooLarge = errors.New("payload too large")

	// File errors
	ErrFileTooLarge      = errors.New("file too large")
	ErrTooManyFiles      = errors.New("too many files")
	ErrTotalSizeTooLarge = errors.New("total file size too large")
	ErrUnsupportedFile   = errors.New("unsupported file type")
	ErrExtractionFailed  = errors.New("text extraction failed")

	// Memory errors
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
	ErrIndexNotFound     = errors.New("memory index not found")
	ErrIndexNotReady     = errors.New("memory index not ready")

	// Generation errors
	ErrEmptyCompletion = errors.New("generation service returned an empty completion")
)
