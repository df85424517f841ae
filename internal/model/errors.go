package model

import "errors"

// Error taxonomy of the comparison engine.
// Producers wrap these sentinels with context (fmt.Errorf("...: %w", ErrX));
// callers classify failures with errors.Is.
var (
	// ErrInvalidInput is returned when a document fails structural validation
	// (not a PDF, zero pages, unreadable) or the request itself is invalid.
	// No partial output is produced.
	ErrInvalidInput = errors.New("invalid input")

	// ErrEncryptedDocument is returned when a document is password-protected.
	ErrEncryptedDocument = errors.New("encrypted document")

	// ErrRender is returned when a single page cannot be rasterized.
	// It is not fatal: the page is degraded and the comparison continues.
	ErrRender = errors.New("render error")

	// ErrStorage is returned when intermediate or output files cannot be written.
	ErrStorage = errors.New("storage error")

	// ErrConversion is returned when the output archive cannot be assembled or
	// fails validation.
	ErrConversion = errors.New("conversion error")
)
