package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() so that callers can use
// errors.Is() to tell which setting is wrong.
var (
	// ErrInvalidThreshold is returned when the diff threshold is outside [5, 80].
	// The threshold is checked before any page is rendered.
	ErrInvalidThreshold = errors.New("invalid diff threshold: must be between 5 and 80")

	// ErrInvalidZoom is returned when the render zoom factor is not in (0, 8].
	ErrInvalidZoom = errors.New("invalid zoom: must be greater than 0 and at most 8")

	// ErrInvalidConcurrency is returned when the page concurrency is not positive.
	ErrInvalidConcurrency = errors.New("invalid concurrency: must be positive")

	// ErrInvalidMinArchiveSize is returned when the archive size floor is negative.
	ErrInvalidMinArchiveSize = errors.New("invalid minimum archive size: must be non-negative")

	// ErrUnknownTextEngine is returned when TextEngine names no known extractor.
	ErrUnknownTextEngine = errors.New("unknown text engine: must be \"fitz\" or \"native\"")
)
