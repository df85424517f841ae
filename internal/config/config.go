package config

import (
	"path/filepath"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// DefaultDiffThreshold is the mean RGB channel delta (0-255) at or above
	// which a pixel counts as changed.
	DefaultDiffThreshold = 32

	// MinDiffThreshold and MaxDiffThreshold bound the accepted threshold.
	MinDiffThreshold = 5
	MaxDiffThreshold = 80

	// DefaultZoom is the render scale relative to 72 DPI (2.0 = 144 DPI).
	DefaultZoom = 2.0

	// MaxZoom caps the render scale. A4 at zoom 8 is already ~4760x6736 pixels.
	MaxZoom = 8.0

	// DefaultConcurrency is the number of pages compared at the same time.
	DefaultConcurrency = 4

	// DefaultMinArchiveSize is the size floor (bytes) the output archive must
	// exceed to be considered valid.
	DefaultMinArchiveSize = 100

	// TextEngineFitz extracts page text with MuPDF, the same engine that renders.
	TextEngineFitz = "fitz"

	// TextEngineNative extracts page text with the pure-Go PDF reader.
	TextEngineNative = "native"

	// AppName is the application name used for XDG directory paths.
	AppName = "pdfdiff"
)

// Config holds all configuration options for a comparison run.
// It is populated from defaults, the optional config file and CLI flags,
// in that order, and passed explicitly to the components that need it.
type Config struct {
	// DiffThreshold is the minimum per-pixel mean RGB delta classified as a
	// change. Lower values are more sensitive.
	DiffThreshold int

	// Zoom is the rasterization scale factor applied to every page.
	Zoom float64

	// Concurrency is the maximum number of pages compared in parallel.
	Concurrency int

	// OutputDir is where the comparison archive is written.
	// Empty means the current directory.
	OutputDir string

	// TempDir is the parent of the per-run working directory.
	// Empty means os.TempDir().
	TempDir string

	// MinArchiveSize is the size floor in bytes for a valid output archive.
	MinArchiveSize int64

	// TextEngine selects the page text extractor ("fitz" or "native").
	TextEngine string

	// NormalizeText applies Unicode NFKC normalization to words before diffing,
	// so ligatures and compatibility characters compare equal.
	NormalizeText bool

	// SaveHistory records each successful run in the history database.
	SaveHistory bool

	// DBDir is the directory of the history database.
	// Defaults to the XDG data directory.
	DBDir string

	// Verbose enables debug logging.
	Verbose bool

	// ConfigFilePath is the path to the configuration file.
	// If empty, .pdfdiff is searched in the current and home directories.
	ConfigFilePath string
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		DiffThreshold:  DefaultDiffThreshold,
		Zoom:           DefaultZoom,
		Concurrency:    DefaultConcurrency,
		MinArchiveSize: DefaultMinArchiveSize,
		TextEngine:     TextEngineFitz,
		SaveHistory:    true,
		DBDir:          XDGDataDir(),
	}
}

// XDGDataDir returns the XDG data directory for pdfdiff.
// On Linux: ~/.local/share/pdfdiff
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for pdfdiff.
// On Linux: ~/.config/pdfdiff
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// ValidateThreshold checks that a diff threshold lies within [5, 80].
func ValidateThreshold(threshold int) error {
	if threshold < MinDiffThreshold || threshold > MaxDiffThreshold {
		return ErrInvalidThreshold
	}
	return nil
}

// Validate checks if the configuration is valid and returns the first
// problem found.
func (c *Config) Validate() error {
	if err := ValidateThreshold(c.DiffThreshold); err != nil {
		return err
	}

	if c.Zoom <= 0 || c.Zoom > MaxZoom {
		return ErrInvalidZoom
	}

	if c.Concurrency <= 0 {
		return ErrInvalidConcurrency
	}

	if c.MinArchiveSize < 0 {
		return ErrInvalidMinArchiveSize
	}

	switch c.TextEngine {
	case TextEngineFitz, TextEngineNative:
	default:
		return ErrUnknownTextEngine
	}

	return nil
}
