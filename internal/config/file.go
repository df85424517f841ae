package config

// File represents the structure of the .pdfdiff configuration file.
// Every field is optional; unset fields keep the value already in Config.
type File struct {
	// Threshold overrides the default diff threshold.
	Threshold *int `yaml:"threshold,omitempty"`

	// Zoom overrides the render scale factor.
	Zoom *float64 `yaml:"zoom,omitempty"`

	// Concurrency overrides the number of pages compared in parallel.
	Concurrency *int `yaml:"concurrency,omitempty"`

	// OutputDir is the default directory for comparison archives.
	OutputDir string `yaml:"outputDir,omitempty"`

	// TempDir is the parent directory for per-run working directories.
	TempDir string `yaml:"tempDir,omitempty"`

	// TextEngine selects "fitz" or "native" text extraction.
	TextEngine string `yaml:"textEngine,omitempty"`

	// NormalizeText enables Unicode normalization of words before diffing.
	NormalizeText *bool `yaml:"normalizeText,omitempty"`

	// History enables or disables the comparison history database.
	History *bool `yaml:"history,omitempty"`

	// DBDir overrides the directory of the history database.
	DBDir string `yaml:"dbDir,omitempty"`
}

// Apply copies every field set in the file onto cfg.
func (cf *File) Apply(cfg *Config) {
	if cf == nil || cfg == nil {
		return
	}
	if cf.Threshold != nil {
		cfg.DiffThreshold = *cf.Threshold
	}
	if cf.Zoom != nil {
		cfg.Zoom = *cf.Zoom
	}
	if cf.Concurrency != nil {
		cfg.Concurrency = *cf.Concurrency
	}
	if cf.OutputDir != "" {
		cfg.OutputDir = cf.OutputDir
	}
	if cf.TempDir != "" {
		cfg.TempDir = cf.TempDir
	}
	if cf.TextEngine != "" {
		cfg.TextEngine = cf.TextEngine
	}
	if cf.NormalizeText != nil {
		cfg.NormalizeText = *cf.NormalizeText
	}
	if cf.History != nil {
		cfg.SaveHistory = *cf.History
	}
	if cf.DBDir != "" {
		cfg.DBDir = cf.DBDir
	}
}
