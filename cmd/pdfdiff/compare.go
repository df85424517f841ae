package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/nao1215/pdfdiff/internal/compare"
	"github.com/nao1215/pdfdiff/internal/config"
	"github.com/nao1215/pdfdiff/internal/database"
	pdflog "github.com/nao1215/pdfdiff/internal/log"
	"github.com/nao1215/pdfdiff/internal/model"
	"github.com/nao1215/pdfdiff/internal/report"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

// NewCompareCmd creates the compare command.
func NewCompareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare BASE COMPARE",
		Short: "Compare two PDF documents",
		Long: `Compare renders both documents page by page and reports what changed.

For every page index the report records whether the page exists in both
documents, the share of changed pixels, the number of added and removed
words and a text similarity score. Pages present in only one document are
compared against a blank page.

The archive <base>_vs_<compare>_<run>.zip contains:
  report.md
  report.json
  comparison_assets/page_001_base.png
  comparison_assets/page_001_compare.png
  comparison_assets/page_001_diff.png
  ...

Exit codes:
  1  unexpected failure
  2  invalid input (not a PDF, truncated, no pages, bad threshold)
  3  a document is password-protected
  4  output could not be written

Examples:
  # Compare with default settings
  pdfdiff compare contract_v1.pdf contract_v2.pdf

  # More sensitive pixel comparison at higher resolution
  pdfdiff compare -t 10 -z 3 a.pdf b.pdf

  # Write the archive elsewhere and print report.json
  pdfdiff compare -o ./out --json a.pdf b.pdf`,
		Args: cobra.ExactArgs(2),
		RunE: runCompareCmd,
	}

	cmd.Flags().IntP("threshold", "t", config.DefaultDiffThreshold,
		fmt.Sprintf("Pixel difference threshold (%d-%d), lower is more sensitive",
			config.MinDiffThreshold, config.MaxDiffThreshold))
	cmd.Flags().Float64P("zoom", "z", config.DefaultZoom,
		"Render scale relative to 72 DPI")
	cmd.Flags().IntP("concurrency", "j", config.DefaultConcurrency,
		"Number of pages compared in parallel")
	cmd.Flags().StringP("output", "o", "",
		"Directory for the output archive (default: current directory)")
	cmd.Flags().String("text-engine", config.TextEngineFitz,
		"Text extraction engine: fitz or native")
	cmd.Flags().Bool("normalize", false,
		"Apply Unicode NFKC normalization to words before diffing")
	cmd.Flags().Bool("no-history", false,
		"Do not record this comparison in the history database")
	cmd.Flags().BoolP("quiet", "q", false,
		"Do not show progress")
	cmd.Flags().Bool("json", false,
		"Print report.json to standard output instead of a summary")
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .pdfdiff in current or home directory)")

	return cmd
}

// runCompareCmd executes the compare command.
func runCompareCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildCompareConfig(cmd)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		if errors.Is(err, config.ErrInvalidThreshold) {
			return fmt.Errorf("%w: %w", model.ErrInvalidInput, err)
		}
		return fmt.Errorf("configuration error: %w", err)
	}

	jsonOutput, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}

	logger := pdflog.NewSecureLogger(cmd.ErrOrStderr(), cfg.Verbose)
	if jsonOutput {
		logger = pdflog.NewSecureJSONLogger(cmd.ErrOrStderr(), cfg.Verbose)
	}

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	quiet, err := cmd.Flags().GetBool("quiet")
	if err != nil {
		return err
	}

	return runCompare(ctx, cmd.OutOrStdout(), progressWriter(cmd.ErrOrStderr(), quiet || jsonOutput), cfg, logger, args[0], args[1], jsonOutput)
}

// commandContext returns the command context or a background context.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// progressWriter returns where the progress bar is drawn.
func progressWriter(w io.Writer, disabled bool) io.Writer {
	if disabled {
		return io.Discard
	}
	return w
}

// buildCompareConfig merges defaults, the configuration file and flags, in
// that order of increasing precedence.
func buildCompareConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()
	cfg.Verbose = getVerboseFlag(cmd)

	var err error
	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	if err := applyConfigFile(cfg); err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("threshold") {
		if cfg.DiffThreshold, err = flags.GetInt("threshold"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("zoom") {
		if cfg.Zoom, err = flags.GetFloat64("zoom"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("concurrency") {
		if cfg.Concurrency, err = flags.GetInt("concurrency"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("output") {
		if cfg.OutputDir, err = flags.GetString("output"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("text-engine") {
		if cfg.TextEngine, err = flags.GetString("text-engine"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("normalize") {
		if cfg.NormalizeText, err = flags.GetBool("normalize"); err != nil {
			return nil, err
		}
	}
	noHistory, err := flags.GetBool("no-history")
	if err != nil {
		return nil, err
	}
	if noHistory {
		cfg.SaveHistory = false
	}

	return cfg, nil
}

// applyConfigFile loads the configuration file into cfg.
// A file given explicitly must exist; a missing default file is ignored.
func applyConfigFile(cfg *config.Config) error {
	path := config.FindConfigFile(cfg.ConfigFilePath)
	if path == "" {
		if cfg.ConfigFilePath != "" {
			return fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
		}
		return nil
	}

	file, err := config.LoadConfigFile(path)
	if err != nil {
		return fmt.Errorf("failed to load config file %s: %w", path, err)
	}
	file.Apply(cfg)
	return nil
}

// runCompare compares two documents and prints the outcome.
func runCompare(ctx context.Context, out, progress io.Writer, cfg *config.Config, logger *slog.Logger, basePath, comparePath string, jsonOutput bool) error {
	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(progress),
		progressbar.OptionSetDescription("comparing pages"),
		progressbar.OptionShowCount(),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionClearOnFinish(),
	)

	o := compare.New(cfg,
		compare.WithLogger(logger),
		compare.WithObserver(compare.ObserverFunc(func(model.PageReport) {
			_ = bar.Add(1)
		})),
	)

	base, err := readInput(basePath)
	if err != nil {
		return err
	}
	revised, err := readInput(comparePath)
	if err != nil {
		return err
	}

	start := time.Now()
	res, err := o.Compare(ctx, compare.Request{
		Base:      base,
		Compare:   revised,
		Threshold: cfg.DiffThreshold,
	})
	_ = bar.Finish()
	if err != nil {
		return err
	}

	earlier := 0
	if cfg.SaveHistory {
		if earlier, err = saveHistory(ctx, cfg, res, base.Data, revised.Data, logger); err != nil {
			logger.Warn("failed to record comparison history", "error", err)
		}
	}

	if jsonOutput {
		_, err := report.NewJSONWriter(out, report.WithPrettyPrint()).Write(res.Report)
		return err
	}

	printSummary(out, res, earlier, time.Since(start))
	return nil
}

// readInput reads a document given on the command line.
func readInput(path string) (compare.Input, error) {
	data, err := os.ReadFile(path) //nolint:gosec // user-provided input path
	if err != nil {
		return compare.Input{}, fmt.Errorf("%w: %v", model.ErrInvalidInput, err)
	}
	return compare.Input{Name: filepath.Base(path), Path: path, Data: data}, nil
}

// saveHistory records a finished comparison and returns how many earlier
// runs compared the same pair of documents.
func saveHistory(ctx context.Context, cfg *config.Config, res *compare.Result, baseData, compareData []byte, logger *slog.Logger) (int, error) {
	db, err := database.Open(cfg.DBDir, database.DefaultOptions())
	if err != nil {
		return 0, err
	}
	defer db.Close()

	baseFP := database.Fingerprint(baseData)
	compareFP := database.Fingerprint(compareData)

	earlier, err := db.CountPair(ctx, baseFP, compareFP)
	if err != nil {
		return 0, err
	}

	id, err := db.SaveComparison(ctx, &database.Comparison{
		RunID:               res.RunID,
		BaseFingerprint:     baseFP,
		ComparedFingerprint: compareFP,
		Threshold:           cfg.DiffThreshold,
		ArchivePath:         res.ArchivePath,
	}, res.Report)
	if err != nil {
		return 0, err
	}

	logger.Debug("comparison recorded", "id", id, "db", db.Path())
	return earlier, nil
}

// printSummary prints a short colored result overview.
func printSummary(w io.Writer, res *compare.Result, earlier int, elapsed time.Duration) {
	r := res.Report
	counts := r.CountByStatus()

	bold := color.New(color.Bold)
	bold.Fprintf(w, "%s vs %s\n", r.BaseFile, r.ComparedFile) //nolint:errcheck

	fmt.Fprintf(w, "  pages analyzed:        %d\n", r.PagesAnalyzed)
	fmt.Fprintf(w, "  overall visual change: %.2f%%\n", r.OverallVisualChangePercent)
	if n := counts[model.StatusAddedInSecond]; n > 0 {
		fmt.Fprintf(w, "  pages added:           %d\n", n)
	}
	if n := counts[model.StatusMissingInSecond]; n > 0 {
		fmt.Fprintf(w, "  pages missing:         %d\n", n)
	}

	for _, p := range r.PageReports {
		if p.Degraded() {
			color.New(color.FgYellow).Fprintf(w, "  ⚠ page %d rendered with a blank substitute\n", p.Page) //nolint:errcheck
		}
	}

	if earlier > 0 {
		fmt.Fprintf(w, "  earlier runs of pair:  %d\n", earlier)
	}

	if r.Identical() {
		color.New(color.FgGreen).Fprintln(w, "✓ no differences found") //nolint:errcheck
	} else {
		color.New(color.FgRed).Fprintln(w, "✗ differences found") //nolint:errcheck
	}

	fmt.Fprintf(w, "archive: %s (%s)\n", res.ArchivePath, elapsed.Round(time.Millisecond))
}
