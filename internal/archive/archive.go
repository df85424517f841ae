package archive

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zip"
	"github.com/nao1215/pdfdiff/internal/model"
	"github.com/nao1215/pdfdiff/internal/report"
)

// Entry names of the report files at the archive root.
const (
	MarkdownReport = "report.md"
	JSONReport     = "report.json"
)

// DefaultMinSize is the size floor in bytes below which an archive is
// considered broken.
const DefaultMinSize = 100

// runIDPrefix is how many characters of the run id go into the archive name.
const runIDPrefix = 8

// Packager writes comparison archives.
type Packager struct {
	minSize int64
	logger  *slog.Logger
}

// Option configures a Packager.
type Option func(*Packager)

// WithMinSize sets the archive size floor in bytes.
func WithMinSize(n int64) Option {
	return func(p *Packager) {
		p.minSize = n
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Packager) {
		p.logger = logger
	}
}

// NewPackager creates a new Packager.
func NewPackager(opts ...Option) *Packager {
	p := &Packager{minSize: DefaultMinSize}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	return p
}

// Name returns the archive file name for a comparison of base against
// compare, e.g. "contract_v1_vs_contract_v2_1b4e28ba.zip".
func Name(base, compare, runID string) string {
	if len(runID) > runIDPrefix {
		runID = runID[:runIDPrefix]
	}
	return fmt.Sprintf("%s_vs_%s_%s.zip", stem(base), stem(compare), runID)
}

func stem(name string) string {
	base := filepath.Base(name)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	if base == "" || base == "." || base == string(filepath.Separator) {
		return "document"
	}
	return strings.ReplaceAll(base, " ", "_")
}

// Package writes the reports and every page image referenced by r into a new
// archive at path. Images are read from workDir, where they are stored under
// the same relative paths as in the archive. On any failure the partially
// written archive is removed.
func (p *Packager) Package(path string, r *model.ComparisonReport, workDir string) (err error) {
	f, err := os.Create(path) //nolint:gosec // path is chosen by the caller
	if err != nil {
		return fmt.Errorf("%w: failed to create archive: %v", model.ErrStorage, err)
	}
	defer func() {
		if err != nil {
			_ = f.Close()
			if rmErr := os.Remove(path); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
				p.logger.Warn("failed to remove partial archive", "path", path, "error", rmErr)
			}
		}
	}()

	zw := zip.NewWriter(f)
	if err := writeReports(zw, r); err != nil {
		return fmt.Errorf("%w: %v", model.ErrConversion, err)
	}

	for _, page := range r.PageReports {
		for _, rel := range []string{page.BaseImage, page.CompareImage, page.DiffImage} {
			if err := addFile(zw, workDir, rel); err != nil {
				return fmt.Errorf("%w: page %d: %v", model.ErrConversion, page.Page, err)
			}
		}
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("%w: failed to finalize archive: %v", model.ErrConversion, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: failed to close archive: %v", model.ErrStorage, err)
	}

	if err := p.verify(path); err != nil {
		return err
	}

	p.logger.Debug("archive written", "path", path, "pages", len(r.PageReports))
	return nil
}

// writeReports adds report.md and report.json at the archive root.
func writeReports(zw *zip.Writer, r *model.ComparisonReport) error {
	var buf bytes.Buffer

	if _, err := report.NewMarkdownWriter(&buf).Write(r); err != nil {
		return fmt.Errorf("failed to render %s: %w", MarkdownReport, err)
	}
	if err := addBytes(zw, MarkdownReport, buf.Bytes()); err != nil {
		return err
	}

	buf.Reset()
	if _, err := report.NewJSONWriter(&buf, report.WithPrettyPrint()).Write(r); err != nil {
		return fmt.Errorf("failed to render %s: %w", JSONReport, err)
	}
	return addBytes(zw, JSONReport, buf.Bytes())
}

func addBytes(zw *zip.Writer, name string, data []byte) error {
	w, err := zw.Create(name)
	if err != nil {
		return fmt.Errorf("failed to add %s: %w", name, err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	return nil
}

// addFile copies workDir/rel into the archive as rel. PNG data is already
// deflated, so images are stored without recompression.
func addFile(zw *zip.Writer, workDir, rel string) error {
	src, err := os.Open(filepath.Join(workDir, filepath.FromSlash(rel))) //nolint:gosec // rel comes from model.ImagePath
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", rel, err)
	}
	defer src.Close()

	w, err := zw.CreateHeader(&zip.FileHeader{Name: rel, Method: zip.Store})
	if err != nil {
		return fmt.Errorf("failed to add %s: %w", rel, err)
	}
	if _, err := io.Copy(w, src); err != nil {
		return fmt.Errorf("failed to write %s: %w", rel, err)
	}
	return nil
}

// verify checks that the archive exists and exceeds the size floor.
func (p *Packager) verify(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("%w: archive missing after write: %v", model.ErrConversion, err)
	}
	if info.Size() <= p.minSize {
		return fmt.Errorf("%w: archive is %d bytes, expected more than %d",
			model.ErrConversion, info.Size(), p.minSize)
	}
	return nil
}
