package compare

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nao1215/pdfdiff/internal/archive"
	"github.com/nao1215/pdfdiff/internal/config"
	pdflog "github.com/nao1215/pdfdiff/internal/log"
	"github.com/nao1215/pdfdiff/internal/model"
	"github.com/nao1215/pdfdiff/internal/pdf"
	"github.com/nao1215/pdfdiff/internal/pipeline"
	"github.com/nao1215/pdfdiff/internal/report"
	"github.com/nao1215/pdfdiff/internal/textdiff"
)

// Input is one document of a comparison.
type Input struct {
	// Name is the display name used in the report and the archive name.
	// Defaults to the base name of Path.
	Name string

	// Path is the document location. It is read when Data is nil.
	Path string

	// Data is the document content.
	Data []byte
}

// Request describes one comparison.
type Request struct {
	Base    Input
	Compare Input

	// Threshold is the diff threshold in [5, 80]. Zero uses the configured
	// DiffThreshold.
	Threshold int
}

// Result is the outcome of a successful comparison.
type Result struct {
	// RunID identifies the run in logs, archive names and history.
	RunID string

	// ArchivePath is the location of the output archive.
	ArchivePath string

	// BaseDocumentPath is the base input path as given by the caller.
	BaseDocumentPath string

	// Report is the report written into the archive.
	Report *model.ComparisonReport
}

// Observer receives progress notifications. Calls are serialized.
type Observer interface {
	// PageDone is called once per page after its report and images exist.
	PageDone(page model.PageReport)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(page model.PageReport)

// PageDone calls f(page).
func (f ObserverFunc) PageDone(page model.PageReport) {
	f(page)
}

// DocumentValidator checks the structure of a document before it is opened.
type DocumentValidator interface {
	Validate(name string, data []byte) (pdf.Info, error)
}

// Orchestrator runs comparisons. It holds no per-run state and may be used
// for concurrent runs.
type Orchestrator struct {
	cfg       *config.Config
	opener    pdf.Opener
	validator DocumentValidator
	observer  Observer
	logger    *slog.Logger
	now       func() time.Time
	newRunID  func() string
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the logger. Nil keeps slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithObserver sets the progress observer.
func WithObserver(observer Observer) Option {
	return func(o *Orchestrator) {
		o.observer = observer
	}
}

// WithOpener replaces the document backend.
func WithOpener(opener pdf.Opener) Option {
	return func(o *Orchestrator) {
		o.opener = opener
	}
}

// WithValidator replaces the structural validator.
func WithValidator(v DocumentValidator) Option {
	return func(o *Orchestrator) {
		o.validator = v
	}
}

// WithClock sets the time source of the report timestamp.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		o.now = now
	}
}

// New creates an Orchestrator. A nil cfg uses config.NewConfig().
func New(cfg *config.Config, opts ...Option) *Orchestrator {
	if cfg == nil {
		cfg = config.NewConfig()
	}
	o := &Orchestrator{
		cfg:       cfg,
		opener:    pdf.NewFitzOpener(cfg.TextEngine == config.TextEngineNative),
		validator: pdf.NewValidator(),
		logger:    slog.Default(),
		now:       time.Now,
		newRunID:  func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// run is the state passed through the comparison pipeline.
type run struct {
	id      string
	req     Request
	workDir string

	baseDoc    pdf.Document
	compareDoc pdf.Document

	pages       []model.PageReport
	report      *model.ComparisonReport
	archivePath string
}

// close releases the documents and the working directory.
func (r *run) close(ctx context.Context, logger *slog.Logger) {
	for _, doc := range []pdf.Document{r.baseDoc, r.compareDoc} {
		if doc != nil {
			if err := doc.Close(); err != nil {
				logger.WarnContext(ctx, "failed to close document", "error", err)
			}
		}
	}
	if r.workDir != "" {
		if err := os.RemoveAll(r.workDir); err != nil {
			logger.WarnContext(ctx, "failed to remove working directory", "path", r.workDir, "error", err)
		}
	}
}

// Compare runs one comparison and returns the archive location and report.
// Errors wrap the model sentinels: ErrInvalidInput, ErrEncryptedDocument,
// ErrStorage or ErrConversion. An invalid configuration is reported with the
// config package error before any document is read.
func (o *Orchestrator) Compare(ctx context.Context, req Request) (*Result, error) {
	if req.Threshold == 0 {
		req.Threshold = o.cfg.DiffThreshold
	}

	r := &run{id: o.newRunID(), req: req}
	ctx = pdflog.ContextWithRunID(ctx, r.id)
	defer r.close(ctx, o.logger)

	p := pipeline.New[*run](pipeline.WithLogger(o.logger))
	p.AddSteps(
		pipeline.NewStep("check-config", o.checkConfig),
		pipeline.NewStep("load-documents", o.loadDocuments),
		pipeline.NewStep("validate-documents", o.validateDocuments),
		pipeline.NewStep("open-documents", o.openDocuments),
		pipeline.NewStep("prepare-workdir", o.prepareWorkDir),
		pipeline.NewStep("compare-pages", o.comparePages),
		pipeline.NewStep("build-report", o.buildReport),
		pipeline.NewStep("package-archive", o.packageArchive),
	)

	o.logger.InfoContext(ctx, "comparison started",
		"base", req.Base.Path, "compare", req.Compare.Path, "threshold", req.Threshold)

	if err := p.Execute(ctx, r); err != nil {
		return nil, err
	}

	o.logger.InfoContext(ctx, "comparison finished",
		"pages", r.report.PagesAnalyzed,
		"overall_change_percent", r.report.OverallVisualChangePercent,
		"archive", r.archivePath)

	return &Result{
		RunID:            r.id,
		ArchivePath:      r.archivePath,
		BaseDocumentPath: req.Base.Path,
		Report:           r.report,
	}, nil
}

func (o *Orchestrator) checkConfig(_ context.Context, r *run) error {
	if err := config.ValidateThreshold(r.req.Threshold); err != nil {
		return fmt.Errorf("%w: %w (got %d)", model.ErrInvalidInput, err, r.req.Threshold)
	}

	cfg := *o.cfg
	cfg.DiffThreshold = r.req.Threshold
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

func (o *Orchestrator) loadDocuments(_ context.Context, r *run) error {
	for _, in := range []*Input{&r.req.Base, &r.req.Compare} {
		if in.Name == "" && in.Path != "" {
			in.Name = filepath.Base(in.Path)
		}
		if in.Data != nil {
			continue
		}
		if in.Path == "" {
			return fmt.Errorf("%w: no document content or path given", model.ErrInvalidInput)
		}
		data, err := os.ReadFile(in.Path)
		if err != nil {
			return fmt.Errorf("%w: failed to read %s: %v", model.ErrInvalidInput, in.Path, err)
		}
		in.Data = data
	}
	return nil
}

func (o *Orchestrator) validateDocuments(ctx context.Context, r *run) error {
	for _, in := range []Input{r.req.Base, r.req.Compare} {
		info, err := o.validator.Validate(in.Name, in.Data)
		if err != nil {
			return err
		}
		o.logger.DebugContext(ctx, "document valid", "document", in.Name, "pages", info.Pages, "version", info.Version)
	}
	return nil
}

func (o *Orchestrator) openDocuments(_ context.Context, r *run) error {
	var err error
	if r.baseDoc, err = o.opener.Open(r.req.Base.Data); err != nil {
		return fmt.Errorf("%s: %w", r.req.Base.Name, err)
	}
	if r.compareDoc, err = o.opener.Open(r.req.Compare.Data); err != nil {
		return fmt.Errorf("%s: %w", r.req.Compare.Name, err)
	}
	for _, d := range []struct {
		name string
		doc  pdf.Document
	}{{r.req.Base.Name, r.baseDoc}, {r.req.Compare.Name, r.compareDoc}} {
		if d.doc.NumPage() <= 0 {
			return &pdf.ValidationError{Document: d.name, Reason: pdf.ReasonNoPages}
		}
	}
	return nil
}

func (o *Orchestrator) prepareWorkDir(_ context.Context, r *run) error {
	dir, err := os.MkdirTemp(o.cfg.TempDir, "pdfdiff-"+r.id[:min(len(r.id), 8)]+"-")
	if err != nil {
		return fmt.Errorf("%w: failed to create working directory: %v", model.ErrStorage, err)
	}
	r.workDir = dir
	return ensureAssetsDir(dir)
}

func (o *Orchestrator) comparePages(ctx context.Context, r *run) error {
	pc := NewPageComparator(r.baseDoc, r.compareDoc, r.req.Threshold, o.cfg.Zoom, r.workDir, o.logger,
		textdiff.WithNormalization(o.cfg.NormalizeText))

	bp := pipeline.NewBatchProcessor(
		pipeline.WithConcurrency(o.cfg.Concurrency),
		pipeline.WithBatchLogger(o.logger),
	)

	var mu sync.Mutex
	pages, err := pipeline.Process(ctx, bp, pc.PageCount(), func(ctx context.Context, i int) (model.PageReport, error) {
		pr, err := pc.Compare(ctx, i)
		if err != nil {
			return model.PageReport{}, err
		}
		if o.observer != nil {
			mu.Lock()
			o.observer.PageDone(pr)
			mu.Unlock()
		}
		return pr, nil
	})
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		if !errors.Is(err, model.ErrStorage) && !errors.Is(err, model.ErrInvalidInput) {
			return fmt.Errorf("%w: %w", model.ErrConversion, err)
		}
		return err
	}
	r.pages = pages
	return nil
}

func (o *Orchestrator) buildReport(_ context.Context, r *run) error {
	r.report = report.Build(r.req.Base.Name, r.req.Compare.Name, r.pages, o.now())
	return nil
}

func (o *Orchestrator) packageArchive(ctx context.Context, r *run) error {
	outDir := o.cfg.OutputDir
	if outDir == "" {
		outDir = "."
	}
	if err := os.MkdirAll(outDir, 0o750); err != nil {
		return fmt.Errorf("%w: failed to create output directory: %v", model.ErrStorage, err)
	}

	path := filepath.Join(outDir, archive.Name(r.req.Base.Name, r.req.Compare.Name, r.id))
	packager := archive.NewPackager(
		archive.WithMinSize(o.cfg.MinArchiveSize),
		archive.WithLogger(o.logger),
	)
	if err := packager.Package(path, r.report, r.workDir); err != nil {
		return err
	}

	o.logger.DebugContext(ctx, "archive packaged", "path", path)
	r.archivePath = path
	return nil
}
