package compare

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/nao1215/pdfdiff/internal/model"
	"github.com/nao1215/pdfdiff/internal/pdf"
	"github.com/nao1215/pdfdiff/internal/textdiff"
	"github.com/nao1215/pdfdiff/internal/visual"
)

// PageComparator compares one page index of two opened documents.
// It is safe for concurrent use when both documents are.
type PageComparator struct {
	base      pdf.Document
	compare   pdf.Document
	threshold int
	zoom      float64
	workDir   string
	textOpts  []textdiff.Option
	logger    *slog.Logger
}

// NewPageComparator creates a PageComparator writing page images below
// workDir/comparison_assets, which must exist.
func NewPageComparator(base, compare pdf.Document, threshold int, zoom float64, workDir string, logger *slog.Logger, textOpts ...textdiff.Option) *PageComparator {
	if logger == nil {
		logger = slog.Default()
	}
	return &PageComparator{
		base:      base,
		compare:   compare,
		threshold: threshold,
		zoom:      zoom,
		workDir:   workDir,
		textOpts:  textOpts,
		logger:    logger,
	}
}

// PageCount returns the number of page indexes to compare,
// max(base pages, compare pages).
func (c *PageComparator) PageCount() int {
	return max(c.base.NumPage(), c.compare.NumPage())
}

// Compare produces the report of the 0-based page index and writes its three
// images. Rendering failures degrade the page; only storage failures are
// returned as errors.
func (c *PageComparator) Compare(ctx context.Context, index int) (model.PageReport, error) {
	status, ok := model.ResolveStatus(index, c.base.NumPage(), c.compare.NumPage())
	if !ok {
		return model.PageReport{}, fmt.Errorf("%w: page index %d out of range", model.ErrInvalidInput, index)
	}
	page := index + 1

	baseImg, compareImg, renderErr := c.rasterize(ctx, index, status)
	pair := visual.Align(baseImg, compareImg)
	pixels := visual.Diff(pair, c.threshold)

	words := textdiff.Compare(
		c.text(ctx, c.base, "base", index, status.HasBase()),
		c.text(ctx, c.compare, "compare", index, status.HasCompare()),
		c.textOpts...,
	)

	pr := model.PageReport{
		Page:                  page,
		Status:                status,
		ChangedPixels:         pixels.ChangedPixels,
		TotalPixels:           pixels.TotalPixels,
		ChangePercent:         pixels.ChangePercent,
		WordsAdded:            words.WordsAdded,
		WordsRemoved:          words.WordsRemoved,
		TextSimilarityPercent: words.SimilarityPercent,
		BaseImage:             model.ImagePath(page, model.ImageBase),
		CompareImage:          model.ImagePath(page, model.ImageCompare),
		DiffImage:             model.ImagePath(page, model.ImageDiff),
	}
	if renderErr != nil {
		pr.RenderError = renderErr.Error()
	}

	images := []struct {
		rel string
		img image.Image
	}{
		{pr.BaseImage, pair.Base},
		{pr.CompareImage, pair.Compare},
		{pr.DiffImage, pixels.Overlay},
	}
	for _, im := range images {
		path := filepath.Join(c.workDir, filepath.FromSlash(im.rel))
		if err := visual.WritePNG(path, im.img); err != nil {
			return model.PageReport{}, fmt.Errorf("%w: page %d: %v", model.ErrStorage, page, err)
		}
	}

	c.logger.DebugContext(ctx, "page compared",
		"page", page,
		"status", status.String(),
		"change_percent", pr.ChangePercent,
		"similarity_percent", pr.TextSimilarityPercent,
	)
	return pr, nil
}

// rasterize renders the sides that exist. A missing side becomes a white
// canvas the size of the present side. A side that fails to render becomes
// a white canvas the size of the other side, and the failure is returned
// for the report.
func (c *PageComparator) rasterize(ctx context.Context, index int, status model.PageStatus) (image.Image, image.Image, error) {
	var (
		baseImg, compareImg image.Image
		baseErr, compareErr error
	)

	if status.HasBase() {
		baseImg, baseErr = c.render(c.base, index)
	}
	if status.HasCompare() {
		compareImg, compareErr = c.render(c.compare, index)
	}

	if baseImg == nil {
		baseImg = visual.BlankLike(compareImg)
	}
	if compareImg == nil {
		compareImg = visual.BlankLike(baseImg)
	}

	var problems []string
	if baseErr != nil {
		problems = append(problems, "base: "+baseErr.Error())
	}
	if compareErr != nil {
		problems = append(problems, "compare: "+compareErr.Error())
	}
	if len(problems) == 0 {
		return baseImg, compareImg, nil
	}

	err := errors.New(strings.Join(problems, "; "))
	c.logger.WarnContext(ctx, "page rendered with blank substitute", "page", index+1, "error", err)
	return baseImg, compareImg, err
}

// render rasterizes one page, converting a panic in the rendering backend
// into a render error.
func (c *PageComparator) render(doc pdf.PageRasterizer, index int) (img image.Image, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			img, err = nil, fmt.Errorf("%w: page %d: %v", model.ErrRender, index+1, rec)
		}
	}()

	img, err = doc.RasterizePage(index, c.zoom)
	if err != nil {
		return nil, err
	}
	if img == nil {
		return nil, fmt.Errorf("%w: page %d: renderer returned no image", model.ErrRender, index+1)
	}
	return img, nil
}

// text extracts page text, treating a missing side or an extraction failure
// as an empty page.
func (c *PageComparator) text(ctx context.Context, doc pdf.PageTextExtractor, side string, index int, present bool) string {
	if !present {
		return ""
	}
	s, err := doc.PageText(index)
	if err != nil {
		c.logger.WarnContext(ctx, "text extraction failed, treating page as empty",
			"side", side, "page", index+1, "error", err)
		return ""
	}
	return s
}

// ensureAssetsDir creates the image directory inside workDir.
func ensureAssetsDir(workDir string) error {
	if err := os.MkdirAll(filepath.Join(workDir, model.AssetsDir), 0o750); err != nil {
		return fmt.Errorf("%w: failed to create assets directory: %v", model.ErrStorage, err)
	}
	return nil
}
