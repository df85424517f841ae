package compare

import (
	"context"
	"testing"

	"github.com/nao1215/pdfdiff/internal/config"
	"github.com/nao1215/pdfdiff/internal/model"
	"github.com/nao1215/pdfdiff/internal/pdf/pdftest"
)

// pdfRequest returns a request over two generated PDFs with text.
func pdfRequest(base, compare []string, basePages, comparePages, threshold int) Request {
	return Request{
		Base:      Input{Name: "base.pdf", Data: pdftest.BuildWithOptions(basePages, pdftest.Options{Text: base})},
		Compare:   Input{Name: "compare.pdf", Data: pdftest.BuildWithOptions(comparePages, pdftest.Options{Text: compare})},
		Threshold: threshold,
	}
}

// newRenderConfig returns a config for comparisons rendered by MuPDF.
func newRenderConfig(t *testing.T, engine string) *config.Config {
	t.Helper()

	cfg := newTestConfig(t)
	cfg.Zoom = 1
	cfg.TextEngine = engine
	return cfg
}

func TestOrchestratorWithMuPDF(t *testing.T) {
	t.Parallel()

	t.Run("missing trailing page", func(t *testing.T) {
		t.Parallel()

		cfg := newRenderConfig(t, config.TextEngineFitz)
		req := pdfRequest([]string{"one", "two", "three"}, []string{"one", "two"}, 3, 2, config.DefaultDiffThreshold)

		res, err := New(cfg).Compare(context.Background(), req)
		if err != nil {
			t.Fatalf("Compare() error = %v", err)
		}

		r := res.Report
		if r.PagesAnalyzed != 3 || len(r.PageReports) != 3 {
			t.Fatalf("pages analyzed = %d, reports = %d, want 3", r.PagesAnalyzed, len(r.PageReports))
		}
		for _, p := range r.PageReports[:2] {
			if p.Status != model.StatusPresentInBoth || p.ChangedPixels != 0 || p.TextSimilarityPercent != 100 {
				t.Errorf("page %d = %+v, want unchanged", p.Page, p)
			}
		}

		last := r.PageReports[2]
		if last.Status != model.StatusMissingInSecond {
			t.Errorf("page 3 status = %s, want %s", last.Status, model.StatusMissingInSecond)
		}
		if last.ChangedPixels == 0 || last.TotalPixels != 612*792 {
			t.Errorf("page 3 pixels = %d/%d, want text against a blank letter page", last.ChangedPixels, last.TotalPixels)
		}
		if last.WordsRemoved != 1 || last.WordsAdded != 0 {
			t.Errorf("page 3 words = +%d -%d, want +0 -1", last.WordsAdded, last.WordsRemoved)
		}
		if last.RenderError != "" {
			t.Errorf("unexpected render error %q", last.RenderError)
		}
		if got := len(archiveEntries(t, res.ArchivePath)); got != 2+3*3 {
			t.Errorf("archive entries = %d, want %d", got, 2+3*3)
		}
		assertEmptyDir(t, cfg.TempDir)
	})

	t.Run("identical documents", func(t *testing.T) {
		t.Parallel()

		text := []string{"the quick fox", "jumps over the lazy dog"}
		for _, engine := range []string{config.TextEngineFitz, config.TextEngineNative} {
			for _, threshold := range []int{config.MinDiffThreshold, config.MaxDiffThreshold} {
				cfg := newRenderConfig(t, engine)

				res, err := New(cfg).Compare(context.Background(), pdfRequest(text, text, 2, 2, threshold))
				if err != nil {
					t.Fatalf("%s/%d: Compare() error = %v", engine, threshold, err)
				}

				if res.Report.OverallVisualChangePercent != 0 {
					t.Errorf("%s/%d: overall change = %v, want 0", engine, threshold, res.Report.OverallVisualChangePercent)
				}
				for _, p := range res.Report.PageReports {
					if p.ChangePercent != 0 || p.TextSimilarityPercent != 100 || p.WordsAdded != 0 || p.WordsRemoved != 0 {
						t.Errorf("%s/%d: page %d = %+v", engine, threshold, p.Page, p)
					}
				}
				if !res.Report.Identical() {
					t.Errorf("%s/%d: expected identical report", engine, threshold)
				}
			}
		}
	})

	t.Run("inserted word", func(t *testing.T) {
		t.Parallel()

		for _, engine := range []string{config.TextEngineFitz, config.TextEngineNative} {
			previous := -1
			for _, threshold := range []int{config.MinDiffThreshold, config.DefaultDiffThreshold, config.MaxDiffThreshold} {
				cfg := newRenderConfig(t, engine)
				req := pdfRequest([]string{"the quick fox"}, []string{"the quick brown fox"}, 1, 1, threshold)

				res, err := New(cfg).Compare(context.Background(), req)
				if err != nil {
					t.Fatalf("%s/%d: Compare() error = %v", engine, threshold, err)
				}

				p := res.Report.PageReports[0]
				if p.WordsAdded != 1 || p.WordsRemoved != 0 {
					t.Errorf("%s/%d: words = +%d -%d, want +1 -0", engine, threshold, p.WordsAdded, p.WordsRemoved)
				}
				if p.TextSimilarityPercent != 85.71 {
					t.Errorf("%s/%d: similarity = %v, want 85.71", engine, threshold, p.TextSimilarityPercent)
				}
				if p.ChangedPixels == 0 {
					t.Errorf("%s/%d: expected changed pixels", engine, threshold)
				}
				if previous >= 0 && p.ChangedPixels > previous {
					t.Errorf("%s/%d: changed pixels rose from %d to %d", engine, threshold, previous, p.ChangedPixels)
				}
				previous = p.ChangedPixels
			}
		}
	})
}
