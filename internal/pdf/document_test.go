package pdf

import (
	"image"
	"strings"
	"testing"

	"github.com/nao1215/pdfdiff/internal/pdf/pdftest"
)

type stubDocument struct{}

func (stubDocument) RasterizePage(_ int, _ float64) (image.Image, error) {
	return image.NewRGBA(image.Rect(0, 0, 1, 1)), nil
}
func (stubDocument) PageText(_ int) (string, error) { return "from mupdf", nil }
func (stubDocument) NumPage() int                   { return 1 }
func (stubDocument) Close() error                   { return nil }

type stubText string

func (s stubText) PageText(_ int) (string, error) { return string(s), nil }

// TestWithTextExtractor tests that text extraction can be swapped independently of rendering.
func TestWithTextExtractor(t *testing.T) {
	t.Parallel()

	doc := WithTextExtractor(stubDocument{}, stubText("from native reader"))

	text, err := doc.PageText(0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "from native reader" {
		t.Errorf("expected override text, got %q", text)
	}
	if doc.NumPage() != 1 {
		t.Errorf("expected page count to come from the wrapped document")
	}
}

// TestNativeTextExtractor tests the pure-Go text extractor.
func TestNativeTextExtractor(t *testing.T) {
	t.Parallel()

	t.Run("rejects non-pdf input", func(t *testing.T) {
		t.Parallel()

		if _, err := NewNativeTextExtractor([]byte("not a pdf")); err == nil {
			t.Error("expected error for non-pdf input")
		}
	})

	t.Run("reads page text", func(t *testing.T) {
		t.Parallel()

		ext, err := NewNativeTextExtractor(pdftest.BuildWithOptions(1, pdftest.Options{Text: []string{"the quick brown fox"}}))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		text, err := ext.PageText(0)
		if err != nil {
			t.Fatalf("PageText(0) error = %v", err)
		}
		if got := strings.Join(strings.Fields(text), " "); got != "the quick brown fox" {
			t.Errorf("PageText(0) = %q", text)
		}
	})

	t.Run("rejects out-of-range page", func(t *testing.T) {
		t.Parallel()

		ext, err := NewNativeTextExtractor(pdftest.Build(2))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, err := ext.PageText(5); err == nil {
			t.Error("expected error for page outside the document")
		}
		if _, err := ext.PageText(-1); err == nil {
			t.Error("expected error for negative page")
		}
	})
}
