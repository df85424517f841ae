package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/pdfdiff/internal/model"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

var testTime = time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)

// createTestReport creates a report with three pages of mixed status.
func createTestReport() *model.ComparisonReport {
	pages := []model.PageReport{
		newPage(1, model.StatusPresentInBoth, 10, 100),
		newPage(2, model.StatusPresentInBoth, 0, 10000),
		newPage(3, model.StatusAddedInSecond, 10000, 10000),
	}
	pages[1].WordsAdded = 2
	pages[1].TextSimilarityPercent = 85.71
	return Build("base.pdf", "compare.pdf", pages, testTime)
}

func newPage(n int, status model.PageStatus, changed, total int) model.PageReport {
	return model.PageReport{
		Page:                  n,
		Status:                status,
		ChangedPixels:         changed,
		TotalPixels:           total,
		ChangePercent:         model.Percent(changed, total),
		TextSimilarityPercent: 100,
		DiffImage:             model.ImagePath(n, model.ImageDiff),
		BaseImage:             model.ImagePath(n, model.ImageBase),
		CompareImage:          model.ImagePath(n, model.ImageCompare),
	}
}

func TestBuild(t *testing.T) {
	t.Parallel()

	t.Run("overall change is pixel weighted", func(t *testing.T) {
		t.Parallel()

		r := Build("a.pdf", "b.pdf", []model.PageReport{
			newPage(1, model.StatusPresentInBoth, 10, 100),
			newPage(2, model.StatusPresentInBoth, 0, 10000),
		}, testTime)

		// 10/10100 rather than the mean of 10% and 0%.
		if r.OverallVisualChangePercent != 0.1 {
			t.Errorf("OverallVisualChangePercent = %v, want 0.1", r.OverallVisualChangePercent)
		}
		if r.PagesAnalyzed != 2 {
			t.Errorf("PagesAnalyzed = %d, want 2", r.PagesAnalyzed)
		}
	})

	t.Run("empty page list", func(t *testing.T) {
		t.Parallel()

		r := Build("a.pdf", "b.pdf", nil, testTime)
		if r.OverallVisualChangePercent != 0 {
			t.Errorf("OverallVisualChangePercent = %v, want 0", r.OverallVisualChangePercent)
		}
		if r.PageReports == nil {
			t.Error("PageReports should be an empty slice, not nil")
		}
	})

	t.Run("generated time is UTC", func(t *testing.T) {
		t.Parallel()

		local := time.Date(2024, 5, 6, 16, 8, 9, 500, time.FixedZone("JST", 9*60*60))
		r := Build("a.pdf", "b.pdf", nil, local)
		if !r.GeneratedAt.Equal(testTime) || r.GeneratedAt.Location() != time.UTC {
			t.Errorf("GeneratedAt = %v, want %v", r.GeneratedAt, testTime)
		}
	})
}

func TestJSONWriter(t *testing.T) {
	t.Parallel()

	t.Run("round trips the report", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		report := createTestReport()
		n, err := NewJSONWriter(&buf, WithPrettyPrint()).Write(report)
		if err != nil {
			t.Fatalf("Write() error = %v", err)
		}
		if n != buf.Len() {
			t.Errorf("Write() = %d, want %d", n, buf.Len())
		}

		var decoded model.ComparisonReport
		if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
			t.Fatalf("Unmarshal() error = %v", err)
		}
		if decoded.PagesAnalyzed != 3 {
			t.Errorf("PagesAnalyzed = %d, want 3", decoded.PagesAnalyzed)
		}
		if decoded.PageReports[2].Status != model.StatusAddedInSecond {
			t.Errorf("Status = %v, want %v", decoded.PageReports[2].Status, model.StatusAddedInSecond)
		}
		if !decoded.GeneratedAt.Equal(testTime) {
			t.Errorf("GeneratedAt = %v, want %v", decoded.GeneratedAt, testTime)
		}
	})

	t.Run("pretty print indents", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf, WithPrettyPrint()).Write(createTestReport()); err != nil {
			t.Fatalf("Write() error = %v", err)
		}
		if !strings.Contains(buf.String(), "\n  \"base_file\"") {
			t.Errorf("expected indented output, got %s", buf.String())
		}
	})

	t.Run("compact by default", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf).Write(createTestReport()); err != nil {
			t.Fatalf("Write() error = %v", err)
		}
		if strings.Count(buf.String(), "\n") != 1 {
			t.Errorf("expected a single line, got %s", buf.String())
		}
	})
}

func TestMarkdownWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes summary and pages", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf).Write(createTestReport()); err != nil {
			t.Fatalf("Write() error = %v", err)
		}

		out := buf.String()
		for _, want := range []string{
			"# PDF Comparison Report",
			"base.pdf",
			"compare.pdf",
			"2024-05-06T07:08:09Z",
			"added_in_second_pdf",
			"85.71%",
			"```mermaid",
			"[Page 3](comparison_assets/page_003_diff.png)",
		} {
			if !strings.Contains(out, want) {
				t.Errorf("markdown missing %q", want)
			}
		}
		if !strings.Contains(out, "Page counts differ") {
			t.Error("expected page count warning")
		}
	})

	t.Run("renders valid GFM tables", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		report := createTestReport()
		if _, err := NewMarkdownWriter(&buf).Write(report); err != nil {
			t.Fatalf("Write() error = %v", err)
		}

		md := goldmark.New(goldmark.WithExtensions(extension.GFM))
		doc := md.Parser().Parse(text.NewReader(buf.Bytes()))

		tables, rows := 0, 0
		err := ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
			if !entering {
				return ast.WalkContinue, nil
			}
			switch n.Kind() {
			case extast.KindTable:
				tables++
			case extast.KindTableRow:
				rows++
			}
			return ast.WalkContinue, nil
		})
		if err != nil {
			t.Fatalf("Walk() error = %v", err)
		}

		if tables != 2 {
			t.Errorf("tables = %d, want 2", tables)
		}
		// Five summary rows plus one row per page.
		if want := 5 + len(report.PageReports); rows != want {
			t.Errorf("table rows = %d, want %d", rows, want)
		}
	})

	t.Run("identical documents", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		report := Build("a.pdf", "a.pdf", []model.PageReport{newPage(1, model.StatusPresentInBoth, 0, 100)}, testTime)
		if _, err := NewMarkdownWriter(&buf).Write(report); err != nil {
			t.Fatalf("Write() error = %v", err)
		}
		if !strings.Contains(buf.String(), "No visual or textual differences detected.") {
			t.Error("expected identical tip")
		}
		if strings.Contains(buf.String(), "Rendering Problems") {
			t.Error("unexpected rendering problems section")
		}
	})

	t.Run("lists degraded pages", func(t *testing.T) {
		t.Parallel()

		page := newPage(1, model.StatusPresentInBoth, 100, 100)
		page.RenderError = "base: render error"
		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf).Write(Build("a.pdf", "b.pdf", []model.PageReport{page}, testTime)); err != nil {
			t.Fatalf("Write() error = %v", err)
		}
		if !strings.Contains(buf.String(), "Page 1: base: render error") {
			t.Errorf("expected degraded page entry, got %s", buf.String())
		}
	})

	t.Run("file names with backticks and pipes stay in their cells", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		report := Build("a`b.pdf", "x|y.pdf", []model.PageReport{newPage(1, model.StatusPresentInBoth, 0, 100)}, testTime)
		if _, err := NewMarkdownWriter(&buf).Write(report); err != nil {
			t.Fatalf("Write() error = %v", err)
		}

		src := buf.Bytes()
		doc := goldmark.New(goldmark.WithExtensions(extension.GFM)).Parser().Parse(text.NewReader(src))

		var spans []string
		var summaryRowCells []int
		inSummary := true
		err := ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
			if !entering {
				if n.Kind() == extast.KindTable {
					inSummary = false
				}
				return ast.WalkContinue, nil
			}
			switch n.Kind() {
			case ast.KindCodeSpan:
				var sb strings.Builder
				for c := n.FirstChild(); c != nil; c = c.NextSibling() {
					if txt, ok := c.(*ast.Text); ok {
						sb.Write(txt.Segment.Value(src))
					}
				}
				spans = append(spans, strings.TrimSpace(sb.String()))
			case extast.KindTableRow, extast.KindTableHeader:
				if inSummary {
					summaryRowCells = append(summaryRowCells, n.ChildCount())
				}
			}
			return ast.WalkContinue, nil
		})
		if err != nil {
			t.Fatalf("Walk() error = %v", err)
		}

		if len(spans) == 0 || spans[0] != "a`b.pdf" {
			t.Errorf("code spans = %q, want first to be %q", spans, "a`b.pdf")
		}
		for i, cells := range summaryRowCells {
			if cells != 2 {
				t.Errorf("summary row %d has %d cells, want 2", i, cells)
			}
		}
		if len(summaryRowCells) != 6 {
			t.Errorf("summary rows = %d, want 6", len(summaryRowCells))
		}
	})

	t.Run("no pages", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf).Write(Build("a.pdf", "b.pdf", nil, testTime)); err != nil {
			t.Fatalf("Write() error = %v", err)
		}
		if !strings.Contains(buf.String(), "No pages were compared.") {
			t.Error("expected empty assets message")
		}
	})
}

func TestCodeSpan(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{in: "base.pdf", want: "`base.pdf`"},
		{in: "a`b.pdf", want: "`` a`b.pdf ``"},
		{in: "a``b`.pdf", want: "``` a``b`.pdf ```"},
		{in: "x|y.pdf", want: "`x\\|y.pdf`"},
		{in: "line\nbreak.pdf", want: "`line break.pdf`"},
	}

	for _, tt := range tests {
		if got := codeSpan(tt.in); got != tt.want {
			t.Errorf("codeSpan(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
