package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
	"github.com/nao1215/pdfdiff/internal/model"
)

// MarkdownWriter outputs reports in the report.md format.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{baseWriter: newBaseWriter(output)}
}

// Write outputs the report in Markdown format.
func (w *MarkdownWriter) Write(report *model.ComparisonReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, report)
	w.writeAlert(md, report)
	w.writePages(md, report)
	w.writeDegraded(md, report)
	w.writeAssets(md, report)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the title and the run summary table.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *model.ComparisonReport) {
	md.H1("PDF Comparison Report")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Generated (UTC)", report.GeneratedAt.UTC().Format(time.RFC3339)},
			{"Base file", codeSpan(report.BaseFile)},
			{"Compared file", codeSpan(report.ComparedFile)},
			{"Pages analyzed", strconv.Itoa(report.PagesAnalyzed)},
			{"Overall visual change", formatPercent(report.OverallVisualChangePercent)},
		},
	})
	md.PlainText("")
}

// writeAlert writes a callout summarizing the outcome.
func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, report *model.ComparisonReport) {
	counts := report.CountByStatus()
	asymmetric := counts[model.StatusAddedInSecond] + counts[model.StatusMissingInSecond]

	switch {
	case report.Identical():
		md.Tip("No visual or textual differences detected.")
	case asymmetric > 0:
		md.Warningf("Page counts differ: %d page(s) exist in only one document.", asymmetric)
	default:
		md.Importantf("Differences detected. Overall visual change is %s.",
			formatPercent(report.OverallVisualChangePercent))
	}
	md.PlainText("")
}

// writePages writes the per-page result table and the status chart.
func (w *MarkdownWriter) writePages(md *markdown.Markdown, report *model.ComparisonReport) {
	md.H2("Pages")
	md.PlainText("")

	if len(report.PageReports) == 0 {
		md.PlainText("No pages were compared.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(report.PageReports))
	for i, p := range report.PageReports {
		rows[i] = []string{
			strconv.Itoa(p.Page),
			p.Status.String(),
			formatPercent(p.ChangePercent),
			strconv.Itoa(p.WordsAdded),
			strconv.Itoa(p.WordsRemoved),
			formatPercent(p.TextSimilarityPercent),
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"Page", "Status", "Change %", "Words Added", "Words Removed", "Text Similarity %"},
		Rows:   rows,
	})
	md.PlainText("")

	w.writeStatusChart(md, report)
}

// writeStatusChart writes a mermaid pie chart of page statuses.
func (w *MarkdownWriter) writeStatusChart(md *markdown.Markdown, report *model.ComparisonReport) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Page Status"),
		piechart.WithShowData(true),
	)

	counts := report.CountByStatus()
	for _, status := range []model.PageStatus{
		model.StatusPresentInBoth,
		model.StatusAddedInSecond,
		model.StatusMissingInSecond,
	} {
		if n := counts[status]; n > 0 {
			chart.LabelAndIntValue(status.String(), uint64(n)) //nolint:gosec // counts are non-negative
		}
	}

	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeDegraded lists pages compared against a blank substitute.
func (w *MarkdownWriter) writeDegraded(md *markdown.Markdown, report *model.ComparisonReport) {
	var items []string
	for _, p := range report.PageReports {
		if p.Degraded() {
			items = append(items, fmt.Sprintf("Page %d: %s", p.Page, p.RenderError))
		}
	}
	if len(items) == 0 {
		return
	}

	md.H2("Rendering Problems")
	md.PlainText("")
	md.Cautionf("%d page(s) could not be rendered and were compared against a blank page.", len(items))
	md.PlainText("")
	md.BulletList(items...)
	md.PlainText("")
}

// writeAssets lists the diff image of every page.
func (w *MarkdownWriter) writeAssets(md *markdown.Markdown, report *model.ComparisonReport) {
	if len(report.PageReports) == 0 {
		return
	}

	md.H2("Diff Images")
	md.PlainText("")

	items := make([]string, len(report.PageReports))
	for i, p := range report.PageReports {
		items[i] = fmt.Sprintf("[Page %d](%s)", p.Page, p.DiffImage)
	}
	md.BulletList(items...)
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainText("*Report generated by pdfdiff*")
}

// formatPercent formats a percentage with two decimals.
func formatPercent(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64) + "%"
}

// tableCellEscaper keeps a value inside a single table cell.
var tableCellEscaper = strings.NewReplacer("\r", " ", "\n", " ", "|", `\|`)

// codeSpan formats a file name as inline code for a table cell. Names that
// contain backticks get a fence one backtick longer than their longest run.
func codeSpan(s string) string {
	s = tableCellEscaper.Replace(s)
	if !strings.Contains(s, "`") {
		return markdown.Code(s)
	}

	longest, run := 0, 0
	for _, r := range s {
		if r == '`' {
			run++
			longest = max(longest, run)
		} else {
			run = 0
		}
	}
	fence := strings.Repeat("`", longest+1)
	return fence + " " + s + " " + fence
}
