package model

import (
	"fmt"
	"math"
	"path"
	"time"
)

// AssetsDir is the directory inside the output archive that holds the
// per-page images.
const AssetsDir = "comparison_assets"

// Image kinds written for every page.
const (
	ImageBase    = "base"
	ImageCompare = "compare"
	ImageDiff    = "diff"
)

// PageReport is the diff result for one page index.
// It is created once by the page comparator and never modified afterwards.
type PageReport struct {
	// Page is the 1-based page number.
	Page int `json:"page"`

	// Status tells whether the page exists in both documents or only one.
	Status PageStatus `json:"status"`

	// ChangedPixels is the number of pixels whose mean RGB delta met the threshold.
	ChangedPixels int `json:"changed_pixels"`

	// TotalPixels is width*height of the aligned canvas.
	TotalPixels int `json:"total_pixels"`

	// ChangePercent is ChangedPixels/TotalPixels*100 rounded to 2 decimals.
	ChangePercent float64 `json:"change_percent"`

	// WordsAdded counts words present only in the compared page.
	WordsAdded int `json:"words_added"`

	// WordsRemoved counts words present only in the base page.
	WordsRemoved int `json:"words_removed"`

	// TextSimilarityPercent is the 2*M/T word similarity ratio as a percentage.
	TextSimilarityPercent float64 `json:"text_similarity_percent"`

	// DiffImage, BaseImage and CompareImage are archive-relative image paths.
	DiffImage    string `json:"diff_image"`
	BaseImage    string `json:"base_image"`
	CompareImage string `json:"compare_image"`

	// RenderError is set when one or both sides could not be rasterized and the
	// page was compared against a blank substitute.
	RenderError string `json:"render_error,omitempty"`
}

// Degraded reports whether the page was compared with a blank substitute
// because rendering failed.
func (p PageReport) Degraded() bool {
	return p.RenderError != ""
}

// ImageName returns the deterministic file name of one page image,
// e.g. "page_001_diff.png" for page 1.
func ImageName(page int, kind string) string {
	return fmt.Sprintf("page_%03d_%s.png", page, kind)
}

// ImagePath returns the archive-relative path of one page image.
func ImagePath(page int, kind string) string {
	return path.Join(AssetsDir, ImageName(page, kind))
}

// ComparisonReport is the aggregated result of one comparison run.
// It is built once and serialized twice (markdown and JSON).
type ComparisonReport struct {
	// GeneratedAt is when the report was built, in UTC.
	GeneratedAt time.Time `json:"generated_at_utc"`

	// BaseFile is the display name of the base document.
	BaseFile string `json:"base_file"`

	// ComparedFile is the display name of the compared document.
	ComparedFile string `json:"compared_file"`

	// PagesAnalyzed is max(pageCountA, pageCountB).
	PagesAnalyzed int `json:"pages_analyzed"`

	// OverallVisualChangePercent is the pixel-weighted change across all pages.
	OverallVisualChangePercent float64 `json:"overall_visual_change_percent"`

	// PageReports holds one entry per page index, in document order.
	PageReports []PageReport `json:"page_reports"`
}

// CountByStatus returns how many pages carry each status.
func (r *ComparisonReport) CountByStatus() map[PageStatus]int {
	counts := make(map[PageStatus]int, 3)
	for _, p := range r.PageReports {
		counts[p.Status]++
	}
	return counts
}

// Identical reports whether no page shows a visual or textual difference and
// both documents have the same page count.
func (r *ComparisonReport) Identical() bool {
	for _, p := range r.PageReports {
		if p.Status != StatusPresentInBoth || p.ChangedPixels > 0 || p.WordsAdded > 0 || p.WordsRemoved > 0 {
			return false
		}
	}
	return true
}

// RoundPercent rounds a percentage to 2 decimal places, halves to even.
func RoundPercent(v float64) float64 {
	return math.RoundToEven(v*100) / 100
}

// Percent returns part/whole*100 rounded to 2 decimals. The divisor is
// clamped to at least 1 so that empty pages report 0.
func Percent(part, whole int) float64 {
	return RoundPercent(float64(part) / float64(max(whole, 1)) * 100)
}
