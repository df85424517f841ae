package model

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestImagePath(t *testing.T) {
	t.Parallel()

	if got := ImageName(1, ImageDiff); got != "page_001_diff.png" {
		t.Errorf("ImageName() = %q", got)
	}
	if got := ImagePath(12, ImageBase); got != "comparison_assets/page_012_base.png" {
		t.Errorf("ImagePath() = %q", got)
	}
	if got := ImagePath(1000, ImageCompare); got != "comparison_assets/page_1000_compare.png" {
		t.Errorf("ImagePath() = %q", got)
	}
}

func TestPercent(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		part  int
		whole int
		want  float64
	}{
		{name: "zero whole", part: 0, whole: 0, want: 0},
		{name: "full", part: 50, whole: 50, want: 100},
		{name: "rounds to two decimals", part: 1, whole: 3, want: 33.33},
		{name: "small fraction", part: 10, whole: 10100, want: 0.1},
		{name: "half rounds to even", part: 1, whole: 800, want: 0.12},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := Percent(tt.part, tt.whole); got != tt.want {
				t.Errorf("Percent(%d, %d) = %v, want %v", tt.part, tt.whole, got, tt.want)
			}
		})
	}
}

func TestRoundPercent(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   float64
		want float64
	}{
		{in: 0.125, want: 0.12},
		{in: 0.375, want: 0.38},
		{in: 33.3333, want: 33.33},
		{in: 66.6666, want: 66.67},
		{in: 100, want: 100},
	}

	for _, tt := range tests {
		if got := RoundPercent(tt.in); got != tt.want {
			t.Errorf("RoundPercent(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestComparisonReport(t *testing.T) {
	t.Parallel()

	t.Run("identical when no page differs", func(t *testing.T) {
		t.Parallel()

		r := &ComparisonReport{PageReports: []PageReport{
			{Page: 1, Status: StatusPresentInBoth},
			{Page: 2, Status: StatusPresentInBoth},
		}}
		if !r.Identical() {
			t.Error("expected identical report")
		}
	})

	t.Run("not identical with an added page", func(t *testing.T) {
		t.Parallel()

		r := &ComparisonReport{PageReports: []PageReport{
			{Page: 1, Status: StatusPresentInBoth},
			{Page: 2, Status: StatusAddedInSecond},
		}}
		if r.Identical() {
			t.Error("expected non-identical report")
		}
		counts := r.CountByStatus()
		if counts[StatusPresentInBoth] != 1 || counts[StatusAddedInSecond] != 1 {
			t.Errorf("CountByStatus() = %v", counts)
		}
	})

	t.Run("not identical with word changes", func(t *testing.T) {
		t.Parallel()

		r := &ComparisonReport{PageReports: []PageReport{
			{Page: 1, Status: StatusPresentInBoth, WordsRemoved: 1},
		}}
		if r.Identical() {
			t.Error("expected non-identical report")
		}
	})

	t.Run("json field names", func(t *testing.T) {
		t.Parallel()

		r := &ComparisonReport{
			GeneratedAt:  time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
			BaseFile:     "a.pdf",
			ComparedFile: "b.pdf",
			PageReports: []PageReport{
				{Page: 1, Status: StatusMissingInSecond, DiffImage: ImagePath(1, ImageDiff)},
			},
		}
		data, err := json.Marshal(r)
		if err != nil {
			t.Fatalf("Marshal() error = %v", err)
		}

		out := string(data)
		for _, key := range []string{
			`"generated_at_utc":"2024-01-02T03:04:05Z"`,
			`"base_file":"a.pdf"`,
			`"compared_file":"b.pdf"`,
			`"pages_analyzed"`,
			`"overall_visual_change_percent"`,
			`"status":"missing_in_second_pdf"`,
			`"diff_image":"comparison_assets/page_001_diff.png"`,
			`"text_similarity_percent"`,
		} {
			if !strings.Contains(out, key) {
				t.Errorf("JSON missing %s in %s", key, out)
			}
		}
		if strings.Contains(out, "render_error") {
			t.Error("render_error should be omitted when empty")
		}
	})
}
