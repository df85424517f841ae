package report

import (
	"time"

	"github.com/nao1215/pdfdiff/internal/model"
)

// Build aggregates page reports into a ComparisonReport.
// The overall visual change is weighted by pixel count: it is the sum of
// changed pixels over the sum of total pixels, not the mean of page
// percentages.
func Build(baseFile, comparedFile string, pages []model.PageReport, generatedAt time.Time) *model.ComparisonReport {
	changed, total := 0, 0
	for _, p := range pages {
		changed += p.ChangedPixels
		total += p.TotalPixels
	}

	if pages == nil {
		pages = []model.PageReport{}
	}

	return &model.ComparisonReport{
		GeneratedAt:                generatedAt.UTC().Truncate(time.Second),
		BaseFile:                   baseFile,
		ComparedFile:               comparedFile,
		PagesAnalyzed:              len(pages),
		OverallVisualChangePercent: model.Percent(changed, total),
		PageReports:                pages,
	}
}
