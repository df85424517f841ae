// Package report builds the comparison report and writes it in the output
// formats of the archive:
//   - Build aggregates page reports into a model.ComparisonReport
//   - JSONWriter: report.json, the stable machine-readable schema
//   - MarkdownWriter: report.md, a human-readable summary with a page table
//
// Writers implement the Writer interface so the packager can treat every
// format the same way.
package report
