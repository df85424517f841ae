// Package model defines the data structures shared by the comparison engine.
//
// This package contains the following main types:
//   - PageStatus: whether a page index exists in both documents or only one
//   - PageReport: the visual and textual diff result for one page
//   - ComparisonReport: the aggregated result of a whole comparison run
//
// It also holds the error taxonomy used across the engine (see errors.go),
// so that callers can classify failures with errors.Is without importing the
// packages that produced them.
//
// The report types are serialized to report.json and stored in the history
// database; their JSON field names are stable.
package model
