// Package archive assembles the output bundle of a comparison run.
//
// The bundle is a zip file holding report.md, report.json and the three
// images of every page under comparison_assets/. Packager validates the
// written file against a minimum size and removes it on failure, so a caller
// never receives a partial archive.
package archive
