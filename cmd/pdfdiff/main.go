// Package main provides the entry point for the pdfdiff CLI.
//
// pdfdiff compares two PDF documents page by page. It highlights visual
// changes in diff images, counts added and removed words, and packages a
// Markdown and JSON report together with all page images into one archive.
//
// Usage:
//
//	pdfdiff compare base.pdf revised.pdf
//	pdfdiff history
//
// See --help for all available options.
package main

// main is the entry point for pdfdiff.
func main() {
	Execute()
}
