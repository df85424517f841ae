// Package compare implements the PDF comparison engine.
//
// Orchestrator is the entry point. A run:
//  1. rejects a diff threshold outside [5, 80] before any document is touched
//  2. validates both documents (not empty, a PDF, complete, not encrypted)
//  3. compares every page index with PageComparator, in parallel, restoring
//     page order afterwards
//  4. builds the report and packages it with all page images into one archive
//
// All intermediate images live in a per-run working directory that is
// removed on every exit path.
//
// PageComparator resolves whether a page exists in both documents or only
// one, rasterizes the existing sides, aligns and diffs the canvases, diffs
// the page text and writes the three page images. A page that fails to
// render is compared against a blank page instead of failing the run.
package compare
