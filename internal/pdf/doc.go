// Package pdf provides the document capabilities the comparison engine
// depends on: structural validation of PDF byte streams, page rasterization
// and page text extraction.
//
// The engine only sees the Document, PageRasterizer and PageTextExtractor
// interfaces. Two backends are provided:
//   - FitzOpener renders and extracts text with MuPDF (github.com/gen2brain/go-fitz)
//   - NativeTextExtractor extracts text with the pure-Go reader
//     (github.com/ledongthuc/pdf), which FitzOpener can use instead of MuPDF text
//
// Validator checks the header, trailer, page count and encryption of a
// document before any rendering work begins and reports machine-readable
// reasons through ValidationError.
package pdf
