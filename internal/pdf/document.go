package pdf

import "image"

// PageRasterizer renders one page to a pixel buffer.
// Rendering is deterministic for a given zoom factor. Failures wrap
// model.ErrRender.
type PageRasterizer interface {
	// RasterizePage renders the 0-based page at the given zoom
	// (1.0 = 72 DPI).
	RasterizePage(page int, zoom float64) (image.Image, error)
}

// PageTextExtractor extracts the plain text of one page.
type PageTextExtractor interface {
	// PageText returns the text of the 0-based page.
	PageText(page int) (string, error)
}

// Document is an opened PDF that can be rasterized and read page by page.
// Implementations must be safe for concurrent use by multiple goroutines.
type Document interface {
	PageRasterizer
	PageTextExtractor

	// NumPage returns the number of pages in the document.
	NumPage() int

	// Close releases the resources held by the document.
	Close() error
}

// Opener opens a Document from an in-memory PDF byte stream.
type Opener interface {
	Open(data []byte) (Document, error)
}

// withText overrides the text extraction of a Document.
type withText struct {
	Document
	text PageTextExtractor
}

// PageText delegates to the override extractor.
func (w *withText) PageText(page int) (string, error) {
	return w.text.PageText(page)
}

// WithTextExtractor returns a Document that renders with doc but extracts
// text with text.
func WithTextExtractor(doc Document, text PageTextExtractor) Document {
	return &withText{Document: doc, text: text}
}
