package pdf

import (
	"errors"
	"fmt"
	"image"

	"github.com/gen2brain/go-fitz"
	"github.com/nao1215/pdfdiff/internal/model"
)

// baseDPI is the resolution of a zoom factor of 1.0.
const baseDPI = 72.0

// FitzOpener opens documents with MuPDF.
type FitzOpener struct {
	// NativeText switches page text extraction to NativeTextExtractor while
	// still rendering with MuPDF.
	NativeText bool
}

// NewFitzOpener creates a FitzOpener. When nativeText is true, page text is
// read with the pure-Go reader instead of MuPDF.
func NewFitzOpener(nativeText bool) *FitzOpener {
	return &FitzOpener{NativeText: nativeText}
}

// Open opens a document from memory.
func (o *FitzOpener) Open(data []byte) (Document, error) {
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		if errors.Is(err, fitz.ErrNeedsPassword) {
			return nil, fmt.Errorf("%w: %v", model.ErrEncryptedDocument, err)
		}
		return nil, fmt.Errorf("%w: failed to open document: %v", model.ErrInvalidInput, err)
	}

	var d Document = &fitzDocument{doc: doc}
	if o.NativeText {
		text, err := NewNativeTextExtractor(data)
		if err != nil {
			_ = doc.Close()
			return nil, err
		}
		d = WithTextExtractor(d, text)
	}
	return d, nil
}

// fitzDocument adapts *fitz.Document to Document.
// go-fitz serializes calls on a document internally.
type fitzDocument struct {
	doc *fitz.Document
}

// NumPage returns the number of pages.
func (d *fitzDocument) NumPage() int {
	return d.doc.NumPage()
}

// RasterizePage renders a page at zoom*72 DPI.
func (d *fitzDocument) RasterizePage(page int, zoom float64) (image.Image, error) {
	img, err := d.doc.ImageDPI(page, baseDPI*zoom)
	if err != nil {
		return nil, fmt.Errorf("%w: page %d: %v", model.ErrRender, page+1, err)
	}
	return img, nil
}

// PageText extracts the text of a page.
func (d *fitzDocument) PageText(page int) (string, error) {
	text, err := d.doc.Text(page)
	if err != nil {
		return "", fmt.Errorf("failed to extract text of page %d: %w", page+1, err)
	}
	return text, nil
}

// Close releases the MuPDF document.
func (d *fitzDocument) Close() error {
	return d.doc.Close()
}
