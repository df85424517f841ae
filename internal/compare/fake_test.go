package compare

import (
	"errors"
	"image"
	"image/color"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nao1215/pdfdiff/internal/model"
	"github.com/nao1215/pdfdiff/internal/pdf"
)

// fakePage is one page of a fakeDocument.
type fakePage struct {
	img       image.Image
	text      string
	renderErr error
	textErr   error
	delay     time.Duration
}

// fakeDocument is an in-memory pdf.Document.
type fakeDocument struct {
	pages    []fakePage
	closeErr error
	renders  atomic.Int32
	closed   atomic.Bool
}

func (d *fakeDocument) NumPage() int { return len(d.pages) }

func (d *fakeDocument) RasterizePage(page int, _ float64) (image.Image, error) {
	d.renders.Add(1)
	p := d.pages[page]
	time.Sleep(p.delay)
	if p.renderErr != nil {
		return nil, p.renderErr
	}
	return p.img, nil
}

func (d *fakeDocument) PageText(page int) (string, error) {
	p := d.pages[page]
	if p.textErr != nil {
		return "", p.textErr
	}
	return p.text, nil
}

func (d *fakeDocument) Close() error {
	d.closed.Store(true)
	return d.closeErr
}

// fakeOpener returns its documents in call order: base first, then compare.
type fakeOpener struct {
	mu    sync.Mutex
	docs  []*fakeDocument
	opens int
}

func (o *fakeOpener) Open(_ []byte) (pdf.Document, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.opens >= len(o.docs) {
		return nil, errors.New("no more documents")
	}
	doc := o.docs[o.opens]
	o.opens++
	return doc, nil
}

func (o *fakeOpener) openCount() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.opens
}

// acceptAll is a validator that accepts every document.
type acceptAll struct{}

func (acceptAll) Validate(_ string, _ []byte) (pdf.Info, error) {
	return pdf.Info{Pages: 1, Version: "1.4"}, nil
}

// pageRecorder is an Observer collecting page reports.
type pageRecorder struct {
	pages []model.PageReport
}

func (r *pageRecorder) PageDone(p model.PageReport) {
	r.pages = append(r.pages, p)
}

// solid returns a w x h image filled with c.
func solid(w, h int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.Set(x, y, c)
		}
	}
	return img
}

// document builds a fakeDocument of n identical white pages with text.
func document(n int, text string) *fakeDocument {
	pages := make([]fakePage, n)
	for i := range pages {
		pages[i] = fakePage{img: solid(20, 30, color.White), text: text}
	}
	return &fakeDocument{pages: pages}
}
