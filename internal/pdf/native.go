package pdf

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/ledongthuc/pdf"
)

// NativeTextExtractor extracts page text with the pure-Go PDF reader.
type NativeTextExtractor struct {
	mu sync.Mutex
	r  *pdf.Reader
}

// NewNativeTextExtractor parses data and returns an extractor for it.
func NewNativeTextExtractor(data []byte) (ext *NativeTextExtractor, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("failed to parse document: %v", rec)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to parse document: %w", err)
	}
	return &NativeTextExtractor{r: r}, nil
}

// PageText returns the plain text of the 0-based page.
// The reader panics on some malformed content streams; those panics are
// returned as errors.
func (e *NativeTextExtractor) PageText(page int) (text string, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("failed to extract text of page %d: %v", page+1, rec)
		}
	}()

	if page < 0 || page >= e.r.NumPage() {
		return "", fmt.Errorf("page %d out of range", page+1)
	}

	p := e.r.Page(page + 1)
	if p.V.IsNull() {
		return "", fmt.Errorf("page %d not found", page+1)
	}
	return p.GetPlainText(nil)
}
