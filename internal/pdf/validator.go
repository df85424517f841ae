package pdf

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/ledongthuc/pdf"
	"github.com/nao1215/pdfdiff/internal/model"
)

// Reason is a machine-readable validation failure reason.
type Reason string

// Validation failure reasons.
const (
	ReasonEmpty      Reason = "empty"
	ReasonNotPDF     Reason = "not_pdf"
	ReasonTruncated  Reason = "truncated"
	ReasonNoPages    Reason = "no_pages"
	ReasonEncrypted  Reason = "encrypted"
	ReasonUnreadable Reason = "unreadable"
)

// headerWindow is how far into the file the %PDF- header may start.
const headerWindow = 1024

// trailerWindow is how far from the end of the file %%EOF must appear.
const trailerWindow = 1024

var (
	headerMarker  = []byte("%PDF-")
	eofMarker     = []byte("%%EOF")
	encryptMarker = []byte("/Encrypt")
)

// ValidationError describes why a document was rejected.
// It unwraps to model.ErrEncryptedDocument for ReasonEncrypted and to
// model.ErrInvalidInput for every other reason.
type ValidationError struct {
	// Document is the display name of the rejected document.
	Document string

	// Reason is the machine-readable rejection reason.
	Reason Reason

	// Err is the underlying parser error, if any.
	Err error
}

// Error returns a human-readable description.
func (e *ValidationError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Document, e.Reason.Message())
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the taxonomy sentinel and the underlying error.
func (e *ValidationError) Unwrap() []error {
	class := model.ErrInvalidInput
	if e.Reason == ReasonEncrypted {
		class = model.ErrEncryptedDocument
	}
	if e.Err == nil {
		return []error{class}
	}
	return []error{class, e.Err}
}

// Message returns a human-readable explanation of the reason.
func (r Reason) Message() string {
	switch r {
	case ReasonEmpty:
		return "file is empty"
	case ReasonNotPDF:
		return "file is not a PDF document"
	case ReasonTruncated:
		return "file is truncated (missing end-of-file marker)"
	case ReasonNoPages:
		return "document has no pages"
	case ReasonEncrypted:
		return "document is password-protected"
	case ReasonUnreadable:
		return "document structure cannot be read"
	default:
		return string(r)
	}
}

// Info is what validation learned about a document.
type Info struct {
	// Pages is the page count declared by the page tree.
	Pages int

	// Version is the header version, e.g. "1.7".
	Version string
}

// Validator checks that a byte stream is a well-formed, unencrypted PDF
// with at least one page.
type Validator struct{}

// NewValidator creates a new validator instance.
func NewValidator() *Validator {
	return &Validator{}
}

// Validate inspects data and returns its page count, or a *ValidationError.
func (v *Validator) Validate(name string, data []byte) (Info, error) {
	reject := func(reason Reason, err error) (Info, error) {
		return Info{}, &ValidationError{Document: name, Reason: reason, Err: err}
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return reject(ReasonEmpty, nil)
	}

	start := bytes.Index(data[:min(len(data), headerWindow)], headerMarker)
	if start < 0 {
		return reject(ReasonNotPDF, nil)
	}
	data = data[start:]
	version := headerVersion(data)

	tail := data[max(0, len(data)-trailerWindow):]
	if !bytes.Contains(tail, eofMarker) {
		return reject(ReasonTruncated, nil)
	}

	r, err := openReader(data)
	if err != nil {
		if errors.Is(err, pdf.ErrInvalidPassword) || bytes.Contains(data, encryptMarker) {
			return reject(ReasonEncrypted, nil)
		}
		return reject(ReasonUnreadable, err)
	}

	if !r.Trailer().Key("Encrypt").IsNull() {
		return reject(ReasonEncrypted, nil)
	}

	pages, err := countPages(r)
	if err != nil {
		return reject(ReasonUnreadable, err)
	}
	if pages <= 0 {
		return reject(ReasonNoPages, nil)
	}

	return Info{Pages: pages, Version: version}, nil
}

// openReader parses the xref table and trailer. The reader only accepts
// 1.x headers, so a 2.0 header is presented as 1.7; the byte length and
// therefore every xref offset stay the same.
func openReader(data []byte) (r *pdf.Reader, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("parser panic: %v", rec)
		}
	}()

	if bytes.HasPrefix(data, []byte("%PDF-2.")) {
		patched := make([]byte, len(data))
		copy(patched, data)
		copy(patched, "%PDF-1.7")
		data = patched
	}

	return pdf.NewReader(bytes.NewReader(data), int64(len(data)))
}

// countPages reads /Root /Pages /Count.
func countPages(r *pdf.Reader) (n int, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("malformed page tree: %v", rec)
		}
	}()
	return r.NumPage(), nil
}

// headerVersion returns the version following %PDF-, e.g. "1.7".
func headerVersion(data []byte) string {
	rest := data[len(headerMarker):min(len(data), len(headerMarker)+3)]
	return string(rest)
}
