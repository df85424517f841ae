// Package pdftest builds minimal PDF byte streams for tests.
//
// The generated files have a correct cross-reference table, so they pass
// structural validation. Pages are blank unless Options.Text draws a line of
// Helvetica on them.
package pdftest

import (
	"bytes"
	"fmt"
	"strings"
)

// Options customizes a generated document.
type Options struct {
	// Version is the header version. Defaults to "1.4".
	Version string

	// Encrypted adds a standard security handler dictionary to the trailer.
	Encrypted bool

	// Text is drawn on the page with the same index. Pages past its end
	// stay blank.
	Text []string
}

// textEscaper escapes a PDF literal string.
var textEscaper = strings.NewReplacer(`\`, `\\`, "(", `\(`, ")", `\)`)

// Build returns a PDF with the given number of empty US-Letter pages.
func Build(pages int) []byte {
	return BuildWithOptions(pages, Options{})
}

// BuildWithOptions returns a PDF with the given number of pages and options.
func BuildWithOptions(pages int, opts Options) []byte {
	version := opts.Version
	if version == "" {
		version = "1.4"
	}

	objects := make([]string, 0, 2*pages+3)
	objects = append(objects, "<< /Type /Catalog /Pages 2 0 R >>")

	kids := make([]string, pages)
	for i := range kids {
		kids[i] = fmt.Sprintf("%d 0 R", i+3)
	}
	objects = append(objects, fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), pages))

	// Object numbers: pages 3..pages+2, font pages+3, content streams after it.
	font := pages + 3
	var streams []string
	for i := range pages {
		if i >= len(opts.Text) {
			objects = append(objects, "<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] >>")
			continue
		}
		content := fmt.Sprintf("BT /F1 24 Tf 72 700 Td (%s) Tj ET", textEscaper.Replace(opts.Text[i]))
		streams = append(streams, fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content))
		objects = append(objects, fmt.Sprintf(
			"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 %d 0 R >> >> /Contents %d 0 R >>",
			font, font+len(streams)))
	}
	if len(streams) > 0 {
		objects = append(objects, "<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>")
		objects = append(objects, streams...)
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%%PDF-%s\n", version)

	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objects)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}

	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R", len(objects)+1)
	if opts.Encrypted {
		buf.WriteString(" /Encrypt << /Filter /Standard /V 1 /R 2 /Length 40")
		fmt.Fprintf(&buf, " /O <%s> /U <%s> /P -44 >>", strings.Repeat("ab", 32), strings.Repeat("cd", 32))
		fmt.Fprintf(&buf, " /ID [<%s> <%s>]", strings.Repeat("01", 16), strings.Repeat("01", 16))
	}
	fmt.Fprintf(&buf, " >>\nstartxref\n%d\n%%%%EOF\n", xref)

	return buf.Bytes()
}
