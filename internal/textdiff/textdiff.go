// Package textdiff computes the word-level difference between the text of
// two pages.
//
// Text is split on whitespace and the two word sequences are aligned with a
// longest-matching-block sequence matcher. The result counts inserted and
// deleted words and reports the 2*M/T similarity ratio. It is independent of
// the pixel diff: reflowed text can read differently while rendering the same.
package textdiff

import (
	"strings"

	"github.com/nao1215/pdfdiff/internal/model"
	"github.com/pmezard/go-difflib/difflib"
	"golang.org/x/text/unicode/norm"
)

// Opcode tags produced by the matcher.
const (
	opEqual   = 'e'
	opInsert  = 'i'
	opDelete  = 'd'
	opReplace = 'r'
)

// Result is the word diff of one page pair.
type Result struct {
	// WordsAdded is the number of words only present in the compared text.
	WordsAdded int

	// WordsRemoved is the number of words only present in the base text.
	WordsRemoved int

	// SimilarityPercent is 2*M/T*100 rounded to 2 decimals, where M is the
	// number of matched words and T the total number of words on both sides.
	// Two empty texts are 100% similar.
	SimilarityPercent float64

	// Ratio is the unrounded 2*M/T ratio in [0, 1].
	Ratio float64
}

// Option configures Compare.
type Option func(*options)

type options struct {
	normalize bool
}

// WithNormalization applies Unicode NFKC normalization to every word, so that
// ligatures and full-width forms produced by different PDF writers match.
func WithNormalization(enabled bool) Option {
	return func(o *options) {
		o.normalize = enabled
	}
}

// Tokenize splits text into words on any Unicode whitespace.
func Tokenize(text string) []string {
	return strings.Fields(text)
}

// Compare computes the word diff between base and compare text.
func Compare(base, compare string, opts ...Option) Result {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	a, b := Tokenize(base), Tokenize(compare)
	if o.normalize {
		a, b = normalize(a), normalize(b)
	}

	m := difflib.NewMatcher(a, b)

	var res Result
	for _, op := range m.GetOpCodes() {
		switch op.Tag {
		case opInsert:
			res.WordsAdded += op.J2 - op.J1
		case opDelete:
			res.WordsRemoved += op.I2 - op.I1
		case opReplace:
			res.WordsAdded += op.J2 - op.J1
			res.WordsRemoved += op.I2 - op.I1
		case opEqual:
		}
	}

	res.Ratio = m.Ratio()
	res.SimilarityPercent = model.RoundPercent(res.Ratio * 100)
	return res
}

// normalize returns NFKC-normalized copies of words.
func normalize(words []string) []string {
	out := make([]string, len(words))
	for i, w := range words {
		out[i] = norm.NFKC.String(w)
	}
	return out
}
