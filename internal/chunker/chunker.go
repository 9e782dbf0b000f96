// Package chunker splits document text into bounded, ordered chunks.
//
// Splitting prefers natural boundaries: paragraphs first, sentences second,
// and a hard cut only when a single sentence exceeds the size budget. The
// output is deterministic for a given (text, max size) pair, which keeps
// chunk counts reproducible across re-ingestion.
package chunker

import (
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/memora/internal/core/domain"
)

// DefaultMaxChunkSize is the default chunk size budget in bytes.
const DefaultMaxChunkSize = 1000

// Chunker splits text into chunks no longer than a configured size.
type Chunker struct {
	maxChunkSize int
}

// Option configures the chunker.
type Option func(*Chunker)

// WithMaxChunkSize sets the chunk size budget in bytes.
// Non-positive sizes are ignored and the default is kept.
func WithMaxChunkSize(size int) Option {
	return func(c *Chunker) {
		if size > 0 {
			c.maxChunkSize = size
		}
	}
}

// New creates a chunker with the given options.
func New(opts ...Option) *Chunker {
	c := &Chunker{maxChunkSize: DefaultMaxChunkSize}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// MaxChunkSize returns the configured size budget.
func (c *Chunker) MaxChunkSize() int {
	return c.maxChunkSize
}

// Split divides text into an ordered sequence of chunks, each at most the
// configured size. Text that fits the budget yields exactly one chunk.
// Text that is empty after trimming is a validation error.
func (c *Chunker) Split(text string) ([]string, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, domain.ErrInvalidInput
	}

	if len(trimmed) <= c.maxChunkSize {
		return []string{trimmed}, nil
	}

	acc := accumulator{max: c.maxChunkSize}

	for _, para := range splitParagraphs(trimmed) {
		if len(para) <= c.maxChunkSize {
			acc.add(para, "\n\n")
			continue
		}
		for _, sentence := range splitSentences(para) {
			if len(sentence) <= c.maxChunkSize {
				acc.add(sentence, " ")
				continue
			}
			for _, piece := range hardCut(sentence, c.maxChunkSize) {
				acc.add(piece, " ")
			}
		}
	}

	return acc.finish(), nil
}

// accumulator greedily packs units into chunks within the size budget.
type accumulator struct {
	max    int
	chunks []string
	buf    strings.Builder
}

func (a *accumulator) add(unit, sep string) {
	if a.buf.Len() == 0 {
		a.buf.WriteString(unit)
		return
	}
	if a.buf.Len()+len(sep)+len(unit) <= a.max {
		a.buf.WriteString(sep)
		a.buf.WriteString(unit)
		return
	}
	a.flush()
	a.buf.WriteString(unit)
}

func (a *accumulator) flush() {
	if a.buf.Len() > 0 {
		a.chunks = append(a.chunks, a.buf.String())
		a.buf.Reset()
	}
}

func (a *accumulator) finish() []string {
	a.flush()
	return a.chunks
}

// splitParagraphs splits on blank lines, dropping empty paragraphs.
func splitParagraphs(text string) []string {
	parts := strings.Split(text, "\n\n")
	paras := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			paras = append(paras, p)
		}
	}
	return paras
}

// splitSentences splits on sentence terminators and newlines.
func splitSentences(text string) []string {
	var sentences []string
	var current strings.Builder

	for _, r := range text {
		current.WriteRune(r)
		if r == '.' || r == '!' || r == '?' || r == '\n' {
			if s := strings.TrimSpace(current.String()); s != "" {
				sentences = append(sentences, s)
			}
			current.Reset()
		}
	}
	if s := strings.TrimSpace(current.String()); s != "" {
		sentences = append(sentences, s)
	}

	return sentences
}

// hardCut slices text into pieces of at most max bytes. Each cut prefers the
// last word boundary inside the window and falls back to a rune boundary so
// multi-byte characters are never split when avoidable.
func hardCut(text string, max int) []string {
	var pieces []string

	for len(text) > max {
		cut := max
		if i := strings.LastIndexByte(text[:max+1], ' '); i > 0 {
			cut = i
		} else {
			for cut > 0 && !utf8.RuneStart(text[cut]) {
				cut--
			}
			if cut == 0 {
				cut = max
			}
		}

		piece := strings.TrimSpace(text[:cut])
		if piece != "" {
			pieces = append(pieces, piece)
		}
		text = strings.TrimLeft(text[cut:], " ")
	}

	if text != "" {
		pieces = append(pieces, text)
	}
	return pieces
}
