// Package chunker splits text into bounded, overlapping chunks for
// independent embedding.
package chunker

import (
	"fmt"
	"strings"

	"github.com/textvault/textvault/internal/core/domain"
)

// separators is the split preference order. The first separator whose
// pieces all fit within the maximum size wins. The empty string is the
// character-level fallback and always succeeds.
var separators = []string{"\n\n", "\n", ". ", " ", ""}

// Splitter splits text along a preference order of separators,
// producing chunks of at most a maximum size with a fixed overlap
// repeated between consecutive chunks.
type Splitter struct {
	maxSize int
	overlap int
}

// New creates a Splitter. maxSize must be positive and overlap must be
// non-negative and smaller than maxSize.
func New(maxSize, overlap int) (*Splitter, error) {
	if maxSize <= 0 {
		return nil, fmt.Errorf("%w: chunk size must be positive, got %d", domain.ErrInvalidInput, maxSize)
	}
	if overlap < 0 || overlap >= maxSize {
		return nil, fmt.Errorf("%w: overlap must be in [0, %d), got %d", domain.ErrInvalidInput, maxSize, overlap)
	}
	return &Splitter{maxSize: maxSize, overlap: overlap}, nil
}

// Split returns the chunks of text in source order. Empty input yields
// no chunks; input within the maximum size yields exactly one.
func (s *Splitter) Split(text string) []string {
	if text == "" {
		return nil
	}
	if len(text) <= s.maxSize {
		return []string{text}
	}

	for _, sep := range separators {
		if sep == "" {
			break
		}
		pieces := strings.SplitAfter(text, sep)
		if fitAll(pieces, s.maxSize) {
			return s.merge(pieces)
		}
	}

	// Character-level fallback: fixed windows stepping by
	// maxSize-overlap. Always terminates because overlap < maxSize.
	return s.window(text)
}

// merge reassembles separator pieces into chunks of up to maxSize
// characters, seeding each chunk after the first with the overlap tail
// of its predecessor. The seed is skipped when it would push the chunk
// past maxSize.
func (s *Splitter) merge(pieces []string) []string {
	var chunks []string
	var cur strings.Builder

	for _, piece := range pieces {
		if piece == "" {
			continue
		}
		if cur.Len() > 0 && cur.Len()+len(piece) > s.maxSize {
			prev := cur.String()
			chunks = append(chunks, prev)
			cur.Reset()

			tail := overlapTail(prev, s.overlap)
			if len(tail)+len(piece) <= s.maxSize {
				cur.WriteString(tail)
			}
		}
		cur.WriteString(piece)
	}

	if cur.Len() > 0 {
		chunks = append(chunks, cur.String())
	}
	return chunks
}

// window slices text into maxSize windows with overlap shared between
// consecutive windows.
func (s *Splitter) window(text string) []string {
	step := s.maxSize - s.overlap
	chunks := make([]string, 0, len(text)/step+1)

	for start := 0; start < len(text); start += step {
		end := start + s.maxSize
		if end >= len(text) {
			chunks = append(chunks, text[start:])
			break
		}
		chunks = append(chunks, text[start:end])
	}
	return chunks
}

// overlapTail returns the last overlap characters of text, clamped to
// the text length so a short chunk is never duplicated wholesale.
func overlapTail(text string, overlap int) string {
	if overlap >= len(text) {
		return text
	}
	return text[len(text)-overlap:]
}

func fitAll(pieces []string, maxSize int) bool {
	for _, p := range pieces {
		if len(p) > maxSize {
			return false
		}
	}
	return true
}
