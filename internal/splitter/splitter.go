// Package splitter turns extracted document text into an ordered sequence of
// overlapping chunk texts. Splitting is fully deterministic: identical text
// and parameters always produce identical chunks.
package splitter

import (
	"strings"

	"github.com/intigra/ragapi/internal/domain/apperrors"
)

// Separators ordered from coarsest to finest semantic boundary. The empty
// string means a hard character cut.
var separators = []string{"\n\n", "\n", ". ", " ", ""}

// Split breaks text into windows of at most size characters. The last
// overlap characters of an emitted window are carried forward as the prefix
// of the next window, so consecutive chunks share context when material
// allows it. No characters are ever dropped.
//
// Empty text after trimming returns apperrors.ErrEmptyContent. Text that
// fits a single window returns exactly one chunk.
func Split(text string, size int, overlap int) ([]string, error) {
	if size <= 0 {
		return nil, apperrors.Validation("chunk size must be positive, got %d", size)
	}
	if overlap < 0 || overlap >= size {
		return nil, apperrors.Validation("overlap must be in [0, size), got %d", overlap)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperrors.ErrEmptyContent
	}
	if len(text) <= size {
		return []string{text}, nil
	}

	// Pieces are capped at size-overlap so a carried prefix plus any piece
	// always fits one window.
	pieces := breakDown(text, size-overlap, separators)
	return merge(pieces, size, overlap), nil
}

// breakDown recursively cuts text into pieces no longer than limit, trying
// separators coarsest-first. SplitAfter keeps the separator attached to the
// preceding piece so reassembly is lossless.
func breakDown(text string, limit int, seps []string) []string {
	if len(text) <= limit {
		return []string{text}
	}

	sepIndex := -1
	for i, s := range seps {
		if s == "" {
			sepIndex = i
			break
		}
		if strings.Contains(text, s) {
			sepIndex = i
			break
		}
	}

	sep := seps[sepIndex]
	if sep == "" {
		// Hard character cut.
		var pieces []string
		for start := 0; start < len(text); start += limit {
			end := start + limit
			if end > len(text) {
				end = len(text)
			}
			pieces = append(pieces, text[start:end])
		}
		return pieces
	}

	var pieces []string
	for _, part := range strings.SplitAfter(text, sep) {
		if part == "" {
			continue
		}
		if len(part) <= limit {
			pieces = append(pieces, part)
			continue
		}
		pieces = append(pieces, breakDown(part, limit, seps[sepIndex+1:])...)
	}
	return pieces
}

// merge packs pieces into windows of at most size characters, carrying the
// trailing overlap of each emitted window into the next one.
func merge(pieces []string, size int, overlap int) []string {
	var chunks []string
	current := ""

	for _, piece := range pieces {
		if current != "" && len(current)+len(piece) > size {
			chunks = append(chunks, current)

			if overlap > 0 && len(current) > overlap {
				current = current[len(current)-overlap:]
			} else {
				current = ""
			}
		}
		current += piece
	}

	if current != "" {
		chunks = append(chunks, current)
	}
	return chunks
}
