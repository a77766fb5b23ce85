// Package chunker splits extracted document text into overlapping,
// position-carrying segments for excerpt selection.
package chunker

import (
	"fmt"
	"strings"

	"github.com/xHezuSx/gpwdigest/internal/models"
)

// Chunker splits text into fixed-size chunks with a configured overlap.
// Sizes are in runes so multi-byte characters never split. Chunking is pure
// and deterministic: the same text and configuration always produce the same
// chunk sequence, and for chunk_size > overlap the chunk count equals
// ceil((len - overlap) / (chunk_size - overlap)).
type Chunker struct {
	chunkSize int
	overlap   int
}

// New creates a chunker with the given size and overlap (in runes).
// Validation happens on Chunk so a misconfigured chunker surfaces
// ErrInvalidInput instead of panicking at construction.
func New(chunkSize, overlap int) *Chunker {
	return &Chunker{chunkSize: chunkSize, overlap: overlap}
}

// Chunk splits text into ordered chunks covering the full text. When the text
// fits in one chunk, a single chunk equal to the whole text is returned.
// Returns ErrInvalidInput when the text is empty (or whitespace only) or the
// configuration violates chunk_size > 0, 0 <= overlap < chunk_size.
func (c *Chunker) Chunk(text string) ([]models.Chunk, error) {
	if c.chunkSize <= 0 {
		return nil, fmt.Errorf("%w: chunk size %d must be positive", models.ErrInvalidInput, c.chunkSize)
	}
	if c.overlap < 0 || c.overlap >= c.chunkSize {
		return nil, fmt.Errorf("%w: overlap %d must be in [0, %d)", models.ErrInvalidInput, c.overlap, c.chunkSize)
	}
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: empty text", models.ErrInvalidInput)
	}

	runes := []rune(text)
	if len(runes) <= c.chunkSize {
		return []models.Chunk{{Index: 0, Start: 0, Text: text}}, nil
	}

	step := c.chunkSize - c.overlap
	var chunks []models.Chunk
	for start := 0; ; start += step {
		end := start + c.chunkSize
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, models.Chunk{
			Index: len(chunks),
			Start: start,
			Text:  string(runes[start:end]),
		})
		if end >= len(runes) {
			break
		}
	}
	return chunks, nil
}
