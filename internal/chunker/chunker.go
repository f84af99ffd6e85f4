// Package chunker splits raw document text into overlapping fixed-size
// segments suitable for embedding.
package chunker

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/futig/rag-backend/internal/entity"
)

// Separator priority, coarsest first. The empty separator means a plain
// character split and always succeeds.
var separators = []string{"\n\n", "\n", " ", ""}

// Chunker produces chunks of at most chunkSize characters with overlap
// characters duplicated between consecutive chunks. Splitting is
// deterministic: the same input always yields the same chunk sequence.
type Chunker struct {
	chunkSize int
	overlap   int
}

// New validates the chunking parameters. overlap >= chunkSize is a
// configuration error: every chunk must carry at least one fresh character.
func New(chunkSize, overlap int) (*Chunker, error) {
	if chunkSize <= 0 {
		return nil, fmt.Errorf("%w: chunk size must be positive, got %d", entity.ErrInvalidConfig, chunkSize)
	}
	if overlap < 0 {
		return nil, fmt.Errorf("%w: overlap must not be negative, got %d", entity.ErrInvalidConfig, overlap)
	}
	if overlap >= chunkSize {
		return nil, fmt.Errorf("%w: overlap %d must be smaller than chunk size %d", entity.ErrInvalidConfig, overlap, chunkSize)
	}
	return &Chunker{chunkSize: chunkSize, overlap: overlap}, nil
}

// ChunkSize returns the configured soft upper bound in characters.
func (c *Chunker) ChunkSize() int { return c.chunkSize }

// Overlap returns the number of characters duplicated between consecutive chunks.
func (c *Chunker) Overlap() int { return c.overlap }

// Split cuts text into chunks. Concatenating the chunks after removing the
// duplicated overlap prefix of every chunk but the first reconstructs the
// input exactly. Empty text yields no chunks; text shorter than the chunk
// size yields exactly one.
func (c *Chunker) Split(text string) []string {
	if text == "" {
		return nil
	}

	// Pieces never exceed the fresh capacity of a chunk, so appending one
	// piece to the overlap prefix can never overshoot chunkSize.
	maxPiece := c.chunkSize - c.overlap
	pieces := split(text, separators, maxPiece)

	var chunks []string
	var cur []rune
	fresh := 0

	for _, piece := range pieces {
		if piece == "" {
			continue
		}
		pr := []rune(piece)
		if fresh > 0 && len(cur)+len(pr) > c.chunkSize {
			chunks = append(chunks, string(cur))
			tail := c.overlap
			if tail > len(cur) {
				tail = len(cur)
			}
			cur = append([]rune(nil), cur[len(cur)-tail:]...)
			fresh = 0
		}
		cur = append(cur, pr...)
		fresh += len(pr)
	}
	if fresh > 0 {
		chunks = append(chunks, string(cur))
	}
	return chunks
}

// split recursively cuts text into pieces of at most limit characters,
// trying the coarsest separator first. Separators stay attached to the
// preceding piece so that concatenation is lossless.
func split(text string, seps []string, limit int) []string {
	if utf8.RuneCountInString(text) <= limit {
		return []string{text}
	}

	sep := seps[0]
	if sep == "" {
		return splitRunes(text, limit)
	}

	parts := strings.Split(text, sep)
	pieces := make([]string, 0, len(parts))
	for i, part := range parts {
		if i < len(parts)-1 {
			part += sep
		}
		if part == "" {
			continue
		}
		if utf8.RuneCountInString(part) <= limit {
			pieces = append(pieces, part)
			continue
		}
		pieces = append(pieces, split(part, seps[1:], limit)...)
	}
	return pieces
}

func splitRunes(text string, limit int) []string {
	runes := []rune(text)
	pieces := make([]string, 0, (len(runes)+limit-1)/limit)
	for start := 0; start < len(runes); start += limit {
		end := start + limit
		if end > len(runes) {
			end = len(runes)
		}
		pieces = append(pieces, string(runes[start:end]))
	}
	return pieces
}
