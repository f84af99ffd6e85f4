package chunker

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/futig/rag-backend/internal/entity"
)

func TestNew_InvalidConfig(t *testing.T) {
	tests := []struct {
		name      string
		chunkSize int
		overlap   int
	}{
		{name: "zero chunk size", chunkSize: 0, overlap: 0},
		{name: "negative chunk size", chunkSize: -5, overlap: 0},
		{name: "negative overlap", chunkSize: 100, overlap: -1},
		{name: "overlap equals chunk size", chunkSize: 100, overlap: 100},
		{name: "overlap exceeds chunk size", chunkSize: 100, overlap: 150},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := New(tt.chunkSize, tt.overlap)
			require.Error(t, err)
			assert.ErrorIs(t, err, entity.ErrInvalidConfig)
			assert.Nil(t, c)
		})
	}
}

func TestSplit_EmptyText(t *testing.T) {
	c, err := New(100, 20)
	require.NoError(t, err)

	assert.Empty(t, c.Split(""))
}

func TestSplit_ShortTextSingleChunk(t *testing.T) {
	c, err := New(1000, 200)
	require.NoError(t, err)

	text := "RAG stands for Retrieval-Augmented Generation."
	chunks := c.Split(text)

	require.Len(t, chunks, 1)
	assert.Equal(t, text, chunks[0])
}

func TestSplit_RespectsChunkSize(t *testing.T) {
	c, err := New(50, 10)
	require.NoError(t, err)

	text := strings.Repeat("lorem ipsum dolor sit amet ", 40)
	chunks := c.Split(text)

	require.Greater(t, len(chunks), 1)
	for i, chunk := range chunks {
		assert.LessOrEqual(t, utf8.RuneCountInString(chunk), 50, "chunk %d too long", i)
	}
}

func TestSplit_OverlapDuplicated(t *testing.T) {
	c, err := New(50, 10)
	require.NoError(t, err)

	text := strings.Repeat("abcdefghij ", 30)
	chunks := c.Split(text)
	require.Greater(t, len(chunks), 1)

	for i := 1; i < len(chunks); i++ {
		prev := []rune(chunks[i-1])
		curr := []rune(chunks[i])
		assert.Equal(t, string(prev[len(prev)-10:]), string(curr[:10]),
			"chunk %d must start with the tail of chunk %d", i, i-1)
	}
}

func TestSplit_RoundTrip(t *testing.T) {
	texts := []string{
		"single short text",
		strings.Repeat("paragraph one.\n\nparagraph two with more words in it.\n\n", 30),
		strings.Repeat("line\n", 200),
		strings.Repeat("word ", 500),
		strings.Repeat("x", 1234),
		"unicode:日本語のテキストです。" + strings.Repeat("文字データ", 100),
	}
	configs := []struct{ size, overlap int }{
		{20, 0},
		{50, 10},
		{100, 25},
		{1000, 200},
	}

	for _, cfg := range configs {
		c, err := New(cfg.size, cfg.overlap)
		require.NoError(t, err)

		for _, text := range texts {
			chunks := c.Split(text)

			var sb strings.Builder
			for i, chunk := range chunks {
				runes := []rune(chunk)
				if i == 0 {
					sb.WriteString(chunk)
					continue
				}
				sb.WriteString(string(runes[cfg.overlap:]))
			}
			assert.Equal(t, text, sb.String(),
				"round trip failed for size=%d overlap=%d", cfg.size, cfg.overlap)
		}
	}
}

func TestSplit_Deterministic(t *testing.T) {
	c, err := New(80, 16)
	require.NoError(t, err)

	text := strings.Repeat("some deterministic input text.\n", 50)
	first := c.Split(text)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, c.Split(text))
	}
}

func TestSplit_PrefersParagraphBreaks(t *testing.T) {
	c, err := New(40, 0)
	require.NoError(t, err)

	text := "first paragraph here.\n\nsecond paragraph here.\n\nthird paragraph here."
	chunks := c.Split(text)

	require.Greater(t, len(chunks), 1)
	// Paragraphs fit in a chunk each, so cuts land on paragraph boundaries.
	assert.True(t, strings.HasSuffix(chunks[0], "\n\n"), "expected cut at paragraph break, got %q", chunks[0])
}
