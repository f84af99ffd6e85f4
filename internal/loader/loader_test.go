package loader

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jung-kurt/gofpdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/futig/rag-backend/internal/entity"
)

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRegistry_LoadText(t *testing.T) {
	r := NewRegistry()
	path := writeTempFile(t, "doc.txt", "RAG stands for Retrieval-Augmented Generation.")

	content, fileType, err := r.Load(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "RAG stands for Retrieval-Augmented Generation.", content)
	assert.Equal(t, "txt", fileType)
}

func TestRegistry_LoadMarkdown(t *testing.T) {
	r := NewRegistry()
	path := writeTempFile(t, "notes.md", "# heading\n\nbody text\n")

	content, fileType, err := r.Load(context.Background(), path)
	require.NoError(t, err)
	assert.Contains(t, content, "body text")
	assert.Equal(t, "md", fileType)
}

func TestRegistry_UnsupportedFormat(t *testing.T) {
	r := NewRegistry()
	path := writeTempFile(t, "image.png", "not really an image")

	_, _, err := r.Load(context.Background(), path)
	require.Error(t, err)
	assert.ErrorIs(t, err, entity.ErrUnsupportedFormat)
}

func TestRegistry_MissingFileIsLoadError(t *testing.T) {
	r := NewRegistry()

	_, _, err := r.Load(context.Background(), filepath.Join(t.TempDir(), "missing.txt"))
	require.Error(t, err)

	var loadErr *entity.LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Contains(t, loadErr.Path, "missing.txt")
}

func TestRegistry_Supports(t *testing.T) {
	r := NewRegistry()

	assert.True(t, r.Supports("a/b/doc.txt"))
	assert.True(t, r.Supports("doc.PDF"))
	assert.True(t, r.Supports("doc.docx"))
	assert.True(t, r.Supports("https://example.com/doc"))
	assert.False(t, r.Supports("archive.zip"))
}

func TestPDFLoader_ExtractsText(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fixture.pdf")

	f := gofpdf.New("P", "mm", "A4", "")
	f.AddPage()
	f.SetFont("Arial", "", 14)
	f.Cell(40, 10, "vector search fundamentals")
	require.NoError(t, f.OutputFileAndClose(path))

	r := NewRegistry()
	content, fileType, err := r.Load(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "pdf", fileType)
	assert.Contains(t, strings.ToLower(content), "vector search")
}

func TestURLLoader_Download(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("remote document body"))
	}))
	defer srv.Close()

	r := NewRegistry()
	content, fileType, err := r.Load(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "url", fileType)
	assert.Equal(t, "remote document body", content)
}

func TestURLLoader_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	r := NewRegistry()
	_, _, err := r.Load(context.Background(), srv.URL)
	require.Error(t, err)

	var loadErr *entity.LoadError
	assert.ErrorAs(t, err, &loadErr)
}
