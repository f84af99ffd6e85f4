// Package loader reads raw documents from the filesystem or the network and
// turns them into plain text for chunking.
package loader

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/futig/rag-backend/internal/entity"
)

// Loader extracts plain text from a single document format.
type Loader interface {
	Load(ctx context.Context, path string) (string, error)
	Extensions() []string
}

// Registry dispatches a path to the loader registered for its extension.
// http(s) URLs are handled by the URL loader regardless of extension.
type Registry struct {
	loaders map[string]Loader
	url     *URLLoader
}

// NewRegistry builds a registry with all built-in loaders.
func NewRegistry() *Registry {
	r := &Registry{
		loaders: make(map[string]Loader),
		url:     NewURLLoader(),
	}
	r.Register(NewTextLoader())
	r.Register(NewPDFLoader())
	r.Register(NewDocxLoader())
	return r
}

// Register adds a loader for all of its extensions.
func (r *Registry) Register(l Loader) {
	for _, ext := range l.Extensions() {
		r.loaders[ext] = l
	}
}

// Supports reports whether a path would be dispatched to some loader.
func (r *Registry) Supports(path string) bool {
	if isURL(path) {
		return true
	}
	_, ok := r.loaders[strings.ToLower(filepath.Ext(path))]
	return ok
}

// Load extracts plain text from path and reports the file type used for
// chunk metadata. Unknown extensions fail with ErrUnsupportedFormat; loader
// failures are wrapped in *entity.LoadError.
func (r *Registry) Load(ctx context.Context, path string) (content, fileType string, err error) {
	if isURL(path) {
		content, err = r.url.Load(ctx, path)
		if err != nil {
			return "", "", &entity.LoadError{Path: path, Err: err}
		}
		return content, "url", nil
	}

	ext := strings.ToLower(filepath.Ext(path))
	l, ok := r.loaders[ext]
	if !ok {
		return "", "", fmt.Errorf("%w: %s", entity.ErrUnsupportedFormat, ext)
	}

	content, err = l.Load(ctx, path)
	if err != nil {
		return "", "", &entity.LoadError{Path: path, Err: err}
	}
	return content, strings.TrimPrefix(ext, "."), nil
}

func isURL(path string) bool {
	return strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://")
}
