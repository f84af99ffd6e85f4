package loader

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	pkghttp "github.com/futig/rag-backend/pkg/http"
)

// Remote documents larger than this are rejected instead of buffered.
const maxURLDocumentSize = 25 << 20 // 25 MiB

// URLLoader downloads a remote document over http(s) and treats the body as
// plain text.
type URLLoader struct {
	client *http.Client
}

func NewURLLoader() *URLLoader {
	return &URLLoader{
		client: pkghttp.NewClient(
			pkghttp.WithRequestTimeout(30 * time.Second),
			pkghttp.WithConnClientTimeout(10 * time.Second),
		),
	}
}

func (l *URLLoader) Load(ctx context.Context, rawURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	resp, err := l.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("unexpected status %d fetching %s", resp.StatusCode, rawURL)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxURLDocumentSize+1))
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}
	if len(body) > maxURLDocumentSize {
		return "", fmt.Errorf("document exceeds %d bytes", maxURLDocumentSize)
	}
	return string(body), nil
}

func (l *URLLoader) Extensions() []string {
	return nil
}
