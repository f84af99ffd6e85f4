package loader

import (
	"context"
	"os"
)

// TextLoader reads plain text documents.
type TextLoader struct{}

func NewTextLoader() *TextLoader {
	return &TextLoader{}
}

func (l *TextLoader) Load(_ context.Context, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (l *TextLoader) Extensions() []string {
	return []string{".txt", ".md", ".markdown"}
}
