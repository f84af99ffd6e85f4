package loader

import (
	"context"
	"fmt"
	"strings"

	"github.com/unidoc/unioffice/document"
)

// DocxLoader extracts paragraph text from Word documents.
type DocxLoader struct{}

func NewDocxLoader() *DocxLoader {
	return &DocxLoader{}
}

func (l *DocxLoader) Load(_ context.Context, path string) (string, error) {
	doc, err := document.Open(path)
	if err != nil {
		return "", fmt.Errorf("open docx: %w", err)
	}
	defer doc.Close()

	var sb strings.Builder
	for _, para := range doc.Paragraphs() {
		for _, run := range para.Runs() {
			sb.WriteString(run.Text())
		}
		sb.WriteString("\n")
	}
	return sb.String(), nil
}

func (l *DocxLoader) Extensions() []string {
	return []string{".docx"}
}
