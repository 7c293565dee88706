package extractor

import (
	"fmt"
	"unicode/utf8"

	"github.com/futig/jarvis-backend/internal/entity"
)

type TextConverter struct{}

func NewTextConverter() *TextConverter {
	return &TextConverter{}
}

func (tc *TextConverter) Convert(content []byte) (string, error) {
	if !utf8.Valid(content) {
		return "", fmt.Errorf("%w: text is not valid UTF-8", entity.ErrExtractionFailed)
	}
	return string(content), nil
}

func (tc *TextConverter) AcceptedExtensions() []string {
	return []string{".txt", ".md", ".markdown"}
}

func (tc *TextConverter) AcceptedMimeTypes() []string {
	return []string{"text/plain", "text/markdown"}
}
