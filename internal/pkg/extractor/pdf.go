package extractor

import (
	"bytes"
	"fmt"
	"io"

	"github.com/ledongthuc/pdf"

	"github.com/futig/jarvis-backend/internal/entity"
)

type PDFConverter struct{}

func NewPDFConverter() *PDFConverter {
	return &PDFConverter{}
}

func (pc *PDFConverter) Convert(content []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("%w: open pdf: %v", entity.ErrExtractionFailed, err)
	}

	plain, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("%w: read pdf text: %v", entity.ErrExtractionFailed, err)
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", fmt.Errorf("%w: read pdf text: %v", entity.ErrExtractionFailed, err)
	}
	return buf.String(), nil
}

func (pc *PDFConverter) AcceptedExtensions() []string {
	return []string{".pdf"}
}

func (pc *PDFConverter) AcceptedMimeTypes() []string {
	return []string{"application/pdf"}
}
