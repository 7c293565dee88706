package extractor

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/unidoc/unioffice/common/license"
	"github.com/unidoc/unioffice/document"

	"github.com/futig/jarvis-backend/internal/entity"
)

const docxContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

// ActivateDOCX registers the UniDoc metered key. unioffice refuses to open
// any document until a key is set.
func ActivateDOCX(apiKey string) error {
	if err := license.SetMeteredKey(apiKey); err != nil {
		return fmt.Errorf("set unidoc metered key: %w", err)
	}
	return nil
}

type DOCXConverter struct{}

func NewDOCXConverter() *DOCXConverter {
	return &DOCXConverter{}
}

func (dc *DOCXConverter) Convert(content []byte) (string, error) {
	doc, err := document.Read(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("%w: open docx: %v", entity.ErrExtractionFailed, err)
	}
	defer doc.Close()

	var sb strings.Builder
	for _, par := range doc.Paragraphs() {
		for _, run := range par.Runs() {
			sb.WriteString(run.Text())
		}
		sb.WriteString("\n")
	}
	return sb.String(), nil
}

func (dc *DOCXConverter) AcceptedExtensions() []string {
	return []string{".docx"}
}

func (dc *DOCXConverter) AcceptedMimeTypes() []string {
	return []string{docxContentType}
}
