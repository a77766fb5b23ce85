// Package extract provides text extraction from downloaded filing attachments.
package extract

import (
	"fmt"
	"os"

	"github.com/xHezuSx/gpwdigest/internal/models"
)

// Extractor extracts plain text from filing files. All extraction failures
// wrap models.ErrExtraction so callers can classify them without inspecting
// format-specific errors.
type Extractor struct{}

// NewExtractor returns a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract reads the file at path and returns its text content. The format is
// chosen from the file extension: PDF and HTML are the formats GPW publishes,
// DOCX and XLSX cover occasional attachments, everything else is treated as
// plain UTF-8 text.
func (e *Extractor) Extract(path string) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("%w: read %s: %v", models.ErrExtraction, path, err)
	}
	return e.ExtractBytes(content, models.KindForPath(path))
}

// ExtractBytes extracts text from content of the given kind.
func (e *Extractor) ExtractBytes(content []byte, kind models.FileKind) (string, error) {
	var (
		text string
		err  error
	)
	switch kind {
	case models.FileKindPDF:
		text, err = extractPDF(content)
	case models.FileKindHTML:
		text, err = extractHTML(content)
	case models.FileKindDOCX:
		text, err = extractDOCX(content)
	case models.FileKindXLSX:
		text, err = extractExcel(content)
	default:
		text, err = extractPlain(content)
	}
	if err != nil {
		return "", fmt.Errorf("%w: %v", models.ErrExtraction, err)
	}
	return text, nil
}
