package extract

import (
	"context"
	"strings"
	"unicode/utf8"

	"resumelens/internal/errors"
	"resumelens/internal/types"
)

// Extractor converts documents to normalized plain text.
type Extractor struct {
	logger *errors.Logger
}

// NewExtractor creates an Extractor.
func NewExtractor(logger *errors.Logger) *Extractor {
	return &Extractor{logger: logger}
}

// Extract returns the normalized text of doc. A corrupt or unreadable
// document yields EXTRACTION_FAILED and blank text yields EMPTY_DOCUMENT.
func (e *Extractor) Extract(ctx context.Context, doc types.Document) (string, error) {
	format, err := ParseFormat(string(doc.Format))
	if err != nil {
		return "", err
	}
	doc.Format = format
	if len(doc.Data) == 0 {
		return "", errors.NewExtractionError(errors.ErrCodeExtractionFailed, "document is empty", nil).
			WithContext("document", doc.Name)
	}

	if sniffed, ok := DetectFormat(doc.Data); ok && !compatible(doc.Format, sniffed) {
		e.logger.Warn("Declared document format does not match content",
			"document", doc.Name, "declared", doc.Format, "detected", sniffed)
	}

	var raw string
	switch doc.Format {
	case types.FormatPDF:
		var failed int
		raw, failed, err = extractPDF(ctx, doc.Data)
		if failed > 0 {
			e.logger.Warn("Some PDF pages could not be read", "document", doc.Name, "failed_pages", failed)
		}
	case types.FormatDOCX, types.FormatDOC:
		raw, err = extractDOCX(doc.Data)
	case types.FormatTXT:
		if !utf8.Valid(doc.Data) {
			return "", errors.NewExtractionError(errors.ErrCodeExtractionFailed, "text document is not valid UTF-8", nil)
		}
		raw = string(doc.Data)
	}
	if err != nil {
		return "", errors.NewExtractionError(errors.ErrCodeExtractionFailed, "Could not extract text from file", err).
			WithContext("document", doc.Name).
			WithContext("format", string(doc.Format))
	}

	text := Normalize(raw)
	if strings.TrimSpace(text) == "" {
		return "", errors.NewExtractionError(errors.ErrCodeEmptyDocument, "Could not extract text from file", nil).
			WithContext("document", doc.Name)
	}
	return text, nil
}

// compatible treats the two Word tags as interchangeable.
func compatible(declared, sniffed types.Format) bool {
	if declared == sniffed {
		return true
	}
	word := func(f types.Format) bool { return f == types.FormatDOC || f == types.FormatDOCX }
	return word(declared) && word(sniffed)
}
