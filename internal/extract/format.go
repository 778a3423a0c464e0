package extract

import (
	"fmt"
	"path/filepath"
	"strings"

	"resumelens/internal/errors"
	"resumelens/internal/types"

	"github.com/gabriel-vasile/mimetype"
)

// ParseFormat maps a format tag such as "PDF" or ".docx" to a Format.
func ParseFormat(tag string) (types.Format, error) {
	normalized := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(tag), "."))
	switch types.Format(normalized) {
	case types.FormatPDF, types.FormatDOCX, types.FormatDOC, types.FormatTXT:
		return types.Format(normalized), nil
	}
	return "", errors.NewValidationError(errors.ErrCodeUnsupportedFormat,
		fmt.Sprintf("unsupported document format '%s'", tag), nil).WithContext("format", tag)
}

// FormatFromFilename derives the format from a file name's extension.
func FormatFromFilename(name string) (types.Format, error) {
	ext := filepath.Ext(name)
	if ext == "" {
		return "", errors.NewValidationError(errors.ErrCodeUnsupportedFormat,
			fmt.Sprintf("file '%s' has no extension", name), nil)
	}
	return ParseFormat(ext)
}

// DetectFormat sniffs the content and returns the matching format, if any.
func DetectFormat(data []byte) (types.Format, bool) {
	mtype := mimetype.Detect(data)
	for m := mtype; m != nil; m = m.Parent() {
		switch {
		case m.Is("application/pdf"):
			return types.FormatPDF, true
		case m.Is("application/vnd.openxmlformats-officedocument.wordprocessingml.document"):
			return types.FormatDOCX, true
		case m.Is("application/msword"):
			return types.FormatDOC, true
		case m.Is("text/plain"):
			return types.FormatTXT, true
		}
	}
	return "", false
}
