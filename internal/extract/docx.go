package extract

import (
	"bytes"
	"html"
	"regexp"
	"strings"

	"github.com/nguyenthenguyen/docx"
)

var (
	paragraphEnd = regexp.MustCompile(`</w:p>|<w:br\s*/>|<w:cr\s*/>`)
	tabElement   = regexp.MustCompile(`<w:tab\s*/>`)
	xmlTag       = regexp.MustCompile(`<[^>]+>`)
)

func extractDOCX(data []byte) (string, error) {
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}
	defer doc.Close()

	return wordMLToText(doc.Editable().GetContent()), nil
}

// wordMLToText turns a WordprocessingML body into plain text,
// one line per paragraph.
func wordMLToText(body string) string {
	body = paragraphEnd.ReplaceAllString(body, "\n")
	body = tabElement.ReplaceAllString(body, " ")
	body = xmlTag.ReplaceAllString(body, "")
	return strings.TrimSpace(html.UnescapeString(body))
}
