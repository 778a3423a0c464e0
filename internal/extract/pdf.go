package extract

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// pageReader returns the text of page i (1-based).
type pageReader func(i int) (string, error)

func extractPDF(ctx context.Context, data []byte) (string, int, error) {
	r, err := openPDF(data)
	if err != nil {
		return "", 0, err
	}

	text, failed := foldPages(ctx, r.NumPage(), func(i int) (string, error) {
		page := r.Page(i)
		if page.V.IsNull() {
			return "", nil
		}
		return page.GetPlainText(nil)
	})
	return text, failed, ctx.Err()
}

func openPDF(data []byte) (r *pdf.Reader, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("malformed pdf: %v", p)
		}
	}()
	return pdf.NewReader(bytes.NewReader(data), int64(len(data)))
}

// foldPages concatenates page texts. A page that errors or panics
// contributes an empty string; the number of such pages is returned.
func foldPages(ctx context.Context, n int, read pageReader) (string, int) {
	var sb strings.Builder
	failed := 0
	for i := 1; i <= n; i++ {
		if ctx.Err() != nil {
			break
		}
		text, err := readPage(read, i)
		if err != nil {
			failed++
			text = ""
		}
		if text != "" {
			sb.WriteString(text)
			sb.WriteString("\n")
		}
	}
	return sb.String(), failed
}

func readPage(read pageReader, i int) (text string, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("page %d: %v", i, p)
		}
	}()
	return read(i)
}
