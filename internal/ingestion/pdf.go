package ingestion

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

type pdfText struct {
	text    string
	pages   int
	skipped int
}

// extractPDF reads every page it can. A page that fails to decode is
// counted as skipped rather than failing the document.
func extractPDF(data []byte) (out pdfText, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("malformed PDF: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return pdfText{}, err
	}

	var sb strings.Builder
	out.pages = reader.NumPage()
	for i := 1; i <= out.pages; i++ {
		text, err := pageText(reader, i)
		if err != nil || strings.TrimSpace(text) == "" {
			out.skipped++
			continue
		}
		if sb.Len() > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(text)
	}
	out.text = sb.String()
	return out, nil
}

func pageText(reader *pdf.Reader, n int) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("page %d: %v", n, r)
		}
	}()

	page := reader.Page(n)
	if page.V.IsNull() {
		return "", nil
	}
	return page.GetPlainText(nil)
}
