// Package ingestion turns uploaded or fetched brand documents (PDF, HTML,
// plain text) into clean text for brand analysis.
package ingestion

import (
	"bytes"
	"context"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/brand-studio/internal/fetch"
)

// Format is a supported document format.
type Format string

const (
	FormatPDF     Format = "pdf"
	FormatHTML    Format = "html"
	FormatText    Format = "text"
	FormatUnknown Format = "unknown"
)

// Document is raw document content with enough naming to detect its format.
type Document struct {
	Name        string
	ContentType string
	Data        []byte
}

// ExtractionError reports a document that yielded no usable text.
type ExtractionError struct {
	Source  string
	Message string
	Cause   error
}

func (e *ExtractionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("extraction failed for %s: %s: %v", e.Source, e.Message, e.Cause)
	}
	return fmt.Sprintf("extraction failed for %s: %s", e.Source, e.Message)
}

func (e *ExtractionError) Unwrap() error {
	return e.Cause
}

// Extractor pulls plain text out of a document.
type Extractor interface {
	ExtractText(ctx context.Context, doc Document) (string, error)
}

// DefaultExtractor dispatches on the detected format.
type DefaultExtractor struct{}

// ExtractText implements Extractor. Unreadable PDF pages are skipped; the
// call fails only when nothing readable remains.
func (DefaultExtractor) ExtractText(ctx context.Context, doc Document) (string, error) {
	text, _, err := Extract(ctx, doc)
	return text, err
}

// Extract returns cleaned text and metadata for doc.
func Extract(ctx context.Context, doc Document) (string, *Metadata, error) {
	if err := ctx.Err(); err != nil {
		return "", nil, err
	}

	format := DetectFormat(doc)
	var (
		raw        string
		pages      int
		skipped    int
		extractErr error
	)

	switch format {
	case FormatPDF:
		var res pdfText
		res, extractErr = extractPDF(doc.Data)
		raw, pages, skipped = res.text, res.pages, res.skipped
	case FormatHTML:
		raw, extractErr = fetch.ExtractMainText(string(doc.Data), fetch.BrandPageSelectors())
	case FormatText:
		raw = string(doc.Data)
	default:
		return "", nil, &ExtractionError{Source: doc.Name, Message: "unsupported document format"}
	}
	if extractErr != nil {
		return "", nil, &ExtractionError{Source: doc.Name, Message: fmt.Sprintf("could not read %s", format), Cause: extractErr}
	}

	cleaned := CleanText(raw)
	if cleaned == "" {
		return "", nil, &ExtractionError{Source: doc.Name, Message: "no extractable text"}
	}

	meta := NewMetadata(cleaned, doc.Name, format)
	meta.Pages = pages
	meta.Skipped = skipped
	return cleaned, meta, nil
}

// DetectFormat decides the format from the content type, then the file
// extension, then the leading bytes.
func DetectFormat(doc Document) Format {
	if doc.ContentType != "" {
		if mt, _, err := mime.ParseMediaType(doc.ContentType); err == nil {
			switch {
			case mt == "application/pdf":
				return FormatPDF
			case mt == "text/html" || mt == "application/xhtml+xml":
				return FormatHTML
			case strings.HasPrefix(mt, "text/"):
				return FormatText
			}
		}
	}

	switch strings.ToLower(filepath.Ext(doc.Name)) {
	case ".pdf":
		return FormatPDF
	case ".html", ".htm":
		return FormatHTML
	case ".txt", ".md", ".markdown":
		return FormatText
	}

	if bytes.HasPrefix(doc.Data, []byte("%PDF-")) {
		return FormatPDF
	}
	sniffed := http.DetectContentType(doc.Data)
	switch {
	case strings.HasPrefix(sniffed, "text/html"):
		return FormatHTML
	case strings.HasPrefix(sniffed, "text/plain") && utf8.Valid(doc.Data):
		return FormatText
	}
	return FormatUnknown
}

// ReadDocument loads a document from disk.
func ReadDocument(path string) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Document{}, fmt.Errorf("file not found: %w", err)
		}
		return Document{}, fmt.Errorf("failed to read file: %w", err)
	}
	return Document{Name: filepath.Base(path), Data: data}, nil
}

// IngestFromFile reads, extracts and cleans a document file.
func IngestFromFile(ctx context.Context, path string) (string, *Metadata, error) {
	doc, err := ReadDocument(path)
	if err != nil {
		return "", nil, err
	}
	text, meta, err := Extract(ctx, doc)
	if err != nil {
		return "", nil, err
	}
	meta.Source = path
	return text, meta, nil
}
