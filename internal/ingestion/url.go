package ingestion

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"time"

	"github.com/jonathan/brand-studio/internal/fetch"
)

var (
	// ErrHTTPRequestFailed is returned when the page could not be downloaded.
	ErrHTTPRequestFailed = errors.New("HTTP request failed")
	// ErrContentExtractionFailed is returned when no text could be read from the page.
	ErrContentExtractionFailed = errors.New("content extraction failed")
)

// URLOptions configures IngestFromURL.
type URLOptions struct {
	// UseBrowser re-renders pages whose static HTML yields too little text.
	UseBrowser     bool
	BrowserTimeout time.Duration
	Fetch          *fetch.Options
	Logger         *slog.Logger
}

// IngestFromURL downloads a brand guideline page or document and returns its
// cleaned text. PDFs are extracted page by page; HTML goes through the
// main-content selectors, with an optional headless-browser retry for
// script-rendered pages.
func IngestFromURL(ctx context.Context, urlStr string, opts URLOptions) (string, *Metadata, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	result, err := fetch.URL(ctx, urlStr, opts.Fetch)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrHTTPRequestFailed, err)
	}
	logger.Debug("fetched document", "url", urlStr, "bytes", len(result.Body), "content_type", result.ContentType)

	doc := Document{Name: path.Base(urlStr), ContentType: result.ContentType, Data: result.Body}
	if DetectFormat(doc) != FormatHTML {
		text, meta, err := Extract(ctx, doc)
		if err != nil {
			return "", nil, fmt.Errorf("%w: %w", ErrContentExtractionFailed, err)
		}
		meta.Source = urlStr
		return text, meta, nil
	}

	textContent, err := fetch.ExtractMainText(result.HTML(), fetch.BrandPageSelectors())
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrContentExtractionFailed, err)
	}

	rendered := false
	if opts.UseBrowser && fetch.ShouldUseBrowser(textContent) {
		logger.Info("page text too short, rendering with browser",
			"url", urlStr, "chars", len(textContent), "min", fetch.MinContentLength)

		browserHTML, browserErr := fetch.WithBrowser(ctx, urlStr, opts.BrowserTimeout, logger)
		if browserErr != nil {
			logger.Warn("browser rendering failed, keeping HTTP content", "url", urlStr, "error", browserErr)
		} else if text, err := fetch.ExtractMainText(browserHTML, fetch.BrandPageSelectors()); err != nil {
			logger.Warn("browser content extraction failed", "url", urlStr, "error", err)
		} else {
			textContent = text
			rendered = true
		}
	}

	cleaned := CleanText(textContent)
	if cleaned == "" {
		return "", nil, fmt.Errorf("%w: %w", ErrContentExtractionFailed,
			&ExtractionError{Source: urlStr, Message: "no extractable text"})
	}

	meta := NewMetadata(cleaned, urlStr, FormatHTML)
	meta.Rendered = rendered
	return cleaned, meta, nil
}
