// Package crawling collects the text of a brand's website, favouring brand,
// style guide and about pages, so it can be analyzed like an uploaded
// guideline document.
package crawling

import "fmt"

// CrawlError represents a general crawling failure
type CrawlError struct {
	URL     string
	Message string
	Cause   error
}

func (e *CrawlError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("crawl error for %s: %s: %v", e.URL, e.Message, e.Cause)
	}
	return fmt.Sprintf("crawl error for %s: %s", e.URL, e.Message)
}

func (e *CrawlError) Unwrap() error {
	return e.Cause
}

// LinkExtractionError represents a failure in extracting links from HTML
type LinkExtractionError struct {
	Message string
	Cause   error
}

func (e *LinkExtractionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("link extraction error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("link extraction error: %s", e.Message)
}

func (e *LinkExtractionError) Unwrap() error {
	return e.Cause
}
