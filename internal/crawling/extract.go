package crawling

import (
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// skippedExtensions are links that never lead to a readable page.
var skippedExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true, ".svg": true,
	".pdf": true, ".zip": true, ".mp4": true, ".mov": true, ".css": true, ".js": true, ".xml": true,
}

// ExtractLinks returns the distinct same-host page links of an HTML document,
// resolved against baseURL, without fragments or trailing slashes.
func ExtractLinks(htmlContent string, baseURL string) ([]string, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, &LinkExtractionError{
			Message: "failed to parse base URL",
			Cause:   err,
		}
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, &LinkExtractionError{
			Message: fmt.Sprintf("invalid base URL: %s (must have scheme and host)", baseURL),
		}
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return nil, &LinkExtractionError{
			Message: "failed to parse HTML",
			Cause:   err,
		}
	}

	seen := make(map[string]bool)
	links := make([]string, 0)

	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		href = strings.TrimSpace(href)
		if href == "" || strings.HasPrefix(href, "mailto:") || strings.HasPrefix(href, "tel:") || strings.HasPrefix(href, "javascript:") {
			return
		}

		linkURL, err := url.Parse(href)
		if err != nil {
			return
		}
		absolute := base.ResolveReference(linkURL)
		if absolute.Host != base.Host {
			return
		}
		if absolute.Scheme != "http" && absolute.Scheme != "https" {
			return
		}
		if skippedExtensions[strings.ToLower(path.Ext(absolute.Path))] {
			return
		}

		absolute.Fragment = ""
		link := strings.TrimSuffix(absolute.String(), "/")
		if !seen[link] {
			seen[link] = true
			links = append(links, link)
		}
	})

	return links, nil
}
