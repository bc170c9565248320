package crawling

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/jonathan/brand-studio/internal/fetch"
	"github.com/jonathan/brand-studio/internal/ingestion"
)

const (
	// MaxPagesLimit is the hard maximum number of pages to crawl
	MaxPagesLimit = 15
	// DefaultMaxPages is used when no page count is given
	DefaultMaxPages = 5
	// DefaultRateLimitDelay is the delay between HTTP requests
	DefaultRateLimitDelay = 1 * time.Second
	// maxCandidates caps the links considered after the seed page
	maxCandidates = 30
	// pageSeparator joins page texts in the site corpus
	pageSeparator = "\n\n---\n\n"
)

// Page is one crawled page.
type Page struct {
	URL      string `json:"url"`
	Category string `json:"category"`
	Hash     string `json:"hash"`
	Chars    int    `json:"chars"`
}

// Site is the combined text of the crawled pages of a brand website.
type Site struct {
	Text  string `json:"text"`
	Pages []Page `json:"pages"`
}

// Crawler fetches a seed page and the most brand-relevant pages it links to.
type Crawler struct {
	// MaxPages includes the seed page; clamped to MaxPagesLimit.
	MaxPages int
	// Delay is waited between page requests after the seed.
	Delay  time.Duration
	Fetch  *fetch.Options
	Logger *slog.Logger
}

// NewCrawler returns a Crawler with default limits.
func NewCrawler(maxPages int, logger *slog.Logger) *Crawler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Crawler{
		MaxPages: maxPages,
		Delay:    DefaultRateLimitDelay,
		Logger:   logger,
	}
}

func (c *Crawler) pageLimit() int {
	switch {
	case c.MaxPages < 1:
		return DefaultMaxPages
	case c.MaxPages > MaxPagesLimit:
		return MaxPagesLimit
	}
	return c.MaxPages
}

func (c *Crawler) logger() *slog.Logger {
	if c.Logger == nil {
		return slog.Default()
	}
	return c.Logger
}

// Crawl fetches seedURL, then follows same-site links in category priority
// order until the page limit is reached. The seed page must be readable;
// later pages that fail are skipped.
func (c *Crawler) Crawl(ctx context.Context, seedURL string) (*Site, error) {
	if err := fetch.ValidateURL(seedURL); err != nil {
		return nil, &CrawlError{URL: seedURL, Message: "invalid seed URL", Cause: err}
	}
	limit := c.pageLimit()
	log := c.logger()

	result, err := fetch.URL(ctx, seedURL, c.Fetch)
	if err != nil {
		return nil, &CrawlError{URL: seedURL, Message: "failed to fetch seed page", Cause: err}
	}
	html := result.HTML()

	var parts []string
	pages := make([]Page, 0, limit)
	if text, ok := pageText(html); ok {
		parts = append(parts, text)
		pages = append(pages, newPage(seedURL, ClassifyLink(seedURL), text))
	}

	links, err := ExtractLinks(html, seedURL)
	if err != nil {
		log.Warn("could not extract links from seed page", "url", seedURL, "error", err)
	}

	visited := map[string]bool{strings.TrimSuffix(seedURL, "/"): true}
	candidates := make([]string, 0, maxCandidates)
	for _, link := range links {
		if visited[link] {
			continue
		}
		candidates = append(candidates, link)
		if len(candidates) == maxCandidates {
			break
		}
	}

	for _, pageURL := range selectPages(ClassifyLinks(candidates), limit-len(pages)) {
		if err := c.wait(ctx); err != nil {
			return nil, &CrawlError{URL: seedURL, Message: "crawl cancelled", Cause: err}
		}
		visited[pageURL] = true

		result, err := fetch.URL(ctx, pageURL, c.Fetch)
		if err != nil {
			log.Debug("skipping page", "url", pageURL, "error", err)
			continue
		}
		text, ok := pageText(result.HTML())
		if !ok {
			continue
		}
		parts = append(parts, text)
		pages = append(pages, newPage(pageURL, ClassifyLink(pageURL), text))
	}

	if len(pages) == 0 {
		return nil, &CrawlError{URL: seedURL, Message: "no readable text found"}
	}

	log.Info("crawled brand site", "url", seedURL, "pages", len(pages))
	return &Site{
		Text:  strings.Join(parts, pageSeparator),
		Pages: pages,
	}, nil
}

func (c *Crawler) wait(ctx context.Context) error {
	if c.Delay <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(c.Delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func pageText(html string) (string, bool) {
	text, err := fetch.ExtractMainText(html, fetch.BrandPageSelectors())
	if err != nil {
		return "", false
	}
	text = ingestion.CleanText(text)
	return text, text != ""
}

func newPage(url, category, text string) Page {
	meta := ingestion.NewMetadata(text, url, ingestion.FormatHTML)
	return Page{URL: url, Category: category, Hash: meta.Hash, Chars: len(text)}
}

// selectPages picks up to n links: one per category in priority order
// first, then the rest in priority order.
func selectPages(classified []ClassifiedLink, n int) []string {
	if n <= 0 {
		return nil
	}

	byCategory := make(map[string][]string)
	for _, cl := range classified {
		byCategory[cl.Category] = append(byCategory[cl.Category], cl.URL)
	}

	selected := make([]string, 0, n)
	taken := make(map[string]bool)
	take := func(u string) bool {
		if taken[u] {
			return false
		}
		taken[u] = true
		selected = append(selected, u)
		return len(selected) == n
	}

	for _, category := range categoryPriority {
		if urls := byCategory[category]; len(urls) > 0 {
			if take(urls[0]) {
				return selected
			}
		}
	}
	for _, category := range categoryPriority {
		for _, u := range byCategory[category] {
			if take(u) {
				return selected
			}
		}
	}
	return selected
}
