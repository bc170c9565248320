package crawling

import (
	"net/url"
	"strings"
)

// Page categories, in crawl priority order.
const (
	CategoryBrand   = "brand"
	CategoryAbout   = "about"
	CategoryProduct = "product"
	CategoryPress   = "press"
	CategoryOther   = "other"
)

// categoryPriority orders categories by how much brand identity their pages
// usually carry.
var categoryPriority = []string{CategoryBrand, CategoryAbout, CategoryProduct, CategoryPress, CategoryOther}

// categoryKeywords are matched against the lowercased URL path.
var categoryKeywords = []struct {
	category string
	keywords []string
}{
	{CategoryBrand, []string{"brand", "style-guide", "styleguide", "guidelines", "identity", "logo", "media-kit", "press-kit", "presskit"}},
	{CategoryAbout, []string{"about", "story", "mission", "values", "who-we-are", "team", "manifesto"}},
	{CategoryProduct, []string{"product", "shop", "menu", "services", "collections", "features", "pricing"}},
	{CategoryPress, []string{"press", "news", "blog", "journal", "stories"}},
}

// ClassifiedLink represents a link with its classification category
type ClassifiedLink struct {
	URL      string `json:"url"`
	Category string `json:"category"`
}

// ClassifyLink assigns a category from the keywords in the link's path.
func ClassifyLink(link string) string {
	u, err := url.Parse(link)
	if err != nil {
		return CategoryOther
	}
	p := strings.ToLower(u.Path)
	if p == "" || p == "/" {
		return CategoryOther
	}
	for _, ck := range categoryKeywords {
		for _, kw := range ck.keywords {
			if strings.Contains(p, kw) {
				return ck.category
			}
		}
	}
	return CategoryOther
}

// ClassifyLinks classifies each link, keeping their order.
func ClassifyLinks(links []string) []ClassifiedLink {
	classified := make([]ClassifiedLink, 0, len(links))
	for _, link := range links {
		classified = append(classified, ClassifiedLink{URL: link, Category: ClassifyLink(link)})
	}
	return classified
}
