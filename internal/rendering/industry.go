package rendering

import (
	"regexp"
	"strings"

	"github.com/jonathan/brand-studio/internal/types"
)

// IndustryHint returns the industry to steer image prompts with. The
// structured industry carried by doc wins; otherwise the text is scanned for
// an "Industry" heading; otherwise DefaultIndustry is used.
func IndustryHint(doc types.GuidelineDocument) string {
	if ind := strings.TrimSpace(doc.Industry); ind != "" {
		return ind
	}
	if ind := IndustryFromText(doc.Text); ind != "" {
		return ind
	}
	return types.DefaultIndustry
}

// inlineIndustry matches an "Industry:" label inside running text.
var inlineIndustry = regexp.MustCompile(`\bIndustry\s*:\s*([^\n]+)`)

// IndustryFromText returns the value of the "Industry" heading or label in
// text: the rest of the heading line, or, when that holds only punctuation,
// the next non-empty line. Without such a line it looks for an inline
// "Industry:" label. It returns "" when nothing is found.
func IndustryFromText(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		label := strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(line), "#*- "))
		rest, ok := strings.CutPrefix(label, "Industry")
		if !ok {
			continue
		}
		rest = strings.TrimSpace(rest)
		if rest != "" && !strings.HasPrefix(rest, ":") && !strings.HasPrefix(rest, "*") {
			// "Industry-leading ..." and similar prose.
			continue
		}
		if v := strings.TrimSpace(strings.Trim(rest, ":#-* ")); v != "" {
			return v
		}
		return nextValueLine(lines[i+1:])
	}

	if m := inlineIndustry.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(strings.Trim(strings.TrimSpace(m[1]), "*"))
	}
	return ""
}

// nextValueLine returns the first non-empty line, or "" when a heading comes first.
func nextValueLine(lines []string) string {
	for _, l := range lines {
		l = strings.TrimSpace(l)
		if l == "" {
			continue
		}
		if strings.HasPrefix(l, "#") {
			return ""
		}
		return l
	}
	return ""
}
