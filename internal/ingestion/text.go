package ingestion

import (
	"regexp"
	"strings"
)

var (
	spaceRun     = regexp.MustCompile(`\s+`)
	blankLineRun = regexp.MustCompile(`\n\n\n+`)
)

// CleanText normalizes extracted document text while keeping its structure:
// headings, bullets and paragraph breaks survive, runs of spaces and blank
// lines collapse.
func CleanText(content string) string {
	if content == "" {
		return ""
	}

	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")
	content = strings.ReplaceAll(content, "\f", "\n\n")

	lines := strings.Split(content, "\n")
	cleaned := make([]string, 0, len(lines))
	for _, line := range lines {
		cleaned = append(cleaned, cleanLine(line))
	}

	result := blankLineRun.ReplaceAllString(strings.Join(cleaned, "\n"), "\n\n")
	return strings.TrimSpace(result)
}

func cleanLine(line string) string {
	line = strings.TrimRight(line, " \t")
	trimmed := strings.TrimLeft(line, " \t")
	if trimmed == "" {
		return ""
	}

	// Markdown headings lose their indentation.
	if strings.HasPrefix(trimmed, "#") {
		return trimmed
	}

	indent := len(line) - len(trimmed)
	if isBulletLine(trimmed) {
		return strings.Repeat(" ", indent) + normalizeBullet(trimmed)
	}

	return strings.Repeat(" ", indent) + spaceRun.ReplaceAllString(trimmed, " ")
}

func isBulletLine(line string) bool {
	for _, marker := range []string{"- ", "* ", "• ", "· "} {
		if strings.HasPrefix(line, marker) {
			return true
		}
	}
	return false
}

// normalizeBullet rewrites typographic bullets (common in PDF exports) as "- ".
func normalizeBullet(line string) string {
	for _, marker := range []string{"• ", "· "} {
		if rest, ok := strings.CutPrefix(line, marker); ok {
			return "- " + spaceRun.ReplaceAllString(rest, " ")
		}
	}
	return line[:2] + spaceRun.ReplaceAllString(line[2:], " ")
}
