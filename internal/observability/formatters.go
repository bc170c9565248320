// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/brand-studio/internal/outcome"
	"github.com/jonathan/brand-studio/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
	// maxGuidelineLines caps how much of a guideline document is echoed
	maxGuidelineLines = 24
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, clip(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// clip shortens s to at most width runes, marking the cut with "...".
func clip(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	return string(r[:width-3]) + "..."
}

// PrintBrandProfile outputs a human-readable summary of a brand profile.
func (p *Printer) PrintBrandProfile(profile *types.BrandProfile) {
	if profile == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Industry:  %s\n", orDash(profile.IndustryName())))
	sb.WriteString(fmt.Sprintf("Voice:     %s\n", strings.Join(profile.BrandVoice, ", ")))
	sb.WriteString(fmt.Sprintf("Style:     %s\n", orDash(profile.PostingStyle)))
	sb.WriteString(fmt.Sprintf("Audience:  %s\n", orDash(profile.TargetAudience)))
	if t := profile.TypographyName(); t != "" {
		sb.WriteString(fmt.Sprintf("Type:      %s\n", t))
	}
	sb.WriteString("\n")

	if len(profile.ColorPalette) > 0 {
		sb.WriteString("Palette:\n")
		for i, c := range profile.ColorPalette {
			role := "extra"
			if i < len(types.PaletteRoles) {
				role = types.PaletteRoles[i]
			}
			sb.WriteString(fmt.Sprintf("  • %-10s %s\n", role, c))
		}
		sb.WriteString("\n")
	}

	if len(profile.ContentThemes) > 0 {
		sb.WriteString("Content themes:\n")
		writeList(&sb, profile.ContentThemes, maxItemsToShow)
	}

	p.printBox("BRAND PROFILE", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintGuidelines outputs the head of a rendered guideline document.
func (p *Printer) PrintGuidelines(doc *types.GuidelineDocument) {
	if doc == nil || strings.TrimSpace(doc.Text) == "" {
		return
	}

	lines := strings.Split(strings.TrimSpace(doc.Text), "\n")
	if len(lines) > maxGuidelineLines {
		more := len(lines) - maxGuidelineLines
		lines = append(lines[:maxGuidelineLines], fmt.Sprintf("... %d more lines", more))
	}
	p.printBox("BRAND GUIDELINES", strings.Join(lines, "\n"))
}

// PrintCaption outputs a generated caption with its hook, call to action and hashtags.
func (p *Printer) PrintCaption(c *types.CaptionResult) {
	if c == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Hook: %s\n\n", c.Hook))
	sb.WriteString(wrap(c.Caption, boxWidth-4))
	sb.WriteString("\n\n")
	sb.WriteString(fmt.Sprintf("CTA:  %s\n", c.CTA))
	if len(c.Hashtags) > 0 {
		tags := make([]string, len(c.Hashtags))
		for i, h := range c.Hashtags {
			tags[i] = "#" + h
		}
		sb.WriteString("\n")
		sb.WriteString(wrap(strings.Join(tags, " "), boxWidth-4))
	}

	p.printBox(fmt.Sprintf("CAPTION (%d hashtags)", len(c.Hashtags)), strings.TrimSuffix(sb.String(), "\n"))
}

// PrintVisualAnalysis outputs the style summary and key traits of a visual analysis.
func (p *Printer) PrintVisualAnalysis(v *types.VisualAnalysis) {
	if v == nil {
		return
	}

	var sb strings.Builder
	if summary := v.StyleSummary(); summary != "" {
		sb.WriteString(wrap(summary, boxWidth-4))
		sb.WriteString("\n\n")
	}
	if v.SubjectAnalysis.PrimarySubject != "" {
		sb.WriteString(fmt.Sprintf("Subject:    %s\n", v.SubjectAnalysis.PrimarySubject))
	}
	if v.Background.SettingType != "" {
		sb.WriteString(fmt.Sprintf("Setting:    %s\n", v.Background.SettingType))
	}
	if v.Metadata.ConfidenceScore != "" {
		sb.WriteString(fmt.Sprintf("Confidence: %s\n", v.Metadata.ConfidenceScore))
	}
	if len(v.ColorProfile.DominantColors) > 0 {
		sb.WriteString("Dominant colors:\n")
		count := min(len(v.ColorProfile.DominantColors), maxItemsToShow)
		for _, c := range v.ColorProfile.DominantColors[:count] {
			sb.WriteString(fmt.Sprintf("  • %s %s\n", c.Hex, c.Color))
		}
	}

	content := strings.TrimSuffix(sb.String(), "\n")
	if content == "" {
		content = "(no style details)"
	}
	p.printBox("VISUAL ANALYSIS", content)
}

// PrintImagePrompt outputs the composed image prompt.
func (p *Printer) PrintImagePrompt(prompt *types.ImagePrompt) {
	if prompt == nil {
		return
	}

	var sb strings.Builder
	if prompt.Topic != "" {
		sb.WriteString(fmt.Sprintf("Topic:  %s\n", prompt.Topic))
	}
	sb.WriteString(fmt.Sprintf("Aspect: %s\n", orDash(prompt.AspectRatio)))
	sb.WriteString(fmt.Sprintf("Length: %d/%d\n\n", len([]rune(prompt.PromptText)), types.MaxPromptLength))
	sb.WriteString(wrap(prompt.PromptText, boxWidth-4))

	p.printBox("IMAGE PROMPT", sb.String())
}

// PrintFailure outputs a stage failure with its kind and missing fields.
func (p *Printer) PrintFailure(f *outcome.Failure) {
	if f == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Kind:    %s\n", f.Kind))
	sb.WriteString(wrap("Message: "+f.Message, boxWidth-4))
	if len(f.Fields) > 0 {
		sb.WriteString("\nMissing:\n")
		writeList(&sb, f.Fields, len(f.Fields))
	}
	if f.Cause != nil {
		sb.WriteString("\n")
		sb.WriteString(wrap("Cause:   "+f.Cause.Error(), boxWidth-4))
	}

	p.printBox("✗ STAGE FAILED", strings.TrimSuffix(sb.String(), "\n"))
}

func writeList(sb *strings.Builder, items []string, limit int) {
	count := min(len(items), limit)
	for _, item := range items[:count] {
		sb.WriteString(fmt.Sprintf("  • %s\n", item))
	}
	if len(items) > count {
		sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(items)-count))
	}
}

// wrap breaks s into lines of at most width runes at word boundaries.
func wrap(s string, width int) string {
	words := strings.Fields(s)
	if len(words) == 0 {
		return ""
	}

	var lines []string
	line := words[0]
	for _, w := range words[1:] {
		if len([]rune(line))+1+len([]rune(w)) > width {
			lines = append(lines, line)
			line = w
			continue
		}
		line += " " + w
	}
	lines = append(lines, line)
	return strings.Join(lines, "\n")
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
