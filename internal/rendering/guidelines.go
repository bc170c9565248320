// Package rendering turns a complete brand profile into the guideline document
// consumed by the content stages, and reads industry hints back out of such documents.
package rendering

import (
	"strings"
	"text/template"

	"github.com/jonathan/brand-studio/internal/outcome"
	"github.com/jonathan/brand-studio/internal/types"
)

// RequiredFields lists the profile fields a guideline document cannot be rendered without,
// in the order they are reported.
var RequiredFields = []string{
	"brand_voice",
	"color_palette",
	"industry",
	"target_audience",
	"content_themes",
	"posting_style",
}

const guidelinesTemplate = `# BRAND GUIDELINES

## Brand Voice
{{join .BrandVoice}}

## Color Palette
{{join .ColorPalette}}

## Industry
{{.Industry}}

## Target Audience
{{.TargetAudience}}

## Content Themes
{{join .ContentThemes}}

## Posting Style
{{.PostingStyle}}
{{- if .Typography}}

## Typography
{{.Typography}}
{{- end}}
`

var guidelines = template.Must(template.New("guidelines").Funcs(template.FuncMap{
	"join": func(items []string) string { return strings.Join(items, ", ") },
}).Parse(guidelinesTemplate))

type templateData struct {
	BrandVoice     []string
	ColorPalette   []string
	Industry       string
	TargetAudience string
	ContentThemes  []string
	PostingStyle   string
	Typography     string
}

// Render produces the guideline document for profile. A Failure input is
// forwarded unchanged. A profile missing any RequiredFields yields an
// IncompleteProfile Failure naming exactly the missing fields.
func Render(profile outcome.Result[types.BrandProfile]) outcome.Result[types.GuidelineDocument] {
	p, failure := profile.Value()
	if failure != nil {
		return outcome.Forward[types.GuidelineDocument](profile)
	}

	if missing := MissingFields(p); len(missing) > 0 {
		f := outcome.Newf(outcome.IncompleteProfile,
			"missing required brand profile data: %s", strings.Join(missing, ", "))
		f.Fields = missing
		return outcome.Fail[types.GuidelineDocument](f)
	}

	var sb strings.Builder
	err := guidelines.Execute(&sb, templateData{
		BrandVoice:     trimAll(p.BrandVoice),
		ColorPalette:   trimAll(p.ColorPalette),
		Industry:       p.IndustryName(),
		TargetAudience: strings.TrimSpace(p.TargetAudience),
		ContentThemes:  trimAll(p.ContentThemes),
		PostingStyle:   strings.TrimSpace(p.PostingStyle),
		Typography:     p.TypographyName(),
	})
	if err != nil {
		// The template is fixed and the data is plain strings.
		return outcome.Fail[types.GuidelineDocument](outcome.Wrap(outcome.SchemaViolation, "guideline template failed", err))
	}

	return outcome.Ok(types.GuidelineDocument{
		Text:     sb.String(),
		Industry: p.IndustryName(),
	})
}

// MissingFields returns the RequiredFields that p leaves empty, in canonical order.
func MissingFields(p types.BrandProfile) []string {
	present := map[string]bool{
		"brand_voice":     nonBlank(p.BrandVoice),
		"color_palette":   nonBlank(p.ColorPalette),
		"industry":        p.IndustryName() != "",
		"target_audience": strings.TrimSpace(p.TargetAudience) != "",
		"content_themes":  nonBlank(p.ContentThemes),
		"posting_style":   strings.TrimSpace(p.PostingStyle) != "",
	}
	var missing []string
	for _, field := range RequiredFields {
		if !present[field] {
			missing = append(missing, field)
		}
	}
	return missing
}

func nonBlank(items []string) bool {
	for _, s := range items {
		if strings.TrimSpace(s) != "" {
			return true
		}
	}
	return false
}

func trimAll(items []string) []string {
	out := make([]string, 0, len(items))
	for _, s := range items {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
