// Package types provides type definitions for structured data used throughout the brand-studio system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

// PaletteSize is the number of colors in a brand palette:
// primary, secondary, accent, text, background.
const PaletteSize = 5

// PaletteRoles names the palette entries in order.
var PaletteRoles = [PaletteSize]string{"primary", "secondary", "accent", "text", "background"}

// BrandProfile is the structured identity of a brand.
type BrandProfile struct {
	BrandVoice     []string `json:"brand_voice" validate:"min=3,max=5,dive,required"`
	ColorPalette   []string `json:"color_palette" validate:"len=5,dive,required"`
	Typography     *string  `json:"typography,omitempty"`
	ContentThemes  []string `json:"content_themes" validate:"min=5,max=10,dive,required"`
	TargetAudience string   `json:"target_audience" validate:"required"`
	PostingStyle   string   `json:"posting_style" validate:"required"`
	Industry       *string  `json:"industry,omitempty"`
}

// Validate checks the profile against its shape constraints.
func (p *BrandProfile) Validate() error {
	validate := validator.New()
	return validate.Struct(p)
}

// IndustryName returns the trimmed industry, or "" when absent.
func (p *BrandProfile) IndustryName() string {
	if p == nil || p.Industry == nil {
		return ""
	}
	return strings.TrimSpace(*p.Industry)
}

// TypographyName returns the trimmed typography, or "" when absent.
func (p *BrandProfile) TypographyName() string {
	if p == nil || p.Typography == nil {
		return ""
	}
	return strings.TrimSpace(*p.Typography)
}

// HasCompletePalette reports whether all palette entries are present and non-blank.
func (p *BrandProfile) HasCompletePalette() bool {
	if p == nil || len(p.ColorPalette) != PaletteSize {
		return false
	}
	for _, c := range p.ColorPalette {
		if strings.TrimSpace(c) == "" {
			return false
		}
	}
	return true
}

// StringPtr returns a pointer to s, or nil when s is blank.
func StringPtr(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
