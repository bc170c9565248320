package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validProfile() BrandProfile {
	return BrandProfile{
		BrandVoice:     []string{"warm", "playful", "confident"},
		ColorPalette:   []string{"#1A1A2E", "#16213E", "#E94560", "#0F3460", "#FFFFFF"},
		Typography:     StringPtr("Rounded geometric sans-serif"),
		ContentThemes:  []string{"recipes", "behind the scenes", "sourcing", "community", "seasonal menus"},
		TargetAudience: "Young urban professionals who value craft food",
		PostingStyle:   "casual",
		Industry:       StringPtr("Food & Beverage"),
	}
}

func TestBrandProfile_Validate(t *testing.T) {
	p := validProfile()
	assert.NoError(t, p.Validate())
}

func TestBrandProfile_ValidateRejectsShape(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(p *BrandProfile)
	}{
		{"two voice adjectives", func(p *BrandProfile) { p.BrandVoice = p.BrandVoice[:2] }},
		{"six voice adjectives", func(p *BrandProfile) { p.BrandVoice = []string{"a", "b", "c", "d", "e", "f"} }},
		{"four colors", func(p *BrandProfile) { p.ColorPalette = p.ColorPalette[:4] }},
		{"blank color", func(p *BrandProfile) { p.ColorPalette[2] = "" }},
		{"four themes", func(p *BrandProfile) { p.ContentThemes = p.ContentThemes[:4] }},
		{"missing audience", func(p *BrandProfile) { p.TargetAudience = "" }},
		{"missing posting style", func(p *BrandProfile) { p.PostingStyle = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validProfile()
			tt.mutate(&p)
			assert.Error(t, p.Validate())
		})
	}
}

func TestBrandProfile_OptionalFieldsOmitted(t *testing.T) {
	p := validProfile()
	p.Typography = nil
	p.Industry = nil

	require.NoError(t, p.Validate())

	data, err := json.Marshal(p)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "typography")
	assert.NotContains(t, string(data), "industry")
	assert.Equal(t, "", p.IndustryName())
	assert.Equal(t, "", p.TypographyName())
}

func TestBrandProfile_HasCompletePalette(t *testing.T) {
	p := validProfile()
	assert.True(t, p.HasCompletePalette())

	p.ColorPalette[4] = "  "
	assert.False(t, p.HasCompletePalette())

	var nilProfile *BrandProfile
	assert.False(t, nilProfile.HasCompletePalette())
}

func TestStringPtr(t *testing.T) {
	assert.Nil(t, StringPtr("   "))
	require.NotNil(t, StringPtr(" Retail "))
	assert.Equal(t, "Retail", *StringPtr(" Retail "))
}
