package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVisualAnalysis_DecodesNestedSections(t *testing.T) {
	raw := `{
		"metadata": {"confidence_score": "high", "image_type": "photo", "primary_purpose": "marketing"},
		"color_profile": {"dominant_colors": [{"color": "teal", "hex": "#008080", "percentage": "40%", "role": "background"}]},
		"lighting": {"type": "natural", "shadows": {"type": "soft"}, "highlights": {"treatment": "subtle"}},
		"typography": {"present": true, "fonts": [{"type": "serif", "weight": "bold"}]},
		"subject_analysis": {"hair": {"length": "short"}, "body_positioning": {"posture": "relaxed"}},
		"background": {"elements_detailed": [{"item": "plant"}], "wall_surface": {"material": "brick"}}
	}`

	var v VisualAnalysis
	require.NoError(t, json.Unmarshal([]byte(raw), &v))

	assert.Equal(t, Measure("high"), v.Metadata.ConfidenceScore)
	require.Len(t, v.ColorProfile.DominantColors, 1)
	assert.Equal(t, "#008080", v.ColorProfile.DominantColors[0].Hex)
	assert.Equal(t, "soft", v.Lighting.Shadows.Type)
	assert.Equal(t, "subtle", v.Lighting.Highlights.Treatment)
	assert.True(t, v.Typography.Present)
	assert.Equal(t, "short", v.SubjectAnalysis.Hair.Length)
	assert.Equal(t, "brick", v.Background.WallSurface.Material)
}

func TestVisualAnalysis_StyleSummary(t *testing.T) {
	v := &VisualAnalysis{
		ArtisticElements: ArtisticElements{VisualStyle: "minimalist", Mood: "calm"},
		Lighting:         Lighting{Type: "natural"},
	}
	assert.Equal(t, "minimalist, calm, natural", v.StyleSummary())

	var empty *VisualAnalysis
	assert.Equal(t, "", empty.StyleSummary())
}

func TestMeasure_AcceptsNumbersAndStrings(t *testing.T) {
	raw := `{
		"metadata": {"confidence_score": 0.92},
		"lighting": {"source_count": 2, "contrast_ratio": "4:1"},
		"color_profile": {"dominant_colors": [{"percentage": null}]}
	}`

	var v VisualAnalysis
	require.NoError(t, json.Unmarshal([]byte(raw), &v))

	assert.Equal(t, Measure("0.92"), v.Metadata.ConfidenceScore)
	assert.Equal(t, Measure("2"), v.Lighting.SourceCount)
	assert.Equal(t, Measure("4:1"), v.Lighting.ContrastRatio)
	assert.Equal(t, Measure(""), v.ColorProfile.DominantColors[0].Percentage)
}

func TestMeasure_RejectsObjects(t *testing.T) {
	var m Measure
	assert.Error(t, json.Unmarshal([]byte(`{"value": 1}`), &m))
}
