package types

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestImageSize_AspectRatio(t *testing.T) {
	assert.Equal(t, "1:1", SizeSquare.AspectRatio())
	assert.Equal(t, "9:16", SizePortrait.AspectRatio())
	assert.Equal(t, "16:9", SizeLandscape.AspectRatio())
	assert.Equal(t, "1:1", ImageSize("640x480").AspectRatio())
}

func TestImageSize_Valid(t *testing.T) {
	assert.True(t, SizeSquare.Valid())
	assert.True(t, SizePortrait.Valid())
	assert.True(t, SizeLandscape.Valid())
	assert.False(t, ImageSize("512x512").Valid())
}

func TestImagePrompt_Validate(t *testing.T) {
	p := ImagePrompt{Topic: "launch", PromptText: "A bright flat-lay of coffee beans", AspectRatio: "1:1"}
	assert.NoError(t, p.Validate())

	p.PromptText = strings.Repeat("x", MaxPromptLength+1)
	assert.Error(t, p.Validate())

	p.PromptText = ""
	assert.Error(t, p.Validate())
}
