package types

import "github.com/go-playground/validator/v10"

// MaxPromptLength caps the length of an image prompt in characters.
const MaxPromptLength = 400

// ImagePrompt is the text handed to the image generator.
type ImagePrompt struct {
	Topic       string `json:"post_topic"`
	PromptText  string `json:"prompt" validate:"required,max=400"`
	AspectRatio string `json:"aspect_ratio"`
}

// Validate checks the prompt against its shape constraints.
func (p *ImagePrompt) Validate() error {
	validate := validator.New()
	return validate.Struct(p)
}

// ImageSize is a supported output size for generated images.
type ImageSize string

// Supported image sizes.
const (
	SizeSquare    ImageSize = "1024x1024"
	SizePortrait  ImageSize = "1024x1792"
	SizeLandscape ImageSize = "1792x1024"
)

// AspectRatio maps a size to the aspect ratio understood by image models.
// Unknown sizes map to 1:1.
func (s ImageSize) AspectRatio() string {
	switch s {
	case SizePortrait:
		return "9:16"
	case SizeLandscape:
		return "16:9"
	default:
		return "1:1"
	}
}

// Valid reports whether s is one of the supported sizes.
func (s ImageSize) Valid() bool {
	switch s {
	case SizeSquare, SizePortrait, SizeLandscape:
		return true
	}
	return false
}
