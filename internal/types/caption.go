package types

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

// CaptionResult is a generated social post caption.
type CaptionResult struct {
	Caption  string   `json:"caption" validate:"required"`
	Hashtags []string `json:"hashtags" validate:"min=5,max=10,dive,required"`
	CTA      string   `json:"cta" validate:"required"`
	Hook     string   `json:"hook" validate:"required"`
}

// Validate checks the caption against its shape constraints.
func (c *CaptionResult) Validate() error {
	validate := validator.New()
	return validate.Struct(c)
}

// Formatted returns the caption followed by a blank line and the hashtags,
// each prefixed with '#'.
func (c *CaptionResult) Formatted() string {
	if len(c.Hashtags) == 0 {
		return c.Caption
	}
	tags := make([]string, len(c.Hashtags))
	for i, tag := range c.Hashtags {
		tags[i] = "#" + strings.TrimPrefix(tag, "#")
	}
	return c.Caption + "\n\n" + strings.Join(tags, " ")
}
