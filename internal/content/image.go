package content

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/jonathan/brand-studio/internal/outcome"
	"github.com/jonathan/brand-studio/internal/structured"
	"github.com/jonathan/brand-studio/internal/types"
)

// ImageGenerator renders a prompt and returns the URL of the stored image.
type ImageGenerator interface {
	Generate(ctx context.Context, prompt string, size types.ImageSize) (string, error)
}

// ImageSynthesizer adapts an ImageGenerator to the stage contract.
type ImageSynthesizer struct {
	generator ImageGenerator
	opts      options
}

// NewImageSynthesizer creates an ImageSynthesizer over generator.
func NewImageSynthesizer(generator ImageGenerator, opts ...Option) *ImageSynthesizer {
	return &ImageSynthesizer{generator: generator, opts: buildOptions(opts)}
}

// Synthesize makes exactly one generator call. Generator errors, timeouts
// and answers that are not absolute URLs are ImageGenerationError. An empty
// size means square.
func (s *ImageSynthesizer) Synthesize(ctx context.Context, prompt outcome.Result[types.ImagePrompt], size types.ImageSize) outcome.Result[string] {
	p, failure := prompt.Value()
	if failure != nil {
		return outcome.Forward[string](prompt)
	}
	if size == "" {
		size = types.SizeSquare
	}
	if !size.Valid() {
		return outcome.Fail[string](outcome.Newf(outcome.ImageGenerationError, "generate image: unsupported image size %q", size))
	}
	if s.generator == nil {
		return outcome.Fail[string](outcome.Newf(outcome.ImageGenerationError, "generate image: no image generator configured"))
	}

	callCtx := ctx
	if s.opts.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, s.opts.timeout)
		defer cancel()
	}

	start := time.Now()
	var result outcome.Result[string]
	if rawURL, err := s.generator.Generate(callCtx, p.PromptText, size); err != nil {
		result = outcome.Fail[string](structured.CallFailure(ctx, outcome.ImageGenerationError, "generate image", s.opts.timeout, err))
	} else {
		result = checkImageURL(rawURL)
	}
	logResult(s.opts.logger, "image synthesis", start, result.Failure(), "size", string(size))
	return result
}

// checkImageURL accepts only absolute URLs with a host, so an error message
// returned in place of a URL is never passed on as one.
func checkImageURL(rawURL string) outcome.Result[string] {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return outcome.Fail[string](outcome.Newf(outcome.ImageGenerationError, "generate image: generator returned no URL"))
	}
	u, err := url.Parse(rawURL)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return outcome.Fail[string](outcome.Newf(outcome.ImageGenerationError, "generate image: generator returned an invalid URL %q", rawURL))
	}
	return outcome.Ok(rawURL)
}
