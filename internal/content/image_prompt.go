package content

import (
	"context"
	"encoding/json"
	"strings"
	"time"
	"unicode"

	"github.com/jonathan/brand-studio/internal/llm"
	"github.com/jonathan/brand-studio/internal/outcome"
	"github.com/jonathan/brand-studio/internal/prompts"
	"github.com/jonathan/brand-studio/internal/rendering"
	"github.com/jonathan/brand-studio/internal/schemas"
	"github.com/jonathan/brand-studio/internal/structured"
	"github.com/jonathan/brand-studio/internal/types"
)

type promptAnswer types.ImagePrompt

// PromptComposer fuses guidelines, caption and visual analysis into an
// image generation prompt.
type PromptComposer struct {
	client llm.Client
	opts   options
}

// NewPromptComposer creates a PromptComposer backed by client.
func NewPromptComposer(client llm.Client, opts ...Option) *PromptComposer {
	return &PromptComposer{client: client, opts: buildOptions(opts)}
}

// Compose checks all three inputs before calling the model; the first failed
// input, in argument order, is forwarded. An over-long prompt is cut at a
// word boundary; an empty one is EmptyGeneration.
func (c *PromptComposer) Compose(
	ctx context.Context,
	guidelines outcome.Result[types.GuidelineDocument],
	caption outcome.Result[types.CaptionResult],
	visual outcome.Result[types.VisualAnalysis],
) outcome.Result[types.ImagePrompt] {
	doc, failure := guidelines.Value()
	if failure != nil {
		return outcome.Forward[types.ImagePrompt](guidelines)
	}
	post, failure := caption.Value()
	if failure != nil {
		return outcome.Forward[types.ImagePrompt](caption)
	}
	analysis, failure := visual.Value()
	if failure != nil {
		return outcome.Forward[types.ImagePrompt](visual)
	}

	analysisJSON, err := json.MarshalIndent(analysis, "", "  ")
	if err != nil {
		return outcome.Fail[types.ImagePrompt](outcome.Wrap(outcome.SchemaViolation, "compose image prompt: visual analysis could not be encoded", err))
	}

	industry := rendering.IndustryHint(doc)
	system := prompts.MustGet(prompts.ContentFile, "image-prompt-system")
	schema := llm.ImagePromptSchema(system)
	userPrompt := prompts.Render(prompts.ContentFile, "image-prompt", map[string]string{
		"Guidelines":     doc.Text,
		"Industry":       industry,
		"VisualAnalysis": string(analysisJSON),
		"Caption":        post.Formatted(),
	})

	start := time.Now()
	answer := structured.Generate[promptAnswer](ctx, c.client, structured.Request{
		Op:         "compose image prompt",
		Prompt:     llm.BuildExtractionPrompt(schema, userPrompt),
		Schema:     &schema,
		SchemaName: schemas.ImagePrompt,
		Tier:       llm.TierStandard,
		Timeout:    c.opts.timeout,
	})

	result := finishPrompt(answer)
	logResult(c.opts.logger, "image prompt", start, result.Failure(), "industry", industry)
	return result
}

func finishPrompt(answer outcome.Result[promptAnswer]) outcome.Result[types.ImagePrompt] {
	raw, failure := answer.Value()
	if failure != nil {
		return outcome.Forward[types.ImagePrompt](answer)
	}

	p := types.ImagePrompt(raw)
	p.Topic = strings.TrimSpace(p.Topic)
	p.PromptText = TruncatePrompt(strings.TrimSpace(p.PromptText), types.MaxPromptLength)
	if p.PromptText == "" {
		return outcome.Fail[types.ImagePrompt](outcome.Newf(outcome.EmptyGeneration, "compose image prompt: model returned an empty prompt"))
	}
	if p.AspectRatio = strings.TrimSpace(p.AspectRatio); p.AspectRatio == "" {
		p.AspectRatio = types.SizeSquare.AspectRatio()
	}

	if err := p.Validate(); err != nil {
		return outcome.Fail[types.ImagePrompt](outcome.Wrap(outcome.SchemaViolation, "compose image prompt: answer failed validation", err))
	}
	return outcome.Ok(p)
}

// TruncatePrompt shortens s to at most limit characters, cutting at the last
// word boundary that fits. A single word longer than limit is cut mid-word.
func TruncatePrompt(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}

	cut := runes[:limit]
	if !unicode.IsSpace(runes[limit]) {
		for i := len(cut) - 1; i > 0; i-- {
			if unicode.IsSpace(cut[i]) {
				cut = cut[:i]
				break
			}
		}
	}
	return strings.TrimRightFunc(string(cut), func(r rune) bool {
		return unicode.IsSpace(r) || r == ',' || r == ';'
	})
}
