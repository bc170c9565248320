package content

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/jonathan/brand-studio/internal/llm"
	"github.com/jonathan/brand-studio/internal/outcome"
	"github.com/jonathan/brand-studio/internal/prompts"
	"github.com/jonathan/brand-studio/internal/schemas"
	"github.com/jonathan/brand-studio/internal/structured"
	"github.com/jonathan/brand-studio/internal/types"
)

// captionAnswer is the raw model answer, decoded before normalization. The
// contract is checked on the normalized caption, so absent keys decode to ""
// and fail there.
type captionAnswer types.CaptionResult

// CaptionGenerator writes a post caption in the brand's voice.
type CaptionGenerator struct {
	client llm.Client
	opts   options
}

// NewCaptionGenerator creates a CaptionGenerator backed by client.
func NewCaptionGenerator(client llm.Client, opts ...Option) *CaptionGenerator {
	return &CaptionGenerator{client: client, opts: buildOptions(opts)}
}

// Generate writes a caption for topic on platform following guidelines.
//
// Hashtags are normalized (leading '#' removed, trimmed, de-duplicated) before
// their count is checked. A blank caption is EmptyGeneration; any other
// contract breach, including a missing or blank cta or hook, is
// SchemaViolation.
func (g *CaptionGenerator) Generate(ctx context.Context, guidelines outcome.Result[types.GuidelineDocument], topic, platform string) outcome.Result[types.CaptionResult] {
	doc, failure := guidelines.Value()
	if failure != nil {
		return outcome.Forward[types.CaptionResult](guidelines)
	}

	topic, platform = strings.TrimSpace(topic), strings.TrimSpace(platform)
	if topic == "" || platform == "" {
		return outcome.Fail[types.CaptionResult](outcome.Newf(outcome.SchemaViolation, "caption needs a topic and a platform"))
	}

	system := prompts.MustGet(prompts.ContentFile, "caption-system")
	schema := llm.CaptionSchema(system)
	userPrompt := prompts.Render(prompts.ContentFile, "caption", map[string]string{
		"Guidelines": doc.Text,
		"Platform":   platform,
		"Topic":      topic,
	})

	start := time.Now()
	answer := structured.Generate[captionAnswer](ctx, g.client, structured.Request{
		Op:      "generate caption",
		Prompt:  llm.BuildExtractionPrompt(schema, userPrompt),
		Schema:  &schema,
		Tier:    llm.TierLite,
		Timeout: g.opts.timeout,
	})

	result := finishCaption(answer)
	logResult(g.opts.logger, "caption", start, result.Failure(), "platform", platform)
	return result
}

func finishCaption(answer outcome.Result[captionAnswer]) outcome.Result[types.CaptionResult] {
	raw, failure := answer.Value()
	if failure != nil {
		return outcome.Forward[types.CaptionResult](answer)
	}

	caption := types.CaptionResult(raw)
	caption.Caption = strings.TrimSpace(caption.Caption)
	caption.CTA = strings.TrimSpace(caption.CTA)
	caption.Hook = strings.TrimSpace(caption.Hook)
	caption.Hashtags = NormalizeHashtags(caption.Hashtags)

	if caption.Caption == "" {
		return outcome.Fail[types.CaptionResult](outcome.Newf(outcome.EmptyGeneration, "generate caption: model returned an empty caption"))
	}

	data, err := json.Marshal(caption)
	if err != nil {
		return outcome.Fail[types.CaptionResult](outcome.Wrap(outcome.SchemaViolation, "generate caption: answer could not be re-encoded", err))
	}
	return structured.Decode[types.CaptionResult]("generate caption", schemas.Caption, string(data))
}

// NormalizeHashtags strips leading '#', trims, and removes blanks and
// case-insensitive duplicates while keeping the first spelling.
func NormalizeHashtags(tags []string) []string {
	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(tag), "#"))
		key := strings.ToLower(tag)
		if tag == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, tag)
	}
	return out
}
