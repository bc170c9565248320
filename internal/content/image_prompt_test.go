package content

import (
	"context"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/jonathan/brand-studio/internal/llm/llmtest"
	"github.com/jonathan/brand-studio/internal/outcome"
	"github.com/jonathan/brand-studio/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompose_Success(t *testing.T) {
	client := llmtest.New(llmtest.JSON(`{"post_topic": "Autumn blend", "prompt": "A steaming ceramic cup on a walnut counter, warm window light, espresso browns", "aspect_ratio": "1:1"}`))

	r := NewPromptComposer(client).Compose(context.Background(), okGuidelines(), okCaption(), okVisual())

	got, f := r.Value()
	require.Nil(t, f)
	assert.Equal(t, "Autumn blend", got.Topic)
	assert.Equal(t, "1:1", got.AspectRatio)
	assert.True(t, strings.HasPrefix(got.PromptText, "A steaming ceramic cup"))

	calls := client.Calls()
	require.Len(t, calls, 1)
	assert.Contains(t, calls[0].Prompt, "Industry: Specialty coffee")
	assert.Contains(t, calls[0].Prompt, "Your morning ritual, upgraded.")
	assert.Contains(t, calls[0].Prompt, `"visual_style": "minimalist"`)
}

func TestCompose_IndustryFallsBackToDefault(t *testing.T) {
	client := llmtest.New(llmtest.JSON(`{"prompt": "Clean flat-lay of office supplies"}`))
	doc := outcome.Ok(types.GuidelineDocument{Text: "Modern, professional brand with clean aesthetics"})

	r := NewPromptComposer(client).Compose(context.Background(), doc, okCaption(), okVisual())

	require.False(t, r.Failed())
	assert.Contains(t, client.Calls()[0].Prompt, "Industry: general business")
	got, _ := r.Value()
	assert.Equal(t, "1:1", got.AspectRatio)
}

func TestCompose_ChecksEveryInputBeforeCalling(t *testing.T) {
	guidelineFail := outcome.Fail[types.GuidelineDocument](outcome.Newf(outcome.IncompleteProfile, "missing"))
	captionFail := outcome.Fail[types.CaptionResult](outcome.Newf(outcome.EmptyGeneration, "empty caption"))
	visualFail := outcome.Fail[types.VisualAnalysis](outcome.Newf(outcome.GenerationError, "vision down"))

	tests := []struct {
		name       string
		guidelines outcome.Result[types.GuidelineDocument]
		caption    outcome.Result[types.CaptionResult]
		visual     outcome.Result[types.VisualAnalysis]
		want       *outcome.Failure
	}{
		{"guidelines", guidelineFail, okCaption(), okVisual(), guidelineFail.Failure()},
		{"caption", okGuidelines(), captionFail, okVisual(), captionFail.Failure()},
		{"visual", okGuidelines(), okCaption(), visualFail, visualFail.Failure()},
		{"caption before visual", okGuidelines(), captionFail, visualFail, captionFail.Failure()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := llmtest.New(llmtest.JSON(`{"prompt": "x"}`))

			r := NewPromptComposer(client).Compose(context.Background(), tt.guidelines, tt.caption, tt.visual)

			require.True(t, r.Failed())
			assert.Same(t, tt.want, r.Failure())
			assert.Equal(t, 0, client.CallCount())
		})
	}
}

func TestCompose_LongPromptIsTruncated(t *testing.T) {
	long := strings.Repeat("golden hour latte art ", 40)
	client := llmtest.New(llmtest.JSON(`{"prompt": "` + long + `"}`))

	r := NewPromptComposer(client).Compose(context.Background(), okGuidelines(), okCaption(), okVisual())

	got, f := r.Value()
	require.Nil(t, f)
	assert.LessOrEqual(t, utf8.RuneCountInString(got.PromptText), types.MaxPromptLength)
	assert.False(t, strings.HasSuffix(got.PromptText, " "))
	assert.True(t, strings.HasPrefix(long, got.PromptText))
}

func TestCompose_EmptyPromptIsEmptyGeneration(t *testing.T) {
	client := llmtest.New(llmtest.JSON(`{"post_topic": "x", "prompt": "  ", "aspect_ratio": "1:1"}`))

	r := NewPromptComposer(client).Compose(context.Background(), okGuidelines(), okCaption(), okVisual())

	require.True(t, r.Failed())
	assert.Equal(t, outcome.EmptyGeneration, r.Failure().Kind)
}

func TestCompose_MissingPromptKeyIsSchemaViolation(t *testing.T) {
	client := llmtest.New(llmtest.JSON(`{"post_topic": "x"}`))

	r := NewPromptComposer(client).Compose(context.Background(), okGuidelines(), okCaption(), okVisual())

	require.True(t, r.Failed())
	assert.Equal(t, outcome.SchemaViolation, r.Failure().Kind)
}

func TestTruncatePrompt(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		limit int
		want  string
	}{
		{"short", "warm light", 20, "warm light"},
		{"exact", "warm light", 10, "warm light"},
		{"word boundary", "warm golden light", 12, "warm golden"},
		{"cut on space", "warm golden light", 11, "warm golden"},
		{"trailing comma", "warm, golden light", 8, "warm"},
		{"single long word", "supercalifragilistic", 5, "super"},
		{"multibyte", "café crème brûlée", 10, "café crème"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TruncatePrompt(tt.in, tt.limit))
		})
	}
}
