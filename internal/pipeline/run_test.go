package pipeline

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jonathan/brand-studio/internal/llm"
	"github.com/jonathan/brand-studio/internal/llm/llmtest"
	"github.com/jonathan/brand-studio/internal/outcome"
	"github.com/jonathan/brand-studio/internal/pipeline/steps"
	"github.com/jonathan/brand-studio/internal/runstate"
	"github.com/jonathan/brand-studio/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const generatedProfileJSON = `{
	"brand_voice": ["warm", "knowledgeable", "approachable"],
	"color_palette": ["#6F4E37", "#C8A27A", "#E07A5F", "#2B2B2B", "#FFF8F0"],
	"typography": "Rounded sans-serif",
	"content_themes": ["brewing guides", "origin stories", "seasonal blends", "cafe culture", "sustainability"],
	"target_audience": "Young professionals",
	"posting_style": "casual",
	"industry": "Food & Beverage"
}`

const uploadedProfileJSON = `{
	"brand_voice": ["refined", "precise", "welcoming"],
	"color_palette": ["#1B3A4B", "#D4A373", "#F4A261", "#111111", "#FAFAFA"],
	"typography": "Playfair Display headings, Inter body",
	"content_themes": ["single origins", "roast profiles", "tasting notes", "events", "team"],
	"target_audience": "Coffee enthusiasts",
	"posting_style": "professional",
	"industry": "Food & Beverage"
}`

// The merge answer deliberately drifts from the uploaded palette.
const mergedProfileJSON = `{
	"brand_voice": ["refined", "warm", "knowledgeable"],
	"color_palette": ["#6F4E37", "#D4A373", "#F4A261", "#111111", "#FAFAFA"],
	"typography": "Rounded sans-serif",
	"content_themes": ["single origins", "brewing guides", "seasonal blends", "tasting notes", "cafe culture"],
	"target_audience": "Young professionals who love great coffee",
	"posting_style": "casual",
	"industry": "Food & Beverage"
}`

const captionJSON = `{
	"caption": "Meet our autumn roast: notes of fig, cocoa and toasted pecan.",
	"hashtags": ["coffee", "#SeasonalBlend", "specialtycoffee", "roastery", "autumn"],
	"cta": "Grab a bag before it's gone",
	"hook": "Fall just got a flavour."
}`

const visualJSON = `{
	"metadata": {"confidence_score": 0.8, "image_type": "photograph", "primary_purpose": "product"},
	"composition": {"rule_applied": "rule of thirds"},
	"color_profile": {"dominant_colors": [], "color_palette": "earthy browns"},
	"lighting": {"type": "soft daylight", "mood": "cozy"},
	"technical_specs": {"medium": "photography"},
	"artistic_elements": {"visual_style": "editorial", "mood": "warm"},
	"typography": {"present": false},
	"subject_analysis": {"primary_subject": "coffee bag"},
	"background": {"setting_type": "wooden table"},
	"generation_parameters": {"keywords": ["coffee"]}
}`

const promptJSON = `{"post_topic": "new seasonal blend", "prompt": "A kraft coffee bag on a walnut table in soft daylight, earthy browns and terracotta accents", "aspect_ratio": "1:1"}`

var coffeeQuestionnaire = types.Questionnaire{
	Industry:         "Food & Beverage",
	BrandDescription: "Specialty coffee roaster",
	TargetAudience:   "Young professionals",
}

// scriptedModel answers each stage from the fixtures above and lets tests
// override single stages.
type scriptedModel struct {
	mu        sync.Mutex
	overrides map[string]llmtest.Reply
	before    func(stage string)
}

func stageOf(call llmtest.Call) string {
	switch {
	case call.Method == "GenerateVision":
		return "vision"
	case call.Schema != nil && call.Schema.Name == "Caption":
		return "caption"
	case call.Schema != nil && call.Schema.Name == "ImagePrompt":
		return "prompt"
	case strings.Contains(call.Prompt, "Uploaded Brand Guidelines Profile"):
		return "merge"
	case strings.Contains(call.Prompt, "brand guideline document"):
		return "document"
	default:
		return "questionnaire"
	}
}

func (m *scriptedModel) client() *llmtest.Client {
	c := llmtest.New()
	c.Handler = func(ctx context.Context, call llmtest.Call) (string, error) {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		stage := stageOf(call)
		if m.before != nil {
			m.before(stage)
		}
		m.mu.Lock()
		reply, ok := m.overrides[stage]
		m.mu.Unlock()
		if ok {
			return reply.Text, reply.Err
		}
		switch stage {
		case "vision":
			return visualJSON, nil
		case "caption":
			return captionJSON, nil
		case "prompt":
			return promptJSON, nil
		case "merge":
			return mergedProfileJSON, nil
		case "document":
			return uploadedProfileJSON, nil
		default:
			return generatedProfileJSON, nil
		}
	}
	return c
}

func stagesCalled(c *llmtest.Client) []string {
	var out []string
	for _, call := range c.Calls() {
		out = append(out, stageOf(call))
	}
	return out
}

type stubImages struct{}

func (stubImages) FetchImage(_ context.Context, url string) (llm.ImagePart, error) {
	return llm.ImagePart{MIMEType: "image/png", Data: []byte(url)}, nil
}

type stubGenerator struct {
	mu     sync.Mutex
	url    string
	err    error
	calls  int
	prompt string
}

func (g *stubGenerator) Generate(_ context.Context, prompt string, _ types.ImageSize) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	g.prompt = prompt
	return g.url, g.err
}

// brokenTracker fails every write.
type brokenTracker struct{ runstate.MemoryTracker }

func (*brokenTracker) StartRun(context.Context, runstate.Run) error {
	return errors.New("redis: connection refused")
}

func (*brokenTracker) UpdateStep(context.Context, string, runstate.StepState) error {
	return errors.New("redis: connection refused")
}

func (*brokenTracker) FinishRun(context.Context, string, string, string, string) error {
	return errors.New("redis: connection refused")
}

func newStudio(client llm.Client, gen *stubGenerator, tracker runstate.Tracker) *Studio {
	return New(Config{
		Client:      client,
		Images:      stubImages{},
		Generator:   gen,
		Tracker:     tracker,
		CallTimeout: 5 * time.Second,
	})
}

func stepStatuses(t *testing.T, tracker *runstate.MemoryTracker, runID string) map[string]string {
	t.Helper()
	run, err := tracker.GetRun(context.Background(), runID)
	require.NoError(t, err)
	out := make(map[string]string, len(run.Steps))
	for _, s := range run.Steps {
		out[s.Step] = s.Status
	}
	return out
}

func TestRunBrand_QuestionnaireOnly(t *testing.T) {
	model := &scriptedModel{}
	client := model.client()
	tracker := runstate.NewMemoryTracker()
	studio := newStudio(client, &stubGenerator{}, tracker)

	r := studio.RunBrand(context.Background(), BrandRequest{CompanyID: 7, Questionnaire: coffeeQuestionnaire})

	run, f := r.Value()
	require.Nil(t, f)
	assert.NotEmpty(t, run.RunID)
	assert.False(t, run.Merged)
	assert.Nil(t, run.Uploaded)
	assert.NotEmpty(t, run.Profile.BrandVoice)
	assert.Len(t, run.Profile.ColorPalette, types.PaletteSize)
	assert.Equal(t, "Food & Beverage", run.Profile.IndustryName())
	assert.Equal(t, "Food & Beverage", run.Guidelines.Industry)
	assert.Contains(t, run.Guidelines.Text, "warm, knowledgeable, approachable")
	assert.Equal(t, []string{"questionnaire"}, stagesCalled(client))

	assert.Equal(t, map[string]string{
		steps.AnalyzeProfile:   steps.StatusCompleted,
		steps.AnalyzeUploaded:  steps.StatusSkipped,
		steps.MergeProfiles:    steps.StatusSkipped,
		steps.RenderGuidelines: steps.StatusCompleted,
	}, stepStatuses(t, tracker, run.RunID))

	stored, err := tracker.GetRun(context.Background(), run.RunID)
	require.NoError(t, err)
	assert.Equal(t, runstate.StatusCompleted, stored.Status)
	assert.Equal(t, runstate.KindBrand, stored.Kind)
	assert.Equal(t, int64(7), stored.CompanyID)
}

func TestRunBrand_UploadedPaletteTakesPrecedence(t *testing.T) {
	model := &scriptedModel{}
	client := model.client()
	doc := "Official palette: navy #1B3A4B, sand #D4A373 ..."
	studio := newStudio(client, &stubGenerator{}, nil)

	r := studio.RunBrand(context.Background(), BrandRequest{Questionnaire: coffeeQuestionnaire, Document: &doc})

	run, f := r.Value()
	require.Nil(t, f)
	assert.True(t, run.Merged)
	require.NotNil(t, run.Uploaded)
	assert.Equal(t, run.Uploaded.ColorPalette, run.Profile.ColorPalette)
	assert.Equal(t, "Playfair Display headings, Inter body", run.Profile.TypographyName())
	assert.Contains(t, run.Guidelines.Text, "#1B3A4B")
	assert.Equal(t, []string{"questionnaire", "document", "merge"}, stagesCalled(client))
}

func TestRunBrand_StoredUploadedProfileSkipsDocumentAnalysis(t *testing.T) {
	model := &scriptedModel{}
	client := model.client()
	uploaded := types.BrandProfile{
		BrandVoice:     []string{"refined", "precise", "welcoming"},
		ColorPalette:   []string{"#1B3A4B", "#D4A373", "#F4A261", "#111111", "#FAFAFA"},
		ContentThemes:  []string{"a", "b", "c", "d", "e"},
		TargetAudience: "Coffee enthusiasts",
		PostingStyle:   "professional",
	}
	studio := newStudio(client, &stubGenerator{}, nil)

	r := studio.RunBrand(context.Background(), BrandRequest{Questionnaire: coffeeQuestionnaire, Uploaded: &uploaded})

	run, f := r.Value()
	require.Nil(t, f)
	assert.Equal(t, uploaded.ColorPalette, run.Profile.ColorPalette)
	assert.Equal(t, []string{"questionnaire", "merge"}, stagesCalled(client))
}

func TestRunBrand_FailedDocumentAnalysisSkipsMerge(t *testing.T) {
	model := &scriptedModel{overrides: map[string]llmtest.Reply{
		"document": llmtest.JSON(`{"brand_voice": []}`),
	}}
	client := model.client()
	tracker := runstate.NewMemoryTracker()
	doc := ""
	studio := newStudio(client, &stubGenerator{}, tracker)

	r := studio.RunBrand(context.Background(), BrandRequest{Questionnaire: coffeeQuestionnaire, Document: &doc})

	run, f := r.Value()
	require.Nil(t, f)
	assert.False(t, run.Merged)
	assert.Equal(t, "#6F4E37", run.Profile.ColorPalette[0])
	assert.Equal(t, []string{"questionnaire", "document"}, stagesCalled(client))

	statuses := stepStatuses(t, tracker, run.RunID)
	assert.Equal(t, steps.StatusFailed, statuses[steps.AnalyzeUploaded])
	assert.Equal(t, steps.StatusSkipped, statuses[steps.MergeProfiles])
}

func TestRunBrand_AnalysisFailureEndsRun(t *testing.T) {
	model := &scriptedModel{overrides: map[string]llmtest.Reply{
		"questionnaire": llmtest.Fail(errors.New("503 Service Unavailable")),
	}}
	client := model.client()
	tracker := runstate.NewMemoryTracker()
	doc := "guidelines"
	studio := newStudio(client, &stubGenerator{}, tracker)
	studio.newRunID = func() string { return "run-1" }

	r := studio.RunBrand(context.Background(), BrandRequest{Questionnaire: coffeeQuestionnaire, Document: &doc})

	require.True(t, r.Failed())
	assert.Equal(t, outcome.GenerationError, r.Failure().Kind)
	assert.Equal(t, []string{"questionnaire"}, stagesCalled(client))

	stored, err := tracker.GetRun(context.Background(), "run-1")
	require.NoError(t, err)
	assert.Equal(t, runstate.StatusFailed, stored.Status)
	assert.Equal(t, string(outcome.GenerationError), stored.FailureKind)
	assert.Equal(t, map[string]string{steps.AnalyzeProfile: steps.StatusFailed}, stepStatuses(t, tracker, "run-1"))
}

func TestRunBrand_MissingDescriptionMakesNoCall(t *testing.T) {
	client := (&scriptedModel{}).client()
	studio := newStudio(client, &stubGenerator{}, nil)

	r := studio.RunBrand(context.Background(), BrandRequest{Questionnaire: types.Questionnaire{Industry: "Retail"}})

	require.True(t, r.Failed())
	assert.Equal(t, outcome.SchemaViolation, r.Failure().Kind)
	assert.Zero(t, client.CallCount())
}

func TestGenerateBrandGuidelines_DegenerateProfile(t *testing.T) {
	client := (&scriptedModel{}).client()
	studio := newStudio(client, &stubGenerator{}, nil)
	degenerate := types.BrandProfile{BrandVoice: []string{"calm"}, TargetAudience: "everyone"}

	r := studio.GenerateBrandGuidelines(context.Background(), outcome.Ok(degenerate), nil)

	require.True(t, r.Failed())
	assert.Equal(t, outcome.IncompleteProfile, r.Failure().Kind)
	assert.Equal(t, []string{"color_palette", "industry", "content_themes", "posting_style"}, r.Failure().Fields)
	assert.Zero(t, client.CallCount())

	caption := studio.GeneratePostCaption(context.Background(), r, "launch", "instagram")
	assert.Same(t, r.Failure(), caption.Failure())
	assert.Zero(t, client.CallCount())
}

func contentRequest() ContentRequest {
	return ContentRequest{
		CompanyID:          7,
		Guidelines:         types.GuidelineDocument{Text: "# BRAND GUIDELINES\n\n## Industry\nFood & Beverage\n", Industry: "Food & Beverage"},
		Topic:              "new seasonal blend",
		Platform:           "instagram",
		ReferenceImageURLs: []string{"https://cdn.example.com/ref.png"},
		Size:               types.SizeSquare,
	}
}

func TestRunContent_Success(t *testing.T) {
	model := &scriptedModel{}
	client := model.client()
	gen := &stubGenerator{url: "https://cdn.example.com/generated/2026/10/a.webp"}
	tracker := runstate.NewMemoryTracker()
	studio := newStudio(client, gen, tracker)

	r := studio.RunContent(context.Background(), contentRequest())

	run, f := r.Value()
	require.Nil(t, f)
	assert.Equal(t, gen.url, run.ImageURL)
	assert.Equal(t, "Fall just got a flavour.", run.Caption.Hook)
	assert.Equal(t, []string{"coffee", "SeasonalBlend", "specialtycoffee", "roastery", "autumn"}, run.Caption.Hashtags)
	assert.Equal(t, "editorial", run.Visual.ArtisticElements.VisualStyle)
	assert.Equal(t, gen.prompt, run.Prompt.PromptText)
	assert.Equal(t, 1, gen.calls)

	called := stagesCalled(client)
	require.Len(t, called, 3)
	assert.ElementsMatch(t, []string{"caption", "vision"}, called[:2])
	assert.Equal(t, "prompt", called[2])

	assert.NoError(t, steps.ValidateDependencies(context.Background(), tracker, run.RunID, steps.GenerateImage))
	assert.Equal(t, map[string]string{
		steps.GenerateCaption: steps.StatusCompleted,
		steps.AnalyzeImages:   steps.StatusCompleted,
		steps.ComposePrompt:   steps.StatusCompleted,
		steps.GenerateImage:   steps.StatusCompleted,
	}, stepStatuses(t, tracker, run.RunID))
}

func TestRunContent_BranchesRunConcurrently(t *testing.T) {
	started := make(chan string, 2)
	release := make(chan struct{})
	model := &scriptedModel{before: func(stage string) {
		if stage == "caption" || stage == "vision" {
			started <- stage
			<-release
		}
	}}
	client := model.client()
	studio := newStudio(client, &stubGenerator{url: "https://cdn.example.com/x.webp"}, nil)

	done := make(chan outcome.Result[ContentRun], 1)
	go func() { done <- studio.RunContent(context.Background(), contentRequest()) }()

	var seen []string
	for range 2 {
		select {
		case s := <-started:
			seen = append(seen, s)
		case <-time.After(2 * time.Second):
			t.Fatal("caption and visual analysis did not run concurrently")
		}
	}
	close(release)

	assert.ElementsMatch(t, []string{"caption", "vision"}, seen)
	r := <-done
	assert.False(t, r.Failed())
}

func TestRunContent_CaptionFailureWins(t *testing.T) {
	model := &scriptedModel{overrides: map[string]llmtest.Reply{
		"caption": llmtest.JSON(`{"caption": "", "hashtags": [], "cta": "", "hook": ""}`),
		"vision":  llmtest.Fail(errors.New("vision backend down")),
	}}
	client := model.client()
	gen := &stubGenerator{url: "https://cdn.example.com/x.webp"}
	studio := newStudio(client, gen, nil)

	r := studio.RunContent(context.Background(), contentRequest())

	require.True(t, r.Failed())
	assert.Equal(t, outcome.EmptyGeneration, r.Failure().Kind)
	assert.NotContains(t, stagesCalled(client), "prompt")
	assert.Zero(t, gen.calls)
}

func TestRunContent_NoReferenceImages(t *testing.T) {
	client := (&scriptedModel{}).client()
	gen := &stubGenerator{url: "https://cdn.example.com/x.webp"}
	tracker := runstate.NewMemoryTracker()
	studio := newStudio(client, gen, tracker)
	req := contentRequest()
	req.ReferenceImageURLs = nil

	r := studio.RunContent(context.Background(), req)

	require.True(t, r.Failed())
	assert.Equal(t, outcome.SchemaViolation, r.Failure().Kind)
	assert.Equal(t, []string{"caption"}, stagesCalled(client))
	assert.Zero(t, gen.calls)
}

func TestRunContent_ImageFailure(t *testing.T) {
	client := (&scriptedModel{}).client()
	gen := &stubGenerator{err: errors.New("quota exceeded")}
	tracker := runstate.NewMemoryTracker()
	studio := newStudio(client, gen, tracker)
	studio.newRunID = func() string { return "run-img" }

	r := studio.RunContent(context.Background(), contentRequest())

	require.True(t, r.Failed())
	assert.Equal(t, outcome.ImageGenerationError, r.Failure().Kind)
	assert.ErrorContains(t, r.Err(), "quota exceeded")
	assert.Equal(t, steps.StatusFailed, stepStatuses(t, tracker, "run-img")[steps.GenerateImage])
}

func TestRunContent_CancelledRequest(t *testing.T) {
	client := (&scriptedModel{}).client()
	gen := &stubGenerator{url: "https://cdn.example.com/x.webp"}
	studio := newStudio(client, gen, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := studio.RunContent(ctx, contentRequest())

	require.True(t, r.Failed())
	assert.Equal(t, outcome.GenerationError, r.Failure().Kind)
	assert.Zero(t, gen.calls)
}

func TestRunContent_ReportsProgress(t *testing.T) {
	client := (&scriptedModel{}).client()
	studio := newStudio(client, &stubGenerator{url: "https://cdn.example.com/x.webp"}, nil)

	var mu sync.Mutex
	var events []ProgressEvent
	req := contentRequest()
	req.OnProgress = func(e ProgressEvent) {
		mu.Lock()
		defer mu.Unlock()
		events = append(events, e)
	}

	r := studio.RunContent(context.Background(), req)
	require.False(t, r.Failed())

	completed := map[string]any{}
	for _, e := range events {
		assert.NotEmpty(t, e.RunID)
		if e.Status == steps.StatusCompleted {
			completed[e.Step] = e.Content
		}
	}
	require.Len(t, completed, 4)
	assert.Equal(t, "https://cdn.example.com/x.webp", completed[steps.GenerateImage])
	assert.IsType(t, types.CaptionResult{}, completed[steps.GenerateCaption])
}

func TestRunContent_TrackerErrorsAreNotFatal(t *testing.T) {
	client := (&scriptedModel{}).client()
	studio := newStudio(client, &stubGenerator{url: "https://cdn.example.com/x.webp"}, &brokenTracker{})

	r := studio.RunContent(context.Background(), contentRequest())

	assert.False(t, r.Failed())
}
