// Package pipeline wires the brand and content stages into the entry points
// used by the HTTP server and the CLI, and runs them as tracked composite runs.
package pipeline

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/jonathan/brand-studio/internal/brand"
	"github.com/jonathan/brand-studio/internal/content"
	"github.com/jonathan/brand-studio/internal/llm"
	"github.com/jonathan/brand-studio/internal/outcome"
	"github.com/jonathan/brand-studio/internal/rendering"
	"github.com/jonathan/brand-studio/internal/runstate"
	"github.com/jonathan/brand-studio/internal/types"
)

// Default per-call timeouts.
const (
	DefaultCallTimeout  = 60 * time.Second
	DefaultImageTimeout = 120 * time.Second
)

// Config holds the collaborators of a Studio. Client is required; the
// others may be nil, in which case the stages that need them fail with a
// tagged Failure instead of panicking.
type Config struct {
	Client    llm.Client
	Images    content.ImageSource
	Generator content.ImageGenerator
	Tracker   runstate.Tracker

	CallTimeout  time.Duration
	ImageTimeout time.Duration
	Logger       *slog.Logger
}

// Studio exposes every stage of brand synthesis and content generation.
// It holds no per-run state and is safe for concurrent use.
type Studio struct {
	analyzer *brand.Analyzer
	merger   *brand.Merger
	captions *content.CaptionGenerator
	visuals  *content.VisualAnalyzer
	composer *content.PromptComposer
	images   *content.ImageSynthesizer
	tracker  runstate.Tracker
	logger   *slog.Logger
	newRunID func() string
}

// New creates a Studio from cfg.
func New(cfg Config) *Studio {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	callTimeout := cfg.CallTimeout
	if callTimeout <= 0 {
		callTimeout = DefaultCallTimeout
	}
	imageTimeout := cfg.ImageTimeout
	if imageTimeout <= 0 {
		imageTimeout = DefaultImageTimeout
	}

	brandOpts := []brand.Option{brand.WithTimeout(callTimeout), brand.WithLogger(logger)}
	contentOpts := []content.Option{content.WithTimeout(callTimeout), content.WithLogger(logger)}

	return &Studio{
		analyzer: brand.NewAnalyzer(cfg.Client, brandOpts...),
		merger:   brand.NewMerger(cfg.Client, brandOpts...),
		captions: content.NewCaptionGenerator(cfg.Client, contentOpts...),
		visuals:  content.NewVisualAnalyzer(cfg.Client, cfg.Images, contentOpts...),
		composer: content.NewPromptComposer(cfg.Client, contentOpts...),
		images:   content.NewImageSynthesizer(cfg.Generator, content.WithTimeout(imageTimeout), content.WithLogger(logger)),
		tracker:  cfg.Tracker,
		logger:   logger,
		newRunID: newRunID,
	}
}

// AnalyzeBrand derives a brand profile from questionnaire answers.
func (s *Studio) AnalyzeBrand(ctx context.Context, q types.Questionnaire, companyID int64) outcome.Result[types.BrandProfile] {
	return s.analyzer.AnalyzeQuestionnaire(ctx, q, companyID)
}

// AnalyzeUploadedGuidelines derives a brand profile from the text of an
// uploaded guideline document.
func (s *Studio) AnalyzeUploadedGuidelines(ctx context.Context, text string) outcome.Result[types.BrandProfile] {
	return s.analyzer.AnalyzeDocument(ctx, text)
}

// MergeBrandProfiles reconciles a generated profile with an uploaded one.
// A nil or failed uploaded profile leaves generated untouched.
func (s *Studio) MergeBrandProfiles(ctx context.Context, generated outcome.Result[types.BrandProfile], uploaded *outcome.Result[types.BrandProfile]) outcome.Result[types.BrandProfile] {
	return s.merger.Merge(ctx, generated, uploaded)
}

// GenerateBrandGuidelines merges profile with the optional uploaded profile
// and renders the result.
func (s *Studio) GenerateBrandGuidelines(ctx context.Context, profile outcome.Result[types.BrandProfile], uploaded *outcome.Result[types.BrandProfile]) outcome.Result[types.GuidelineDocument] {
	return rendering.Render(s.merger.Merge(ctx, profile, uploaded))
}

// GeneratePostCaption writes a caption for topic on platform.
func (s *Studio) GeneratePostCaption(ctx context.Context, guidelines outcome.Result[types.GuidelineDocument], topic, platform string) outcome.Result[types.CaptionResult] {
	return s.captions.Generate(ctx, guidelines, topic, platform)
}

// AnalyzeImages describes the visual style of the referenced images.
func (s *Studio) AnalyzeImages(ctx context.Context, urls []string) outcome.Result[types.VisualAnalysis] {
	return s.visuals.Analyze(ctx, urls)
}

// GeneratePostImagePrompt composes the image-generation prompt for a post.
func (s *Studio) GeneratePostImagePrompt(
	ctx context.Context,
	guidelines outcome.Result[types.GuidelineDocument],
	caption outcome.Result[types.CaptionResult],
	visual outcome.Result[types.VisualAnalysis],
) outcome.Result[types.ImagePrompt] {
	return s.composer.Compose(ctx, guidelines, caption, visual)
}

// GenerateImage renders prompt at size and returns the stored image URL.
func (s *Studio) GenerateImage(ctx context.Context, prompt outcome.Result[types.ImagePrompt], size types.ImageSize) outcome.Result[string] {
	return s.images.Synthesize(ctx, prompt, size)
}
