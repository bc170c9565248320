package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/brand-studio/internal/outcome"
	"github.com/jonathan/brand-studio/internal/pipeline/steps"
	"github.com/jonathan/brand-studio/internal/rendering"
	"github.com/jonathan/brand-studio/internal/runstate"
	"github.com/jonathan/brand-studio/internal/types"
)

// ProgressEvent represents a progress update during a run.
type ProgressEvent struct {
	Step     string `json:"step"`
	Category string `json:"category"`
	Status   string `json:"status"`
	Message  string `json:"message"`
	RunID    string `json:"run_id,omitempty"`
	Content  any    `json:"content,omitempty"`
}

// ProgressCallback is called when run progress occurs. It may be called
// from more than one goroutine.
type ProgressCallback func(event ProgressEvent)

// BrandRequest is the input of a brand run.
type BrandRequest struct {
	CompanyID     int64
	Questionnaire types.Questionnaire
	// Document is the text of an uploaded guideline document. When set it is
	// analyzed and merged into the generated profile. An empty string is
	// still analyzed.
	Document *string
	// Uploaded is a profile previously extracted from uploaded guidelines.
	// It is used instead of Document when both are set.
	Uploaded   *types.BrandProfile
	OnProgress ProgressCallback
}

// BrandRun is the result of a successful brand run.
type BrandRun struct {
	RunID      string                  `json:"run_id"`
	Profile    types.BrandProfile      `json:"profile"`
	Uploaded   *types.BrandProfile     `json:"uploaded,omitempty"`
	Merged     bool                    `json:"merged"`
	Guidelines types.GuidelineDocument `json:"guidelines"`
}

// ContentRequest is the input of a content run.
type ContentRequest struct {
	CompanyID          int64
	Guidelines         types.GuidelineDocument
	Topic              string
	Platform           string
	ReferenceImageURLs []string
	Size               types.ImageSize
	OnProgress         ProgressCallback
}

// ContentRun is the result of a successful content run.
type ContentRun struct {
	RunID    string               `json:"run_id"`
	Caption  types.CaptionResult  `json:"caption"`
	Visual   types.VisualAnalysis `json:"visual_analysis"`
	Prompt   types.ImagePrompt    `json:"image_prompt"`
	ImageURL string               `json:"image_url"`
}

func newRunID() string {
	return uuid.New().String()
}

// RunBrand analyzes the questionnaire, merges an uploaded profile when one
// is available, and renders the guidelines. The first Failure ends the run.
func (s *Studio) RunBrand(ctx context.Context, req BrandRequest) outcome.Result[BrandRun] {
	rec := s.startRun(ctx, runstate.KindBrand, req.CompanyID, req.OnProgress)

	generated := stage(ctx, rec, steps.AnalyzeProfile, func() outcome.Result[types.BrandProfile] {
		return s.AnalyzeBrand(ctx, req.Questionnaire, req.CompanyID)
	})
	if generated.Failed() {
		return finish[BrandRun](ctx, rec, generated.Failure())
	}

	uploaded := s.uploadedProfile(ctx, rec, req)

	var merged outcome.Result[types.BrandProfile]
	if uploaded == nil || uploaded.Failed() {
		rec.skip(ctx, steps.MergeProfiles)
		merged = generated
	} else {
		merged = stage(ctx, rec, steps.MergeProfiles, func() outcome.Result[types.BrandProfile] {
			return s.MergeBrandProfiles(ctx, generated, uploaded)
		})
	}

	guidelines := stage(ctx, rec, steps.RenderGuidelines, func() outcome.Result[types.GuidelineDocument] {
		return rendering.Render(merged)
	})
	doc, failure := guidelines.Value()
	if failure != nil {
		return finish[BrandRun](ctx, rec, failure)
	}

	profile, _ := merged.Value()
	run := BrandRun{
		RunID:      rec.runID,
		Profile:    profile,
		Merged:     uploaded != nil && !uploaded.Failed(),
		Guidelines: doc,
	}
	if run.Merged {
		up, _ := uploaded.Value()
		run.Uploaded = &up
	}
	rec.done(ctx, nil)
	return outcome.Ok(run)
}

// uploadedProfile returns the profile to merge, or nil when the request
// carries none. A failed document analysis is returned as a Failure; it
// skips the merge but does not end the run.
func (s *Studio) uploadedProfile(ctx context.Context, rec *recorder, req BrandRequest) *outcome.Result[types.BrandProfile] {
	switch {
	case req.Uploaded != nil:
		rec.skip(ctx, steps.AnalyzeUploaded)
		r := outcome.Ok(*req.Uploaded)
		return &r
	case req.Document != nil:
		r := stage(ctx, rec, steps.AnalyzeUploaded, func() outcome.Result[types.BrandProfile] {
			return s.AnalyzeUploadedGuidelines(ctx, *req.Document)
		})
		return &r
	default:
		rec.skip(ctx, steps.AnalyzeUploaded)
		return nil
	}
}

// RunContent generates a caption and a visual analysis concurrently, then
// composes an image prompt and synthesizes the image. When both branches
// fail the caption's Failure is reported.
func (s *Studio) RunContent(ctx context.Context, req ContentRequest) outcome.Result[ContentRun] {
	rec := s.startRun(ctx, runstate.KindContent, req.CompanyID, req.OnProgress)
	guidelines := outcome.Ok(req.Guidelines)

	var (
		caption outcome.Result[types.CaptionResult]
		visual  outcome.Result[types.VisualAnalysis]
	)
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		caption = stage(gCtx, rec, steps.GenerateCaption, func() outcome.Result[types.CaptionResult] {
			return s.GeneratePostCaption(gCtx, guidelines, req.Topic, req.Platform)
		})
		return nil
	})
	g.Go(func() error {
		visual = stage(gCtx, rec, steps.AnalyzeImages, func() outcome.Result[types.VisualAnalysis] {
			return s.AnalyzeImages(gCtx, req.ReferenceImageURLs)
		})
		return nil
	})
	_ = g.Wait()

	if caption.Failed() {
		return finish[ContentRun](ctx, rec, caption.Failure())
	}
	if visual.Failed() {
		return finish[ContentRun](ctx, rec, visual.Failure())
	}

	prompt := stage(ctx, rec, steps.ComposePrompt, func() outcome.Result[types.ImagePrompt] {
		return s.GeneratePostImagePrompt(ctx, guidelines, caption, visual)
	})
	if prompt.Failed() {
		return finish[ContentRun](ctx, rec, prompt.Failure())
	}

	image := stage(ctx, rec, steps.GenerateImage, func() outcome.Result[string] {
		return s.GenerateImage(ctx, prompt, req.Size)
	})
	url, failure := image.Value()
	if failure != nil {
		return finish[ContentRun](ctx, rec, failure)
	}

	run := ContentRun{RunID: rec.runID, ImageURL: url}
	run.Caption, _ = caption.Value()
	run.Visual, _ = visual.Value()
	run.Prompt, _ = prompt.Value()
	rec.done(ctx, nil)
	return outcome.Ok(run)
}

// stage runs fn as step, recording its start and outcome.
func stage[T any](ctx context.Context, rec *recorder, step string, fn func() outcome.Result[T]) outcome.Result[T] {
	rec.begin(ctx, step)
	start := time.Now()
	result := fn()
	value, failure := result.Value()
	rec.end(ctx, step, start, failure, value)
	return result
}

func finish[T any](ctx context.Context, rec *recorder, f *outcome.Failure) outcome.Result[T] {
	rec.done(ctx, f)
	return outcome.Fail[T](f)
}
