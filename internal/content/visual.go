package content

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jonathan/brand-studio/internal/llm"
	"github.com/jonathan/brand-studio/internal/outcome"
	"github.com/jonathan/brand-studio/internal/prompts"
	"github.com/jonathan/brand-studio/internal/schemas"
	"github.com/jonathan/brand-studio/internal/structured"
	"github.com/jonathan/brand-studio/internal/types"
)

// maxParallelFetches bounds concurrent reference image downloads.
const maxParallelFetches = 4

// ImageSource loads a reference image by URL.
type ImageSource interface {
	FetchImage(ctx context.Context, url string) (llm.ImagePart, error)
}

// VisualAnalyzer describes the visual style of reference images.
type VisualAnalyzer struct {
	client llm.Client
	images ImageSource
	opts   options
}

// NewVisualAnalyzer creates a VisualAnalyzer. images downloads the
// references before they are sent to the vision model.
func NewVisualAnalyzer(client llm.Client, images ImageSource, opts ...Option) *VisualAnalyzer {
	return &VisualAnalyzer{client: client, images: images, opts: buildOptions(opts)}
}

// Analyze sends every reference image with the fixed analysis instruction in
// a single vision call. With no references the vision model is not called.
func (a *VisualAnalyzer) Analyze(ctx context.Context, urls []string) outcome.Result[types.VisualAnalysis] {
	refs := make([]string, 0, len(urls))
	for _, u := range urls {
		if u = strings.TrimSpace(u); u != "" {
			refs = append(refs, u)
		}
	}
	if len(refs) == 0 {
		return outcome.Fail[types.VisualAnalysis](outcome.Newf(outcome.SchemaViolation, "no image references"))
	}

	start := time.Now()
	images, failure := a.fetchAll(ctx, refs)
	if failure != nil {
		logResult(a.opts.logger, "visual analysis", start, failure, "images", len(refs))
		return outcome.Fail[types.VisualAnalysis](failure)
	}

	result := structured.Generate[types.VisualAnalysis](ctx, a.client, structured.Request{
		Op:         "analyze images",
		Prompt:     prompts.MustGet(prompts.ContentFile, "image-analysis"),
		SchemaName: schemas.VisualAnalysis,
		Tier:       llm.TierVision,
		Images:     images,
		Timeout:    a.opts.timeout,
	})

	logResult(a.opts.logger, "visual analysis", start, result.Failure(), "images", len(refs))
	return result
}

func (a *VisualAnalyzer) fetchAll(ctx context.Context, urls []string) ([]llm.ImagePart, *outcome.Failure) {
	if a.images == nil {
		return nil, outcome.Newf(outcome.GenerationError, "analyze images: no image source configured")
	}

	fetchCtx := ctx
	if a.opts.timeout > 0 {
		var cancel context.CancelFunc
		fetchCtx, cancel = context.WithTimeout(ctx, a.opts.timeout)
		defer cancel()
	}

	images := make([]llm.ImagePart, len(urls))
	g, gctx := errgroup.WithContext(fetchCtx)
	g.SetLimit(maxParallelFetches)
	for i, u := range urls {
		g.Go(func() error {
			img, err := a.images.FetchImage(gctx, u)
			if err != nil {
				return fmt.Errorf("reference %d (%s): %w", i+1, u, err)
			}
			images[i] = img
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		if ctx.Err() != nil {
			return nil, structured.CallFailure(ctx, outcome.GenerationError, "analyze images", a.opts.timeout, err)
		}
		return nil, outcome.Wrap(outcome.GenerationError, "analyze images: could not fetch reference image", err)
	}
	return images, nil
}
