package brand

import (
	"context"
	"encoding/json"
	"log/slog"
	"slices"
	"time"

	"github.com/jonathan/brand-studio/internal/llm"
	"github.com/jonathan/brand-studio/internal/outcome"
	"github.com/jonathan/brand-studio/internal/prompts"
	"github.com/jonathan/brand-studio/internal/schemas"
	"github.com/jonathan/brand-studio/internal/structured"
	"github.com/jonathan/brand-studio/internal/types"
)

// Merger reconciles a generated profile with one extracted from uploaded guidelines.
type Merger struct {
	client  llm.Client
	timeout time.Duration
	logger  *slog.Logger
}

// NewMerger creates a Merger backed by client.
func NewMerger(client llm.Client, opts ...Option) *Merger {
	o := buildOptions(opts)
	return &Merger{client: client, timeout: o.timeout, logger: o.logger}
}

// Merge combines generated and uploaded into one profile. The uploaded
// palette and typography take precedence; the generated profile fills gaps.
//
// uploaded may be nil when no document was supplied. When it is nil or a
// Failure, generated is returned unchanged and no model call is made. A
// Failure in generated is forwarded as-is.
func (m *Merger) Merge(ctx context.Context, generated outcome.Result[types.BrandProfile], uploaded *outcome.Result[types.BrandProfile]) outcome.Result[types.BrandProfile] {
	gen, failure := generated.Value()
	if failure != nil {
		return generated
	}
	if uploaded == nil {
		return generated
	}
	up, upFailure := uploaded.Value()
	if upFailure != nil {
		m.logger.Info("skipping merge, uploaded analysis failed", "kind", upFailure.Kind)
		return generated
	}

	genJSON, err := json.MarshalIndent(gen, "", "  ")
	if err != nil {
		return outcome.Fail[types.BrandProfile](outcome.Wrap(outcome.SchemaViolation, "merge: generated profile could not be encoded", err))
	}
	upJSON, err := json.MarshalIndent(up, "", "  ")
	if err != nil {
		return outcome.Fail[types.BrandProfile](outcome.Wrap(outcome.SchemaViolation, "merge: uploaded profile could not be encoded", err))
	}

	system := prompts.MustGet(prompts.BrandFile, "merge-system")
	schema := llm.BrandProfileSchema(system)
	userPrompt := prompts.Render(prompts.BrandFile, "merge-profiles", map[string]string{
		"Generated": string(genJSON),
		"Uploaded":  string(upJSON),
	})

	start := time.Now()
	merged := structured.Generate[types.BrandProfile](ctx, m.client, structured.Request{
		Op:         "merge profiles",
		Prompt:     llm.BuildExtractionPrompt(schema, userPrompt),
		Schema:     &schema,
		SchemaName: schemas.BrandProfile,
		Tier:       llm.TierStandard,
		Timeout:    m.timeout,
	})
	logResult(m.logger, "profile merge", "generated+uploaded", start, merged.Failure())

	profile, failure := merged.Value()
	if failure != nil {
		return merged
	}
	return outcome.Ok(m.applyPrecedence(profile, up))
}

// applyPrecedence forces the uploaded palette and typography onto merged
// wherever the uploaded profile actually states them.
func (m *Merger) applyPrecedence(merged, uploaded types.BrandProfile) types.BrandProfile {
	if uploaded.HasCompletePalette() && !slices.Equal(merged.ColorPalette, uploaded.ColorPalette) {
		m.logger.Warn("merge answer changed the uploaded palette, restoring it",
			"merged", merged.ColorPalette, "uploaded", uploaded.ColorPalette)
		merged.ColorPalette = slices.Clone(uploaded.ColorPalette)
	}
	if t := uploaded.TypographyName(); t != "" && merged.TypographyName() != t {
		m.logger.Warn("merge answer changed the uploaded typography, restoring it",
			"merged", merged.TypographyName(), "uploaded", t)
		merged.Typography = &t
	}
	if merged.IndustryName() == "" && uploaded.IndustryName() != "" {
		ind := uploaded.IndustryName()
		merged.Industry = &ind
	}
	return merged
}
