// Package brand synthesizes brand profiles from questionnaires and documents
// and reconciles generated profiles with profiles extracted from official guidelines.
package brand

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"time"

	"github.com/jonathan/brand-studio/internal/llm"
	"github.com/jonathan/brand-studio/internal/outcome"
	"github.com/jonathan/brand-studio/internal/prompts"
	"github.com/jonathan/brand-studio/internal/schemas"
	"github.com/jonathan/brand-studio/internal/structured"
	"github.com/jonathan/brand-studio/internal/types"
)

// Source is input the analyzer can derive a profile from:
// a QuestionnaireSource or a DocumentText.
type Source interface {
	prompt() (string, *outcome.Failure)
	kind() string
}

// QuestionnaireSource is a questionnaire together with the company it belongs to.
type QuestionnaireSource struct {
	Questionnaire types.Questionnaire
	CompanyID     int64
}

func (s QuestionnaireSource) kind() string { return "questionnaire" }

func (s QuestionnaireSource) prompt() (string, *outcome.Failure) {
	q := s.Questionnaire.Normalize(s.CompanyID)
	if err := q.Validate(); err != nil {
		return "", outcome.Wrap(outcome.SchemaViolation, "questionnaire is missing a brand description", err)
	}
	data, err := json.MarshalIndent(q, "", "  ")
	if err != nil {
		return "", outcome.Wrap(outcome.SchemaViolation, "questionnaire could not be encoded", err)
	}
	return prompts.Render(prompts.BrandFile, "analyze-questionnaire", map[string]string{
		"Questionnaire": string(data),
	}), nil
}

// DocumentText is text extracted from an uploaded guideline document.
// Empty text is analyzed as-is.
type DocumentText string

func (d DocumentText) kind() string { return "document" }

func (d DocumentText) prompt() (string, *outcome.Failure) {
	return prompts.Render(prompts.BrandFile, "analyze-document", map[string]string{
		"Document": string(d),
	}), nil
}

// Analyzer turns a Source into a BrandProfile with one generative call.
type Analyzer struct {
	client  llm.Client
	timeout time.Duration
	logger  *slog.Logger
}

// Option configures an Analyzer or Merger.
type Option func(*options)

type options struct {
	timeout time.Duration
	logger  *slog.Logger
}

// WithTimeout bounds each model call.
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

func buildOptions(opts []Option) options {
	o := options{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// NewAnalyzer creates an Analyzer backed by client.
func NewAnalyzer(client llm.Client, opts ...Option) *Analyzer {
	o := buildOptions(opts)
	return &Analyzer{client: client, timeout: o.timeout, logger: o.logger}
}

// Analyze derives a complete BrandProfile from source.
func (a *Analyzer) Analyze(ctx context.Context, source Source) outcome.Result[types.BrandProfile] {
	userPrompt, failure := source.prompt()
	if failure != nil {
		return outcome.Fail[types.BrandProfile](failure)
	}

	system := prompts.MustGet(prompts.BrandFile, "analyze-system")
	schema := llm.BrandProfileSchema(system)

	start := time.Now()
	result := structured.Generate[types.BrandProfile](ctx, a.client, structured.Request{
		Op:         "analyze " + source.kind(),
		Prompt:     llm.BuildExtractionPrompt(schema, userPrompt),
		Schema:     &schema,
		SchemaName: schemas.BrandProfile,
		Tier:       llm.TierStandard,
		Timeout:    a.timeout,
	})

	logResult(a.logger, "brand analysis", source.kind(), start, result.Failure())
	return result
}

// AnalyzeQuestionnaire is shorthand for Analyze with a QuestionnaireSource.
func (a *Analyzer) AnalyzeQuestionnaire(ctx context.Context, q types.Questionnaire, companyID int64) outcome.Result[types.BrandProfile] {
	return a.Analyze(ctx, QuestionnaireSource{Questionnaire: q, CompanyID: companyID})
}

// AnalyzeDocument is shorthand for Analyze with DocumentText.
func (a *Analyzer) AnalyzeDocument(ctx context.Context, text string) outcome.Result[types.BrandProfile] {
	return a.Analyze(ctx, DocumentText(text))
}

func logResult(logger *slog.Logger, step, source string, start time.Time, f *outcome.Failure) {
	if f != nil {
		logger.Warn(step+" failed", "source", source, "kind", f.Kind, "error", f.Error(), "elapsed", time.Since(start))
		return
	}
	logger.Info(step+" complete", "source", source, "elapsed", time.Since(start))
}
