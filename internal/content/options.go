// Package content runs the social post stages: caption writing, visual
// analysis of reference images, image prompt composition and image synthesis.
// Every stage takes and returns outcome.Result values and does nothing when
// one of its inputs has already failed.
package content

import (
	"io"
	"log/slog"
	"time"

	"github.com/jonathan/brand-studio/internal/outcome"
)

// Option configures a stage.
type Option func(*options)

type options struct {
	timeout time.Duration
	logger  *slog.Logger
}

// WithTimeout bounds each external call made by the stage.
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

func logResult(logger *slog.Logger, step string, start time.Time, f *outcome.Failure, attrs ...any) {
	if f != nil {
		logger.Warn(step+" failed", append(attrs, "kind", f.Kind, "error", f.Error(), "elapsed", time.Since(start))...)
		return
	}
	logger.Info(step+" complete", append(attrs, "elapsed", time.Since(start))...)
}
