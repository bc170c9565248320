package llm

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	gax "github.com/googleapis/gax-go/v2"
	"google.golang.org/api/googleapi"
)

// RetryClient wraps a Client and retries calls that failed with a transient
// transport error. Content problems (bad JSON, empty answers) surface as
// successful calls and are never retried here.
type RetryClient struct {
	next   Client
	policy RetryPolicy
	logger *slog.Logger
	sleep  func(ctx context.Context, d time.Duration) error
}

// NewRetryClient wraps next. A nil logger discards retry logs.
func NewRetryClient(next Client, policy RetryPolicy, logger *slog.Logger) *RetryClient {
	if policy.MaxAttempts < 1 {
		policy.MaxAttempts = 1
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &RetryClient{next: next, policy: policy, logger: logger, sleep: gax.Sleep}
}

func (r *RetryClient) GenerateContent(ctx context.Context, prompt string, tier ModelTier) (string, error) {
	return r.do(ctx, "generate_content", func(ctx context.Context) (string, error) {
		return r.next.GenerateContent(ctx, prompt, tier)
	})
}

func (r *RetryClient) GenerateJSON(ctx context.Context, prompt string, schema *ExtractionSchema, tier ModelTier) (string, error) {
	return r.do(ctx, "generate_json", func(ctx context.Context) (string, error) {
		return r.next.GenerateJSON(ctx, prompt, schema, tier)
	})
}

func (r *RetryClient) GenerateVision(ctx context.Context, prompt string, images []ImagePart, tier ModelTier) (string, error) {
	return r.do(ctx, "generate_vision", func(ctx context.Context) (string, error) {
		return r.next.GenerateVision(ctx, prompt, images, tier)
	})
}

func (r *RetryClient) GetModel(tier ModelTier) string {
	return r.next.GetModel(tier)
}

func (r *RetryClient) Close() error {
	return r.next.Close()
}

func (r *RetryClient) do(ctx context.Context, op string, call func(context.Context) (string, error)) (string, error) {
	bo := r.policy.backoff()
	var lastErr error
	for attempt := 1; attempt <= r.policy.MaxAttempts; attempt++ {
		out, err := call(ctx)
		if err == nil {
			return out, nil
		}
		lastErr = err

		if !IsTransient(err) || attempt == r.policy.MaxAttempts || ctx.Err() != nil {
			break
		}

		delay := bo.Pause()
		r.logger.Warn("transient model error, retrying",
			"op", op, "attempt", attempt, "max_attempts", r.policy.MaxAttempts,
			"delay", delay, "error", err)

		if err := r.sleep(ctx, delay); err != nil {
			return "", errors.Join(lastErr, err)
		}
	}
	return "", lastErr
}

// backoff returns a fresh exponential backoff for one call: randomized pauses
// up to BaseDelay, doubling each retry and capped at MaxDelay.
func (p RetryPolicy) backoff() *gax.Backoff {
	return &gax.Backoff{
		Initial:    p.BaseDelay,
		Max:        p.MaxDelay,
		Multiplier: 2,
	}
}

// IsTransient reports whether err looks like a retryable transport failure:
// rate limiting, 5xx responses, network errors and truncated bodies.
// Cancellation and deadline expiry are never transient.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return retryableStatus(gerr.Code)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, marker := range []string{"429", "rate limit", "resource_exhausted", "unavailable", "503", "connection reset"} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

func retryableStatus(code int) bool {
	switch code {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}
