// Package structured runs one generative call whose answer must decode into a
// typed contract, turning every way that can go wrong into a tagged Failure.
package structured

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jonathan/brand-studio/internal/llm"
	"github.com/jonathan/brand-studio/internal/outcome"
	"github.com/jonathan/brand-studio/internal/schemas"
)

// Request describes one structured generation.
type Request struct {
	// Op names the operation in failure messages, e.g. "analyze brand".
	Op     string
	Prompt string
	// Schema, when set, is enforced by the provider's structured-output mode.
	Schema *llm.ExtractionSchema
	// SchemaName names the embedded JSON Schema the raw answer must satisfy.
	SchemaName string
	Tier       llm.ModelTier
	Images     []llm.ImagePart
	// Timeout bounds the call, including any transport retries. Zero means no bound.
	Timeout time.Duration
}

type validatable interface {
	Validate() error
}

// Generate performs the call and decodes the answer into T.
//
// Transport errors, timeouts and cancellation become GenerationError.
// Answers that are not valid JSON, violate the JSON Schema, or fail T's own
// Validate method become SchemaViolation.
func Generate[T any](ctx context.Context, client llm.Client, req Request) outcome.Result[T] {
	raw, failure := call(ctx, client, req)
	if failure != nil {
		return outcome.Fail[T](failure)
	}
	return Decode[T](req.Op, req.SchemaName, raw)
}

// Decode validates and decodes a raw JSON answer into T.
func Decode[T any](op, schemaName, raw string) outcome.Result[T] {
	if schemaName != "" {
		if err := schemas.Validate(schemaName, raw); err != nil {
			return outcome.Fail[T](outcome.Wrap(outcome.SchemaViolation,
				fmt.Sprintf("%s: answer does not match %s", op, schemaName), err))
		}
	}

	var value T
	if err := json.Unmarshal([]byte(raw), &value); err != nil {
		return outcome.Fail[T](outcome.Wrap(outcome.SchemaViolation,
			fmt.Sprintf("%s: answer is not valid JSON", op), err))
	}

	if v, ok := any(&value).(validatable); ok {
		if err := v.Validate(); err != nil {
			return outcome.Fail[T](outcome.Wrap(outcome.SchemaViolation,
				fmt.Sprintf("%s: answer failed validation", op), err))
		}
	}

	return outcome.Ok(value)
}

func call(ctx context.Context, client llm.Client, req Request) (string, *outcome.Failure) {
	if client == nil {
		return "", outcome.Newf(outcome.GenerationError, "%s: no model client configured", req.Op)
	}

	callCtx := ctx
	if req.Timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	var (
		raw string
		err error
	)
	if len(req.Images) > 0 {
		raw, err = client.GenerateVision(callCtx, req.Prompt, req.Images, req.Tier)
	} else {
		raw, err = client.GenerateJSON(callCtx, req.Prompt, req.Schema, req.Tier)
	}
	if err != nil {
		return "", CallFailure(ctx, outcome.GenerationError, req.Op, req.Timeout, err)
	}
	return raw, nil
}

// CallFailure classifies an external call error as a Failure of kind,
// distinguishing timeouts and caller cancellation in the message.
func CallFailure(parent context.Context, kind outcome.Kind, op string, timeout time.Duration, err error) *outcome.Failure {
	switch {
	case parent.Err() != nil:
		return outcome.Wrap(kind, fmt.Sprintf("%s: request cancelled", op), err)
	case errors.Is(err, context.DeadlineExceeded):
		return outcome.Wrap(kind, fmt.Sprintf("%s: timed out after %s", op, timeout), err)
	default:
		return outcome.Wrap(kind, fmt.Sprintf("%s: model call failed", op), err)
	}
}
