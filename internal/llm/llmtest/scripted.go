// Package llmtest provides a scripted llm.Client for tests.
package llmtest

import (
	"context"
	"sync"

	"github.com/jonathan/brand-studio/internal/llm"
)

// Reply is one scripted answer.
type Reply struct {
	Text string
	Err  error
}

// Call records one request made to the client.
type Call struct {
	Method string
	Prompt string
	Schema *llm.ExtractionSchema
	Images int
	Tier   llm.ModelTier
}

// Client answers calls from a queue of replies. When the queue is exhausted
// the last reply is repeated. A Handler, when set, takes precedence.
type Client struct {
	mu      sync.Mutex
	replies []Reply
	calls   []Call
	Handler func(ctx context.Context, call Call) (string, error)
}

// New returns a client that answers with the given replies in order.
func New(replies ...Reply) *Client {
	return &Client{replies: replies}
}

// JSON is shorthand for a successful reply.
func JSON(text string) Reply {
	return Reply{Text: text}
}

// Fail is shorthand for a failed reply.
func Fail(err error) Reply {
	return Reply{Err: err}
}

func (c *Client) answer(ctx context.Context, call Call) (string, error) {
	c.mu.Lock()
	c.calls = append(c.calls, call)
	handler := c.Handler
	var reply Reply
	if handler == nil && len(c.replies) > 0 {
		reply = c.replies[0]
		if len(c.replies) > 1 {
			c.replies = c.replies[1:]
		}
	}
	c.mu.Unlock()

	if handler != nil {
		return handler(ctx, call)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return reply.Text, reply.Err
}

func (c *Client) GenerateContent(ctx context.Context, prompt string, tier llm.ModelTier) (string, error) {
	return c.answer(ctx, Call{Method: "GenerateContent", Prompt: prompt, Tier: tier})
}

func (c *Client) GenerateJSON(ctx context.Context, prompt string, schema *llm.ExtractionSchema, tier llm.ModelTier) (string, error) {
	return c.answer(ctx, Call{Method: "GenerateJSON", Prompt: prompt, Schema: schema, Tier: tier})
}

func (c *Client) GenerateVision(ctx context.Context, prompt string, images []llm.ImagePart, tier llm.ModelTier) (string, error) {
	return c.answer(ctx, Call{Method: "GenerateVision", Prompt: prompt, Images: len(images), Tier: tier})
}

func (c *Client) GetModel(tier llm.ModelTier) string {
	return "scripted-" + string(tier)
}

func (c *Client) Close() error { return nil }

// Calls returns a copy of the recorded calls.
func (c *Client) Calls() []Call {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Call, len(c.calls))
	copy(out, c.calls)
	return out
}

// CallCount returns the number of recorded calls.
func (c *Client) CallCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.calls)
}
