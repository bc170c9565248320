// Package imagegen renders image prompts with an image model and stores the
// result, returning the public URL of the stored image.
package imagegen

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"google.golang.org/genai"

	"github.com/jonathan/brand-studio/internal/imaging"
	"github.com/jonathan/brand-studio/internal/storage"
	"github.com/jonathan/brand-studio/internal/types"
)

// DefaultModel is the Gemini image model used when none is configured.
const DefaultModel = "gemini-2.5-flash-image"

// DefaultPrefix is the object path prefix for generated images.
const DefaultPrefix = "generated"

// Image is raw model output.
type Image struct {
	Data     []byte
	MIMEType string
}

// Renderer turns a prompt into image bytes.
type Renderer interface {
	Render(ctx context.Context, prompt, aspectRatio string) (Image, error)
}

// GeminiRenderer renders prompts with a Gemini image model.
type GeminiRenderer struct {
	client *genai.Client
	model  string
}

// NewGeminiRenderer creates a GeminiRenderer using the Gemini API backend.
func NewGeminiRenderer(ctx context.Context, apiKey, model string) (*GeminiRenderer, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required for image generation")
	}
	if model == "" {
		model = DefaultModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	return &GeminiRenderer{client: client, model: model}, nil
}

// Render implements Renderer.
func (r *GeminiRenderer) Render(ctx context.Context, prompt, aspectRatio string) (Image, error) {
	content := &genai.Content{
		Parts: []*genai.Part{genai.NewPartFromText(prompt)},
	}

	result, err := r.client.Models.GenerateContent(ctx, r.model, []*genai.Content{content},
		&genai.GenerateContentConfig{
			ImageConfig: &genai.ImageConfig{AspectRatio: aspectRatio},
		},
	)
	if err != nil {
		return Image{}, fmt.Errorf("image model call failed: %w", err)
	}
	return firstImage(result)
}

func firstImage(result *genai.GenerateContentResponse) (Image, error) {
	if result == nil || len(result.Candidates) == 0 {
		return Image{}, fmt.Errorf("no candidates in response")
	}
	for _, candidate := range result.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part != nil && part.InlineData != nil && len(part.InlineData.Data) > 0 {
				return Image{Data: part.InlineData.Data, MIMEType: part.InlineData.MIMEType}, nil
			}
		}
	}
	return Image{}, fmt.Errorf("no image data in response")
}

// Encoder converts rendered bytes into the stored format.
type Encoder func(data []byte) ([]byte, string, error)

// WebPEncoder stores images as lossy WebP.
func WebPEncoder(quality float32) Encoder {
	return func(data []byte) ([]byte, string, error) {
		out, err := imaging.ToWebP(data, quality)
		if err != nil {
			return nil, "", err
		}
		return out, imaging.WebPContentType, nil
	}
}

// Generator renders, encodes and stores images.
type Generator struct {
	renderer Renderer
	store    storage.Store
	encode   Encoder
	prefix   string
	logger   *slog.Logger
	now      func() time.Time
}

// Option configures a Generator.
type Option func(*Generator)

// WithEncoder replaces the default WebP encoder.
func WithEncoder(e Encoder) Option {
	return func(g *Generator) { g.encode = e }
}

// WithPrefix sets the object path prefix.
func WithPrefix(prefix string) Option {
	return func(g *Generator) { g.prefix = prefix }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(g *Generator) { g.logger = l }
}

// NewGenerator creates a Generator.
func NewGenerator(renderer Renderer, store storage.Store, opts ...Option) *Generator {
	g := &Generator{
		renderer: renderer,
		store:    store,
		encode:   WebPEncoder(imaging.DefaultQuality),
		prefix:   DefaultPrefix,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate renders prompt at size and returns the stored image URL.
func (g *Generator) Generate(ctx context.Context, prompt string, size types.ImageSize) (string, error) {
	start := time.Now()
	img, err := g.renderer.Render(ctx, prompt, size.AspectRatio())
	if err != nil {
		return "", err
	}

	data, contentType := img.Data, img.MIMEType
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	if g.encode != nil {
		encoded, encodedType, err := g.encode(data)
		if err != nil {
			g.logger.Warn("image encoding failed, storing original", "error", err, "content_type", contentType)
		} else {
			data, contentType = encoded, encodedType
		}
	}

	objectPath := storage.ObjectPath(g.prefix, storage.ExtensionFor(contentType), g.now())
	obj, err := g.store.Upload(ctx, objectPath, data, contentType)
	if err != nil {
		return "", fmt.Errorf("failed to store generated image: %w", err)
	}

	g.logger.Info("image generated", "size", string(size), "bytes", obj.Size, "path", obj.Path, "elapsed", time.Since(start))
	return obj.URL, nil
}
