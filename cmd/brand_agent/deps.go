package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jonathan/brand-studio/internal/config"
	"github.com/jonathan/brand-studio/internal/content"
	"github.com/jonathan/brand-studio/internal/fetch"
	"github.com/jonathan/brand-studio/internal/imagegen"
	"github.com/jonathan/brand-studio/internal/llm"
	"github.com/jonathan/brand-studio/internal/observability"
	"github.com/jonathan/brand-studio/internal/outcome"
	"github.com/jonathan/brand-studio/internal/pipeline"
	"github.com/jonathan/brand-studio/internal/runstate"
	"github.com/jonathan/brand-studio/internal/schemas"
	"github.com/jonathan/brand-studio/internal/storage"
)

// loadConfig resolves the config file, environment and defaults, then
// applies the global flags.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Resolve(configPath)
	if err != nil {
		return nil, err
	}
	if apiKeyFlag != "" {
		cfg.APIKey = apiKeyFlag
	}
	if verbose {
		cfg.Verbose = true
		cfg.LogLevel = "debug"
	}
	return cfg, nil
}

// newModelClient creates the Gemini client wrapped in the configured retry policy.
func newModelClient(ctx context.Context, cfg *config.Config, logger *slog.Logger) (llm.Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("API key is required (set GEMINI_API_KEY environment variable or use --api-key flag)")
	}

	llmCfg := llm.DefaultConfig()
	llmCfg.Retry.MaxAttempts = cfg.RetryMaxAttempts
	llmCfg.Retry.BaseDelay = time.Duration(cfg.RetryBaseDelay)

	client, err := llm.NewClient(ctx, llmCfg, cfg.APIKey, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}
	return client, nil
}

// newAssetStore returns Supabase storage when configured, otherwise a local
// directory served by the API under /media/.
func newAssetStore(cfg *config.Config, logger *slog.Logger) (storage.Store, error) {
	if cfg.SupabaseEnabled() {
		return storage.NewSupabaseStore(storage.SupabaseConfig{
			URL:        cfg.SupabaseURL,
			ServiceKey: cfg.SupabaseServiceKey,
			Bucket:     cfg.SupabaseBucket,
			AssetTable: storage.DefaultAssetTable,
		}, logger)
	}

	baseURL := strings.TrimRight(cfg.PublicBaseURL, "/")
	if baseURL == "" {
		baseURL = "http://localhost:" + cfg.Port
	}
	logger.Debug("using local media storage", "dir", cfg.MediaDir)
	return storage.NewLocalStore(cfg.MediaDir, baseURL+"/media"), nil
}

// newImageGenerator renders images with the Gemini image model and stores
// them in assets.
func newImageGenerator(ctx context.Context, cfg *config.Config, assets storage.Store, logger *slog.Logger) (content.ImageGenerator, error) {
	renderer, err := imagegen.NewGeminiRenderer(ctx, cfg.APIKey, cfg.ImageModel)
	if err != nil {
		return nil, err
	}
	return imagegen.NewGenerator(renderer, assets, imagegen.WithLogger(logger)), nil
}

// studioOptions selects the collaborators of a Studio.
type studioOptions struct {
	images    content.ImageSource
	generator content.ImageGenerator
	tracker   runstate.Tracker
}

func newStudio(client llm.Client, cfg *config.Config, logger *slog.Logger, opts studioOptions) *pipeline.Studio {
	return pipeline.New(pipeline.Config{
		Client:       client,
		Images:       opts.images,
		Generator:    opts.generator,
		Tracker:      opts.tracker,
		CallTimeout:  time.Duration(cfg.CallTimeout),
		ImageTimeout: time.Duration(cfg.ImageTimeout),
		Logger:       logger,
	})
}

// localImages reads reference images from disk and fetches everything that
// looks like a URL.
type localImages struct {
	remote content.ImageSource
}

func newLocalImages() localImages {
	return localImages{remote: fetch.NewImageFetcher(nil)}
}

func (l localImages) FetchImage(ctx context.Context, ref string) (llm.ImagePart, error) {
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return l.remote.FetchImage(ctx, ref)
	}
	data, err := os.ReadFile(ref)
	if err != nil {
		return llm.ImagePart{}, fmt.Errorf("failed to read image %s: %w", ref, err)
	}
	mimeType := mime.TypeByExtension(strings.ToLower(filepath.Ext(ref)))
	if mimeType == "" {
		mimeType = http.DetectContentType(data)
	}
	if !strings.HasPrefix(mimeType, "image/") {
		return llm.ImagePart{}, fmt.Errorf("%s is not an image (%s)", ref, mimeType)
	}
	return llm.ImagePart{MIMEType: mimeType, Data: data}, nil
}

func readJSONFile(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

// writeJSONFile writes v to path. An empty path writes nothing.
func writeJSONFile(path string, v any) error {
	if path == "" {
		return nil
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	fmt.Fprintf(os.Stderr, "Wrote %s\n", path)
	return nil
}

// writeValidatedJSON writes v to path and checks the file against the named
// embedded schema. An empty path writes nothing.
func writeValidatedJSON(path, schema string, v any) error {
	if path == "" {
		return nil
	}
	if err := writeJSONFile(path, v); err != nil {
		return err
	}
	if err := schemas.ValidateFile(schema, path); err != nil {
		var validationErr *schemas.ValidationError
		if errors.As(err, &validationErr) {
			return fmt.Errorf("generated JSON does not validate against schema: %w", err)
		}
		_, _ = fmt.Fprintf(os.Stderr, "Warning: Could not validate output against schema: %v\n", err)
	}
	return nil
}

// reportFailure prints f and returns it as the command error.
func reportFailure(f *outcome.Failure) error {
	observability.NewPrinter(os.Stderr).PrintFailure(f)
	return f
}
