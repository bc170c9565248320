// Package config provides configuration loading and validation for the server and CLI.
package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Defaults applied by MergeWithDefaults(Default()).
const (
	DefaultPort             = "8080"
	DefaultCallTimeout      = 60 * time.Second
	DefaultImageTimeout     = 120 * time.Second
	DefaultRetryMaxAttempts = 3
	DefaultRetryBaseDelay   = 500 * time.Millisecond
	DefaultSupabaseBucket   = "brand-assets"
	DefaultMediaDir         = "media"
	DefaultLogLevel         = "info"
)

// Duration is a time.Duration that reads from JSON as "90s" or as a number of seconds.
type Duration time.Duration

// UnmarshalJSON implements json.Unmarshaler.
func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		parsed, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", s, err)
		}
		*d = Duration(parsed)
		return nil
	}
	var secs float64
	if err := json.Unmarshal(data, &secs); err != nil {
		return fmt.Errorf("invalid duration %s", data)
	}
	*d = Duration(secs * float64(time.Second))
	return nil
}

// MarshalJSON implements json.Marshaler.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// Config represents the configuration that can be loaded from a JSON file
// and the environment. All fields are optional; missing values use defaults.
type Config struct {
	// Services
	APIKey             string `json:"api_key,omitempty"`              // Gemini API key
	DatabaseURL        string `json:"database_url,omitempty"`         // PostgreSQL connection URL
	RedisURL           string `json:"redis_url,omitempty"`            // Redis URL for run tracking
	SupabaseURL        string `json:"supabase_url,omitempty"`         // Supabase project URL
	SupabaseServiceKey string `json:"supabase_service_key,omitempty"` // Supabase service role key
	SupabaseBucket     string `json:"supabase_bucket,omitempty"`      // Storage bucket for images and documents
	ImageModel         string `json:"image_model,omitempty"`          // Image generation model

	// Limits
	CallTimeout      Duration `json:"call_timeout,omitempty"`       // Per model call
	ImageTimeout     Duration `json:"image_timeout,omitempty"`      // Per image generation
	RetryMaxAttempts int      `json:"retry_max_attempts,omitempty"` // Attempts per transient failure
	RetryBaseDelay   Duration `json:"retry_base_delay,omitempty"`   // First backoff delay

	// Server
	Port                     string   `json:"port,omitempty"`
	CORSOrigins              []string `json:"cors_origins,omitempty"`
	MediaDir                 string   `json:"media_dir,omitempty"`                   // Local image storage when Supabase is not configured
	PublicBaseURL            string   `json:"public_base_url,omitempty"`             // Base URL local media is served under
	DefaultReferenceImageURL string   `json:"default_reference_image_url,omitempty"` // Used when a post has no reference images

	// Behavior
	LogLevel   string `json:"log_level,omitempty"`   // debug, info, warn, error
	UseBrowser bool   `json:"use_browser,omitempty"` // Use headless browser for JS-heavy guideline pages
	Verbose    bool   `json:"verbose,omitempty"`     // Print detailed debug information
}

// Default returns the built-in defaults.
func Default() Config {
	return Config{
		SupabaseBucket:   DefaultSupabaseBucket,
		CallTimeout:      Duration(DefaultCallTimeout),
		ImageTimeout:     Duration(DefaultImageTimeout),
		RetryMaxAttempts: DefaultRetryMaxAttempts,
		RetryBaseDelay:   Duration(DefaultRetryBaseDelay),
		Port:             DefaultPort,
		MediaDir:         DefaultMediaDir,
		LogLevel:         DefaultLogLevel,
	}
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// FromEnv reads configuration from environment variables. Malformed numeric
// and duration values are ignored.
func FromEnv() Config {
	cfg := Config{
		APIKey:                   os.Getenv("GEMINI_API_KEY"),
		DatabaseURL:              os.Getenv("DATABASE_URL"),
		RedisURL:                 os.Getenv("REDIS_URL"),
		SupabaseURL:              os.Getenv("SUPABASE_URL"),
		SupabaseServiceKey:       os.Getenv("SUPABASE_SERVICE_KEY"),
		SupabaseBucket:           os.Getenv("SUPABASE_BUCKET"),
		ImageModel:               os.Getenv("IMAGE_MODEL"),
		Port:                     os.Getenv("PORT"),
		MediaDir:                 os.Getenv("MEDIA_DIR"),
		PublicBaseURL:            os.Getenv("PUBLIC_BASE_URL"),
		DefaultReferenceImageURL: os.Getenv("DEFAULT_REFERENCE_IMAGE_URL"),
		LogLevel:                 os.Getenv("LOG_LEVEL"),
		CORSOrigins:              splitList(os.Getenv("CORS_ORIGINS")),
	}
	cfg.CallTimeout = envDuration("CALL_TIMEOUT")
	cfg.ImageTimeout = envDuration("IMAGE_TIMEOUT")
	cfg.RetryBaseDelay = envDuration("RETRY_BASE_DELAY")
	if n, err := strconv.Atoi(os.Getenv("RETRY_MAX_ATTEMPTS")); err == nil {
		cfg.RetryMaxAttempts = n
	}
	return cfg
}

// Resolve loads the config file at path (optional), then fills gaps from the
// environment and the built-in defaults. File values win over environment values.
func Resolve(path string) (*Config, error) {
	cfg := &Config{}
	if path != "" {
		loaded, err := LoadConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	merged := cfg.MergeWithDefaults(FromEnv())
	merged = merged.MergeWithDefaults(Default())
	if err := merged.Validate(); err != nil {
		return nil, err
	}
	return &merged, nil
}

// Validate checks that the configuration has valid values.
// Note: This doesn't check for required fields since those are handled
// by each command after merging.
func (c *Config) Validate() error {
	if c.CallTimeout < 0 {
		return fmt.Errorf("config error: 'call_timeout' must be non-negative")
	}
	if c.ImageTimeout < 0 {
		return fmt.Errorf("config error: 'image_timeout' must be non-negative")
	}
	if c.RetryMaxAttempts < 0 {
		return fmt.Errorf("config error: 'retry_max_attempts' must be non-negative")
	}
	if c.RetryBaseDelay < 0 {
		return fmt.Errorf("config error: 'retry_base_delay' must be non-negative")
	}
	if (c.SupabaseURL == "") != (c.SupabaseServiceKey == "") {
		return fmt.Errorf("config error: 'supabase_url' and 'supabase_service_key' must be set together")
	}
	if c.LogLevel != "" {
		if _, err := ParseLevel(c.LogLevel); err != nil {
			return fmt.Errorf("config error: %w", err)
		}
	}
	if c.Port != "" {
		if _, err := strconv.Atoi(c.Port); err != nil {
			return fmt.Errorf("config error: 'port' must be numeric, got %q", c.Port)
		}
	}
	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	fill := func(dst *string, def string) {
		if *dst == "" {
			*dst = def
		}
	}
	fill(&result.APIKey, defaults.APIKey)
	fill(&result.DatabaseURL, defaults.DatabaseURL)
	fill(&result.RedisURL, defaults.RedisURL)
	fill(&result.SupabaseURL, defaults.SupabaseURL)
	fill(&result.SupabaseServiceKey, defaults.SupabaseServiceKey)
	fill(&result.SupabaseBucket, defaults.SupabaseBucket)
	fill(&result.ImageModel, defaults.ImageModel)
	fill(&result.Port, defaults.Port)
	fill(&result.MediaDir, defaults.MediaDir)
	fill(&result.PublicBaseURL, defaults.PublicBaseURL)
	fill(&result.DefaultReferenceImageURL, defaults.DefaultReferenceImageURL)
	fill(&result.LogLevel, defaults.LogLevel)

	if len(result.CORSOrigins) == 0 {
		result.CORSOrigins = defaults.CORSOrigins
	}

	// Numeric fields: use default if zero
	if result.CallTimeout == 0 {
		result.CallTimeout = defaults.CallTimeout
	}
	if result.ImageTimeout == 0 {
		result.ImageTimeout = defaults.ImageTimeout
	}
	if result.RetryMaxAttempts == 0 {
		result.RetryMaxAttempts = defaults.RetryMaxAttempts
	}
	if result.RetryBaseDelay == 0 {
		result.RetryBaseDelay = defaults.RetryBaseDelay
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}

// SupabaseEnabled reports whether object storage should go to Supabase.
func (c *Config) SupabaseEnabled() bool {
	return c.SupabaseURL != "" && c.SupabaseServiceKey != ""
}

// ParseLevel maps a level name to a slog.Level.
func ParseLevel(name string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(name))); err != nil {
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", name)
	}
	return level, nil
}

// NewLogger returns a text logger at the configured level, writing to stderr.
func (c *Config) NewLogger() *slog.Logger {
	level, err := ParseLevel(c.LogLevel)
	if err != nil {
		level = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func envDuration(key string) Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return 0
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return Duration(d)
	}
	if secs, err := strconv.Atoi(raw); err == nil {
		return Duration(time.Duration(secs) * time.Second)
	}
	return 0
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
