package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/supabase-community/supabase-go"
)

// DefaultAssetTable records every uploaded object.
const DefaultAssetTable = "brand_assets"

// SupabaseConfig configures a SupabaseStore.
type SupabaseConfig struct {
	URL        string
	ServiceKey string
	Bucket     string
	// AssetTable, when set, receives one row per upload.
	AssetTable string
	HTTPClient *http.Client
}

// SupabaseStore uploads objects to a Supabase Storage bucket. The bucket is
// expected to be public; returned URLs are the public object URLs.
type SupabaseStore struct {
	cfg    SupabaseConfig
	client *supabase.Client
	http   *http.Client
	logger *slog.Logger
}

// NewSupabaseStore creates a SupabaseStore. A nil logger is silent.
func NewSupabaseStore(cfg SupabaseConfig, logger *slog.Logger) (*SupabaseStore, error) {
	cfg.URL = strings.TrimRight(cfg.URL, "/")
	if cfg.URL == "" || cfg.ServiceKey == "" || cfg.Bucket == "" {
		return nil, fmt.Errorf("supabase storage requires url, service key and bucket")
	}

	client, err := supabase.NewClient(cfg.URL, cfg.ServiceKey, &supabase.ClientOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to create supabase client: %w", err)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &SupabaseStore{cfg: cfg, client: client, http: httpClient, logger: logger}, nil
}

// Upload stores data at objectPath and returns its public URL.
func (s *SupabaseStore) Upload(ctx context.Context, objectPath string, data []byte, contentType string) (Object, error) {
	objectPath = strings.TrimLeft(objectPath, "/")
	uploadURL := fmt.Sprintf("%s/storage/v1/object/%s/%s", s.cfg.URL, s.cfg.Bucket, escapePath(objectPath))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, uploadURL, bytes.NewReader(data))
	if err != nil {
		return Object{}, &UploadError{Path: objectPath, Message: "failed to create upload request", Cause: err}
	}
	req.Header.Set("Authorization", "Bearer "+s.cfg.ServiceKey)
	req.Header.Set("apikey", s.cfg.ServiceKey)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("x-upsert", "false")

	resp, err := s.http.Do(req)
	if err != nil {
		return Object{}, &UploadError{Path: objectPath, Message: "request failed", Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return Object{}, &UploadError{Path: objectPath, StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(body))}
	}

	obj := Object{
		Path:        objectPath,
		URL:         s.PublicURL(objectPath),
		ContentType: contentType,
		Size:        int64(len(data)),
	}
	s.logger.Info("uploaded object", "bucket", s.cfg.Bucket, "path", objectPath, "bytes", obj.Size)

	if s.cfg.AssetTable != "" {
		if err := s.recordAsset(obj); err != nil {
			// The object is already stored and reachable; only the audit row is missing.
			s.logger.Warn("failed to record asset", "path", objectPath, "error", err)
		}
	}
	return obj, nil
}

// Delete removes an object previously returned by Upload together with its
// asset row.
func (s *SupabaseStore) Delete(ctx context.Context, publicURL string) error {
	prefix := fmt.Sprintf("%s/storage/v1/object/public/%s/", s.cfg.URL, s.cfg.Bucket)
	escaped, ok := strings.CutPrefix(publicURL, prefix)
	if !ok || escaped == "" {
		return nil
	}
	objectPath, err := url.PathUnescape(escaped)
	if err != nil {
		return fmt.Errorf("delete %s: invalid object url: %w", escaped, err)
	}

	deleteURL := fmt.Sprintf("%s/storage/v1/object/%s/%s", s.cfg.URL, s.cfg.Bucket, escapePath(objectPath))
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, deleteURL, nil)
	if err != nil {
		return fmt.Errorf("delete %s: failed to create request: %w", objectPath, err)
	}
	req.Header.Set("Authorization", "Bearer "+s.cfg.ServiceKey)
	req.Header.Set("apikey", s.cfg.ServiceKey)

	resp, err := s.http.Do(req)
	if err != nil {
		return fmt.Errorf("delete %s: request failed: %w", objectPath, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusNotFound {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("delete %s failed with status %d: %s", objectPath, resp.StatusCode, strings.TrimSpace(string(body)))
	}
	s.logger.Info("deleted object", "bucket", s.cfg.Bucket, "path", objectPath)

	if s.cfg.AssetTable != "" {
		if _, _, err := s.client.From(s.cfg.AssetTable).Delete("", "").Eq("path", objectPath).Execute(); err != nil {
			s.logger.Warn("failed to delete asset record", "path", objectPath, "error", err)
		}
	}
	return nil
}

// PublicURL returns the public URL of an object in the configured bucket.
func (s *SupabaseStore) PublicURL(objectPath string) string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", s.cfg.URL, s.cfg.Bucket, escapePath(strings.TrimLeft(objectPath, "/")))
}

func (s *SupabaseStore) recordAsset(obj Object) error {
	row := map[string]interface{}{
		"bucket":       s.cfg.Bucket,
		"path":         obj.Path,
		"public_url":   obj.URL,
		"content_type": obj.ContentType,
		"size_bytes":   obj.Size,
	}
	_, _, err := s.client.From(s.cfg.AssetTable).
		Insert(row, false, "", "", "").
		Execute()
	if err != nil {
		return fmt.Errorf("failed to insert asset record: %w", err)
	}
	return nil
}

func escapePath(p string) string {
	segments := strings.Split(p, "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return strings.Join(segments, "/")
}
