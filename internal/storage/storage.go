// Package storage keeps generated and uploaded brand assets in object storage
// and hands back their public URLs.
package storage

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Object is a stored asset.
type Object struct {
	Path        string
	URL         string
	ContentType string
	Size        int64
}

// Store uploads assets and removes them again.
type Store interface {
	Upload(ctx context.Context, objectPath string, data []byte, contentType string) (Object, error)
	// Delete removes the object behind a URL returned by Upload. URLs the
	// store did not issue are ignored, as are objects that are already gone.
	Delete(ctx context.Context, url string) error
}

// ObjectPath builds a unique object path under prefix, partitioned by month:
// "<prefix>/2025/03/<uuid><ext>".
func ObjectPath(prefix, ext string, now time.Time) string {
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	name := uuid.New().String() + strings.ToLower(ext)
	return path.Join(strings.Trim(prefix, "/"), now.UTC().Format("2006/01"), name)
}

// ExtensionFor maps an image MIME type to a file extension.
func ExtensionFor(contentType string) string {
	switch strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0])) {
	case "image/webp":
		return ".webp"
	case "image/png":
		return ".png"
	case "image/jpeg", "image/jpg":
		return ".jpg"
	case "image/gif":
		return ".gif"
	case "application/pdf":
		return ".pdf"
	default:
		return ".bin"
	}
}

// UploadError reports a failed upload.
type UploadError struct {
	Path       string
	StatusCode int
	Message    string
	Cause      error
}

func (e *UploadError) Error() string {
	msg := fmt.Sprintf("upload %s failed", e.Path)
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" with status %d", e.StatusCode)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *UploadError) Unwrap() error {
	return e.Cause
}
