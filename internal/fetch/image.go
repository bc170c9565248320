package fetch

import (
	"context"
	"fmt"
	"mime"
	"net/http"
	"strings"

	"github.com/jonathan/brand-studio/internal/llm"
)

// Image downloads an image and returns it ready to be sent to a vision model.
// The MIME type comes from the Content-Type header, or is sniffed when the
// header is missing or generic.
func Image(ctx context.Context, urlStr string, opts *Options) (llm.ImagePart, error) {
	res, err := URL(ctx, urlStr, opts)
	if err != nil {
		return llm.ImagePart{}, err
	}

	mimeType := ""
	if res.ContentType != "" {
		if mt, _, err := mime.ParseMediaType(res.ContentType); err == nil {
			mimeType = mt
		}
	}
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = http.DetectContentType(res.Body)
	}
	if !strings.HasPrefix(mimeType, "image/") {
		return llm.ImagePart{}, &Error{URL: urlStr, Message: fmt.Sprintf("not an image (%s)", mimeType)}
	}
	if len(res.Body) == 0 {
		return llm.ImagePart{}, &Error{URL: urlStr, Message: "empty image"}
	}

	return llm.ImagePart{MIMEType: mimeType, Data: res.Body}, nil
}

// ImageFetcher downloads reference images with fixed options.
type ImageFetcher struct {
	Options *Options
}

// NewImageFetcher creates an ImageFetcher. A nil opts uses DefaultOptions.
func NewImageFetcher(opts *Options) *ImageFetcher {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &ImageFetcher{Options: opts}
}

// FetchImage implements the reference image source used by visual analysis.
func (f *ImageFetcher) FetchImage(ctx context.Context, urlStr string) (llm.ImagePart, error) {
	return Image(ctx, urlStr, f.Options)
}
