package server

import (
	"context"
	"fmt"
	"strings"

	"github.com/jonathan/brand-studio/internal/content"
	"github.com/jonathan/brand-studio/internal/llm"
)

// uploadScheme marks reference images that arrived with the request and are
// only held in memory until the run succeeds.
const uploadScheme = "upload://"

type uploadedImagesKey struct{}

// uploadedImage is a reference image read from a multipart request.
type uploadedImage struct {
	Name        string
	ContentType string
	Data        []byte
}

// withUploadedImages attaches images to ctx and returns the pseudo-URLs under
// which ReferenceImages serves them.
func withUploadedImages(ctx context.Context, images []uploadedImage) (context.Context, []string) {
	if len(images) == 0 {
		return ctx, nil
	}
	byURL := make(map[string]uploadedImage, len(images))
	urls := make([]string, len(images))
	for i, img := range images {
		urls[i] = fmt.Sprintf("%s%d/%s", uploadScheme, i, img.Name)
		byURL[urls[i]] = img
	}
	return context.WithValue(ctx, uploadedImagesKey{}, byURL), urls
}

// ReferenceImages serves images uploaded with the current request and
// delegates every other URL to next.
func ReferenceImages(next content.ImageSource) content.ImageSource {
	return referenceImages{next: next}
}

type referenceImages struct {
	next content.ImageSource
}

func (r referenceImages) FetchImage(ctx context.Context, url string) (llm.ImagePart, error) {
	if !strings.HasPrefix(url, uploadScheme) {
		if r.next == nil {
			return llm.ImagePart{}, fmt.Errorf("no image source for %s", url)
		}
		return r.next.FetchImage(ctx, url)
	}
	images, _ := ctx.Value(uploadedImagesKey{}).(map[string]uploadedImage)
	img, ok := images[url]
	if !ok {
		return llm.ImagePart{}, fmt.Errorf("uploaded image %s is not part of this request", url)
	}
	return llm.ImagePart{MIMEType: img.ContentType, Data: img.Data}, nil
}
