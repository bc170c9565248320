package server

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReferenceImages(t *testing.T) {
	remote := &remoteImages{}
	source := ReferenceImages(remote)

	ctx, urls := withUploadedImages(context.Background(), []uploadedImage{
		{Name: "a.png", ContentType: "image/png", Data: []byte("png")},
		{Name: "a.png", ContentType: "image/webp", Data: []byte("webp")},
	})
	require.Len(t, urls, 2)
	assert.NotEqual(t, urls[0], urls[1])
	assert.True(t, strings.HasPrefix(urls[0], uploadScheme))

	img, err := source.FetchImage(ctx, urls[1])
	require.NoError(t, err)
	assert.Equal(t, "image/webp", img.MIMEType)
	assert.Equal(t, []byte("webp"), img.Data)

	img, err = source.FetchImage(ctx, "https://cdn.test/x.jpg")
	require.NoError(t, err)
	assert.Equal(t, []byte("https://cdn.test/x.jpg"), img.Data)
	assert.Equal(t, []string{"https://cdn.test/x.jpg"}, remote.urls)

	// Uploads of another request are not visible
	_, err = source.FetchImage(context.Background(), urls[0])
	assert.Error(t, err)
}

func TestWithUploadedImages_None(t *testing.T) {
	ctx := context.Background()
	got, urls := withUploadedImages(ctx, nil)
	assert.Equal(t, ctx, got)
	assert.Empty(t, urls)

	_, err := ReferenceImages(nil).FetchImage(ctx, "https://cdn.test/x.jpg")
	assert.Error(t, err)
}
