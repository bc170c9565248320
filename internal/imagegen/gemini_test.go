package imagegen

import (
	"context"
	"errors"
	"strings"
	"testing"

	"google.golang.org/genai"

	"github.com/jonathan/brand-studio/internal/storage"
	"github.com/jonathan/brand-studio/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRenderer struct {
	img    Image
	err    error
	aspect string
}

func (r *fakeRenderer) Render(_ context.Context, _ string, aspectRatio string) (Image, error) {
	r.aspect = aspectRatio
	return r.img, r.err
}

type fakeStore struct {
	path        string
	contentType string
	data        []byte
	err         error
}

func (s *fakeStore) Upload(_ context.Context, objectPath string, data []byte, contentType string) (storage.Object, error) {
	s.path, s.data, s.contentType = objectPath, data, contentType
	if s.err != nil {
		return storage.Object{}, s.err
	}
	return storage.Object{Path: objectPath, URL: "https://cdn.example.com/" + objectPath, Size: int64(len(data))}, nil
}

func (s *fakeStore) Delete(context.Context, string) error { return nil }

func upperEncoder(data []byte) ([]byte, string, error) {
	return []byte(strings.ToUpper(string(data))), "image/webp", nil
}

func TestGenerator_RendersEncodesAndStores(t *testing.T) {
	renderer := &fakeRenderer{img: Image{Data: []byte("png-bytes"), MIMEType: "image/png"}}
	store := &fakeStore{}
	g := NewGenerator(renderer, store, WithEncoder(upperEncoder), WithPrefix("posts"))

	url, err := g.Generate(context.Background(), "a cup of coffee", types.SizeLandscape)
	require.NoError(t, err)

	assert.Equal(t, "16:9", renderer.aspect)
	assert.Equal(t, []byte("PNG-BYTES"), store.data)
	assert.Equal(t, "image/webp", store.contentType)
	assert.True(t, strings.HasPrefix(store.path, "posts/"))
	assert.True(t, strings.HasSuffix(store.path, ".webp"))
	assert.Equal(t, "https://cdn.example.com/"+store.path, url)
}

func TestGenerator_EncodingFailureStoresOriginal(t *testing.T) {
	renderer := &fakeRenderer{img: Image{Data: []byte("raw"), MIMEType: "image/png"}}
	store := &fakeStore{}
	failing := func([]byte) ([]byte, string, error) { return nil, "", errors.New("cgo unavailable") }

	_, err := NewGenerator(renderer, store, WithEncoder(failing)).Generate(context.Background(), "p", types.SizeSquare)
	require.NoError(t, err)

	assert.Equal(t, []byte("raw"), store.data)
	assert.Equal(t, "image/png", store.contentType)
	assert.True(t, strings.HasSuffix(store.path, ".png"))
}

func TestGenerator_RenderError(t *testing.T) {
	renderer := &fakeRenderer{err: errors.New("quota exceeded")}
	store := &fakeStore{}

	_, err := NewGenerator(renderer, store).Generate(context.Background(), "p", types.SizeSquare)

	assert.ErrorContains(t, err, "quota exceeded")
	assert.Nil(t, store.data)
}

func TestGenerator_StoreError(t *testing.T) {
	renderer := &fakeRenderer{img: Image{Data: []byte("raw"), MIMEType: "image/png"}}
	store := &fakeStore{err: errors.New("bucket missing")}

	_, err := NewGenerator(renderer, store, WithEncoder(nil)).Generate(context.Background(), "p", types.SizePortrait)

	assert.ErrorContains(t, err, "failed to store generated image")
	assert.Equal(t, "9:16", renderer.aspect)
}

func TestFirstImage(t *testing.T) {
	_, err := firstImage(nil)
	assert.Error(t, err)

	_, err = firstImage(&genai.GenerateContentResponse{Candidates: []*genai.Candidate{{Content: &genai.Content{
		Parts: []*genai.Part{genai.NewPartFromText("I cannot draw that")},
	}}}})
	assert.ErrorContains(t, err, "no image data")

	img, err := firstImage(&genai.GenerateContentResponse{Candidates: []*genai.Candidate{
		{Content: nil},
		{Content: &genai.Content{Parts: []*genai.Part{
			genai.NewPartFromText("Here you go"),
			{InlineData: &genai.Blob{MIMEType: "image/png", Data: []byte("img")}},
		}}},
	}})
	require.NoError(t, err)
	assert.Equal(t, "image/png", img.MIMEType)
	assert.Equal(t, []byte("img"), img.Data)
}

func TestNewGeminiRenderer_RequiresKey(t *testing.T) {
	_, err := NewGeminiRenderer(context.Background(), "", "")
	assert.Error(t, err)
}
