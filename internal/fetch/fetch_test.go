package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestURL_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, DefaultUserAgent, r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html><body><h1>Brand Book</h1></body></html>"))
	}))
	defer server.Close()

	result, err := URL(context.Background(), server.URL, nil)
	require.NoError(t, err)
	assert.Equal(t, server.URL, result.URL)
	assert.Contains(t, result.HTML(), "<h1>Brand Book</h1>")
	assert.Equal(t, http.StatusOK, result.StatusCode)
}

func TestURL_InvalidURL(t *testing.T) {
	for _, u := range []string{"not-a-valid-url", "ftp://example.com/x", "/relative/path"} {
		_, err := URL(context.Background(), u, nil)
		require.Error(t, err, u)

		var fetchErr *Error
		assert.ErrorAs(t, err, &fetchErr)
		assert.Contains(t, err.Error(), "invalid URL")
	}
}

func TestURL_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	result, err := URL(context.Background(), server.URL, nil)
	require.Error(t, err)
	require.NotNil(t, result)
	assert.Equal(t, http.StatusNotFound, result.StatusCode)
	assert.Contains(t, err.Error(), "404")
}

func TestURL_BodyTooLarge(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(strings.Repeat("x", 64)))
	}))
	defer server.Close()

	opts := DefaultOptions()
	opts.MaxBytes = 16
	_, err := URL(context.Background(), server.URL, opts)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "larger than 16 bytes")
}

func TestExtractMainText_PrefersMain(t *testing.T) {
	html := `
	<html>
		<body>
			<nav>Navigation</nav>
			<main>
				<h1>Our Colors</h1>
				<p>Primary: #0A3D62</p>
			</main>
			<footer>Footer</footer>
		</body>
	</html>`

	text, err := ExtractMainText(html, BrandPageSelectors())
	require.NoError(t, err)
	assert.Equal(t, "Our Colors\nPrimary: #0A3D62", text)
}

func TestExtractMainText_FallsBackToBody(t *testing.T) {
	html := `<html><body><div>Voice: warm</div><script>var x = 1;</script></body></html>`

	text, err := ExtractMainText(html, []string{".does-not-exist"})
	require.NoError(t, err)
	assert.Equal(t, "Voice: warm", text)
}

func TestExtractMainText_NoiseSelectors(t *testing.T) {
	html := `<html><body><main><p>Keep</p><div class="share">Share this</div></main></body></html>`

	text, err := ExtractMainText(html, BrandPageSelectors(), ".share")
	require.NoError(t, err)
	assert.Equal(t, "Keep", text)
}

func TestShouldUseBrowser(t *testing.T) {
	assert.True(t, ShouldUseBrowser("Loading..."))
	assert.False(t, ShouldUseBrowser(strings.Repeat("brand ", 60)))
}
