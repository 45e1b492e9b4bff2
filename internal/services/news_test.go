package services

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newsServiceFor(upstream string) *NewsService {
	return &NewsService{
		client:    &http.Client{Timeout: 5 * time.Second},
		sanitizer: bluemonday.UGCPolicy(),
		baseURL:   upstream,
	}
}

func TestCategoryAllowed(t *testing.T) {
	for _, category := range []string{"nasional", "internasional", "ekonomi", "olahraga", "teknologi", "hiburan", "terbaru"} {
		assert.True(t, CategoryAllowed(category), category)
	}
	assert.False(t, CategoryAllowed("politics"))
	assert.False(t, CategoryAllowed(""))
	assert.False(t, CategoryAllowed("Nasional"))
}

func TestFetchCategoryCaches(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		assert.Equal(t, "/olahraga", r.URL.Path)
		fmt.Fprint(w, `{"data":[{"title":"headline"}]}`)
	}))
	defer srv.Close()

	svc := newsServiceFor(srv.URL)

	body, err := svc.FetchCategory("olahraga")
	require.NoError(t, err)
	assert.Contains(t, string(body), "headline")

	// Second fetch is served from the cache
	body, err = svc.FetchCategory("olahraga")
	require.NoError(t, err)
	assert.Contains(t, string(body), "headline")
	assert.Equal(t, 1, hits)
}

func TestFetchCategoryUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	svc := newsServiceFor(srv.URL)
	_, err := svc.FetchCategory("hiburan")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestExtractArticle(t *testing.T) {
	page := `<!DOCTYPE html>
<html>
<head><title>Big Story</title></head>
<body>
<article>
<h1>Big Story</h1>
<p>The first paragraph of the story carries enough prose for the extractor
to recognize it as the main body of the page rather than navigation.</p>
<p>A second paragraph keeps the content block substantial, which is what
real news pages look like once the chrome is stripped away.</p>
<script>alert("tracking")</script>
<ul>
<li><a href="/related-1">Related story one</a></li>
<li><a href="/related-2">Related story two</a></li>
</ul>
</article>
</body>
</html>`

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, page)
	}))
	defer srv.Close()

	svc := newsServiceFor(srv.URL)
	article, err := svc.ExtractArticle(srv.URL + "/story")
	require.NoError(t, err)

	assert.Equal(t, "Big Story", article.Title)
	assert.Contains(t, article.Content, "first paragraph")

	// Scripts are sanitized out and related-link lists stripped
	assert.NotContains(t, article.Content, "<script")
	assert.NotContains(t, article.Content, "Related story")
}

func TestStripRelatedLinks(t *testing.T) {
	content := `<p>Body text.</p><ul><li><a href="/a">a</a></li><li><a href="/b">b</a></li></ul><ul><li>plain item</li><li>no links here</li></ul>`
	out := stripRelatedLinks(content)
	assert.NotContains(t, out, `href="/a"`)
	assert.Contains(t, out, "plain item")
	assert.Contains(t, out, "Body text.")
}
