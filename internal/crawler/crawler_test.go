package crawler

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testSite is an httptest server that serves a seed page with links and
// counts every request it receives.
type testSite struct {
	srv *httptest.Server

	mu       sync.Mutex
	requests []string
}

func newTestSite(t *testing.T, pages map[string]string) *testSite {
	t.Helper()
	site := &testSite{}
	site.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		site.mu.Lock()
		site.requests = append(site.requests, r.URL.Path)
		site.mu.Unlock()

		if body, ok := pages[r.URL.Path]; ok {
			w.Write([]byte(body))
			return
		}
		http.NotFound(w, r)
	}))
	t.Cleanup(site.srv.Close)
	return site
}

func (s *testSite) fetchCount(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int
	for _, p := range s.requests {
		if p == path {
			n++
		}
	}
	return n
}

func newTestCrawler(site *testSite) *Crawler {
	fetcher := NewFetcherWithClient(site.srv.Client(), fastFetchOptions())
	robots := NewRobotsChecker(site.srv.Client(), "ProspectScout/1.0")
	return NewCrawler(fetcher, robots, nil)
}

func seedWithLinks(links ...string) string {
	var b strings.Builder
	b.WriteString("<html><head><title>Seed</title></head><body>")
	for _, l := range links {
		fmt.Fprintf(&b, `<a href="%s">%s</a>`, l, strings.Trim(l, "/"))
	}
	b.WriteString("</body></html>")
	return b.String()
}

func TestCrawl_SeedOnly(t *testing.T) {
	t.Parallel()
	site := newTestSite(t, map[string]string{
		"/": seedWithLinks("/pricing", "/about"),
	})

	result, err := newTestCrawler(site).Crawl(context.Background(), site.srv.URL, 1, nil)
	require.NoError(t, err)

	assert.Equal(t, 1, result.TotalPages)
	assert.Equal(t, []string{site.srv.URL}, result.VisitedURLs)
	assert.Equal(t, "Seed", result.Pages[0].Title)
	assert.Equal(t, 0, site.fetchCount("/pricing"))
	assert.Equal(t, 0, site.fetchCount("/about"))
}

func TestCrawl_PriorityOrder(t *testing.T) {
	t.Parallel()
	links := []string{"/pricing", "/about", "/products"}
	for i := range 17 {
		links = append(links, fmt.Sprintf("/post-%d", i))
	}
	pages := map[string]string{"/": seedWithLinks(links...)}
	for _, l := range links {
		pages[l] = "<html><body>page</body></html>"
	}
	site := newTestSite(t, pages)

	result, err := newTestCrawler(site).Crawl(context.Background(), site.srv.URL, 4, nil)
	require.NoError(t, err)

	require.Equal(t, 4, result.TotalPages)
	require.Len(t, result.VisitedURLs, 4)
	assert.Equal(t, site.srv.URL+"/pricing", result.VisitedURLs[1])
	assert.Equal(t, site.srv.URL+"/about", result.VisitedURLs[2])
	assert.Equal(t, site.srv.URL+"/products", result.VisitedURLs[3])

	// Scores descend after the seed.
	for i := 2; i < len(result.Pages); i++ {
		assert.GreaterOrEqual(t, result.Pages[i-1].LinkScore, result.Pages[i].LinkScore)
	}
	assert.Equal(t, 0, site.fetchCount("/post-3"))
}

func TestCrawl_RobotsDisallowed(t *testing.T) {
	t.Parallel()
	site := newTestSite(t, map[string]string{
		"/robots.txt": "User-agent: *\nDisallow: /\n",
		"/":           seedWithLinks("/pricing"),
	})

	_, err := newTestCrawler(site).Crawl(context.Background(), site.srv.URL, 5, nil)
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrRobotsDisallowed))
	assert.Equal(t, 0, site.fetchCount("/"))
}

func TestCrawl_SeedUnreachable(t *testing.T) {
	t.Parallel()
	site := newTestSite(t, map[string]string{})

	_, err := newTestCrawler(site).Crawl(context.Background(), site.srv.URL, 5, nil)
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrSeedUnreachable))
}

func TestCrawl_FailedPageSkipped(t *testing.T) {
	t.Parallel()
	site := newTestSite(t, map[string]string{
		"/":      seedWithLinks("/pricing", "/about"),
		"/about": "<html><body>about us</body></html>",
	})

	result, err := newTestCrawler(site).Crawl(context.Background(), site.srv.URL, 3, nil)
	require.NoError(t, err)

	assert.Equal(t, 2, result.TotalPages)
	assert.Contains(t, result.VisitedURLs, site.srv.URL+"/about")
	assert.NotContains(t, result.VisitedURLs, site.srv.URL+"/pricing")
}

func TestCrawl_ExtraKeywords(t *testing.T) {
	t.Parallel()
	site := newTestSite(t, map[string]string{
		"/":                seedWithLinks("/widgets-catalog", "/blog"),
		"/widgets-catalog": "<html><body>widgets</body></html>",
		"/blog":            "<html><body>posts</body></html>",
	})

	result, err := newTestCrawler(site).Crawl(context.Background(), site.srv.URL, 2, []string{"widgets"})
	require.NoError(t, err)

	require.Equal(t, 2, result.TotalPages)
	assert.Equal(t, site.srv.URL+"/widgets-catalog", result.VisitedURLs[1])
	assert.Positive(t, result.Pages[1].LinkScore)
}

func TestCrawl_InvalidURL(t *testing.T) {
	t.Parallel()
	c := NewCrawler(NewFetcher(fastFetchOptions()), nil, nil)
	_, err := c.Crawl(context.Background(), "", 5, nil)
	assert.Error(t, err)
}

func TestCrawl_BareHostGetsScheme(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "https://acme.com", normalizeSiteURL("acme.com"))
	assert.Equal(t, "http://acme.com", normalizeSiteURL("http://acme.com"))
	assert.Equal(t, "", normalizeSiteURL("  "))
}

func TestCrawl_ContentSize(t *testing.T) {
	t.Parallel()
	site := newTestSite(t, map[string]string{
		"/": "<html><body>hello world</body></html>",
	})

	result, err := newTestCrawler(site).Crawl(context.Background(), site.srv.URL, 1, nil)
	require.NoError(t, err)
	assert.Equal(t, len("hello world"), result.ContentSize)
}
