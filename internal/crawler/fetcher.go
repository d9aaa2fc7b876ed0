package crawler

import (
	"context"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/time/rate"

	"github.com/sells-group/prospect-scout/internal/resilience"
)

// FetchOptions configures the page fetcher.
type FetchOptions struct {
	UserAgent      string
	Timeout        time.Duration
	RequestsPerSec float64
	MaxBodyBytes   int64
	Retry          resilience.RetryConfig
}

// FetchedPage is one raw HTTP response, body decoded to UTF-8 and capped at
// MaxBodyBytes.
type FetchedPage struct {
	URL        string
	StatusCode int
	Body       []byte
}

// Fetcher issues rate-limited, retried HTTP GETs. The rate limit applies per
// target domain, so crawls of different sites never throttle each other.
type Fetcher struct {
	client *http.Client
	opts   FetchOptions

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewFetcher creates a Fetcher with the given options; zero fields get
// defaults (15s timeout, 1 req/s per domain, 10 MiB body cap).
func NewFetcher(opts FetchOptions) *Fetcher {
	if opts.UserAgent == "" {
		opts.UserAgent = "Mozilla/5.0 (compatible; ProspectScout/1.0)"
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}
	if opts.RequestsPerSec <= 0 {
		opts.RequestsPerSec = 1.0
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = 10 << 20
	}
	if opts.Retry.MaxAttempts == 0 {
		opts.Retry = resilience.DefaultRetryConfig()
		opts.Retry.OnRetry = resilience.RetryLogger("crawler", "fetch")
	}
	return &Fetcher{
		client: &http.Client{
			Timeout: opts.Timeout,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 4,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		opts:     opts,
		limiters: make(map[string]*rate.Limiter),
	}
}

// NewFetcherWithClient is NewFetcher with an injected HTTP client. Used by
// tests.
func NewFetcherWithClient(client *http.Client, opts FetchOptions) *Fetcher {
	f := NewFetcher(opts)
	f.client = client
	return f
}

// Fetch GETs a URL. Transient failures (network errors, 5xx, 429) are retried
// with backoff; any other non-200 status is a terminal error.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*FetchedPage, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		return nil, eris.Errorf("invalid url %q", rawURL)
	}

	if err := f.limiterFor(parsed.Host).Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "rate limiter wait")
	}

	return resilience.DoVal(ctx, f.opts.Retry, func(ctx context.Context) (*FetchedPage, error) {
		return f.fetchOnce(ctx, rawURL)
	})
}

func (f *Fetcher) fetchOnce(ctx context.Context, rawURL string) (*FetchedPage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "create request")
	}
	req.Header.Set("User-Agent", f.opts.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, resilience.Transient(eris.Wrapf(err, "fetch %s", rawURL), 0)
	}
	defer resp.Body.Close()

	if resilience.IsTransientHTTPStatus(resp.StatusCode) {
		return nil, resilience.Transient(eris.Errorf("http %d from %s", resp.StatusCode, rawURL), resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("http %d from %s", resp.StatusCode, rawURL)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.opts.MaxBodyBytes))
	if err != nil {
		return nil, resilience.Transient(eris.Wrapf(err, "read body of %s", rawURL), 0)
	}

	return &FetchedPage{
		URL:        rawURL,
		StatusCode: resp.StatusCode,
		Body:       decodeBody(body, resp.Header.Get("Content-Type")),
	}, nil
}

// limiterFor returns the per-domain limiter, creating it on first use.
func (f *Fetcher) limiterFor(host string) *rate.Limiter {
	host = strings.ToLower(host)
	f.mu.Lock()
	defer f.mu.Unlock()
	lim, ok := f.limiters[host]
	if !ok {
		lim = rate.NewLimiter(rate.Limit(f.opts.RequestsPerSec), 1)
		f.limiters[host] = lim
	}
	return lim
}

// decodeBody converts a response body to UTF-8 based on the Content-Type
// charset. Unknown or missing charsets pass the body through unchanged.
func decodeBody(body []byte, contentType string) []byte {
	if contentType == "" {
		return body
	}
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return body
	}
	charset := strings.ToLower(params["charset"])
	if charset == "" || charset == "utf-8" || charset == "utf8" {
		return body
	}
	enc, err := htmlindex.Get(charset)
	if err != nil {
		return body
	}
	decoded, err := enc.NewDecoder().Bytes(body)
	if err != nil {
		return body
	}
	return decoded
}
