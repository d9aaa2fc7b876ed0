package crawler

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/temoto/robotstxt"
	"go.uber.org/zap"
)

const (
	robotsCacheTTL     = 24 * time.Hour
	maxRobotsBodyBytes = 512 * 1024
)

// RobotsChecker caches and evaluates robots.txt rules per host. Any failure
// to fetch or parse degrades to allow-all, so an unreachable robots.txt never
// blocks a crawl.
type RobotsChecker struct {
	client    *http.Client
	userAgent string

	mu    sync.RWMutex
	cache map[string]robotsEntry // keyed by lowercased host
}

type robotsEntry struct {
	data      *robotstxt.RobotsData // nil means allow all
	fetchedAt time.Time
}

// NewRobotsChecker creates a RobotsChecker.
func NewRobotsChecker(client *http.Client, userAgent string) *RobotsChecker {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &RobotsChecker{
		client:    client,
		userAgent: userAgent,
		cache:     make(map[string]robotsEntry),
	}
}

// Allowed reports whether the URL may be fetched under the host's robots
// policy. A URL that cannot be parsed is not allowed; everything else
// defaults open on error.
func (r *RobotsChecker) Allowed(ctx context.Context, rawURL string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		return false
	}
	host := strings.ToLower(parsed.Host)

	entry, ok := r.cached(host)
	if !ok {
		entry = r.fetch(ctx, parsed.Scheme, host)
	}
	if entry.data == nil {
		return true
	}

	path := parsed.Path
	if path == "" {
		path = "/"
	}
	return entry.data.TestAgent(path, r.userAgent)
}

func (r *RobotsChecker) cached(host string) (robotsEntry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.cache[host]
	if !ok || time.Since(entry.fetchedAt) > robotsCacheTTL {
		return robotsEntry{}, false
	}
	return entry, true
}

func (r *RobotsChecker) fetch(ctx context.Context, scheme, host string) robotsEntry {
	entry := robotsEntry{fetchedAt: time.Now()}
	defer func() {
		r.mu.Lock()
		r.cache[host] = entry
		r.mu.Unlock()
	}()

	if scheme == "" {
		scheme = "https"
	}
	robotsURL := scheme + "://" + host + "/robots.txt"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return entry
	}
	req.Header.Set("User-Agent", r.userAgent)

	resp, err := r.client.Do(req)
	if err != nil {
		zap.L().Debug("robots.txt fetch failed, allowing", zap.String("host", host), zap.Error(err))
		return entry
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return entry
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxRobotsBodyBytes))
	if err != nil {
		return entry
	}
	data, err := robotstxt.FromBytes(body)
	if err != nil {
		return entry
	}
	entry.data = data
	return entry
}
