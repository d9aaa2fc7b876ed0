package research

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/prospect-scout/internal/model"
	"github.com/sells-group/prospect-scout/internal/store"
)

// CachedCrawler caches crawl results by site URL. Cache failures on either
// side are logged and treated as misses; a degraded cache never fails a
// crawl.
type CachedCrawler struct {
	inner SiteCrawler
	store store.Store
	ttl   time.Duration
}

// NewCachedCrawler wraps inner with a store-backed cache.
func NewCachedCrawler(inner SiteCrawler, st store.Store, ttl time.Duration) *CachedCrawler {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &CachedCrawler{inner: inner, store: st, ttl: ttl}
}

// Crawl returns the cached result for the site when present. A hit is only
// used when it covers the requested page budget; shallower cached crawls
// are recrawled.
func (c *CachedCrawler) Crawl(ctx context.Context, siteURL string, maxPages int, keywords []string) (*model.CrawlResult, error) {
	cached, err := c.store.GetCachedCrawl(ctx, siteURL)
	if err != nil {
		zap.L().Warn("crawl cache lookup failed", zap.String("site", siteURL), zap.Error(err))
	} else if cached != nil && (maxPages <= 0 || cached.TotalPages >= maxPages) {
		zap.L().Debug("crawl cache hit", zap.String("site", siteURL))
		return cached, nil
	}

	result, err := c.inner.Crawl(ctx, siteURL, maxPages, keywords)
	if err != nil {
		return nil, err
	}

	if err := c.store.PutCachedCrawl(ctx, result, c.ttl); err != nil {
		zap.L().Warn("crawl cache write failed", zap.String("site", siteURL), zap.Error(err))
	}
	return result, nil
}
