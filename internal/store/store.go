// Package store persists discovery and crawl results so repeat lookups for
// the same company are served from cache.
package store

import (
	"context"
	"time"

	"github.com/sells-group/prospect-scout/internal/model"
)

// Store defines the persistence interface for the discovery and crawl caches.
// Get methods return (nil, nil) on a miss or an expired entry; Put methods
// overwrite any existing entry for the same key.
type Store interface {
	// Discovery cache, keyed by normalized company name.
	GetDiscovery(ctx context.Context, normalizedName string) (*model.DiscoveryResult, error)
	PutDiscovery(ctx context.Context, result *model.DiscoveryResult, ttl time.Duration) error
	DeleteDiscovery(ctx context.Context, normalizedName string) error

	// Crawl cache, keyed by site URL.
	GetCachedCrawl(ctx context.Context, siteURL string) (*model.CrawlResult, error)
	PutCachedCrawl(ctx context.Context, result *model.CrawlResult, ttl time.Duration) error

	// Maintenance
	DeleteExpired(ctx context.Context) (int, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
