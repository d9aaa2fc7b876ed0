package store

import (
	"context"
	"sync"
	"time"

	"github.com/sells-group/prospect-scout/internal/model"
)

type memoryEntry[T any] struct {
	value     T
	expiresAt time.Time
}

// MemoryStore implements Store in process memory. Default when no database is
// configured; results do not survive restarts.
type MemoryStore struct {
	mu        sync.RWMutex
	discovery map[string]memoryEntry[model.DiscoveryResult]
	crawls    map[string]memoryEntry[model.CrawlResult]
	now       func() time.Time
}

// NewMemory creates an empty MemoryStore.
func NewMemory() *MemoryStore {
	return &MemoryStore{
		discovery: make(map[string]memoryEntry[model.DiscoveryResult]),
		crawls:    make(map[string]memoryEntry[model.CrawlResult]),
		now:       time.Now,
	}
}

func (s *MemoryStore) Migrate(ctx context.Context) error { return nil }
func (s *MemoryStore) Close() error                      { return nil }

func (s *MemoryStore) GetDiscovery(ctx context.Context, normalizedName string) (*model.DiscoveryResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.discovery[normalizedName]
	if !ok || !e.expiresAt.After(s.now()) {
		return nil, nil
	}
	result := e.value
	return &result, nil
}

func (s *MemoryStore) PutDiscovery(ctx context.Context, result *model.DiscoveryResult, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.discovery[result.NormalizedName] = memoryEntry[model.DiscoveryResult]{
		value:     *result,
		expiresAt: s.now().Add(ttl),
	}
	return nil
}

func (s *MemoryStore) DeleteDiscovery(ctx context.Context, normalizedName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.discovery, normalizedName)
	return nil
}

func (s *MemoryStore) GetCachedCrawl(ctx context.Context, siteURL string) (*model.CrawlResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.crawls[siteURL]
	if !ok || !e.expiresAt.After(s.now()) {
		return nil, nil
	}
	result := e.value
	return &result, nil
}

func (s *MemoryStore) PutCachedCrawl(ctx context.Context, result *model.CrawlResult, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.crawls[result.SiteURL] = memoryEntry[model.CrawlResult]{
		value:     *result,
		expiresAt: s.now().Add(ttl),
	}
	return nil
}

func (s *MemoryStore) DeleteExpired(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	n := 0
	for k, e := range s.discovery {
		if !e.expiresAt.After(now) {
			delete(s.discovery, k)
			n++
		}
	}
	for k, e := range s.crawls {
		if !e.expiresAt.After(now) {
			delete(s.crawls, k)
			n++
		}
	}
	return n, nil
}
