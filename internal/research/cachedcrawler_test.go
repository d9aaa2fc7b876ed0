package research

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/prospect-scout/internal/model"
	"github.com/sells-group/prospect-scout/internal/store"
)

func TestCachedCrawler_MissThenHit(t *testing.T) {
	t.Parallel()
	inner := &fakeCrawler{result: &model.CrawlResult{SiteURL: "https://acme.com", TotalPages: 5}}
	cc := NewCachedCrawler(inner, store.NewMemory(), time.Hour)

	first, err := cc.Crawl(context.Background(), "https://acme.com", 5, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, inner.calls)

	second, err := cc.Crawl(context.Background(), "https://acme.com", 5, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, inner.calls, "second crawl must come from cache")
	assert.Equal(t, first.TotalPages, second.TotalPages)
}

func TestCachedCrawler_ShallowHitRecrawls(t *testing.T) {
	t.Parallel()
	st := store.NewMemory()
	require.NoError(t, st.PutCachedCrawl(context.Background(),
		&model.CrawlResult{SiteURL: "https://acme.com", TotalPages: 2}, time.Hour))

	inner := &fakeCrawler{result: &model.CrawlResult{SiteURL: "https://acme.com", TotalPages: 6}}
	cc := NewCachedCrawler(inner, st, time.Hour)

	result, err := cc.Crawl(context.Background(), "https://acme.com", 6, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, inner.calls)
	assert.Equal(t, 6, result.TotalPages)
}

func TestCachedCrawler_ErrorNotCached(t *testing.T) {
	t.Parallel()
	st := store.NewMemory()
	inner := &fakeCrawler{err: assert.AnError}
	cc := NewCachedCrawler(inner, st, time.Hour)

	_, err := cc.Crawl(context.Background(), "https://acme.com", 5, nil)
	require.Error(t, err)

	cached, err := st.GetCachedCrawl(context.Background(), "https://acme.com")
	require.NoError(t, err)
	assert.Nil(t, cached)
}
