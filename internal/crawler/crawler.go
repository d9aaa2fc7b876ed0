package crawler

import (
	"context"
	"net/url"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/prospect-scout/internal/model"
)

const defaultMaxPages = 5

// Crawler runs a priority crawl: the seed page first, then the highest-value
// same-domain links up to the page budget. Fetches are sequential in score
// order; pacing comes from the fetcher's per-domain limiter.
type Crawler struct {
	fetcher *Fetcher
	robots  *RobotsChecker
	profile *ScoringProfile
}

// NewCrawler creates a Crawler. A nil profile uses the built-in defaults.
func NewCrawler(fetcher *Fetcher, robots *RobotsChecker, profile *ScoringProfile) *Crawler {
	if profile == nil {
		profile = DefaultProfile()
	}
	return &Crawler{fetcher: fetcher, robots: robots, profile: profile}
}

// Crawl fetches up to maxPages pages from the site, seed first, then
// descending link score with ties broken by encounter order. Extra keywords
// extend the scoring vocabulary for this crawl only. Non-seed fetch failures
// are skipped; only a robots denial or an unreachable seed fail the crawl.
func (c *Crawler) Crawl(ctx context.Context, siteURL string, maxPages int, keywords []string) (*model.CrawlResult, error) {
	if maxPages <= 0 {
		maxPages = defaultMaxPages
	}

	siteURL = normalizeSiteURL(siteURL)
	parsed, err := url.Parse(siteURL)
	if err != nil || parsed.Host == "" {
		return nil, eris.Errorf("invalid site url %q", siteURL)
	}
	baseURL := parsed.Scheme + "://" + parsed.Host

	log := zap.L().With(zap.String("site", siteURL))

	if c.robots != nil && !c.robots.Allowed(ctx, siteURL) {
		log.Warn("crawl blocked by robots policy")
		return nil, eris.Wrapf(ErrRobotsDisallowed, "%s", baseURL)
	}

	seed, err := c.fetcher.Fetch(ctx, siteURL)
	if err != nil {
		return nil, eris.Wrapf(ErrSeedUnreachable, "%s: %s", siteURL, err.Error())
	}

	result := &model.CrawlResult{
		SiteURL:     siteURL,
		BaseURL:     baseURL,
		VisitedURLs: []string{siteURL},
	}

	seedPage := ExtractPage(siteURL, seed.Body)
	seedPage.StatusCode = seed.StatusCode
	result.Pages = append(result.Pages, seedPage)

	if maxPages > 1 {
		profile := c.profile.WithKeywords(keywords)
		for _, link := range c.prioritize(seed.Body, baseURL, siteURL, profile, maxPages-1) {
			fetched, err := c.fetcher.Fetch(ctx, link.URL)
			if err != nil {
				log.Warn("skipping page", zap.String("url", link.URL), zap.Error(err))
				continue
			}

			page := ExtractPage(link.URL, fetched.Body)
			page.StatusCode = fetched.StatusCode
			page.LinkScore = link.score
			page.AnchorText = link.Anchor
			result.Pages = append(result.Pages, page)
			result.VisitedURLs = append(result.VisitedURLs, link.URL)

			if len(result.Pages) >= maxPages {
				break
			}
		}
	}

	result.TotalPages = len(result.Pages)
	for _, p := range result.Pages {
		result.ContentSize += len(p.Text)
	}

	log.Info("crawl complete",
		zap.Int("pages", result.TotalPages),
		zap.Int("content_size", result.ContentSize),
	)
	return result, nil
}

type scoredLink struct {
	Link
	score float64
}

// prioritize scores the seed's same-domain links and returns the top n in
// descending score order, encounter order on ties.
func (c *Crawler) prioritize(seedBody []byte, baseURL, seedURL string, profile *ScoringProfile, n int) []scoredLink {
	links := ExtractLinks(seedBody, baseURL)

	scored := make([]scoredLink, 0, len(links))
	for _, link := range links {
		if link.URL == seedURL || strings.TrimSuffix(link.URL, "/") == strings.TrimSuffix(seedURL, "/") {
			continue
		}
		scored = append(scored, scoredLink{
			Link:  link,
			score: ScoreLink(link.URL, link.Anchor, profile),
		})
	}

	sort.SliceStable(scored, func(i, j int) bool { return scored[i].score > scored[j].score })
	if len(scored) > n {
		scored = scored[:n]
	}
	return scored
}

// normalizeSiteURL defaults a bare host to https.
func normalizeSiteURL(siteURL string) string {
	siteURL = strings.TrimSpace(siteURL)
	if siteURL == "" {
		return siteURL
	}
	if !strings.Contains(siteURL, "://") {
		return "https://" + siteURL
	}
	return siteURL
}
