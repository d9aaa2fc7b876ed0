// Package research combines discovery and crawling into a single
// analysis flow and hands the combined evidence to an external scorer.
package research

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/prospect-scout/internal/model"
)

// Discoverer resolves a company to a discovery result. Satisfied by
// discovery.Orchestrator.
type Discoverer interface {
	Discover(ctx context.Context, req model.DiscoveryRequest) (*model.DiscoveryResult, error)
}

// SiteCrawler runs a priority crawl of one website. Satisfied by
// crawler.Crawler.
type SiteCrawler interface {
	Crawl(ctx context.Context, siteURL string, maxPages int, keywords []string) (*model.CrawlResult, error)
}

// FitAssessment is an external scorer's judgment of one analyzed company.
type FitAssessment struct {
	Score     float64  `json:"score"`
	Rationale string   `json:"rationale,omitempty"`
	Signals   []string `json:"signals,omitempty"`
}

// Scorer judges an analysis result. Implementations live outside this
// module; a nil Scorer skips assessment entirely.
type Scorer interface {
	Score(ctx context.Context, analysis *AnalysisResult) (*FitAssessment, error)
}

// AnalysisResult is the combined outcome of discovering a company and
// crawling its resolved website.
type AnalysisResult struct {
	CompanyName string                 `json:"company_name"`
	Discovery   *model.DiscoveryResult `json:"discovery"`
	Crawl       *model.CrawlResult     `json:"crawl,omitempty"`
	CrawlError  string                 `json:"crawl_error,omitempty"`
	Assessment  *FitAssessment         `json:"assessment,omitempty"`
	Duration    time.Duration          `json:"duration"`
}

// AnalyzeOptions tunes the crawl half of an analysis.
type AnalyzeOptions struct {
	MaxPages int
	Keywords []string
}

// Service runs the full analyze flow: discover, crawl the discovered
// website, score.
type Service struct {
	discoverer Discoverer
	crawler    SiteCrawler
	scorer     Scorer
}

// NewService creates a research Service. scorer may be nil.
func NewService(discoverer Discoverer, crawler SiteCrawler, scorer Scorer) *Service {
	return &Service{discoverer: discoverer, crawler: crawler, scorer: scorer}
}

// Analyze discovers the company, crawls its website when one was found, and
// applies the scorer. A failed crawl degrades to a discovery-only result
// with CrawlError set; only discovery failure fails the analysis.
func (s *Service) Analyze(ctx context.Context, req model.DiscoveryRequest, opts AnalyzeOptions) (*AnalysisResult, error) {
	start := time.Now()
	log := zap.L().With(zap.String("company", req.CompanyName))

	disc, err := s.discoverer.Discover(ctx, req)
	if err != nil {
		return nil, eris.Wrapf(err, "analyze %q: discovery", req.CompanyName)
	}

	analysis := &AnalysisResult{
		CompanyName: req.CompanyName,
		Discovery:   disc,
	}

	if site := disc.WebsiteURL(); site != "" {
		crawlRes, err := s.crawler.Crawl(ctx, site, opts.MaxPages, opts.Keywords)
		if err != nil {
			log.Warn("analyze: crawl failed, keeping discovery result",
				zap.String("site", site), zap.Error(err))
			analysis.CrawlError = err.Error()
		} else {
			analysis.Crawl = crawlRes
		}
	} else {
		log.Info("analyze: no website discovered, skipping crawl")
	}

	if s.scorer != nil {
		assessment, err := s.scorer.Score(ctx, analysis)
		if err != nil {
			return nil, eris.Wrapf(err, "analyze %q: score", req.CompanyName)
		}
		analysis.Assessment = assessment
	}

	analysis.Duration = time.Since(start)
	return analysis, nil
}
