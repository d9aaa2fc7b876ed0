package main

import (
	"context"
	"net/http"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/prospect-scout/internal/crawler"
	"github.com/sells-group/prospect-scout/internal/discovery"
	"github.com/sells-group/prospect-scout/internal/domains"
	"github.com/sells-group/prospect-scout/internal/probe"
	"github.com/sells-group/prospect-scout/internal/research"
	"github.com/sells-group/prospect-scout/internal/resilience"
	"github.com/sells-group/prospect-scout/internal/store"
)

// scoutEnv holds the initialized store and services shared by the
// discover/crawl/analyze/serve commands.
type scoutEnv struct {
	Store        store.Store
	Orchestrator *discovery.Orchestrator
	Crawler      research.SiteCrawler
	Research     *research.Service
}

// Close releases resources held by the environment.
func (e *scoutEnv) Close() {
	if e.Store != nil {
		_ = e.Store.Close()
	}
}

// initStore opens the configured cache backend.
func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, nil)
	case "sqlite", "":
		return store.NewSQLite(cfg.Store.DatabaseURL)
	case "memory":
		return store.NewMemory(), nil
	default:
		return nil, eris.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

// initEnv sets up the store, probes, orchestrator, crawler, and research
// service. Callers should defer env.Close().
func initEnv(ctx context.Context) (*scoutEnv, error) {
	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}

	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}

	validator := domains.NewValidator(
		domains.WithValidateTimeout(time.Duration(cfg.Discovery.ValidateTimeoutMS) * time.Millisecond),
	)
	siteService := domains.NewService(validator,
		domains.WithMaxValidations(cfg.Discovery.MaxValidations),
	)

	var linkedinClient *http.Client
	if cfg.Probes.LinkedInEnabled {
		linkedinClient = &http.Client{Timeout: 10 * time.Second}
	}

	registry := probe.NewRegistry(
		probe.NewWebsiteProbe(siteService),
		probe.NewLinkedInProbe(linkedinClient),
		probe.NewRegistryProbe(cfg.Probes.RegistryBaseURL, cfg.Probes.RegistryAPIToken, nil),
		probe.NewKGraphProbe(cfg.Probes.KGraphAPIKey, nil),
	)

	breakers := resilience.NewSourceBreakers(resilience.BreakerConfig{
		FailureThreshold: cfg.Discovery.BreakerThreshold,
		ResetTimeout:     time.Duration(cfg.Discovery.BreakerResetSecs) * time.Second,
	})

	orch := discovery.NewOrchestrator(registry, st,
		discovery.WithCacheTTL(cfg.Discovery.CacheTTL()),
		discovery.WithBreakers(breakers),
	)

	profile, err := loadProfile()
	if err != nil {
		_ = st.Close()
		return nil, err
	}

	fetcher := crawler.NewFetcher(crawler.FetchOptions{
		UserAgent:      cfg.Crawl.UserAgent,
		Timeout:        cfg.Crawl.FetchTimeout(),
		RequestsPerSec: cfg.Crawl.RequestsPerSec,
		MaxBodyBytes:   cfg.Crawl.MaxBodyBytes,
	})
	robots := crawler.NewRobotsChecker(nil, cfg.Crawl.UserAgent)
	crawl := research.NewCachedCrawler(
		crawler.NewCrawler(fetcher, robots, profile), st, cfg.Discovery.CacheTTL())

	return &scoutEnv{
		Store:        st,
		Orchestrator: orch,
		Crawler:      crawl,
		Research:     research.NewService(orch, crawl, nil),
	}, nil
}

func loadProfile() (*crawler.ScoringProfile, error) {
	if cfg.Crawl.ProfilePath == "" {
		return nil, nil
	}
	p, err := crawler.LoadProfile(cfg.Crawl.ProfilePath)
	if err != nil {
		return nil, eris.Wrap(err, "load scoring profile")
	}
	return p, nil
}
