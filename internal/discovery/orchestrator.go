// Package discovery coordinates probes across sources, reconciles their
// answers, and caches the aggregated result per company.
package discovery

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/prospect-scout/internal/domains"
	"github.com/sells-group/prospect-scout/internal/model"
	"github.com/sells-group/prospect-scout/internal/probe"
	"github.com/sells-group/prospect-scout/internal/resilience"
	"github.com/sells-group/prospect-scout/internal/store"
)

const defaultCacheTTL = 24 * time.Hour

// Orchestrator runs all requested probes for a company under one deadline and
// merges their outputs into a DiscoveryResult. One company's failure never
// propagates past its own result.
type Orchestrator struct {
	registry *probe.Registry
	store    store.Store
	breakers *resilience.SourceBreakers
	cacheTTL time.Duration
	now      func() time.Time
}

// Option configures the Orchestrator.
type Option func(*Orchestrator)

// WithCacheTTL overrides the result cache lifetime.
func WithCacheTTL(ttl time.Duration) Option {
	return func(o *Orchestrator) {
		if ttl > 0 {
			o.cacheTTL = ttl
		}
	}
}

// WithBreakers installs per-source circuit breakers.
func WithBreakers(b *resilience.SourceBreakers) Option {
	return func(o *Orchestrator) { o.breakers = b }
}

// NewOrchestrator creates an Orchestrator. The store may be nil, which
// disables caching.
func NewOrchestrator(registry *probe.Registry, st store.Store, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		registry: registry,
		store:    st,
		cacheTTL: defaultCacheTTL,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Discover resolves a company through every requested source. The only error
// condition is an empty company name; all probe failures, timeouts, and
// panics are folded into the result's metadata instead.
func (o *Orchestrator) Discover(ctx context.Context, req model.DiscoveryRequest) (result *model.DiscoveryResult, err error) {
	if strings.TrimSpace(req.CompanyName) == "" {
		return nil, eris.New("company name is required")
	}

	normalized := domains.NormalizeName(req.CompanyName)
	log := zap.L().With(
		zap.String("request_id", req.RequestID),
		zap.String("company", req.CompanyName),
	)

	result = &model.DiscoveryResult{
		CompanyName:    req.CompanyName,
		NormalizedName: normalized,
		Timestamp:      o.now().UTC(),
		Metadata:       model.NewDiscoveryMetadata(),
	}

	// Anything that slips past per-probe containment still must not take the
	// caller down.
	defer func() {
		if r := recover(); r != nil {
			log.Error("discovery panicked", zap.Any("panic", r))
			result.Metadata.FailedSources["orchestrator"] = eris.Errorf("panic: %v", r).Error()
		}
	}()

	if cached := o.lookupCache(ctx, normalized); cached != nil {
		log.Info("discovery served from cache",
			zap.Duration("age", cached.Age(o.now())),
		)
		cached.Metadata.CacheHit = true
		return cached, nil
	}

	timeout := req.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := o.now()
	o.runProbes(runCtx, req, result)
	result.Metadata.Duration = o.now().Sub(start)

	result.Conflicts = DetectConflicts(result)
	result.CrossScore = CrossValidationScore(result)

	if runCtx.Err() != nil {
		result.Metadata.FailedSources["timeout"] = "discovery deadline exceeded"
	}

	o.writeCache(ctx, result, log)

	log.Info("discovery complete",
		zap.String("website", result.WebsiteURL()),
		zap.Int("sources_attempted", result.Metadata.SourcesAttempted),
		zap.Int("conflicts", len(result.Conflicts)),
		zap.Duration("duration", result.Metadata.Duration),
	)
	return result, nil
}

// runProbes fans out over the requested sources and collects every outcome
// into the result. Probes run concurrently; each is individually shielded
// against errors, panics, and open breakers.
func (o *Orchestrator) runProbes(ctx context.Context, req model.DiscoveryRequest, result *model.DiscoveryResult) {
	sources := req.Sources()
	hints := req.Hints()

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	for _, source := range sources {
		p := o.registry.Get(source)

		mu.Lock()
		result.Metadata.SourcesAttempted++
		if p == nil {
			result.Metadata.FailedSources[source] = "no probe registered"
			mu.Unlock()
			continue
		}
		result.Metadata.CallsMade[source]++
		mu.Unlock()

		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := o.runProbe(ctx, p, req.CompanyName, hints)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.Metadata.FailedSources[source] = err.Error()
				return
			}
			result.Metadata.SuccessfulSources = append(result.Metadata.SuccessfulSources, source)
			result.Probes = append(result.Probes, res)
			if res.Website != nil && res.Website.URL != "" && result.Website == nil {
				result.Website = res.Website
			}
		}()
	}
	wg.Wait()
}

// runProbe executes one probe behind its circuit breaker, converting panics
// to errors and abandoning the call once the deadline passes.
func (o *Orchestrator) runProbe(ctx context.Context, p probe.Probe, companyName string, hints model.Hints) (model.ProbeResult, error) {
	type outcome struct {
		res model.ProbeResult
		err error
	}
	ch := make(chan outcome, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				zap.L().Error("probe panicked",
					zap.String("source", p.Name()),
					zap.Any("panic", r),
				)
				ch <- outcome{err: eris.Errorf("probe %s panicked: %v", p.Name(), r)}
			}
		}()
		res, err := o.executeProbe(ctx, p, companyName, hints)
		ch <- outcome{res: res, err: err}
	}()

	select {
	case <-ctx.Done():
		return model.ProbeResult{}, eris.Wrap(ctx.Err(), "timeout")
	case out := <-ch:
		return out.res, out.err
	}
}

func (o *Orchestrator) executeProbe(ctx context.Context, p probe.Probe, companyName string, hints model.Hints) (model.ProbeResult, error) {
	if o.breakers == nil {
		return p.Discover(ctx, companyName, hints)
	}
	var res model.ProbeResult
	err := o.breakers.Get(p.Name()).Execute(ctx, func(ctx context.Context) error {
		var perr error
		res, perr = p.Discover(ctx, companyName, hints)
		return perr
	})
	return res, err
}

func (o *Orchestrator) lookupCache(ctx context.Context, normalized string) *model.DiscoveryResult {
	if o.store == nil {
		return nil
	}
	cached, err := o.store.GetDiscovery(ctx, normalized)
	if err != nil {
		zap.L().Warn("discovery cache read failed", zap.Error(err))
		return nil
	}
	if cached == nil || cached.Age(o.now()) >= o.cacheTTL {
		return nil
	}
	return cached
}

// writeCache persists the result only when it carries usable data, so a
// transient outage never poisons the cache for a full TTL.
func (o *Orchestrator) writeCache(ctx context.Context, result *model.DiscoveryResult, log *zap.Logger) {
	if o.store == nil || !result.HasSufficientData() {
		return
	}
	if err := o.store.PutDiscovery(ctx, result, o.cacheTTL); err != nil {
		log.Warn("discovery cache write failed", zap.Error(err))
	}
}
