package domains

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/prospect-scout/internal/model"
)

// defaultMaxValidations bounds concurrent in-flight candidate validations.
const defaultMaxValidations = 10

// SearchStrategy is the pluggable search-engine fallback used when no
// generated candidate validates. Implementations return a zero-confidence
// verdict rather than an error when nothing is found.
type SearchStrategy interface {
	Search(ctx context.Context, companyName string, hints model.Hints) (model.DomainVerdict, error)
}

// Service discovers a company's website by generating candidate domains and
// validating them concurrently.
type Service struct {
	validator      *Validator
	searcher       SearchStrategy // optional
	maxValidations int
}

// ServiceOption configures the Service.
type ServiceOption func(*Service)

// WithSearchStrategy installs a search-engine fallback.
func WithSearchStrategy(s SearchStrategy) ServiceOption {
	return func(svc *Service) { svc.searcher = s }
}

// WithMaxValidations overrides the concurrent validation cap.
func WithMaxValidations(n int) ServiceOption {
	return func(svc *Service) {
		if n > 0 {
			svc.maxValidations = n
		}
	}
}

// NewService creates a website discovery Service.
func NewService(validator *Validator, opts ...ServiceOption) *Service {
	svc := &Service{
		validator:      validator,
		maxValidations: defaultMaxValidations,
	}
	for _, o := range opts {
		o(svc)
	}
	return svc
}

// Discover finds the best website for a company. Failures are converted into
// "none"/"error" verdicts so one bad company never aborts a batch.
func (s *Service) Discover(ctx context.Context, companyName string, hints model.Hints) model.DomainVerdict {
	log := zap.L().With(zap.String("company", companyName))

	verdict := s.tryDirect(ctx, companyName)
	if verdict.URL != "" && verdict.Valid {
		log.Info("website found via direct domain",
			zap.String("url", verdict.URL),
			zap.Float64("confidence", verdict.Confidence),
		)
		return verdict
	}

	if s.searcher != nil {
		found, err := s.searcher.Search(ctx, companyName, hints)
		if err != nil {
			log.Warn("search fallback failed", zap.Error(err))
		} else if found.URL != "" {
			found.Method = model.MethodSearch
			log.Info("website found via search", zap.String("url", found.URL))
			return found
		}
	}

	log.Info("no website found")
	return model.DomainVerdict{
		Evidence: []string{"no website found for " + companyName},
		Method:   model.MethodNone,
	}
}

// tryDirect validates all generated candidates under the concurrency cap and
// picks the best valid verdict.
func (s *Service) tryDirect(ctx context.Context, companyName string) model.DomainVerdict {
	candidates := GenerateCandidates(companyName)
	if len(candidates) == 0 {
		return model.DomainVerdict{Method: model.MethodNone}
	}

	// Verdicts indexed by candidate position so ties break on generation
	// order regardless of completion order.
	verdicts := make([]model.DomainVerdict, len(candidates))
	var mu sync.Mutex

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(s.maxValidations)

	for i, c := range candidates {
		g.Go(func() error {
			v := s.validator.Validate(gCtx, c.URL, companyName)
			mu.Lock()
			verdicts[i] = v
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	best := -1
	bestScore := 0.0
	for i, v := range verdicts {
		if !v.Valid {
			continue
		}
		if score := compositeScore(v); best < 0 || score > bestScore {
			best = i
			bestScore = score
		}
	}

	if best < 0 {
		return model.DomainVerdict{
			Evidence: []string{"no valid domains found in direct check"},
			Method:   model.MethodDirect,
		}
	}
	return verdicts[best]
}

// compositeScore ranks valid verdicts: confidence plus bonuses for a .com
// TLD, confirmed TLS, and a www prefix.
func compositeScore(v model.DomainVerdict) float64 {
	score := v.Confidence
	if strings.HasSuffix(hostOf(v.URL), ".com") {
		score += 0.1
	}
	if v.SSLValid {
		score += 0.05
	}
	if strings.HasPrefix(hostOf(v.URL), "www.") {
		score += 0.05
	}
	return score
}

func hostOf(rawURL string) string {
	rest := rawURL
	if i := strings.Index(rest, "://"); i >= 0 {
		rest = rest[i+3:]
	}
	if i := strings.IndexByte(rest, '/'); i >= 0 {
		rest = rest[:i]
	}
	return rest
}
