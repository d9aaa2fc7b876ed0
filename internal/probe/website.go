package probe

import (
	"context"

	"github.com/sells-group/prospect-scout/internal/domains"
	"github.com/sells-group/prospect-scout/internal/model"
)

// WebsiteProbe discovers a company's website via candidate-domain generation
// and validation. This is the one required probe.
type WebsiteProbe struct {
	svc *domains.Service
}

// NewWebsiteProbe wraps a domain discovery service as a probe.
func NewWebsiteProbe(svc *domains.Service) *WebsiteProbe {
	return &WebsiteProbe{svc: svc}
}

func (p *WebsiteProbe) Name() string { return model.SourceWebsite }

// Discover never returns an error; a failed discovery comes back as a
// zero-confidence verdict with Method "none" or "error".
func (p *WebsiteProbe) Discover(ctx context.Context, companyName string, hints model.Hints) (model.ProbeResult, error) {
	verdict := p.svc.Discover(ctx, companyName, hints)
	return model.ProbeResult{
		Source:     model.SourceWebsite,
		URL:        verdict.URL,
		Confidence: verdict.Confidence,
		Website:    &verdict,
	}, nil
}
