package probe

import (
	"context"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/prospect-scout/internal/domains"
	"github.com/sells-group/prospect-scout/internal/model"
)

const linkedinBase = "https://www.linkedin.com/company/"

// LinkedInProbe guesses the company's LinkedIn slug and checks that the page
// exists. Optional source: without an HTTP client it reports nothing found.
type LinkedInProbe struct {
	client  *http.Client
	baseURL string
}

// NewLinkedInProbe creates the probe. A nil client leaves the probe
// unconfigured, which makes every lookup come back empty.
func NewLinkedInProbe(client *http.Client) *LinkedInProbe {
	return &LinkedInProbe{client: client, baseURL: linkedinBase}
}

func (p *LinkedInProbe) Name() string { return model.SourceLinkedIn }

func (p *LinkedInProbe) Discover(ctx context.Context, companyName string, hints model.Hints) (model.ProbeResult, error) {
	empty := model.ProbeResult{Source: model.SourceLinkedIn}
	if p.client == nil {
		return empty, nil
	}

	slug := strings.ReplaceAll(domains.NormalizeName(companyName), " ", "-")
	if slug == "" {
		return empty, nil
	}
	pageURL := p.baseURL + slug

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, pageURL, nil)
	if err != nil {
		return empty, nil
	}
	resp, err := p.client.Do(req)
	if err != nil {
		zap.L().Debug("linkedin lookup failed", zap.String("url", pageURL), zap.Error(err))
		return empty, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return empty, nil
	}
	return model.ProbeResult{
		Source:     model.SourceLinkedIn,
		URL:        pageURL,
		Confidence: 0.5,
		Attributes: map[string]string{"linkedin_slug": slug},
	}, nil
}
