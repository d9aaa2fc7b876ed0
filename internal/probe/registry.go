package probe

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/prospect-scout/internal/model"
)

// RegistryProbe queries a corporate-registry search API (OpenCorporates
// compatible) for basic filing data. Optional source: without a base URL it
// reports nothing found.
type RegistryProbe struct {
	baseURL  string
	apiToken string
	client   *http.Client
}

// NewRegistryProbe creates the probe. An empty baseURL leaves it unconfigured.
func NewRegistryProbe(baseURL, apiToken string, client *http.Client) *RegistryProbe {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &RegistryProbe{baseURL: baseURL, apiToken: apiToken, client: client}
}

func (p *RegistryProbe) Name() string { return model.SourceRegistry }

type registryResponse struct {
	Results struct {
		Companies []struct {
			Company struct {
				Name             string `json:"name"`
				JurisdictionCode string `json:"jurisdiction_code"`
				CompanyNumber    string `json:"company_number"`
				Status           string `json:"current_status"`
				RegistryURL      string `json:"registry_url"`
				Address          string `json:"registered_address_in_full"`
			} `json:"company"`
		} `json:"companies"`
	} `json:"results"`
}

func (p *RegistryProbe) Discover(ctx context.Context, companyName string, hints model.Hints) (model.ProbeResult, error) {
	empty := model.ProbeResult{Source: model.SourceRegistry}
	if p.baseURL == "" || companyName == "" {
		return empty, nil
	}

	q := url.Values{}
	q.Set("q", companyName)
	if p.apiToken != "" {
		q.Set("api_token", p.apiToken)
	}
	if hints.Location != "" {
		q.Set("country_code", hints.Location)
	}
	reqURL := fmt.Sprintf("%s/companies/search?%s", p.baseURL, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return empty, eris.Wrap(err, "building registry request")
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return empty, eris.Wrap(err, "registry search")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return empty, eris.Errorf("registry search returned status %d", resp.StatusCode)
	}

	var body registryResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return empty, eris.Wrap(err, "decoding registry response")
	}
	if len(body.Results.Companies) == 0 {
		return empty, nil
	}

	// The search endpoint ranks by relevance; take the top hit.
	c := body.Results.Companies[0].Company
	attrs := map[string]string{"registered_name": c.Name}
	if c.JurisdictionCode != "" {
		attrs["jurisdiction"] = c.JurisdictionCode
	}
	if c.CompanyNumber != "" {
		attrs["company_number"] = c.CompanyNumber
	}
	if c.Status != "" {
		attrs["status"] = c.Status
	}
	if c.Address != "" {
		attrs["headquarters"] = c.Address
	}
	zap.L().Debug("registry hit",
		zap.String("company", companyName),
		zap.String("registered_name", c.Name),
	)
	return model.ProbeResult{
		Source:     model.SourceRegistry,
		URL:        c.RegistryURL,
		Confidence: 0.6,
		Attributes: attrs,
	}, nil
}
