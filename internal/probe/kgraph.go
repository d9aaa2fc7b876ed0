package probe

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/prospect-scout/internal/model"
)

const kgraphEndpoint = "https://kgsearch.googleapis.com/v1/entities:search"

// KGraphProbe queries the Google Knowledge Graph Search API for an
// organization entity. Optional source: without an API key it reports
// nothing found.
type KGraphProbe struct {
	apiKey   string
	endpoint string
	client   *http.Client
}

// NewKGraphProbe creates the probe. An empty apiKey leaves it unconfigured.
func NewKGraphProbe(apiKey string, client *http.Client) *KGraphProbe {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &KGraphProbe{apiKey: apiKey, endpoint: kgraphEndpoint, client: client}
}

func (p *KGraphProbe) Name() string { return model.SourceKGraph }

type kgraphResponse struct {
	ItemListElement []struct {
		Result struct {
			Name        string   `json:"name"`
			Type        []string `json:"@type"`
			URL         string   `json:"url"`
			Description string   `json:"description"`
		} `json:"result"`
		ResultScore float64 `json:"resultScore"`
	} `json:"itemListElement"`
}

func (p *KGraphProbe) Discover(ctx context.Context, companyName string, hints model.Hints) (model.ProbeResult, error) {
	empty := model.ProbeResult{Source: model.SourceKGraph}
	if p.apiKey == "" || companyName == "" {
		return empty, nil
	}

	q := url.Values{}
	q.Set("query", companyName)
	q.Set("types", "Organization")
	q.Set("limit", "1")
	q.Set("key", p.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return empty, eris.Wrap(err, "building knowledge graph request")
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return empty, eris.Wrap(err, "knowledge graph search")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return empty, eris.Errorf("knowledge graph search returned status %d", resp.StatusCode)
	}

	var body kgraphResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return empty, eris.Wrap(err, "decoding knowledge graph response")
	}
	if len(body.ItemListElement) == 0 {
		return empty, nil
	}

	entity := body.ItemListElement[0].Result
	attrs := map[string]string{"entity_name": entity.Name}
	if entity.Description != "" {
		attrs["industry"] = entity.Description
	}
	// Result scores are unbounded; anything above ~500 is a strong match.
	confidence := body.ItemListElement[0].ResultScore / 1000
	if confidence > 0.8 {
		confidence = 0.8
	}
	if confidence < 0.2 {
		confidence = 0.2
	}
	return model.ProbeResult{
		Source:     model.SourceKGraph,
		URL:        entity.URL,
		Confidence: confidence,
		Attributes: attrs,
	}, nil
}
