package domains

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/prospect-scout/internal/model"
	"github.com/sells-group/prospect-scout/internal/resilience"
)

// maxValidateBodyBytes limits how much of a candidate page is inspected.
const maxValidateBodyBytes = 512 * 1024

// Resolver resolves a hostname to addresses. *net.Resolver satisfies it.
type Resolver interface {
	LookupHost(ctx context.Context, host string) ([]string, error)
}

// Validator decides whether one candidate domain is a legitimate company
// website. Checks short-circuit on first failure: hostname parse, DNS
// resolution, HTTP fetch, content inspection.
type Validator struct {
	client   *http.Client
	resolver Resolver
	retry    resilience.RetryConfig
	timeout  time.Duration
}

// ValidatorOption configures a Validator.
type ValidatorOption func(*Validator)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(c *http.Client) ValidatorOption {
	return func(v *Validator) { v.client = c }
}

// WithResolver overrides the default DNS resolver.
func WithResolver(r Resolver) ValidatorOption {
	return func(v *Validator) { v.resolver = r }
}

// WithValidateTimeout sets the per-candidate timeout. Non-positive values
// keep the default.
func WithValidateTimeout(d time.Duration) ValidatorOption {
	return func(v *Validator) {
		if d > 0 {
			v.timeout = d
		}
	}
}

// NewValidator creates a Validator with sensible defaults.
func NewValidator(opts ...ValidatorOption) *Validator {
	v := &Validator{
		client: &http.Client{
			Timeout: 10 * time.Second,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: 5 * time.Second,
				}).DialContext,
				TLSHandshakeTimeout: 5 * time.Second,
			},
		},
		resolver: net.DefaultResolver,
		retry: resilience.RetryConfig{
			MaxAttempts:    2,
			InitialBackoff: 250 * time.Millisecond,
			MaxBackoff:     2 * time.Second,
		},
		timeout: 10 * time.Second,
	}
	for _, o := range opts {
		o(v)
	}
	return v
}

var titleRe = regexp.MustCompile(`(?is)<title[^>]*>([^<]+)</title>`)

var businessIndicators = []string{
	"about", "contact", "products", "services", "pricing", "solutions",
	"software", "saas", "platform", "enterprise", "customers",
}

var parkedPhrases = []string{
	"domain for sale", "this domain is for sale", "parked domain",
	"domain parking", "buy this domain", "domain expired",
}

// Validate checks one candidate URL against the company name and returns a
// verdict. A rejected candidate is reported as Valid=false, never an error;
// only transport-level retries happen internally.
func (v *Validator) Validate(ctx context.Context, candidateURL, companyName string) model.DomainVerdict {
	invalid := model.DomainVerdict{URL: candidateURL, Method: model.MethodDirect}

	parsed, err := url.Parse(candidateURL)
	if err != nil || parsed.Hostname() == "" {
		return invalid
	}

	ctx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()

	if _, err := v.resolver.LookupHost(ctx, parsed.Hostname()); err != nil {
		zap.L().Debug("domain did not resolve",
			zap.String("host", parsed.Hostname()),
			zap.Error(err),
		)
		return invalid
	}

	finalURL, body, err := v.fetch(ctx, candidateURL)
	if err != nil {
		zap.L().Debug("candidate fetch failed",
			zap.String("url", candidateURL),
			zap.Error(err),
		)
		return invalid
	}

	verdict := scoreContent(body, companyName)
	verdict.URL = finalURL
	verdict.Method = model.MethodDirect
	if !verdict.Valid {
		return verdict
	}

	verdict.DomainVerified = true
	verdict.SSLValid = strings.HasPrefix(finalURL, "https://")
	return verdict
}

// fetch issues the GET with redirect following and bounded retries on
// transient failures. Returns the final URL after redirects.
func (v *Validator) fetch(ctx context.Context, rawURL string) (string, string, error) {
	type page struct {
		finalURL string
		body     string
	}

	p, err := resilience.DoVal(ctx, v.retry, func(ctx context.Context) (page, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return page{}, eris.Wrap(err, "domains: create request")
		}
		req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; ProspectScout/1.0)")
		req.Header.Set("Accept", "text/html,application/xhtml+xml")

		resp, err := v.client.Do(req)
		if err != nil {
			return page{}, eris.Wrap(err, "domains: fetch")
		}
		defer func() { _ = resp.Body.Close() }()

		if resp.StatusCode != http.StatusOK {
			err := eris.Errorf("domains: status %d", resp.StatusCode)
			if resilience.IsTransientHTTPStatus(resp.StatusCode) {
				return page{}, resilience.Transient(err, resp.StatusCode)
			}
			return page{}, err
		}

		body, err := io.ReadAll(io.LimitReader(resp.Body, maxValidateBodyBytes))
		if err != nil {
			return page{}, eris.Wrap(err, "domains: read body")
		}

		return page{finalURL: resp.Request.URL.String(), body: string(body)}, nil
	})
	if err != nil {
		return "", "", err
	}
	return p.finalURL, p.body, nil
}

// scoreContent computes the content-match confidence for a candidate page.
// A parked/for-sale page is invalid regardless of other signals. Otherwise
// the verdict is valid when confidence reaches 0.3 and the company name
// matched somewhere. The name is matched in normalized form, so a company
// queried under its legal name still matches a site that omits the suffix.
func scoreContent(body, companyName string) model.DomainVerdict {
	bodyLower := strings.ToLower(body)
	nameLower := NormalizeName(companyName)
	if nameLower == "" {
		nameLower = strings.ToLower(strings.TrimSpace(companyName))
	}

	for _, phrase := range parkedPhrases {
		if strings.Contains(bodyLower, phrase) {
			return model.DomainVerdict{
				Evidence: []string{"appears to be a parked or for-sale domain"},
			}
		}
	}

	var (
		confidence float64
		evidence   []string
		nameMatch  bool
	)

	if m := titleRe.FindStringSubmatch(body); m != nil && strings.Contains(strings.ToLower(m[1]), nameLower) {
		confidence += 0.4
		evidence = append(evidence, "company name found in page title")
		nameMatch = true
	}

	if strings.Contains(bodyLower, nameLower) {
		confidence += 0.3
		evidence = append(evidence, "company name found in page content")
		nameMatch = true
	}

	var found []string
	for _, ind := range businessIndicators {
		if strings.Contains(bodyLower, ind) {
			found = append(found, ind)
		}
	}
	if len(found) > 0 {
		confidence += min(0.2, float64(len(found))*0.05)
		sample := found
		if len(sample) > 3 {
			sample = sample[:3]
		}
		evidence = append(evidence, fmt.Sprintf("business indicators found: %s", strings.Join(sample, ", ")))
	}

	if confidence > 1.0 {
		confidence = 1.0
	}

	return model.DomainVerdict{
		Valid:       confidence >= 0.3 && nameMatch,
		Confidence:  confidence,
		Evidence:    evidence,
		NameMatched: nameMatch,
	}
}
