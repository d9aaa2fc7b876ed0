package domains

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const acmePage = `<html><head><title>Acme Software - Platform</title></head>
<body>Acme Software builds an enterprise SaaS platform.
<a href="/about">About</a> <a href="/contact">Contact</a> <a href="/pricing">Pricing</a>
</body></html>`

func TestValidate_MatchingCompanyPage(t *testing.T) {
	t.Parallel()

	v := fakeWeb(map[string]string{"acmesoftware.com": acmePage})
	verdict := v.Validate(context.Background(), "https://acmesoftware.com", "Acme Software")

	require.True(t, verdict.Valid)
	assert.GreaterOrEqual(t, verdict.Confidence, 0.7)
	assert.True(t, verdict.NameMatched)
	assert.True(t, verdict.DomainVerified)
	assert.True(t, verdict.SSLValid)
	assert.Equal(t, "https://acmesoftware.com", verdict.URL)
	assert.NotEmpty(t, verdict.Evidence)
}

func TestValidate_LegalSuffixStillMatches(t *testing.T) {
	t.Parallel()

	// The site says "Acme Software"; the query carries the legal suffix.
	v := fakeWeb(map[string]string{"acmesoftware.com": acmePage})
	verdict := v.Validate(context.Background(), "https://acmesoftware.com", "Acme Software Inc")

	require.True(t, verdict.Valid)
	assert.True(t, verdict.NameMatched)
	assert.GreaterOrEqual(t, verdict.Confidence, 0.7)
}

func TestValidate_ParkedDomainNeverValid(t *testing.T) {
	t.Parallel()

	// Even with the company name and indicator words present, a parked
	// phrase disqualifies the page outright.
	page := `<html><title>Acme Software</title><body>
Acme Software about contact products pricing.
This domain is for sale — contact the broker.</body></html>`

	v := fakeWeb(map[string]string{"acme.com": page})
	verdict := v.Validate(context.Background(), "https://acme.com", "Acme Software")

	assert.False(t, verdict.Valid)
	assert.Zero(t, verdict.Confidence)
	assert.Contains(t, verdict.Evidence[0], "parked")
}

func TestValidate_NameMatchRequired(t *testing.T) {
	t.Parallel()

	// Business indicators alone cannot validate a page without the name.
	page := `<html><title>Totally Different Site</title><body>
about contact products pricing solutions platform enterprise</body></html>`

	v := fakeWeb(map[string]string{"other.com": page})
	verdict := v.Validate(context.Background(), "https://other.com", "Acme Software")

	assert.False(t, verdict.Valid)
	assert.False(t, verdict.NameMatched)
}

func TestValidate_DNSFailure(t *testing.T) {
	t.Parallel()

	v := NewValidator(
		WithHTTPClient(&http.Client{Transport: &hostTransport{}}),
		WithResolver(&fakeResolver{dead: map[string]bool{"ghost.com": true}}),
	)
	verdict := v.Validate(context.Background(), "https://ghost.com", "Ghost")
	assert.False(t, verdict.Valid)
}

func TestValidate_BadURL(t *testing.T) {
	t.Parallel()

	v := fakeWeb(nil)
	assert.False(t, v.Validate(context.Background(), "://not-a-url", "Acme").Valid)
	assert.False(t, v.Validate(context.Background(), "", "Acme").Valid)
}

func TestValidate_Non200(t *testing.T) {
	t.Parallel()

	v := fakeWeb(map[string]string{}) // every host 404s
	verdict := v.Validate(context.Background(), "https://acme.com", "Acme")
	assert.False(t, verdict.Valid)
}

func TestValidate_RetriesTransientStatus(t *testing.T) {
	t.Parallel()

	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(w, `<html><title>Acme</title><body>Acme about pricing products</body></html>`)
	}))
	defer srv.Close()

	v := NewValidator(
		WithHTTPClient(srv.Client()),
		WithResolver(&fakeResolver{}),
	)
	verdict := v.Validate(context.Background(), srv.URL, "Acme")

	assert.Equal(t, 2, calls, "first attempt should be retried after 503")
	assert.True(t, verdict.Valid)
}

func TestWithValidateTimeout(t *testing.T) {
	t.Parallel()

	v := NewValidator(WithValidateTimeout(250 * time.Millisecond))
	assert.Equal(t, 250*time.Millisecond, v.timeout)

	// Non-positive values keep the default.
	v = NewValidator(WithValidateTimeout(0))
	assert.Equal(t, 10*time.Second, v.timeout)
}

func TestValidate_TimeoutAbortsSlowCandidate(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		fmt.Fprint(w, `<html><title>Acme</title><body>Acme about pricing</body></html>`)
	}))
	defer srv.Close()

	v := NewValidator(
		WithHTTPClient(srv.Client()),
		WithResolver(&fakeResolver{}),
		WithValidateTimeout(20*time.Millisecond),
	)
	verdict := v.Validate(context.Background(), srv.URL, "Acme")
	assert.False(t, verdict.Valid)
}

func TestScoreContent_TitleAndBodyWeights(t *testing.T) {
	t.Parallel()

	titleOnly := scoreContent(`<title>Acme</title><body>nothing else</body>`, "Acme")
	// Title match implies body containment is also checked against raw HTML;
	// the name inside <title> is part of the body text too.
	assert.True(t, titleOnly.NameMatched)
	assert.GreaterOrEqual(t, titleOnly.Confidence, 0.7)

	bodyOnly := scoreContent(`<title>Welcome</title><body>Acme builds things</body>`, "Acme")
	assert.True(t, bodyOnly.NameMatched)
	assert.InDelta(t, 0.3, bodyOnly.Confidence, 0.001)
	assert.True(t, bodyOnly.Valid)

	nothing := scoreContent(`<title>Welcome</title><body>unrelated</body>`, "Acme")
	assert.False(t, nothing.Valid)
}

func TestScoreContent_IndicatorCap(t *testing.T) {
	t.Parallel()

	// All eleven indicators present: the indicator contribution caps at 0.2.
	body := `<title>Acme</title><body>Acme about contact products services pricing
solutions software saas platform enterprise customers</body>`
	v := scoreContent(body, "Acme")
	assert.LessOrEqual(t, v.Confidence, 1.0)
	assert.InDelta(t, 0.4+0.3+0.2, v.Confidence, 0.001)
}
