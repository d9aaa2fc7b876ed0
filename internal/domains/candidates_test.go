package domains

import (
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeName(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"Acme Software Inc":  "acme software",
		"Acme Software Inc.": "acme software",
		"Widgets LLC":        "widgets",
		"Foo Bar Corp":       "foo bar",
		"Foo Holdings Co.":   "foo holdings",
		"Nested Corp Inc":    "nested",
		"  Spaced   Out  ":   "spaced out",
		"plain":              "plain",
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizeName(in), "input %q", in)
	}
}

func TestNormalizeNameIdempotent(t *testing.T) {
	t.Parallel()

	for _, name := range []string{
		"Acme Software Inc", "Widgets LLC", "Foo Bar Corp Ltd", "x", "Data & Co.",
	} {
		once := NormalizeName(name)
		assert.Equal(t, once, NormalizeName(once), "normalization not idempotent for %q", name)
	}
}

func TestGenerateCandidatesProperties(t *testing.T) {
	t.Parallel()

	for _, name := range []string{
		"Acme Software Inc",
		"Blue Banded Bee Holdings Corporation",
		"x",
		"Data-Driven Analytics & Consulting Partners LLC",
	} {
		candidates := GenerateCandidates(name)
		require.NotEmpty(t, candidates, "no candidates for %q", name)
		assert.LessOrEqual(t, len(candidates), 25)

		seen := make(map[string]bool)
		for _, c := range candidates {
			assert.False(t, seen[c.URL], "duplicate candidate %s", c.URL)
			seen[c.URL] = true

			u, err := url.Parse(c.URL)
			require.NoError(t, err, "candidate %s is not a valid URL", c.URL)
			assert.Equal(t, "https", u.Scheme)

			host := u.Hostname()
			ok := false
			for _, tld := range tlds {
				if strings.HasSuffix(host, tld) {
					ok = true
					break
				}
			}
			assert.True(t, ok, "candidate %s has unexpected TLD", c.URL)
		}
	}
}

func TestGenerateCandidatesShapes(t *testing.T) {
	t.Parallel()

	urls := func(name string) map[string]bool {
		m := make(map[string]bool)
		for _, c := range GenerateCandidates(name) {
			m[c.URL] = true
		}
		return m
	}

	acme := urls("Acme Inc")
	assert.True(t, acme["https://acme.com"])
	assert.True(t, acme["https://www.acme.com"])
	assert.True(t, acme["https://acme.io"])
	assert.True(t, acme["https://acmesoftware.com"], "software suffix variant missing")
	assert.True(t, acme["https://acmeapp.com"], "app suffix variant missing")

	multi := urls("Blue Bee Inc")
	assert.True(t, multi["https://bluebee.com"])
	assert.True(t, multi["https://blue-bee.com"], "hyphenated variant missing")
	assert.True(t, multi["https://www.blue-bee.io"])

	// Names already containing "software" get no suffix variants.
	soft := urls("Acme Software")
	assert.False(t, soft["https://acmesoftwaresoftware.com"])

	// First candidate is the bare .com pattern.
	first := GenerateCandidates("Acme Inc")[0]
	assert.Equal(t, "https://acme.com", first.URL)
}

func TestGenerateCandidatesEmptyName(t *testing.T) {
	t.Parallel()

	assert.Nil(t, GenerateCandidates(""))
	assert.Nil(t, GenerateCandidates("  !!!  "))
}
