package crawler

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScoreLink_KeywordInURL(t *testing.T) {
	t.Parallel()
	p := &ScoringProfile{Keywords: []string{"pricing"}}
	assert.Equal(t, 2.0, ScoreLink("https://acme.com/x-pricing-x", "", p))
}

func TestScoreLink_KeywordInAnchor(t *testing.T) {
	t.Parallel()
	p := &ScoringProfile{Keywords: []string{"pricing"}}
	assert.Equal(t, 1.5, ScoreLink("https://acme.com/x", "See Pricing", p))
}

func TestScoreLink_ValuablePathBonusAppliesOnce(t *testing.T) {
	t.Parallel()
	p := &ScoringProfile{ValuablePaths: []string{"/about", "/team"}}
	// Both valuable paths present, bonus still +3.0 flat.
	assert.Equal(t, 3.0, ScoreLink("https://acme.com/about/team", "", p))
}

func TestScoreLink_AvoidPathPenaltyStacks(t *testing.T) {
	t.Parallel()
	p := &ScoringProfile{
		Keywords:   []string{"platform"},
		AvoidPaths: []string{"/blog", "/careers"},
	}
	// +2.0 keyword, -1.0 per avoid path match.
	assert.Equal(t, 0.0, ScoreLink("https://acme.com/blog/careers/platform", "", p))
}

func TestScoreLink_LongURLPenalty(t *testing.T) {
	t.Parallel()
	p := &ScoringProfile{Keywords: []string{"about"}}
	long := "https://acme.com/about?" + strings.Repeat("x", 100)
	assert.Equal(t, 1.5, ScoreLink(long, "", p)) // 2.0 keyword - 0.5 length
}

func TestScoreLink_FlooredAtZero(t *testing.T) {
	t.Parallel()
	p := &ScoringProfile{AvoidPaths: []string{"/privacy"}}
	assert.Equal(t, 0.0, ScoreLink("https://acme.com/privacy", "", p))
}

func TestScoreLink_Deterministic(t *testing.T) {
	t.Parallel()
	p := DefaultProfile()
	url := "https://acme.com/products/pricing"
	anchor := "Products and Pricing"
	first := ScoreLink(url, anchor, p)
	for range 10 {
		assert.Equal(t, first, ScoreLink(url, anchor, p))
	}
}

func TestScoreLink_HighValueOutranksLowValue(t *testing.T) {
	t.Parallel()
	p := DefaultProfile()
	high := ScoreLink("https://acme.com/about", "", p)
	low := ScoreLink("https://acme.com/blog", "", p)
	assert.Greater(t, high, low)
}

func TestScoreLink_DefaultProfileSpotChecks(t *testing.T) {
	t.Parallel()
	p := DefaultProfile()

	// /pricing: keyword in URL (+2.0) plus valuable path (+3.0).
	assert.Equal(t, 5.0, ScoreLink("https://acme.com/pricing", "", p))

	// /blog with no keywords: floored at 0.
	assert.Equal(t, 0.0, ScoreLink("https://acme.com/blog", "", p))
}
