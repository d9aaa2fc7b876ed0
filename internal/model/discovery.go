// Package model defines the data types shared across discovery and crawling.
package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Source names recognized by the orchestrator.
const (
	SourceWebsite  = "website"
	SourceLinkedIn = "linkedin"
	SourceRegistry = "registry"
	SourceKGraph   = "kgraph"
)

// DiscoveryRequest describes one company discovery call. Immutable once built.
type DiscoveryRequest struct {
	RequestID       string        `json:"request_id"`
	CompanyName     string        `json:"company_name"`
	IndustryHint    string        `json:"industry_hint,omitempty"`
	LocationHint    string        `json:"location_hint,omitempty"`
	CompanyTypeHint string        `json:"company_type_hint,omitempty"` // "software", "saas", ...
	Timeout         time.Duration `json:"timeout"`
	RequiredSources []string      `json:"required_sources"`
	OptionalSources []string      `json:"optional_sources"`
}

// NewDiscoveryRequest builds a request with defaults: 30s deadline, website
// required, the remaining probes optional.
func NewDiscoveryRequest(companyName string) DiscoveryRequest {
	return DiscoveryRequest{
		RequestID:       fmt.Sprintf("disc_%s", uuid.NewString()[:8]),
		CompanyName:     companyName,
		Timeout:         30 * time.Second,
		RequiredSources: []string{SourceWebsite},
		OptionalSources: []string{SourceLinkedIn, SourceRegistry, SourceKGraph},
	}
}

// Sources returns the union of required and optional sources, required first,
// deduplicated in order.
func (r DiscoveryRequest) Sources() []string {
	seen := make(map[string]bool, len(r.RequiredSources)+len(r.OptionalSources))
	var out []string
	for _, s := range append(append([]string{}, r.RequiredSources...), r.OptionalSources...) {
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

// Hints carries caller-supplied context used to bias discovery. Never
// required for correctness.
type Hints struct {
	Industry    string `json:"industry,omitempty"`
	Location    string `json:"location,omitempty"`
	CompanyType string `json:"company_type,omitempty"`
}

// Hints extracts the hint fields from the request.
func (r DiscoveryRequest) Hints() Hints {
	return Hints{
		Industry:    r.IndustryHint,
		Location:    r.LocationHint,
		CompanyType: r.CompanyTypeHint,
	}
}

// CandidateStrategy tags how a domain candidate was generated.
type CandidateStrategy string

const (
	StrategyPattern    CandidateStrategy = "pattern"
	StrategyHyphenated CandidateStrategy = "hyphenated"
	StrategySuffixed   CandidateStrategy = "suffixed"
)

// DomainCandidate is a generated, not-yet-verified domain guess. Ephemeral;
// discarded after validation.
type DomainCandidate struct {
	URL      string            `json:"url"`
	Strategy CandidateStrategy `json:"strategy"`
}

// DiscoveryMethod tags how a website verdict was reached.
type DiscoveryMethod string

const (
	MethodDirect DiscoveryMethod = "direct"
	MethodSearch DiscoveryMethod = "search"
	MethodNone   DiscoveryMethod = "none"
	MethodError  DiscoveryMethod = "error"
)

// DomainVerdict is the validator's accept/reject decision for one candidate.
// Only the highest-scoring valid verdict survives into a DiscoveryResult.
type DomainVerdict struct {
	URL            string          `json:"url,omitempty"`
	Valid          bool            `json:"valid"`
	Confidence     float64         `json:"confidence"`
	Evidence       []string        `json:"evidence,omitempty"`
	DomainVerified bool            `json:"domain_verified"`
	SSLValid       bool            `json:"ssl_valid"`
	NameMatched    bool            `json:"name_matched"`
	Method         DiscoveryMethod `json:"method"`
}

// ProbeResult is the uniform output of one discovery probe. Owned by the
// probe that produced it; the orchestrator only reads.
type ProbeResult struct {
	Source     string            `json:"source"`
	URL        string            `json:"url,omitempty"`
	Confidence float64           `json:"confidence"`
	Attributes map[string]string `json:"attributes,omitempty"` // e.g. employee_count, headquarters
	Website    *DomainVerdict    `json:"website,omitempty"`    // populated by the website probe only
}

// Empty reports whether the probe found nothing usable.
func (p ProbeResult) Empty() bool {
	return p.URL == "" && len(p.Attributes) == 0 && (p.Website == nil || p.Website.URL == "")
}

// DiscoveryMetadata accumulates counters during one orchestration run and is
// frozen once the run completes.
type DiscoveryMetadata struct {
	SourcesAttempted  int               `json:"sources_attempted"`
	SuccessfulSources []string          `json:"successful_sources,omitempty"`
	FailedSources     map[string]string `json:"failed_sources,omitempty"` // source -> reason
	Duration          time.Duration     `json:"duration"`
	CallsMade         map[string]int    `json:"calls_made,omitempty"` // source -> call count
	CacheHit          bool              `json:"cache_hit"`
}

// NewDiscoveryMetadata returns metadata with initialized maps.
func NewDiscoveryMetadata() DiscoveryMetadata {
	return DiscoveryMetadata{
		FailedSources: make(map[string]string),
		CallsMade:     make(map[string]int),
	}
}

// ConflictSeverity grades how material a cross-source disagreement is.
type ConflictSeverity string

const (
	SeverityLow    ConflictSeverity = "low"
	SeverityMedium ConflictSeverity = "medium"
	SeverityHigh   ConflictSeverity = "high"
)

// ValidationConflict records two or more probes disagreeing on one field.
type ValidationConflict struct {
	Field    string            `json:"field"`
	Sources  map[string]string `json:"sources"` // source -> reported value
	Severity ConflictSeverity  `json:"severity"`
}

// DiscoveryResult is the aggregated outcome of one discovery run. It is the
// unit written to the cache and returned to callers.
type DiscoveryResult struct {
	CompanyName    string               `json:"company_name"`
	NormalizedName string               `json:"normalized_name"`
	Timestamp      time.Time            `json:"timestamp"`
	Website        *DomainVerdict       `json:"website,omitempty"`
	Probes         []ProbeResult        `json:"probes,omitempty"`
	Metadata       DiscoveryMetadata    `json:"metadata"`
	Conflicts      []ValidationConflict `json:"conflicts,omitempty"`
	CrossScore     float64              `json:"cross_validation_score"`
}

// WebsiteURL returns the discovered website URL, or "" if none.
func (d *DiscoveryResult) WebsiteURL() string {
	if d.Website == nil {
		return ""
	}
	return d.Website.URL
}

// HasSufficientData holds iff a website or at least one probe with a
// non-empty URL or record exists.
func (d *DiscoveryResult) HasSufficientData() bool {
	if d.WebsiteURL() != "" {
		return true
	}
	for _, p := range d.Probes {
		if !p.Empty() {
			return true
		}
	}
	return false
}

// Age reports how long ago the result was produced.
func (d *DiscoveryResult) Age(now time.Time) time.Duration {
	return now.Sub(d.Timestamp)
}
