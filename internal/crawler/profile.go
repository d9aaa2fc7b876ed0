package crawler

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// ScoringProfile holds the vocabulary driving link prioritization. The zero
// value is unusable; start from DefaultProfile.
type ScoringProfile struct {
	// Keywords score +2.0 when found in a URL and +1.5 in anchor text.
	Keywords []string `yaml:"keywords"`

	// ValuablePaths add a flat +3.0 when any one matches the URL path.
	ValuablePaths []string `yaml:"valuable_paths"`

	// AvoidPaths subtract 1.0 per match.
	AvoidPaths []string `yaml:"avoid_paths"`
}

// DefaultProfile returns the built-in scoring vocabulary, tuned for company
// research targets.
func DefaultProfile() *ScoringProfile {
	return &ScoringProfile{
		Keywords: []string{
			"pricing", "products", "solutions", "about", "customers", "case studies",
			"industries", "vertical", "enterprise", "software", "platform", "suite",
			"team", "company", "management", "leadership", "contact", "features",
		},
		ValuablePaths: []string{
			"/about", "/products", "/solutions", "/pricing",
			"/customers", "/industries", "/platform", "/features",
			"/team", "/company", "/leadership",
		},
		AvoidPaths: []string{
			"/blog", "/news", "/support", "/help", "/docs",
			"/privacy", "/terms", "/legal", "/careers",
		},
	}
}

// LoadProfile reads a scoring profile from a YAML file. Fields left empty in
// the file inherit the defaults.
func LoadProfile(path string) (*ScoringProfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "reading scoring profile %s", path)
	}

	var loaded ScoringProfile
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		return nil, eris.Wrapf(err, "parsing scoring profile %s", path)
	}

	p := DefaultProfile()
	if len(loaded.Keywords) > 0 {
		p.Keywords = loaded.Keywords
	}
	if len(loaded.ValuablePaths) > 0 {
		p.ValuablePaths = loaded.ValuablePaths
	}
	if len(loaded.AvoidPaths) > 0 {
		p.AvoidPaths = loaded.AvoidPaths
	}
	return p, nil
}

// WithKeywords returns a copy of the profile with extra keywords appended.
func (p *ScoringProfile) WithKeywords(extra []string) *ScoringProfile {
	if len(extra) == 0 {
		return p
	}
	merged := *p
	merged.Keywords = append(append([]string{}, p.Keywords...), extra...)
	return &merged
}
