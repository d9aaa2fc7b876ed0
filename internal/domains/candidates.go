// Package domains generates and validates candidate company domains.
package domains

import (
	"regexp"
	"strings"

	"github.com/sells-group/prospect-scout/internal/model"
)

// maxCandidates caps generator output so pathological names cannot turn one
// discovery call into an unbounded probe storm.
const maxCandidates = 25

var tlds = []string{".com", ".io", ".net", ".org", ".co", ".ai", ".tech"}

var legalSuffixes = []string{
	"incorporated", "corporation", "company",
	"inc.", "inc", "llc.", "llc", "ltd.", "ltd",
	"corp.", "corp", "co.", "co",
}

var nonAlnumRe = regexp.MustCompile(`[^a-z0-9\s-]`)
var spaceRe = regexp.MustCompile(`\s+`)

// NormalizeName lowercases a company name, strips trailing legal suffixes
// (Inc/LLC/Corp/Ltd/Co and punctuated variants), and collapses whitespace.
// Idempotent: NormalizeName(NormalizeName(x)) == NormalizeName(x).
func NormalizeName(companyName string) string {
	normalized := strings.ToLower(strings.TrimSpace(companyName))

	for {
		stripped := normalized
		for _, suffix := range legalSuffixes {
			if strings.HasSuffix(stripped, " "+suffix) {
				stripped = strings.TrimSpace(stripped[:len(stripped)-len(suffix)-1])
			}
		}
		if stripped == normalized {
			break
		}
		normalized = stripped
	}

	return spaceRe.ReplaceAllString(normalized, " ")
}

// domainWords returns the normalized name's words with all characters a
// domain label cannot carry removed.
func domainWords(companyName string) []string {
	cleaned := nonAlnumRe.ReplaceAllString(NormalizeName(companyName), "")
	return strings.Fields(cleaned)
}

// GenerateCandidates produces plausible domain URLs for a company, in
// priority order: bare and www variants across the TLD list, hyphenated
// variants for multi-word names over the top three TLDs, and software/app
// suffix variants. Deduplicates preserving order, capped at maxCandidates.
// Pure; no network access.
func GenerateCandidates(companyName string) []model.DomainCandidate {
	words := domainWords(companyName)
	if len(words) == 0 {
		return nil
	}
	joined := strings.Join(words, "")

	var out []model.DomainCandidate
	for _, tld := range tlds {
		out = append(out,
			model.DomainCandidate{URL: "https://" + joined + tld, Strategy: model.StrategyPattern},
			model.DomainCandidate{URL: "https://www." + joined + tld, Strategy: model.StrategyPattern},
		)
	}

	if len(words) > 1 {
		hyphenated := strings.Join(words, "-")
		for _, tld := range tlds[:3] {
			out = append(out,
				model.DomainCandidate{URL: "https://" + hyphenated + tld, Strategy: model.StrategyHyphenated},
				model.DomainCandidate{URL: "https://www." + hyphenated + tld, Strategy: model.StrategyHyphenated},
			)
		}
	}

	if !strings.Contains(joined, "software") {
		out = append(out,
			model.DomainCandidate{URL: "https://" + joined + "software.com", Strategy: model.StrategySuffixed},
			model.DomainCandidate{URL: "https://" + joined + "app.com", Strategy: model.StrategySuffixed},
		)
	}

	seen := make(map[string]bool, len(out))
	unique := out[:0]
	for _, c := range out {
		if seen[c.URL] {
			continue
		}
		seen[c.URL] = true
		unique = append(unique, c)
	}

	if len(unique) > maxCandidates {
		unique = unique[:maxCandidates]
	}
	return unique
}
