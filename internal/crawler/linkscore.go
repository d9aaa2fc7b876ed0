package crawler

import "strings"

// ScoreLink ranks an outbound link by how likely it is to carry company
// intelligence. Pure function of (URL, anchor text, profile): keywords score
// +2.0 in the URL and +1.5 in the anchor, one valuable path adds a flat +3.0,
// each avoided path subtracts 1.0, URLs over 100 characters lose 0.5 as a
// dynamic-URL heuristic. Never negative.
func ScoreLink(rawURL, anchorText string, profile *ScoringProfile) float64 {
	score := 0.0
	urlLower := strings.ToLower(rawURL)
	anchorLower := strings.ToLower(anchorText)

	for _, kw := range profile.Keywords {
		if strings.Contains(urlLower, kw) {
			score += 2.0
		}
		if strings.Contains(anchorLower, kw) {
			score += 1.5
		}
	}

	for _, p := range profile.ValuablePaths {
		if strings.Contains(urlLower, p) {
			score += 3.0
			break
		}
	}

	for _, p := range profile.AvoidPaths {
		if strings.Contains(urlLower, p) {
			score -= 1.0
		}
	}

	if len(rawURL) > 100 {
		score -= 0.5
	}

	if score < 0 {
		return 0
	}
	return score
}
