package discovery

import (
	"sort"
	"strconv"
	"strings"

	"github.com/sells-group/prospect-scout/internal/model"
)

// Cross-validation scoring. The base score assumes consistent sources; each
// detected conflict pulls it down by severity, never below the floor.
const (
	scoreConsistent = 0.8
	scoreSingle     = 0.5
	scoreFloor      = 0.2
	penaltyLow      = 0.1
	penaltyMedium   = 0.2
	penaltyHigh     = 0.3
	numericMedium   = 0.20
	numericHigh     = 0.50
)

// DetectConflicts compares attribute values across the result's probes and
// records every field where two or more sources materially disagree.
func DetectConflicts(result *model.DiscoveryResult) []model.ValidationConflict {
	// field -> source -> value
	byField := make(map[string]map[string]string)
	for _, p := range result.Probes {
		for field, value := range p.Attributes {
			if value == "" {
				continue
			}
			if byField[field] == nil {
				byField[field] = make(map[string]string)
			}
			byField[field][p.Source] = value
		}
	}

	fields := make([]string, 0, len(byField))
	for f := range byField {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	var conflicts []model.ValidationConflict
	for _, field := range fields {
		sources := byField[field]
		if len(sources) < 2 {
			continue
		}
		if severity, ok := fieldConflict(field, sources); ok {
			conflicts = append(conflicts, model.ValidationConflict{
				Field:    field,
				Sources:  sources,
				Severity: severity,
			})
		}
	}
	return conflicts
}

// CrossValidationScore grades how well the sources corroborate each other.
// A result with no usable data scores the floor; a single reporting source
// cannot be corroborated and scores scoreSingle.
func CrossValidationScore(result *model.DiscoveryResult) float64 {
	if !result.HasSufficientData() {
		return scoreFloor
	}

	populated := 0
	for _, p := range result.Probes {
		if !p.Empty() {
			populated++
		}
	}
	if populated < 2 {
		return scoreSingle
	}

	score := scoreConsistent
	for _, c := range result.Conflicts {
		switch c.Severity {
		case model.SeverityHigh:
			score -= penaltyHigh
		case model.SeverityMedium:
			score -= penaltyMedium
		default:
			score -= penaltyLow
		}
	}
	if score < scoreFloor {
		return scoreFloor
	}
	return score
}

// fieldConflict decides whether the reported values disagree and how badly.
// Numeric fields tolerate up to 20% relative spread; strings must match
// after normalization.
func fieldConflict(field string, sources map[string]string) (model.ConflictSeverity, bool) {
	values := make([]string, 0, len(sources))
	for _, v := range sources {
		values = append(values, v)
	}

	if nums, ok := parseNumbers(values); ok {
		spread := relativeSpread(nums)
		switch {
		case spread > numericHigh:
			return model.SeverityHigh, true
		case spread > numericMedium:
			return model.SeverityMedium, true
		default:
			return "", false
		}
	}

	first := normalizeValue(values[0])
	for _, v := range values[1:] {
		if normalizeValue(v) != first {
			if field == "website" {
				return model.SeverityMedium, true
			}
			return model.SeverityLow, true
		}
	}
	return "", false
}

func parseNumbers(values []string) ([]float64, bool) {
	nums := make([]float64, 0, len(values))
	for _, v := range values {
		n, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(v), ",", ""), 64)
		if err != nil {
			return nil, false
		}
		nums = append(nums, n)
	}
	return nums, true
}

// relativeSpread is (max-min)/max, with max taken as magnitude.
func relativeSpread(nums []float64) float64 {
	minV, maxV := nums[0], nums[0]
	for _, n := range nums[1:] {
		if n < minV {
			minV = n
		}
		if n > maxV {
			maxV = n
		}
	}
	if maxV == 0 {
		if minV == 0 {
			return 0
		}
		return 1
	}
	spread := (maxV - minV) / maxV
	if spread < 0 {
		spread = -spread
	}
	return spread
}

func normalizeValue(v string) string {
	return strings.Join(strings.Fields(strings.ToLower(v)), " ")
}
