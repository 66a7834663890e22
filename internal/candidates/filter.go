// Package candidates holds the pure logic applied to fetched candidate lists:
// threshold filtering, parameter discovery and grouping by personality model.
package candidates

import (
	"strings"

	"personality-bot/internal/models"
)

// Passes reports whether at least one of the candidate's scores matches the
// filter model exactly, the filter parameter case-insensitively and reaches
// the threshold.
func Passes(c models.Candidate, f models.Filter) bool {
	for _, pm := range c.PersonalityModels {
		if pm.Model == f.Model &&
			strings.EqualFold(pm.Parameter, f.Parameter) &&
			pm.Confidence >= f.Threshold {
			return true
		}
	}
	return false
}

// PassesAll is the conjunction of Passes over filters. Each filter may be
// satisfied by a different score entry.
func PassesAll(c models.Candidate, filters []models.Filter) bool {
	for _, f := range filters {
		if !Passes(c, f) {
			return false
		}
	}
	return true
}

// Apply returns the candidates passing every filter, in input order.
// An empty filter set keeps the whole list.
func Apply(list []models.Candidate, filters []models.Filter) []models.Candidate {
	result := make([]models.Candidate, 0, len(list))
	for _, c := range list {
		if PassesAll(c, filters) {
			result = append(result, c)
		}
	}
	return result
}
