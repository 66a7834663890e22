package candidates

import (
	"sort"

	"personality-bot/internal/models"
)

// SortByCreated returns a copy of list ordered oldest first. Ties keep input order.
func SortByCreated(list []models.Candidate) []models.Candidate {
	out := append([]models.Candidate(nil), list...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt.Time)
	})
	return out
}
