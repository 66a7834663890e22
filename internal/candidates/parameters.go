package candidates

import "personality-bot/internal/models"

// AvailableParameters lists the distinct parameters scored under model across
// the given list, in first-encounter order. An empty model yields nothing.
func AvailableParameters(list []models.Candidate, model string) []string {
	if model == "" {
		return nil
	}

	seen := make(map[string]struct{})
	var params []string

	for _, c := range list {
		for _, pm := range c.PersonalityModels {
			if pm.Model != model {
				continue
			}
			if _, ok := seen[pm.Parameter]; ok {
				continue
			}
			seen[pm.Parameter] = struct{}{}
			params = append(params, pm.Parameter)
		}
	}

	return params
}
