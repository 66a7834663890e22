package candidates

import "personality-bot/internal/models"

// Grouped maps a model name to its scores in encounter order.
type Grouped struct {
	order  []string
	scores map[string][]models.ParameterScore
}

// GroupByModel partitions scores by model. Repeated (model, parameter) pairs
// are all kept.
func GroupByModel(pms []models.PersonalityModel) Grouped {
	g := Grouped{scores: make(map[string][]models.ParameterScore)}

	for _, pm := range pms {
		if _, ok := g.scores[pm.Model]; !ok {
			g.order = append(g.order, pm.Model)
		}
		g.scores[pm.Model] = append(g.scores[pm.Model], models.ParameterScore{
			Parameter:  pm.Parameter,
			Confidence: pm.Confidence,
		})
	}

	return g
}

// Models returns the model names in first-encounter order.
func (g Grouped) Models() []string {
	out := make([]string, len(g.order))
	copy(out, g.order)
	return out
}

func (g Grouped) Scores(model string) []models.ParameterScore {
	return g.scores[model]
}

func (g Grouped) Len() int {
	return len(g.order)
}

// Map returns a copy of the grouping as a plain map.
func (g Grouped) Map() map[string][]models.ParameterScore {
	out := make(map[string][]models.ParameterScore, len(g.scores))
	for k, v := range g.scores {
		out[k] = append([]models.ParameterScore(nil), v...)
	}
	return out
}
