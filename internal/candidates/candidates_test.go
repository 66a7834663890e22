package candidates_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"personality-bot/internal/candidates"
	"personality-bot/internal/models"
)

func score(model, parameter string, confidence float64) models.PersonalityModel {
	return models.PersonalityModel{Model: model, Parameter: parameter, Confidence: confidence}
}

func candidate(id string, pms ...models.PersonalityModel) models.Candidate {
	return models.Candidate{ID: id, PersonalityModels: pms}
}

// ── Passes ─────────────────────────────────────────────────────────────────

func TestPasses(t *testing.T) {
	c := candidate("1", score("OCEAN", "Openness", 0.8), score("MBTI", "INTJ", 0.6))

	cases := []struct {
		name   string
		filter models.Filter
		want   bool
	}{
		{"case-insensitive parameter", models.Filter{Model: "OCEAN", Parameter: "openness", Threshold: 0.5}, true},
		{"below threshold", models.Filter{Model: "OCEAN", Parameter: "Openness", Threshold: 0.9}, false},
		{"threshold is inclusive", models.Filter{Model: "OCEAN", Parameter: "Openness", Threshold: 0.8}, true},
		{"model must match exactly", models.Filter{Model: "ocean", Parameter: "Openness", Threshold: 0.1}, false},
		{"unknown parameter", models.Filter{Model: "OCEAN", Parameter: "Neuroticism", Threshold: 0}, false},
		{"parameter under another model", models.Filter{Model: "OCEAN", Parameter: "INTJ", Threshold: 0}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, candidates.Passes(c, tc.filter))
		})
	}
}

func TestPasses_AnyMatchingEntryIsEnough(t *testing.T) {
	c := candidate("1", score("OCEAN", "Openness", 0.2), score("OCEAN", "Openness", 0.9))

	assert.True(t, candidates.Passes(c, models.Filter{Model: "OCEAN", Parameter: "Openness", Threshold: 0.5}))
}

func TestPasses_NoScores(t *testing.T) {
	assert.False(t, candidates.Passes(candidate("1"), models.Filter{Model: "OCEAN", Parameter: "Openness"}))
}

// ── Apply ──────────────────────────────────────────────────────────────────

func TestApply_EmptyFilterSetKeepsEverything(t *testing.T) {
	list := []models.Candidate{
		candidate("1", score("OCEAN", "Openness", 0.8)),
		candidate("2"),
	}

	got := candidates.Apply(list, nil)
	assert.Equal(t, list, got)

	got = candidates.Apply(list, []models.Filter{})
	assert.Equal(t, list, got)
}

func TestApply_IsConjunctive(t *testing.T) {
	list := []models.Candidate{
		candidate("1", score("OCEAN", "Openness", 0.8), score("MBTI", "INTJ", 0.6)),
	}

	got := candidates.Apply(list, []models.Filter{
		{Model: "OCEAN", Parameter: "Openness", Threshold: 0.5},
		{Model: "MBTI", Parameter: "INTJ", Threshold: 0.9},
	})
	assert.Empty(t, got)
}

func TestApply_EachFilterMatchedIndependently(t *testing.T) {
	list := []models.Candidate{
		candidate("1", score("OCEAN", "Openness", 0.8), score("MBTI", "INTJ", 0.95)),
	}

	got := candidates.Apply(list, []models.Filter{
		{Model: "OCEAN", Parameter: "Openness", Threshold: 0.5},
		{Model: "MBTI", Parameter: "intj", Threshold: 0.9},
	})
	require.Len(t, got, 1)
	assert.Equal(t, "1", got[0].ID)
}

func TestApply_NarrowsAndKeepsOrder(t *testing.T) {
	list := []models.Candidate{
		candidate("a", score("RIASEC", "Social", 0.7)),
		candidate("b"),
		candidate("c", score("RIASEC", "Social", 0.3)),
		candidate("d", score("RIASEC", "social", 0.9)),
	}
	filters := []models.Filter{{Model: "RIASEC", Parameter: "Social", Threshold: 0.5}}

	got := candidates.Apply(list, filters)

	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].ID)
	assert.Equal(t, "d", got[1].ID)
	for _, c := range got {
		assert.Contains(t, list, c)
	}
}

func TestApply_CandidateWithoutScoresFailsNonEmptySet(t *testing.T) {
	got := candidates.Apply(
		[]models.Candidate{candidate("empty")},
		[]models.Filter{{Model: "OCEAN", Parameter: "Openness", Threshold: 0}},
	)
	assert.Empty(t, got)
}

func TestApply_DoesNotMutateInput(t *testing.T) {
	list := []models.Candidate{
		candidate("1", score("OCEAN", "Openness", 0.8)),
		candidate("2", score("OCEAN", "Openness", 0.1)),
	}
	before := append([]models.Candidate(nil), list...)

	_ = candidates.Apply(list, []models.Filter{{Model: "OCEAN", Parameter: "Openness", Threshold: 0.5}})

	assert.Equal(t, before, list)
}

// ── AvailableParameters ────────────────────────────────────────────────────

func TestAvailableParameters(t *testing.T) {
	list := []models.Candidate{
		candidate("1", score("OCEAN", "Openness", 0.8), score("MBTI", "INTJ", 0.6)),
		candidate("2", score("OCEAN", "Conscientiousness", 0.4), score("OCEAN", "Openness", 0.1)),
	}

	assert.Equal(t, []string{"Openness", "Conscientiousness"}, candidates.AvailableParameters(list, "OCEAN"))
	assert.Equal(t, []string{"INTJ"}, candidates.AvailableParameters(list, "MBTI"))
	assert.Empty(t, candidates.AvailableParameters(list, "RIASEC"))
	assert.Empty(t, candidates.AvailableParameters(list, ""))
}

func TestAvailableParameters_FollowsNarrowedList(t *testing.T) {
	list := []models.Candidate{
		candidate("1", score("OCEAN", "Openness", 0.8)),
		candidate("2", score("OCEAN", "Extraversion", 0.9), score("MBTI", "ENFP", 0.2)),
	}
	narrowed := candidates.Apply(list, []models.Filter{{Model: "OCEAN", Parameter: "Openness", Threshold: 0.5}})

	assert.Equal(t, []string{"Openness"}, candidates.AvailableParameters(narrowed, "OCEAN"))
}

// ── GroupByModel ───────────────────────────────────────────────────────────

func TestGroupByModel(t *testing.T) {
	g := candidates.GroupByModel([]models.PersonalityModel{
		score("OCEAN", "O", 1),
		score("OCEAN", "C", 2),
		score("MBTI", "I", 3),
	})

	assert.Equal(t, []string{"OCEAN", "MBTI"}, g.Models())
	assert.Equal(t, map[string][]models.ParameterScore{
		"OCEAN": {{Parameter: "O", Confidence: 1}, {Parameter: "C", Confidence: 2}},
		"MBTI":  {{Parameter: "I", Confidence: 3}},
	}, g.Map())
}

func TestGroupByModel_KeepsDuplicates(t *testing.T) {
	g := candidates.GroupByModel([]models.PersonalityModel{
		score("OCEAN", "O", 1),
		score("OCEAN", "O", 2),
	})

	assert.Len(t, g.Scores("OCEAN"), 2)
}

func TestGroupByModel_IsStable(t *testing.T) {
	input := []models.PersonalityModel{
		score("RIASEC", "Artistic", 0.4),
		score("OCEAN", "O", 1),
		score("RIASEC", "Social", 0.7),
	}

	first := candidates.GroupByModel(input)
	second := candidates.GroupByModel(input)

	assert.Equal(t, first.Models(), second.Models())
	assert.Equal(t, first.Map(), second.Map())
}

func TestGroupByModel_Empty(t *testing.T) {
	g := candidates.GroupByModel(nil)
	assert.Zero(t, g.Len())
	assert.Empty(t, g.Scores("OCEAN"))
}

// ── SortByCreated ──────────────────────────────────────────────────────────

func TestSortByCreated(t *testing.T) {
	at := func(id string, d time.Duration) models.Candidate {
		c := candidate(id)
		c.CreatedAt = models.Timestamp{Time: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).Add(d)}
		return c
	}
	list := []models.Candidate{at("late", time.Hour), at("early", 0), at("mid", time.Minute)}

	got := candidates.SortByCreated(list)

	require.Len(t, got, 3)
	assert.Equal(t, "early", got[0].ID)
	assert.Equal(t, "mid", got[1].ID)
	assert.Equal(t, "late", got[2].ID)
	assert.Equal(t, "late", list[0].ID, "input must stay untouched")
}
