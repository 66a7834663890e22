// Package board models the HR dashboard of one user as an immutable value.
//
// Every update is a pure function returning a new State, so handlers can load
// the state, apply one transition and store the result without sharing any
// mutable structure. Slices held by a State are never written after creation.
package board

import (
	"errors"
	"fmt"

	"personality-bot/internal/candidates"
	"personality-bot/internal/models"
)

var (
	ErrUnknownModel     = errors.New("unknown personality model")
	ErrNoModelSelected  = errors.New("model is not selected")
	ErrUnknownParameter = errors.New("parameter is not available for the selected model")
	ErrNoParameter      = errors.New("parameter is not selected")
	ErrFilterIndex      = errors.New("filter index out of range")
)

// State is the HR dashboard: the working candidate list, the fetched
// vacancies and the filter dialog.
type State struct {
	Loaded     bool               `json:"loaded"`
	Candidates []models.Candidate `json:"candidates"`
	Vacancies  []models.Vacancy   `json:"vacancies"`

	// filter dialog
	Pending           []models.Filter `json:"pending"`
	SelectedModel     string          `json:"selected_model"`
	SelectedParameter string          `json:"selected_parameter"`
}

// Loaded replaces both lists with a fresh fetch and resets the filter dialog.
// This is the only transition that widens the candidate list again.
func Loaded(candidateList []models.Candidate, vacancies []models.Vacancy) State {
	return State{
		Loaded:     true,
		Candidates: candidates.SortByCreated(candidateList),
		Vacancies:  append([]models.Vacancy(nil), vacancies...),
	}
}

// AvailableParameters is derived from the current working list every time.
func (s State) AvailableParameters() []string {
	return candidates.AvailableParameters(s.Candidates, s.SelectedModel)
}

// SelectModel picks the model for the next filter and drops a parameter
// chosen under the previous model.
func (s State) SelectModel(model string) (State, error) {
	if !models.IsValidModel(model) {
		return s, fmt.Errorf("%w: %s", ErrUnknownModel, model)
	}
	next := s
	next.SelectedModel = model
	next.SelectedParameter = ""
	return next, nil
}

func (s State) SelectParameter(parameter string) (State, error) {
	if s.SelectedModel == "" {
		return s, ErrNoModelSelected
	}
	for _, p := range s.AvailableParameters() {
		if p == parameter {
			next := s
			next.SelectedParameter = parameter
			return next, nil
		}
	}
	return s, fmt.Errorf("%w: %s", ErrUnknownParameter, parameter)
}

// AddFilter appends the selected (model, parameter) with threshold to the
// pending set and clears the selection.
func (s State) AddFilter(threshold float64) (State, error) {
	if s.SelectedModel == "" {
		return s, ErrNoModelSelected
	}
	if s.SelectedParameter == "" {
		return s, ErrNoParameter
	}

	next := s
	next.Pending = appendFilter(s.Pending, models.Filter{
		Model:     s.SelectedModel,
		Parameter: s.SelectedParameter,
		Threshold: threshold,
	})
	next.SelectedModel = ""
	next.SelectedParameter = ""
	return next, nil
}

func (s State) RemoveFilter(index int) (State, error) {
	if index < 0 || index >= len(s.Pending) {
		return s, fmt.Errorf("%w: %d", ErrFilterIndex, index)
	}

	pending := make([]models.Filter, 0, len(s.Pending)-1)
	pending = append(pending, s.Pending[:index]...)
	pending = append(pending, s.Pending[index+1:]...)

	next := s
	next.Pending = pending
	return next, nil
}

// Apply narrows the working list by the pending filters and clears them.
// Narrowing is cumulative: the previous working list is discarded.
func (s State) Apply() State {
	next := s
	next.Candidates = candidates.Apply(s.Candidates, s.Pending)
	next.Pending = nil
	next.SelectedModel = ""
	next.SelectedParameter = ""
	return next
}

// CloseFilters abandons the dialog without touching the working list.
func (s State) CloseFilters() State {
	next := s
	next.Pending = nil
	next.SelectedModel = ""
	next.SelectedParameter = ""
	return next
}

func appendFilter(list []models.Filter, f models.Filter) []models.Filter {
	out := make([]models.Filter, 0, len(list)+1)
	out = append(out, list...)
	return append(out, f)
}
