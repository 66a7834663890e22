package handlers

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"personality-bot/internal/api/personality"
	"personality-bot/internal/workspace"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorText(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"not logged in", workspace.ErrNotAuthenticated, "/login"},
		{"expired token", personality.NewAPIError(http.StatusUnauthorized, "Could not validate credentials"), "сессия истекла"},
		{"backend detail", personality.NewAPIError(http.StatusUnprocessableEntity, "title: field required"), "title: field required"},
		{"bad input", fmt.Errorf("%w: title is required", workspace.ErrInvalidInput), "Проверьте"},
		{"not found", personality.NewAPIError(http.StatusNotFound, ""), "Не найдено"},
		{"timeout", fmt.Errorf("list cards: %w", context.DeadlineExceeded), "вовремя"},
		{"down", personality.NewAPIError(http.StatusBadGateway, ""), "недоступен"},
		{"other", fmt.Errorf("boom"), "Попробуйте позже"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Contains(t, errorText(tt.err), tt.want)
		})
	}
}

func TestFileKinds(t *testing.T) {
	assert.True(t, isPDF("cv.PDF", ""))
	assert.True(t, isPDF("", "application/pdf"))
	assert.False(t, isPDF("cv.docx", "application/msword"))

	assert.True(t, isMP4("intro.mp4", ""))
	assert.True(t, isMP4("", "video/mp4"))
	assert.False(t, isMP4("intro.mov", "video/quicktime"))
}

func TestCallbackIndex(t *testing.T) {
	i, err := callbackIndex([]string{"3"})
	require.NoError(t, err)
	assert.Equal(t, 3, i)

	_, err = callbackIndex(nil)
	assert.Error(t, err)

	_, err = callbackIndex([]string{"-1"})
	assert.Error(t, err)

	_, err = callbackIndex([]string{"x"})
	assert.Error(t, err)
}

func TestMenuButtonsAbandonSteps(t *testing.T) {
	assert.True(t, menuButtons["👥 Кандидаты"])
	assert.False(t, menuButtons["0.7"])
}

func TestCandidatePage(t *testing.T) {
	tests := []struct {
		name             string
		total, offset    int
		start, end, next int
	}{
		{"fits on one page", 3, 0, 0, 3, -1},
		{"exactly one page", cardsPerPage, 0, 0, cardsPerPage, -1},
		{"first of three", 25, 0, 0, 10, 10},
		{"middle", 25, 10, 10, 20, 20},
		{"last partial", 25, 20, 20, 25, -1},
		{"offset past the end", 5, 40, 5, 5, -1},
		{"negative offset", 12, -3, 0, 10, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end, next := candidatePage(tt.total, tt.offset)
			assert.Equal(t, tt.start, start)
			assert.Equal(t, tt.end, end)
			assert.Equal(t, tt.next, next)
		})
	}
}
