package migrations_test

import (
	"io/fs"
	"strings"
	"testing"

	"personality-bot/internal/storage/postgres/migrations"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrations_AreOrderedAndReversible(t *testing.T) {
	names, err := fs.Glob(migrations.Migrations, "*.sql")
	require.NoError(t, err)
	require.Equal(t, []string{
		"00001_users_sessions.sql",
		"00002_submissions_seen_vacancies.sql",
	}, names)

	for _, name := range names {
		data, err := fs.ReadFile(migrations.Migrations, name)
		require.NoError(t, err)

		body := string(data)
		assert.True(t, strings.HasPrefix(body, "-- +goose Up"), name)
		assert.Contains(t, body, "-- +goose Down", name)
	}
}
