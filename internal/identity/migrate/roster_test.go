package migrate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"memberlink/internal/identity/models"
)

func TestFileRosterLoad(t *testing.T) {
	entries, err := FileRoster{Path: "testdata/roster.toml"}.Load()
	require.NoError(t, err)
	assert.Equal(t, []models.RosterEntry{
		{Name: "Alice Smith", Email: "Alice@Example.com", Role: "executive"},
		{Name: "Bob Jones", Email: "bob@example.com"},
	}, entries)
}

func TestFileRosterMissingFileIsEmpty(t *testing.T) {
	entries, err := FileRoster{Path: "testdata/does-not-exist.toml"}.Load()
	require.NoError(t, err)
	assert.Empty(t, entries)

	entries, err = FileRoster{}.Load()
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestFileRosterRejectsUnknownKeys(t *testing.T) {
	_, err := FileRoster{Path: "testdata/roster_unknown_key.toml"}.Load()
	assert.ErrorContains(t, err, "unknown keys")
}
