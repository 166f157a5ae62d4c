package db

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSQLiteDBCreatesSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "runs.db")

	db, err := NewSQLiteDB(path)
	require.NoError(t, err)
	defer db.Close()

	var count int
	require.NoError(t, db.Get(&count,
		`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'runs'`))
	assert.Equal(t, 1, count)
}

func TestRunMigrationsIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.db")

	db, err := NewSQLiteDB(path)
	require.NoError(t, err)
	defer db.Close()

	assert.NoError(t, RunMigrations(db))
}
