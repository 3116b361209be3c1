package iocache

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/gridline/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrateRuns_UnsupportedBackends(t *testing.T) {
	var buf bytes.Buffer

	err := MigrateRuns(&buf, schema.NoneBackend, "", -1)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "migrations are not supported")

	err = MigrateRuns(&buf, schema.RedisBackend, "redis://localhost:6379", -1)
	assert.Error(t, err)
}

func TestMigrateRuns_SQLite(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test_migration.db")
	var buf bytes.Buffer

	// Migrate to latest version
	require.NoError(t, MigrateRuns(&buf, schema.SQLiteBackend, dbPath, -1))
	assert.Contains(t, buf.String(), "to version 2")

	_, err := os.Stat(dbPath)
	assert.NoError(t, err)

	// Running again is a no-op
	buf.Reset()
	require.NoError(t, MigrateRuns(&buf, schema.SQLiteBackend, dbPath, -1))
	assert.Contains(t, buf.String(), "No migration needed")

	// Step down to version 1, then all the way down, then back up
	assert.NoError(t, MigrateRuns(&buf, schema.SQLiteBackend, dbPath, 1))
	assert.NoError(t, MigrateRuns(&buf, schema.SQLiteBackend, dbPath, 0))
	assert.NoError(t, MigrateRuns(&buf, schema.SQLiteBackend, dbPath, 2))

	// The migrated schema is usable by the run store
	store, err := NewRunStore(schema.SQLiteBackend, dbPath)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	_, err = store.BeginRun("unique-key", time.Now(), 2019, 2019, nil)
	require.NoError(t, err)
	_, err = store.BeginRun("unique-key", time.Now(), 2019, 2019, nil)
	assert.Error(t, err, "run_key index should reject duplicates")
}

func TestMigrateRuns_SQLiteInMemory(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, MigrateRuns(&buf, schema.SQLiteBackend, ":memory:", -1))
}
