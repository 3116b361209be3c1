//go:build basic

// Package integration contains end-to-end tests for gridline.
// These tests are excluded from normal test runs due to build tags.
// To run these tests: go test -tags basic ./integration
package integration

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/huangsam/gridline/core"
	"github.com/huangsam/gridline/internal/snapshot"
	"github.com/huangsam/gridline/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestFetchThenChart collects a season from the fixture server and charts it.
func TestFetchThenChart(t *testing.T) {
	t.Setenv("GRIDLINE_CACHE_BACKEND", "none")
	srv := newFixtureServer(t)
	dataDir := t.TempDir()
	args := fixtureArgs(srv, dataDir)

	_, err := runGridlineCommand(t, append([]string{"fetch"}, args...)...)
	require.NoError(t, err)

	table, err := snapshot.Load(dataDir)
	require.NoError(t, err)
	require.NotEmpty(t, table)
	csvTable, err := snapshot.ReadCSV(filepath.Join(dataDir, "qbr.csv"))
	require.NoError(t, err)
	assert.Len(t, csvTable, len(table), "csv export carries every snapshot row")

	t.Run("percentiles match the snapshot", func(t *testing.T) {
		out, err := runGridlineCommand(t, append([]string{"percentiles", "--output", "json"}, args...)...)
		require.NoError(t, err)

		var ref schema.PercentileReference
		require.NoError(t, json.Unmarshal([]byte(out), &ref))
		expected := core.TablePercentiles(core.FilterQualified(table, schema.DefaultMinPlays))
		assert.Equal(t, expected.Count, ref.Count)
		for i, cut := range expected.Cuts {
			assert.InDelta(t, cut.Value, ref.Cuts[i].Value, 1e-9)
		}
	})

	t.Run("static chart png", func(t *testing.T) {
		out := filepath.Join(t.TempDir(), "brady.png")
		_, err := runGridlineCommand(t, append([]string{"chart", "static", "Tom", "Brady", "--season", "2007", "--logos", "no", "--output", "png", "--output-file", out}, args...)...)
		require.NoError(t, err)

		data, err := os.ReadFile(out)
		require.NoError(t, err)
		assert.Equal(t, "\x89PNG", string(data[:4]))
	})

	t.Run("interactive chart html", func(t *testing.T) {
		out := filepath.Join(t.TempDir(), "brady.html")
		_, err := runGridlineCommand(t, append([]string{"chart", "interactive", "Tom Brady", "--output", "html", "--output-file", out}, args...)...)
		require.NoError(t, err)

		data, err := os.ReadFile(out)
		require.NoError(t, err)
		assert.Contains(t, string(data), "Plotly.newPlot")
	})

	t.Run("snapshot status", func(t *testing.T) {
		out, err := runGridlineCommand(t, append([]string{"snapshot", "status", "--output", "json"}, args...)...)
		require.NoError(t, err)

		var status schema.SnapshotStatus
		require.NoError(t, json.Unmarshal([]byte(out), &status))
		assert.Equal(t, len(table), status.Rows)
	})
}
