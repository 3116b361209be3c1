package contract

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/huangsam/gridline/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetPlainTier(t *testing.T) {
	ref := schema.PercentileReference{Cuts: []schema.PercentileCut{
		{Level: 10, Value: 20},
		{Level: 25, Value: 35},
		{Level: 50, Value: 50},
		{Level: 75, Value: 65},
		{Level: 90, Value: 78},
		{Level: 98, Value: 90},
	}}

	tests := []struct {
		name     string
		input    float64
		expected string
	}{
		{"smallest value possible", 0.0, PoorValue},
		{"just before average", 34.9, PoorValue},
		{"exactly average", 35.0, AverageValue},
		{"just before good", 64.9, AverageValue},
		{"exactly good", 65.0, GoodValue},
		{"just before elite", 77.9, GoodValue},
		{"exactly elite", 78.0, EliteValue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetPlainTier(tt.input, ref))
		})
	}

	t.Run("empty reference", func(t *testing.T) {
		assert.Equal(t, PoorValue, GetPlainTier(99, schema.PercentileReference{}))
	})
}

func TestGetColorTier(t *testing.T) {
	ref := schema.PercentileReference{Cuts: []schema.PercentileCut{{Level: 90, Value: 78}}}
	assert.Contains(t, GetColorTier(80, ref), EliteValue)
	assert.Contains(t, GetColorTier(10, ref), PoorValue)
}

func TestGetColorOutcome(t *testing.T) {
	for _, o := range []schema.Outcome{schema.OutcomeWon, schema.OutcomeLost, schema.OutcomeTie, schema.OutcomeUnknown} {
		assert.Contains(t, GetColorOutcome(o), string(o))
	}
}

func TestSelectOutputFile(t *testing.T) {
	t.Run("empty path returns stdout", func(t *testing.T) {
		f, err := SelectOutputFile("")
		require.NoError(t, err)
		assert.Equal(t, os.Stdout, f)
	})

	t.Run("file path creates file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "out.json")
		f, err := SelectOutputFile(path)
		require.NoError(t, err)
		defer func() { _ = f.Close() }()
		assert.FileExists(t, path)
	})
}

func TestDBFilePaths(t *testing.T) {
	assert.True(t, strings.HasSuffix(GetCacheDBFilePath(), ".gridline_cache.db"))
	assert.True(t, strings.HasSuffix(GetRunsDBFilePath(), ".gridline_runs.db"))
	assert.NotEqual(t, GetCacheDBFilePath(), GetRunsDBFilePath())
}

func TestTruncateName(t *testing.T) {
	tests := []struct {
		input    string
		maxWidth int
		expected string
	}{
		{"Tom Brady", 20, "Tom Brady"},
		{"Ben Roethlisberger", 10, "Ben Roe..."},
		{"Ben Roethlisberger", 3, "Ben Roethlisberger"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, TruncateName(tt.input, tt.maxWidth))
	}
}

func TestParseBoolString(t *testing.T) {
	tests := []struct {
		input       string
		expected    bool
		expectError bool
	}{
		{"yes", true, false},
		{"TRUE", true, false},
		{"1", true, false},
		{"no", false, false},
		{"False", false, false},
		{"0", false, false},
		{"maybe", false, true},
		{"", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseBoolString(tt.input)
			if tt.expectError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}
