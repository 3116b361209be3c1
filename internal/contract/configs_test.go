package contract

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/gridline/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// validInput returns a raw input that passes validation, for tests to mutate.
func validInput() *ConfigRawInput {
	return &ConfigRawInput{
		Workers:      4,
		FirstSeason:  2017,
		LastSeason:   2019,
		Precision:    1,
		Output:       "text",
		Color:        "yes",
		CacheBackend: string(schema.SQLiteBackend),
	}
}

func TestProcessAndValidate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*ConfigRawInput)
		expectError bool
	}{
		{
			name:   "valid minimal config",
			mutate: func(*ConfigRawInput) {},
		},
		{
			name:        "invalid workers (zero)",
			mutate:      func(in *ConfigRawInput) { in.Workers = 0 },
			expectError: true,
		},
		{
			name:        "invalid workers (negative)",
			mutate:      func(in *ConfigRawInput) { in.Workers = -1 },
			expectError: true,
		},
		{
			name:        "first season before QBR existed",
			mutate:      func(in *ConfigRawInput) { in.FirstSeason = 2005 },
			expectError: true,
		},
		{
			name:        "first season after last season",
			mutate:      func(in *ConfigRawInput) { in.FirstSeason, in.LastSeason = 2020, 2018 },
			expectError: true,
		},
		{
			name:        "last season in the future",
			mutate:      func(in *ConfigRawInput) { in.LastSeason = CurrentSeason(time.Now()) + 1 },
			expectError: true,
		},
		{
			name:        "invalid precision (zero)",
			mutate:      func(in *ConfigRawInput) { in.Precision = 0 },
			expectError: true,
		},
		{
			name:        "invalid precision (too high)",
			mutate:      func(in *ConfigRawInput) { in.Precision = 3 },
			expectError: true,
		},
		{
			name:        "invalid output format",
			mutate:      func(in *ConfigRawInput) { in.Output = "invalid_format" },
			expectError: true,
		},
		{
			name:   "png output",
			mutate: func(in *ConfigRawInput) { in.Output = "PNG" },
		},
		{
			name:        "negative min plays",
			mutate:      func(in *ConfigRawInput) { in.MinPlays = -5 },
			expectError: true,
		},
		{
			name:        "invalid timeout",
			mutate:      func(in *ConfigRawInput) { in.Timeout = "soon" },
			expectError: true,
		},
		{
			name:        "provider url without placeholders",
			mutate:      func(in *ConfigRawInput) { in.ProviderURL = "https://example.com/qbr" },
			expectError: true,
		},
		{
			name:        "invalid color value",
			mutate:      func(in *ConfigRawInput) { in.Color = "maybe" },
			expectError: true,
		},
		{
			name:        "invalid cache backend",
			mutate:      func(in *ConfigRawInput) { in.CacheBackend = "invalid_backend" },
			expectError: true,
		},
		{
			name:        "mysql backend without connection string",
			mutate:      func(in *ConfigRawInput) { in.CacheBackend = "mysql" },
			expectError: true,
		},
		{
			name: "redis cache backend",
			mutate: func(in *ConfigRawInput) {
				in.CacheBackend = "redis"
				in.CacheDBConnect = "redis://localhost:6379/0"
			},
		},
		{
			name:        "redis runs backend",
			mutate:      func(in *ConfigRawInput) { in.RunsBackend = "redis" },
			expectError: true,
		},
		{
			name: "sqlite cache and runs share default file",
			mutate: func(in *ConfigRawInput) {
				in.RunsBackend = "sqlite"
				in.RunsDBConnect = GetCacheDBFilePath()
			},
			expectError: true,
		},
		{
			name:        "chart too small",
			mutate:      func(in *ConfigRawInput) { in.ChartWidth = 10 },
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := validInput()
			tt.mutate(input)

			cfg := &Config{}
			err := ProcessAndValidate(cfg, input)
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestProcessAndValidateDefaults(t *testing.T) {
	input := validInput()
	input.FirstSeason = 0
	input.LastSeason = 0
	input.PlayerStr = "  Patrick Mahomes "

	cfg := &Config{}
	require.NoError(t, ProcessAndValidate(cfg, input))

	assert.Equal(t, schema.FirstQBRSeason, cfg.FirstSeason)
	assert.Equal(t, CurrentSeason(time.Now()), cfg.LastSeason)
	assert.Equal(t, cfg.LastSeason, cfg.Season)
	assert.Equal(t, "Patrick Mahomes", cfg.Player)
	assert.Equal(t, DefaultDataDir, cfg.DataDir)
	assert.Equal(t, DefaultProviderURL, cfg.ProviderURL)
	assert.Equal(t, DefaultScheduleURL, cfg.ScheduleURL)
	assert.Equal(t, DefaultTimeout, cfg.Timeout)
	assert.Equal(t, DefaultChartWidth, cfg.ChartWidth)
	assert.Equal(t, DefaultChartHeight, cfg.ChartHeight)
	assert.Equal(t, DefaultListenAddr, cfg.Listen)
	assert.True(t, cfg.Logos)
	assert.True(t, cfg.UseColors)
	assert.Equal(t, filepath.Join(DefaultDataDir, SnapshotParquetName), SnapshotParquetPath(cfg.DataDir))
	assert.Equal(t, filepath.Join(DefaultDataDir, SnapshotCSVName), SnapshotCSVPath(cfg.DataDir))
}

func TestCurrentSeason(t *testing.T) {
	tests := []struct {
		name string
		now  time.Time
		want int
	}{
		{"preseason summer", time.Date(2020, time.July, 1, 0, 0, 0, 0, time.UTC), 2019},
		{"season opener", time.Date(2020, time.September, 10, 0, 0, 0, 0, time.UTC), 2020},
		{"playoffs in january", time.Date(2021, time.January, 16, 0, 0, 0, 0, time.UTC), 2020},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CurrentSeason(tt.now))
		})
	}
}

func TestValidateDatabaseConnectionString(t *testing.T) {
	tests := []struct {
		name        string
		backend     schema.DatabaseBackend
		connStr     string
		expectError bool
	}{
		{"sqlite empty", schema.SQLiteBackend, "", false},
		{"none empty", schema.NoneBackend, "", false},
		{"mysql valid", schema.MySQLBackend, "user:pass@tcp(localhost:3306)/gridline", false},
		{"mysql missing tcp", schema.MySQLBackend, "user:pass@localhost/gridline", true},
		{"postgres valid", schema.PostgreSQLBackend, "host=localhost port=5432 dbname=gridline", false},
		{"postgres missing dbname", schema.PostgreSQLBackend, "host=localhost", true},
		{"redis valid", schema.RedisBackend, "redis://localhost:6379/0", false},
		{"redis tls", schema.RedisBackend, "rediss://cache.internal:6380", false},
		{"redis bare host", schema.RedisBackend, "localhost:6379", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDatabaseConnectionString(tt.backend, tt.connStr)
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfigClone(t *testing.T) {
	cfg := &Config{FirstSeason: 2006, LastSeason: 2020, Workers: 8}
	clone := cfg.Clone()
	clone.FirstSeason = 2017

	assert.Equal(t, 8, clone.Workers)
	assert.Equal(t, 2006, cfg.FirstSeason, "original should be untouched")
}

func TestProcessProfilingConfig(t *testing.T) {
	profile := &ProfileConfig{}
	require.NoError(t, ProcessProfilingConfig(profile, ""))
	assert.False(t, profile.Enabled)

	require.NoError(t, ProcessProfilingConfig(profile, "gridline"))
	assert.True(t, profile.Enabled)
	assert.Equal(t, "gridline", profile.Prefix)
}
