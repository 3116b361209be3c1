package contract

import (
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/huangsam/gridline/schema"
)

// Default values for configuration.
const (
	DefaultDataDir      = "data"
	DefaultPrecision    = 1
	DefaultChartWidth   = 1200
	DefaultChartHeight  = 675
	DefaultTimeout      = 30 * time.Second
	DefaultListenAddr   = ":8080"
	DefaultProviderURL  = "https://www.espn.com/nfl/qbr/_/season/{season}/seasontype/{seasontype}/week/{week}"
	DefaultScheduleURL  = "https://github.com/nflverse/nfldata/raw/master/data/games.csv"
	SnapshotParquetName = "qbr.parquet"
	SnapshotCSVName     = "qbr.csv"
)

// DefaultWorkers is the default number of concurrent workers to use.
var DefaultWorkers = runtime.GOMAXPROCS(0)

// DateTimeFormat is the default date time representation.
var DateTimeFormat = time.RFC3339

// Config holds the runtime configuration.
// This struct remains the "final, validated" config.
type Config struct {
	DataDir     string
	Workers     int
	FirstSeason int
	LastSeason  int
	Season      int
	Player      string
	ProviderURL string
	ScheduleURL string
	TeamsFile   string
	MinPlays    int
	Timeout     time.Duration
	Precision   int
	Output      schema.OutputMode
	OutputFile  string
	Width       int // Terminal width override (0 = auto-detect)
	ChartWidth  int
	ChartHeight int
	Logos       bool
	Listen      string

	CacheBackend   schema.DatabaseBackend
	CacheDBConnect string // Please use env var as this is plaintext

	RunsBackend   schema.DatabaseBackend
	RunsDBConnect string // Please use env var as this is plaintext

	UseColors bool // Enable colored labels in table output
}

// ProfileConfig holds profiling settings.
type ProfileConfig struct {
	Enabled bool
	Prefix  string
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// This is set manually from positional args, so no tag
	PlayerStr string

	// --- Fields from rootCmd.PersistentFlags() ---
	DataDir        string `mapstructure:"data-dir"`
	Workers        int    `mapstructure:"workers"`
	FirstSeason    int    `mapstructure:"first-season"`
	LastSeason     int    `mapstructure:"last-season"`
	ProviderURL    string `mapstructure:"provider-url"`
	ScheduleURL    string `mapstructure:"schedule-url"`
	TeamsFile      string `mapstructure:"teams-file"`
	MinPlays       int    `mapstructure:"min-plays"`
	Timeout        string `mapstructure:"timeout"`
	Precision      int    `mapstructure:"precision"`
	Output         string `mapstructure:"output"`
	OutputFile     string `mapstructure:"output-file"`
	Width          int    `mapstructure:"width"`
	CacheBackend   string `mapstructure:"cache-backend"`
	CacheDBConnect string `mapstructure:"cache-db-connect"`
	RunsBackend    string `mapstructure:"runs-backend"`
	RunsDBConnect  string `mapstructure:"runs-db-connect"`
	Color          string `mapstructure:"color"`

	// --- Fields from chartCmd.PersistentFlags() ---
	Season      int    `mapstructure:"season"`
	ChartWidth  int    `mapstructure:"chart-width"`
	ChartHeight int    `mapstructure:"chart-height"`
	Logos       string `mapstructure:"logos"`

	// --- Fields from serveCmd.Flags() ---
	Listen string `mapstructure:"listen"`
}

// Clone returns a copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// SnapshotParquetPath returns the lossless snapshot location in dataDir.
func SnapshotParquetPath(dataDir string) string {
	return filepath.Join(dataDir, SnapshotParquetName)
}

// SnapshotCSVPath returns the delimited export location in dataDir.
func SnapshotCSVPath(dataDir string) string {
	return filepath.Join(dataDir, SnapshotCSVName)
}

// ProcessAndValidate performs all parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := processSeasonRange(cfg, input, time.Now()); err != nil {
		return err
	}
	if err := validateBackendConfigs(cfg, input); err != nil {
		return err
	}
	return nil
}

// ProcessProfilingConfig enables profiling when a file prefix is given.
func ProcessProfilingConfig(profile *ProfileConfig, profilePrefix string) error {
	if profilePrefix != "" {
		profile.Enabled = true
		profile.Prefix = profilePrefix
	}
	return nil
}

// CurrentSeason returns the season that is in progress (or most recently finished) at now.
// A season starts in September and its playoffs run into the following February.
func CurrentSeason(now time.Time) int {
	if now.Month() >= time.September {
		return now.Year()
	}
	return now.Year() - 1
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL, PostgreSQL and Redis backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	case schema.RedisBackend:
		if connStr == "" {
			return fmt.Errorf("db-connect is required when using %s backend", backend)
		}
		if !strings.HasPrefix(connStr, "redis://") && !strings.HasPrefix(connStr, "rediss://") {
			return fmt.Errorf("Redis connection string must start with 'redis://' or 'rediss://'")
		}
	}
	return nil
}

// validateBackendConfigs validates cache and run backend configurations.
func validateBackendConfigs(cfg *Config, input *ConfigRawInput) error {
	// --- Cache Backend Validation ---
	cfg.CacheBackend = schema.DatabaseBackend(strings.ToLower(input.CacheBackend))
	if _, ok := schema.ValidDatabaseBackends[cfg.CacheBackend]; !ok {
		return fmt.Errorf("invalid cache backend '%s'. must be sqlite, mysql, postgresql, redis, none", input.CacheBackend)
	}
	cfg.CacheDBConnect = input.CacheDBConnect
	if err := ValidateDatabaseConnectionString(cfg.CacheBackend, cfg.CacheDBConnect); err != nil {
		return err
	}

	// --- Run Backend Validation ---
	cfg.RunsBackend = schema.DatabaseBackend(strings.ToLower(input.RunsBackend))
	if cfg.RunsBackend == "" {
		return nil
	}
	if cfg.RunsBackend == schema.RedisBackend {
		return fmt.Errorf("runs backend cannot be redis. must be sqlite, mysql, postgresql, none")
	}
	if _, ok := schema.ValidDatabaseBackends[cfg.RunsBackend]; !ok {
		return fmt.Errorf("invalid runs backend '%s'. must be sqlite, mysql, postgresql, none", input.RunsBackend)
	}
	cfg.RunsDBConnect = input.RunsDBConnect
	if err := ValidateDatabaseConnectionString(cfg.RunsBackend, cfg.RunsDBConnect); err != nil {
		return err
	}

	// Validate that cache and runs use different SQLite files
	if cfg.CacheBackend == schema.SQLiteBackend && cfg.RunsBackend == schema.SQLiteBackend {
		cachePath := cfg.CacheDBConnect
		if cachePath == "" {
			cachePath = GetCacheDBFilePath()
		}
		runsPath := cfg.RunsDBConnect
		if runsPath == "" {
			runsPath = GetRunsDBFilePath()
		}
		if cachePath == runsPath {
			return fmt.Errorf("cache and run storage must use different SQLite database files. Both resolve to %q", cachePath)
		}
	}

	return nil
}

// validateSimpleInputs processes and validates all fields that do not depend on the clock.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	// --- 0. Transfer simple non-validated fields from input -> cfg ---
	cfg.Player = strings.TrimSpace(input.PlayerStr)
	cfg.OutputFile = input.OutputFile
	cfg.Width = input.Width
	cfg.TeamsFile = input.TeamsFile
	cfg.Listen = input.Listen
	if cfg.Listen == "" {
		cfg.Listen = DefaultListenAddr
	}

	cfg.DataDir = strings.TrimSpace(input.DataDir)
	if cfg.DataDir == "" {
		cfg.DataDir = DefaultDataDir
	}

	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	cfg.Logos = true
	if input.Logos != "" {
		logos, err := ParseBoolString(input.Logos)
		if err != nil {
			return fmt.Errorf("invalid --logos value: %w", err)
		}
		cfg.Logos = logos
	}

	// --- 1. Workers Validation ---
	if input.Workers <= 0 {
		return fmt.Errorf("workers must be greater than 0 (received %d)", input.Workers)
	}
	cfg.Workers = input.Workers

	// --- 2. Provider Validation ---
	cfg.ProviderURL = input.ProviderURL
	if cfg.ProviderURL == "" {
		cfg.ProviderURL = DefaultProviderURL
	}
	if !strings.Contains(cfg.ProviderURL, "{season}") || !strings.Contains(cfg.ProviderURL, "{week}") {
		return fmt.Errorf("provider-url must contain {season} and {week} placeholders (received %q)", cfg.ProviderURL)
	}
	cfg.ScheduleURL = input.ScheduleURL
	if cfg.ScheduleURL == "" {
		cfg.ScheduleURL = DefaultScheduleURL
	}

	cfg.Timeout = DefaultTimeout
	if input.Timeout != "" {
		timeout, err := time.ParseDuration(input.Timeout)
		if err != nil {
			return fmt.Errorf("invalid timeout '%s': %w", input.Timeout, err)
		}
		if timeout <= 0 {
			return fmt.Errorf("timeout must be positive (received %s)", input.Timeout)
		}
		cfg.Timeout = timeout
	}

	// --- 3. Qualification Validation ---
	if input.MinPlays < 0 {
		return fmt.Errorf("min-plays cannot be negative (received %d)", input.MinPlays)
	}
	cfg.MinPlays = input.MinPlays

	// --- 4. Precision and Output Validation ---
	if input.Precision < 1 || input.Precision > 2 {
		return fmt.Errorf("precision must be 1 or 2 (received %d)", input.Precision)
	}
	cfg.Precision = input.Precision

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if cfg.Output == "" {
		cfg.Output = schema.TextOut
	}
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json, parquet, png, svg, html", cfg.Output)
	}

	// --- 5. Chart Dimensions ---
	cfg.ChartWidth = input.ChartWidth
	if cfg.ChartWidth == 0 {
		cfg.ChartWidth = DefaultChartWidth
	}
	cfg.ChartHeight = input.ChartHeight
	if cfg.ChartHeight == 0 {
		cfg.ChartHeight = DefaultChartHeight
	}
	if cfg.ChartWidth < 200 || cfg.ChartHeight < 150 {
		return fmt.Errorf("chart dimensions must be at least 200x150 (received %dx%d)", cfg.ChartWidth, cfg.ChartHeight)
	}

	return nil
}

// processSeasonRange resolves the first/last/single season settings against the clock.
func processSeasonRange(cfg *Config, input *ConfigRawInput, now time.Time) error {
	current := CurrentSeason(now)

	cfg.FirstSeason = input.FirstSeason
	if cfg.FirstSeason == 0 {
		cfg.FirstSeason = schema.FirstQBRSeason
	}
	cfg.LastSeason = input.LastSeason
	if cfg.LastSeason == 0 {
		cfg.LastSeason = current
	}

	if cfg.FirstSeason < schema.FirstQBRSeason {
		return fmt.Errorf("first-season cannot be before %d (received %d)", schema.FirstQBRSeason, cfg.FirstSeason)
	}
	if cfg.LastSeason > current {
		return fmt.Errorf("last-season cannot be after the current season %d (received %d)", current, cfg.LastSeason)
	}
	if cfg.FirstSeason > cfg.LastSeason {
		return fmt.Errorf("first-season (%d) cannot be after last-season (%d)", cfg.FirstSeason, cfg.LastSeason)
	}

	cfg.Season = input.Season
	if cfg.Season == 0 {
		cfg.Season = cfg.LastSeason
	}
	if cfg.Season < schema.FirstQBRSeason || cfg.Season > current {
		return fmt.Errorf("season must be between %d and %d (received %d)", schema.FirstQBRSeason, current, cfg.Season)
	}

	return nil
}
