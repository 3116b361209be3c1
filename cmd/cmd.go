// Package cmd defines the command-line interface for gridline.
package cmd

import (
	"github.com/huangsam/gridline/internal/contract"
	"github.com/huangsam/gridline/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(fetchCmd)
	rootCmd.AddCommand(chartCmd)
	rootCmd.AddCommand(seriesCmd)
	rootCmd.AddCommand(percentilesCmd)
	rootCmd.AddCommand(snapshotCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(runsCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(versionCmd)

	// Add the chart subcommands to the parent chart command
	chartCmd.AddCommand(chartStaticCmd)
	chartCmd.AddCommand(chartInteractiveCmd)

	// Add the snapshot subcommands to the parent snapshot command
	snapshotCmd.AddCommand(snapshotStatusCmd)

	// Add the cache subcommands to the parent cache command
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheStatusCmd)

	// Add the runs subcommands to the parent runs command
	runsCmd.AddCommand(runsClearCmd)
	runsCmd.AddCommand(runsStatusCmd)
	runsCmd.AddCommand(runsListCmd)
	runsCmd.AddCommand(runsMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().String("data-dir", contract.DefaultDataDir, "Directory holding the snapshot files")
	rootCmd.PersistentFlags().Int("first-season", 0, "First season to include (default: first season with Total QBR)")
	rootCmd.PersistentFlags().Int("last-season", 0, "Last season to include (default: current season)")
	rootCmd.PersistentFlags().Int("min-plays", schema.DefaultMinPlays, "Minimum action plays for a game to qualify")
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or csv or json or parquet or png or svg or html")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().Int("precision", contract.DefaultPrecision, "Decimal precision for numeric columns")
	rootCmd.PersistentFlags().String("profile", "", "Enable profiling and write profiles to files with this prefix")
	rootCmd.PersistentFlags().Int("workers", contract.DefaultWorkers, "Number of concurrent workers")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("timeout", contract.DefaultTimeout.String(), "Timeout for each remote request")
	rootCmd.PersistentFlags().String("provider-url", contract.DefaultProviderURL, "Weekly stat page template with {season}, {seasontype} and {week} placeholders")
	rootCmd.PersistentFlags().String("schedule-url", contract.DefaultScheduleURL, "Schedule CSV location")
	rootCmd.PersistentFlags().String("teams-file", "", "Team styles CSV (default: embedded table)")
	rootCmd.PersistentFlags().String("cache-backend", string(schema.SQLiteBackend), "Cache backend: sqlite or mysql or postgresql or redis or none")
	rootCmd.PersistentFlags().String("cache-db-connect", "", "Connection string for mysql/postgresql/redis (e.g., redis://localhost:6379/0)")
	rootCmd.PersistentFlags().String("runs-backend", "", "Run tracking backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("runs-db-connect", "", "Connection string for run tracking (must differ from cache-db-connect)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all persistent flags of chartCmd to Viper
	chartCmd.PersistentFlags().Int("season", 0, "Season for the static chart (default: last season)")
	chartCmd.PersistentFlags().Int("chart-width", contract.DefaultChartWidth, "Rendered chart width in pixels")
	chartCmd.PersistentFlags().Int("chart-height", contract.DefaultChartHeight, "Rendered chart height in pixels")
	chartCmd.PersistentFlags().String("logos", "yes", "Draw opponent logos on rendered charts (yes/no)")
	if err := viper.BindPFlags(chartCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding chart flags", err)
	}

	// Bind all flags of serveCmd to Viper
	serveCmd.Flags().String("listen", contract.DefaultListenAddr, "Address to serve charts on")
	if err := viper.BindPFlags(serveCmd.Flags()); err != nil {
		contract.LogFatal("Error binding serve flags", err)
	}

	// Bind all flags of runsListCmd to Viper
	runsListCmd.Flags().Int("limit", 20, "Number of runs to list")
	if err := viper.BindPFlags(runsListCmd.Flags()); err != nil {
		contract.LogFatal("Error binding runs list flags", err)
	}

	// Bind all flags of runsMigrateCmd to Viper
	runsMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(runsMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding runs migrate flags", err)
	}
}
