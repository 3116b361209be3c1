package cmd

import (
	"github.com/huangsam/gridline/core"
	"github.com/huangsam/gridline/internal/contract"
	"github.com/spf13/cobra"
)

// snapshotCmd groups snapshot inspection.
var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Inspect the local Total QBR snapshot",
}

// snapshotStatusCmd shows what the data directory holds.
var snapshotStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display snapshot size, rows, players and seasons",
	Long: `Show the Parquet and CSV snapshot files in the data directory with their sizes,
the number of rows and players, and the season range they cover.

Examples:
  gridline snapshot status
  gridline snapshot status --data-dir /srv/gridline --output json`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteSnapshotStatus(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot read snapshot status", err)
		}
	},
}
