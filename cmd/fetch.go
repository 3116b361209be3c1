package cmd

import (
	"github.com/huangsam/gridline/core"
	"github.com/huangsam/gridline/internal/contract"
	"github.com/spf13/cobra"
)

// fetchCmd collects the weekly Total QBR tables into a snapshot.
var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Collect weekly Total QBR tables into the local snapshot.",
	Long: `Fetch every regular-season and postseason week in the season range and
write the combined table to the data directory.

Each week is one request. Weeks without a published table are counted as gaps,
and weeks that fail are counted as failures; neither stops the run. Rows are
deduplicated and sorted before the snapshot is written as Parquet (lossless)
and CSV (for spreadsheets).

Responses are cached. Past seasons never expire; the current season expires
after 12 hours so new weeks are picked up.

Examples:
  # Collect everything since 2006
  gridline fetch

  # Collect a narrow range with more workers
  gridline fetch --first-season 2019 --last-season 2023 --workers 8

  # Track the run in a separate SQLite database
  gridline fetch --runs-backend sqlite`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteFetch(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot collect Total QBR", err)
		}
	},
}
