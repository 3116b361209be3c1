package cmd

import (
	"github.com/huangsam/gridline/core"
	"github.com/huangsam/gridline/internal/contract"
	"github.com/spf13/cobra"
)

// seriesCmd prints a player's joined game series.
var seriesCmd = &cobra.Command{
	Use:   "series <player>",
	Short: "Show a quarterback's games with opponent, score and tier.",
	Long: `List every qualifying game of a quarterback in the season range, joined with
the schedule for opponent, home/away side, score and outcome.

Each game is tiered against the league percentiles: Elite (90th and up),
Good (75th), Average (25th) or Poor.

Examples:
  # Table output
  gridline series Tom Brady --first-season 2007 --last-season 2007

  # Export for a spreadsheet
  gridline series Tom Brady --output csv --output-file brady.csv`,
	Args:    cobra.MinimumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteSeries(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot build series", err)
		}
	},
}

// percentilesCmd prints the league reference cuts.
var percentilesCmd = &cobra.Command{
	Use:   "percentiles",
	Short: "Show the league-wide Total QBR percentiles.",
	Long: `Compute the 10th, 25th, 50th, 75th, 90th and 98th percentiles over every
qualifying game in the snapshot. These are the reference lines drawn on charts.

Examples:
  gridline percentiles
  gridline percentiles --min-plays 30 --output json`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecutePercentiles(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot compute percentiles", err)
		}
	},
}
