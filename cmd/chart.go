package cmd

import (
	"github.com/huangsam/gridline/core"
	"github.com/huangsam/gridline/internal/contract"
	"github.com/spf13/cobra"
)

// chartCmd groups the chart builders.
var chartCmd = &cobra.Command{
	Use:   "chart",
	Short: "Chart a quarterback's Total QBR against league percentiles.",
	Long: `Chart a quarterback's games against the 10th, 25th, 50th, 75th, 90th and
98th percentiles of every qualifying game in the snapshot.

Subcommands:
  static      - One season by week (png, svg, json, csv, text)
  interactive - Many seasons by game with a range slider (html, json, csv, text)`,
}

// chartStaticCmd builds the single-season chart.
var chartStaticCmd = &cobra.Command{
	Use:   "static <player>",
	Short: "Chart one season of a quarterback by week.",
	Long: `Build a chart of Total QBR by week for one season.

Postseason rounds follow week 17: Wild Card, Divisional, Conference and
Super Bowl. Each point is colored with the team color and, for rendered
output, decorated with the opponent's logo.

Examples:
  # Render a PNG
  gridline chart static Tom Brady --season 2007 --output png --output-file brady-2007.png

  # Vector output without logos
  gridline chart static "Patrick Mahomes" --season 2022 --output svg --logos no --output-file mahomes.svg

  # Inspect the chart model
  gridline chart static Tom Brady --season 2007 --output json`,
	Args:    cobra.MinimumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteStaticChart(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot build static chart", err)
		}
	},
}

// chartInteractiveCmd builds the multi-season chart.
var chartInteractiveCmd = &cobra.Command{
	Use:   "interactive <player>",
	Short: "Chart a quarterback's career by game with a range slider.",
	Long: `Build a chart of Total QBR by running game number across the season range.

Seasons are separated by vertical markers. The HTML page opens on the most
recent 30 games; drag the range slider to scroll back.

Examples:
  # Write a standalone page
  gridline chart interactive Aaron Rodgers --output html --output-file rodgers.html

  # Limit the range
  gridline chart interactive Drew Brees --first-season 2010 --last-season 2015 --output html --output-file brees.html`,
	Args:    cobra.MinimumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteInteractiveChart(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot build interactive chart", err)
		}
	},
}
