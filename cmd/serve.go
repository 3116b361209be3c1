package cmd

import (
	"github.com/huangsam/gridline/internal/contract"
	"github.com/huangsam/gridline/internal/server"
	"github.com/spf13/cobra"
)

// serveCmd serves chart previews over HTTP.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve series, percentiles and chart previews over HTTP",
	Long: `Load the snapshot once and serve it over HTTP until interrupted.

Routes:
  GET /health
  GET /api/players/{player}/series?first_season=&last_season=
  GET /api/percentiles
  GET /charts/static.png?player=&season=
  GET /charts/static.svg?player=&season=
  GET /charts/interactive.json?player=&first_season=&last_season=
  GET /charts/interactive.html?player=&first_season=&last_season=

Examples:
  gridline serve --listen :8080
  curl -o brady.png "localhost:8080/charts/static.png?player=Tom%20Brady&season=2007"`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := server.ExecuteServe(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Server stopped", err)
		}
	},
}
