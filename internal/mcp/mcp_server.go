// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/huangsam/gridline/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer initializes and configures the Gridline MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, mgr contract.CacheManager) *server.MCPServer {
	s := server.NewMCPServer(
		"Gridline Chart Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		mgr:     mgr,
	}

	// --- 1. Tool: get_player_series ---
	s.AddTool(mcp.NewTool("get_player_series",
		mcp.WithDescription("Return a quarterback's per-game Total QBR with opponent, score and outcome."),
		mcp.WithString("player", mcp.Description("Player display name, e.g. 'Tom Brady'."), mcp.Required()),
		mcp.WithNumber("first_season", mcp.Description("First season to include (defaults to the configured range).")),
		mcp.WithNumber("last_season", mcp.Description("Last season to include (defaults to the configured range).")),
	), h.handleGetPlayerSeries)

	// --- 2. Tool: get_percentiles ---
	s.AddTool(mcp.NewTool("get_percentiles",
		mcp.WithDescription("Return the 10/25/50/75/90/98th percentile reference cuts over every qualifying game."),
	), h.handleGetPercentiles)

	// --- 3. Tool: get_static_chart ---
	s.AddTool(mcp.NewTool("get_static_chart",
		mcp.WithDescription("Build a single-season chart of Total QBR by week."),
		mcp.WithString("player", mcp.Description("Player display name."), mcp.Required()),
		mcp.WithNumber("season", mcp.Description("Season to chart (defaults to the latest configured season).")),
		mcp.WithString("format", mcp.Description("Result format. Defaults to 'json'."), mcp.Enum("json", "png", "svg")),
	), h.handleGetStaticChart)

	// --- 4. Tool: get_interactive_chart ---
	s.AddTool(mcp.NewTool("get_interactive_chart",
		mcp.WithDescription("Build a multi-season chart of Total QBR by game with season markers and a range slider."),
		mcp.WithString("player", mcp.Description("Player display name."), mcp.Required()),
		mcp.WithNumber("first_season", mcp.Description("First season to include.")),
		mcp.WithNumber("last_season", mcp.Description("Last season to include.")),
		mcp.WithString("format", mcp.Description("Result format: the chart model, a Plotly figure, or an HTML page. Defaults to 'json'."), mcp.Enum("json", "plotly", "html")),
	), h.handleGetInteractiveChart)

	return s
}

// StartMCPServer starts the Gridline MCP server.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, mgr contract.CacheManager) error {
	s := NewMCPServer(baseCfg, mgr)
	return server.ServeStdio(s)
}
