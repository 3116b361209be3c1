package mcp

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/huangsam/gridline/core"
	"github.com/huangsam/gridline/internal/contract"
	"github.com/huangsam/gridline/internal/outwriter"
	"github.com/huangsam/gridline/internal/render"
	"github.com/huangsam/gridline/schema"
	"github.com/mark3labs/mcp-go/mcp"
)

// toolHandler holds common dependencies for MCP tool handlers.
// The dataset is loaded on the first call and reused; a failed load is retried next call.
type toolHandler struct {
	baseCfg *contract.Config
	mgr     contract.CacheManager

	mu sync.Mutex
	ds *core.Dataset
}

func (h *toolHandler) dataset(ctx context.Context) (*core.Dataset, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.ds != nil {
		return h.ds, nil
	}
	ds, err := core.LoadDataset(core.WithSuppressHeader(ctx), h.baseCfg, h.mgr)
	if err != nil {
		return nil, err
	}
	h.ds = ds
	return ds, nil
}

// requestConfig applies the player and season arguments to a clone of the base config.
func (h *toolHandler) requestConfig(request mcp.CallToolRequest) (*contract.Config, error) {
	cfg := h.baseCfg.Clone()
	cfg.Player = request.GetString("player", "")
	if cfg.Player == "" {
		return nil, core.ErrNoPlayer
	}
	if s := request.GetInt("season", 0); s > 0 {
		cfg.Season = s
	}
	if s := request.GetInt("first_season", 0); s > 0 {
		cfg.FirstSeason = s
	}
	if s := request.GetInt("last_season", 0); s > 0 {
		cfg.LastSeason = s
	}
	if cfg.FirstSeason > cfg.LastSeason {
		return nil, fmt.Errorf("first_season %d is after last_season %d", cfg.FirstSeason, cfg.LastSeason)
	}
	return cfg, nil
}

func jsonResult(v any) *mcp.CallToolResult {
	jsonData, _ := json.MarshalIndent(v, "", "  ")
	return mcp.NewToolResultText(string(jsonData))
}

func (h *toolHandler) handleGetPlayerSeries(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, err := h.requestConfig(request)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid parameters: %v", err)), nil
	}
	ds, err := h.dataset(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("loading data failed: %v", err)), nil
	}

	points, err := core.GetSeriesResults(ds, cfg)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("series failed: %v", err)), nil
	}
	return jsonResult(outwriter.SeriesResult{
		Player:      cfg.Player,
		FirstSeason: cfg.FirstSeason,
		LastSeason:  cfg.LastSeason,
		Points:      points,
		Percentiles: core.GetPercentileResults(ds),
	}), nil
}

func (h *toolHandler) handleGetPercentiles(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ds, err := h.dataset(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("loading data failed: %v", err)), nil
	}
	return jsonResult(core.GetPercentileResults(ds)), nil
}

func (h *toolHandler) handleGetStaticChart(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, err := h.requestConfig(request)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid parameters: %v", err)), nil
	}
	ds, err := h.dataset(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("loading data failed: %v", err)), nil
	}

	chart, err := core.GetStaticChartResults(ds, cfg)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("chart failed: %v", err)), nil
	}

	format := schema.OutputMode(request.GetString("format", string(schema.JSONOut)))
	switch format {
	case schema.JSONOut:
		return jsonResult(chart), nil
	case schema.PNGOut, schema.SVGOut:
		var buf bytes.Buffer
		opts := render.Options{Width: cfg.ChartWidth, Height: cfg.ChartHeight}
		if err := render.RenderStatic(ctx, &buf, chart, format, opts); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("rendering failed: %v", err)), nil
		}
		if format == schema.SVGOut {
			return mcp.NewToolResultText(buf.String()), nil
		}
		return mcp.NewToolResultImage(chart.Title, base64.StdEncoding.EncodeToString(buf.Bytes()), "image/png"), nil
	default:
		return mcp.NewToolResultError(fmt.Sprintf("unsupported format %q", format)), nil
	}
}

func (h *toolHandler) handleGetInteractiveChart(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, err := h.requestConfig(request)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid parameters: %v", err)), nil
	}
	ds, err := h.dataset(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("loading data failed: %v", err)), nil
	}

	chart, err := core.GetInteractiveChartResults(ds, cfg)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("chart failed: %v", err)), nil
	}

	switch format := request.GetString("format", "json"); format {
	case "json":
		return jsonResult(chart), nil
	case "plotly":
		return jsonResult(render.PlotlyFigure(chart)), nil
	case "html":
		var buf bytes.Buffer
		if err := render.WriteInteractiveHTML(&buf, chart); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("rendering failed: %v", err)), nil
		}
		return mcp.NewToolResultText(buf.String()), nil
	default:
		return mcp.NewToolResultError(fmt.Sprintf("unsupported format %q", format)), nil
	}
}
