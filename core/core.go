// Package core has core logic for data acquisition and chart assembly.
package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/huangsam/gridline/internal/contract"
	"github.com/huangsam/gridline/internal/outwriter"
	"github.com/huangsam/gridline/internal/provider"
	"github.com/huangsam/gridline/internal/render"
	"github.com/huangsam/gridline/internal/snapshot"
	"github.com/huangsam/gridline/internal/teams"
	"github.com/huangsam/gridline/schema"
)

// ExecutorFunc defines the function signature for executing different commands.
type ExecutorFunc func(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error

// ErrNoPlayer is returned when a chart or series is requested without a player name.
var ErrNoPlayer = errors.New("a player name is required")

// Dataset bundles the read-only inputs of chart assembly.
type Dataset struct {
	Table    []schema.GameStatRecord
	Schedule []schema.ScheduleRecord
	Styles   contract.TeamStyleLookup
}

// LoadDataset loads the persisted table, the team styles and the schedule.
// A schedule that cannot be fetched only drops opponent context, so it is a warning.
func LoadDataset(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) (*Dataset, error) {
	table, err := snapshot.Load(cfg.DataDir)
	if err != nil {
		return nil, err
	}
	styles, err := teams.LoadFile(cfg.TeamsFile)
	if err != nil {
		return nil, err
	}

	var schedule []schema.ScheduleRecord
	if cfg.ScheduleURL != "" {
		schedule, err = provider.NewScheduleProvider(cfg.ScheduleURL, cfg.Timeout, responseStore(mgr)).FetchSchedule(ctx)
		if err != nil {
			contract.LogWarn("Schedule unavailable, opponents and outcomes will be missing", err)
		}
	}

	qualified := FilterQualified(table, cfg.MinPlays)
	if !shouldSuppressHeader(ctx) {
		fmt.Fprintf(os.Stderr, "🏈 Loaded %d qualifying games (min plays: %d), %d scheduled games\n", len(qualified), cfg.MinPlays, len(schedule))
	}

	return &Dataset{
		Table:    qualified,
		Schedule: schedule,
		Styles:   styles,
	}, nil
}

func responseStore(mgr contract.CacheManager) contract.CacheStore {
	if mgr == nil {
		return nil
	}
	return mgr.GetResponseStore()
}

// GetStaticChartResults assembles the single-season chart for cfg.Player and cfg.Season.
func GetStaticChartResults(ds *Dataset, cfg *contract.Config) (schema.StaticChart, error) {
	if cfg.Player == "" {
		return schema.StaticChart{}, ErrNoPlayer
	}
	return BuildStaticChart(ds.Table, ds.Schedule, ds.Styles, cfg.Season, cfg.Player), nil
}

// GetInteractiveChartResults assembles the multi-season chart for cfg.Player.
func GetInteractiveChartResults(ds *Dataset, cfg *contract.Config) (schema.InteractiveChart, error) {
	if cfg.Player == "" {
		return schema.InteractiveChart{}, ErrNoPlayer
	}
	return BuildInteractiveChart(ds.Table, ds.Schedule, ds.Styles, cfg.FirstSeason, cfg.LastSeason, cfg.Player), nil
}

// GetSeriesResults returns the joined series for cfg.Player across the configured seasons.
func GetSeriesResults(ds *Dataset, cfg *contract.Config) ([]schema.SeriesPoint, error) {
	if cfg.Player == "" {
		return nil, ErrNoPlayer
	}
	return assembleSeries(ds.Table, ds.Schedule, ds.Styles, cfg.Player, cfg.FirstSeason, cfg.LastSeason), nil
}

// GetPercentileResults returns the reference cuts of the loaded table.
func GetPercentileResults(ds *Dataset) schema.PercentileReference {
	return TablePercentiles(ds.Table)
}

// ExecuteFetch collects the configured season range and persists the table.
func ExecuteFetch(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	fetcher := provider.NewQBRProvider(cfg.ProviderURL, cfg.Timeout, responseStore(mgr))
	summary, err := RunCollection(ctx, cfg, fetcher, mgr)
	if err != nil {
		return err
	}
	return outwriter.PrintCollectionSummary(summary, cfg)
}

// ExecuteStaticChart renders the single-season chart in the configured output format.
func ExecuteStaticChart(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	start := time.Now()
	ds, err := LoadDataset(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	chart, err := GetStaticChartResults(ds, cfg)
	if err != nil {
		return err
	}
	warnIfEmpty(len(chart.Points), cfg.Player)

	switch cfg.Output {
	case schema.PNGOut, schema.SVGOut:
		opts := render.Options{Width: cfg.ChartWidth, Height: cfg.ChartHeight}
		if cfg.Logos {
			opts.Logos = render.NewHTTPLogoSource(cfg.Timeout)
		}
		return outwriter.WriteRendered(cfg.OutputFile, func(w io.Writer) error {
			return render.RenderStatic(ctx, w, chart, cfg.Output, opts)
		}, fmt.Sprintf("Wrote %s chart", cfg.Output))
	case schema.HTMLOut:
		return fmt.Errorf("html output is only available for interactive charts")
	default:
		return outwriter.PrintStaticChart(chart, cfg, time.Since(start))
	}
}

// ExecuteInteractiveChart renders the multi-season chart in the configured output format.
func ExecuteInteractiveChart(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	start := time.Now()
	ds, err := LoadDataset(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	chart, err := GetInteractiveChartResults(ds, cfg)
	if err != nil {
		return err
	}
	warnIfEmpty(len(chart.Points), cfg.Player)

	switch cfg.Output {
	case schema.HTMLOut:
		return outwriter.WriteRendered(cfg.OutputFile, func(w io.Writer) error {
			return render.WriteInteractiveHTML(w, chart)
		}, "Wrote interactive chart")
	case schema.PNGOut, schema.SVGOut:
		return fmt.Errorf("%s output is only available for static charts", cfg.Output)
	default:
		return outwriter.PrintInteractiveChart(chart, cfg, time.Since(start))
	}
}

// ExecuteSeries prints the joined series for a player.
func ExecuteSeries(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	start := time.Now()
	ds, err := LoadDataset(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	points, err := GetSeriesResults(ds, cfg)
	if err != nil {
		return err
	}
	warnIfEmpty(len(points), cfg.Player)
	return outwriter.PrintSeries(points, GetPercentileResults(ds), cfg, time.Since(start))
}

// ExecutePercentiles prints the reference cuts of the table.
// The schedule is not needed, so only the snapshot is loaded.
func ExecutePercentiles(_ context.Context, cfg *contract.Config, _ contract.CacheManager) error {
	table, err := snapshot.Load(cfg.DataDir)
	if err != nil {
		return err
	}
	return outwriter.PrintPercentiles(TablePercentiles(FilterQualified(table, cfg.MinPlays)), cfg)
}

// ExecuteSnapshotStatus prints what the data directory holds.
func ExecuteSnapshotStatus(_ context.Context, cfg *contract.Config, _ contract.CacheManager) error {
	status, err := snapshot.Status(cfg.DataDir)
	if err != nil && !errors.Is(err, snapshot.ErrNoSnapshot) {
		return err
	}
	return outwriter.PrintSnapshotStatus(status, cfg)
}

func warnIfEmpty(n int, player string) {
	if n == 0 {
		contract.LogWarn("Empty series", fmt.Errorf("no qualifying games for %q", player))
	}
}
