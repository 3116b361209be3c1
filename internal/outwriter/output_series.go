package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/huangsam/gridline/internal/contract"
	"github.com/huangsam/gridline/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// seriesFixedWidth is the table width taken by every column except the game label.
const seriesFixedWidth = 62

// SeriesResult is the JSON shape of a player's series.
type SeriesResult struct {
	Player      string                     `json:"player"`
	FirstSeason int                        `json:"first_season"`
	LastSeason  int                        `json:"last_season"`
	Points      []schema.SeriesPoint       `json:"points"`
	Percentiles schema.PercentileReference `json:"percentiles"`
}

// PrintSeries outputs a player's series, dispatching based on the output format configured.
func PrintSeries(points []schema.SeriesPoint, ref schema.PercentileReference, cfg *contract.Config, duration time.Duration) error {
	fmtFloat := ratingFormatter(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		result := SeriesResult{
			Player:      cfg.Player,
			FirstSeason: cfg.FirstSeason,
			LastSeason:  cfg.LastSeason,
			Points:      points,
			Percentiles: ref,
		}
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, result)
		}, "Wrote JSON series"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := printCSVSeries(points, ref, cfg, fmtFloat); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.TextOut, "":
		if err := printSeriesTable(os.Stdout, points, ref, cfg, fmtFloat); err != nil {
			return fmt.Errorf("error writing series table output: %w", err)
		}
		fmt.Printf("Series assembled in %v. Cache backend: %s\n", duration, cfg.CacheBackend)
	default:
		return fmt.Errorf("output format %s is not supported for series", cfg.Output)
	}
	return nil
}

// PrintStaticChart outputs the single-season chart model. Image formats go through the renderer.
func PrintStaticChart(chart schema.StaticChart, cfg *contract.Config, duration time.Duration) error {
	fmtFloat := ratingFormatter(cfg.Precision)
	ref := referenceFromLines(chart.References)

	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, chart)
		}, "Wrote JSON chart")
	case schema.CSVOut:
		return printCSVSeries(chart.Points, ref, cfg, fmtFloat)
	case schema.TextOut, "":
		fmt.Println(chart.Title)
		if err := printSeriesTable(os.Stdout, chart.Points, ref, cfg, fmtFloat); err != nil {
			return fmt.Errorf("error writing chart table output: %w", err)
		}
		fmt.Println(formatReferenceLines(chart.References, fmtFloat))
		fmt.Printf("Chart assembled in %v. Cache backend: %s\n", duration, cfg.CacheBackend)
		return nil
	default:
		return fmt.Errorf("output format %s is not supported for static charts", cfg.Output)
	}
}

// PrintInteractiveChart outputs the multi-season chart model. HTML goes through the renderer.
func PrintInteractiveChart(chart schema.InteractiveChart, cfg *contract.Config, duration time.Duration) error {
	fmtFloat := ratingFormatter(cfg.Precision)
	ref := referenceFromLines(chart.References)

	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, chart)
		}, "Wrote JSON chart")
	case schema.CSVOut:
		return printCSVSeries(chart.Points, ref, cfg, fmtFloat)
	case schema.TextOut, "":
		fmt.Println(chart.Title)
		if err := printSeriesTable(os.Stdout, chart.Points, ref, cfg, fmtFloat); err != nil {
			return fmt.Errorf("error writing chart table output: %w", err)
		}
		fmt.Println(formatReferenceLines(chart.References, fmtFloat))
		if len(chart.SeasonMarkers) > 0 {
			var parts []string
			for _, m := range chart.SeasonMarkers {
				parts = append(parts, fmt.Sprintf("%d@%g", m.Season, m.GameIndex))
			}
			fmt.Printf("Season starts: %s\n", strings.Join(parts, ", "))
		}
		fmt.Printf("Chart assembled in %v. Cache backend: %s\n", duration, cfg.CacheBackend)
		return nil
	default:
		return fmt.Errorf("output format %s is not supported for interactive charts", cfg.Output)
	}
}

// printCSVSeries handles opening the file and calling the CSV writer.
func printCSVSeries(points []schema.SeriesPoint, ref schema.PercentileReference, cfg *contract.Config, fmtFloat func(float64) string) error {
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		csvWriter := csv.NewWriter(w)
		defer csvWriter.Flush()
		return writeCSVSeries(csvWriter, points, ref, fmtFloat)
	}, "Wrote CSV series")
}

// printSeriesTable prints one row per game.
func printSeriesTable(w io.Writer, points []schema.SeriesPoint, ref schema.PercentileReference, cfg *contract.Config, fmtFloat func(float64) string) error {
	table := tablewriter.NewWriter(w)

	// --- 1. Define Headers ---
	table.Header([]string{"Game", "Season", "Week", "Team", "Matchup", "Result", "QBR", "Plays", "Tier"})

	// --- 2. Configure Alignment ---
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	// --- 3. Prepare Data Rows ---
	labelWidth := GetMaxTableLabelWidth(cfg, seriesFixedWidth)
	var data [][]string
	for _, p := range points {
		outcome := string(p.Outcome)
		tier := contract.GetPlainTier(p.QBR, ref)
		if cfg.UseColors {
			outcome = contract.GetColorOutcome(p.Outcome)
			tier = contract.GetColorTier(p.QBR, ref)
		}
		data = append(data, []string{
			fmt.Sprintf("%d", p.GameIndex),
			fmt.Sprintf("%d", p.Season),
			fmt.Sprintf("%d", p.Week),
			p.Team,
			contract.TruncateName(matchupLabel(p), labelWidth),
			strings.TrimSpace(outcome + " " + scoreLabel(p)),
			fmtFloat(p.QBR),
			fmt.Sprintf("%d", p.Plays),
			tier,
		})
	}

	// --- 4. Render the table ---
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

// matchupLabel renders "Week 5 vs NYJ" or "Super Bowl @ NYG".
func matchupLabel(p schema.SeriesPoint) string {
	label := schema.WeekLabel(p.Week)
	if !schema.IsPlayoffWeek(p.Week) {
		label = fmt.Sprintf("Week %d", p.Week)
	}
	switch p.Side {
	case schema.HomeSide:
		return label + " vs " + p.Opponent
	case schema.AwaySide:
		return label + " @ " + p.Opponent
	default:
		return label
	}
}

func scoreLabel(p schema.SeriesPoint) string {
	if p.TeamScore == nil || p.OpponentScore == nil {
		return ""
	}
	return fmt.Sprintf("%d-%d", *p.TeamScore, *p.OpponentScore)
}

// referenceFromLines recovers the cuts behind labeled reference lines for tiering.
func referenceFromLines(lines []schema.ReferenceLine) schema.PercentileReference {
	ref := schema.PercentileReference{}
	for _, l := range lines {
		var level int
		if _, err := fmt.Sscanf(l.Label, "%d", &level); err == nil {
			ref.Cuts = append(ref.Cuts, schema.PercentileCut{Level: level, Value: l.Value})
		}
	}
	return ref
}

func formatReferenceLines(lines []schema.ReferenceLine, fmtFloat func(float64) string) string {
	if len(lines) == 0 {
		return "Reference: none (empty table)"
	}
	parts := make([]string, 0, len(lines))
	for _, l := range lines {
		parts = append(parts, fmt.Sprintf("%s=%s", l.Label, fmtFloat(l.Value)))
	}
	return "Reference: " + strings.Join(parts, "  ")
}
