package core

import (
	"cmp"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/huangsam/gridline/internal/contract"
	"github.com/huangsam/gridline/internal/teams"
	"github.com/huangsam/gridline/schema"
)

// Overlay and range selector appearance.
const (
	logoSizeX             = 0.9
	logoSizeY             = 9.0
	rangeSliderBackground = "#F2F2F2"
	rangeSliderThickness  = 0.08
	hoverTemplate         = "%{text}<extra></extra>"
	metricLabel           = "Total QBR"
)

// FilterQualified keeps rows with at least minPlays plays.
func FilterQualified(table []schema.GameStatRecord, minPlays int) []schema.GameStatRecord {
	if minPlays <= 0 {
		return table
	}
	out := make([]schema.GameStatRecord, 0, len(table))
	for _, r := range table {
		if r.Plays >= minPlays {
			out = append(out, r)
		}
	}
	return out
}

// SelectSeries returns the player's games in [first, last] in chronological order.
// Multi-team rows are excluded, team codes are normalized and weeks are clamped.
// Game indexes start at 1.
func SelectSeries(table []schema.GameStatRecord, player string, first, last int) []schema.SeriesPoint {
	points := []schema.SeriesPoint{}
	for _, r := range table {
		if r.Player != player || r.Season < first || r.Season > last {
			continue
		}
		if teams.IsMultiTeam(r.Team) {
			continue
		}
		points = append(points, schema.SeriesPoint{
			Season:  r.Season,
			Week:    schema.ClampWeek(r.Week),
			Player:  r.Player,
			Team:    teams.NormalizeCode(r.Team),
			QBR:     r.QBR,
			Plays:   r.Plays,
			Outcome: schema.OutcomeUnknown,
		})
	}
	slices.SortStableFunc(points, func(a, b schema.SeriesPoint) int {
		return cmp.Or(cmp.Compare(a.Season, b.Season), cmp.Compare(a.Week, b.Week))
	})
	for i := range points {
		points[i].GameIndex = i + 1
	}
	return points
}

// gameKey identifies one team's game in a week.
type gameKey struct {
	season int
	week   int
	team   string
}

// scheduledGame is one side of a scheduled game.
type scheduledGame struct {
	game schema.ScheduleRecord
	side schema.Side
}

// indexSchedule maps each (season, week, team) to its game and side.
func indexSchedule(schedule []schema.ScheduleRecord) map[gameKey]scheduledGame {
	index := make(map[gameKey]scheduledGame, 2*len(schedule))
	for _, g := range schedule {
		week := schema.ClampWeek(g.Week)
		index[gameKey{g.Season, week, teams.NormalizeCode(g.HomeTeam)}] = scheduledGame{game: g, side: schema.HomeSide}
		index[gameKey{g.Season, week, teams.NormalizeCode(g.AwayTeam)}] = scheduledGame{game: g, side: schema.AwaySide}
	}
	return index
}

// JoinSchedule fills opponent, side, scores, margin and outcome from the schedule.
// Points without a matching game keep empty opponent fields and an unknown outcome.
func JoinSchedule(points []schema.SeriesPoint, schedule []schema.ScheduleRecord) []schema.SeriesPoint {
	index := indexSchedule(schedule)
	out := slices.Clone(points)
	for i := range out {
		p := &out[i]
		match, ok := index[gameKey{p.Season, p.Week, p.Team}]
		if !ok {
			p.Outcome = DeriveOutcome("", nil)
			continue
		}
		g := match.game
		p.Side = match.side
		p.Margin = g.Margin()
		if match.side == schema.HomeSide {
			p.Opponent = teams.NormalizeCode(g.AwayTeam)
			p.TeamScore, p.OpponentScore = g.HomeScore, g.AwayScore
		} else {
			p.Opponent = teams.NormalizeCode(g.HomeTeam)
			p.TeamScore, p.OpponentScore = g.AwayScore, g.HomeScore
		}
		p.Outcome = DeriveOutcome(p.Side, p.Margin)
	}
	return out
}

// DeriveOutcome resolves the subject's result from its side and the home margin.
// It is total: any input it cannot resolve yields schema.OutcomeUnknown.
func DeriveOutcome(side schema.Side, margin *int) schema.Outcome {
	if margin == nil {
		return schema.OutcomeUnknown
	}
	m := *margin
	switch {
	case side != schema.HomeSide && side != schema.AwaySide:
		return schema.OutcomeUnknown
	case m == 0:
		return schema.OutcomeTie
	case (side == schema.HomeSide) == (m > 0):
		return schema.OutcomeWon
	default:
		return schema.OutcomeLost
	}
}

// HoverText formats the hover label of one point.
func HoverText(p schema.SeriesPoint) string {
	var b strings.Builder

	if schema.IsPlayoffWeek(p.Week) {
		fmt.Fprintf(&b, "%d %s", p.Season, schema.WeekLabel(p.Week))
	} else {
		fmt.Fprintf(&b, "%d Week %d, %s", p.Season, p.Week, schema.WeekLabel(p.Week))
	}

	b.WriteString("<br>")
	b.WriteString(string(p.Outcome))
	if p.TeamScore != nil && p.OpponentScore != nil {
		fmt.Fprintf(&b, " %d-%d", *p.TeamScore, *p.OpponentScore)
	}
	switch p.Side {
	case schema.HomeSide:
		fmt.Fprintf(&b, " vs %s (home)", p.Opponent)
	case schema.AwaySide:
		fmt.Fprintf(&b, " @ %s (away)", p.Opponent)
	}

	fmt.Fprintf(&b, "<br>%s: %.1f on %d plays", metricLabel, p.QBR, p.Plays)
	return b.String()
}

// decorate applies team styles and hover text.
func decorate(points []schema.SeriesPoint, styles contract.TeamStyleLookup) []schema.SeriesPoint {
	for i := range points {
		p := &points[i]
		if styles != nil {
			if style, ok := styles.Lookup(p.Team); ok {
				p.Color = style.Color
			}
			if p.Opponent != "" {
				if style, ok := styles.Lookup(p.Opponent); ok {
					p.OpponentLogo = style.Logo
				}
			}
		}
		p.HoverText = HoverText(*p)
	}
	return points
}

// assembleSeries runs selection, join and decoration.
func assembleSeries(table []schema.GameStatRecord, schedule []schema.ScheduleRecord, styles contract.TeamStyleLookup, player string, first, last int) []schema.SeriesPoint {
	return decorate(JoinSchedule(SelectSeries(table, player, first, last), schedule), styles)
}

// ordinal renders 10 as "10th", 22 as "22nd" and so on.
func ordinal(n int) string {
	suffix := "th"
	if n%100 < 11 || n%100 > 13 {
		switch n % 10 {
		case 1:
			suffix = "st"
		case 2:
			suffix = "nd"
		case 3:
			suffix = "rd"
		}
	}
	return strconv.Itoa(n) + suffix
}

// referenceLines turns cuts into labeled guides. The median is solid, all others dashed.
func referenceLines(ref schema.PercentileReference) []schema.ReferenceLine {
	lines := make([]schema.ReferenceLine, 0, len(ref.Cuts))
	for _, c := range ref.Cuts {
		lines = append(lines, schema.ReferenceLine{
			Label:  ordinal(c.Level),
			Value:  c.Value,
			LabelX: schema.PercentileLabelX,
			Dashed: c.Level != 50,
		})
	}
	return lines
}

// logoOverlays places each opponent logo on its point.
func logoOverlays(points []schema.SeriesPoint, x func(schema.SeriesPoint) float64) []schema.ImageOverlay {
	overlays := []schema.ImageOverlay{}
	for _, p := range points {
		if p.OpponentLogo == "" {
			continue
		}
		overlays = append(overlays, schema.ImageOverlay{
			Source:  p.OpponentLogo,
			X:       x(p),
			Y:       p.QBR,
			SizeX:   logoSizeX,
			SizeY:   logoSizeY,
			XAnchor: "center",
			YAnchor: "middle",
		})
	}
	return overlays
}

// chartTitle appends the playoff marker when any week is past the regular season.
func chartTitle(player, unit, seasons string, maxWeek int) string {
	scope := "Regular Season"
	if schema.IsPlayoffWeek(maxWeek) {
		scope = "including Playoffs"
	}
	return fmt.Sprintf("%s %s by %s, %s %s", player, metricLabel, unit, seasons, scope)
}

func maxWeek(points []schema.SeriesPoint) int {
	m := 0
	for _, p := range points {
		m = max(m, p.Week)
	}
	return m
}

func lineColor(points []schema.SeriesPoint) string {
	if len(points) == 0 {
		return ""
	}
	return points[len(points)-1].Color
}

// BuildStaticChart assembles the single-season chart of metric value by week.
// Percentile cuts come from the entire table. No qualifying rows yields an empty series.
func BuildStaticChart(table []schema.GameStatRecord, schedule []schema.ScheduleRecord, styles contract.TeamStyleLookup, season int, player string) schema.StaticChart {
	points := assembleSeries(table, schedule, styles, player, season, season)
	top := maxWeek(points)

	return schema.StaticChart{
		Title:      chartTitle(player, "Week", strconv.Itoa(season), top),
		Player:     player,
		Season:     season,
		XLabel:     "Week",
		YLabel:     metricLabel,
		XMin:       schema.XAxisLowerBound,
		XMax:       float64(max(schema.RegularSeasonWeeks, top)) + schema.XAxisPadding,
		YMin:       schema.MetricMin,
		YMax:       schema.MetricMax,
		LineColor:  lineColor(points),
		Points:     points,
		References: referenceLines(TablePercentiles(table)),
		Logos:      logoOverlays(points, func(p schema.SeriesPoint) float64 { return float64(p.Week) }),
	}
}

// BuildInteractiveChart assembles the multi-season chart of metric value by running game index.
func BuildInteractiveChart(table []schema.GameStatRecord, schedule []schema.ScheduleRecord, styles contract.TeamStyleLookup, first, last int, player string) schema.InteractiveChart {
	points := assembleSeries(table, schedule, styles, player, first, last)
	n := len(points)

	markers := []schema.SeasonMarker{}
	for i := 1; i < n; i++ {
		if points[i].Season != points[i-1].Season {
			markers = append(markers, schema.SeasonMarker{
				Season:    points[i].Season,
				GameIndex: float64(points[i].GameIndex),
			})
		}
	}

	seasons := strconv.Itoa(first)
	if last != first {
		seasons = fmt.Sprintf("%d-%d", first, last)
	}

	return schema.InteractiveChart{
		Title:         chartTitle(player, "Game", seasons, maxWeek(points)),
		Player:        player,
		FirstSeason:   first,
		LastSeason:    last,
		XLabel:        "Game",
		YLabel:        metricLabel,
		XMin:          schema.XAxisLowerBound,
		XMax:          float64(max(n, 1)) + schema.XAxisPadding,
		YMin:          schema.MetricMin,
		YMax:          schema.MetricMax,
		LineColor:     lineColor(points),
		Points:        points,
		References:    referenceLines(TablePercentiles(table)),
		SeasonMarkers: markers,
		Overlays:      logoOverlays(points, func(p schema.SeriesPoint) float64 { return float64(p.GameIndex) }),
		RangeSlider: schema.RangeSlider{
			Start:           float64(max(0, n-schema.RecentGamesWindow)),
			End:             float64(n + 1),
			BackgroundColor: rangeSliderBackground,
			Thickness:       rangeSliderThickness,
		},
		HoverTemplate: hoverTemplate,
	}
}
