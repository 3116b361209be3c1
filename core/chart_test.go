package core

import (
	"fmt"
	"testing"

	"github.com/huangsam/gridline/internal/teams"
	"github.com/huangsam/gridline/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func game(season, week int, home, away string, homeScore, awayScore int) schema.ScheduleRecord {
	return schema.ScheduleRecord{
		Season: season, Week: week, HomeTeam: home, AwayTeam: away,
		HomeScore: intPtr(homeScore), AwayScore: intPtr(awayScore),
	}
}

func loadStyles(t *testing.T) teams.Styles {
	t.Helper()
	styles, err := teams.Load()
	require.NoError(t, err)
	return styles
}

// regularSeasonTable has weeks 1..16 of one player plus a second player for the reference cuts.
func regularSeasonTable() []schema.GameStatRecord {
	var table []schema.GameStatRecord
	for week := 1; week <= 16; week++ {
		table = append(table,
			rec(2007, week, "Tom Brady", "NE", 60+float64(week), 30+week),
			rec(2007, week, "Peyton Manning", "IND", 40+float64(week), 30),
		)
	}
	return table
}

func TestBuildStaticChart_RegularSeason(t *testing.T) {
	table := regularSeasonTable()
	chart := BuildStaticChart(table, nil, loadStyles(t), 2007, "Tom Brady")

	assert.Equal(t, "Tom Brady Total QBR by Week, 2007 Regular Season", chart.Title)
	assert.Equal(t, schema.XAxisLowerBound, chart.XMin)
	assert.Equal(t, 17.4, chart.XMax)
	assert.Equal(t, 0.0, chart.YMin)
	assert.Equal(t, 100.0, chart.YMax)
	assert.Equal(t, "#002244", chart.LineColor)

	require.Len(t, chart.Points, 16)
	for i, p := range chart.Points {
		assert.Equal(t, i+1, p.Week)
		assert.Equal(t, i+1, p.GameIndex)
		assert.Equal(t, schema.OutcomeUnknown, p.Outcome, "no schedule means no outcome")
	}

	require.Len(t, chart.References, len(schema.PercentileLevels))
	expected := TablePercentiles(table)
	for i, line := range chart.References {
		assert.Equal(t, expected.Cuts[i].Value, line.Value, "cuts come from the whole table")
		assert.Equal(t, schema.PercentileLabelX, line.LabelX)
		assert.Equal(t, expected.Cuts[i].Level != 50, line.Dashed)
	}
	assert.Equal(t, "50th", chart.References[2].Label)
	assert.Empty(t, chart.Logos)
}

func TestBuildStaticChart_Playoffs(t *testing.T) {
	table := []schema.GameStatRecord{
		rec(2007, 17, "Tom Brady", "NE", 70, 30),
		rec(2007, 19, "Tom Brady", "NE", 80, 30),
		rec(2007, 22, "Tom Brady", "NE", 55, 40),
	}
	chart := BuildStaticChart(table, nil, nil, 2007, "Tom Brady")

	assert.Equal(t, "Tom Brady Total QBR by Week, 2007 including Playoffs", chart.Title)
	require.Len(t, chart.Points, 3)
	assert.Equal(t, 21, chart.Points[2].Week, "Super Bowl is clamped")
	assert.Equal(t, 21.4, chart.XMax)
	assert.Contains(t, chart.Points[2].HoverText, "2007 Super Bowl")
}

func TestBuildStaticChart_RelocatedTeam(t *testing.T) {
	styles := loadStyles(t)
	table := []schema.GameStatRecord{rec(2016, 3, "Jared Goff", "LAR", 45, 35)}
	schedule := []schema.ScheduleRecord{game(2016, 3, "SEA", "LA", 24, 3)}

	chart := BuildStaticChart(table, schedule, styles, 2016, "Jared Goff")
	require.Len(t, chart.Points, 1)

	la, ok := styles.Lookup("LA")
	require.True(t, ok)
	p := chart.Points[0]
	assert.Equal(t, "LA", p.Team)
	assert.Equal(t, la.Color, p.Color)
	assert.Equal(t, la.Color, chart.LineColor)
	assert.Equal(t, schema.AwaySide, p.Side)
	assert.Equal(t, schema.OutcomeLost, p.Outcome)

	require.Len(t, chart.Logos, 1)
	assert.Equal(t, 3.0, chart.Logos[0].X)
	assert.Equal(t, 45.0, chart.Logos[0].Y)
	assert.Equal(t, "center", chart.Logos[0].XAnchor)
}

func TestBuildStaticChart_EmptySeries(t *testing.T) {
	chart := BuildStaticChart(regularSeasonTable(), nil, nil, 2007, "Nobody")
	assert.NotNil(t, chart.Points)
	assert.Empty(t, chart.Points)
	assert.Equal(t, 17.4, chart.XMax)
	assert.Len(t, chart.References, len(schema.PercentileLevels), "cuts still come from the table")
}

func TestSelectSeries_MultiTeamExcluded(t *testing.T) {
	table := []schema.GameStatRecord{
		rec(2009, 1, "Kyle Orton", "DEN", 55, 30),
		rec(2009, 2, "Kyle Orton", "DEN/KC", 40, 30),
		rec(2008, 2, "Kyle Orton", "CHI", 40, 30),
	}
	points := SelectSeries(table, "Kyle Orton", 2009, 2009)
	require.Len(t, points, 1)
	assert.Equal(t, "DEN", points[0].Team)
}

func TestBuildInteractiveChart_SeasonMarkers(t *testing.T) {
	var table []schema.GameStatRecord
	for season := 2017; season <= 2019; season++ {
		for week := 1; week <= 3; week++ {
			table = append(table, rec(season, week, "Tom Brady", "NE", 70, 35))
		}
	}

	chart := BuildInteractiveChart(table, nil, nil, 2017, 2019, "Tom Brady")

	assert.Equal(t, "Tom Brady Total QBR by Game, 2017-2019 Regular Season", chart.Title)
	require.Len(t, chart.Points, 9)
	assert.Equal(t, []schema.SeasonMarker{
		{Season: 2018, GameIndex: 4},
		{Season: 2019, GameIndex: 7},
	}, chart.SeasonMarkers)
	assert.Equal(t, 9.4, chart.XMax)
	assert.Equal(t, schema.XAxisLowerBound, chart.XMin)
	assert.Equal(t, 0.0, chart.RangeSlider.Start)
	assert.Equal(t, 10.0, chart.RangeSlider.End)
	assert.Equal(t, "#F2F2F2", chart.RangeSlider.BackgroundColor)
	assert.Equal(t, 0.08, chart.RangeSlider.Thickness)
	assert.Equal(t, "%{text}<extra></extra>", chart.HoverTemplate)
}

func TestBuildInteractiveChart_RangeWindow(t *testing.T) {
	var table []schema.GameStatRecord
	for season := 2010; season <= 2012; season++ {
		for week := 1; week <= 14; week++ {
			table = append(table, rec(season, week, "Drew Brees", "NO", 65, 40))
		}
	}

	chart := BuildInteractiveChart(table, nil, nil, 2010, 2012, "Drew Brees")
	require.Len(t, chart.Points, 42)
	assert.Equal(t, 12.0, chart.RangeSlider.Start, "window shows the 30 most recent games")
	assert.Equal(t, 43.0, chart.RangeSlider.End)
	assert.Equal(t, 42, chart.Points[41].GameIndex)
}

func TestBuildInteractiveChart_SingleSeasonEmpty(t *testing.T) {
	chart := BuildInteractiveChart(nil, nil, nil, 2015, 2015, "Nobody")
	assert.Equal(t, "Nobody Total QBR by Game, 2015 Regular Season", chart.Title)
	assert.Empty(t, chart.Points)
	assert.Empty(t, chart.SeasonMarkers)
	assert.Equal(t, 1.4, chart.XMax)
	assert.Equal(t, 0.0, chart.RangeSlider.Start)
	assert.Equal(t, 1.0, chart.RangeSlider.End)
	assert.Empty(t, chart.References)
}

func TestJoinSchedule(t *testing.T) {
	points := []schema.SeriesPoint{
		{Season: 2007, Week: 1, Team: "NE"},
		{Season: 2007, Week: 2, Team: "NE"},
		{Season: 2007, Week: 3, Team: "NE"},
		{Season: 2007, Week: 4, Team: "NE"},
	}
	schedule := []schema.ScheduleRecord{
		game(2007, 1, "NE", "NYJ", 38, 14),
		game(2007, 2, "SD", "NE", 14, 38),
		game(2007, 3, "NE", "BUF", 17, 17),
	}

	joined := JoinSchedule(points, schedule)
	require.Len(t, joined, 4)

	assert.Equal(t, "NYJ", joined[0].Opponent)
	assert.Equal(t, schema.HomeSide, joined[0].Side)
	assert.Equal(t, 24, *joined[0].Margin)
	assert.Equal(t, 38, *joined[0].TeamScore)
	assert.Equal(t, 14, *joined[0].OpponentScore)
	assert.Equal(t, schema.OutcomeWon, joined[0].Outcome)

	assert.Equal(t, "LAC", joined[1].Opponent, "opponent codes are normalized")
	assert.Equal(t, schema.AwaySide, joined[1].Side)
	assert.Equal(t, -24, *joined[1].Margin)
	assert.Equal(t, 38, *joined[1].TeamScore)
	assert.Equal(t, schema.OutcomeWon, joined[1].Outcome)

	assert.Equal(t, schema.OutcomeTie, joined[2].Outcome, "zero home margin is a tie")

	assert.Empty(t, joined[3].Opponent)
	assert.Nil(t, joined[3].Margin)
	assert.Equal(t, schema.OutcomeUnknown, joined[3].Outcome)

	assert.Empty(t, points[0].Opponent, "input is not modified")
}

func TestJoinSchedule_UnplayedGame(t *testing.T) {
	points := []schema.SeriesPoint{{Season: 2024, Week: 5, Team: "KC"}}
	schedule := []schema.ScheduleRecord{{Season: 2024, Week: 5, HomeTeam: "NO", AwayTeam: "KC"}}

	joined := JoinSchedule(points, schedule)
	assert.Equal(t, "NO", joined[0].Opponent)
	assert.Equal(t, schema.AwaySide, joined[0].Side)
	assert.Equal(t, schema.OutcomeUnknown, joined[0].Outcome)
}

func TestDeriveOutcome(t *testing.T) {
	tests := []struct {
		side     schema.Side
		margin   *int
		expected schema.Outcome
	}{
		{schema.HomeSide, intPtr(7), schema.OutcomeWon},
		{schema.HomeSide, intPtr(-3), schema.OutcomeLost},
		{schema.HomeSide, intPtr(0), schema.OutcomeTie},
		{schema.AwaySide, intPtr(7), schema.OutcomeLost},
		{schema.AwaySide, intPtr(-3), schema.OutcomeWon},
		{schema.AwaySide, intPtr(0), schema.OutcomeTie},
		{schema.HomeSide, nil, schema.OutcomeUnknown},
		{"", intPtr(7), schema.OutcomeUnknown},
		{"neutral", intPtr(0), schema.OutcomeUnknown},
	}
	for _, tt := range tests {
		name := fmt.Sprintf("%s/%v", tt.side, tt.margin != nil)
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DeriveOutcome(tt.side, tt.margin))
		})
	}
}

func TestHoverText(t *testing.T) {
	tests := []struct {
		name     string
		point    schema.SeriesPoint
		expected string
	}{
		{
			name: "home win",
			point: schema.SeriesPoint{
				Season: 2007, Week: 1, QBR: 87.3, Plays: 40, Opponent: "NYJ", Side: schema.HomeSide,
				TeamScore: intPtr(38), OpponentScore: intPtr(14), Outcome: schema.OutcomeWon,
			},
			expected: "2007 Week 1, Regular Season<br>Won 38-14 vs NYJ (home)<br>Total QBR: 87.3 on 40 plays",
		},
		{
			name: "playoff away loss",
			point: schema.SeriesPoint{
				Season: 2011, Week: 21, QBR: 62.4, Plays: 51, Opponent: "NYG", Side: schema.AwaySide,
				TeamScore: intPtr(17), OpponentScore: intPtr(21), Outcome: schema.OutcomeLost,
			},
			expected: "2011 Super Bowl<br>Lost 17-21 @ NYG (away)<br>Total QBR: 62.4 on 51 plays",
		},
		{
			name:     "no schedule",
			point:    schema.SeriesPoint{Season: 2015, Week: 3, QBR: 50, Plays: 22, Outcome: schema.OutcomeUnknown},
			expected: "2015 Week 3, Regular Season<br>Unknown<br>Total QBR: 50.0 on 22 plays",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, HoverText(tt.point))
		})
	}
}

func TestFilterQualified(t *testing.T) {
	table := []schema.GameStatRecord{
		rec(2007, 1, "A", "NE", 50, 5),
		rec(2007, 1, "B", "NE", 50, 20),
		rec(2007, 1, "C", "NE", 50, 25),
	}
	assert.Len(t, FilterQualified(table, 20), 2)
	assert.Len(t, FilterQualified(table, 0), 3)
}

func TestOrdinal(t *testing.T) {
	cases := map[int]string{1: "1st", 2: "2nd", 3: "3rd", 10: "10th", 11: "11th", 12: "12th", 22: "22nd", 98: "98th", 101: "101st"}
	for n, expected := range cases {
		assert.Equal(t, expected, ordinal(n))
	}
}
