// Package schema holds the data types shared by acquisition, chart assembly and output.
package schema

import (
	"errors"
	"time"
)

// ErrNoData reports that the provider has no records for a (season, week) key.
// Callers treat it as an expected gap rather than a failure.
var ErrNoData = errors.New("no data for week")

// WeekKey identifies one provider request.
// Week is the game week: 1..17 for the regular season and 18..22 for postseason rounds.
type WeekKey struct {
	Season int `json:"season"`
	Week   int `json:"game_week"`
}

// SeasonType returns the provider season type for the key.
func (k WeekKey) SeasonType() int {
	if k.Week > RegularSeasonWeeks {
		return PostseasonType
	}
	return RegularSeasonType
}

// ProviderWeek returns the week number as the provider numbers it within its season type.
func (k WeekKey) ProviderWeek() int {
	if k.Week > RegularSeasonWeeks {
		return k.Week - RegularSeasonWeeks
	}
	return k.Week
}

// GameStatRecord is one row of the flat statistic table.
type GameStatRecord struct {
	Season int               `json:"season"`
	Week   int               `json:"game_week"`
	Player string            `json:"player"`
	Team   string            `json:"team"`
	QBR    float64           `json:"qbr"`
	Plays  int               `json:"plays"`
	Extra  map[string]string `json:"extra,omitempty"` // provider passthrough columns
}

// ScheduleRecord is one scheduled game.
type ScheduleRecord struct {
	Season    int    `json:"season"`
	Week      int    `json:"week"`
	HomeTeam  string `json:"home_team"`
	AwayTeam  string `json:"away_team"`
	HomeScore *int   `json:"home_score,omitempty"`
	AwayScore *int   `json:"away_score,omitempty"`
	Result    *int   `json:"result,omitempty"` // home score minus away score
}

// Margin returns the signed home margin, or nil when the game has no final score.
func (s ScheduleRecord) Margin() *int {
	if s.Result != nil {
		return s.Result
	}
	if s.HomeScore == nil || s.AwayScore == nil {
		return nil
	}
	m := *s.HomeScore - *s.AwayScore
	return &m
}

// TeamStyle is the display style of one team.
type TeamStyle struct {
	Code           string `json:"code"`
	Name           string `json:"name"`
	Color          string `json:"color"`
	SecondaryColor string `json:"secondary_color"`
	Logo           string `json:"logo"`
}

// CollectionSummary reports the outcome of one acquisition run.
type CollectionSummary struct {
	RunKey      string        `json:"run_key"`
	FirstSeason int           `json:"first_season"`
	LastSeason  int           `json:"last_season"`
	Requests    int           `json:"requests"`
	Gaps        int           `json:"gaps"`
	Failures    int           `json:"failures"`
	Records     int           `json:"records"`
	Duplicates  int           `json:"duplicates"`
	Duration    time.Duration `json:"duration"`
	ParquetPath string        `json:"parquet_path"`
	CSVPath     string        `json:"csv_path"`
}
