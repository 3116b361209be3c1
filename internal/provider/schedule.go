package provider

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/huangsam/gridline/internal/contract"
	"github.com/huangsam/gridline/schema"
)

// postseasonWeeks maps schedule game types to game weeks.
var postseasonWeeks = map[string]int{
	"WC":  18,
	"DIV": 19,
	"CON": 20,
	"SB":  21,
}

// ScheduleProvider reads a games CSV with one row per scheduled game.
type ScheduleProvider struct {
	url string
	fetcher
}

var _ contract.ScheduleSource = (*ScheduleProvider)(nil) // Compile-time check

// NewScheduleProvider creates a provider for the CSV at url.
func NewScheduleProvider(url string, timeout time.Duration, cache contract.CacheStore) *ScheduleProvider {
	return &ScheduleProvider{url: url, fetcher: newFetcher(timeout, cache)}
}

// FetchSchedule implements contract.ScheduleSource.
func (p *ScheduleProvider) FetchSchedule(ctx context.Context) ([]schema.ScheduleRecord, error) {
	body, err := p.get(ctx, p.url, CurrentSeasonTTL)
	if err != nil {
		return nil, err
	}
	return ParseSchedule(bytes.NewReader(body))
}

// ParseSchedule reads schedule rows keyed by header name.
// Required columns are season, week, home_team and away_team. When a game_type column is
// present, postseason games are placed on weeks 18..21 and regular-season weeks past 17
// are dropped. Without it, weeks are clamped to the Super Bowl week.
func ParseSchedule(r io.Reader) ([]schema.ScheduleRecord, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read schedule header: %w", err)
	}
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, col := range []string{"season", "week", "home_team", "away_team"} {
		if _, ok := idx[col]; !ok {
			return nil, fmt.Errorf("schedule is missing the %s column", col)
		}
	}
	get := func(row []string, col string) string {
		if i, ok := idx[col]; ok && i < len(row) {
			return strings.TrimSpace(row[i])
		}
		return ""
	}
	_, hasGameType := idx["game_type"]

	var records []schema.ScheduleRecord
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read schedule row: %w", err)
		}

		season, err := strconv.Atoi(get(row, "season"))
		if err != nil {
			continue
		}
		week, err := strconv.Atoi(get(row, "week"))
		if err != nil {
			continue
		}

		if hasGameType {
			gameType := strings.ToUpper(get(row, "game_type"))
			if w, ok := postseasonWeeks[gameType]; ok {
				week = w
			} else if week > schema.RegularSeasonWeeks {
				continue
			}
		} else {
			week = schema.ClampWeek(week)
		}

		records = append(records, schema.ScheduleRecord{
			Season:    season,
			Week:      week,
			HomeTeam:  strings.ToUpper(get(row, "home_team")),
			AwayTeam:  strings.ToUpper(get(row, "away_team")),
			HomeScore: parseOptionalInt(get(row, "home_score")),
			AwayScore: parseOptionalInt(get(row, "away_score")),
			Result:    parseOptionalInt(get(row, "result")),
		})
	}
	return records, nil
}

// parseOptionalInt returns nil for blank or NA cells.
func parseOptionalInt(s string) *int {
	if s == "" || strings.EqualFold(s, "NA") {
		return nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil {
			return nil
		}
		v = int(f)
	}
	return &v
}
