package provider

import (
	"context"
	_ "embed"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/huangsam/gridline/internal/iocache"
	"github.com/huangsam/gridline/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

//go:embed testdata/qbr_week.html
var qbrWeekHTML []byte

//go:embed testdata/qbr_split.html
var qbrSplitHTML []byte

//go:embed testdata/qbr_empty.html
var qbrEmptyHTML []byte

//go:embed testdata/games.csv
var gamesCSV []byte

// newQBRServer serves fixture pages by path and counts requests.
func newQBRServer(t *testing.T, pages map[string][]byte, hits *atomic.Int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits != nil {
			hits.Add(1)
		}
		if r.URL.Path == "/boom" {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		body, ok := pages[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write(body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestWeekURL(t *testing.T) {
	p := NewQBRProvider("https://example.com/season/{season}/seasontype/{seasontype}/week/{week}", time.Second, nil)

	tests := []struct {
		key  schema.WeekKey
		want string
	}{
		{schema.WeekKey{Season: 2007, Week: 1}, "https://example.com/season/2007/seasontype/2/week/1"},
		{schema.WeekKey{Season: 2007, Week: 17}, "https://example.com/season/2007/seasontype/2/week/17"},
		{schema.WeekKey{Season: 2007, Week: 18}, "https://example.com/season/2007/seasontype/3/week/1"},
		{schema.WeekKey{Season: 2007, Week: 22}, "https://example.com/season/2007/seasontype/3/week/5"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, p.WeekURL(tt.key))
		})
	}
}

func TestFetchWeek(t *testing.T) {
	srv := newQBRServer(t, map[string][]byte{
		"/2007/2/1":  qbrWeekHTML,
		"/2019/3/1":  qbrSplitHTML,
		"/2019/3/5":  qbrSplitHTML,
		"/2008/2/5":  qbrEmptyHTML,
		"/2010/2/99": []byte("<html><body>nothing</body></html>"),
	}, nil)
	p := NewQBRProvider(srv.URL+"/{season}/{seasontype}/{week}", time.Second, nil)
	ctx := context.Background()

	t.Run("single table", func(t *testing.T) {
		records, err := p.FetchWeek(ctx, schema.WeekKey{Season: 2007, Week: 1})
		require.NoError(t, err)
		require.Len(t, records, 3, "rows without a player or numeric QBR are skipped")

		brady := records[0]
		assert.Equal(t, 2007, brady.Season)
		assert.Equal(t, 1, brady.Week)
		assert.Equal(t, "Tom Brady", brady.Player)
		assert.Equal(t, "NE", brady.Team)
		assert.InDelta(t, 87.3, brady.QBR, 1e-9)
		assert.Equal(t, 61, brady.Plays)
		assert.Equal(t, "45.1", brady.Extra["paa"])
		assert.Equal(t, "12.4", brady.Extra["epa"])
		assert.Equal(t, "1", brady.Extra["rk"])

		assert.Equal(t, 1002, records[1].Plays, "thousands separators are accepted")
		assert.Equal(t, "DEN/KC", records[2].Team, "multi-team labels are kept for downstream filtering")
	})

	t.Run("split layout with embedded team", func(t *testing.T) {
		records, err := p.FetchWeek(ctx, schema.WeekKey{Season: 2019, Week: 18})
		require.NoError(t, err)
		require.Len(t, records, 2)

		assert.Equal(t, "Aaron Rodgers", records[0].Player)
		assert.Equal(t, "GB", records[0].Team)
		assert.Equal(t, 18, records[0].Week)
		assert.InDelta(t, 91.2, records[0].QBR, 1e-9)
		assert.Equal(t, 48, records[0].Plays)

		assert.Equal(t, "Jared Goff", records[1].Player)
		assert.Equal(t, "LAR", records[1].Team)
		assert.Equal(t, "70.0", records[1].Extra["raw"])
	})

	t.Run("super bowl records land on the last display week", func(t *testing.T) {
		records, err := p.FetchWeek(ctx, schema.WeekKey{Season: 2019, Week: 22})
		require.NoError(t, err)
		require.NotEmpty(t, records)
		assert.Equal(t, schema.MaxDisplayWeek, records[0].Week)
	})

	t.Run("empty table is a gap", func(t *testing.T) {
		_, err := p.FetchWeek(ctx, schema.WeekKey{Season: 2008, Week: 5})
		assert.ErrorIs(t, err, schema.ErrNoData)
	})

	t.Run("page without tables is a gap", func(t *testing.T) {
		_, err := NewQBRProvider(srv.URL+"/2010/2/99?{season}{week}", time.Second, nil).
			FetchWeek(ctx, schema.WeekKey{Season: 2010, Week: 1})
		assert.ErrorIs(t, err, schema.ErrNoData)
	})

	t.Run("404 is a gap", func(t *testing.T) {
		_, err := p.FetchWeek(ctx, schema.WeekKey{Season: 2011, Week: 3})
		assert.ErrorIs(t, err, schema.ErrNoData)
	})

	t.Run("pre-coverage season is a gap without a request", func(t *testing.T) {
		_, err := p.FetchWeek(ctx, schema.WeekKey{Season: 2005, Week: 1})
		assert.ErrorIs(t, err, schema.ErrNoData)
	})

	t.Run("server error is a failure", func(t *testing.T) {
		bad := NewQBRProvider(srv.URL+"/boom?s={season}&w={week}", time.Second, nil)
		_, err := bad.FetchWeek(ctx, schema.WeekKey{Season: 2012, Week: 1})
		require.Error(t, err)
		assert.NotErrorIs(t, err, schema.ErrNoData)
		assert.Contains(t, err.Error(), "500")
	})
}

func TestParseQBRTable_RatingHeaders(t *testing.T) {
	key := schema.WeekKey{Season: 2021, Week: 3}
	tests := []struct {
		name string
		page string
	}{
		{"single table TQBR", `<table><tr><th>RK</th><th>NAME</th><th>TEAM</th><th>TQBR</th><th>PLAYS</th></tr>
			<tr><td>1</td><td>Josh Allen</td><td>BUF</td><td>84.6</td><td>55</td></tr></table>`},
		{"split tables TQBR", `<table><tr><th>RK</th><th>NAME</th></tr><tr><td>1</td><td>Josh Allen</td></tr></table>
			<table><tr><th>TQBR</th><th>PAA</th><th>PLAYS</th></tr><tr><td>84.6</td><td>20.3</td><td>55</td></tr></table>`},
		{"total qbr", `<table><tr><th>Name</th><th>Total QBR</th><th>Action Plays</th></tr>
			<tr><td>Josh Allen</td><td>84.6</td><td>55</td></tr></table>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records, err := ParseQBRTable([]byte(tt.page), key)
			require.NoError(t, err)
			require.Len(t, records, 1)
			assert.Equal(t, "Josh Allen", records[0].Player)
			assert.InDelta(t, 84.6, records[0].QBR, 1e-9)
			assert.Equal(t, 55, records[0].Plays)
		})
	}
}

func TestFetchWeek_Caching(t *testing.T) {
	var hits atomic.Int32
	store, err := iocache.NewCacheStore("response_cache", schema.SQLiteBackend, ":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	p := NewQBRProvider("", time.Second, store)
	current := p.currentSeason

	srv := newQBRServer(t, map[string][]byte{
		"/2007/1":                          qbrWeekHTML,
		"/" + strconv.Itoa(current) + "/1": qbrWeekHTML,
	}, &hits)
	p.urlTemplate = srv.URL + "/{season}/{week}"
	ctx := context.Background()

	// Past seasons never expire
	_, err = p.FetchWeek(ctx, schema.WeekKey{Season: 2007, Week: 1})
	require.NoError(t, err)
	base := p.now()
	p.now = func() time.Time { return base.Add(365 * 24 * time.Hour) }
	_, err = p.FetchWeek(ctx, schema.WeekKey{Season: 2007, Week: 1})
	require.NoError(t, err)
	assert.Equal(t, int32(1), hits.Load())

	// Current season expires after the freshness window
	p.now = func() time.Time { return base }
	_, err = p.FetchWeek(ctx, schema.WeekKey{Season: current, Week: 1})
	require.NoError(t, err)
	p.now = func() time.Time { return base.Add(time.Hour) }
	_, err = p.FetchWeek(ctx, schema.WeekKey{Season: current, Week: 1})
	require.NoError(t, err)
	assert.Equal(t, int32(2), hits.Load())

	p.now = func() time.Time { return base.Add(CurrentSeasonTTL + time.Hour) }
	_, err = p.FetchWeek(ctx, schema.WeekKey{Season: current, Week: 1})
	require.NoError(t, err)
	assert.Equal(t, int32(3), hits.Load())

	// 404s are not cached
	_, err = p.FetchWeek(ctx, schema.WeekKey{Season: 2009, Week: 9})
	assert.ErrorIs(t, err, schema.ErrNoData)
	_, err = p.FetchWeek(ctx, schema.WeekKey{Season: 2009, Week: 9})
	assert.ErrorIs(t, err, schema.ErrNoData)
	assert.Equal(t, int32(5), hits.Load())

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, 2, status.TotalEntries)
}

func TestCacheKey(t *testing.T) {
	a := CacheKey("https://example.com/a")
	b := CacheKey("https://example.com/b")
	assert.Len(t, a, 64)
	assert.NotEqual(t, a, b)
	assert.Equal(t, a, CacheKey("https://example.com/a"))
}

func TestParseSchedule(t *testing.T) {
	records, err := ParseSchedule(strings.NewReader(string(gamesCSV)))
	require.NoError(t, err)
	require.Len(t, records, 7, "regular-season weeks past 17 are dropped")

	first := records[0]
	assert.Equal(t, 2007, first.Season)
	assert.Equal(t, 1, first.Week)
	assert.Equal(t, "NE", first.HomeTeam)
	assert.Equal(t, "NYJ", first.AwayTeam)
	require.NotNil(t, first.Result)
	assert.Equal(t, 24, *first.Result)

	weeks := map[string]int{}
	for _, r := range records {
		weeks[r.HomeTeam+"-"+r.AwayTeam+"-"+strconv.Itoa(r.Season)] = r.Week
	}
	assert.Equal(t, 19, weeks["NE-JAX-2007"])
	assert.Equal(t, 21, weeks["NYG-NE-2007"])
	assert.Equal(t, 18, weeks["BUF-NE-2021"], "wild card is week 18 regardless of the source week")
	assert.Equal(t, 21, weeks["CIN-LA-2021"], "super bowl is week 21")

	last := records[len(records)-1]
	assert.Nil(t, last.HomeScore)
	assert.Nil(t, last.AwayScore)
	assert.Nil(t, last.Result)
	assert.Nil(t, last.Margin())
}

func TestParseSchedule_WithoutGameType(t *testing.T) {
	csvData := "season,week,home_team,away_team,home_score,away_score\n" +
		"2010,22,GB,PIT,31,25\n" +
		"2010,1,GB,PHI,,\n" +
		"x,1,GB,PHI,1,2\n"
	records, err := ParseSchedule(strings.NewReader(csvData))
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, 21, records[0].Week, "weeks past the super bowl clamp")
	require.NotNil(t, records[0].Margin())
	assert.Equal(t, 6, *records[0].Margin())
	assert.Nil(t, records[1].Margin())
}

func TestParseSchedule_MissingColumns(t *testing.T) {
	_, err := ParseSchedule(strings.NewReader("season,week,home_team\n2010,1,GB\n"))
	assert.Error(t, err)

	_, err = ParseSchedule(strings.NewReader(""))
	assert.Error(t, err)
}

func TestFetchSchedule(t *testing.T) {
	var hits atomic.Int32
	srv := newQBRServer(t, map[string][]byte{"/games.csv": gamesCSV}, &hits)
	store, err := iocache.NewCacheStore("response_cache", schema.SQLiteBackend, ":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	p := NewScheduleProvider(srv.URL+"/games.csv", time.Second, store)
	records, err := p.FetchSchedule(context.Background())
	require.NoError(t, err)
	assert.Len(t, records, 7)

	_, err = p.FetchSchedule(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(1), hits.Load(), "second fetch is served from cache")

	missing := NewScheduleProvider(srv.URL+"/missing.csv", time.Second, nil)
	_, err = missing.FetchSchedule(context.Background())
	assert.ErrorIs(t, err, schema.ErrNoData)
}
