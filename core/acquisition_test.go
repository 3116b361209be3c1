package core

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/huangsam/gridline/internal/contract"
	"github.com/huangsam/gridline/internal/iocache"
	"github.com/huangsam/gridline/internal/snapshot"
	"github.com/huangsam/gridline/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// fakeFetcher serves canned weeks and records every key it was asked for.
type fakeFetcher struct {
	mu     sync.Mutex
	weeks  map[schema.WeekKey][]schema.GameStatRecord
	fail   map[schema.WeekKey]bool
	called []schema.WeekKey
}

func (f *fakeFetcher) FetchWeek(_ context.Context, key schema.WeekKey) ([]schema.GameStatRecord, error) {
	f.mu.Lock()
	f.called = append(f.called, key)
	f.mu.Unlock()

	if f.fail[key] {
		return nil, errors.New("connection reset")
	}
	records, ok := f.weeks[key]
	if !ok {
		return nil, schema.ErrNoData
	}
	return records, nil
}

func rec(season, week int, player, team string, qbr float64, plays int) schema.GameStatRecord {
	return schema.GameStatRecord{Season: season, Week: week, Player: player, Team: team, QBR: qbr, Plays: plays}
}

func TestPlanWeeks(t *testing.T) {
	t.Run("single season", func(t *testing.T) {
		keys := PlanWeeks(2010, 2010)
		assert.Len(t, keys, 21)
		assert.Equal(t, schema.WeekKey{Season: 2010, Week: 1}, keys[0])
		assert.Equal(t, schema.WeekKey{Season: 2010, Week: 22}, keys[len(keys)-1])
		assert.NotContains(t, keys, schema.WeekKey{Season: 2010, Week: 21})
		for _, k := range keys {
			if k.Week > schema.RegularSeasonWeeks {
				assert.Equal(t, schema.PostseasonType, k.SeasonType(), "game week %d is only planned as a playoff round", k.Week)
			}
		}
	})

	t.Run("seasons before coverage are skipped", func(t *testing.T) {
		keys := PlanWeeks(2004, 2006)
		assert.Len(t, keys, 21)
		assert.Equal(t, 2006, keys[0].Season)
	})

	t.Run("empty range", func(t *testing.T) {
		assert.Empty(t, PlanWeeks(2012, 2011))
	})
}

func TestCollect(t *testing.T) {
	k1 := schema.WeekKey{Season: 2007, Week: 1}
	k2 := schema.WeekKey{Season: 2007, Week: 2}
	k3 := schema.WeekKey{Season: 2007, Week: 3}
	k4 := schema.WeekKey{Season: 2007, Week: 4}

	fetcher := &fakeFetcher{
		weeks: map[schema.WeekKey][]schema.GameStatRecord{
			k1: {rec(2007, 1, "Tom Brady", "NE", 87.3, 40), rec(2007, 1, "Peyton Manning", "IND", 70.1, 38)},
			k2: {rec(2007, 2, "Tom Brady", "NE", 90.5, 35)},
		},
		fail: map[schema.WeekKey]bool{k4: true},
	}

	result := Collect(context.Background(), fetcher, []schema.WeekKey{k1, k2, k3, k4}, 3)
	assert.Equal(t, 4, result.Requests)
	assert.Equal(t, 1, result.Gaps)
	assert.Equal(t, 1, result.Failures)
	assert.Len(t, result.Records, 3)
	assert.ElementsMatch(t, []schema.WeekKey{k1, k2, k3, k4}, fetcher.called)
}

func TestCollect_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	fetcher := &fakeFetcher{}
	result := Collect(ctx, fetcher, PlanWeeks(2007, 2007), 2)
	assert.Equal(t, 21, result.Requests)
	assert.Equal(t, 21, result.Failures)
	assert.Empty(t, fetcher.called)
}

func TestDedupe(t *testing.T) {
	records := []schema.GameStatRecord{
		rec(2008, 1, "Tom Brady", "NE", 50, 10),
		rec(2007, 2, "Tom Brady", "NE", 80, 30),
		rec(2007, 2, "Tom Brady", "NE", 81, 31),
		rec(2007, 1, "Tom Brady", "NE", 70, 30),
	}

	kept, dupes := Dedupe(records)
	assert.Equal(t, 1, dupes)
	require.Len(t, kept, 3)
	assert.Equal(t, 1, kept[0].Week)
	assert.Equal(t, 81.0, kept[1].QBR, "row with the most plays is kept")
	assert.Equal(t, 2008, kept[2].Season)
	assert.Equal(t, 2008, records[0].Season, "input is not reordered")

	t.Run("kept row does not depend on input order", func(t *testing.T) {
		a := rec(2007, 2, "Tom Brady", "NE", 60, 30)
		b := rec(2007, 2, "Tom Brady", "NE", 75, 30)
		forward, _ := Dedupe([]schema.GameStatRecord{a, b})
		backward, _ := Dedupe([]schema.GameStatRecord{b, a})
		require.Len(t, forward, 1)
		assert.Equal(t, forward, backward)
		assert.Equal(t, 75.0, forward[0].QBR, "equal plays fall back to the higher rating")
	})
}

// cancelingFetcher cancels the run as soon as the first week comes back.
type cancelingFetcher struct {
	once   sync.Once
	cancel context.CancelFunc
}

func (f *cancelingFetcher) FetchWeek(_ context.Context, key schema.WeekKey) ([]schema.GameStatRecord, error) {
	f.once.Do(f.cancel)
	return []schema.GameStatRecord{rec(key.Season, key.Week, "Tom Brady", "NE", 50, 30)}, nil
}

func TestRunCollection(t *testing.T) {
	fetcher := &fakeFetcher{
		weeks: map[schema.WeekKey][]schema.GameStatRecord{
			{Season: 2007, Week: 1}:  {rec(2007, 1, "Tom Brady", "NE", 87.3, 40)},
			{Season: 2007, Week: 19}: {rec(2007, 19, "Tom Brady", "NE", 78.2, 33)},
		},
		fail: map[schema.WeekKey]bool{{Season: 2007, Week: 5}: true},
	}

	t.Run("persists and tracks the run", func(t *testing.T) {
		cfg := &contract.Config{DataDir: t.TempDir(), Workers: 4, FirstSeason: 2007, LastSeason: 2007}

		runStore := &iocache.MockRunStore{}
		runStore.On("BeginRun", mock.AnythingOfType("string"), mock.Anything, 2007, 2007, mock.Anything).Return(int64(7), nil)
		runStore.On("EndRun", int64(7), mock.Anything, schema.RunCounts{Requests: 21, Gaps: 18, Failures: 1, Records: 2}).Return(nil)
		mgr := &iocache.MockCacheManager{}
		mgr.On("GetRunStore").Return(runStore)

		ctx := WithSuppressHeader(context.Background())
		summary, err := RunCollection(ctx, cfg, fetcher, mgr)
		require.NoError(t, err)

		assert.NotEmpty(t, summary.RunKey)
		assert.Equal(t, 2, summary.Records)
		assert.FileExists(t, summary.ParquetPath)
		assert.FileExists(t, summary.CSVPath)

		loaded, err := snapshot.Load(cfg.DataDir)
		require.NoError(t, err)
		assert.Len(t, loaded, 2)
		runStore.AssertExpectations(t)
	})

	t.Run("no records writes nothing", func(t *testing.T) {
		cfg := &contract.Config{DataDir: t.TempDir(), Workers: 2, FirstSeason: 2009, LastSeason: 2009}
		summary, err := RunCollection(WithSuppressHeader(context.Background()), cfg, fetcher, nil)
		assert.Error(t, err)
		assert.Equal(t, 21, summary.Gaps)
		assert.NoFileExists(t, contract.SnapshotParquetPath(cfg.DataDir))
	})

	t.Run("cancelled run keeps the previous snapshot", func(t *testing.T) {
		cfg := &contract.Config{DataDir: t.TempDir(), Workers: 1, FirstSeason: 2007, LastSeason: 2007}
		var previous []schema.GameStatRecord
		for week := 1; week <= 17; week++ {
			previous = append(previous, rec(2007, week, "Tom Brady", "NE", 80, 40))
		}
		_, _, err := snapshot.Write(cfg.DataDir, previous)
		require.NoError(t, err)

		ctx, cancel := context.WithCancel(WithSuppressHeader(context.Background()))
		defer cancel()
		summary, err := RunCollection(ctx, cfg, &cancelingFetcher{cancel: cancel}, nil)
		require.ErrorIs(t, err, context.Canceled)
		assert.Positive(t, summary.Failures)
		assert.Empty(t, summary.ParquetPath)

		loaded, err := snapshot.Load(cfg.DataDir)
		require.NoError(t, err)
		assert.Len(t, loaded, 17)
	})

	t.Run("empty range", func(t *testing.T) {
		cfg := &contract.Config{DataDir: t.TempDir(), Workers: 1, FirstSeason: 2000, LastSeason: 2005}
		_, err := RunCollection(WithSuppressHeader(context.Background()), cfg, fetcher, nil)
		assert.Error(t, err)
	})
}
