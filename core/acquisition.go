package core

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"os"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/huangsam/gridline/internal/contract"
	"github.com/huangsam/gridline/internal/snapshot"
	"github.com/huangsam/gridline/schema"
)

// CollectResult is the concatenated output of one collection pass.
type CollectResult struct {
	Records  []schema.GameStatRecord
	Requests int
	Gaps     int
	Failures int
}

// fetchOutcome is what one worker reports for one key.
type fetchOutcome struct {
	records []schema.GameStatRecord
	gap     bool
	err     error
}

// PlanWeeks returns every (season, week) key worth requesting in [first, last].
// Seasons before coverage begins are skipped, as is the Pro Bowl round.
func PlanWeeks(first, last int) []schema.WeekKey {
	var keys []schema.WeekKey
	for season := max(first, schema.FirstQBRSeason); season <= last; season++ {
		for week := 1; week <= schema.RegularSeasonWeeks; week++ {
			keys = append(keys, schema.WeekKey{Season: season, Week: week})
		}
		for round := 1; round <= schema.PostseasonRounds; round++ {
			if round == schema.ProBowlRound {
				continue
			}
			keys = append(keys, schema.WeekKey{Season: season, Week: schema.RegularSeasonWeeks + round})
		}
	}
	return keys
}

// Collect fetches all keys using a pool of workers goroutines.
// schema.ErrNoData counts as a gap; any other error is logged and counted as a failure.
// No request is retried and no failure aborts the batch.
func Collect(ctx context.Context, fetcher contract.WeekFetcher, keys []schema.WeekKey, workers int) CollectResult {
	workers = max(workers, 1)
	keyCh := make(chan schema.WeekKey, len(keys))
	outCh := make(chan fetchOutcome, len(keys))
	var wg sync.WaitGroup

	for range workers {
		wg.Go(func() {
			for key := range keyCh {
				if err := ctx.Err(); err != nil {
					outCh <- fetchOutcome{err: err}
					continue
				}
				records, err := fetcher.FetchWeek(ctx, key)
				switch {
				case errors.Is(err, schema.ErrNoData):
					outCh <- fetchOutcome{gap: true}
				case err != nil:
					contract.LogWarn(fmt.Sprintf("Fetch failed for season %d week %d", key.Season, key.Week), err)
					outCh <- fetchOutcome{err: err}
				default:
					outCh <- fetchOutcome{records: records}
				}
			}
		})
	}

	for _, key := range keys {
		keyCh <- key
	}
	close(keyCh)

	wg.Wait()
	close(outCh)

	result := CollectResult{Requests: len(keys)}
	for out := range outCh {
		switch {
		case out.gap:
			result.Gaps++
		case out.err != nil:
			result.Failures++
		default:
			result.Records = append(result.Records, out.records...)
		}
	}
	return result
}

// SortRecords orders records by season, week, player and team.
func SortRecords(records []schema.GameStatRecord) {
	slices.SortStableFunc(records, compareRecords)
}

func compareRecords(a, b schema.GameStatRecord) int {
	return cmp.Or(
		cmp.Compare(a.Season, b.Season),
		cmp.Compare(a.Week, b.Week),
		cmp.Compare(a.Player, b.Player),
		cmp.Compare(a.Team, b.Team),
	)
}

// Dedupe sorts records and keeps one row per (season, week, player, team): the one
// with the most plays, then the highest rating. The result does not depend on input order.
// It returns the kept rows and the number of dropped duplicates.
func Dedupe(records []schema.GameStatRecord) ([]schema.GameStatRecord, int) {
	sorted := slices.Clone(records)
	slices.SortStableFunc(sorted, func(a, b schema.GameStatRecord) int {
		return cmp.Or(
			compareRecords(a, b),
			cmp.Compare(b.Plays, a.Plays),
			cmp.Compare(b.QBR, a.QBR),
		)
	})
	kept := slices.CompactFunc(sorted, func(a, b schema.GameStatRecord) bool {
		return a.Season == b.Season && a.Week == b.Week && a.Player == b.Player && a.Team == b.Team
	})
	return kept, len(records) - len(kept)
}

// RunCollection plans, fetches, deduplicates and persists the table for the configured
// season range. The run is recorded in the run store when one is configured.
func RunCollection(ctx context.Context, cfg *contract.Config, fetcher contract.WeekFetcher, mgr contract.CacheManager) (schema.CollectionSummary, error) {
	start := time.Now()
	summary := schema.CollectionSummary{
		RunKey:      uuid.NewString(),
		FirstSeason: cfg.FirstSeason,
		LastSeason:  cfg.LastSeason,
	}

	keys := PlanWeeks(cfg.FirstSeason, cfg.LastSeason)
	if len(keys) == 0 {
		return summary, fmt.Errorf("no weeks to collect between %d and %d", cfg.FirstSeason, cfg.LastSeason)
	}

	if !shouldSuppressHeader(ctx) {
		fmt.Fprintf(os.Stderr, "🏈 Collecting %d weeks (%d-%d) with %d workers\n", len(keys), cfg.FirstSeason, cfg.LastSeason, cfg.Workers)
	}

	// --- 0. Begin Run Tracking (if configured) ---
	var runID int64
	var runStore contract.RunStore
	if mgr != nil {
		runStore = mgr.GetRunStore()
	}
	if runStore != nil {
		configParams := map[string]any{
			"workers":      cfg.Workers,
			"provider_url": cfg.ProviderURL,
			"data_dir":     cfg.DataDir,
		}
		var err error
		runID, err = runStore.BeginRun(summary.RunKey, start, cfg.FirstSeason, cfg.LastSeason, configParams)
		if err != nil {
			contract.LogWarn("Run tracking initialization failed", err)
		}
	}

	// --- 1. Fan-out / fan-in ---
	result := Collect(ctx, fetcher, keys, cfg.Workers)
	summary.Requests = result.Requests
	summary.Gaps = result.Gaps
	summary.Failures = result.Failures

	// --- 2. Dedupe and sort ---
	records, dupes := Dedupe(result.Records)
	summary.Records = len(records)
	summary.Duplicates = dupes

	// --- 3. End Run Tracking ---
	defer func() {
		if runStore == nil || runID <= 0 {
			return
		}
		counts := schema.RunCounts{
			Requests: summary.Requests,
			Gaps:     summary.Gaps,
			Failures: summary.Failures,
			Records:  summary.Records,
		}
		if err := runStore.EndRun(runID, time.Now(), counts); err != nil {
			contract.LogWarn("Failed to finalize run tracking", err)
		}
	}()

	// An interrupted run must not replace a complete snapshot with a fragment
	if err := ctx.Err(); err != nil {
		summary.Duration = time.Since(start)
		return summary, fmt.Errorf("collection interrupted, snapshot left unchanged: %w", err)
	}

	if len(records) == 0 {
		summary.Duration = time.Since(start)
		return summary, errors.New("no records collected")
	}

	// --- 4. Persist ---
	parquetPath, csvPath, err := snapshot.Write(cfg.DataDir, records)
	if err != nil {
		return summary, fmt.Errorf("failed to persist snapshot: %w", err)
	}
	summary.ParquetPath = parquetPath
	summary.CSVPath = csvPath
	summary.Duration = time.Since(start)
	return summary, nil
}
