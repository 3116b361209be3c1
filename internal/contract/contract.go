// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"context"
	"time"

	"github.com/huangsam/gridline/schema"
)

// WeekFetcher defines the per-week statistic provider used by acquisition.
// This allows the collection logic to be tested without network access.
type WeekFetcher interface {
	// FetchWeek returns all records for one (season, week) key.
	// It returns schema.ErrNoData when the provider has nothing for the key.
	FetchWeek(ctx context.Context, key schema.WeekKey) ([]schema.GameStatRecord, error)
}

// ScheduleSource defines the provider of scheduled games and final scores.
type ScheduleSource interface {
	FetchSchedule(ctx context.Context) ([]schema.ScheduleRecord, error)
}

// TeamStyleLookup resolves the display style of a team code.
// Implementations normalize relocated franchise codes before lookup.
type TeamStyleLookup interface {
	Lookup(code string) (schema.TeamStyle, bool)
}

// CacheManager defines the interface for managing cache stores.
// This allows the cache layer to be mocked for testing.
type CacheManager interface {
	GetResponseStore() CacheStore
	GetRunStore() RunStore
}

// CacheStore defines the interface for cache data storage.
// This allows mocking the store for testing.
type CacheStore interface {
	Get(key string) ([]byte, int, int64, error)
	Set(key string, value []byte, version int, timestamp int64) error
	GetStatus() (schema.CacheStatus, error)
	Close() error
}

// RunStore defines the interface for tracking collection runs.
type RunStore interface {
	// BeginRun records the start of a collection run and returns its numeric ID
	BeginRun(runKey string, startTime time.Time, firstSeason, lastSeason int, configParams map[string]any) (int64, error)

	// EndRun updates the run with completion data
	EndRun(runID int64, endTime time.Time, counts schema.RunCounts) error

	// ListRuns returns the most recent runs, newest first
	ListRuns(limit int) ([]schema.CollectionRunRecord, error)

	// GetStatus returns status information about the run store
	GetStatus() (schema.RunStatus, error)

	// Close closes the underlying connection
	Close() error
}
