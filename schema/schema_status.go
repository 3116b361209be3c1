package schema

import "time"

// CacheStatus represents the status of the cache store.
type CacheStatus struct {
	Backend         string    `json:"backend"`
	Connected       bool      `json:"connected"`
	TotalEntries    int       `json:"total_entries"`
	LastEntryTime   time.Time `json:"last_entry_time"`
	OldestEntryTime time.Time `json:"oldest_entry_time"`
	TableSizeBytes  int64     `json:"table_size_bytes"`
}

// RunStatus represents the status of the collection run store.
type RunStatus struct {
	Backend       string           `json:"backend"`
	Connected     bool             `json:"connected"`
	TotalRuns     int              `json:"total_runs"`
	LastRunID     int64            `json:"last_run_id"`
	LastRunKey    string           `json:"last_run_key"`
	LastRunTime   time.Time        `json:"last_run_time"`
	OldestRunTime time.Time        `json:"oldest_run_time"`
	TotalRecords  int              `json:"total_records"`
	TableSizes    map[string]int64 `json:"table_sizes"`
}

// SnapshotStatus describes the persisted flat table.
type SnapshotStatus struct {
	ParquetPath  string    `json:"parquet_path"`
	ParquetBytes int64     `json:"parquet_bytes"`
	CSVPath      string    `json:"csv_path"`
	CSVBytes     int64     `json:"csv_bytes"`
	Rows         int       `json:"rows"`
	Players      int       `json:"players"`
	FirstSeason  int       `json:"first_season"`
	LastSeason   int       `json:"last_season"`
	ModTime      time.Time `json:"mod_time"`
}
