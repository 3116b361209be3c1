package schema

import "time"

// CollectionRunRecord represents a row from the gridline_collection_runs table.
type CollectionRunRecord struct {
	RunID        int64      `json:"run_id"`
	RunKey       string     `json:"run_key"`
	StartTime    time.Time  `json:"start_time"`
	EndTime      *time.Time `json:"end_time,omitempty"`
	RunDuration  *int32     `json:"run_duration_ms,omitempty"` // milliseconds
	FirstSeason  int32      `json:"first_season"`
	LastSeason   int32      `json:"last_season"`
	Requests     int32      `json:"requests"`
	Gaps         int32      `json:"gaps"`
	Failures     int32      `json:"failures"`
	TotalRecords int32      `json:"total_records"`
	ConfigParams *string    `json:"config_params,omitempty"`
}

// RunCounts are the totals recorded when a collection run ends.
type RunCounts struct {
	Requests int
	Gaps     int
	Failures int
	Records  int
}
