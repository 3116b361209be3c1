// Package snapshot persists the flat statistic table as a lossless Parquet snapshot
// and a delimited-text export using github.com/parquet-go/parquet-go.
package snapshot

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/huangsam/gridline/schema"
	"github.com/parquet-go/parquet-go"
)

// GameRow is one GameStatRecord in the Parquet snapshot.
type GameRow struct {
	// Season is the league year the game belongs to
	Season int32 `parquet:"season,snappy"`

	// GameWeek is 1..17 for the regular season and 18..21 for playoff rounds
	GameWeek int32 `parquet:"game_week,snappy"`

	Player string  `parquet:"player,snappy,dict"`
	Team   string  `parquet:"team,snappy,dict"`
	QBR    float64 `parquet:"qbr,snappy"`
	Plays  int32   `parquet:"plays,snappy"`

	// ExtraJSON holds provider passthrough columns as a JSON object (nullable)
	ExtraJSON *string `parquet:"extra_json,optional,snappy"`
}

// CollectionRun is one row of the collection run history export.
// This struct maps to the gridline_collection_runs database table.
type CollectionRun struct {
	RunID  int64  `parquet:"run_id,snappy"`
	RunKey string `parquet:"run_key,snappy"`

	// StartTime is when the run began (stored as TIMESTAMP with nanosecond precision)
	StartTime time.Time `parquet:"start_time,snappy"`

	// EndTime is when the run completed (nullable)
	EndTime *time.Time `parquet:"end_time,optional,snappy"`

	// RunDurationMs is the duration of the run in milliseconds (nullable)
	RunDurationMs *int32 `parquet:"run_duration_ms,optional,snappy"`

	FirstSeason  int32 `parquet:"first_season,snappy"`
	LastSeason   int32 `parquet:"last_season,snappy"`
	Requests     int32 `parquet:"requests,snappy"`
	Gaps         int32 `parquet:"gaps,snappy"`
	Failures     int32 `parquet:"failures,snappy"`
	TotalRecords int32 `parquet:"total_records,snappy"`

	// ConfigParams contains the JSON-encoded configuration parameters (nullable)
	ConfigParams *string `parquet:"config_params,optional,snappy"`
}

// ToGameRows converts records to their Parquet representation.
func ToGameRows(records []schema.GameStatRecord) ([]GameRow, error) {
	rows := make([]GameRow, len(records))
	for i, r := range records {
		rows[i] = GameRow{
			Season:   int32(r.Season),
			GameWeek: int32(r.Week),
			Player:   r.Player,
			Team:     r.Team,
			QBR:      r.QBR,
			Plays:    int32(r.Plays),
		}
		if len(r.Extra) > 0 {
			data, err := json.Marshal(r.Extra)
			if err != nil {
				return nil, fmt.Errorf("failed to encode passthrough fields: %w", err)
			}
			s := string(data)
			rows[i].ExtraJSON = &s
		}
	}
	return rows, nil
}

// FromGameRows converts Parquet rows back to records.
func FromGameRows(rows []GameRow) ([]schema.GameStatRecord, error) {
	records := make([]schema.GameStatRecord, len(rows))
	for i, r := range rows {
		records[i] = schema.GameStatRecord{
			Season: int(r.Season),
			Week:   int(r.GameWeek),
			Player: r.Player,
			Team:   r.Team,
			QBR:    r.QBR,
			Plays:  int(r.Plays),
		}
		if r.ExtraJSON != nil {
			if err := json.Unmarshal([]byte(*r.ExtraJSON), &records[i].Extra); err != nil {
				return nil, fmt.Errorf("failed to decode passthrough fields: %w", err)
			}
		}
	}
	return records, nil
}

// ConvertCollectionRunRecords converts run store records for Parquet export.
func ConvertCollectionRunRecords(records []schema.CollectionRunRecord) []CollectionRun {
	result := make([]CollectionRun, len(records))
	for i, record := range records {
		result[i] = CollectionRun{
			RunID:         record.RunID,
			RunKey:        record.RunKey,
			StartTime:     record.StartTime,
			EndTime:       record.EndTime,
			RunDurationMs: record.RunDuration,
			FirstSeason:   record.FirstSeason,
			LastSeason:    record.LastSeason,
			Requests:      record.Requests,
			Gaps:          record.Gaps,
			Failures:      record.Failures,
			TotalRecords:  record.TotalRecords,
			ConfigParams:  record.ConfigParams,
		}
	}
	return result
}

// WriteParquet writes records to path. The file is replaced atomically.
func WriteParquet(path string, records []schema.GameStatRecord) error {
	rows, err := ToGameRows(records)
	if err != nil {
		return err
	}
	return writeAtomic(path, func(w io.Writer) error {
		return writeParquetRows(w, rows)
	})
}

// WriteCollectionRunsParquet writes run history rows to w.
func WriteCollectionRunsParquet(w io.Writer, runs []CollectionRun) error {
	return writeParquetRows(w, runs)
}

// ReadParquet reads the snapshot at path.
func ReadParquet(path string) ([]schema.GameStatRecord, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot: %w", err)
	}
	defer func() { _ = file.Close() }()

	rows, err := readParquetRows[GameRow](file)
	if err != nil {
		return nil, err
	}
	return FromGameRows(rows)
}

func writeParquetRows[T any](w io.Writer, rows []T) error {
	// The schema is derived from the struct tags of T
	writer := parquet.NewGenericWriter[T](w)
	if _, err := writer.Write(rows); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}

func readParquetRows[T any](r io.ReaderAt) ([]T, error) {
	reader := parquet.NewGenericReader[T](r)
	defer func() { _ = reader.Close() }()

	rows := make([]T, 0, reader.NumRows())
	buf := make([]T, 512)
	for {
		n, err := reader.Read(buf)
		rows = append(rows, buf[:n]...)
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("failed to read parquet rows: %w", err)
		}
		if n == 0 {
			break
		}
	}
	return rows, nil
}

// writeAtomic writes to a temporary file in the target directory and renames it into place.
func writeAtomic(path string, write func(w io.Writer) error) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if err := write(tmp); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close output file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to move output file into place: %w", err)
	}
	return nil
}
