package iocache

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/huangsam/gridline/internal/contract"
	"github.com/huangsam/gridline/schema"
)

// Table names for run tracking.
const (
	collectionRunsTable = "gridline_collection_runs"
	migrationsTable     = "gridline_schema_migrations"
)

// RunStoreImpl implements the RunStore interface.
type RunStoreImpl struct {
	db      *sql.DB
	backend schema.DatabaseBackend
}

var _ contract.RunStore = &RunStoreImpl{} // Compile-time check

// NewRunStore creates a new RunStore with the specified backend.
func NewRunStore(backend schema.DatabaseBackend, connStr string) (contract.RunStore, error) {
	if backend == schema.NoneBackend {
		// Return a no-op store for disabled tracking
		return &RunStoreImpl{backend: backend}, nil
	}

	db, err := openRunsDB(backend, connStr)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		var connDetail string
		switch backend {
		case schema.MySQLBackend:
			connDetail = "Check that MySQL is running and the connection string is correct. Ensure user/password are valid."
		case schema.PostgreSQLBackend:
			connDetail = "Check that PostgreSQL is running and the connection string is correct. Ensure user/password are valid."
		default:
			connDetail = "Verify the database server is running and accessible."
		}
		return nil, fmt.Errorf("failed to connect to %s database: %w. %s", backend, err, connDetail)
	}

	if _, err := db.Exec(getCreateRunsQuery(backend)); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create table %s: %w", collectionRunsTable, err)
	}

	return &RunStoreImpl{db: db, backend: backend}, nil
}

// openRunsDB opens the SQL handle for a run store backend.
func openRunsDB(backend schema.DatabaseBackend, connStr string) (*sql.DB, error) {
	switch backend {
	case schema.SQLiteBackend:
		dbPath := connStr
		if dbPath == "" {
			dbPath = contract.GetRunsDBFilePath()
		}
		db, err := sql.Open("sqlite", dbPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open SQLite database at %q: %w. Check that the directory is writable", dbPath, err)
		}
		// Limit SQLite to a single open connection to avoid "database is locked" errors
		db.SetMaxOpenConns(1)
		return db, nil

	case schema.MySQLBackend:
		// Run times are scanned into time.Time
		dsn, err := mysql.ParseDSN(connStr)
		if err != nil {
			return nil, fmt.Errorf("invalid MySQL connection string: %w", err)
		}
		dsn.ParseTime = true
		db, err := sql.Open("mysql", dsn.FormatDSN())
		if err != nil {
			return nil, fmt.Errorf("failed to open MySQL database: %w. Check connection string format: user:password@tcp(host:port)/dbname", err)
		}
		return db, nil

	case schema.PostgreSQLBackend:
		db, err := sql.Open("pgx", connStr)
		if err != nil {
			return nil, fmt.Errorf("failed to open PostgreSQL database: %w. Check connection string format: host=localhost port=5432 dbname=mydb", err)
		}
		return db, nil

	default:
		return nil, fmt.Errorf("unsupported runs backend: %s", backend)
	}
}

// getCreateRunsQuery returns the CREATE TABLE query for gridline_collection_runs.
func getCreateRunsQuery(backend schema.DatabaseBackend) string {
	quotedTableName := quoteTableName(collectionRunsTable, backend)

	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGINT AUTO_INCREMENT PRIMARY KEY,
				run_key VARCHAR(36) NOT NULL,
				start_time DATETIME(6) NOT NULL,
				end_time DATETIME(6),
				run_duration_ms INT,
				first_season INT NOT NULL,
				last_season INT NOT NULL,
				requests INT NOT NULL DEFAULT 0,
				gaps INT NOT NULL DEFAULT 0,
				failures INT NOT NULL DEFAULT 0,
				total_records INT NOT NULL DEFAULT 0,
				config_params TEXT
			);
		`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGSERIAL PRIMARY KEY,
				run_key TEXT NOT NULL,
				start_time TIMESTAMPTZ NOT NULL,
				end_time TIMESTAMPTZ,
				run_duration_ms INT,
				first_season INT NOT NULL,
				last_season INT NOT NULL,
				requests INT NOT NULL DEFAULT 0,
				gaps INT NOT NULL DEFAULT 0,
				failures INT NOT NULL DEFAULT 0,
				total_records INT NOT NULL DEFAULT 0,
				config_params TEXT
			);
		`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id INTEGER PRIMARY KEY AUTOINCREMENT,
				run_key TEXT NOT NULL,
				start_time TEXT NOT NULL,
				end_time TEXT,
				run_duration_ms INTEGER,
				first_season INTEGER NOT NULL,
				last_season INTEGER NOT NULL,
				requests INTEGER NOT NULL DEFAULT 0,
				gaps INTEGER NOT NULL DEFAULT 0,
				failures INTEGER NOT NULL DEFAULT 0,
				total_records INTEGER NOT NULL DEFAULT 0,
				config_params TEXT
			);
		`, quotedTableName)
	}
}

// BeginRun records the start of a collection run and returns its numeric ID.
func (rs *RunStoreImpl) BeginRun(runKey string, startTime time.Time, firstSeason, lastSeason int, configParams map[string]any) (int64, error) {
	if rs.backend == schema.NoneBackend || rs.db == nil {
		return 0, nil
	}

	configJSON, err := json.Marshal(configParams)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal config params: %w", err)
	}

	quotedTableName := quoteTableName(collectionRunsTable, rs.backend)
	args := []any{runKey, formatTime(startTime, rs.backend), firstSeason, lastSeason, string(configJSON)}

	var runID int64
	switch rs.backend {
	case schema.PostgreSQLBackend:
		query := fmt.Sprintf(`INSERT INTO %s (run_key, start_time, first_season, last_season, config_params)
			VALUES ($1, $2, $3, $4, $5) RETURNING run_id`, quotedTableName)
		err = rs.db.QueryRow(query, args...).Scan(&runID)
	default: // SQLite and MySQL
		query := fmt.Sprintf(`INSERT INTO %s (run_key, start_time, first_season, last_season, config_params)
			VALUES (?, ?, ?, ?, ?)`, quotedTableName)
		var result sql.Result
		result, err = rs.db.Exec(query, args...)
		if err != nil {
			return 0, fmt.Errorf("failed to insert collection run: %w", err)
		}
		runID, err = result.LastInsertId()
	}

	if err != nil {
		return 0, fmt.Errorf("failed to insert collection run: %w", err)
	}

	return runID, nil
}

// EndRun updates the run with completion data.
func (rs *RunStoreImpl) EndRun(runID int64, endTime time.Time, counts schema.RunCounts) error {
	if rs.backend == schema.NoneBackend || rs.db == nil {
		return nil
	}

	quotedTableName := quoteTableName(collectionRunsTable, rs.backend)
	query := rebind(fmt.Sprintf(`SELECT start_time FROM %s WHERE run_id = ?`, quotedTableName), rs.backend)

	startTime, err := scanTime(rs.db.QueryRow(query, runID), rs.backend)
	if err != nil {
		return fmt.Errorf("failed to get start_time for run %d: %w", runID, err)
	}

	durationMs := endTime.Sub(startTime).Milliseconds()

	updateQuery := rebind(fmt.Sprintf(`UPDATE %s SET end_time = ?, run_duration_ms = ?, requests = ?, gaps = ?,
		failures = ?, total_records = ? WHERE run_id = ?`, quotedTableName), rs.backend)
	_, err = rs.db.Exec(updateQuery, formatTime(endTime, rs.backend), durationMs,
		counts.Requests, counts.Gaps, counts.Failures, counts.Records, runID)
	if err != nil {
		return fmt.Errorf("failed to update collection run: %w", err)
	}

	return nil
}

// ListRuns returns the most recent runs, newest first.
func (rs *RunStoreImpl) ListRuns(limit int) ([]schema.CollectionRunRecord, error) {
	if rs.backend == schema.NoneBackend || rs.db == nil {
		return nil, nil
	}

	query := rebind(fmt.Sprintf(`SELECT run_id, run_key, start_time, end_time, run_duration_ms, first_season, last_season,
		requests, gaps, failures, total_records, config_params FROM %s ORDER BY run_id DESC LIMIT ?`,
		quoteTableName(collectionRunsTable, rs.backend)), rs.backend)

	rows, err := rs.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query collection runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.CollectionRunRecord
	for rows.Next() {
		var record schema.CollectionRunRecord

		switch rs.backend {
		case schema.SQLiteBackend:
			var startStr string
			var endStr *string
			if err := rows.Scan(&record.RunID, &record.RunKey, &startStr, &endStr, &record.RunDuration,
				&record.FirstSeason, &record.LastSeason, &record.Requests, &record.Gaps, &record.Failures,
				&record.TotalRecords, &record.ConfigParams); err != nil {
				return nil, fmt.Errorf("failed to scan collection run: %w", err)
			}
			startTime, err := time.Parse(time.RFC3339Nano, startStr)
			if err != nil {
				return nil, fmt.Errorf("failed to parse start_time: %w", err)
			}
			record.StartTime = startTime
			if endStr != nil {
				endTime, err := time.Parse(time.RFC3339Nano, *endStr)
				if err != nil {
					return nil, fmt.Errorf("failed to parse end_time: %w", err)
				}
				record.EndTime = &endTime
			}
		default: // MySQL and PostgreSQL store as native datetime
			if err := rows.Scan(&record.RunID, &record.RunKey, &record.StartTime, &record.EndTime, &record.RunDuration,
				&record.FirstSeason, &record.LastSeason, &record.Requests, &record.Gaps, &record.Failures,
				&record.TotalRecords, &record.ConfigParams); err != nil {
				return nil, fmt.Errorf("failed to scan collection run: %w", err)
			}
		}

		results = append(results, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating collection runs: %w", err)
	}

	return results, nil
}

// GetStatus returns status information about the run store.
func (rs *RunStoreImpl) GetStatus() (schema.RunStatus, error) {
	status := schema.RunStatus{
		Backend:    string(rs.backend),
		Connected:  rs.db != nil,
		TableSizes: make(map[string]int64),
	}

	if rs.backend == schema.NoneBackend || rs.db == nil {
		return status, nil
	}

	quotedTableName := quoteTableName(collectionRunsTable, rs.backend)

	if err := rs.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", quotedTableName)).Scan(&status.TotalRuns); err != nil {
		return status, fmt.Errorf("failed to get total runs: %w", err)
	}
	status.TableSizes[collectionRunsTable] = int64(status.TotalRuns)

	if status.TotalRuns == 0 {
		return status, nil
	}

	lastQuery := fmt.Sprintf("SELECT run_id, run_key FROM %s ORDER BY run_id DESC LIMIT 1", quotedTableName)
	if err := rs.db.QueryRow(lastQuery).Scan(&status.LastRunID, &status.LastRunKey); err != nil {
		return status, fmt.Errorf("failed to get last run info: %w", err)
	}

	lastTimeQuery := fmt.Sprintf("SELECT start_time FROM %s ORDER BY run_id DESC LIMIT 1", quotedTableName)
	lastTime, err := scanTime(rs.db.QueryRow(lastTimeQuery), rs.backend)
	if err != nil {
		return status, fmt.Errorf("failed to get last run time: %w", err)
	}
	status.LastRunTime = lastTime

	oldestQuery := fmt.Sprintf("SELECT start_time FROM %s ORDER BY run_id ASC LIMIT 1", quotedTableName)
	oldestTime, err := scanTime(rs.db.QueryRow(oldestQuery), rs.backend)
	if err != nil {
		return status, fmt.Errorf("failed to get oldest run time: %w", err)
	}
	status.OldestRunTime = oldestTime

	recordsQuery := fmt.Sprintf("SELECT COALESCE(SUM(total_records), 0) FROM %s", quotedTableName)
	if err := rs.db.QueryRow(recordsQuery).Scan(&status.TotalRecords); err != nil {
		return status, fmt.Errorf("failed to get total records: %w", err)
	}

	return status, nil
}

// Close closes the underlying connection.
func (rs *RunStoreImpl) Close() error {
	if rs.db != nil {
		return rs.db.Close()
	}
	return nil
}

// formatTime converts a time.Time to the appropriate format for the backend.
func formatTime(t time.Time, backend schema.DatabaseBackend) any {
	switch backend {
	case schema.SQLiteBackend:
		return t.UTC().Format(time.RFC3339Nano)
	default:
		return t
	}
}

// scanTime reads a single time column stored per formatTime.
func scanTime(row *sql.Row, backend schema.DatabaseBackend) (time.Time, error) {
	if backend == schema.SQLiteBackend {
		var s string
		if err := row.Scan(&s); err != nil {
			return time.Time{}, err
		}
		return time.Parse(time.RFC3339Nano, s)
	}
	var t time.Time
	err := row.Scan(&t)
	return t, err
}
