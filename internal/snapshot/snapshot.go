package snapshot

import (
	"errors"
	"fmt"
	"os"

	"github.com/huangsam/gridline/internal/contract"
	"github.com/huangsam/gridline/schema"
)

// ErrNoSnapshot reports that neither the snapshot nor the export exists.
var ErrNoSnapshot = errors.New("no snapshot found; run 'gridline fetch' first")

// Write persists records as both the Parquet snapshot and the CSV export.
func Write(dataDir string, records []schema.GameStatRecord) (parquetPath, csvPath string, err error) {
	parquetPath = contract.SnapshotParquetPath(dataDir)
	csvPath = contract.SnapshotCSVPath(dataDir)
	if err := WriteParquet(parquetPath, records); err != nil {
		return "", "", err
	}
	if err := WriteCSV(csvPath, records); err != nil {
		return "", "", err
	}
	return parquetPath, csvPath, nil
}

// Load reads the table from dataDir, preferring the Parquet snapshot over the CSV export.
func Load(dataDir string) ([]schema.GameStatRecord, error) {
	parquetPath := contract.SnapshotParquetPath(dataDir)
	if _, err := os.Stat(parquetPath); err == nil {
		return ReadParquet(parquetPath)
	}
	csvPath := contract.SnapshotCSVPath(dataDir)
	if _, err := os.Stat(csvPath); err == nil {
		return ReadCSV(csvPath)
	}
	return nil, fmt.Errorf("%w (looked in %s)", ErrNoSnapshot, dataDir)
}

// Status describes the persisted files in dataDir.
func Status(dataDir string) (schema.SnapshotStatus, error) {
	status := schema.SnapshotStatus{
		ParquetPath: contract.SnapshotParquetPath(dataDir),
		CSVPath:     contract.SnapshotCSVPath(dataDir),
	}
	if info, err := os.Stat(status.ParquetPath); err == nil {
		status.ParquetBytes = info.Size()
		status.ModTime = info.ModTime()
	}
	if info, err := os.Stat(status.CSVPath); err == nil {
		status.CSVBytes = info.Size()
		if info.ModTime().After(status.ModTime) {
			status.ModTime = info.ModTime()
		}
	}

	records, err := Load(dataDir)
	if err != nil {
		return status, err
	}

	players := make(map[string]struct{})
	for i, r := range records {
		players[r.Player] = struct{}{}
		if i == 0 || r.Season < status.FirstSeason {
			status.FirstSeason = r.Season
		}
		if r.Season > status.LastSeason {
			status.LastSeason = r.Season
		}
	}
	status.Rows = len(records)
	status.Players = len(players)
	return status, nil
}
