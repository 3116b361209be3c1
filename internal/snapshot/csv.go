package snapshot

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/huangsam/gridline/schema"
)

// fixedColumns lead every delimited export.
var fixedColumns = []string{"season", "game_week", "player", "team", "qbr", "plays"}

// WriteCSV writes records to path with the fixed columns first and the sorted union
// of passthrough keys after them. The file is replaced atomically.
func WriteCSV(path string, records []schema.GameStatRecord) error {
	return writeAtomic(path, func(w io.Writer) error {
		return EncodeCSV(w, records)
	})
}

// EncodeCSV writes records as CSV to w.
func EncodeCSV(w io.Writer, records []schema.GameStatRecord) error {
	extraKeys := passthroughKeys(records)

	writer := csv.NewWriter(w)
	if err := writer.Write(append(slices.Clone(fixedColumns), extraKeys...)); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, r := range records {
		row := []string{
			strconv.Itoa(r.Season),
			strconv.Itoa(r.Week),
			r.Player,
			r.Team,
			strconv.FormatFloat(r.QBR, 'f', -1, 64),
			strconv.Itoa(r.Plays),
		}
		for _, k := range extraKeys {
			row = append(row, r.Extra[k])
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// ReadCSV reads a delimited export. Empty passthrough cells are omitted from Extra.
func ReadCSV(path string) ([]schema.GameStatRecord, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open export: %w", err)
	}
	defer func() { _ = file.Close() }()
	return DecodeCSV(file)
}

// DecodeCSV parses CSV produced by EncodeCSV.
func DecodeCSV(r io.Reader) ([]schema.GameStatRecord, error) {
	reader := csv.NewReader(r)
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.TrimSpace(h)] = i
	}
	for _, col := range fixedColumns {
		if _, ok := idx[col]; !ok {
			return nil, fmt.Errorf("export is missing the %s column", col)
		}
	}

	var records []schema.GameStatRecord
	for line := 2; ; line++ {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV row: %w", err)
		}

		rec := schema.GameStatRecord{
			Player: row[idx["player"]],
			Team:   row[idx["team"]],
		}
		if rec.Season, err = strconv.Atoi(row[idx["season"]]); err != nil {
			return nil, fmt.Errorf("line %d: invalid season: %w", line, err)
		}
		if rec.Week, err = strconv.Atoi(row[idx["game_week"]]); err != nil {
			return nil, fmt.Errorf("line %d: invalid game_week: %w", line, err)
		}
		if rec.QBR, err = strconv.ParseFloat(row[idx["qbr"]], 64); err != nil {
			return nil, fmt.Errorf("line %d: invalid qbr: %w", line, err)
		}
		if rec.Plays, err = strconv.Atoi(row[idx["plays"]]); err != nil {
			return nil, fmt.Errorf("line %d: invalid plays: %w", line, err)
		}

		for i, h := range header {
			if slices.Contains(fixedColumns, h) || row[i] == "" {
				continue
			}
			if rec.Extra == nil {
				rec.Extra = make(map[string]string)
			}
			rec.Extra[h] = row[i]
		}
		records = append(records, rec)
	}
	return records, nil
}

func passthroughKeys(records []schema.GameStatRecord) []string {
	seen := make(map[string]struct{})
	for _, r := range records {
		for k := range r.Extra {
			seen[k] = struct{}{}
		}
	}
	keys := make([]string, 0, len(seen))
	for k := range seen {
		if slices.Contains(fixedColumns, k) {
			continue
		}
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
