package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/huangsam/gridline/internal/contract"
	"github.com/huangsam/gridline/internal/snapshot"
	"github.com/huangsam/gridline/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// runsFixedWidth is the table width taken by every run column except the config.
const runsFixedWidth = 96

// PrintPercentiles outputs the reference cuts of the table.
func PrintPercentiles(ref schema.PercentileReference, cfg *contract.Config) error {
	fmtFloat := ratingFormatter(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, ref)
		}, "Wrote JSON percentiles")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVWithHeader(w, []string{"level", "value"}, func(cw *csv.Writer) error {
				for _, c := range ref.Cuts {
					if err := cw.Write([]string{strconv.Itoa(c.Level), fmtFloat(c.Value)}); err != nil {
						return err
					}
				}
				return nil
			})
		}, "Wrote CSV percentiles")
	case schema.TextOut, "":
		table := tablewriter.NewWriter(os.Stdout)
		table.Header([]string{"Percentile", "Total QBR"})
		table.Configure(func(cfg *tablewriter.Config) {
			cfg.Row.Alignment.Global = tw.AlignRight
		})
		var data [][]string
		for _, c := range ref.Cuts {
			data = append(data, []string{strconv.Itoa(c.Level), fmtFloat(c.Value)})
		}
		if err := table.Bulk(data); err != nil {
			return err
		}
		if err := table.Render(); err != nil {
			return err
		}
		fmt.Printf("Computed over %d qualifying games (min plays: %d)\n", ref.Count, cfg.MinPlays)
		return nil
	default:
		return fmt.Errorf("output format %s is not supported for percentiles", cfg.Output)
	}
}

// PrintCollectionSummary outputs the outcome of a fetch run.
func PrintCollectionSummary(summary schema.CollectionSummary, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, summary)
		}, "Wrote JSON summary")
	default:
		fmt.Printf("Run %s: %d-%d\n", summary.RunKey, summary.FirstSeason, summary.LastSeason)
		fmt.Printf("  Requests: %d  Gaps: %d  Failures: %d\n", summary.Requests, summary.Gaps, summary.Failures)
		fmt.Printf("  Records: %d  Duplicates dropped: %d\n", summary.Records, summary.Duplicates)
		fmt.Printf("  Snapshot: %s\n  Export: %s\n", summary.ParquetPath, summary.CSVPath)
		fmt.Printf("Collection completed in %v with %d workers. Cache backend: %s\n", summary.Duration, cfg.Workers, cfg.CacheBackend)
		return nil
	}
}

// PrintSnapshotStatus outputs what the data directory holds.
func PrintSnapshotStatus(status schema.SnapshotStatus, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, status)
		}, "Wrote JSON snapshot status")
	default:
		if status.Rows == 0 {
			fmt.Printf("No snapshot in %s\n", cfg.DataDir)
			return nil
		}
		fmt.Printf("Snapshot: %s (%d bytes)\n", status.ParquetPath, status.ParquetBytes)
		fmt.Printf("Export: %s (%d bytes)\n", status.CSVPath, status.CSVBytes)
		fmt.Printf("Rows: %d  Players: %d  Seasons: %d-%d\n", status.Rows, status.Players, status.FirstSeason, status.LastSeason)
		fmt.Printf("Last Modified: %s\n", status.ModTime.Format(contract.DateTimeFormat))
		return nil
	}
}

// PrintRuns outputs recorded collection runs, newest first.
func PrintRuns(runs []schema.CollectionRunRecord, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, runs)
		}, "Wrote JSON runs")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVWithHeader(w, runsHeader, func(cw *csv.Writer) error {
				for _, r := range runs {
					if err := cw.Write(runRow(r)); err != nil {
						return err
					}
				}
				return nil
			})
		}, "Wrote CSV runs")
	case schema.ParquetOut:
		if cfg.OutputFile == "" {
			return fmt.Errorf("parquet output requires --output-file")
		}
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return snapshot.WriteCollectionRunsParquet(w, snapshot.ConvertCollectionRunRecords(runs))
		}, "Wrote Parquet runs")
	default:
		table := tablewriter.NewWriter(os.Stdout)
		table.Header(runsHeader)
		table.Configure(func(cfg *tablewriter.Config) {
			cfg.Row.Alignment.Global = tw.AlignRight
		})
		width := GetMaxTableLabelWidth(cfg, runsFixedWidth)
		var data [][]string
		for _, r := range runs {
			row := runRow(r)
			row[len(row)-1] = contract.TruncateName(row[len(row)-1], width)
			data = append(data, row)
		}
		if err := table.Bulk(data); err != nil {
			return err
		}
		return table.Render()
	}
}

var runsHeader = []string{"id", "run_key", "start", "end", "duration_ms", "seasons", "requests", "gaps", "failures", "records", "config"}

func runRow(r schema.CollectionRunRecord) []string {
	end, duration, config := "", "", ""
	if r.EndTime != nil {
		end = r.EndTime.Format(contract.DateTimeFormat)
	}
	if r.RunDuration != nil {
		duration = strconv.Itoa(int(*r.RunDuration))
	}
	if r.ConfigParams != nil {
		config = *r.ConfigParams
	}
	return []string{
		strconv.FormatInt(r.RunID, 10),
		r.RunKey,
		r.StartTime.Format(contract.DateTimeFormat),
		end,
		duration,
		fmt.Sprintf("%d-%d", r.FirstSeason, r.LastSeason),
		strconv.Itoa(int(r.Requests)),
		strconv.Itoa(int(r.Gaps)),
		strconv.Itoa(int(r.Failures)),
		strconv.Itoa(int(r.TotalRecords)),
		config,
	}
}
