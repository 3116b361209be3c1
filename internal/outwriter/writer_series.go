package outwriter

import (
	"encoding/csv"
	"strconv"

	"github.com/huangsam/gridline/internal/contract"
	"github.com/huangsam/gridline/schema"
)

func optionalInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

// writeCSVSeries writes one row per game to a CSV writer.
func writeCSVSeries(w *csv.Writer, points []schema.SeriesPoint, ref schema.PercentileReference, fmtFloat func(float64) string) error {
	// 1. Write Header Row
	header := []string{
		"game_index",
		"season",
		"week",
		"player",
		"team",
		"opponent",
		"side",
		"team_score",
		"opponent_score",
		"margin",
		"outcome",
		"qbr",
		"plays",
		"tier",
	}
	if err := w.Write(header); err != nil {
		return err
	}

	// 2. Write Data Rows
	for _, p := range points {
		row := []string{
			strconv.Itoa(p.GameIndex),
			strconv.Itoa(p.Season),
			strconv.Itoa(p.Week),
			p.Player,
			p.Team,
			p.Opponent,
			string(p.Side),
			optionalInt(p.TeamScore),
			optionalInt(p.OpponentScore),
			optionalInt(p.Margin),
			string(p.Outcome),
			fmtFloat(p.QBR),
			strconv.Itoa(p.Plays),
			contract.GetPlainTier(p.QBR, ref),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}
