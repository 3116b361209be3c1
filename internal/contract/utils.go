package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/huangsam/gridline/schema"
)

// Rating tier constants, relative to the percentile reference.
const (
	EliteValue   = "Elite"   // at or above the 90th percentile
	GoodValue    = "Good"    // at or above the 75th percentile
	AverageValue = "Average" // at or above the 25th percentile
	PoorValue    = "Poor"    // below the 25th percentile
)

// Color variables for console output.
var (
	EliteColor   = color.New(color.FgGreen, color.Bold)
	GoodColor    = color.New(color.FgCyan)
	AverageColor = color.New(color.FgYellow)
	PoorColor    = color.New(color.FgRed)

	fatalColor = color.New(color.FgRed, color.Bold)
	warnColor  = color.New(color.FgYellow)
)

// GetPlainTier returns a plain text tier for a rating relative to the reference cuts.
// This is the core logic used for CSV, JSON, and table printing.
func GetPlainTier(qbr float64, ref schema.PercentileReference) string {
	p90, ok90 := ref.Value(90)
	p75, ok75 := ref.Value(75)
	p25, ok25 := ref.Value(25)
	switch {
	case ok90 && qbr >= p90:
		return EliteValue
	case ok75 && qbr >= p75:
		return GoodValue
	case ok25 && qbr >= p25:
		return AverageValue
	default:
		return PoorValue
	}
}

// GetColorTier returns a colored tier label for console output (table).
func GetColorTier(qbr float64, ref schema.PercentileReference) string {
	text := GetPlainTier(qbr, ref)

	switch text {
	case EliteValue:
		return EliteColor.Sprint(text)
	case GoodValue:
		return GoodColor.Sprint(text)
	case AverageValue:
		return AverageColor.Sprint(text)
	default:
		return PoorColor.Sprint(text)
	}
}

// GetColorOutcome returns a colored outcome label for console output.
func GetColorOutcome(o schema.Outcome) string {
	switch o {
	case schema.OutcomeWon:
		return EliteColor.Sprint(string(o))
	case schema.OutcomeLost:
		return PoorColor.Sprint(string(o))
	case schema.OutcomeTie:
		return AverageColor.Sprint(string(o))
	default:
		return string(o)
	}
}

// SelectOutputFile returns the appropriate file handle for output, based on the provided
// file path. An empty path selects os.Stdout.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "%s %s: %v\n", fatalColor.Sprint("Fatal"), msg, err)
	os.Exit(1)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "%s %s: %v\n", warnColor.Sprint("Warn"), msg, err)
}

// GetCacheDBFilePath returns the path to the SQLite DB file for response caching.
func GetCacheDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".gridline_cache.db"
	}
	return filepath.Join(homeDir, ".gridline_cache.db")
}

// GetRunsDBFilePath returns the path to the SQLite DB file for collection runs.
func GetRunsDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".gridline_runs.db"
	}
	return filepath.Join(homeDir, ".gridline_runs.db")
}

// TruncateName truncates a name to a maximum width with an ellipsis suffix.
// Requires maxWidth > 3 to leave space for the "..." suffix.
func TruncateName(name string, maxWidth int) string {
	runes := []rune(name)
	if len(runes) > maxWidth && maxWidth > 3 {
		return string(runes[:maxWidth-3]) + "..."
	}
	return name
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
// Returns an error for invalid values.
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}
