// Package teams provides the read-only team style lookup used to decorate charts.
package teams

import (
	"bytes"
	_ "embed"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/huangsam/gridline/schema"
)

//go:embed teams.csv
var teamsCSV []byte

// aliases maps codes of relocated or renamed franchises to their current code.
var aliases = map[string]string{
	"LAR": "LA",
	"STL": "LA",
	"SD":  "LAC",
	"OAK": "LV",
	"WSH": "WAS",
	"JAC": "JAX",
}

// Styles maps a current team code to its display style.
type Styles map[string]schema.TeamStyle

// NormalizeCode maps an old or alternate team code to the current one.
// Unknown codes are returned upper-cased and otherwise unchanged.
func NormalizeCode(code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	if current, ok := aliases[code]; ok {
		return current
	}
	return code
}

// IsMultiTeam reports whether code is a combined label such as "DEN/KC".
func IsMultiTeam(code string) bool {
	return len(strings.TrimSpace(code)) > schema.MaxTeamCodeLength
}

// Load returns the embedded styles for the current league.
func Load() (Styles, error) {
	return Parse(bytes.NewReader(teamsCSV))
}

// LoadFile reads styles from a CSV file with the same columns as the embedded table.
// An empty path falls back to the embedded table.
func LoadFile(path string) (Styles, error) {
	if path == "" {
		return Load()
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open teams file: %w", err)
	}
	defer func() { _ = f.Close() }()
	return Parse(f)
}

// Parse reads a CSV with the header code,name,color,secondary_color,logo.
// Column order is free; code is required.
func Parse(r io.Reader) (Styles, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read teams header: %w", err)
	}
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	if _, ok := idx["code"]; !ok {
		return nil, errors.New("teams file is missing the code column")
	}

	get := func(row []string, col string) string {
		if i, ok := idx[col]; ok && i < len(row) {
			return strings.TrimSpace(row[i])
		}
		return ""
	}

	styles := make(Styles)
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read teams row: %w", err)
		}
		code := NormalizeCode(get(row, "code"))
		if code == "" {
			continue
		}
		styles[code] = schema.TeamStyle{
			Code:           code,
			Name:           get(row, "name"),
			Color:          get(row, "color"),
			SecondaryColor: get(row, "secondary_color"),
			Logo:           get(row, "logo"),
		}
	}
	return styles, nil
}

// Lookup returns the style for code after alias normalization.
func (s Styles) Lookup(code string) (schema.TeamStyle, bool) {
	style, ok := s[NormalizeCode(code)]
	return style, ok
}
