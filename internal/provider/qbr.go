package provider

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/huangsam/gridline/internal/contract"
	"github.com/huangsam/gridline/schema"
)

// column roles recognized in a rating table header.
const (
	colPlayer = "player"
	colTeam   = "team"
	colQBR    = "qbr"
	colPlays  = "plays"
)

var headerRoles = map[string]string{
	"player":       colPlayer,
	"name":         colPlayer,
	"team":         colTeam,
	"qbr":          colQBR,
	"tqbr":         colQBR,
	"total qbr":    colQBR,
	"totalqbr":     colQBR,
	"plays":        colPlays,
	"qb plays":     colPlays,
	"action plays": colPlays,
}

// QBRProvider reads one weekly rating table per request from an HTML page.
type QBRProvider struct {
	urlTemplate   string
	currentSeason int
	fetcher
}

var _ contract.WeekFetcher = (*QBRProvider)(nil) // Compile-time check

// NewQBRProvider creates a provider for urlTemplate, which must contain {season} and {week}
// and may contain {seasontype}. Responses pass through cache when it is non-nil.
func NewQBRProvider(urlTemplate string, timeout time.Duration, cache contract.CacheStore) *QBRProvider {
	f := newFetcher(timeout, cache)
	return &QBRProvider{
		urlTemplate:   urlTemplate,
		currentSeason: contract.CurrentSeason(f.now()),
		fetcher:       f,
	}
}

// WeekURL expands the URL template for key.
func (p *QBRProvider) WeekURL(key schema.WeekKey) string {
	return strings.NewReplacer(
		"{season}", strconv.Itoa(key.Season),
		"{seasontype}", strconv.Itoa(key.SeasonType()),
		"{week}", strconv.Itoa(key.ProviderWeek()),
	).Replace(p.urlTemplate)
}

// FetchWeek implements contract.WeekFetcher.
func (p *QBRProvider) FetchWeek(ctx context.Context, key schema.WeekKey) ([]schema.GameStatRecord, error) {
	if key.Season < schema.FirstQBRSeason {
		return nil, schema.ErrNoData
	}

	ttl := time.Duration(0)
	if key.Season >= p.currentSeason {
		ttl = CurrentSeasonTTL
	}
	body, err := p.get(ctx, p.WeekURL(key), ttl)
	if err != nil {
		return nil, err
	}

	records, err := ParseQBRTable(body, key)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, schema.ErrNoData
	}
	return records, nil
}

// htmlTable is a header row plus data cells of one table.
type htmlTable struct {
	headers []string
	rows    []*goquery.Selection
}

// ParseQBRTable extracts records for key from an HTML page.
// The first table carrying both a player and a rating column is used. Pages that split
// names and stats into two side-by-side tables of equal length are stitched together.
func ParseQBRTable(body []byte, key schema.WeekKey) ([]schema.GameStatRecord, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("error parsing HTML: %w", err)
	}

	var tables []htmlTable
	doc.Find("table").Each(func(_ int, table *goquery.Selection) {
		t := htmlTable{}
		table.Find("tr").Each(func(i int, row *goquery.Selection) {
			if row.Find("th").Length() > 0 && len(t.headers) == 0 {
				row.Find("th").Each(func(_ int, cell *goquery.Selection) {
					t.headers = append(t.headers, strings.TrimSpace(cell.Text()))
				})
				return
			}
			if row.Find("td").Length() > 0 {
				t.rows = append(t.rows, row)
			}
		})
		if len(t.headers) > 0 {
			tables = append(tables, t)
		}
	})

	for _, t := range tables {
		roles := mapHeaders(t.headers)
		if hasRoles(roles, colPlayer, colQBR) {
			return extractRecords(t.headers, t.rows, nil, nil, key), nil
		}
	}

	// Split layout: names on the left, stats on the right.
	for i := 0; i+1 < len(tables); i++ {
		left, right := tables[i], tables[i+1]
		if len(left.rows) != len(right.rows) {
			continue
		}
		headers := append(append([]string{}, left.headers...), right.headers...)
		if hasRoles(mapHeaders(headers), colPlayer, colQBR) {
			return extractRecords(left.headers, left.rows, right.headers, right.rows, key), nil
		}
	}

	return nil, nil
}

func normalizeHeader(h string) string {
	return strings.ToLower(strings.Join(strings.Fields(h), " "))
}

func mapHeaders(headers []string) map[string]int {
	roles := make(map[string]int)
	for i, h := range headers {
		if role, ok := headerRoles[normalizeHeader(h)]; ok {
			if _, seen := roles[role]; !seen {
				roles[role] = i
			}
		}
	}
	return roles
}

func hasRoles(roles map[string]int, want ...string) bool {
	for _, w := range want {
		if _, ok := roles[w]; !ok {
			return false
		}
	}
	return true
}

// cell is one parsed table cell with its column header.
type cell struct {
	header string
	sel    *goquery.Selection
}

func rowCells(headers []string, row *goquery.Selection) []cell {
	var cells []cell
	row.Find("td").Each(func(i int, sel *goquery.Selection) {
		h := ""
		if i < len(headers) {
			h = headers[i]
		}
		cells = append(cells, cell{header: h, sel: sel})
	})
	return cells
}

func extractRecords(leftHeaders []string, leftRows []*goquery.Selection, rightHeaders []string, rightRows []*goquery.Selection, key schema.WeekKey) []schema.GameStatRecord {
	var records []schema.GameStatRecord
	for i, row := range leftRows {
		cells := rowCells(leftHeaders, row)
		if rightRows != nil {
			cells = append(cells, rowCells(rightHeaders, rightRows[i])...)
		}
		if rec, ok := buildRecord(cells, key); ok {
			records = append(records, rec)
		}
	}
	return records
}

// buildRecord maps cells by header role. Rows without a player or a numeric rating are skipped.
func buildRecord(cells []cell, key schema.WeekKey) (schema.GameStatRecord, bool) {
	rec := schema.GameStatRecord{Season: key.Season, Week: schema.ClampWeek(key.Week)}
	hasQBR := false
	var embeddedTeam string

	for _, c := range cells {
		text := strings.TrimSpace(c.sel.Text())
		name := normalizeHeader(c.header)
		switch headerRoles[name] {
		case colPlayer:
			rec.Player, embeddedTeam = playerCell(c.sel)
		case colTeam:
			rec.Team = strings.ToUpper(text)
		case colQBR:
			v, err := strconv.ParseFloat(text, 64)
			if err == nil {
				rec.QBR = v
				hasQBR = true
			}
		case colPlays:
			if n, err := strconv.Atoi(strings.ReplaceAll(text, ",", "")); err == nil {
				rec.Plays = n
			}
		default:
			if name == "" {
				continue
			}
			if rec.Extra == nil {
				rec.Extra = make(map[string]string)
			}
			rec.Extra[name] = text
		}
	}

	if rec.Team == "" {
		rec.Team = embeddedTeam
	}
	if rec.Player == "" || !hasQBR {
		return schema.GameStatRecord{}, false
	}
	return rec, true
}

// playerCell returns the player name and, when the cell carries one, the team abbreviation
// rendered alongside the name link.
func playerCell(sel *goquery.Selection) (string, string) {
	team := strings.TrimSpace(sel.Find(".athleteCell__teamAbbrev").First().Text())
	if link := sel.Find("a").First(); link.Length() > 0 {
		if name := strings.TrimSpace(link.Text()); name != "" {
			return name, strings.ToUpper(team)
		}
	}
	return strings.TrimSpace(sel.Text()), strings.ToUpper(team)
}
