package schema

// SeriesPoint is one qualifying game of a chart series after all joins.
type SeriesPoint struct {
	Season        int     `json:"season"`
	Week          int     `json:"week"`
	GameIndex     int     `json:"game_index"`
	Player        string  `json:"player"`
	Team          string  `json:"team"`
	QBR           float64 `json:"qbr"`
	Plays         int     `json:"plays"`
	Opponent      string  `json:"opponent,omitempty"`
	Side          Side    `json:"side,omitempty"`
	Margin        *int    `json:"margin,omitempty"` // home score minus away score
	TeamScore     *int    `json:"team_score,omitempty"`
	OpponentScore *int    `json:"opponent_score,omitempty"`
	Outcome       Outcome `json:"outcome"`
	Color         string  `json:"color,omitempty"`
	OpponentLogo  string  `json:"opponent_logo,omitempty"`
	HoverText     string  `json:"hover_text,omitempty"`
}

// PercentileCut is one percentile reference value.
type PercentileCut struct {
	Level int     `json:"level"`
	Value float64 `json:"value"`
}

// PercentileReference holds the reference cuts computed over a full metric column.
type PercentileReference struct {
	Cuts  []PercentileCut `json:"cuts"`
	Count int             `json:"count"`
}

// Value returns the cut at level and whether it exists.
func (p PercentileReference) Value(level int) (float64, bool) {
	for _, c := range p.Cuts {
		if c.Level == level {
			return c.Value, true
		}
	}
	return 0, false
}

// ReferenceLine is a labeled horizontal guide.
type ReferenceLine struct {
	Label  string  `json:"label"`
	Value  float64 `json:"value"`
	LabelX float64 `json:"label_x"`
	Dashed bool    `json:"dashed"`
}

// ImageOverlay places an image on the plot in data coordinates.
type ImageOverlay struct {
	Source  string  `json:"source"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	SizeX   float64 `json:"size_x"`
	SizeY   float64 `json:"size_y"`
	XAnchor string  `json:"x_anchor"`
	YAnchor string  `json:"y_anchor"`
}

// SeasonMarker is a vertical line at the first game of a season.
type SeasonMarker struct {
	Season    int     `json:"season"`
	GameIndex float64 `json:"game_index"`
}

// RangeSlider configures the scrollable window over the game index axis.
type RangeSlider struct {
	Start           float64 `json:"start"`
	End             float64 `json:"end"`
	BackgroundColor string  `json:"background_color"`
	Thickness       float64 `json:"thickness"`
}

// StaticChart is a single-season chart of metric value by week.
type StaticChart struct {
	Title      string          `json:"title"`
	Player     string          `json:"player"`
	Season     int             `json:"season"`
	XLabel     string          `json:"x_label"`
	YLabel     string          `json:"y_label"`
	XMin       float64         `json:"x_min"`
	XMax       float64         `json:"x_max"`
	YMin       float64         `json:"y_min"`
	YMax       float64         `json:"y_max"`
	LineColor  string          `json:"line_color,omitempty"`
	Points     []SeriesPoint   `json:"points"`
	References []ReferenceLine `json:"references"`
	Logos      []ImageOverlay  `json:"logos"`
}

// InteractiveChart is a multi-season chart of metric value by running game index.
type InteractiveChart struct {
	Title         string          `json:"title"`
	Player        string          `json:"player"`
	FirstSeason   int             `json:"first_season"`
	LastSeason    int             `json:"last_season"`
	XLabel        string          `json:"x_label"`
	YLabel        string          `json:"y_label"`
	XMin          float64         `json:"x_min"`
	XMax          float64         `json:"x_max"`
	YMin          float64         `json:"y_min"`
	YMax          float64         `json:"y_max"`
	LineColor     string          `json:"line_color,omitempty"`
	Points        []SeriesPoint   `json:"points"`
	References    []ReferenceLine `json:"references"`
	SeasonMarkers []SeasonMarker  `json:"season_markers"`
	Overlays      []ImageOverlay  `json:"overlays"`
	RangeSlider   RangeSlider     `json:"range_slider"`
	HoverTemplate string          `json:"hover_template"`
}
