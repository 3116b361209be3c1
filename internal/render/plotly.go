package render

import (
	"encoding/json"
	"io"
	"strconv"

	"github.com/huangsam/gridline/schema"
)

const (
	referenceLineColor = "#7F7F7F"
	seasonLineColor    = "#BFBFBF"
	defaultTraceColor  = "#1F77B4"
)

// Figure is a Plotly figure: traces plus layout.
type Figure struct {
	Data   []Trace `json:"data"`
	Layout Layout  `json:"layout"`
}

// Trace is a Plotly scatter trace.
type Trace struct {
	Type          string    `json:"type"`
	Mode          string    `json:"mode"`
	Name          string    `json:"name"`
	X             []float64 `json:"x"`
	Y             []float64 `json:"y"`
	Text          []string  `json:"text"`
	HoverTemplate string    `json:"hovertemplate"`
	Line          Line      `json:"line"`
	Marker        Marker    `json:"marker"`
}

// Line styles a trace or shape stroke.
type Line struct {
	Color string `json:"color"`
	Width int    `json:"width"`
	Dash  string `json:"dash,omitempty"`
}

// Marker styles trace points with one color per point.
type Marker struct {
	Color []string `json:"color"`
	Size  int      `json:"size"`
}

// Text is a Plotly title.
type Text struct {
	Text string `json:"text"`
}

// Font styles annotation text.
type Font struct {
	Size  int    `json:"size"`
	Color string `json:"color"`
}

// Shape is a line drawn in data or paper coordinates.
type Shape struct {
	Type  string  `json:"type"`
	XRef  string  `json:"xref"`
	YRef  string  `json:"yref"`
	X0    float64 `json:"x0"`
	X1    float64 `json:"x1"`
	Y0    float64 `json:"y0"`
	Y1    float64 `json:"y1"`
	Line  Line    `json:"line"`
	Layer string  `json:"layer"`
}

// Annotation is a text label without an arrow.
type Annotation struct {
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	XRef      string  `json:"xref"`
	YRef      string  `json:"yref"`
	Text      string  `json:"text"`
	ShowArrow bool    `json:"showarrow"`
	XAnchor   string  `json:"xanchor,omitempty"`
	YAnchor   string  `json:"yanchor,omitempty"`
	Font      Font    `json:"font"`
}

// Image is a layout image placed in data coordinates.
type Image struct {
	Source  string  `json:"source"`
	XRef    string  `json:"xref"`
	YRef    string  `json:"yref"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	SizeX   float64 `json:"sizex"`
	SizeY   float64 `json:"sizey"`
	XAnchor string  `json:"xanchor"`
	YAnchor string  `json:"yanchor"`
	Layer   string  `json:"layer"`
}

// RangeSlider is the scrollable overview below the x axis.
type RangeSlider struct {
	Visible   bool       `json:"visible"`
	Range     [2]float64 `json:"range"`
	BgColor   string     `json:"bgcolor"`
	Thickness float64    `json:"thickness"`
}

// Axis configures one plot axis.
type Axis struct {
	Title       Text         `json:"title"`
	Range       [2]float64   `json:"range"`
	FixedRange  bool         `json:"fixedrange,omitempty"`
	RangeSlider *RangeSlider `json:"rangeslider,omitempty"`
}

// Layout is the figure layout.
type Layout struct {
	Title       Text         `json:"title"`
	HoverMode   string       `json:"hovermode"`
	ShowLegend  bool         `json:"showlegend"`
	XAxis       Axis         `json:"xaxis"`
	YAxis       Axis         `json:"yaxis"`
	Shapes      []Shape      `json:"shapes"`
	Annotations []Annotation `json:"annotations"`
	Images      []Image      `json:"images"`
}

// PlotlyFigure converts the interactive chart into a Plotly figure.
// The x axis opens on the range slider window; the slider spans the whole axis.
func PlotlyFigure(c schema.InteractiveChart) Figure {
	lineColor := c.LineColor
	if lineColor == "" {
		lineColor = defaultTraceColor
	}

	trace := Trace{
		Type:          "scatter",
		Mode:          "lines+markers",
		Name:          c.Player,
		X:             make([]float64, 0, len(c.Points)),
		Y:             make([]float64, 0, len(c.Points)),
		Text:          make([]string, 0, len(c.Points)),
		HoverTemplate: c.HoverTemplate,
		Line:          Line{Color: lineColor, Width: 2},
		Marker:        Marker{Color: make([]string, 0, len(c.Points)), Size: 6},
	}
	for _, p := range c.Points {
		trace.X = append(trace.X, float64(p.GameIndex))
		trace.Y = append(trace.Y, p.QBR)
		trace.Text = append(trace.Text, p.HoverText)
		color := p.Color
		if color == "" {
			color = lineColor
		}
		trace.Marker.Color = append(trace.Marker.Color, color)
	}

	layout := Layout{
		Title:      Text{Text: c.Title},
		HoverMode:  "closest",
		ShowLegend: false,
		XAxis: Axis{
			Title: Text{Text: c.XLabel},
			Range: [2]float64{c.RangeSlider.Start, c.RangeSlider.End},
			RangeSlider: &RangeSlider{
				Visible:   true,
				Range:     [2]float64{c.XMin, c.XMax},
				BgColor:   c.RangeSlider.BackgroundColor,
				Thickness: c.RangeSlider.Thickness,
			},
		},
		YAxis: Axis{
			Title:      Text{Text: c.YLabel},
			Range:      [2]float64{c.YMin, c.YMax},
			FixedRange: true,
		},
		Shapes:      []Shape{},
		Annotations: []Annotation{},
		Images:      []Image{},
	}

	labelFont := Font{Size: 10, Color: referenceLineColor}
	for _, ref := range c.References {
		line := Line{Color: referenceLineColor, Width: 1, Dash: "solid"}
		if ref.Dashed {
			line.Dash = "dash"
		}
		layout.Shapes = append(layout.Shapes, Shape{
			Type: "line", XRef: "x", YRef: "y",
			X0: c.XMin, X1: c.XMax, Y0: ref.Value, Y1: ref.Value,
			Line: line, Layer: "below",
		})
		layout.Annotations = append(layout.Annotations, Annotation{
			X: ref.LabelX, Y: ref.Value, XRef: "x", YRef: "y",
			Text: ref.Label, Font: labelFont,
		})
	}

	for _, m := range c.SeasonMarkers {
		layout.Shapes = append(layout.Shapes, Shape{
			Type: "line", XRef: "x", YRef: "paper",
			X0: m.GameIndex, X1: m.GameIndex, Y0: 0, Y1: 1,
			Line: Line{Color: seasonLineColor, Width: 1}, Layer: "below",
		})
		layout.Annotations = append(layout.Annotations, Annotation{
			X: m.GameIndex, Y: 1, XRef: "x", YRef: "paper",
			Text: strconv.Itoa(m.Season), XAnchor: "left", YAnchor: "bottom", Font: labelFont,
		})
	}

	for _, o := range c.Overlays {
		layout.Images = append(layout.Images, Image{
			Source: o.Source, XRef: "x", YRef: "y",
			X: o.X, Y: o.Y, SizeX: o.SizeX, SizeY: o.SizeY,
			XAnchor: o.XAnchor, YAnchor: o.YAnchor, Layer: "above",
		})
	}

	return Figure{Data: []Trace{trace}, Layout: layout}
}

// WriteFigureJSON writes the Plotly figure of c as indented JSON.
func WriteFigureJSON(w io.Writer, c schema.InteractiveChart) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(PlotlyFigure(c))
}
