// Package render turns assembled charts into images, Plotly figures and HTML pages.
package render

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"image"
	"image/png"
	"io"
	"strconv"
	"strings"

	"github.com/huangsam/gridline/internal/contract"
	"github.com/huangsam/gridline/schema"
	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
	xdraw "golang.org/x/image/draw"
)

// Options controls static rendering.
type Options struct {
	Width  int
	Height int
	Logos  LogoSource // nil skips logo overlays on PNG output
}

var (
	referenceColor = drawing.ColorFromHex("7F7F7F")
	defaultLine    = drawing.ColorFromHex("1F77B4")
	yTicks         = []chart.Tick{{Value: 0, Label: "0"}, {Value: 25, Label: "25"}, {Value: 50, Label: "50"}, {Value: 75, Label: "75"}, {Value: 100, Label: "100"}}
	weekTickLabels = map[int]string{18: "WC", 19: "DIV", 20: "CONF", 21: "SB"}
)

// parseColor converts "#RRGGBB" into a drawing color, falling back to fallback.
func parseColor(hex string, fallback drawing.Color) drawing.Color {
	hex = strings.TrimPrefix(strings.TrimSpace(hex), "#")
	if len(hex) != 6 {
		return fallback
	}
	return drawing.ColorFromHex(hex)
}

// placement is where an overlay landed in pixel space.
type placement struct {
	source string
	rect   image.Rectangle
}

// logoSeries draws nothing itself. It records the pixel boxes of the overlays once
// the chart has laid out its canvas, so they can be composited afterwards.
type logoSeries struct {
	overlays []schema.ImageOverlay
	placed   []placement
}

func (ls *logoSeries) GetName() string { return "logos" }
func (ls *logoSeries) GetYAxis() chart.YAxisType { return chart.YAxisPrimary }
func (ls *logoSeries) GetStyle() chart.Style { return chart.Style{} }
func (ls *logoSeries) Validate() error { return nil }
func (ls *logoSeries) Render(_ chart.Renderer, canvasBox chart.Box, xrange, yrange chart.Range, _ chart.Style) {
	ls.placed = ls.placed[:0]
	for _, o := range ls.overlays {
		x0 := canvasBox.Left + xrange.Translate(o.X-o.SizeX/2)
		x1 := canvasBox.Left + xrange.Translate(o.X+o.SizeX/2)
		y0 := canvasBox.Bottom - yrange.Translate(o.Y+o.SizeY/2)
		y1 := canvasBox.Bottom - yrange.Translate(o.Y-o.SizeY/2)
		ls.placed = append(ls.placed, placement{source: o.Source, rect: image.Rect(x0, y0, x1, y1)})
	}
}

// buildStatic lays out the go-chart model of c.
func buildStatic(c schema.StaticChart, opts Options) (chart.Chart, *logoSeries) {
	lineColor := parseColor(c.LineColor, defaultLine)
	series := []chart.Series{}

	if len(c.Points) > 0 {
		xs := make([]float64, len(c.Points))
		ys := make([]float64, len(c.Points))
		for i, p := range c.Points {
			xs[i] = float64(p.Week)
			ys[i] = p.QBR
		}
		series = append(series, chart.ContinuousSeries{
			Name:    c.Player,
			XValues: xs,
			YValues: ys,
			Style: chart.Style{
				StrokeColor: lineColor,
				StrokeWidth: 2,
				DotColor:    lineColor,
				DotWidth:    4,
			},
		})
	}

	var labels []chart.Value2
	for _, ref := range c.References {
		style := chart.Style{StrokeColor: referenceColor, StrokeWidth: 1}
		if ref.Dashed {
			style.StrokeDashArray = []float64{5, 5}
		}
		series = append(series, chart.ContinuousSeries{
			Name:    ref.Label,
			XValues: []float64{c.XMin, c.XMax},
			YValues: []float64{ref.Value, ref.Value},
			Style:   style,
		})
		labels = append(labels, chart.Value2{XValue: ref.LabelX, YValue: ref.Value, Label: ref.Label})
	}
	if len(labels) > 0 {
		series = append(series, chart.AnnotationSeries{
			Annotations: labels,
			Style:       chart.Style{FontSize: 8, FontColor: referenceColor, StrokeColor: referenceColor},
		})
	}

	logos := &logoSeries{overlays: c.Logos}
	series = append(series, logos)

	var xTicks []chart.Tick
	for week := 1; float64(week) <= c.XMax; week++ {
		label, ok := weekTickLabels[week]
		if !ok {
			label = strconv.Itoa(week)
		}
		xTicks = append(xTicks, chart.Tick{Value: float64(week), Label: label})
	}

	ch := chart.Chart{
		Title:      c.Title,
		Width:      opts.Width,
		Height:     opts.Height,
		Background: chart.Style{Padding: chart.Box{Top: 48, Left: 16, Right: 16, Bottom: 16}},
		XAxis: chart.XAxis{
			Name:  c.XLabel,
			Range: &chart.ContinuousRange{Min: c.XMin, Max: c.XMax},
			Ticks: xTicks,
		},
		YAxis: chart.YAxis{
			Name:  c.YLabel,
			Range: &chart.ContinuousRange{Min: c.YMin, Max: c.YMax},
			Ticks: yTicks,
		},
		Series: series,
	}
	return ch, logos
}

// RenderStatic writes c as PNG or SVG. PNG output composites opponent logos fetched
// through opts.Logos; SVG output references them by URL.
func RenderStatic(ctx context.Context, w io.Writer, c schema.StaticChart, format schema.OutputMode, opts Options) error {
	if opts.Width <= 0 {
		opts.Width = contract.DefaultChartWidth
	}
	if opts.Height <= 0 {
		opts.Height = contract.DefaultChartHeight
	}
	ch, logos := buildStatic(c, opts)

	switch format {
	case schema.PNGOut:
		var buf bytes.Buffer
		if err := ch.Render(chart.PNG, &buf); err != nil {
			return fmt.Errorf("failed to render chart: %w", err)
		}
		if opts.Logos == nil || len(logos.placed) == 0 {
			_, err := w.Write(buf.Bytes())
			return err
		}
		img, err := png.Decode(&buf)
		if err != nil {
			return fmt.Errorf("failed to decode rendered chart: %w", err)
		}
		return png.Encode(w, compositeLogos(ctx, img, logos.placed, opts.Logos))
	case schema.SVGOut:
		var buf bytes.Buffer
		if err := ch.Render(chart.SVG, &buf); err != nil {
			return fmt.Errorf("failed to render chart: %w", err)
		}
		_, err := w.Write(embedSVGLogos(buf.Bytes(), logos.placed))
		return err
	default:
		return fmt.Errorf("unsupported image format: %s", format)
	}
}

// compositeLogos scales each logo into its box, keeping its aspect ratio.
// Logos that cannot be loaded are skipped with a warning.
func compositeLogos(ctx context.Context, base image.Image, placed []placement, src LogoSource) image.Image {
	dst := image.NewRGBA(base.Bounds())
	xdraw.Draw(dst, dst.Bounds(), base, base.Bounds().Min, xdraw.Src)

	for _, p := range placed {
		logo, err := src.Logo(ctx, p.source)
		if err != nil {
			contract.LogWarn("Skipping logo "+p.source, err)
			continue
		}
		xdraw.CatmullRom.Scale(dst, fitRect(p.rect, logo.Bounds()), logo, logo.Bounds(), xdraw.Over, nil)
	}
	return dst
}

// fitRect returns the largest rectangle centered in box with the aspect ratio of img.
func fitRect(box, img image.Rectangle) image.Rectangle {
	bw, bh := box.Dx(), box.Dy()
	iw, ih := img.Dx(), img.Dy()
	if bw <= 0 || bh <= 0 || iw <= 0 || ih <= 0 {
		return box
	}
	w, h := bw, bw*ih/iw
	if h > bh {
		w, h = bh*iw/ih, bh
	}
	x := box.Min.X + (bw-w)/2
	y := box.Min.Y + (bh-h)/2
	return image.Rect(x, y, x+w, y+h)
}

// embedSVGLogos inserts image elements before the closing svg tag.
func embedSVGLogos(svg []byte, placed []placement) []byte {
	if len(placed) == 0 {
		return svg
	}
	end := bytes.LastIndex(svg, []byte("</svg>"))
	if end < 0 {
		return svg
	}
	var b bytes.Buffer
	b.Write(svg[:end])
	for _, p := range placed {
		fmt.Fprintf(&b, `<image href="%s" x="%d" y="%d" width="%d" height="%d" preserveAspectRatio="xMidYMid meet"/>`,
			html.EscapeString(p.source), p.rect.Min.X, p.rect.Min.Y, p.rect.Dx(), p.rect.Dy())
		b.WriteByte('\n')
	}
	b.Write(svg[end:])
	return b.Bytes()
}
