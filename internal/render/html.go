package render

import (
	"encoding/json"
	"fmt"
	"html/template"
	"io"

	"github.com/huangsam/gridline/schema"
)

// PlotlyScriptURL is the Plotly bundle loaded by generated pages.
const PlotlyScriptURL = "https://cdn.plot.ly/plotly-2.35.2.min.js"

var pageTemplate = template.Must(template.New("chart").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<script src="{{.ScriptURL}}"></script>
<style>body { margin: 0; font-family: sans-serif; } #chart { width: 100vw; height: 100vh; }</style>
</head>
<body>
<div id="chart"></div>
<script>
const figure = {{.Figure}};
Plotly.newPlot("chart", figure.data, figure.layout, {responsive: true});
</script>
</body>
</html>
`))

// WriteInteractiveHTML writes a standalone page that draws c with Plotly.
func WriteInteractiveHTML(w io.Writer, c schema.InteractiveChart) error {
	figure, err := json.Marshal(PlotlyFigure(c))
	if err != nil {
		return fmt.Errorf("failed to encode figure: %w", err)
	}
	return pageTemplate.Execute(w, struct {
		Title     string
		ScriptURL string
		Figure    template.JS
	}{
		Title:     c.Title,
		ScriptURL: PlotlyScriptURL,
		Figure:    template.JS(figure),
	})
}
