package chart

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/tosih/enginelog/pkg/models"
)

// Options controls the HTML output
type Options struct {
	Theme       string // echarts theme name, e.g. "dark" or "white"
	PlotHeight  string // height of one subplot
	ChartPrefix string // prefix for chart element ids
}

// DefaultOptions matches the viewer's dark look
var DefaultOptions = Options{
	Theme:       "dark",
	PlotHeight:  "320px",
	ChartPrefix: "subplot",
}

// linkScript connects every chart on the page so zooming or panning the x
// axis of one subplot moves all of them. Only x has a dataZoom, so y ranges
// stay independent.
const linkScript = `
<script>
    window.addEventListener('load', function() {
        var instances = [];
        document.querySelectorAll('[_echarts_instance_]').forEach(function(el) {
            var chart = echarts.getInstanceByDom(el);
            if (chart) {
                instances.push(chart);
            }
        });
        if (instances.length > 1) {
            echarts.connect(instances);
        }
    });
    window.addEventListener('resize', function() {
        document.querySelectorAll('[_echarts_instance_]').forEach(function(el) {
            var chart = echarts.getInstanceByDom(el);
            if (chart) {
                chart.resize();
            }
        });
    });
</script>
`

// WriteHTML renders a plot spec as an interactive HTML page
func WriteHTML(w io.Writer, spec *models.PlotSpec, o Options) error {
	if len(spec.Groups) == 0 {
		return errors.New("plot has no subplots")
	}

	page := components.NewPage()
	page.PageTitle = spec.Title

	switch spec.Kind {
	case models.XY:
		page.AddCharts(scatterChart(spec, o))
	default:
		for i, g := range spec.Groups {
			page.AddCharts(lineChart(spec, g, i, o))
		}
	}

	var buf strings.Builder
	if err := page.Render(&buf); err != nil {
		return fmt.Errorf("failed to render charts: %w", err)
	}

	html := buf.String()
	if spec.LinkedX {
		html = strings.Replace(html, "</body>", linkScript+"</body>", 1)
	}

	_, err := io.WriteString(w, html)
	return err
}

// lineChart builds one subplot of a time series plot
func lineChart(spec *models.PlotSpec, g models.UnitGroup, idx int, o Options) *charts.Line {
	line := charts.NewLine()

	title := opts.Title{Title: g.Title}
	if idx == 0 {
		title = opts.Title{Title: spec.Title, Subtitle: g.Title}
	}

	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: spec.Title,
			ChartID:   fmt.Sprintf("%s%d", o.ChartPrefix, idx),
			Theme:     o.Theme,
			Width:     "100%",
			Height:    o.PlotHeight,
		}),
		charts.WithTitleOpts(title),
		charts.WithTooltipOpts(opts.Tooltip{
			Show:    opts.Bool(true),
			Trigger: "axis",
		}),
		charts.WithLegendOpts(opts.Legend{
			Show:  opts.Bool(true),
			Right: "10%",
		}),
		charts.WithXAxisOpts(opts.XAxis{
			Name: spec.X.Name,
			Type: "category",
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Name: g.Unit,
			Type: "value",
			Min:  "dataMin",
			Max:  "dataMax",
		}),
		charts.WithDataZoomOpts(
			opts.DataZoom{Type: "inside", Start: 0, End: 100},
			opts.DataZoom{Type: "slider", Start: 0, End: 100},
		),
		charts.WithGridOpts(opts.Grid{
			Left:   "8%",
			Right:  "8%",
			Top:    "70",
			Bottom: "70",
		}),
	)

	line.SetXAxis(XLabels(spec.X))
	for _, tr := range g.Traces {
		line.AddSeries(tr.Name, lineData(tr.Values),
			charts.WithLineChartOpts(opts.LineChart{
				ShowSymbol: opts.Bool(false),
			}),
		)
	}

	return line
}

// scatterChart builds the single chart of an XY plot
func scatterChart(spec *models.PlotSpec, o Options) *charts.Scatter {
	scatter := charts.NewScatter()
	g := spec.Groups[0]

	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: spec.Title,
			ChartID:   o.ChartPrefix + "0",
			Theme:     o.Theme,
			Width:     "100%",
			Height:    "600px",
		}),
		charts.WithTitleOpts(opts.Title{Title: spec.Title}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show:    opts.Bool(true),
			Trigger: "item",
		}),
		charts.WithXAxisOpts(opts.XAxis{
			Name: spec.X.Name,
			Type: "value",
			Min:  "dataMin",
			Max:  "dataMax",
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Name: g.Title,
			Type: "value",
			Min:  "dataMin",
			Max:  "dataMax",
		}),
		charts.WithDataZoomOpts(
			opts.DataZoom{Type: "inside"},
		),
	)

	for _, tr := range g.Traces {
		scatter.AddSeries(fmt.Sprintf("%s vs %s", tr.Name, spec.X.Name), ScatterPoints(spec.X.Values, tr.Values))
	}

	return scatter
}

// XLabels returns the category labels of an axis: raw text for time
// columns, formatted numbers otherwise
func XLabels(x models.Axis) []string {
	if x.IsTime && len(x.Labels) == len(x.Values) {
		return x.Labels
	}
	out := make([]string, len(x.Values))
	for i, v := range x.Values {
		if !math.IsNaN(v) {
			out[i] = strconv.FormatFloat(v, 'f', -1, 64)
		}
	}
	return out
}

// lineData maps NaN to "-", which echarts draws as a gap
func lineData(values []float64) []opts.LineData {
	data := make([]opts.LineData, len(values))
	for i, v := range values {
		if math.IsNaN(v) {
			data[i] = opts.LineData{Value: "-"}
			continue
		}
		data[i] = opts.LineData{Value: v}
	}
	return data
}

// ScatterPoints pairs x and y by row, dropping rows where either is missing
func ScatterPoints(xs, ys []float64) []opts.ScatterData {
	var data []opts.ScatterData
	for i := 0; i < len(xs) && i < len(ys); i++ {
		if math.IsNaN(xs[i]) || math.IsNaN(ys[i]) {
			continue
		}
		data = append(data, opts.ScatterData{
			Value:      []float64{xs[i], ys[i]},
			SymbolSize: 5,
		})
	}
	return data
}
