package export

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/tosih/enginelog/pkg/models"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// FigureFormats lists the file extensions WriteFigure understands
var FigureFormats = []string{"png", "svg", "pdf", "jpg", "jpeg", "eps", "tif", "tiff"}

const (
	figureWidth     = 11 * vg.Inch
	subplotHeight   = 2.5 * vg.Inch
	minFigureHeight = 4 * vg.Inch
	timeTickCount   = 6
)

// FigureSize returns the default page size for a spec: fixed width, one
// band of height per subplot
func FigureSize(spec *models.PlotSpec) (vg.Length, vg.Length) {
	h := subplotHeight * vg.Length(len(spec.Groups))
	if h < minFigureHeight {
		h = minFigureHeight
	}
	return figureWidth, h
}

// SaveFigure writes a static figure, picking the format from the extension
func SaveFigure(path string, spec *models.PlotSpec) error {
	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w, h := FigureSize(spec)
	if err := WriteFigure(f, spec, format, w, h); err != nil {
		return err
	}
	return f.Close()
}

// WriteFigure renders a plot as stacked subplots, one per unit group, all
// drawn against the same x range. XY specs become a single scatter plot.
func WriteFigure(w io.Writer, spec *models.PlotSpec, format string, width, height vg.Length) error {
	if len(spec.Groups) == 0 {
		return errors.New("plot has no subplots")
	}

	plots, err := buildPlots(spec)
	if err != nil {
		return err
	}

	c, err := draw.NewFormattedCanvas(width, height, format)
	if err != nil {
		return fmt.Errorf("unsupported figure format %q: %w", format, err)
	}
	dc := draw.New(c)

	rows := make([][]*plot.Plot, len(plots))
	for i, p := range plots {
		rows[i] = []*plot.Plot{p}
	}
	tiles := draw.Tiles{
		Rows:      len(plots),
		Cols:      1,
		PadTop:    vg.Points(6),
		PadBottom: vg.Points(6),
		PadLeft:   vg.Points(6),
		PadRight:  vg.Points(12),
		PadY:      vg.Points(8),
	}

	canvases := plot.Align(rows, tiles, dc)
	for i, p := range plots {
		p.Draw(canvases[i][0])
	}

	_, err = c.WriteTo(w)
	return err
}

func buildPlots(spec *models.PlotSpec) ([]*plot.Plot, error) {
	if spec.Kind == models.XY {
		p, err := scatterPlot(spec)
		if err != nil {
			return nil, err
		}
		return []*plot.Plot{p}, nil
	}

	xmin, xmax, hasX := valueRange(spec.X.Values)
	plots := make([]*plot.Plot, len(spec.Groups))

	for i, g := range spec.Groups {
		p := plot.New()
		p.Title.Text = g.Title
		if i == 0 {
			p.Title.Text = spec.Title + " - " + g.Title
		}
		p.Y.Label.Text = g.Unit
		if i == len(spec.Groups)-1 {
			p.X.Label.Text = spec.X.Name
		}
		p.Add(plotter.NewGrid())
		p.Legend.Top = true

		for j, tr := range g.Traces {
			color := plotutil.Color(j)
			for k, seg := range segments(spec.X.Values, tr.Values) {
				line, err := plotter.NewLine(seg)
				if err != nil {
					return nil, fmt.Errorf("trace %s: %w", tr.Column, err)
				}
				line.Color = color
				p.Add(line)
				if k == 0 {
					p.Legend.Add(tr.Name, line)
				}
			}
		}

		// shared x: every subplot spans the same range
		if hasX {
			p.X.Min, p.X.Max = xmin, xmax
		}
		if spec.X.IsTime && len(spec.X.Labels) == len(spec.X.Values) {
			p.X.Tick.Marker = plot.ConstantTicks(TimeTicks(spec.X, timeTickCount))
		}
		plots[i] = p
	}

	return plots, nil
}

func scatterPlot(spec *models.PlotSpec) (*plot.Plot, error) {
	g := spec.Groups[0]

	p := plot.New()
	p.Title.Text = spec.Title
	p.X.Label.Text = spec.X.Name
	p.Y.Label.Text = g.Title
	p.Add(plotter.NewGrid())

	for j, tr := range g.Traces {
		var pts plotter.XYs
		for _, seg := range segments(spec.X.Values, tr.Values) {
			pts = append(pts, seg...)
		}
		if len(pts) == 0 {
			continue
		}
		sc, err := plotter.NewScatter(pts)
		if err != nil {
			return nil, fmt.Errorf("trace %s: %w", tr.Column, err)
		}
		sc.GlyphStyle.Color = plotutil.Color(j)
		sc.GlyphStyle.Radius = vg.Points(2)
		p.Add(sc)
	}

	return p, nil
}

// segments splits a trace at missing values so gaps are not bridged
func segments(xs, ys []float64) []plotter.XYs {
	var out []plotter.XYs
	var cur plotter.XYs

	for i := 0; i < len(xs) && i < len(ys); i++ {
		if math.IsNaN(xs[i]) || math.IsNaN(ys[i]) || math.IsInf(ys[i], 0) {
			if len(cur) > 0 {
				out = append(out, cur)
				cur = nil
			}
			continue
		}
		cur = append(cur, plotter.XY{X: xs[i], Y: ys[i]})
	}
	if len(cur) > 0 {
		out = append(out, cur)
	}

	return out
}

// TimeTicks labels evenly spaced rows of a time axis with their raw text
func TimeTicks(x models.Axis, n int) []plot.Tick {
	var idx []int
	for i, v := range x.Values {
		if !math.IsNaN(v) {
			idx = append(idx, i)
		}
	}
	if len(idx) == 0 || n < 1 {
		return nil
	}
	if n > len(idx) {
		n = len(idx)
	}

	ticks := make([]plot.Tick, 0, n)
	step := 1.0
	if n > 1 {
		step = float64(len(idx)-1) / float64(n-1)
	}
	for k := 0; k < n; k++ {
		i := idx[int(math.Round(float64(k)*step))]
		ticks = append(ticks, plot.Tick{Value: x.Values[i], Label: x.Labels[i]})
	}
	return ticks
}

func valueRange(values []float64) (float64, float64, bool) {
	min, max := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return min, max, min <= max
}
