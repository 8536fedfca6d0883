// Package charts draws aggregation results as PNG images.
package charts

import (
	"bytes"
	"errors"
	"fmt"
	"image/color"
	"io"
	"math"
	"strconv"

	"golang.org/x/image/colornames"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"salesbi/internal/intents"
)

const (
	Width  = 8 * vg.Inch
	Height = 5 * vg.Inch
)

var fallbackColor = colornames.Steelblue

// Render draws res according to spec and writes it to w as PNG.
func Render(w io.Writer, spec intents.ChartSpec, res *intents.Result) error {
	if res == nil {
		return errors.New("nothing to render: nil result")
	}

	p, err := build(spec, res)
	if err != nil {
		return err
	}

	wt, err := p.WriterTo(Width, Height, "png")
	if err != nil {
		return fmt.Errorf("failed to create png writer: %w", err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write png: %w", err)
	}
	return nil
}

// RenderPNG is Render into a byte slice.
func RenderPNG(spec intents.ChartSpec, res *intents.Result) ([]byte, error) {
	var buf bytes.Buffer
	if err := Render(&buf, spec, res); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func build(spec intents.ChartSpec, res *intents.Result) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = spec.Title
	p.X.Label.Text = spec.XLabel
	p.Y.Label.Text = spec.YLabel

	if spec.XTickRotation != 0 {
		p.X.Tick.Label.Rotation = spec.XTickRotation * math.Pi / 180
		p.X.Tick.Label.XAlign = text.XRight
		p.X.Tick.Label.YAlign = text.YCenter
	}

	if res.Len() == 0 {
		p.X.Min, p.X.Max = 0, 1
		p.Y.Min, p.Y.Max = 0, 1
		return p, nil
	}

	p.NominalX(res.Keys()...)

	heights := res.Values()
	if spec.LogScale {
		heights = logHeights(heights)
		p.Y.Tick.Marker = powerOfTenTicks{}
		p.Y.Min = 0
	}

	col := colorNamed(spec.Color)
	var err error
	switch spec.Kind {
	case intents.ChartLine:
		err = addLine(p, heights, col, spec.Markers)
	default:
		err = addBars(p, heights, col)
	}
	if err != nil {
		return nil, err
	}

	if spec.Annotate {
		if err := addAnnotations(p, heights, res.Values()); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func addBars(p *plot.Plot, heights []float64, col color.Color) error {
	bars, err := plotter.NewBarChart(plotter.Values(heights), barWidth(len(heights)))
	if err != nil {
		return fmt.Errorf("failed to build bar chart: %w", err)
	}
	bars.Color = col
	bars.LineStyle.Width = 0
	p.Add(bars)
	p.Y.Min = math.Min(p.Y.Min, 0)
	return nil
}

func addLine(p *plot.Plot, heights []float64, col color.Color, markers bool) error {
	pts := make(plotter.XYs, len(heights))
	for i, h := range heights {
		pts[i].X = float64(i)
		pts[i].Y = h
	}

	line, points, err := plotter.NewLinePoints(pts)
	if err != nil {
		return fmt.Errorf("failed to build line chart: %w", err)
	}
	line.Color = col
	line.Width = vg.Points(2)
	p.Add(line)

	if markers {
		points.Color = col
		points.Shape = draw.CircleGlyph{}
		points.Radius = vg.Points(3)
		p.Add(points)
	}
	return nil
}

// addAnnotations prints the raw value of each bar just above it.
func addAnnotations(p *plot.Plot, heights, values []float64) error {
	labels := plotter.XYLabels{
		XYs:    make(plotter.XYs, len(heights)),
		Labels: make([]string, len(heights)),
	}
	for i, h := range heights {
		labels.XYs[i].X = float64(i)
		labels.XYs[i].Y = h
		labels.Labels[i] = strconv.FormatFloat(values[i], 'f', -1, 64)
	}

	l, err := plotter.NewLabels(labels)
	if err != nil {
		return fmt.Errorf("failed to build annotations: %w", err)
	}
	for i := range l.TextStyle {
		l.TextStyle[i].XAlign = text.XCenter
		l.TextStyle[i].YAlign = text.YBottom
	}
	l.Offset = vg.Point{Y: vg.Points(2)}
	p.Add(l)

	// Leave headroom so the tallest label is not clipped.
	_, _, _, ymax := plotter.XYRange(labels)
	p.Y.Max = math.Max(p.Y.Max, ymax*1.15+0.1)
	return nil
}

func barWidth(n int) vg.Length {
	w := vg.Points(400 / float64(n))
	if w > vg.Points(40) {
		return vg.Points(40)
	}
	return w
}

// logHeights maps values onto log10. Values below 1 sit on the axis floor.
func logHeights(values []float64) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		if v > 1 {
			out[i] = math.Log10(v)
		}
	}
	return out
}

// powerOfTenTicks labels a log10 axis with the powers of ten it spans.
type powerOfTenTicks struct{}

func (powerOfTenTicks) Ticks(min, max float64) []plot.Tick {
	lo := math.Floor(min)
	if lo < 0 {
		lo = 0
	}
	hi := math.Ceil(max)

	var ticks []plot.Tick
	for e := lo; e <= hi; e++ {
		ticks = append(ticks, plot.Tick{Value: e, Label: powerOfTenLabel(int(e))})
	}
	return ticks
}

func powerOfTenLabel(e int) string {
	if e <= 6 {
		return strconv.FormatFloat(math.Pow(10, float64(e)), 'f', -1, 64)
	}
	return "1e" + strconv.Itoa(e)
}

func colorNamed(name string) color.Color {
	if c, ok := colornames.Map[name]; ok {
		return c
	}
	return fallbackColor
}
