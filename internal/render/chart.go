package render

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/pollynet/longterm-cali/internal/domain/calibration"
)

const (
	// axisFontSize is the tick and axis-name font size in points.
	axisFontSize = 9
	// titleFontSize is the figure title font size in points.
	titleFontSize = 13
	// xAxisName labels the shared time axis of the bottom panel.
	xAxisName = "Date (mm-dd)"
)

// frame places one panel inside the figure.
type frame struct {
	width   int
	height  int
	padding chart.Box
	// bottom panels show their time tick labels and the axis name.
	bottom bool
	title  string
}

// panelChart builds the go-chart description of one panel.
func (r *Renderer) panelChart(p Panel, f frame, dpi float64, yTicks []chart.Tick) chart.Chart {
	xRange := &chart.ContinuousRange{Min: chart.TimeToFloat64(p.From), Max: chart.TimeToFloat64(p.To)}
	yRange := &chart.ContinuousRange{Min: p.YMin, Max: p.YMax}

	series := make([]chart.Series, 0, len(p.Markers)+1)

	for _, m := range p.VisibleMarkers() {
		series = append(series, chart.TimeSeries{
			Name:    m.Label,
			XValues: []time.Time{m.Time, m.Time},
			YValues: []float64{p.YMin, p.YMax},
			Style: chart.Style{
				StrokeColor:     hexColor(m.Color()),
				StrokeWidth:     r.opts.MarkerWidth,
				StrokeDashArray: r.opts.MarkerDash,
			},
		})
	}

	if visible := p.Visible(); len(visible) > 0 {
		xs := make([]time.Time, len(visible))
		ys := make([]float64, len(visible))

		for i, pt := range visible {
			xs[i], ys[i] = pt.Time, pt.Value
		}

		series = append(series, chart.TimeSeries{
			Name:    p.Name,
			XValues: xs,
			YValues: ys,
			Style: chart.Style{
				StrokeWidth: chart.Disabled,
				DotWidth:    r.opts.PointSize / 2,
				DotColor:    hexColor(calibration.PointColor),
			},
		})
	}

	// go-chart refuses a chart without series; an invisible one keeps the
	// axes of an empty panel.
	if len(series) == 0 {
		series = append(series, chart.TimeSeries{
			XValues: []time.Time{p.From, p.To},
			YValues: []float64{p.YMin, p.YMin},
			Style:   chart.Style{StrokeWidth: chart.Disabled},
		})
	}

	xAxis := chart.XAxis{
		Range: xRange,
		Ticks: timeTicks(p.From, p.To),
		Style: chart.Style{FontSize: axisFontSize},
	}

	if f.bottom {
		xAxis.Name = xAxisName
	} else {
		// Inner panels keep their labels for layout but do not show them.
		xAxis.Style.FontColor = drawing.ColorTransparent
	}

	return chart.Chart{
		Title:      f.title,
		TitleStyle: chart.Style{FontSize: titleFontSize},
		Width:      f.width,
		Height:     f.height,
		DPI:        dpi,
		Background: chart.Style{Padding: f.padding},
		XAxis:      xAxis,
		YAxis: chart.YAxis{
			Name:  p.YLabel,
			Range: yRange,
			Ticks: yTicks,
			Style: chart.Style{FontSize: axisFontSize},
		},
		Series: series,
	}
}

// rasterize renders a chart into an image.
func rasterize(ch chart.Chart) (image.Image, error) {
	var buf bytes.Buffer

	if err := ch.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("draw chart: %w", err)
	}

	img, err := png.Decode(&buf)
	if err != nil {
		return nil, fmt.Errorf("decode chart: %w", err)
	}

	return img, nil
}

// labelWidth measures the widest tick label the way go-chart measures the
// y axis.
func labelWidth(ticks []chart.Tick, dpi float64) (int, error) {
	r, err := chart.PNG(1, 1)
	if err != nil {
		return 0, fmt.Errorf("measure labels: %w", err)
	}

	font, err := chart.GetDefaultFont()
	if err != nil {
		return 0, fmt.Errorf("measure labels: %w", err)
	}

	r.SetDPI(dpi)
	r.SetFont(font)
	r.SetFontSize(axisFontSize)

	widest := 0

	for _, t := range ticks {
		widest = max(widest, r.MeasureText(t.Label).Width())
	}

	return widest, nil
}

// hexColor parses #rrggbb into a go-chart colour.
func hexColor(hex string) drawing.Color {
	if len(hex) > 0 && hex[0] == '#' {
		hex = hex[1:]
	}

	return drawing.ColorFromHex(hex)
}
