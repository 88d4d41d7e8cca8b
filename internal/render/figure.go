package render

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"

	"github.com/wcharczuk/go-chart/v2"

	"github.com/pollynet/longterm-cali/internal/config"
	"github.com/pollynet/longterm-cali/internal/domain/calibration"
)

const (
	// titleShare and footerShare are the fractions of the figure height kept
	// above the first panel and below the last one.
	titleShare  = 0.05
	footerShare = 0.06
	// textBand is the strip holding the footer text, in pixels.
	textBand = 18
	// minPanelHeight is the smallest panel go-chart can lay out.
	minPanelHeight = 40
	// edgePad is the panel padding on the sides without labels, in pixels.
	edgePad = 12
)

// ErrFigureTooSmall is returned when the figure cannot hold six panels.
var ErrFigureTooSmall = errors.New("figure too small")

// Options controls the figure geometry and marker styling.
type Options struct {
	// WidthInches and HeightInches give the figure size.
	WidthInches  float64
	HeightInches float64
	// FallbackDPI applies when the bundle carries no resolution.
	FallbackDPI float64
	// PointSize is the calibration point diameter in pixels.
	PointSize float64
	// MarkerWidth and MarkerDash style the event markers.
	MarkerWidth float64
	MarkerDash  []float64
	// TimePadDays widens the time axis around the campaign window.
	TimePadDays int
}

// OptionsFromConfig maps the settings file onto render options.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		WidthInches:  cfg.FigureWidth,
		HeightInches: cfg.FigureHeight,
		FallbackDPI:  cfg.FallbackDPI,
		PointSize:    cfg.PointSize,
		MarkerWidth:  cfg.MarkerWidth,
		MarkerDash:   cfg.MarkerDash,
		TimePadDays:  cfg.TimePadDays,
	}
}

// Renderer draws the long-term calibration figure.
type Renderer struct {
	opts Options
}

// NewRenderer creates a renderer.
func NewRenderer(opts Options) *Renderer {
	return &Renderer{opts: opts}
}

// layout is the vertical split of the figure in pixels.
type layout struct {
	width  int
	height int
	title  int
	footer int
	panels []int
}

func newLayout(width, height, count int) (layout, error) {
	l := layout{
		width:  width,
		height: height,
		title:  int(math.Round(float64(height) * titleShare)),
		footer: max(int(math.Round(float64(height)*footerShare)), textBand),
	}

	area := height - l.title - l.footer
	if count == 0 || area/count < minPanelHeight {
		return layout{}, fmt.Errorf("%w: %dx%d pixels", ErrFigureTooSmall, width, height)
	}

	each := area / count
	l.panels = make([]int, count)

	for i := range l.panels {
		l.panels[i] = each
	}

	l.panels[0] += l.title
	l.panels[count-1] += area - each*count + l.footer - textBand

	return l, nil
}

// DPI returns the resolution used for b.
func (r *Renderer) DPI(b *calibration.Bundle) float64 {
	if b.DPI > 0 {
		return b.DPI
	}

	if r.opts.FallbackDPI > 0 {
		return r.opts.FallbackDPI
	}

	return config.DefaultDPI
}

// Render draws the six panels of b onto one image.
func (r *Renderer) Render(b *calibration.Bundle) (*image.RGBA, error) {
	dpi := r.DPI(b)
	width := int(math.Round(r.opts.WidthInches * dpi))
	height := int(math.Round(r.opts.HeightInches * dpi))

	panels := BuildPanels(b, r.opts.TimePadDays)

	l, err := newLayout(width, height, len(panels))
	if err != nil {
		return nil, err
	}

	yTicks := make([][]chart.Tick, len(panels))
	widths := make([]int, len(panels))
	widest := 0

	for i, p := range panels {
		yTicks[i] = valueTicks(p.YMin, p.YMax, yTickTarget)

		if widths[i], err = labelWidth(yTicks[i], dpi); err != nil {
			return nil, err
		}

		widest = max(widest, widths[i])
	}

	fig := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(fig, fig.Bounds(), image.White, image.Point{}, draw.Src)

	left := int(math.Round(float64(width) * 0.04))
	top := 0

	for i, p := range panels {
		f := frame{
			width:  width,
			height: l.panels[i],
			bottom: i == len(panels)-1,
			padding: chart.Box{
				Top:    edgePad / 2,
				Left:   left,
				Right:  edgePad + widest - widths[i],
				Bottom: edgePad / 2,
			},
		}

		if i == 0 {
			f.title = fmt.Sprintf("Lidar constants for %s at %s", b.Instrument, b.Location)
			f.padding.Top = l.title
		}

		var img image.Image

		if img, err = rasterize(r.panelChart(p, f, dpi, yTicks[i])); err != nil {
			return nil, fmt.Errorf("panel %s: %w", p.Name, err)
		}

		draw.Draw(fig, image.Rect(0, top, width, top+l.panels[i]), img, img.Bounds().Min, draw.Src)
		top += l.panels[i]
	}

	drawLegend(fig, image.Pt(left+edgePad, l.title+edgePad), width-2*left, LegendEntries(b), r.opts.MarkerDash)
	drawFooter(fig, left, edgePad+widest, b.StartTime.Format("2006"), "Version: "+b.ProgramVersion)

	return fig, nil
}

// Encode serializes the figure as PNG.
func Encode(img image.Image) ([]byte, error) {
	var buf bytes.Buffer

	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}

	return buf.Bytes(), nil
}

// opaque converts a #rrggbb colour for direct drawing.
func opaque(hex string) color.RGBA {
	c := hexColor(hex)

	return color.RGBA{R: c.R, G: c.G, B: c.B, A: 0xff}
}
