package render

import (
	"math"
	"time"

	"github.com/pollynet/longterm-cali/internal/domain/calibration"
)

// PanelSpec parameterizes one panel of the figure.
type PanelSpec struct {
	// Name identifies the panel in logs.
	Name string
	// YLabel is the axis label.
	YLabel string
	// NDChannels are the channels whose ND-filter changes mark this panel.
	NDChannels []calibration.Channel
	// Points selects the plotted samples.
	Points func(b *calibration.Bundle) []calibration.Point
	// Limits returns the fixed y range; an unusable range falls back to the data.
	Limits func(b *calibration.Bundle) calibration.Limits
}

// Panel is the model of one rendered panel.
type Panel struct {
	Name    string
	YLabel  string
	Points  []calibration.Point
	Markers []Marker
	From    time.Time
	To      time.Time
	YMin    float64
	YMax    float64
}

// ratioLimits is the fixed display range of the transmission-ratio panels.
//
//nolint:gochecknoglobals // Immutable.
var ratioLimits = calibration.NewLimits(0, 1)

// Panels returns the six panel specs, top to bottom.
func Panels() []PanelSpec {
	single := func(ch calibration.Channel) func(*calibration.Bundle) []calibration.Point {
		return func(b *calibration.Bundle) []calibration.Point { return b.Valid(ch) }
	}

	ratio := func(num, den calibration.Channel) func(*calibration.Bundle) []calibration.Point {
		return func(b *calibration.Bundle) []calibration.Point { return b.RatioOf(num, den) }
	}

	fixed := func(l calibration.Limits) func(*calibration.Bundle) calibration.Limits {
		return func(*calibration.Bundle) calibration.Limits { return l }
	}

	return []PanelSpec{
		{
			Name:       "lc355",
			YLabel:     "LC @ 355nm",
			NDChannels: []calibration.Channel{calibration.Channel355},
			Points:     single(calibration.Channel355),
			Limits:     func(b *calibration.Bundle) calibration.Limits { return b.YLim355 },
		},
		{
			Name:       "lc532",
			YLabel:     "LC @ 532nm",
			NDChannels: []calibration.Channel{calibration.Channel532},
			Points:     single(calibration.Channel532),
			Limits:     func(b *calibration.Bundle) calibration.Limits { return b.YLim532 },
		},
		{
			Name:       "lc1064",
			YLabel:     "LC @ 1064nm",
			NDChannels: []calibration.Channel{calibration.Channel1064},
			Points:     single(calibration.Channel1064),
			Limits:     func(b *calibration.Bundle) calibration.Limits { return b.YLim1064 },
		},
		{
			Name:       "ratio355_387",
			YLabel:     "Ratio 355/387",
			NDChannels: []calibration.Channel{calibration.Channel355, calibration.Channel387},
			Points:     ratio(calibration.Channel355, calibration.Channel387),
			Limits:     fixed(ratioLimits),
		},
		{
			Name:       "ratio532_607",
			YLabel:     "Ratio 532/607",
			NDChannels: []calibration.Channel{calibration.Channel532, calibration.Channel607},
			Points:     ratio(calibration.Channel532, calibration.Channel607),
			Limits:     fixed(ratioLimits),
		},
		{
			Name:       "depol532",
			YLabel:     "V* 532",
			NDChannels: []calibration.Channel{calibration.Channel532, calibration.Channel532Cross},
			Points:     (*calibration.Bundle).Depolarization,
			Limits:     func(b *calibration.Bundle) calibration.Limits { return b.DepolLim532 },
		},
	}
}

// BuildPanels evaluates every panel spec against b.
// padDays widens the shared time axis around [start, dataTime].
func BuildPanels(b *calibration.Bundle, padDays int) []Panel {
	from, to := b.TimeWindow(padDays)

	specs := Panels()
	panels := make([]Panel, len(specs))

	for i, spec := range specs {
		panels[i] = BuildPanel(b, spec, from, to)
	}

	return panels
}

// BuildPanel evaluates one spec over the time window [from, to].
func BuildPanel(b *calibration.Bundle, spec PanelSpec, from, to time.Time) Panel {
	p := Panel{
		Name:    spec.Name,
		YLabel:  spec.YLabel,
		Points:  spec.Points(b),
		Markers: Markers(b.Logbook, b.Else, spec.NDChannels...),
		From:    from,
		To:      to,
	}

	if l := spec.Limits(b); l.Usable() {
		p.YMin, p.YMax = l.Min, l.Max
	} else {
		p.YMin, p.YMax = dataBounds(p.Points)
	}

	return p
}

// Visible returns the points that land inside the panel's ranges.
// Non-finite values, such as ratios over a zero denominator, are dropped.
func (p Panel) Visible() []calibration.Point {
	var out []calibration.Point

	for _, pt := range p.Points {
		if math.IsNaN(pt.Value) || math.IsInf(pt.Value, 0) {
			continue
		}

		if pt.Value < p.YMin || pt.Value > p.YMax || pt.Time.Before(p.From) || pt.Time.After(p.To) {
			continue
		}

		out = append(out, pt)
	}

	return out
}

// VisibleMarkers returns the markers inside the time window.
func (p Panel) VisibleMarkers() []Marker {
	var out []Marker

	for _, m := range p.Markers {
		if !m.Time.Before(p.From) && !m.Time.After(p.To) {
			out = append(out, m)
		}
	}

	return out
}

// dataBounds returns padded bounds of the finite values, or [0, 1] without any.
func dataBounds(points []calibration.Point) (float64, float64) {
	lo, hi := math.Inf(1), math.Inf(-1)

	for _, pt := range points {
		if math.IsNaN(pt.Value) || math.IsInf(pt.Value, 0) {
			continue
		}

		lo = math.Min(lo, pt.Value)
		hi = math.Max(hi, pt.Value)
	}

	if math.IsInf(lo, 1) {
		return 0, 1
	}

	return niceAxisBounds(lo, hi)
}
