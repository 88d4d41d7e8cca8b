package render

import (
	"time"

	"github.com/pollynet/longterm-cali/internal/domain/calibration"
)

// Marker is one vertical event line.
type Marker struct {
	Time  time.Time
	Kind  calibration.EventKind
	Label string
}

// Color returns the marker colour as #rrggbb.
func (m Marker) Color() string {
	return m.Kind.Color()
}

// Markers selects the event lines of a panel whose ND-filter changes are
// tracked on channels. Every active flag of an entry yields its own marker, so
// one timestamp can carry several; auxiliary events follow, one each.
func Markers(events []calibration.LogbookEvent, aux []calibration.AuxEvent, channels ...calibration.Channel) []Marker {
	var markers []Marker

	for _, e := range events {
		for _, kind := range calibration.LogbookKinds() {
			if e.Fires(kind, channels...) {
				markers = append(markers, Marker{Time: e.Time, Kind: kind, Label: kind.Label()})
			}
		}
	}

	for _, a := range aux {
		markers = append(markers, Marker{Time: a.Time, Kind: calibration.EventElse, Label: a.Label})
	}

	return markers
}

// LegendEntry is one proxy handle of the legend.
type LegendEntry struct {
	Label string
	Color string
	// Point entries are drawn as a dot; the others as a dashed line.
	Point bool
}

// LegendEntries lists the legend handles: the calibration points, every
// logbook kind, and the auxiliary marker under the bundle's label.
func LegendEntries(b *calibration.Bundle) []LegendEntry {
	entries := []LegendEntry{{Label: "lidar constant", Color: calibration.PointColor, Point: true}}

	for _, kind := range calibration.LogbookKinds() {
		entries = append(entries, LegendEntry{Label: kind.Label(), Color: kind.Color()})
	}

	return append(entries, LegendEntry{Label: b.ElseLabel(), Color: calibration.EventElse.Color()})
}
