package calibration

import "time"

// EventKind is the category of a vertical event marker.
type EventKind int

// Event kinds, in legend and drawing order.
const (
	EventOverlap EventKind = iota
	EventPulsePower
	EventWindowWipe
	EventRestart
	EventFlashlamps
	EventNDChange
	EventElse
)

// PointColor is the colour of calibration points.
const PointColor = "#0000ff"

// LogbookKinds are the kinds recorded as logbook flags.
func LogbookKinds() []EventKind {
	return []EventKind{
		EventOverlap,
		EventPulsePower,
		EventWindowWipe,
		EventRestart,
		EventFlashlamps,
		EventNDChange,
	}
}

// Color returns the fixed marker colour of k as #rrggbb.
func (k EventKind) Color() string {
	switch k {
	case EventOverlap:
		return "#f48f42"
	case EventPulsePower:
		return "#990099"
	case EventWindowWipe:
		return "#ff66ff"
	case EventRestart:
		return "#ffff00"
	case EventFlashlamps:
		return "#993333"
	case EventNDChange:
		return "#333300"
	case EventElse:
		return "#00ff00"
	default:
		return "#000000"
	}
}

// Label returns the legend label of k.
func (k EventKind) Label() string {
	switch k {
	case EventOverlap:
		return "overlap"
	case EventPulsePower:
		return "pulsepower"
	case EventWindowWipe:
		return "windowwipe"
	case EventRestart:
		return "restart"
	case EventFlashlamps:
		return "flashlamps"
	case EventNDChange:
		return "NDChange"
	case EventElse:
		return "else"
	default:
		return "unknown"
	}
}

// String implements fmt.Stringer.
func (k EventKind) String() string {
	return k.Label()
}

// LogbookEvent is one operator logbook entry.
type LogbookEvent struct {
	Time       time.Time
	Overlap    bool
	WindowWipe bool
	Flashlamps bool
	PulsePower bool
	Restart    bool
	// NDChange holds the neutral-density filter change flag per channel.
	NDChange map[Channel]bool
}

// Fires reports whether the entry carries kind.
// For EventNDChange it is true when any of channels had its filter changed;
// the other kinds ignore channels.
func (e LogbookEvent) Fires(kind EventKind, channels ...Channel) bool {
	switch kind {
	case EventOverlap:
		return e.Overlap
	case EventWindowWipe:
		return e.WindowWipe
	case EventFlashlamps:
		return e.Flashlamps
	case EventPulsePower:
		return e.PulsePower
	case EventRestart:
		return e.Restart
	case EventNDChange:
		for _, ch := range channels {
			if e.NDChange[ch] {
				return true
			}
		}

		return false
	default:
		return false
	}
}

// AuxEvent is a free-form marker drawn on every panel.
type AuxEvent struct {
	Time  time.Time
	Label string
}
