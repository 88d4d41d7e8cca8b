package calibration

import (
	"errors"
	"fmt"
	"time"
)

// OutputSuffix is appended to the YYYYMMDD data date to name the figure.
const OutputSuffix = "_long_term_cali_results.png"

var (
	// ErrLengthMismatch is returned when paired arrays differ in length.
	ErrLengthMismatch = errors.New("length mismatch")
	// ErrMissingChannel is returned when a lidar channel has no history.
	ErrMissingChannel = errors.New("missing channel")
)

// Limits is a fixed axis range. The zero value means "not given".
type Limits struct {
	Min float64
	Max float64
	Set bool
}

// NewLimits returns limits spanning [lo, hi].
func NewLimits(lo, hi float64) Limits {
	return Limits{Min: lo, Max: hi, Set: true}
}

// Usable reports whether the limits describe a non-empty range.
func (l Limits) Usable() bool {
	return l.Set && l.Max > l.Min
}

// Metadata is the scalar part of a bundle.
type Metadata struct {
	Instrument     string
	Location       string
	StartTime      time.Time
	DataTime       time.Time
	ProgramVersion string
	FontName       string
	DPI            float64
}

// Bundle is a fully loaded calibration history.
type Bundle struct {
	Metadata

	// CalibrationTimes are shared by every lidar channel.
	CalibrationTimes []time.Time
	History          map[Channel][]float64
	Status           map[Channel][]float64

	Logbook []LogbookEvent
	Else    []AuxEvent
	// ElseLegend is the legend label of auxiliary markers, if the bundle names one.
	ElseLegend string

	DepolTimes []time.Time
	DepolConst []float64

	YLim355     Limits
	YLim532     Limits
	YLim1064    Limits
	DepolLim532 Limits
}

// Validate checks that every per-sample array lines up with its time axis.
func (b *Bundle) Validate() error {
	n := len(b.CalibrationTimes)

	for _, ch := range LidarChannels() {
		hist, ok := b.History[ch]
		if !ok {
			return fmt.Errorf("%w: history %s", ErrMissingChannel, ch)
		}

		status, ok := b.Status[ch]
		if !ok {
			return fmt.Errorf("%w: status %s", ErrMissingChannel, ch)
		}

		if len(hist) != n || len(status) != n {
			return fmt.Errorf("%w: channel %s has %d values and %d status codes for %d times",
				ErrLengthMismatch, ch, len(hist), len(status), n)
		}
	}

	if len(b.DepolTimes) != len(b.DepolConst) {
		return fmt.Errorf("%w: %d depolarization times for %d constants",
			ErrLengthMismatch, len(b.DepolTimes), len(b.DepolConst))
	}

	return nil
}

// Valid returns the accepted samples of ch.
func (b *Bundle) Valid(ch Channel) []Point {
	return Select(b.CalibrationTimes, b.History[ch], ValidMask(b.Status[ch]))
}

// RatioOf returns num/den over the samples accepted in both channels.
func (b *Bundle) RatioOf(num, den Channel) []Point {
	mask := JointMask(ValidMask(b.Status[num]), ValidMask(b.Status[den]))

	return Ratio(b.CalibrationTimes, b.History[num], b.History[den], mask)
}

// Depolarization returns the depolarization constants; no status filter applies.
func (b *Bundle) Depolarization() []Point {
	points := make([]Point, 0, len(b.DepolTimes))
	for i, t := range b.DepolTimes {
		if i < len(b.DepolConst) {
			points = append(points, Point{Time: t, Value: b.DepolConst[i]})
		}
	}

	return points
}

// TimeWindow returns [start - pad days, dataTime + pad days].
func (b *Bundle) TimeWindow(padDays int) (time.Time, time.Time) {
	return b.StartTime.AddDate(0, 0, -padDays), b.DataTime.AddDate(0, 0, padDays)
}

// OutputName returns the figure file name for the bundle.
func (b *Bundle) OutputName() string {
	return b.DataTime.Format("20060102") + OutputSuffix
}

// ElseLabel returns the legend label of auxiliary markers.
func (b *Bundle) ElseLabel() string {
	if b.ElseLegend != "" {
		return b.ElseLegend
	}

	for _, e := range b.Else {
		if e.Label != "" {
			return e.Label
		}
	}

	return EventElse.Label()
}
