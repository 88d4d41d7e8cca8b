package datenum

import (
	"errors"
	"fmt"
	"math"
	"time"
)

const (
	// yearOffsetDays is the gap between the datenum epoch and ordinal day one.
	yearOffsetDays = 366
	// minDatenum is the smallest value that still lands on or after 0001-01-01.
	minDatenum = 1 + yearOffsetDays
	// secondsPerDay is used for the inverse conversion.
	secondsPerDay = 24 * 60 * 60
)

// ErrOutOfRange is returned for values that do not map to a calendar date.
var ErrOutOfRange = errors.New("datenum out of range")

// ordinalOne is 0001-01-01, ordinal day one of the proleptic Gregorian calendar.
//
//nolint:gochecknoglobals // Immutable reference instant.
var ordinalOne = time.Date(1, time.January, 1, 0, 0, 0, 0, time.UTC)

// ToTime converts a datenum into a UTC time.
//
// The fractional day is split into whole hours and whole minutes, the
// remaining seconds are rounded half-to-even. Sixty rounded seconds roll into
// the next minute.
func ToTime(d float64) (time.Time, error) {
	if math.IsNaN(d) || math.IsInf(d, 0) || d < minDatenum {
		return time.Time{}, fmt.Errorf("%w: %v", ErrOutOfRange, d)
	}

	whole := math.Trunc(d)

	frac := math.Mod(d, 1)
	hours := frac * 24
	minutes := math.Mod(hours, 1) * 60
	seconds := math.Mod(minutes, 1) * 60

	t := ordinalOne.AddDate(0, 0, int(whole)-1-yearOffsetDays)
	t = t.Add(time.Duration(math.Trunc(hours)) * time.Hour)
	t = t.Add(time.Duration(math.Trunc(minutes)) * time.Minute)
	t = t.Add(time.Duration(math.RoundToEven(seconds)) * time.Second)

	return t, nil
}

// MustTime is ToTime for values known to be valid. It panics otherwise.
func MustTime(d float64) time.Time {
	t, err := ToTime(d)
	if err != nil {
		panic(err)
	}

	return t
}

// ToTimes converts every element of ds.
func ToTimes(ds []float64) ([]time.Time, error) {
	out := make([]time.Time, len(ds))

	for i, d := range ds {
		t, err := ToTime(d)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}

		out[i] = t
	}

	return out, nil
}

// FromTime returns the canonical datenum of t, in UTC.
// Sub-second precision is kept in the fraction.
func FromTime(t time.Time) float64 {
	t = t.UTC()

	midnight := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	days := (midnight.Unix()-ordinalOne.Unix())/secondsPerDay + 1 + yearOffsetDays

	return float64(days) + t.Sub(midnight).Seconds()/secondsPerDay
}
