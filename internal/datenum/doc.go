// Package datenum converts the day-count timestamps written by the upstream
// processing chain into time.Time values and back.
//
// A datenum counts days from a proleptic year-zero epoch; the fractional part
// is the time of day. Day 730486 is 2000-01-01.
package datenum
