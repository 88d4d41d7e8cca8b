// Package calibration contains the domain types of the long-term calibration
// history: per-channel lidar constants with their status codes, operator
// logbook events, auxiliary markers and the bundle metadata.
//
// Everything here is read-only once loaded; selection helpers return new
// slices and never modify their inputs.
package calibration
