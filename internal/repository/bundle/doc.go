// Package bundle loads a calibration Bundle from the MAT file written by the
// upstream processing chain.
//
// Field names are exported so that fixture generators write exactly what the
// loader reads. Missing required fields and wrongly shaped arrays are reported
// as ErrMalformed; optional arrays may be absent or empty.
package bundle
