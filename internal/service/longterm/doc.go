// Package longterm implements the long-term calibration chart operation:
// load a bundle, render the six panels and store the PNG next to the other
// campaign products.
package longterm
