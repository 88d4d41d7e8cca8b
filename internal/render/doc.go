// Package render turns a calibration Bundle into the six-panel long-term
// calibration figure.
//
// Rendering happens in two steps. BuildPanels produces a plain panel model
// (selected points, event markers, axis ranges) that carries all selection
// logic and is easy to test. Renderer then rasterizes every panel with
// go-chart, stacks them on a shared time axis and draws the legend and footer.
package render
