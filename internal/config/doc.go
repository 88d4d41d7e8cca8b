// Package config defines the rendering settings of the long-term calibration
// chart and provides helpers to load, validate and save them in YAML format.
//
// Every field is optional; Validate fills in the defaults that reproduce the
// reference figure layout.
package config
