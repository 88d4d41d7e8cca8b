// Package sample writes a synthetic, deterministic calibration bundle.
//
// The bundle has the same fields as the ones produced by the processing
// chain, which makes it useful for trying the renderer without real data and
// as the fixture behind the loader and service tests.
package sample
