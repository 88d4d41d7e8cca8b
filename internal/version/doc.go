// Package version holds the build metadata of longterm-cali.
//
// Version, Commit and BuildTime are set with -ldflags "-X" at release time.
package version
