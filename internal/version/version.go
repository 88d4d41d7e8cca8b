package version

import (
	"fmt"
	"runtime"
)

//nolint:gochecknoglobals // Overridden through ldflags.
var (
	// Version is the release of the tool.
	Version = "0.1.0-dev"
	// Commit is the short git SHA of the build.
	Commit = "none"
	// BuildTime is the UTC build timestamp.
	BuildTime = "unknown"
)

// Short returns the release only.
func Short() string {
	return Version
}

// Full returns the release with commit, build time and Go runtime.
func Full() string {
	return fmt.Sprintf("longterm-cali %s (commit %s, built %s, %s)", Version, Commit, BuildTime, runtime.Version())
}
