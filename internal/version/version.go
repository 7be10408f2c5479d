// Package version holds build metadata injected via ldflags, e.g.
//
//	-X github.com/kailas-cloud/booruq/internal/version.Version=v0.3.0
package version

import "fmt"

//nolint:revive // Set via ldflags at build time.
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// String is the one-line banner printed by `booruq version`.
func String() string {
	return fmt.Sprintf("booruq version %s (commit %s, built %s)", Version, Commit, Date)
}
