// Package buildinfo carries version metadata stamped in at link time:
//
//	go build -ldflags "-X github.com/rudivdz85/nautical-fin/internal/buildinfo.Version=v0.3.0"
package buildinfo

import "fmt"

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// String formats the version line printed by fin --version.
func String() string {
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, Date)
}
