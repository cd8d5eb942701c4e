// Package version holds build metadata stamped in with -ldflags, e.g.
//
//	go build -ldflags "-X github.com/banshee-data/roadframe/internal/version.Version=v0.3.0"
package version

import "fmt"

var (
	// Version is the release tag
	Version = "dev"
	// GitSHA is the git commit SHA
	GitSHA = "unknown"
	// BuildTime is the build timestamp
	BuildTime = "unknown"
)

// String formats the build metadata for a -version flag.
func String(command string) string {
	return fmt.Sprintf("%s %s (commit %s, built %s)", command, Version, GitSHA, BuildTime)
}
