// Package version exposes build metadata set at link time:
//
//	go build -ldflags "-X git.home.luguber.info/inful/blogbuilder/internal/version.Version=v1.0.0"
package version

import "fmt"

var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

// String renders the version line printed by --version.
func String() string {
	if GitCommit == "unknown" {
		return fmt.Sprintf("blogbuilder %s", Version)
	}
	return fmt.Sprintf("blogbuilder %s (%s, built %s)", Version, GitCommit, BuildTime)
}
