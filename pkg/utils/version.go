// Package utils holds build metadata and small string helpers shared by the
// commands.
package utils

import "runtime/debug"

// Set at link time with -ldflags "-X github.com/papercomputeco/gwstream/pkg/utils.Version=...".
var (
	Version   = "dev"
	Sha       = "HEAD"
	Buildtime = "dev"
)

// Revision returns Sha, or the vcs.revision stamped by `go build` when Sha
// was not set at link time.
func Revision() string {
	if Sha != "HEAD" {
		return Sha
	}
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return Sha
	}
	for _, s := range info.Settings {
		if s.Key == "vcs.revision" && s.Value != "" {
			return s.Value
		}
	}
	return Sha
}
