package version

import (
	"fmt"
	"runtime/debug"
)

const Version = "0.1.0"

// String returns the version of the module, with the VCS revision
// when the binary was built from a checkout.
func String() string {
	rev := ""
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, s := range info.Settings {
			if s.Key == "vcs.revision" && len(s.Value) >= 7 {
				rev = s.Value[:7]
			}
		}
	}
	if rev == "" {
		return fmt.Sprintf("vformat %s", Version)
	}
	return fmt.Sprintf("vformat %s (%s)", Version, rev)
}
