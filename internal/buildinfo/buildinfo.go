// Package buildinfo holds the build metadata of the p4status binary.
// The linker injects values into cmd/p4status/main.go, which forwards them
// with Set.
package buildinfo

import (
	"fmt"
	"runtime/debug"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
	builtBy = "unknown"
)

// Info is a snapshot of the build metadata.
type Info struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
	BuiltBy string `json:"built_by"`
}

// String formats the metadata the way `p4status version` prints it.
func (i Info) String() string {
	return fmt.Sprintf("p4status %s (commit %s, built %s by %s)", i.Version, shortCommit(i.Commit), i.Date, i.BuiltBy)
}

// Set stores the build metadata received from linker-injected variables.
func Set(v, c, d, b string) {
	version = v
	commit = c
	date = d
	builtBy = b
}

// Get returns the current metadata.
func Get() Info {
	return Info{Version: version, Commit: commit, Date: date, BuiltBy: builtBy}
}

// Version returns the build version string.
func Version() string { return version }

// Enrich fills placeholder values from runtime/debug.ReadBuildInfo: the VCS
// revision replaces commit "none" and the Go version replaces builtBy
// "unknown".
func Enrich() {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}
	enrich(info)
}

func enrich(info *debug.BuildInfo) {
	if commit == "none" {
		for _, setting := range info.Settings {
			if setting.Key == "vcs.revision" && setting.Value != "" {
				commit = setting.Value
			}
		}
	}
	if version == "dev" && info.Main.Version != "" && info.Main.Version != "(devel)" {
		version = info.Main.Version
	}
	if builtBy == "unknown" && info.GoVersion != "" {
		builtBy = info.GoVersion
	}
}

func shortCommit(c string) string {
	if len(c) > 12 {
		return c[:12]
	}
	return c
}
