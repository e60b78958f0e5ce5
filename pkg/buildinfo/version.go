// Package buildinfo holds version information stamped in at link time:
//
//	go build -ldflags "-X github.com/awscfgdiagram/orthoroute/pkg/buildinfo.Version=v0.3.0 \
//	    -X github.com/awscfgdiagram/orthoroute/pkg/buildinfo.Commit=$(git rev-parse HEAD) \
//	    -X github.com/awscfgdiagram/orthoroute/pkg/buildinfo.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
package buildinfo

import (
	"fmt"
	"runtime/debug"
)

var (
	// Version is the semantic version, "dev" for local builds.
	Version = "dev"

	// Commit is the git commit SHA.
	Commit = "none"

	// Date is the build timestamp.
	Date = "unknown"
)

// Info is the build information reported by `orthoroute version` and
// GET /api/health.
type Info struct {
	Version string `json:"version" msgpack:"version"`
	Commit  string `json:"commit" msgpack:"commit"`
	Date    string `json:"date" msgpack:"date"`
}

// Get returns the build information. For `go install` builds without
// ldflags the module version and VCS revision are read from the binary.
func Get() Info {
	info := Info{Version: Version, Commit: Commit, Date: Date}
	if bi, ok := debug.ReadBuildInfo(); ok {
		if info.Version == "dev" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
			info.Version = bi.Main.Version
		}
		for _, s := range bi.Settings {
			switch {
			case s.Key == "vcs.revision" && info.Commit == "none":
				info.Commit = s.Value
			case s.Key == "vcs.time" && info.Date == "unknown":
				info.Date = s.Value
			}
		}
	}
	return info
}

// String returns the formatted build information.
func String() string {
	i := Get()
	return fmt.Sprintf("version: %s\ncommit: %s\nbuilt: %s", i.Version, i.Commit, i.Date)
}

// Template returns the version template string for cobra.
func Template() string {
	i := Get()
	return fmt.Sprintf("{{.Name}} version %s\ncommit: %s\nbuilt: %s\n", i.Version, i.Commit, i.Date)
}
