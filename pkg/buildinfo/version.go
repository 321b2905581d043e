// Package buildinfo reports the version of the running binary.
//
// Release builds set the variables with ldflags:
//
//	go build -ldflags "-X github.com/tsa-lab/tsaview/pkg/buildinfo.Version=v1.0.0 \
//	    -X github.com/tsa-lab/tsaview/pkg/buildinfo.Commit=$(git rev-parse HEAD) \
//	    -X github.com/tsa-lab/tsaview/pkg/buildinfo.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
//
// Without them, [Get] falls back to the module and VCS stamps the Go
// toolchain embeds, so `go install` builds still report a commit.
package buildinfo

import (
	"fmt"
	"runtime/debug"
)

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// Info is the build information served by /api/stats and `tsaview version`.
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	Date      string `json:"date"`
	GoVersion string `json:"go"`
}

// Get returns the build information, filling unset fields from the
// embedded build info.
func Get() Info {
	info := Info{Version: Version, Commit: Commit, Date: Date}
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return info
	}
	info.GoVersion = bi.GoVersion
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
	return info
}

// CacheScope prefixes cache keys so artifacts rendered by one build are
// never served by another. Development builds are scoped by commit.
func (i Info) CacheScope() string {
	if i.Version == "dev" && i.Commit != "none" {
		return "dev-" + short(i.Commit) + ":"
	}
	return i.Version + ":"
}

// Template returns the cobra version template.
func Template() string {
	i := Get()
	return fmt.Sprintf("{{.Name}} %s\ncommit: %s\nbuilt: %s\n", i.Version, i.Commit, i.Date)
}

func short(commit string) string {
	if len(commit) > 12 {
		return commit[:12]
	}
	return commit
}
