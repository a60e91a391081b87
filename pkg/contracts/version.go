// Package contracts holds the types shared between the FlowPulse server, its
// clients and the flowreport CLI.
package contracts

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

const (
	// Version is the current FlowPulse release
	Version = "0.3.0"

	// DataFormatVersion tags the stored flow and price record layout
	DataFormatVersion = "v1"

	// APIVersion tags the HTTP and websocket payloads
	APIVersion = "v1"
)

// Set with -ldflags "-X flowpulse/pkg/contracts.GitCommit=..." by build.go
var (
	BuildTime = "unknown"
	GitCommit = "unknown"
	GitBranch = "unknown"
)

// BuildInfo describes the running binary
type BuildInfo struct {
	Version      string `json:"version"`
	BuildTime    string `json:"build_time"`
	GitCommit    string `json:"git_commit"`
	GitBranch    string `json:"git_branch"`
	GoVersion    string `json:"go_version"`
	OS           string `json:"os"`
	Architecture string `json:"architecture"`
	DataFormat   string `json:"data_format"`
	APIVersion   string `json:"api_version"`
}

// GetBuildInfo returns the version data of the running binary. Binaries built
// without ldflags fall back to the VCS stamps the Go toolchain embeds.
func GetBuildInfo() BuildInfo {
	info := BuildInfo{
		Version:      Version,
		BuildTime:    BuildTime,
		GitCommit:    GitCommit,
		GitBranch:    GitBranch,
		GoVersion:    runtime.Version(),
		OS:           runtime.GOOS,
		Architecture: runtime.GOARCH,
		DataFormat:   DataFormatVersion,
		APIVersion:   APIVersion,
	}

	if bi, ok := debug.ReadBuildInfo(); ok {
		for _, s := range bi.Settings {
			switch {
			case s.Key == "vcs.revision" && info.GitCommit == "unknown":
				info.GitCommit = shortRevision(s.Value)
			case s.Key == "vcs.time" && info.BuildTime == "unknown":
				info.BuildTime = s.Value
			}
		}
	}
	return info
}

// String renders the build info as a single banner line
func (b BuildInfo) String() string {
	return fmt.Sprintf("FlowPulse v%s (api %s, data %s, commit %s, built %s, %s %s/%s)",
		b.Version, b.APIVersion, b.DataFormat, b.GitCommit, b.BuildTime,
		b.GoVersion, b.OS, b.Architecture)
}

func shortRevision(rev string) string {
	if len(rev) > 7 {
		return rev[:7]
	}
	return rev
}
