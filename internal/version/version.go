// Package version holds build metadata for the kwarg CLI. The variables can
// be overridden at build time via -ldflags "-X kwarg/internal/version.Version=...".
package version

import (
	"runtime/debug"
	"strings"

	"github.com/fatih/color"
)

var (
	versionMajorColor = color.New(color.FgYellow, color.Bold)
	versionMinorColor = color.New(color.FgGreen, color.Bold)
	versionPatchColor = color.New(color.FgBlue, color.Bold)
)

var (
	// Version is the semantic version of the CLI.
	Version = "0.1.0-dev"

	// GitCommit is an optional git commit hash.
	GitCommit = ""

	// BuildDate is an optional build date in ISO-8601.
	BuildDate = ""
)

// Colored paints the major, minor and patch parts of v. Anything after the
// patch number (pre-release, build metadata) is left as is.
func Colored(v string) string {
	parts := strings.SplitN(v, ".", 3)
	if len(parts) != 3 {
		return v
	}
	patch, rest := parts[2], ""
	if i := strings.IndexAny(patch, "-+"); i >= 0 {
		patch, rest = patch[:i], patch[i:]
	}
	return versionMajorColor.Sprint(parts[0]) + "." +
		versionMinorColor.Sprint(parts[1]) + "." +
		versionPatchColor.Sprint(patch) + rest
}

// Info is the resolved build metadata.
type Info struct {
	Tool      string `json:"tool"`
	Version   string `json:"version"`
	GitCommit string `json:"git_commit,omitempty"`
	BuildDate string `json:"build_date,omitempty"`
	GoVersion string `json:"go_version,omitempty"`
	Modified  bool   `json:"modified,omitempty"`
}

var readBuildInfo = debug.ReadBuildInfo

// Current returns the ldflags values, filling the commit and date from the
// binary's VCS stamp when they were not set.
func Current() Info {
	info := Info{
		Tool:      "kwarg",
		Version:   Version,
		GitCommit: strings.TrimSpace(GitCommit),
		BuildDate: strings.TrimSpace(BuildDate),
	}
	bi, ok := readBuildInfo()
	if !ok {
		return info
	}
	info.GoVersion = bi.GoVersion
	stamped := info.GitCommit == ""
	for _, s := range bi.Settings {
		switch {
		case s.Key == "vcs.revision" && stamped:
			info.GitCommit = s.Value
		case s.Key == "vcs.time" && info.BuildDate == "":
			info.BuildDate = s.Value
		case s.Key == "vcs.modified" && stamped:
			info.Modified = s.Value == "true"
		}
	}
	return info
}

// Line renders the one-line `kwarg version` output.
func Line(colored bool) string {
	info := Current()
	v := info.Version
	if colored {
		v = Colored(v)
	}
	var b strings.Builder
	b.WriteString(info.Tool + " " + v)
	if info.GitCommit != "" {
		b.WriteString(" (" + info.GitCommit[:min(len(info.GitCommit), 12)])
		if info.Modified {
			b.WriteString("+dirty")
		}
		b.WriteString(")")
	}
	if info.BuildDate != "" {
		b.WriteString(" built " + info.BuildDate)
	}
	return b.String()
}
