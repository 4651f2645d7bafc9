// Package version reports the build identity of the evmwallet binary.
package version

import (
	"fmt"
	"runtime"
	"strings"
)

// Build metadata, set with -ldflags "-X".
//
//nolint:gochecknoglobals // populated by the linker
var (
	Version = ""
	Commit  = ""
	Date    = ""
)

// Info is the build identity.
type Info struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
	Go      string `json:"go"`
	OS      string `json:"os"`
	Arch    string `json:"arch"`
}

// Get returns the build identity of the running binary.
func Get() Info {
	return Info{
		Version: orDefault(Version, "dev"),
		Commit:  orDefault(Commit, "unknown"),
		Date:    orDefault(Date, "unknown"),
		Go:      runtime.Version(),
		OS:      runtime.GOOS,
		Arch:    runtime.GOARCH,
	}
}

// String formats the identity as "v1.2.3 (commit: abc1234, built: 2024-01-15)".
func (i Info) String() string {
	return fmt.Sprintf("%s (commit: %s, built: %s)",
		orDefault(i.Version, "dev"), orDefault(i.Commit, "unknown"), orDefault(i.Date, "unknown"))
}

// Normalize trims whitespace, leading "v" characters and any pre-release or
// build suffix such as "-rc1" or "+dirty".
func Normalize(v string) string {
	if idx := strings.IndexAny(v, "-+"); idx != -1 {
		v = v[:idx]
	}
	return strings.TrimLeft(strings.TrimSpace(v), "v")
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
