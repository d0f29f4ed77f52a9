// Package version provides build version information and runtime metadata.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"sync"
)

// Name is the program name reported by Info.
const Name = "speed-dashboard"

var (
	// These are set via ldflags at build time
	Version = ""
	Commit  = ""
	Date    = ""

	once sync.Once

	// readBuildInfo is swapped in tests.
	readBuildInfo = debug.ReadBuildInfo
)

func ensureInitialized() {
	once.Do(func() {
		info, ok := readBuildInfo()
		if !ok {
			info = &debug.BuildInfo{}
		}

		settings := make(map[string]string, len(info.Settings))
		for _, s := range info.Settings {
			settings[s.Key] = s.Value
		}

		if Version == "" {
			Version = moduleVersion(info.Main.Version)
		}
		if Commit == "" {
			Commit = shortCommit(settings["vcs.revision"], settings["vcs.modified"] == "true")
		}
		if Date == "" {
			Date = settings["vcs.time"]
		}
		if Date == "" {
			Date = "unknown"
		}
	})
}

func moduleVersion(v string) string {
	if v == "" || v == "(devel)" {
		return "dev"
	}
	if v[0] == 'v' {
		return v[1:]
	}
	return v
}

func shortCommit(rev string, dirty bool) string {
	if rev == "" {
		return "unknown"
	}
	if len(rev) > 12 {
		rev = rev[:12]
	}
	if dirty {
		rev += "-dirty"
	}
	return rev
}

// Reset clears the resolved values so the next accessor recomputes them.
func Reset() {
	Version, Commit, Date = "", "", ""
	once = sync.Once{}
}

// GetVersion returns the release version.
func GetVersion() string {
	ensureInitialized()
	return Version
}

// GetCommit returns the VCS revision the binary was built from.
func GetCommit() string {
	ensureInitialized()
	return Commit
}

// GetDate returns the build or commit date.
func GetDate() string {
	ensureInitialized()
	return Date
}

// Info returns a one-line description of the build.
func Info() string {
	ensureInitialized()
	return fmt.Sprintf("%s %s (commit: %s, built: %s, %s/%s)",
		Name, Version, Commit, Date, runtime.GOOS, runtime.GOARCH)
}
