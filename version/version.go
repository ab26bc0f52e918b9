package version

import (
	"runtime/debug"
)

// Set with -ldflags.
var (
	Version = "dev"
	Commit  = ""
)

// Info describes the running build.
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit,omitempty"`
	GoVersion string `json:"go_version,omitempty"`
	Dirty     bool   `json:"dirty"`
}

// Get returns the build info, filling the commit from VCS settings when it
// was not set at link time.
func Get() Info {
	info := Info{Version: Version, Commit: Commit}
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return info
	}
	info.GoVersion = bi.GoVersion
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			if info.Commit == "" {
				info.Commit = s.Value
			}
		case "vcs.modified":
			info.Dirty = s.Value == "true"
		}
	}
	return info
}

// String returns version[-commit[-dirty]] with the commit shortened to
// seven characters.
func (i Info) String() string {
	if i.Commit == "" {
		return i.Version
	}
	commit := i.Commit
	if len(commit) > 7 {
		commit = commit[:7]
	}
	s := i.Version + "-" + commit
	if i.Dirty {
		s += "-dirty"
	}
	return s
}

// Short is Get().String().
func Short() string {
	return Get().String()
}
