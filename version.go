package bizadmin

import (
	"runtime"
	"runtime/debug"
)

// BuildInfo describes the commit the running binary is built from.
// It is only known to binaries built with `go build` from a git checkout,
// `go run` and `go test` leave Revision empty.
type BuildInfo struct {
	Revision  string `json:"revision"`
	Time      string `json:"time"`
	Modified  bool   `json:"modified"`
	GoVersion string `json:"goVersion"`
}

// Version is Revision, or "dev" for binaries with unknown or uncommitted sources.
func (b BuildInfo) Version() string {
	if b.Revision == "" || b.Modified {
		return "dev"
	}

	return b.Revision
}

func ReadBuildInfo() BuildInfo {
	bi := BuildInfo{GoVersion: runtime.Version()}

	info, ok := debug.ReadBuildInfo()
	if !ok {
		return bi
	}

	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			bi.Revision = s.Value
		case "vcs.time":
			bi.Time = s.Value
		case "vcs.modified":
			bi.Modified = s.Value == "true"
		}
	}

	return bi
}
