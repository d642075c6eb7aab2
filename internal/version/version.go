package version

import "fmt"

// Version, Commit and BuildDate are set at build time, e.g.
//
//	go build -ldflags "-X github.com/oukeidos/percept/internal/version.Version=0.2.0 \
//	  -X github.com/oukeidos/percept/internal/version.Commit=abcdef1 \
//	  -X github.com/oukeidos/percept/internal/version.BuildDate=2026-10-01T12:00:00Z"
var (
	Version   = "0.1.0"
	Commit    = "unknown"
	BuildDate = "unknown"
)

// Name is the program name shown in version output and the HTTP User-Agent.
const Name = "percept"

// Info returns a multi-line version string for CLI output.
func Info() string {
	return fmt.Sprintf("%s %s\ncommit: %s\nbuild: %s", Name, Version, Commit, BuildDate)
}

// UserAgent identifies this build to remote APIs.
func UserAgent() string {
	return Name + "/" + Version
}
