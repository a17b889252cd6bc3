// Package version exposes build metadata injected with -ldflags.
package version

import (
	"fmt"
	"runtime"
)

// Set at build time: -ldflags "-X github.com/aristath/qdash/internal/version.Version=..."
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

// UserAgent is the agent string recorded on event log entries
func UserAgent() string {
	return fmt.Sprintf("qdash/%s (%s; %s)", Version, runtime.GOOS, runtime.GOARCH)
}

// Info returns the build metadata as a map for JSON responses
func Info() map[string]string {
	return map[string]string{
		"version":    Version,
		"commit":     Commit,
		"build_date": BuildDate,
		"go":         runtime.Version(),
	}
}
