// Build information, filled in through -ldflags "-X github.com/nobletooth/tlist/pkg/utils.Version=..." etc.
// CAUTION: Keep the variable names stable; the release scripts depend on them.

package utils

import (
	"log/slog"
	"strconv"
	"time"
)

// devVersion is reported by binaries built without release ldflags. It must stay a valid semver.
const devVersion = "v0.0.0-dev"

var (
	TestMode   string // Should be "true" when running tests.
	IsTestMode bool
	Version    string
	Commit     string
	BuildTime  string
	StartTime  time.Time
)

func init() {
	StartTime = time.Now()

	if Version == "" {
		Version = devVersion
	}
	if Commit == "" {
		Commit = "unknown"
	}
	if BuildTime == "" {
		BuildTime = "unknown"
	}
	if len(TestMode) > 0 {
		if isTestMode, err := strconv.ParseBool(TestMode); err == nil {
			IsTestMode = isTestMode
		} else {
			slog.Warn("Failed to parse TestMode build flag, defaulting to false", "error", err)
		}
	}
}

// BuildInfo returns the build information as slog key / value attributes.
func BuildInfo() []any {
	return []any{"version", Version, "commit", Commit, "build", BuildTime, "uptime", time.Since(StartTime).Round(time.Second)}
}
