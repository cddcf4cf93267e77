// Package stockmind is the root of the inventory analytics orchestration
// module. The pipeline lives in the orchestration, analytics, core, and
// telemetry packages; this package carries build identity only.
package stockmind

// Version information for the stockmind pipeline
const (
	// Version is the current release version
	Version = "development"

	// BuildDate is set during build time
	BuildDate = "development"

	// GitCommit is set during build time
	GitCommit = "unknown"
)
