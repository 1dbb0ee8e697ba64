// Package build carries version information stamped at build time.
package build

import "fmt"

// These variables are set at build time via -ldflags.
var (
	Version   = "dev"
	CommitSHA = "unknown"
	BuildDate = "unknown"
)

// ServerName is the product name reported in the Server response header.
const ServerName = "Notification orchestrator"

// String returns a single human-readable build info string.
func String() string {
	return fmt.Sprintf("%s (commit %s, built %s)", Version, CommitSHA, BuildDate)
}

// ServerHeader returns the value of the Server response header.
func ServerHeader() string {
	return ServerName + " " + Version
}
