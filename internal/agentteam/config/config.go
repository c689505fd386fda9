// Package config reads the one environment variable this repo honors.
package config

import "os"

// LogLevel returns the level requested by AGENT_TEAM_LOG, or "" if unset.
// No other environment variable is read by the core; everything else
// arrives as CLI flags.
func LogLevel() string {
	return os.Getenv("AGENT_TEAM_LOG")
}
