package config

import "fmt"

// ModuleName is the binary and metrics name of the agent.
const ModuleName = "go-bridge"

// Set via -ldflags "-X github/chapool/go-bridge/internal/config.BuildVersion=...".
var (
	BuildVersion = "dev"
	BuildCommit  = "unknown"
	BuildDate    = "unknown"
)

// GetFormattedBuildArgs returns the version line printed by --version.
func GetFormattedBuildArgs() string {
	return fmt.Sprintf("%v @ %v (%v)", BuildVersion, BuildCommit, BuildDate)
}
