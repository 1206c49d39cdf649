package config

import "fmt"

// ModuleName is the name of this service.
const ModuleName = "go-relayer"

// Build arguments, overridden via ldflags.
var (
	ModuleVersion = "dev"
	Commit        = "unknown"
	BuildDate     = "unknown"
)

// GetFormattedBuildArgs returns "<version> @ <commit> (<build date>)".
func GetFormattedBuildArgs() string {
	return fmt.Sprintf("%v @ %v (%v)", ModuleVersion, Commit, BuildDate)
}
