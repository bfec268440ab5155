package main

import (
	// Time zone validation must not depend on the host's zoneinfo.
	_ "time/tzdata"

	"github.com/teemow/discal/cmd"
)

// version will be set by goreleaser during build
var version = "dev"

func main() {
	// Set the version from build-time variable
	cmd.SetVersion(version)

	// Execute the root command
	cmd.Execute()
}
