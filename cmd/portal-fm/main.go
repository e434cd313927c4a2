// portal-fm - file and folder manager for the intranet portal.
package main

import (
	"os"

	"github.com/ambercrest/portal-fm/internal/cli"
)

// Version information - overridden at release time via LDFLAGS.
var (
	Version   = "v1.2.0"
	BuildTime = "2026-08-29"
)

func main() {
	cli.Version = Version
	cli.BuildTime = BuildTime

	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
