package main

import (
	"os"

	"github.com/nico-iaco/nexabudget-gocardless-integrator/cmd/integrator/cmd"
)

// Version information (set by build flags)
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	cmd.SetVersionInfo(version, commit, date)

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
