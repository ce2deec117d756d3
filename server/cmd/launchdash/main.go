// launchdash runs the dashboard views offline over a dataset file.
//
// Usage:
//
//	launchdash summary  [--site=<site|ALL>]
//	launchdash scatter  [--site=<site|ALL>] [--low=<kg>] [--high=<kg>]
//	launchdash inspect
//	launchdash chart    summary|scatter -o <file.png|file.svg> [filter flags]
//
// Every command accepts --data (csv, xlsx or sqlite file), --sheet, --table
// and --json.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
