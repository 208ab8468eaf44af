// Command rdbmerge merges one or more RDB v6 snapshots into a single
// deduplicated snapshot (spec.md §6).
package main

import (
	"os"

	"rdbmerge/internal/cli"
)

func main() {
	os.Exit(cli.Execute(os.Args[1:]))
}
