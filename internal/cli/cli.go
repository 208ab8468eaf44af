// Package cli dispatches the single merge command, modeled on the teacher's
// internal/cli/cli.go Execute(args) int shape reduced to the one subcommand
// this tool has (spec.md §6).
package cli

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"rdbmerge/internal/config"
	"rdbmerge/internal/logger"
	"rdbmerge/internal/merge"
)

const version = "rdbmerge 0.1.0-dev"

// multiFlag collects a repeatable -d/--database flag into a uint32 set.
type multiFlag struct {
	values map[uint32]bool
}

func (m *multiFlag) String() string {
	if m == nil || len(m.values) == 0 {
		return ""
	}
	parts := make([]string, 0, len(m.values))
	for v := range m.values {
		parts = append(parts, strconv.FormatUint(uint64(v), 10))
	}
	return strings.Join(parts, ",")
}

func (m *multiFlag) Set(s string) error {
	n, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return fmt.Errorf("-d: %q is not a database number: %w", s, err)
	}
	if m.values == nil {
		m.values = make(map[uint32]bool)
	}
	m.values[uint32(n)] = true
	return nil
}

// Execute parses args and runs the merge, returning the process exit code.
func Execute(args []string) int {
	if len(args) == 0 {
		printUsage()
		return 1
	}

	switch args[0] {
	case "help", "-h", "--help":
		printUsage()
		return 0
	case "version", "--version", "-v":
		fmt.Println(version)
		return 0
	}

	fs := flag.NewFlagSet("rdbmerge", flag.ContinueOnError)
	fs.SetOutput(os.Stdout)

	databases := &multiFlag{}
	fs.Var(databases, "d", "target database number to keep (repeatable; default: keep all)")
	fs.Var(databases, "database", "target database number to keep (repeatable; default: keep all)")

	output := fs.String("o", "./", "output directory for the merged snapshot")
	fs.StringVar(output, "output", "./", "output directory for the merged snapshot")

	var nocheck bool
	fs.BoolVar(&nocheck, "C", false, "disable duplicate-key checking")
	fs.BoolVar(&nocheck, "nocheck", false, "disable duplicate-key checking")

	plan := fs.String("plan", "", "merge-plan YAML file (overridden field-by-field by flags above)")

	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 1
	}

	opts := merge.Options{
		OutputDir:       *output,
		CheckDuplicates: !nocheck,
		TargetDatabases: databases.values,
	}
	inputs := fs.Args()

	if *plan != "" {
		p, err := config.Load(*plan)
		if err != nil {
			logger.Errorf("%v", err)
			return 2
		}
		if len(inputs) == 0 {
			inputs = p.Inputs
		}
		if *output == "./" {
			opts.OutputDir = p.Output
		}
		if len(databases.values) == 0 {
			opts.TargetDatabases = p.TargetDatabases()
		}
		if !nocheck {
			opts.CheckDuplicates = !p.NoCheck
		}
	}
	opts.Inputs = inputs

	if len(opts.Inputs) == 0 {
		logger.Errorf("at least one input file is required")
		printUsage()
		return 2
	}

	stats, err := merge.Run(opts)
	if err != nil {
		logger.Errorf("%v", err)
		return 1
	}

	printSummary(stats)
	return 0
}

func printSummary(stats merge.Stats) {
	for db := range stats.WrittenPerDB {
		logger.Infof("db %d: wrote %d records, discarded %d duplicates", db, stats.WrittenPerDB[db], stats.DiscardedPerDB[db])
	}
	logger.Infof("merge complete: %d bytes written", stats.BytesWritten)
}

func printUsage() {
	fmt.Printf(`rdbmerge - merge RDB v6 snapshots into one, dropping duplicate keys

Usage:
  rdbmerge [-d N]... [-o DIR] [-C] FILE...
  rdbmerge -plan plan.yaml
  rdbmerge help
  rdbmerge version

Flags:
  -d, --database N    keep only database N (repeatable; default: keep all)
  -o, --output DIR     output directory for MERGE.rdb (default "./")
  -C, --nocheck        disable duplicate-key checking
  -plan FILE           merge-plan YAML file; flags above override its fields

Examples:
  rdbmerge -o ./out a.rdb b.rdb
  rdbmerge -d 0 -d 1 -C -o ./out a.rdb b.rdb c.rdb
`)
}
