// Package config loads the optional merge-plan file: a YAML alternative to
// repeating -d/-o/-C flags when the same set of inputs and target databases
// is merged repeatedly (spec.md §6, SPEC_FULL.md §4 "Merge-plan file").
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Plan is one merge plan: the same inputs spec.md's CLI accepts as flags,
// expressed as a reusable file.
type Plan struct {
	Inputs    []string `yaml:"inputs"`
	Output    string   `yaml:"output"`
	Databases []uint32 `yaml:"databases"`
	NoCheck   bool     `yaml:"nocheck"`
}

// ValidationError collects every problem found in a plan, so a user fixes
// all of them in one pass instead of one flag at a time.
type ValidationError struct {
	Path   string
	Errors []string
}

func (e *ValidationError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "invalid merge plan %s:", e.Path)
	for _, err := range e.Errors {
		b.WriteString("\n  - ")
		b.WriteString(err)
	}
	return b.String()
}

// Load reads and validates a merge plan from path.
func Load(path string) (*Plan, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	var plan Plan
	if err := yaml.Unmarshal(raw, &plan); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if errs := plan.Validate(); len(errs) > 0 {
		return nil, &ValidationError{Path: path, Errors: errs}
	}
	return &plan, nil
}

// Validate checks the plan's required fields, returning the list of
// problems found (empty when the plan is usable).
func (p *Plan) Validate() []string {
	var errs []string
	if len(p.Inputs) == 0 {
		errs = append(errs, "inputs: at least one input file is required")
	}
	if p.Output == "" {
		errs = append(errs, "output: target directory is required")
	}
	return errs
}

// TargetDatabases returns Databases as the set the merge controller filters
// against (spec.md §2 component 4), or nil when every database is wanted.
func (p *Plan) TargetDatabases() map[uint32]bool {
	if len(p.Databases) == 0 {
		return nil
	}
	set := make(map[uint32]bool, len(p.Databases))
	for _, n := range p.Databases {
		set[n] = true
	}
	return set
}
