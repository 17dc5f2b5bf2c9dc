// Package scenario runs YAML-defined end-to-end scenarios against the
// schedule engine.
//
// A scenario seeds a fresh store with named items, presets, and schedules,
// then drives a manual clock through a series of advance-and-tick steps.
// Entities are referenced by name throughout; the runner maps names to the
// generated IDs. After the steps run, assertions check final schedule
// statuses and item availability, and the recorded status-transition trace
// can be compared against a golden file.
package scenario

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"gopkg.in/yaml.v3"
)

// Scenario is one YAML-defined engine test.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Start is the clock's initial instant, RFC 3339.
	Start time.Time `yaml:"start"`

	// Items, Presets, and Schedules seed the store before any tick runs.
	Items     []ItemDef     `yaml:"items,omitempty"`
	Presets   []PresetDef   `yaml:"presets,omitempty"`
	Schedules []ScheduleDef `yaml:"schedules"`

	// Steps drive the clock and the engine, in order.
	Steps []Step `yaml:"steps"`

	// Assertions validate the final state after all steps.
	Assertions []Assertion `yaml:"assertions"`
}

// ItemDef seeds one menu item.
type ItemDef struct {
	Name      string `yaml:"name"`
	Category  string `yaml:"category"`
	Available bool   `yaml:"available"`
}

// PresetDef seeds one preset. Items lists menu item names, which must be
// defined in the scenario's items section.
type PresetDef struct {
	Name  string   `yaml:"name"`
	Items []string `yaml:"items"`
}

// ScheduleDef seeds one schedule, always Pending. Preset names a preset
// from the presets section; "missing" schedules can name a preset that is
// deliberately absent to exercise the failure path.
type ScheduleDef struct {
	Name       string    `yaml:"name"`
	Preset     string    `yaml:"preset"`
	Start      time.Time `yaml:"start"`
	End        time.Time `yaml:"end"`
	Recurrence string    `yaml:"recurrence"`
}

// Step advances the clock then runs the engine. Advance is in
// time.ParseDuration syntax; Ticks defaults to 1.
type Step struct {
	Advance string `yaml:"advance"`
	Ticks   int    `yaml:"ticks,omitempty"`
}

// Assertion validates final state.
// Supported types: schedule_status, item_available, error_contains.
type Assertion struct {
	Type string `yaml:"type"`

	// schedule_status and error_contains
	Schedule string `yaml:"schedule,omitempty"`
	Status   string `yaml:"status,omitempty"`
	Contains string `yaml:"contains,omitempty"`

	// item_available
	Item      string `yaml:"item,omitempty"`
	Available *bool  `yaml:"available,omitempty"`
}

// Load reads and validates one scenario file.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario %s: %w", path, err)
	}

	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("parse scenario %s: %w", path, err)
	}
	if err := sc.validate(); err != nil {
		return nil, fmt.Errorf("scenario %s: %w", path, err)
	}
	return &sc, nil
}

// LoadDir loads every *.yaml scenario in dir, sorted by file name.
func LoadDir(dir string) ([]*Scenario, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)

	scenarios := make([]*Scenario, 0, len(paths))
	for _, path := range paths {
		sc, err := Load(path)
		if err != nil {
			return nil, err
		}
		scenarios = append(scenarios, sc)
	}
	return scenarios, nil
}

func (s *Scenario) validate() error {
	if s.Name == "" {
		return fmt.Errorf("scenario name is required")
	}
	if s.Start.IsZero() {
		return fmt.Errorf("start time is required")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("at least one step is required")
	}
	for i, step := range s.Steps {
		if step.Advance == "" {
			continue
		}
		if _, err := time.ParseDuration(step.Advance); err != nil {
			return fmt.Errorf("step %d: invalid advance %q", i, step.Advance)
		}
	}
	return nil
}
