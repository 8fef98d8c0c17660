package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/motionchart/internal/ir"
	"github.com/roach88/motionchart/internal/statechart"
	"github.com/roach88/motionchart/internal/trinary"
)

// DefaultMaxTicks bounds scenario runs that do not set max_ticks.
const DefaultMaxTicks = 100

// Scenario defines a conformance test scenario.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Charts is the CUE package directory holding the chart.
	Charts string `yaml:"charts,omitempty"`

	// Chart is the name of the chart to run.
	Chart string `yaml:"chart"`

	// RunID is a fixed run ID. Defaults to "test-run-default".
	RunID string `yaml:"run_id,omitempty"`

	// MaxTicks is the tick quota. Defaults to DefaultMaxTicks.
	MaxTicks int64 `yaml:"max_ticks,omitempty"`

	// Expect describes the outcome of the run.
	Expect Expect `yaml:"expect"`

	// Assertions check the recorded trace.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// Expect describes the expected outcome of a scenario.
type Expect struct {
	// Status is the final run status: completed, aborted or quota_exceeded.
	Status string `yaml:"status,omitempty"`

	// Ticks is the number of ticks executed. Zero skips the check.
	Ticks int64 `yaml:"ticks,omitempty"`

	// Error is the error carried by the aborting node.
	Error string `yaml:"error,omitempty"`

	// AbortedBy names the aborting node.
	AbortedBy string `yaml:"aborted_by,omitempty"`

	// Output is everything print nodes wrote. Nil skips the check.
	Output *string `yaml:"output,omitempty"`

	// Validation lists the error codes the chart must be rejected with.
	// When set the chart is not run.
	Validation []string `yaml:"validation,omitempty"`
}

// Assertion validates the recorded trace.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// Node names the node (all types except start_order).
	Node string `yaml:"node,omitempty"`

	// Tick is the tick to inspect (node_state, started_at).
	Tick int64 `yaml:"tick,omitempty"`

	// LifeCycle is the expected life-cycle state (node_state).
	LifeCycle string `yaml:"life_cycle,omitempty"`

	// Observation is the expected observation (node_state).
	Observation string `yaml:"observation,omitempty"`

	// Nodes is the expected start order (start_order).
	Nodes []string `yaml:"nodes,omitempty"`

	// Count is the expected number of observation changes (change_count).
	Count int `yaml:"count,omitempty"`
}

// Assertion type constants.
const (
	AssertNodeState    = "node_state"
	AssertStartedAt    = "started_at"
	AssertNeverStarted = "never_started"
	AssertStartOrder   = "start_order"
	AssertChangeCount  = "change_count"
)

// LoadScenario reads and parses a scenario YAML file.
// A relative charts directory is resolved against the scenario file's
// directory.
func LoadScenario(path string) (*Scenario, error) {
	scenario, err := decodeScenario(path)
	if err != nil {
		return nil, err
	}
	if scenario.Charts != "" && !filepath.IsAbs(scenario.Charts) {
		scenario.Charts = filepath.Join(filepath.Dir(path), scenario.Charts)
	}
	if err := validateScenario(scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return scenario, nil
}

// LoadScenarioWithBasePath reads and parses a scenario YAML file,
// resolving the charts directory against basePath. A scenario without a
// charts field uses basePath itself.
func LoadScenarioWithBasePath(path, basePath string) (*Scenario, error) {
	scenario, err := decodeScenario(path)
	if err != nil {
		return nil, err
	}
	switch {
	case scenario.Charts == "":
		scenario.Charts = basePath
	case !filepath.IsAbs(scenario.Charts) && basePath != "":
		scenario.Charts = filepath.Join(basePath, scenario.Charts)
	}
	if err := validateScenario(scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return scenario, nil
}

func decodeScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Unknown fields are rejected to catch typos like "assertion:".
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.Chart == "" {
		return fmt.Errorf("chart is required")
	}
	if s.Charts == "" {
		return fmt.Errorf("charts directory is required")
	}
	if info, err := os.Stat(s.Charts); err != nil || !info.IsDir() {
		return fmt.Errorf("charts directory not found: %s", s.Charts)
	}
	if s.MaxTicks < 0 {
		return fmt.Errorf("max_ticks must be non-negative")
	}

	if len(s.Expect.Validation) > 0 {
		if s.Expect.Status != "" {
			return fmt.Errorf("expect: status and validation are mutually exclusive")
		}
		if len(s.Assertions) > 0 {
			return fmt.Errorf("assertions require a run, but expect.validation skips it")
		}
		return nil
	}

	switch s.Expect.Status {
	case ir.StatusCompleted, ir.StatusAborted, ir.StatusQuota:
	case "":
		return fmt.Errorf("expect: status is required")
	default:
		return fmt.Errorf("expect: unknown status %q", s.Expect.Status)
	}

	for i := range s.Assertions {
		if err := validateAssertion(i, &s.Assertions[i]); err != nil {
			return err
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	if a.Type != AssertStartOrder && a.Node == "" {
		return fmt.Errorf("assertions[%d]: node is required for %s", index, a.Type)
	}

	switch a.Type {
	case AssertNodeState:
		if a.Tick <= 0 {
			return fmt.Errorf("assertions[%d]: tick must be positive for node_state", index)
		}
		if a.LifeCycle == "" && a.Observation == "" {
			return fmt.Errorf("assertions[%d]: life_cycle or observation is required for node_state", index)
		}
		if a.LifeCycle != "" {
			if _, err := statechart.ParseLifeCycleState(a.LifeCycle); err != nil {
				return fmt.Errorf("assertions[%d]: %w", index, err)
			}
		}
		if a.Observation != "" {
			if _, err := trinary.Parse(a.Observation); err != nil {
				return fmt.Errorf("assertions[%d]: %w", index, err)
			}
		}
	case AssertStartedAt:
		if a.Tick <= 0 {
			return fmt.Errorf("assertions[%d]: tick must be positive for started_at", index)
		}
	case AssertNeverStarted:
	case AssertStartOrder:
		if len(a.Nodes) < 2 {
			return fmt.Errorf("assertions[%d]: at least two nodes are required for start_order", index)
		}
	case AssertChangeCount:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for change_count", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
