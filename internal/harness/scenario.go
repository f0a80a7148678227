package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scenario defines a conformance test scenario: one clock
// configuration, a number of ticks to drive it, and assertions over
// the resulting trace.
type Scenario struct {
	// Name uniquely identifies this scenario. Also names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Clock is the clock configuration to build and drive.
	Clock ClockConfig `yaml:"clock"`

	// Ticks is how many steps to drive the clock.
	Ticks uint64 `yaml:"ticks"`

	// Assertions validate the trace and the final snapshot.
	// Supported types: pulse_at, pulse_count, final_snapshot
	Assertions []Assertion `yaml:"assertions"`
}

// ClockConfig mirrors the kernel builder in YAML form.
type ClockConfig struct {
	// Order is the cascade order ("lsf", "msf", or any synonym the
	// kernel accepts). Required whenever partitions are declared.
	Order string `yaml:"order,omitempty"`

	// Partitions in significance order.
	Partitions []PartitionConfig `yaml:"partitions,omitempty"`

	// Pulses in registration order.
	Pulses []PulseConfig `yaml:"pulses,omitempty"`

	// StartTick seeds the tick counter for resumed-run scenarios.
	StartTick uint64 `yaml:"start_tick,omitempty"`
}

// PartitionConfig declares one partition.
type PartitionConfig struct {
	Name    string `yaml:"name"`
	Modulus uint64 `yaml:"modulus"`
}

// PulseConfig declares one pulse: either a period shorthand or a full
// condition literal, never both.
type PulseConfig struct {
	Name string `yaml:"name"`

	// Every is the periodic shorthand.
	Every uint64 `yaml:"every,omitempty"`

	// Condition is a condition literal tree, same grammar the bridge
	// accepts.
	Condition map[string]any `yaml:"condition,omitempty"`
}

// Assertion validates the trace or the final snapshot.
type Assertion struct {
	// Type specifies the assertion type:
	// - "pulse_at": the named pulse fired on exactly the given tick
	// - "pulse_count": the named pulse fired exactly Count times
	// - "final_snapshot": the final snapshot matches the given values
	Type string `yaml:"type"`

	// Pulse is the pulse name (pulse_at, pulse_count).
	Pulse string `yaml:"pulse,omitempty"`

	// Tick is the expected firing tick (pulse_at).
	Tick uint64 `yaml:"tick,omitempty"`

	// Count is the expected firing count (pulse_count).
	Count uint64 `yaml:"count,omitempty"`

	// Partitions maps partition names to expected final values
	// (final_snapshot). Subset match - only named partitions are
	// checked.
	Partitions map[string]uint64 `yaml:"partitions,omitempty"`

	// FinalTick is the expected final tick counter (final_snapshot).
	FinalTick *uint64 `yaml:"final_tick,omitempty"`
}

// Assertion type constants.
const (
	AssertPulseAt       = "pulse_at"
	AssertPulseCount    = "pulse_count"
	AssertFinalSnapshot = "final_snapshot"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed, contains
// unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML with strict field validation
// (catches typos like "assertion:" vs "assertions:").
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
// Clock semantics (duplicate names, unknown partitions) are the
// kernel's job; this only checks scenario structure.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if s.Ticks == 0 {
		return fmt.Errorf("ticks must be at least 1")
	}

	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i, p := range s.Clock.Partitions {
		if p.Name == "" {
			return fmt.Errorf("clock.partitions[%d]: name is required", i)
		}
	}

	for i, p := range s.Clock.Pulses {
		if p.Name == "" {
			return fmt.Errorf("clock.pulses[%d]: name is required", i)
		}
		if p.Every != 0 && p.Condition != nil {
			return fmt.Errorf("clock.pulses[%d]: every and condition are mutually exclusive", i)
		}
		if p.Every == 0 && p.Condition == nil {
			return fmt.Errorf("clock.pulses[%d]: either every or condition is required", i)
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
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

	switch a.Type {
	case AssertPulseAt:
		if a.Pulse == "" {
			return fmt.Errorf("assertions[%d]: pulse is required for pulse_at", index)
		}
		if a.Tick == 0 {
			return fmt.Errorf("assertions[%d]: tick is required for pulse_at", index)
		}
	case AssertPulseCount:
		if a.Pulse == "" {
			return fmt.Errorf("assertions[%d]: pulse is required for pulse_count", index)
		}
	case AssertFinalSnapshot:
		if len(a.Partitions) == 0 && a.FinalTick == nil {
			return fmt.Errorf("assertions[%d]: partitions or final_tick is required for final_snapshot", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
