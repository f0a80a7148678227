package harness

import (
	"encoding/json"
	"strconv"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// TraceSnapshot is the golden-file projection of a scenario run.
// Tick and epoch are decimal strings so goldens stay exact for runs
// that cross the 53-bit JSON number boundary.
type TraceSnapshot struct {
	ScenarioName string        `json:"scenario_name"`
	Trace        []GoldenEvent `json:"trace"`
	Final        GoldenFinal   `json:"final"`
}

// GoldenEvent is one fired-pulse tick in a TraceSnapshot.
type GoldenEvent struct {
	Seq    uint64   `json:"seq"`
	Tick   string   `json:"tick"`
	Epoch  string   `json:"epoch"`
	Pulses []string `json:"pulses"`
}

// GoldenFinal is the final snapshot in a TraceSnapshot.
type GoldenFinal struct {
	Tick       string            `json:"tick"`
	Epoch      string            `json:"epoch"`
	Partitions []GoldenPartition `json:"partitions"`
}

// GoldenPartition is one partition value in a GoldenFinal.
type GoldenPartition struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Snapshot converts a result into its golden projection.
func (r *Result) Snapshot() TraceSnapshot {
	trace := make([]GoldenEvent, 0, len(r.Trace))
	for _, event := range r.Trace {
		trace = append(trace, GoldenEvent{
			Seq:    event.Seq,
			Tick:   strconv.FormatUint(event.Tick, 10),
			Epoch:  strconv.FormatUint(event.Epoch, 10),
			Pulses: event.Pulses,
		})
	}

	partitions := make([]GoldenPartition, 0, len(r.Final.Partitions))
	for _, p := range r.Final.Partitions {
		partitions = append(partitions, GoldenPartition{
			Name:  p.Name,
			Value: strconv.FormatUint(p.Value, 10),
		})
	}

	return TraceSnapshot{
		ScenarioName: r.Scenario.Name,
		Trace:        trace,
		Final: GoldenFinal{
			Tick:       strconv.FormatUint(r.Final.Tick, 10),
			Epoch:      strconv.FormatUint(r.Final.Epoch, 10),
			Partitions: partitions,
		},
	}
}

// RunWithGolden executes a scenario and compares the trace against a
// golden file in testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails. Test failure (via goldie)
// occurs if the trace doesn't match the golden file.
func RunWithGolden(t *testing.T, scenario *Scenario) error {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return err
	}

	traceJSON, err := json.MarshalIndent(result.Snapshot(), "", "  ")
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, traceJSON)

	return nil
}
