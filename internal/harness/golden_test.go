package harness

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestScenarioGoldens runs every scenario under testdata/scenarios,
// checks its assertions, and pins its trace against the golden files.
func TestScenarioGoldens(t *testing.T) {
	paths, err := filepath.Glob("testdata/scenarios/*.yaml")
	require.NoError(t, err)
	require.NotEmpty(t, paths, "no scenarios found")

	for _, path := range paths {
		path := path
		t.Run(filepath.Base(path), func(t *testing.T) {
			scenario, err := LoadScenario(path)
			require.NoError(t, err)

			result, err := Run(scenario)
			require.NoError(t, err)

			for _, failure := range result.Check() {
				t.Error(failure)
			}

			require.NoError(t, RunWithGolden(t, scenario))
		})
	}
}

func TestSnapshotProjection(t *testing.T) {
	scenario := &Scenario{
		Name:        "projection",
		Description: "golden projection uses decimal strings",
		Clock: ClockConfig{
			Order:      "lsf",
			Partitions: []PartitionConfig{{Name: "sec", Modulus: 60}},
			Pulses:     []PulseConfig{{Name: "beat", Every: 2}},
		},
		Ticks: 2,
	}

	result, err := Run(scenario)
	require.NoError(t, err)

	snap := result.Snapshot()
	assert.Equal(t, "projection", snap.ScenarioName)
	require.Len(t, snap.Trace, 1)
	assert.Equal(t, GoldenEvent{Seq: 2, Tick: "2", Epoch: "0", Pulses: []string{"beat"}}, snap.Trace[0])
	assert.Equal(t, "2", snap.Final.Tick)
	require.Len(t, snap.Final.Partitions, 1)
	assert.Equal(t, GoldenPartition{Name: "sec", Value: "2"}, snap.Final.Partitions[0])
}
