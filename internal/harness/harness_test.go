package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/beeclock/internal/clock"
)

func TestBuildClockFromConfig(t *testing.T) {
	c, err := BuildClock(&ClockConfig{
		Order: "lsf",
		Partitions: []PartitionConfig{
			{Name: "sec", Modulus: 60},
		},
		Pulses: []PulseConfig{
			{Name: "top", Condition: map[string]any{
				"type": "partition_equals", "name": "sec", "value": 0,
			}},
			{Name: "beat", Every: 2},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"top", "beat"}, c.PulseNames())
	assert.Equal(t, []uint64{60}, c.PartitionModuli())
}

func TestBuildClockBadOrder(t *testing.T) {
	_, err := BuildClock(&ClockConfig{Order: "sideways"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "clock.order")
}

func TestBuildClockBadLiteral(t *testing.T) {
	_, err := BuildClock(&ClockConfig{
		Pulses: []PulseConfig{
			{Name: "bad", Condition: map[string]any{"type": "sometimes"}},
		},
	})
	require.Error(t, err)

	var le *clock.LiteralError
	assert.ErrorAs(t, err, &le)
}

func TestBuildClockSurfacesKernelValidation(t *testing.T) {
	_, err := BuildClock(&ClockConfig{
		Order: "lsf",
		Partitions: []PartitionConfig{
			{Name: "sec", Modulus: 0},
		},
	})
	require.Error(t, err)
	assert.True(t, clock.IsBuildError(err, clock.ErrCodeZeroModulus))
}

func TestRunRecordsOnlyFiringTicks(t *testing.T) {
	scenario := &Scenario{
		Name:        "sparse",
		Description: "trace holds firing ticks only",
		Clock: ClockConfig{
			Pulses: []PulseConfig{{Name: "third", Every: 3}},
		},
		Ticks: 10,
	}

	result, err := Run(scenario)
	require.NoError(t, err)

	require.Len(t, result.Trace, 3)
	assert.Equal(t, TraceEvent{Seq: 3, Tick: 3, Epoch: 0, Pulses: []string{"third"}}, result.Trace[0])
	assert.Equal(t, uint64(6), result.Trace[1].Tick)
	assert.Equal(t, uint64(9), result.Trace[2].Tick)
	assert.Equal(t, uint64(10), result.Final.Tick)
}

func TestRunStartTick(t *testing.T) {
	scenario := &Scenario{
		Name:        "resumed",
		Description: "seeded tick counter",
		Clock: ClockConfig{
			StartTick: 100,
			Pulses:    []PulseConfig{{Name: "mark", Every: 50}},
		},
		Ticks: 2,
	}

	result, err := Run(scenario)
	require.NoError(t, err)

	// Ticks 101 and 102; no multiple of 50 in that window.
	assert.Empty(t, result.Trace)
	assert.Equal(t, uint64(102), result.Final.Tick)
}

func TestCheckPassingAssertions(t *testing.T) {
	scenario := &Scenario{
		Name:        "pass",
		Description: "all assertions hold",
		Clock: ClockConfig{
			Order:      "lsf",
			Partitions: []PartitionConfig{{Name: "sec", Modulus: 4}},
			Pulses: []PulseConfig{
				{Name: "wrap", Condition: map[string]any{
					"type": "partition_equals", "name": "sec", "value": 0,
				}},
			},
		},
		Ticks: 4,
		Assertions: []Assertion{
			{Type: AssertPulseAt, Pulse: "wrap", Tick: 4},
			{Type: AssertPulseCount, Pulse: "wrap", Count: 1},
			{Type: AssertFinalSnapshot, Partitions: map[string]uint64{"sec": 0}},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.Empty(t, result.Check())
}

func TestCheckFailingAssertions(t *testing.T) {
	finalTick := uint64(99)
	scenario := &Scenario{
		Name:        "fail",
		Description: "every assertion fails",
		Clock: ClockConfig{
			Pulses: []PulseConfig{{Name: "beat", Every: 2}},
		},
		Ticks: 6,
		Assertions: []Assertion{
			{Type: AssertPulseAt, Pulse: "beat", Tick: 2},   // fired at 2, 4, 6
			{Type: AssertPulseAt, Pulse: "ghost", Tick: 1},  // never fired
			{Type: AssertPulseCount, Pulse: "beat", Count: 1},
			{Type: AssertFinalSnapshot, FinalTick: &finalTick},
			{Type: AssertFinalSnapshot, Partitions: map[string]uint64{"sec": 0}},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)

	failures := result.Check()
	require.Len(t, failures, 5)
	assert.Contains(t, failures[0].Error(), "fired at ticks")
	assert.Contains(t, failures[1].Error(), "never fired")
	assert.Contains(t, failures[2].Error(), "3 times, expected 1")
	assert.Contains(t, failures[3].Error(), "final tick")
	assert.Contains(t, failures[4].Error(), "no partition")
}

func TestCheckPulseCountZero(t *testing.T) {
	scenario := &Scenario{
		Name:        "silent",
		Description: "asserting a pulse never fires",
		Clock: ClockConfig{
			Pulses: []PulseConfig{{Name: "rare", Every: 100}},
		},
		Ticks: 10,
		Assertions: []Assertion{
			{Type: AssertPulseCount, Pulse: "rare", Count: 0},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.Empty(t, result.Check())
}
