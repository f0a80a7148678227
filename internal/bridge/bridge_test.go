package bridge

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/beeclock/internal/clock"
)

func buildTestHost(t *testing.T) *Host {
	t.Helper()
	hb := NewHostBuilder()
	require.NoError(t, hb.SetOrder("lsf"))
	hb.Partition("sec", 60).Partition("min", 60)
	hb.PulseEvery("second", 1)
	require.NoError(t, hb.PulseCondition("top", []byte(
		`{"type": "partition_equals", "name": "sec", "value": 0}`)))
	host, err := hb.Build()
	require.NoError(t, err)
	return host
}

func TestHostTickReturnsRichView(t *testing.T) {
	host := buildTestHost(t)

	view := host.Tick()
	assert.Equal(t, uint64(1), view.Snapshot.Tick)
	assert.Equal(t, "1", view.Snapshot.TickStr)
	assert.Equal(t, uint64(0), view.Snapshot.Epoch)
	require.Len(t, view.Snapshot.Partitions, 2)
	assert.Equal(t, "sec", view.Snapshot.Partitions[0].Name)
	assert.Equal(t, uint64(1), view.Snapshot.Partitions[0].Value)
	assert.Equal(t, "1", view.Snapshot.Partitions[0].ValueStr)
	assert.Equal(t, uint64(60), view.Snapshot.Partitions[0].Modulus)

	require.Len(t, view.Pulses, 1)
	assert.Equal(t, "second", view.Pulses[0].Name)
	assert.Equal(t, "1", view.Pulses[0].TickStr)
	assert.False(t, view.Overflowed)
}

func TestHostSnapshotDoesNotAdvance(t *testing.T) {
	host := buildTestHost(t)
	host.Tick()

	before := host.Snapshot()
	again := host.Snapshot()
	assert.Equal(t, before, again)
	assert.Equal(t, uint64(1), before.Tick)
}

func TestViewCarriesFullWidthStrings(t *testing.T) {
	hb := NewHostBuilder()
	hb.StartTick(math.MaxUint64 - 1)
	host, err := hb.Build()
	require.NoError(t, err)

	view := host.Tick()
	assert.Equal(t, uint64(math.MaxUint64), view.Snapshot.Tick)
	assert.Equal(t, "18446744073709551615", view.Snapshot.TickStr)

	// JSON output keeps both forms, so a 53-bit host can still read
	// the exact value.
	data, err := json.Marshal(view.Snapshot)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"tick_str":"18446744073709551615"`)
}

func TestHostBuilderRejectsBadOrder(t *testing.T) {
	hb := NewHostBuilder()
	assert.Error(t, hb.SetOrder("sideways"))
}

func TestHostBuilderRejectsBadLiteral(t *testing.T) {
	hb := NewHostBuilder()
	err := hb.PulseCondition("bad", []byte(`{"type": "mystery"}`))
	require.Error(t, err)

	var le *clock.LiteralError
	assert.ErrorAs(t, err, &le)
}

func TestHostBuilderSurfacesBuildErrors(t *testing.T) {
	hb := NewHostBuilder()
	require.NoError(t, hb.SetOrder("lsf"))
	hb.Partition("sec", 0)

	_, err := hb.Build()
	require.Error(t, err)
	assert.True(t, clock.IsBuildError(err, clock.ErrCodeZeroModulus))
}

func TestHostBuilderConditionValue(t *testing.T) {
	hb := NewHostBuilder()
	require.NoError(t, hb.SetOrder("lsf"))
	hb.Partition("sec", 4)
	require.NoError(t, hb.PulseConditionValue("wrap", map[string]any{
		"type": "partition_equals", "name": "sec", "value": 0,
	}))
	host, err := hb.Build()
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		assert.Empty(t, host.Tick().Pulses)
	}
	view := host.Tick()
	require.Len(t, view.Pulses, 1)
	assert.Equal(t, "wrap", view.Pulses[0].Name)
}

func TestHostExposesFrozenShape(t *testing.T) {
	host := buildTestHost(t)

	assert.Equal(t, []string{"second", "top"}, host.PulseNames())
	assert.Equal(t, 2, host.PartitionCount())
	assert.Equal(t, "least_significant_first", host.Order())

	// The returned name slice is a copy.
	names := host.PulseNames()
	names[0] = "mangled"
	assert.Equal(t, []string{"second", "top"}, host.PulseNames())
}
