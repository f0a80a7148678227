package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/beeclock/internal/clock"
	"github.com/roach88/beeclock/internal/store"
)

// recordTestRun builds a small clock, records it, and returns the
// database path and run ID.
func recordTestRun(t *testing.T, ticks uint64) (string, string) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "trace.db")

	st, err := store.Open(dbPath)
	require.NoError(t, err)
	defer st.Close()

	c, err := clock.NewBuilder().
		Order(clock.LeastSignificantFirst).
		AddPartition("beat", 4).
		PulseWhen("downbeat", clock.PartitionEquals{Name: "beat", Value: 0}).
		Build()
	require.NoError(t, err)

	runID, err := st.Record(context.Background(), c, "Metronome", ticks)
	require.NoError(t, err)
	return dbPath, runID
}

func TestTraceNonExistentDatabase(t *testing.T) {
	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewTraceCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"/nonexistent/path/trace.db"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, buf.String(), "not found")
}

func TestTraceListsRuns(t *testing.T) {
	dbPath, runID := recordTestRun(t, 8)

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewTraceCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{dbPath})

	err := cmd.Execute()
	require.NoError(t, err)
	assert.Contains(t, buf.String(), runID)
	assert.Contains(t, buf.String(), "8 outcomes")
	assert.Contains(t, buf.String(), "Metronome")
}

func TestTraceListsRunsJSON(t *testing.T) {
	dbPath, runID := recordTestRun(t, 4)

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "json"}
	cmd := NewTraceCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{dbPath})

	err := cmd.Execute()
	require.NoError(t, err)

	var resp Response
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)

	data, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	var listing RunListing
	require.NoError(t, json.Unmarshal(data, &listing))
	require.Len(t, listing.Runs, 1)
	assert.Equal(t, runID, listing.Runs[0].ID)
	assert.Equal(t, 4, listing.Runs[0].Outcomes)
}

func TestTraceEmptyDatabase(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "empty.db")
	st, err := store.Open(dbPath)
	require.NoError(t, err)
	st.Close()

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewTraceCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{dbPath})

	err = cmd.Execute()
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "no runs recorded")
}

func TestTraceShowsRun(t *testing.T) {
	dbPath, runID := recordTestRun(t, 8)

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewTraceCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{dbPath, "--run", runID})

	err := cmd.Execute()
	require.NoError(t, err)

	output := buf.String()
	assert.Contains(t, output, "seq 1: tick=1 epoch=0")
	assert.Contains(t, output, "seq 4: tick=4 epoch=0  downbeat")
	assert.Contains(t, output, "seq 8: tick=8 epoch=0  downbeat")
}

func TestTraceShowsRunJSON(t *testing.T) {
	dbPath, runID := recordTestRun(t, 4)

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "json"}
	cmd := NewTraceCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{dbPath, "--run", runID})

	err := cmd.Execute()
	require.NoError(t, err)

	var resp Response
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)

	data, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	var listing TraceListing
	require.NoError(t, json.Unmarshal(data, &listing))
	assert.Equal(t, runID, listing.RunID)
	require.Len(t, listing.Outcomes, 4)
	assert.Equal(t, "4", listing.Outcomes[3].Tick)
	assert.Equal(t, []string{"downbeat"}, listing.Outcomes[3].Pulses)
}
