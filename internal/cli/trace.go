package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/beeclock/internal/store"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	RunID string
}

// RunListing is the trace command's payload when listing runs.
type RunListing struct {
	Runs []RunInfo `json:"runs"`
}

// RunInfo describes one recorded run.
type RunInfo struct {
	ID         string `json:"id"`
	CreatedAt  string `json:"created_at"`
	Definition string `json:"definition"`
	Outcomes   int    `json:"outcomes"`
}

// TraceListing is the trace command's payload for a single run.
type TraceListing struct {
	RunID    string       `json:"run_id"`
	Outcomes []TraceEntry `json:"outcomes"`
}

// TraceEntry is one recorded tick.
type TraceEntry struct {
	Seq        uint64   `json:"seq"`
	Tick       string   `json:"tick"`
	Epoch      string   `json:"epoch"`
	Overflowed bool     `json:"overflowed,omitempty"`
	Pulses     []string `json:"pulses,omitempty"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{}

	cmd := &cobra.Command{
		Use:   "trace <database>",
		Short: "Inspect recorded clock traces",
		Long: `List the runs recorded in a trace database, or print one run's full
trace with --run.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(rootOpts, opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.RunID, "run", "", "print the full trace of this run")

	return cmd
}

func runTrace(rootOpts *RootOptions, opts *TraceOptions, dbPath string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    rootOpts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   rootOpts.Verbose,
	}

	if _, err := os.Stat(dbPath); errors.Is(err, os.ErrNotExist) {
		_ = formatter.Error(ErrCodeNotFound, fmt.Sprintf("database not found: %s", dbPath))
		return NewExitError(ExitCommandError, "database not found")
	}

	st, err := store.Open(dbPath)
	if err != nil {
		_ = formatter.Error(ErrCodeGeneric, err.Error())
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if opts.RunID == "" {
		return listRuns(ctx, formatter, st)
	}
	return showRun(ctx, formatter, st, opts.RunID)
}

func listRuns(ctx context.Context, formatter *OutputFormatter, st *store.Store) error {
	runs, err := st.ListRuns(ctx)
	if err != nil {
		_ = formatter.Error(ErrCodeGeneric, err.Error())
		return WrapExitError(ExitCommandError, "failed to list runs", err)
	}

	listing := RunListing{Runs: make([]RunInfo, len(runs))}
	for i, run := range runs {
		listing.Runs[i] = RunInfo{
			ID:         run.ID,
			CreatedAt:  run.CreatedAt,
			Definition: run.Definition,
			Outcomes:   run.Outcomes,
		}
	}

	if formatter.Format == "json" {
		return formatter.Success(listing)
	}

	if len(listing.Runs) == 0 {
		fmt.Fprintln(formatter.Writer, "no runs recorded")
		return nil
	}
	for _, run := range listing.Runs {
		fmt.Fprintf(formatter.Writer, "%s  %s  %d outcomes  %s\n",
			run.ID, run.CreatedAt, run.Outcomes, run.Definition)
	}
	return nil
}

func showRun(ctx context.Context, formatter *OutputFormatter, st *store.Store, runID string) error {
	trace, err := st.ReadRun(ctx, runID)
	if err != nil {
		_ = formatter.Error(ErrCodeGeneric, err.Error())
		return WrapExitError(ExitCommandError, "failed to read run", err)
	}

	listing := TraceListing{RunID: runID, Outcomes: make([]TraceEntry, len(trace))}
	for i, outcome := range trace {
		listing.Outcomes[i] = TraceEntry{
			Seq:        outcome.Seq,
			Tick:       fmt.Sprintf("%d", outcome.Tick),
			Epoch:      fmt.Sprintf("%d", outcome.Epoch),
			Overflowed: outcome.Overflowed,
			Pulses:     outcome.Pulses,
		}
	}

	if formatter.Format == "json" {
		return formatter.Success(listing)
	}

	for _, entry := range listing.Outcomes {
		line := fmt.Sprintf("seq %d: tick=%s epoch=%s", entry.Seq, entry.Tick, entry.Epoch)
		if entry.Overflowed {
			line += " overflowed"
		}
		if len(entry.Pulses) > 0 {
			line += "  " + strings.Join(entry.Pulses, ", ")
		}
		fmt.Fprintln(formatter.Writer, line)
	}
	return nil
}
