package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/beeclock/internal/clock"
	"github.com/roach88/beeclock/internal/store"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	Clock    string
	Ticks    uint64
	Database string
}

// FiringEvent is one fired-pulse tick in the run command's output.
type FiringEvent struct {
	Tick   string   `json:"tick"`
	Epoch  string   `json:"epoch"`
	Pulses []string `json:"pulses"`
}

// RunSummary is the run command's JSON payload.
type RunSummary struct {
	Clock   string        `json:"clock"`
	Ticks   uint64        `json:"ticks"`
	Firings []FiringEvent `json:"firings"`
	Final   FinalSnapshot `json:"final"`
	RunID   string        `json:"run_id,omitempty"`
}

// FinalSnapshot is the clock's state after the last tick. Partitions
// keep significance order.
type FinalSnapshot struct {
	Tick       string           `json:"tick"`
	Epoch      string           `json:"epoch"`
	Partitions []PartitionState `json:"partitions"`
}

// PartitionState is one partition value in a FinalSnapshot.
type PartitionState struct {
	Name  string `json:"name"`
	Value uint64 `json:"value"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{}

	cmd := &cobra.Command{
		Use:   "run <definitions-dir>",
		Short: "Drive a clock for a number of ticks",
		Long: `Build a clock from its CUE definition and drive it, printing every
tick on which a pulse fired. With --record, the full trace is appended
to a SQLite database for later inspection.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClock(rootOpts, opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Clock, "clock", "", "clock name (required when multiple are defined)")
	cmd.Flags().Uint64Var(&opts.Ticks, "ticks", 60, "number of ticks to drive")
	cmd.Flags().StringVar(&opts.Database, "record", "", "record the trace to a SQLite database at this path")

	return cmd
}

func runClock(rootOpts *RootOptions, opts *RunOptions, defsDir string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    rootOpts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   rootOpts.Verbose,
	}

	// Configure logging based on verbose flag
	logLevel := slog.LevelInfo
	if rootOpts.Verbose {
		logLevel = slog.LevelDebug
	}
	handler := slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
		Level: logLevel,
	})
	logger := slog.New(handler)

	loadResult, err := LoadDefinitions(defsDir)
	if err != nil {
		var loadErr *LoadError
		if errors.As(err, &loadErr) {
			_ = formatter.Error(loadErr.Code, loadErr.Message)
			return NewExitError(ExitCommandError, loadErr.Error())
		}
		return WrapExitError(ExitCommandError, "failed to load definitions", err)
	}

	def, err := findDefinition(loadResult, opts.Clock)
	if err != nil {
		var loadErr *LoadError
		if errors.As(err, &loadErr) {
			_ = formatter.Error(loadErr.Code, loadErr.Message)
			return NewExitError(ExitCommandError, loadErr.Error())
		}
		return WrapExitError(ExitCommandError, "failed to select clock", err)
	}

	c, err := def.Build()
	if err != nil {
		_ = formatter.Error(ErrCodeInvalid, err.Error())
		return NewExitError(ExitFailure, err.Error())
	}

	logger.Debug("clock built",
		"clock", def.Name,
		"partitions", len(def.Partitions),
		"pulses", len(def.Pulses))

	// Setup signal handling for graceful interruption of long runs
	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, stop := signal.NotifyContext(parentCtx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if opts.Database != "" {
		return runRecorded(ctx, formatter, logger, opts, def.Name, c)
	}

	summary := RunSummary{Clock: def.Name, Ticks: opts.Ticks}
	sub := c.Subscribe()
	for i := uint64(0); i < opts.Ticks; i++ {
		if err := ctx.Err(); err != nil {
			logger.Info("run interrupted", "ticks_done", i)
			break
		}
		c.Tick()
	}
	for _, outcome := range sub.Drain() {
		if len(outcome.Pulses) == 0 {
			continue
		}
		summary.Firings = append(summary.Firings, firingEvent(outcome))
	}
	summary.Final = finalSnapshot(c.Snapshot())

	return outputRunSummary(formatter, &summary)
}

func runRecorded(ctx context.Context, formatter *OutputFormatter, logger *slog.Logger, opts *RunOptions, clockName string, c *clock.Clock) error {
	logger.Info("opening trace database", "path", opts.Database)
	st, err := store.Open(opts.Database)
	if err != nil {
		_ = formatter.Error(ErrCodeGeneric, err.Error())
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			logger.Error("error closing database", "error", closeErr)
		}
	}()

	sub := c.Subscribe()
	runID, err := st.Record(ctx, c, clockName, opts.Ticks)
	if err != nil {
		_ = formatter.Error(ErrCodeGeneric, err.Error())
		return WrapExitError(ExitCommandError, "failed to record run", err)
	}
	logger.Info("trace recorded", "run_id", runID, "ticks", opts.Ticks)

	summary := RunSummary{Clock: clockName, Ticks: opts.Ticks, RunID: runID}
	for _, outcome := range sub.Drain() {
		if len(outcome.Pulses) == 0 {
			continue
		}
		summary.Firings = append(summary.Firings, firingEvent(outcome))
	}
	summary.Final = finalSnapshot(c.Snapshot())

	return outputRunSummary(formatter, &summary)
}

func firingEvent(outcome clock.TickOutcome) FiringEvent {
	names := make([]string, len(outcome.Pulses))
	for i, p := range outcome.Pulses {
		names[i] = p.Name
	}
	return FiringEvent{
		Tick:   fmt.Sprintf("%d", outcome.Snapshot.Tick),
		Epoch:  fmt.Sprintf("%d", outcome.Snapshot.Epoch),
		Pulses: names,
	}
}

func finalSnapshot(snap clock.Snapshot) FinalSnapshot {
	partitions := make([]PartitionState, len(snap.Partitions))
	for i, p := range snap.Partitions {
		partitions[i] = PartitionState{Name: p.Name, Value: p.Value}
	}
	return FinalSnapshot{
		Tick:       fmt.Sprintf("%d", snap.Tick),
		Epoch:      fmt.Sprintf("%d", snap.Epoch),
		Partitions: partitions,
	}
}

func outputRunSummary(formatter *OutputFormatter, summary *RunSummary) error {
	if formatter.Format == "json" {
		return formatter.Success(summary)
	}

	for _, firing := range summary.Firings {
		fmt.Fprintf(formatter.Writer, "tick %s: %s\n", firing.Tick, strings.Join(firing.Pulses, ", "))
	}
	fmt.Fprintf(formatter.Writer, "final: tick=%s epoch=%s", summary.Final.Tick, summary.Final.Epoch)
	for _, p := range summary.Final.Partitions {
		fmt.Fprintf(formatter.Writer, " %s=%d", p.Name, p.Value)
	}
	fmt.Fprintln(formatter.Writer)
	if summary.RunID != "" {
		fmt.Fprintf(formatter.Writer, "recorded run %s\n", summary.RunID)
	}
	return nil
}
