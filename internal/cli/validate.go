package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/beeclock/internal/clock"
)

// ClockSummary describes one validated clock definition.
type ClockSummary struct {
	Name       string `json:"name"`
	Order      string `json:"order"`
	Partitions int    `json:"partitions"`
	Pulses     int    `json:"pulses"`
	Valid      bool   `json:"valid"`
	Error      string `json:"error,omitempty"`
}

// ValidationResult holds validation results for a definitions directory.
type ValidationResult struct {
	Valid  bool           `json:"valid"`
	Clocks []ClockSummary `json:"clocks"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <definitions-dir>",
		Short: "Validate clock definitions without running them",
		Long: `Compile every clock definition in a directory and run the kernel's
build-time validation, reporting each clock's verdict without ticking.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, defsDir string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	loadResult, err := LoadDefinitions(defsDir)
	if err != nil {
		var loadErr *LoadError
		if errors.As(err, &loadErr) {
			_ = formatter.Error(loadErr.Code, loadErr.Message)
			return NewExitError(ExitCommandError, loadErr.Error())
		}
		_ = formatter.Error(ErrCodeGeneric, err.Error())
		return NewExitError(ExitCommandError, err.Error())
	}

	formatter.VerboseLog("found %d CUE file(s) in %s", loadResult.FileCount, defsDir)

	result := ValidationResult{Valid: true}
	for _, def := range loadResult.Definitions {
		summary := ClockSummary{
			Name:       def.Name,
			Order:      def.Order.String(),
			Partitions: len(def.Partitions),
			Pulses:     len(def.Pulses),
			Valid:      true,
		}
		if _, buildErr := def.Build(); buildErr != nil {
			summary.Valid = false
			summary.Error = buildErr.Error()
			result.Valid = false

			var be *clock.BuildError
			if errors.As(buildErr, &be) {
				summary.Error = fmt.Sprintf("%s: %s", be.Code, be.Message)
			}
		}
		result.Clocks = append(result.Clocks, summary)
	}

	if opts.Format == "json" {
		if err := formatter.Success(result); err != nil {
			return err
		}
	} else {
		for _, summary := range result.Clocks {
			if summary.Valid {
				fmt.Fprintf(formatter.Writer, "ok   %s (%d partitions, %d pulses, %s)\n",
					summary.Name, summary.Partitions, summary.Pulses, summary.Order)
			} else {
				fmt.Fprintf(formatter.Writer, "FAIL %s: %s\n", summary.Name, summary.Error)
			}
		}
	}

	if !result.Valid {
		return NewExitError(ExitFailure, "validation failed")
	}
	return nil
}
