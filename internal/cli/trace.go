package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"

	"github.com/roach88/phpnarrow/internal/harness"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Query string // gjson path into the snapshot
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace <scenario>",
		Short: "Print the trace of a scenario run",
		Long: `Run a scenario in a throwaway store and print its trace snapshot, the
same JSON that golden files hold. --query selects part of it with a gjson
path.

Examples:
  phpnarrow trace keyed.yaml
  phpnarrow trace keyed.yaml --query 'trace.0.types'
  phpnarrow trace keyed.yaml --query 'issues.#.kind'`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Query, "query", "q", "", "gjson path to select from the trace")
	return cmd
}

func runTrace(opts *TraceOptions, file string, cmd *cobra.Command) error {
	f := newFormatter(opts.RootOptions, cmd)

	s, err := harness.LoadScenario(file)
	if err != nil {
		_ = f.Error(ErrCodeLoadFailed, err.Error(), nil)
		return WrapExitError(ExitFailure, "failed to load scenario", err)
	}
	result, err := harness.Run(s)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to run scenario", err)
	}
	data, err := harness.MarshalSnapshot(s.Name, result)
	if err != nil {
		return err
	}

	if opts.Query == "" {
		_, err = cmd.OutOrStdout().Write(data)
		return err
	}

	res := gjson.GetBytes(data, opts.Query)
	if !res.Exists() {
		msg := fmt.Sprintf("query %q matched nothing", opts.Query)
		_ = f.Error(ErrCodeLoadFailed, msg, nil)
		return NewExitError(ExitFailure, msg)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), res.String())
	return err
}
