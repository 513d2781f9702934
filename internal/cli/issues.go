package cli

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/phpnarrow/internal/issue"
	"github.com/roach88/phpnarrow/internal/store"
)

// IssuesOptions holds flags for the issues command.
type IssuesOptions struct {
	*RootOptions
	Counts bool
}

// IssuesResult is the stored outcome of one run.
type IssuesResult struct {
	Run    store.Run          `json:"run"`
	Issues []issue.Issue      `json:"issues"`
	Counts map[issue.Kind]int `json:"counts,omitempty"`
}

// NewIssuesCommand creates the issues command.
func NewIssuesCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &IssuesOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "issues [run-id]",
		Short: "List the issues a run recorded",
		Long: `List the issues stored for a run, in the order they were reported.
Without a run id the latest run is shown.

Examples:
  phpnarrow issues --db runs.db
  phpnarrow issues 01928c3e-... --db runs.db --counts`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			runID := ""
			if len(args) == 1 {
				runID = args[0]
			}
			return runIssues(cmd.Context(), opts, runID, cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Counts, "counts", false, "include per-kind counts")
	return cmd
}

func runIssues(ctx context.Context, opts *IssuesOptions, runID string, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	f := newFormatter(opts.RootOptions, cmd)

	if opts.DB == ":memory:" {
		_ = f.Error(ErrCodeStore, "--db is required", nil)
		return NewExitError(ExitCommandError, "--db is required")
	}
	st, err := store.Open(opts.DB)
	if err != nil {
		_ = f.Error(ErrCodeStore, "failed to open store", err.Error())
		return WrapExitError(ExitCommandError, "failed to open store", err)
	}
	defer st.Close()

	var run store.Run
	if runID == "" {
		var ok bool
		run, ok, err = st.LatestRun(ctx)
		if err == nil && !ok {
			_ = f.Error(ErrCodeNoRuns, "store has no runs", nil)
			return NewExitError(ExitFailure, "store has no runs")
		}
	} else {
		run, err = st.ReadRun(ctx, runID)
		if errors.Is(err, sql.ErrNoRows) {
			msg := fmt.Sprintf("run %s not found", runID)
			_ = f.Error(ErrCodeNoRuns, msg, nil)
			return NewExitError(ExitFailure, msg)
		}
	}
	if err != nil {
		_ = f.Error(ErrCodeStore, "failed to read run", err.Error())
		return WrapExitError(ExitCommandError, "failed to read run", err)
	}

	result := IssuesResult{Run: run}
	if result.Issues, err = st.ReadIssues(ctx, run.ID); err != nil {
		return WrapExitError(ExitCommandError, "failed to read issues", err)
	}
	if opts.Counts {
		if result.Counts, err = st.CountIssues(ctx, run.ID); err != nil {
			return WrapExitError(ExitCommandError, "failed to count issues", err)
		}
	}

	if opts.Format == "json" {
		return f.JSON(CLIResponse{Status: "ok", Data: result})
	}

	f.Textf("Run %s (%s, PHP %d): %d issue(s)", run.ID, run.Name, run.PHPVersion, len(result.Issues))
	for _, is := range result.Issues {
		f.Textf("  %s", is)
	}
	if opts.Counts {
		for _, k := range issue.Kinds() {
			if n := result.Counts[k]; n > 0 {
				f.Textf("  %-40s %d", k, n)
			}
		}
	}
	return nil
}
