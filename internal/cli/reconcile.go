package cli

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/phpnarrow/internal/harness"
	"github.com/roach88/phpnarrow/internal/store"
	"github.com/roach88/phpnarrow/internal/testutil"
)

// ReconcileOptions holds flags for the reconcile command.
type ReconcileOptions struct {
	*RootOptions
	Update bool   // regenerate golden files
	Filter string // scenario name glob
}

// ScenarioResult is the outcome of one scenario file.
type ScenarioResult struct {
	Name   string   `json:"name"`
	RunID  string   `json:"run_id,omitempty"`
	Pass   bool     `json:"pass"`
	Issues int      `json:"issues"`
	Errors []string `json:"errors,omitempty"`
}

// ReconcileResult summarises a reconcile invocation.
type ReconcileResult struct {
	Scenarios []ScenarioResult `json:"scenarios"`
	Passed    int              `json:"passed"`
	Failed    int              `json:"failed"`
	Total     int              `json:"total"`
}

// NewReconcileCommand creates the reconcile command.
func NewReconcileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReconcileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "reconcile <scenario|dir>...",
		Short: "Run reconciliation scenarios",
		Long: `Run reconciliation scenarios and record each run in the store.

Each scenario's expectations are checked. When golden/<name>.golden exists
next to a scenario, its trace is compared too.

Exit codes:
  0 - All scenarios passed
  1 - One or more scenarios failed
  2 - Command error (missing paths, unusable store)

Examples:
  phpnarrow reconcile ./scenarios
  phpnarrow reconcile ./scenarios --filter "keyed_*"
  phpnarrow reconcile ./scenarios --update
  phpnarrow reconcile one.yaml --db runs.db --format json`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReconcile(cmd.Context(), opts, args, cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Update, "update", false, "regenerate golden files")
	cmd.Flags().StringVar(&opts.Filter, "filter", "", "filter scenarios by glob pattern")

	return cmd
}

func runReconcile(ctx context.Context, opts *ReconcileOptions, args []string, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	f := newFormatter(opts.RootOptions, cmd)

	files, err := collectScenarioFiles(args, opts.Filter)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to find scenarios", err)
	}

	st, err := store.Open(opts.DB)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open store", err)
	}
	defer st.Close()

	last, err := st.MaxSeq(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read store", err)
	}
	h := harness.New(st,
		harness.WithRunIDs(store.UUIDv7Generator{}),
		harness.WithClock(testutil.NewSeqClockAt(last)),
		harness.WithLogger(newLogger(opts.RootOptions, cmd.ErrOrStderr())),
	)
	f.VerboseLog("Found %d scenario(s), store %s at seq %d", len(files), opts.DB, last)

	result := ReconcileResult{
		Scenarios: make([]ScenarioResult, 0, len(files)),
		Total:     len(files),
	}
	for _, file := range files {
		sr := reconcileScenario(ctx, h, file, opts, f)
		result.Scenarios = append(result.Scenarios, sr)
		if sr.Pass {
			result.Passed++
		} else {
			result.Failed++
		}
	}

	if opts.Format == "json" {
		resp := CLIResponse{Status: "ok", Data: result}
		if result.Failed > 0 {
			resp.Status = "error"
			resp.Error = &CLIError{
				Code:    ErrCodeScenarioFailed,
				Message: fmt.Sprintf("%d scenario(s) failed", result.Failed),
			}
		}
		if err := f.JSON(resp); err != nil {
			return err
		}
	} else {
		f.Textf("")
		f.Textf("Summary: %d passed, %d failed, %d total", result.Passed, result.Failed, result.Total)
	}

	if result.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d scenario(s) failed", result.Failed))
	}
	return nil
}

func reconcileScenario(ctx context.Context, h *harness.Harness, file string, opts *ReconcileOptions, f *OutputFormatter) ScenarioResult {
	fail := func(name string, errs ...string) ScenarioResult {
		f.Textf("✗ %s", name)
		for _, e := range errs {
			f.Textf("  %s", e)
		}
		return ScenarioResult{Name: name, Errors: errs}
	}

	s, err := harness.LoadScenario(file)
	if err != nil {
		return fail(filepath.Base(file), err.Error())
	}

	result, err := h.Run(ctx, s)
	if err != nil {
		return fail(s.Name, fmt.Sprintf("execution failed: %v", err))
	}

	out := ScenarioResult{
		Name:   s.Name,
		RunID:  result.RunID,
		Pass:   result.Pass,
		Issues: len(result.Issues),
		Errors: result.Errors,
	}
	if !out.Pass {
		failed := fail(s.Name, result.Errors...)
		failed.RunID, failed.Issues = out.RunID, out.Issues
		return failed
	}

	goldenPath := goldenFilePath(file)
	snap, err := goldenSnapshot(s, result)
	if err != nil {
		return fail(s.Name, err.Error())
	}

	if opts.Update {
		if err := writeGolden(goldenPath, snap); err != nil {
			return fail(s.Name, err.Error())
		}
		f.Textf("✓ %s (golden updated)", s.Name)
		return out
	}

	want, err := os.ReadFile(goldenPath)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return fail(s.Name, fmt.Sprintf("failed to read golden file: %v", err))
	case !bytes.Equal(want, snap):
		failed := fail(s.Name, "trace does not match golden file (run with --update to regenerate)")
		failed.RunID, failed.Issues = out.RunID, out.Issues
		return failed
	}

	f.Textf("✓ %s", s.Name)
	return out
}

// goldenSnapshot renders result with the scenario's fixed run id, so a
// store-assigned id does not break the comparison.
func goldenSnapshot(s *harness.Scenario, result *harness.Result) ([]byte, error) {
	fixed := *result
	fixed.RunID = testutil.NewFixedRunIDGenerator(s.RunID).Generate()
	return harness.MarshalSnapshot(s.Name, &fixed)
}

// goldenFilePath returns the path to the golden file for a scenario.
func goldenFilePath(scenarioFile string) string {
	dir := filepath.Dir(scenarioFile)
	base := filepath.Base(scenarioFile)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(dir, "golden", name+".golden")
}

func writeGolden(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create golden directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write golden file: %w", err)
	}
	return nil
}

// collectScenarioFiles expands directories into their .yaml/.yml files,
// sorted by path. Files named directly are kept even if the filter
// does not match them.
func collectScenarioFiles(args []string, filter string) ([]string, error) {
	var files []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			files = append(files, arg)
			continue
		}
		found, err := findScenarioFiles(arg, filter)
		if err != nil {
			return nil, err
		}
		files = append(files, found...)
	}
	return files, nil
}

// findScenarioFiles walks dir for scenario files, skipping golden/
// directories.
func findScenarioFiles(dir, filter string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if info.Name() == "golden" {
				return filepath.SkipDir
			}
			return nil
		}

		ext := filepath.Ext(path)
		if ext != ".yaml" && ext != ".yml" {
			return nil
		}
		if filter != "" {
			name := strings.TrimSuffix(filepath.Base(path), ext)
			matched, err := filepath.Match(filter, name)
			if err != nil {
				return fmt.Errorf("invalid filter pattern: %w", err)
			}
			if !matched {
				return nil
			}
		}
		files = append(files, path)
		return nil
	})
	return files, err
}
