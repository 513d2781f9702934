package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/phpnarrow/internal/harness"
)

// ValidationResult holds the outcome of validating one scenario file.
type ValidationResult struct {
	File    string `json:"file"`
	Valid   bool   `json:"valid"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <scenario|dir>...",
		Short: "Validate scenarios without running them",
		Long: `Check scenario files against the scenario schema and build their types,
paths and assertions, without reconciling anything.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args, cmd)
		},
	}
	return cmd
}

func runValidate(opts *RootOptions, args []string, cmd *cobra.Command) error {
	f := newFormatter(opts, cmd)

	files, err := collectScenarioFiles(args, "")
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to find scenarios", err)
	}

	results := make([]ValidationResult, 0, len(files))
	invalid := 0
	for _, file := range files {
		vr := ValidationResult{File: file, Valid: true}
		if _, err := harness.LoadScenario(file); err != nil {
			invalid++
			vr.Valid = false
			vr.Message = err.Error()
			var le *harness.LoadError
			if errors.As(err, &le) {
				vr.Code = le.Code
			}
			f.Textf("✗ %s", err)
		} else {
			f.VerboseLog("ok %s", file)
		}
		results = append(results, vr)
	}

	if opts.Format == "json" {
		resp := CLIResponse{Status: "ok", Data: results}
		if invalid > 0 {
			resp.Status = "error"
			resp.Error = &CLIError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("%d invalid scenario(s)", invalid)}
		}
		if err := f.JSON(resp); err != nil {
			return err
		}
	} else if invalid == 0 {
		f.Textf("✓ %d scenario(s) valid", len(files))
	}

	if invalid > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d invalid scenario(s)", invalid))
	}
	return nil
}
