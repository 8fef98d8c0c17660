package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/motionchart/internal/compiler"
	"github.com/roach88/motionchart/internal/ir"
	"github.com/roach88/motionchart/internal/monitor"
)

// ChartIssue is one problem found in a chart package.
type ChartIssue struct {
	Chart   string `json:"chart,omitempty"`
	Code    string `json:"code"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
	Line    int    `json:"line,omitempty"`
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid  bool         `json:"valid"`
	Charts []string     `json:"charts"`
	Errors []ChartIssue `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <charts-dir>",
		Short: "Validate charts without running them",
		Long: `Compile every chart in a CUE package and check it against the
chart schema: names, kinds, payload fields, conditions and completion policy.

Exit codes:
  0 - All charts valid
  1 - One or more charts invalid
  2 - Command error (directory not found, no CUE files, etc.)`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, chartsDir string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	loadResult, loadErrors := compiler.LoadCharts(chartsDir, compiler.LoadModeCollectAll)
	if loadResult == nil {
		code, message := describeLoadError(loadErrors)
		_ = formatter.Error(code, message, nil)
		return NewExitError(ExitCommandError, fmt.Sprintf("%s: %s", code, message))
	}

	formatter.VerboseLog("Found %d CUE file(s) in %s", loadResult.FileCount, chartsDir)

	result := ValidationResult{Valid: true, Charts: loadResult.ChartNames()}
	for _, err := range loadErrors {
		result.Errors = append(result.Errors, issueFromLoadError(err))
	}
	for _, chart := range loadResult.Charts {
		formatter.VerboseLog("Validating chart: %s", chart.Name)
		result.Errors = append(result.Errors, validateChart(chart)...)
	}
	result.Valid = len(result.Errors) == 0

	if !result.Valid {
		return outputValidationErrors(formatter, result)
	}
	if formatter.JSON() {
		return formatter.Success(result)
	}
	fmt.Fprintf(formatter.Writer, "✓ All charts valid (%d)\n", len(result.Charts))
	return nil
}

// validateChart runs schema validation against the default kind registry.
func validateChart(chart ir.ChartSpec) []ChartIssue {
	var issues []ChartIssue
	for _, ve := range compiler.Validate(&chart, monitor.DefaultRegistry) {
		issues = append(issues, ChartIssue{
			Chart:   chart.Name,
			Code:    ve.Code,
			Field:   ve.Field,
			Message: ve.Message,
		})
	}
	return issues
}

// issueFromLoadError converts a load or compile error into an issue.
func issueFromLoadError(err error) ChartIssue {
	var loadErr *compiler.LoadError
	if errors.As(err, &loadErr) {
		issue := ChartIssue{Code: loadErr.Code, Message: loadErr.Message}
		if loadErr.Pos.IsValid() {
			issue.Line = loadErr.Pos.Line()
		}
		return issue
	}
	return ChartIssue{Code: compiler.ErrCodeGeneric, Message: err.Error()}
}

// describeLoadError returns the code and message of the first load error.
func describeLoadError(errs []error) (string, string) {
	if len(errs) == 0 {
		return compiler.ErrCodeGeneric, "no charts loaded"
	}
	issue := issueFromLoadError(errs[0])
	return issue.Code, issue.Message
}

// outputValidationErrors outputs every issue found.
func outputValidationErrors(formatter *OutputFormatter, result ValidationResult) error {
	failure := NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(result.Errors)))

	if formatter.JSON() {
		first := result.Errors[0]
		if err := formatter.Encode(CLIResponse{
			Status: "error",
			Data:   result,
			Error:  &CLIError{Code: first.Code, Message: first.Message},
		}); err != nil {
			return err
		}
		return failure
	}

	fmt.Fprintln(formatter.Writer, "✗ Validation failed")
	fmt.Fprintln(formatter.Writer)
	for _, issue := range result.Errors {
		switch {
		case issue.Chart != "":
			fmt.Fprintf(formatter.Writer, "chart %s\n", issue.Chart)
		case issue.Line > 0:
			fmt.Fprintf(formatter.Writer, "line %d\n", issue.Line)
		}
		if issue.Field != "" {
			fmt.Fprintf(formatter.Writer, "  %s: %s: %s\n\n", issue.Code, issue.Field, issue.Message)
		} else {
			fmt.Fprintf(formatter.Writer, "  %s: %s\n\n", issue.Code, issue.Message)
		}
	}
	return failure
}
