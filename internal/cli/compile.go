package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/motionchart/internal/compiler"
	"github.com/roach88/motionchart/internal/ir"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Output string // output file path
}

// CompiledChart is a chart IR with its content hash.
type CompiledChart struct {
	Hash  string       `json:"hash"`
	Chart ir.ChartSpec `json:"chart"`
}

// CompilationResult holds the compiled charts.
type CompilationResult struct {
	IRVersion string          `json:"ir_version"`
	Charts    []CompiledChart `json:"charts"`
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile <charts-dir>",
		Short: "Compile CUE charts to IR",
		Long: `Compile CUE charts to the chart IR.

Every chart is validated and emitted as JSON together with its content
hash, the same hash recorded with each run.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file path")

	return cmd
}

func runCompile(opts *CompileOptions, chartsDir string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	loadResult, loadErrors := compiler.LoadCharts(chartsDir, compiler.LoadModeCollectAll)
	if loadResult == nil {
		code, message := describeLoadError(loadErrors)
		return outputCompileError(formatter, code, message)
	}

	formatter.VerboseLog("Found %d CUE file(s) in %s", loadResult.FileCount, chartsDir)

	var issues []ChartIssue
	for _, err := range loadErrors {
		issues = append(issues, issueFromLoadError(err))
	}
	for _, chart := range loadResult.Charts {
		formatter.VerboseLog("Compiling chart: %s", chart.Name)
		issues = append(issues, validateChart(chart)...)
	}
	if len(issues) > 0 {
		return outputCompileErrors(formatter, issues)
	}

	result := &CompilationResult{
		IRVersion: ir.IRVersion,
		Charts:    make([]CompiledChart, 0, len(loadResult.Charts)),
	}
	for _, chart := range loadResult.Charts {
		hash, err := ir.ChartHash(chart)
		if err != nil {
			return outputCompileError(formatter, compiler.ErrCodeGeneric, fmt.Sprintf("hashing chart %s: %v", chart.Name, err))
		}
		result.Charts = append(result.Charts, CompiledChart{Hash: hash, Chart: chart})
	}

	if opts.Output != "" {
		if err := writeIRToFile(result, opts.Output); err != nil {
			return outputCompileError(formatter, compiler.ErrCodeWriteFailed, fmt.Sprintf("writing output file: %v", err))
		}
	}

	return outputCompileSuccess(formatter, result, opts.Output)
}

// outputCompileSuccess outputs successful compilation results.
func outputCompileSuccess(formatter *OutputFormatter, result *CompilationResult, outputFile string) error {
	if formatter.JSON() {
		return formatter.Success(result)
	}

	fmt.Fprintf(formatter.Writer, "✓ Compiled %d chart(s)\n\n", len(result.Charts))
	for _, c := range result.Charts {
		policy := c.Chart.Completion
		if policy == "" {
			policy = ir.CompletionAll
		}
		fmt.Fprintf(formatter.Writer, "  %s: %d node(s), completion %s, hash %s\n",
			c.Chart.Name, len(c.Chart.Nodes), policy, truncateID(c.Hash))
	}

	if outputFile != "" {
		fmt.Fprintf(formatter.Writer, "\nWrote chart IR to %s\n", outputFile)
	}
	return nil
}

// outputCompileError outputs a single compilation error.
// Compilation errors are command-level errors (exit code 2).
func outputCompileError(formatter *OutputFormatter, code, message string) error {
	_ = formatter.Error(code, message, nil)
	return NewExitError(ExitCommandError, fmt.Sprintf("%s: %s", code, message))
}

// outputCompileErrors outputs multiple compilation errors.
func outputCompileErrors(formatter *OutputFormatter, issues []ChartIssue) error {
	failure := NewExitError(ExitCommandError, fmt.Sprintf("compilation failed with %d error(s)", len(issues)))

	if formatter.JSON() {
		if err := formatter.Encode(CLIResponse{
			Status: "error",
			Error:  &CLIError{Code: issues[0].Code, Message: issues[0].Message},
			Data:   issues,
		}); err != nil {
			return err
		}
		return failure
	}

	fmt.Fprintln(formatter.Writer, "✗ Compilation failed")
	fmt.Fprintln(formatter.Writer)
	for _, issue := range issues {
		if issue.Chart != "" {
			fmt.Fprintf(formatter.Writer, "chart %s\n", issue.Chart)
		} else if issue.Line > 0 {
			fmt.Fprintf(formatter.Writer, "line %d\n", issue.Line)
		}
		fmt.Fprintf(formatter.Writer, "  %s: %s\n\n", issue.Code, issue.Message)
	}
	return failure
}

// writeIRToFile writes the compilation result as indented JSON.
// Canonical JSON is used only for hashing.
func writeIRToFile(result *CompilationResult, filename string) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling IR: %w", err)
	}
	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("writing file: %w", err)
	}
	return nil
}

// truncateID truncates a long ID or hash for display.
func truncateID(id string) string {
	if len(id) <= 16 {
		return id
	}
	return id[:8] + "..." + id[len(id)-8:]
}
