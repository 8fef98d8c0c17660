package compiler

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"
	"cuelang.org/go/cue/token"

	"github.com/roach88/motionchart/internal/ir"
)

// LoadMode controls how errors are handled during chart loading.
type LoadMode int

const (
	// LoadModeFailFast stops on the first error encountered.
	LoadModeFailFast LoadMode = iota
	// LoadModeCollectAll collects all errors before returning.
	LoadModeCollectAll
)

// Load error codes (E001-E099).
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeScanError   = "E002" // Directory scan error
	ErrCodeNoFiles     = "E003" // No CUE files found
	ErrCodeLoadFailed  = "E004" // CUE load failed
	ErrCodeNotFound    = "E005" // Path not found
	ErrCodeBuildFailed = "E006" // CUE build failed
	ErrCodeWriteFailed = "E007" // File write error
	ErrCodeNoCharts    = "E008" // No chart struct in the package
)

// LoadResult contains the charts loaded from a directory.
type LoadResult struct {
	Charts    []ir.ChartSpec // In declaration order
	CUEValue  cue.Value      // The raw CUE value for additional processing
	FileCount int            // Number of CUE files found
}

// Chart finds a loaded chart by name.
func (r *LoadResult) Chart(name string) (ir.ChartSpec, bool) {
	for _, c := range r.Charts {
		if c.Name == name {
			return c, true
		}
	}
	return ir.ChartSpec{}, false
}

// ChartNames returns the names of the loaded charts.
func (r *LoadResult) ChartNames() []string {
	names := make([]string, len(r.Charts))
	for i, c := range r.Charts {
		names[i] = c.Name
	}
	return names
}

// LoadError represents an error that occurred during chart loading.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// LoadCharts loads and compiles every chart in the CUE package at dir.
// Charts live under the package-level "chart" struct.
//
// If mode is LoadModeFailFast, returns on first error.
// If mode is LoadModeCollectAll, collects all errors.
func LoadCharts(dir string, mode LoadMode) (*LoadResult, []error) {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("charts directory not found: %s", dir)}}
	}
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing charts directory: %v", err)}}
	}
	if !info.IsDir() {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("not a directory: %s", dir)}}
	}

	cueFiles, err := FindCUEFiles(dir)
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeScanError, Message: fmt.Sprintf("error scanning directory: %v", err)}}
	}
	if len(cueFiles) == 0 {
		return nil, []error{&LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("no CUE files found in %s", dir)}}
	}

	ctx := cuecontext.New()
	instances := load.Instances([]string{"."}, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return nil, []error{&LoadError{Code: ErrCodeLoadFailed, Message: "no CUE instances loaded"}}
	}
	inst := instances[0]
	if inst.Err != nil {
		return nil, []error{&LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("loading CUE files: %v", inst.Err)}}
	}

	value := ctx.BuildInstance(inst)
	if err := value.Err(); err != nil {
		return nil, []error{&LoadError{Code: ErrCodeBuildFailed, Message: fmt.Sprintf("building CUE value: %v", err)}}
	}

	result := &LoadResult{
		CUEValue:  value,
		FileCount: len(cueFiles),
	}
	return result, collectCharts(result, value, mode)
}

// LoadChartsString compiles charts from CUE source. Used by tests and for
// charts embedded in other files.
func LoadChartsString(src string, mode LoadMode) (*LoadResult, []error) {
	value := cuecontext.New().CompileString(src)
	if err := value.Err(); err != nil {
		return nil, []error{&LoadError{Code: ErrCodeBuildFailed, Message: fmt.Sprintf("building CUE value: %v", err)}}
	}
	result := &LoadResult{CUEValue: value}
	return result, collectCharts(result, value, mode)
}

func collectCharts(result *LoadResult, value cue.Value, mode LoadMode) []error {
	var errs []error

	chartsVal := value.LookupPath(cue.ParsePath("chart"))
	if !chartsVal.Exists() {
		return []error{&LoadError{Code: ErrCodeNoCharts, Message: "no chart struct found"}}
	}

	iter, err := chartsVal.Fields()
	if err != nil {
		return []error{&LoadError{Code: ErrCodeGeneric, Message: fmt.Sprintf("iterating charts: %v", err)}}
	}
	for iter.Next() {
		spec, compileErr := CompileChart(iter.Value())
		if compileErr != nil {
			errs = append(errs, convertCompileError(compileErr, "chart."+iter.Selector().String()))
			if mode == LoadModeFailFast {
				return errs
			}
			continue
		}
		result.Charts = append(result.Charts, *spec)
	}

	if len(result.Charts) == 0 && len(errs) == 0 {
		errs = append(errs, &LoadError{Code: ErrCodeNoCharts, Message: "no charts found"})
	}
	return errs
}

// FindCUEFiles walks the directory and returns all .cue file paths.
func FindCUEFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && filepath.Ext(path) == ".cue" {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

// convertCompileError converts a compiler error to a LoadError with position info.
func convertCompileError(err error, context string) *LoadError {
	var compileErr *CompileError
	if errors.As(err, &compileErr) {
		return &LoadError{
			Code:    MapFieldToErrorCode(compileErr.Field),
			Message: compileErr.Message,
			Pos:     compileErr.Pos,
		}
	}
	return &LoadError{
		Code:    ErrCodeGeneric,
		Message: fmt.Sprintf("%s: %v", context, err),
	}
}

// MapFieldToErrorCode maps a compiler error field to an error code.
// Fields are paths like "node", "node.pick.kind" or "completion".
func MapFieldToErrorCode(field string) string {
	last := field[strings.LastIndexByte(field, '.')+1:]
	switch {
	case field == "node":
		return ErrChartNoNodes
	case field == "completion":
		return ErrInvalidCompletion
	case last == "kind":
		return ErrUnknownKind
	case last == "start" || last == "end":
		return ErrConditionSyntax
	case last == "message" || last == "error" || last == "value":
		return ErrInvalidPayload
	default:
		return ErrCodeGeneric
	}
}
