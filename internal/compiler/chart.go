package compiler

import (
	"fmt"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/motionchart/internal/ir"
)

// nodeFields lists the fields a node may declare.
var nodeFields = map[string]bool{
	"kind":    true,
	"start":   true,
	"end":     true,
	"message": true,
	"error":   true,
	"value":   true,
}

// CompileChart parses a CUE value into a ChartSpec.
// Uses CUE SDK's Go API directly (not CLI subprocess).
//
// The CUE value should be the chart struct itself, e.g.:
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`chart: pick: { node: { ... } }`)
//	spec, err := CompileChart(v.LookupPath(cue.ParsePath("chart.pick")))
func CompileChart(v cue.Value) (*ir.ChartSpec, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	spec := &ir.ChartSpec{}

	labels := v.Path().Selectors()
	if len(labels) > 0 {
		spec.Name = strings.Trim(labels[len(labels)-1].String(), `"`)
	}

	var err error
	if spec.Description, err = optionalString(v, "description"); err != nil {
		return nil, err
	}
	if spec.Completion, err = optionalString(v, "completion"); err != nil {
		return nil, err
	}

	nodesVal := v.LookupPath(cue.ParsePath("node"))
	if !nodesVal.Exists() {
		return nil, &CompileError{
			Field:   "node",
			Message: "at least one node is required",
			Pos:     v.Pos(),
		}
	}

	iter, err := nodesVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}
	for iter.Next() {
		node, err := compileNode(iter.Label(), iter.Value())
		if err != nil {
			return nil, err
		}
		spec.Nodes = append(spec.Nodes, node)
	}

	if len(spec.Nodes) == 0 {
		return nil, &CompileError{
			Field:   "node",
			Message: "at least one node is required",
			Pos:     nodesVal.Pos(),
		}
	}

	return spec, nil
}

// compileNode parses one entry of the node struct.
func compileNode(name string, v cue.Value) (ir.NodeSpec, error) {
	node := ir.NodeSpec{Name: ir.NormalizeName(name)}
	field := "node." + name

	fields, err := v.Fields()
	if err != nil {
		return node, &CompileError{
			Field:   field,
			Message: "node must be a struct",
			Pos:     v.Pos(),
		}
	}
	for fields.Next() {
		if !nodeFields[fields.Label()] {
			return node, &CompileError{
				Field:   field + "." + fields.Label(),
				Message: "unknown node field",
				Pos:     fields.Value().Pos(),
			}
		}
	}

	kindVal := v.LookupPath(cue.ParsePath("kind"))
	if !kindVal.Exists() {
		return node, &CompileError{
			Field:   field + ".kind",
			Message: "kind is required",
			Pos:     v.Pos(),
		}
	}
	if node.Kind, err = kindVal.String(); err != nil {
		return node, &CompileError{
			Field:   field + ".kind",
			Message: "kind must be a string",
			Pos:     kindVal.Pos(),
		}
	}

	if node.Start, err = optionalString(v, "start"); err != nil {
		return node, err
	}
	if node.End, err = optionalString(v, "end"); err != nil {
		return node, err
	}
	if node.Message, err = optionalString(v, "message"); err != nil {
		return node, err
	}
	if node.Error, err = optionalString(v, "error"); err != nil {
		return node, err
	}
	if node.Value, err = trinaryField(v, field); err != nil {
		return node, err
	}

	return node, nil
}

// trinaryField reads "value", which may be written as a bool or as one of
// the strings "true", "false", "unknown".
func trinaryField(v cue.Value, field string) (string, error) {
	val := v.LookupPath(cue.ParsePath("value"))
	if !val.Exists() {
		return "", nil
	}
	switch val.IncompleteKind() {
	case cue.BoolKind:
		b, err := val.Bool()
		if err != nil {
			return "", formatCUEError(err)
		}
		if b {
			return "true", nil
		}
		return "false", nil
	case cue.StringKind:
		s, err := val.String()
		if err != nil {
			return "", formatCUEError(err)
		}
		return s, nil
	default:
		return "", &CompileError{
			Field:   field + ".value",
			Message: fmt.Sprintf("value must be a bool or string, got %v", val.IncompleteKind()),
			Pos:     val.Pos(),
		}
	}
}

// optionalString reads a string field that may be absent.
func optionalString(v cue.Value, path string) (string, error) {
	val := v.LookupPath(cue.ParsePath(path))
	if !val.Exists() {
		return "", nil
	}
	s, err := val.String()
	if err != nil {
		return "", formatCUEError(err)
	}
	return s, nil
}

// CompileError represents a compilation error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	// Report the first error that carries a position.
	firstErr := errs[0]
	positions := errors.Positions(firstErr)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}

	return err
}
