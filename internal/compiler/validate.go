package compiler

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/roach88/motionchart/internal/condition"
	"github.com/roach88/motionchart/internal/ir"
	"github.com/roach88/motionchart/internal/trinary"
)

// Validation error codes (E100-E199)
const (
	ErrInvalidChartName  = "E101" // chart name missing or malformed
	ErrChartNoNodes      = "E102" // at least one node required
	ErrUnknownKind       = "E103" // node kind not registered
	ErrInvalidNodeName   = "E104" // node name malformed or reserved
	ErrDuplicateName     = "E105" // two nodes share a name
	ErrConditionSyntax   = "E106" // start/end condition does not parse
	ErrUnknownReference  = "E107" // condition names a node not in the chart
	ErrInvalidCompletion = "E108" // completion policy not "all" or "any"
	ErrInvalidPayload    = "E109" // kind-specific field missing, invalid or misplaced
	ErrChartCannotFinish = "E110" // no completion and no abort node
)

// ValidationError represents a schema validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// KindSet reports whether a node kind is known.
// *monitor.Registry satisfies it.
type KindSet interface {
	Has(kind string) bool
}

// builtinKinds is used when Validate is given no KindSet.
type builtinKinds struct{}

func (builtinKinds) Has(kind string) bool {
	switch kind {
	case ir.KindTrueMonitor, ir.KindConstMonitor, ir.KindPrint, ir.KindEndMotion, ir.KindCancelMotion:
		return true
	}
	return false
}

// namePattern matches the NAME token of the condition syntax.
var namePattern = regexp.MustCompile(`^[\p{L}_][\p{L}\p{Nd}_./:-]*$`)

// reservedNames cannot be node names because conditions would read them
// as operators or literals.
var reservedNames = map[string]bool{
	"and": true, "or": true, "not": true,
	"true": true, "false": true, "unknown": true,
}

// Validate checks a chart against schema rules.
// Returns all errors found (does not fail-fast).
// A nil kinds accepts only the built-in kinds.
func Validate(spec *ir.ChartSpec, kinds KindSet) []ValidationError {
	if kinds == nil {
		kinds = builtinKinds{}
	}
	var errs []ValidationError

	// E101
	if !namePattern.MatchString(spec.Name) {
		errs = append(errs, ValidationError{
			Field:   "name",
			Message: fmt.Sprintf("invalid chart name %q", spec.Name),
			Code:    ErrInvalidChartName,
		})
	}

	// E108
	switch spec.Completion {
	case "", ir.CompletionAll, ir.CompletionAny:
	default:
		errs = append(errs, ValidationError{
			Field:   "completion",
			Message: fmt.Sprintf("invalid completion policy %q, must be \"all\" or \"any\"", spec.Completion),
			Code:    ErrInvalidCompletion,
		})
	}

	// E102
	if len(spec.Nodes) == 0 {
		errs = append(errs, ValidationError{
			Field:   "nodes",
			Message: "at least one node is required",
			Code:    ErrChartNoNodes,
		})
		return errs
	}

	names := make(map[string]bool, len(spec.Nodes))
	for i, n := range spec.Nodes {
		field := fmt.Sprintf("nodes[%d]", i)
		name := ir.NormalizeName(n.Name)

		// E104
		if !namePattern.MatchString(name) || reservedNames[strings.ToLower(name)] {
			errs = append(errs, ValidationError{
				Field:   field + ".name",
				Message: fmt.Sprintf("invalid node name %q", n.Name),
				Code:    ErrInvalidNodeName,
			})
		}

		// E105
		if names[name] {
			errs = append(errs, ValidationError{
				Field:   field + ".name",
				Message: fmt.Sprintf("duplicate node name: %q", n.Name),
				Code:    ErrDuplicateName,
			})
		}
		names[name] = true

		// E103
		if !kinds.Has(n.Kind) {
			errs = append(errs, ValidationError{
				Field:   field + ".kind",
				Message: fmt.Sprintf("unknown kind %q for node %q", n.Kind, n.Name),
				Code:    ErrUnknownKind,
			})
		}

		errs = append(errs, validatePayload(field, n)...)
	}

	// Conditions are checked after all names are known so forward
	// references resolve.
	resolve := func(name string) (condition.NodeID, error) {
		if !names[ir.NormalizeName(name)] {
			return condition.NodeID{}, fmt.Errorf("unknown node %q", name)
		}
		return condition.NodeID{}, nil
	}
	for i, n := range spec.Nodes {
		field := fmt.Sprintf("nodes[%d]", i)
		errs = append(errs, validateCondition(field+".start", n.Start, resolve)...)
		errs = append(errs, validateCondition(field+".end", n.End, resolve)...)
	}

	// E110
	canFinish := false
	for _, n := range spec.Nodes {
		if n.Kind == ir.KindEndMotion || n.Kind == ir.KindCancelMotion {
			canFinish = true
			break
		}
	}
	if !canFinish && !hasCustomKind(spec) {
		errs = append(errs, ValidationError{
			Field:   "nodes",
			Message: "chart has no end_motion or cancel_motion node and can never finish",
			Code:    ErrChartCannotFinish,
		})
	}

	return errs
}

// hasCustomKind reports whether the chart uses a kind outside the built-ins.
// A custom kind may be a completion or abort signal, so E110 is skipped.
func hasCustomKind(spec *ir.ChartSpec) bool {
	for _, n := range spec.Nodes {
		if !(builtinKinds{}).Has(n.Kind) {
			return true
		}
	}
	return false
}

func validateCondition(field, src string, resolve condition.Resolver) []ValidationError {
	if src == "" {
		return nil
	}
	_, err := condition.Parse(src, resolve)
	if err == nil {
		return nil
	}

	var syn *condition.SyntaxError
	if errors.As(err, &syn) {
		return []ValidationError{{
			Field:   field,
			Message: syn.Error(),
			Code:    ErrConditionSyntax,
		}}
	}
	return []ValidationError{{
		Field:   field,
		Message: err.Error(),
		Code:    ErrUnknownReference,
	}}
}

// validatePayload checks kind-specific fields (E109).
func validatePayload(field string, n ir.NodeSpec) []ValidationError {
	var errs []ValidationError
	misplaced := func(name string) {
		errs = append(errs, ValidationError{
			Field:   field + "." + name,
			Message: fmt.Sprintf("%s is not allowed on a %s node", name, n.Kind),
			Code:    ErrInvalidPayload,
		})
	}

	if n.Message != "" && n.Kind != ir.KindPrint {
		misplaced("message")
	}
	if n.Error != "" && n.Kind != ir.KindCancelMotion {
		misplaced("error")
	}
	if n.Value != "" && n.Kind != ir.KindConstMonitor {
		misplaced("value")
	}

	switch n.Kind {
	case ir.KindPrint:
		if strings.TrimSpace(n.Message) == "" {
			errs = append(errs, ValidationError{
				Field:   field + ".message",
				Message: "print node requires a non-empty message",
				Code:    ErrInvalidPayload,
			})
		}
	case ir.KindConstMonitor:
		if _, err := trinary.Parse(n.Value); err != nil {
			errs = append(errs, ValidationError{
				Field:   field + ".value",
				Message: fmt.Sprintf("const_monitor value must be true, false or unknown, got %q", n.Value),
				Code:    ErrInvalidPayload,
			})
		}
	}

	return errs
}
