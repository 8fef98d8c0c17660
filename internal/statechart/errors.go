package statechart

import (
	"errors"
	"fmt"
)

// Sequencing errors. These indicate a programming error in the caller.
var (
	// ErrNotCompiled is returned by Tick before Compile has succeeded.
	ErrNotCompiled = errors.New("statechart not compiled")

	// ErrAlreadyCompiled is returned by a second call to Compile.
	ErrAlreadyCompiled = errors.New("statechart already compiled")

	// ErrTerminated is returned by Tick after the motion was aborted.
	ErrTerminated = errors.New("statechart terminated by abort")
)

// StructuralError reports an invalid graph construction step.
//
// Structural errors are returned synchronously by the offending call and
// never deferred to Compile (except for checks that need the whole graph).
type StructuralError struct {
	// Code identifies the error category.
	Code StructuralErrorCode

	// Message is a human-readable description.
	Message string

	// Node names the node involved, if any.
	Node string
}

// StructuralErrorCode categorizes structural errors.
type StructuralErrorCode string

const (
	// ErrCodeDuplicateNode indicates a second node with an existing name.
	ErrCodeDuplicateNode StructuralErrorCode = "DUPLICATE_NODE"

	// ErrCodeInvalidName indicates an empty node name.
	ErrCodeInvalidName StructuralErrorCode = "INVALID_NAME"

	// ErrCodeNilBehavior indicates a node without a behaviour.
	ErrCodeNilBehavior StructuralErrorCode = "NIL_BEHAVIOR"

	// ErrCodeForeignNode indicates a condition referencing a node that is not
	// a member of the graph.
	ErrCodeForeignNode StructuralErrorCode = "FOREIGN_NODE"

	// ErrCodeFrozen indicates a mutation after Compile.
	ErrCodeFrozen StructuralErrorCode = "FROZEN"

	// ErrCodeEmptyGraph indicates Compile on a graph with no nodes.
	ErrCodeEmptyGraph StructuralErrorCode = "EMPTY_GRAPH"

	// ErrCodeStartCycle indicates start conditions that depend on each other
	// (only reported with WithStrictCycles).
	ErrCodeStartCycle StructuralErrorCode = "START_CYCLE"
)

// Error implements the error interface.
func (e *StructuralError) Error() string {
	if e.Node != "" {
		return fmt.Sprintf("%s: %s (node=%s)", e.Code, e.Message, e.Node)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsStructuralError returns true if err is or wraps a StructuralError.
func IsStructuralError(err error) bool {
	var se *StructuralError
	return errors.As(err, &se)
}

// IsDuplicateNode returns true if err is a duplicate node name error.
// Uses errors.As to handle wrapped errors.
func IsDuplicateNode(err error) bool {
	var se *StructuralError
	if errors.As(err, &se) {
		return se.Code == ErrCodeDuplicateNode
	}
	return false
}

func newStructuralError(code StructuralErrorCode, node, format string, args ...any) *StructuralError {
	return &StructuralError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Node:    node,
	}
}
