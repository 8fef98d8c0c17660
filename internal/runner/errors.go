package runner

import (
	"context"
	"errors"
	"fmt"
)

// AbortError is returned when an abort node fired.
//
// Unwrap returns the error carried by the node, unchanged, so callers can
// match it with errors.Is / errors.As.
type AbortError struct {
	RunID string
	Node  string
	Tick  int64
	Err   error
}

// Error implements the error interface.
func (e *AbortError) Error() string {
	return fmt.Sprintf("run %s aborted by node %s at tick %d: %v", e.RunID, e.Node, e.Tick, e.Err)
}

// Unwrap returns the carried error.
func (e *AbortError) Unwrap() error {
	return e.Err
}

// IsAbortError returns true if err is or wraps an AbortError.
func IsAbortError(err error) bool {
	var ae *AbortError
	return errors.As(err, &ae)
}

// TickQuotaError is returned when a run reaches its tick limit without
// completing or aborting.
type TickQuotaError struct {
	RunID string
	Ticks int64
	Limit int64
}

// Error implements the error interface.
func (e *TickQuotaError) Error() string {
	return fmt.Sprintf("run %s exceeded max ticks quota: %d ticks >= %d limit", e.RunID, e.Ticks, e.Limit)
}

// IsTickQuotaError returns true if err is or wraps a TickQuotaError.
func IsTickQuotaError(err error) bool {
	var qe *TickQuotaError
	return errors.As(err, &qe)
}

func isContextError(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
