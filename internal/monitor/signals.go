package monitor

import (
	"errors"

	"github.com/roach88/motionchart/internal/ir"
	"github.com/roach88/motionchart/internal/statechart"
	"github.com/roach88/motionchart/internal/trinary"
)

// ErrMotionCancelled is carried by a CancelMotion without an explicit error.
var ErrMotionCancelled = errors.New("motion cancelled")

// EndMotion is the completion signal. It reports true once running.
type EndMotion struct{}

func (EndMotion) Kind() string          { return ir.KindEndMotion }
func (EndMotion) Role() statechart.Role { return statechart.RoleCompletion }

func (EndMotion) Observe(statechart.ObserveContext) (trinary.Value, error) {
	return trinary.True, nil
}

// CancelMotion is the abort signal. Observing it returns Err unchanged,
// which the engine reports as an aborted outcome.
type CancelMotion struct {
	Err error
}

func (CancelMotion) Kind() string          { return ir.KindCancelMotion }
func (CancelMotion) Role() statechart.Role { return statechart.RoleAbort }

func (c CancelMotion) Observe(statechart.ObserveContext) (trinary.Value, error) {
	if c.Err == nil {
		return trinary.Unknown, ErrMotionCancelled
	}
	return trinary.Unknown, c.Err
}
