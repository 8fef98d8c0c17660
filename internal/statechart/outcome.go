package statechart

import (
	"fmt"

	"github.com/roach88/motionchart/internal/trinary"
)

// Status is the result category of a tick.
type Status uint8

const (
	// StatusContinuing means the motion is still in progress.
	StatusContinuing Status = iota
	// StatusCompleted means the completion policy is satisfied.
	StatusCompleted
	// StatusAborted means an abort node (or failing behaviour) fired.
	StatusAborted
)

func (s Status) String() string {
	switch s {
	case StatusContinuing:
		return "continuing"
	case StatusCompleted:
		return "completed"
	case StatusAborted:
		return "aborted"
	default:
		return fmt.Sprintf("status(%d)", uint8(s))
	}
}

// Outcome describes what one tick did.
type Outcome struct {
	// Tick is the number of the tick that produced this outcome.
	Tick int64

	// Status is the motion status after the tick.
	Status Status

	// Err is the error carried by the aborting node, exactly as the
	// behaviour returned it. Nil unless Status is StatusAborted.
	Err error

	// AbortedBy is the node whose observation aborted the tick.
	// Only meaningful when Status is StatusAborted.
	AbortedBy NodeID

	// Observed lists nodes whose observation changed in phase 1.
	Observed []NodeID

	// Started lists nodes that moved to RUNNING in phase 2.
	Started []NodeID
}

// Done reports whether the motion reached a terminal status.
func (o Outcome) Done() bool {
	return o.Status != StatusContinuing
}

// NodeStatus is a point-in-time view of one node, for introspection.
type NodeStatus struct {
	ID          NodeID
	Name        string
	Kind        string
	Role        Role
	LifeCycle   LifeCycleState
	Observation trinary.Value
}
