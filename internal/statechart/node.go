package statechart

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/roach88/motionchart/internal/condition"
	"github.com/roach88/motionchart/internal/trinary"
)

// NodeID is the dense index of a node in its graph, tagged with the
// graph it belongs to.
type NodeID = condition.NodeID

// Role is the closed set of parts a node can play in a statechart.
// The engine only inspects roles; concrete kinds live behind Behavior.
type Role uint8

const (
	// RoleMonitor is an ordinary sensor or gate.
	RoleMonitor Role = iota
	// RolePayload performs a side effect when first observed.
	RolePayload
	// RoleCompletion signals that the motion finished successfully.
	RoleCompletion
	// RoleAbort raises its carried error when observed.
	RoleAbort
)

func (r Role) String() string {
	switch r {
	case RoleMonitor:
		return "monitor"
	case RolePayload:
		return "payload"
	case RoleCompletion:
		return "completion"
	case RoleAbort:
		return "abort"
	default:
		return fmt.Sprintf("role(%d)", uint8(r))
	}
}

// ObserveContext is handed to a behaviour each time its node is observed.
type ObserveContext struct {
	// World is the opaque context passed to New.
	World any

	// Node is the name of the node being observed.
	Node string

	// Tick is the number of the tick in progress (first tick is 1).
	Tick int64

	// Evaluations counts how many times this node was observed before the
	// current call. It is 0 on the first observation.
	Evaluations int

	// Logger is the engine's logger.
	Logger *slog.Logger
}

// Behavior is the kind-specific part of a node.
//
// Observe is called once per tick while the node is RUNNING. It returns the
// node's new observation, or an error to abort the motion. Implementations
// must not keep per-run state of their own; anything that depends on the
// run belongs in ObserveContext.
type Behavior interface {
	// Kind is a short name for the behaviour, e.g. "true_monitor".
	Kind() string

	// Role tells the engine how to treat the node.
	Role() Role

	// Observe computes the node's observation.
	Observe(ctx ObserveContext) (trinary.Value, error)
}

// Node is an immutable node descriptor.
type Node struct {
	ID       NodeID
	Name     string
	Behavior Behavior
}

// Kind returns the behaviour kind.
func (n *Node) Kind() string {
	return n.Behavior.Kind()
}

// Role returns the behaviour role.
func (n *Node) Role() Role {
	return n.Behavior.Role()
}

// LifeCycleState is the life-cycle of a node.
type LifeCycleState uint8

const (
	NotStarted LifeCycleState = iota
	Running
)

func (s LifeCycleState) String() string {
	switch s {
	case NotStarted:
		return "NOT_STARTED"
	case Running:
		return "RUNNING"
	default:
		return fmt.Sprintf("LifeCycleState(%d)", uint8(s))
	}
}

// ParseLifeCycleState parses "NOT_STARTED" or "RUNNING" (case-insensitive).
func ParseLifeCycleState(s string) (LifeCycleState, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "NOT_STARTED":
		return NotStarted, nil
	case "RUNNING":
		return Running, nil
	default:
		return NotStarted, fmt.Errorf("invalid life-cycle state %q: must be NOT_STARTED or RUNNING", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s LifeCycleState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *LifeCycleState) UnmarshalText(text []byte) error {
	parsed, err := ParseLifeCycleState(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
