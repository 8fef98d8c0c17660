package harness

import (
	"fmt"
	"strings"

	"github.com/roach88/motionchart/internal/ir"
)

// AssertionError is returned when an assertion fails.
type AssertionError struct {
	Type     string          // Assertion type for categorization
	Expected string          // Human-readable expected outcome
	Actual   string          // Human-readable actual outcome
	Trace    []ir.TickRecord // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	fmt.Fprintf(&buf, "\nFull trace:\n")
	for _, t := range e.Trace {
		fmt.Fprintf(&buf, "  [%d] %s started=%v observed=%v\n", t.Tick, t.Status, t.Started, t.Observed)
	}

	return buf.String()
}

// EvaluateAssertions runs every assertion against the trace and returns the
// failure messages.
func EvaluateAssertions(trace []ir.TickRecord, assertions []Assertion) []string {
	var errs []string
	for i, a := range assertions {
		if err := evaluateAssertion(trace, a); err != nil {
			errs = append(errs, fmt.Sprintf("assertion %d (%s): %v", i, a.Type, err))
		}
	}
	return errs
}

func evaluateAssertion(trace []ir.TickRecord, a Assertion) error {
	switch a.Type {
	case AssertNodeState:
		return assertNodeState(trace, a)
	case AssertStartedAt:
		return assertStartedAt(trace, a)
	case AssertNeverStarted:
		return assertNeverStarted(trace, a)
	case AssertStartOrder:
		return assertStartOrder(trace, a)
	case AssertChangeCount:
		return assertChangeCount(trace, a)
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
}

// assertNodeState checks the snapshot of one node after a tick.
func assertNodeState(trace []ir.TickRecord, a Assertion) error {
	t, ok := findTick(trace, a.Tick)
	if !ok {
		return &AssertionError{
			Type:     AssertNodeState,
			Expected: fmt.Sprintf("tick %d", a.Tick),
			Actual:   fmt.Sprintf("run has %d ticks", len(trace)),
			Trace:    trace,
		}
	}
	state, ok := t.State(a.Node)
	if !ok {
		return &AssertionError{
			Type:     AssertNodeState,
			Expected: fmt.Sprintf("node %s in snapshot of tick %d", a.Node, a.Tick),
			Actual:   "not found",
			Trace:    trace,
		}
	}

	if a.LifeCycle != "" && !strings.EqualFold(a.LifeCycle, state.LifeCycle) {
		return &AssertionError{
			Type:     AssertNodeState,
			Expected: fmt.Sprintf("%s life-cycle %s at tick %d", a.Node, strings.ToUpper(a.LifeCycle), a.Tick),
			Actual:   state.LifeCycle,
			Trace:    trace,
		}
	}
	if a.Observation != "" && !strings.EqualFold(a.Observation, state.Observation) {
		return &AssertionError{
			Type:     AssertNodeState,
			Expected: fmt.Sprintf("%s observation %s at tick %d", a.Node, strings.ToLower(a.Observation), a.Tick),
			Actual:   state.Observation,
			Trace:    trace,
		}
	}
	return nil
}

// assertStartedAt checks the tick on which a node was started.
func assertStartedAt(trace []ir.TickRecord, a Assertion) error {
	tick, _, ok := startPosition(trace, a.Node)
	if !ok {
		return &AssertionError{
			Type:     AssertStartedAt,
			Expected: fmt.Sprintf("%s started at tick %d", a.Node, a.Tick),
			Actual:   "never started",
			Trace:    trace,
		}
	}
	if tick != a.Tick {
		return &AssertionError{
			Type:     AssertStartedAt,
			Expected: fmt.Sprintf("%s started at tick %d", a.Node, a.Tick),
			Actual:   fmt.Sprintf("started at tick %d", tick),
			Trace:    trace,
		}
	}
	return nil
}

func assertNeverStarted(trace []ir.TickRecord, a Assertion) error {
	if tick, _, ok := startPosition(trace, a.Node); ok {
		return &AssertionError{
			Type:     AssertNeverStarted,
			Expected: fmt.Sprintf("%s never started", a.Node),
			Actual:   fmt.Sprintf("started at tick %d", tick),
			Trace:    trace,
		}
	}
	return nil
}

// assertStartOrder checks that nodes were started in the given order.
// Nodes started on the same tick are ordered by their position in the
// tick's started list.
func assertStartOrder(trace []ir.TickRecord, a Assertion) error {
	type position struct{ tick, index int64 }

	positions := make([]position, len(a.Nodes))
	for i, name := range a.Nodes {
		tick, index, ok := startPosition(trace, name)
		if !ok {
			return &AssertionError{
				Type:     AssertStartOrder,
				Expected: fmt.Sprintf("all nodes started: %v", a.Nodes),
				Actual:   fmt.Sprintf("%s never started", name),
				Trace:    trace,
			}
		}
		positions[i] = position{tick, index}
	}

	for i := 1; i < len(positions); i++ {
		prev, curr := positions[i-1], positions[i]
		if prev.tick > curr.tick || (prev.tick == curr.tick && prev.index >= curr.index) {
			return &AssertionError{
				Type:     AssertStartOrder,
				Expected: fmt.Sprintf("start order %v", a.Nodes),
				Actual: fmt.Sprintf("%s (tick %d) should start before %s (tick %d)",
					a.Nodes[i-1], prev.tick, a.Nodes[i], curr.tick),
				Trace: trace,
			}
		}
	}
	return nil
}

// assertChangeCount checks how many ticks changed a node's observation.
func assertChangeCount(trace []ir.TickRecord, a Assertion) error {
	name := ir.NormalizeName(a.Node)
	count := 0
	for _, t := range trace {
		for _, n := range t.Observed {
			if n == name {
				count++
			}
		}
	}
	if count != a.Count {
		return &AssertionError{
			Type:     AssertChangeCount,
			Expected: fmt.Sprintf("%s changed %d times", a.Node, a.Count),
			Actual:   fmt.Sprintf("changed %d times", count),
			Trace:    trace,
		}
	}
	return nil
}

func findTick(trace []ir.TickRecord, tick int64) (ir.TickRecord, bool) {
	for _, t := range trace {
		if t.Tick == tick {
			return t, true
		}
	}
	return ir.TickRecord{}, false
}

// startPosition returns the tick on which name was started and its index in
// that tick's started list.
func startPosition(trace []ir.TickRecord, name string) (int64, int64, bool) {
	name = ir.NormalizeName(name)
	for _, t := range trace {
		for i, n := range t.Started {
			if n == name {
				return t.Tick, int64(i), true
			}
		}
	}
	return 0, 0, false
}
