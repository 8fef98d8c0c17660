package statechart

import (
	"log/slog"

	"github.com/roach88/motionchart/internal/condition"
	"github.com/roach88/motionchart/internal/trinary"
)

// Engine drives one statechart through its life-cycle.
//
// Build phase: AddNode / SetStartCondition / SetEndCondition.
// Compile once, then call Tick until the outcome is terminal.
//
// Thread-safety model:
//   - the engine is single-threaded; callers own it exclusively
//   - Tick never blocks and does no I/O other than what behaviours do
//
// INVARIANTS:
//   - node order is insertion order and is the evaluation order
//   - RUNNING is absorbing; there is no transition out of it
//   - a node started in tick t is first observed in tick t+1
//   - once aborted, every further Tick fails with ErrTerminated
//   - once IsEndMotion is true it stays true
type Engine struct {
	world  any
	graph  *Graph
	clock  *Clock
	logger *slog.Logger

	policy       CompletionPolicy
	strictCycles bool

	compiled   bool
	terminated bool
	completed  bool

	lifeCycle   []LifeCycleState
	observation []trinary.Value
	evaluations []int
	completion  []NodeID
}

// New creates an engine that passes world to every behaviour.
func New(world any, opts ...Option) *Engine {
	e := &Engine{
		world:  world,
		graph:  NewGraph(),
		clock:  NewClock(),
		logger: slog.Default(),
		policy: CompletionAll,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// AddNode registers a node. See Graph.AddNode.
func (e *Engine) AddNode(name string, b Behavior) (NodeID, error) {
	return e.graph.AddNode(name, b)
}

// SetStartCondition sets the start condition of a node.
func (e *Engine) SetStartCondition(id NodeID, expr condition.Expr) error {
	return e.graph.SetStartCondition(id, expr)
}

// SetEndCondition sets the end condition of a node.
func (e *Engine) SetEndCondition(id NodeID, expr condition.Expr) error {
	return e.graph.SetEndCondition(id, expr)
}

// Lookup finds a node by name.
func (e *Engine) Lookup(name string) (NodeID, bool) {
	return e.graph.Lookup(name)
}

// Node returns the node descriptor for id, or nil.
func (e *Engine) Node(id NodeID) *Node {
	return e.graph.Node(id)
}

// Nodes returns every node in insertion order.
func (e *Engine) Nodes() []*Node {
	return e.graph.Nodes()
}

// Edges returns the derived dependency edges.
func (e *Engine) Edges() []Edge {
	return e.graph.Edges()
}

// Graph exposes the underlying graph for introspection.
func (e *Engine) Graph() *Graph {
	return e.graph
}

// Policy returns the completion policy.
func (e *Engine) Policy() CompletionPolicy {
	return e.policy
}

// Compile validates the graph, initialises runtime state and freezes the
// graph. It may be called once.
func (e *Engine) Compile() error {
	if e.compiled {
		return ErrAlreadyCompiled
	}
	if e.graph.Len() == 0 {
		return newStructuralError(ErrCodeEmptyGraph, "", "statechart has no nodes")
	}

	for _, cycle := range e.graph.StartCycles() {
		names := make([]string, len(cycle))
		for i, id := range cycle {
			names[i] = e.graph.Name(id)
		}
		if e.strictCycles {
			return newStructuralError(ErrCodeStartCycle, names[0], "start conditions form a cycle: %v", names)
		}
		e.logger.Warn("start conditions form a cycle",
			"nodes", names,
		)
	}

	n := e.graph.Len()
	e.lifeCycle = make([]LifeCycleState, n)
	e.observation = make([]trinary.Value, n)
	e.evaluations = make([]int, n)
	e.completion = nil
	for i, node := range e.graph.nodes {
		e.lifeCycle[i] = NotStarted
		e.observation[i] = trinary.Unknown
		if node.Role() == RoleCompletion {
			e.completion = append(e.completion, node.ID)
		}
	}

	e.graph.freeze()
	e.compiled = true

	for _, node := range e.graph.nodes {
		e.logger.Debug("node conditions",
			"node", node.Name,
			"start", e.graph.FormatCondition(e.graph.StartCondition(node.ID)),
			"end", e.graph.FormatCondition(e.graph.EndCondition(node.ID)),
		)
	}

	e.logger.Debug("statechart compiled",
		"nodes", n,
		"edges", len(e.graph.Edges()),
		"completion_nodes", len(e.completion),
		"policy", e.policy.String(),
	)
	return nil
}

// Tick performs one engine step.
//
// Phase 1 observes every node that was RUNNING when the tick began, in
// insertion order, committing each observation before the next node is
// observed. A behaviour error stops the tick and aborts the motion.
//
// Phase 2 starts every NOT_STARTED node whose start condition evaluates
// true against the observations left by phase 1.
//
// The returned error is reserved for sequencing mistakes (ErrNotCompiled,
// ErrTerminated). An abort is reported in the Outcome.
func (e *Engine) Tick() (Outcome, error) {
	if !e.compiled {
		return Outcome{}, ErrNotCompiled
	}
	if e.terminated {
		return Outcome{}, ErrTerminated
	}

	tick := e.clock.Next()
	out := Outcome{Tick: tick}

	// Snapshot which nodes are running; nodes started in phase 2 wait a tick.
	running := make([]NodeID, 0, len(e.lifeCycle))
	for i, s := range e.lifeCycle {
		if s == Running {
			running = append(running, e.graph.id(i))
		}
	}

	// Phase 1: observe
	for _, id := range running {
		i := id.Index()
		node := e.graph.nodes[i]
		v, err := node.Behavior.Observe(ObserveContext{
			World:       e.world,
			Node:        node.Name,
			Tick:        tick,
			Evaluations: e.evaluations[i],
			Logger:      e.logger,
		})
		e.evaluations[i]++

		if err != nil {
			e.terminated = true
			out.Status = StatusAborted
			out.Err = err
			out.AbortedBy = id
			e.logger.Info("motion aborted",
				"tick", tick,
				"node", node.Name,
				"kind", node.Kind(),
				"error", err,
			)
			return out, nil
		}

		if !v.Valid() {
			e.logger.Warn("behavior returned invalid trinary value, using unknown",
				"node", node.Name,
				"value", uint8(v),
			)
			v = trinary.Unknown
		}

		if v != e.observation[i] {
			e.logger.Debug("observation changed",
				"tick", tick,
				"node", node.Name,
				"from", e.observation[i].String(),
				"to", v.String(),
			)
			e.observation[i] = v
			out.Observed = append(out.Observed, id)
		}
	}

	// Phase 2: start
	for i, s := range e.lifeCycle {
		if s != NotStarted {
			continue
		}
		id := e.graph.id(i)
		if condition.Eval(e.graph.StartCondition(id), e.lookup) != trinary.True {
			continue
		}
		e.lifeCycle[i] = Running
		out.Started = append(out.Started, id)
		e.logger.Debug("node started",
			"tick", tick,
			"node", e.graph.nodes[i].Name,
			"kind", e.graph.nodes[i].Kind(),
		)
	}

	if e.IsEndMotion() {
		out.Status = StatusCompleted
		e.logger.Info("motion completed", "tick", tick)
	} else {
		out.Status = StatusContinuing
	}

	return out, nil
}

func (e *Engine) lookup(id NodeID) trinary.Value {
	return e.observation[id.Index()]
}

// IsEndMotion reports whether the completion policy is satisfied.
//
// False before Compile, after an abort that came first, or when the chart
// has no completion nodes. The result is latched: once true it stays true,
// even if a later tick aborts.
func (e *Engine) IsEndMotion() bool {
	if e.completed {
		return true
	}
	if !e.compiled || e.terminated {
		return false
	}
	if len(e.completion) == 0 {
		return false
	}

	vals := make([]trinary.Value, len(e.completion))
	for i, id := range e.completion {
		vals[i] = e.observation[id.Index()]
	}

	var v trinary.Value
	if e.policy == CompletionAny {
		v = trinary.Or(vals...)
	} else {
		v = trinary.And(vals...)
	}

	if v == trinary.True {
		e.completed = true
	}
	return e.completed
}

// LifeCycleState returns the life-cycle of a node.
// Before Compile every node is NOT_STARTED.
func (e *Engine) LifeCycleState(id NodeID) LifeCycleState {
	if !e.compiled || !e.graph.contains(id) {
		return NotStarted
	}
	return e.lifeCycle[id.Index()]
}

// ObservationState returns the latest observation of a node.
// Before Compile, and for nodes never observed, it is Unknown.
func (e *Engine) ObservationState(id NodeID) trinary.Value {
	if !e.compiled || !e.graph.contains(id) {
		return trinary.Unknown
	}
	return e.observation[id.Index()]
}

// Snapshot returns the state of every node in insertion order.
func (e *Engine) Snapshot() []NodeStatus {
	out := make([]NodeStatus, e.graph.Len())
	for i, node := range e.graph.nodes {
		id := node.ID
		out[i] = NodeStatus{
			ID:          id,
			Name:        node.Name,
			Kind:        node.Kind(),
			Role:        node.Role(),
			LifeCycle:   e.LifeCycleState(id),
			Observation: e.ObservationState(id),
		}
	}
	return out
}

// TickCount returns the number of ticks performed.
func (e *Engine) TickCount() int64 {
	return e.clock.Current()
}

// Compiled reports whether Compile has succeeded.
func (e *Engine) Compiled() bool {
	return e.compiled
}

// Terminated reports whether the motion was aborted.
func (e *Engine) Terminated() bool {
	return e.terminated
}
