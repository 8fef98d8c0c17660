// Package statechart implements the tick-driven motion statechart engine.
//
// A statechart is a graph of monitor nodes. Each node has a behaviour, a
// start condition and an end condition. Conditions are trinary expressions
// over the observations of other nodes; every node referenced by a condition
// yields a dependency edge into the node that owns it.
//
// ARCHITECTURE:
//
// Arena + Index:
// The Graph owns its nodes in a dense slice. Nodes are addressed by NodeID
// and condition expressions store NodeIDs, so nothing holds a pointer back
// into the graph. Nodes are immutable descriptors; every piece of runtime
// state lives in the Engine.
//
// Two-Phase Tick:
// Each call to Engine.Tick runs exactly two passes over the nodes, in
// insertion order:
//
//  1. Observe: every node that was RUNNING when the tick began is observed
//     and its new value is committed immediately, so later nodes in the same
//     pass see it.
//  2. Start: every node still NOT_STARTED has its start condition evaluated
//     against the observations from pass 1; true starts it.
//
// A node started in pass 2 is first observed on the next tick. A chain of
// single-dependency start conditions therefore advances one hop per tick,
// which makes execution traces deterministic and replayable.
//
// Abort Protocol:
// If a behaviour returns an error while being observed, the tick stops at
// that node and reports an Aborted outcome carrying the error verbatim.
// Observations committed earlier in the tick stay visible. The engine is
// terminated and further ticks fail with ErrTerminated.
//
// Thread-safety: none. The engine is driven from a single goroutine; the tick
// boundary is the unit of atomicity.
package statechart
