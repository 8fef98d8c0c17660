// Package monitor provides the built-in node kinds and builds engines from
// declarative charts.
//
// Every kind implements statechart.Behavior. The engine never inspects
// concrete types, so callers add kinds by implementing Behavior (for code
// built charts) or by registering a Factory (for chart files).
//
// Built-in kinds:
//
//	true_monitor   ordinary gate, always true once running
//	const_monitor  always reports a fixed trinary value
//	print          writes a message on its first observation, then true
//	end_motion     completion signal, true once running
//	cancel_motion  abort signal, returns its carried error when observed
package monitor
