// Package metrics exports run progress as Prometheus metrics.
//
// Sink implements the runner's Sink interface and maintains:
//
//	motionchart_ticks_total                 counter
//	motionchart_node_starts_total{kind}     counter
//	motionchart_outcomes_total{status}      counter
//	motionchart_running_nodes               gauge
//
// Handler serves the registry together with a health probe and a JSON view
// of the current run.
package metrics
