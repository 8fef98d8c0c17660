// Package runner drives a compiled statechart at a fixed rate until it
// completes, aborts, runs out of ticks or its context is cancelled.
//
// After every tick the runner converts the engine state into an
// ir.TickRecord and hands it to each Sink (trace store, metrics, MQTT).
//
// Error contract:
//   - completion returns a nil error
//   - an abort returns *AbortError, which unwraps to the carried error
//   - exceeding the tick quota returns *TickQuotaError
//   - cancellation returns the context error, wrapped
//
// In every case the run is closed on all sinks with its final status.
package runner
