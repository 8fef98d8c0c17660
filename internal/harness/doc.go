// Package harness runs tick-by-tick conformance scenarios against charts.
//
// A scenario names a chart, runs it to its outcome through the real runner
// and an in-memory store, and checks the recorded trace.
//
// # Scenario Format
//
// Scenarios are YAML files:
//
//	name: or_gate
//	description: "muh starts one tick after either sensor reports true"
//	charts: ../charts        # CUE package directory, relative to this file
//	chart: motion_statechart
//	max_ticks: 10
//	expect:
//	  status: completed
//	  ticks: 4
//	assertions:
//	  - type: started_at
//	    node: muh
//	    tick: 2
//	  - type: node_state
//	    node: done
//	    tick: 4
//	    observation: "true"
//
// A scenario can instead expect the chart to be rejected:
//
//	expect:
//	  validation: [E105]
//
// # Assertion Types
//
//   - node_state: life-cycle and/or observation of a node after a tick
//   - started_at: the tick on which a node was started
//   - never_started: the node stayed NOT_STARTED for the whole run
//   - start_order: nodes were started in the given order
//   - change_count: how many ticks changed a node's observation
//
// # Deterministic Testing
//
// Every run uses a fixed run ID ("test-run-default" unless run_id is set),
// an unthrottled runner and a fresh in-memory SQLite store, so the same
// scenario always produces a byte-identical golden snapshot.
//
// # Usage
//
//	scenario, err := harness.LoadScenario("testdata/scenarios/or_gate.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := harness.Run(scenario)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if !result.Pass {
//	    for _, e := range result.Errors {
//	        log.Println(e)
//	    }
//	}
package harness
