// Package compiler turns CUE chart definitions into ir.ChartSpec values and
// validates them.
//
// Chart files declare charts under the top-level "chart" struct:
//
//	chart: pick: {
//	    description: "pick an object"
//	    completion:  "all"
//	    node: {
//	        muh2: kind: "true_monitor"
//	        muh:  {kind: "true_monitor", start: "muh2"}
//	        done: {kind: "end_motion", start: "muh"}
//	    }
//	}
//
// Field order inside node is declaration order, and declaration order is the
// order in which the engine evaluates nodes.
package compiler
