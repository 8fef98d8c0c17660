package runner

import (
	"github.com/roach88/motionchart/internal/ir"
	"github.com/roach88/motionchart/internal/statechart"
)

// NewTickRecord converts an outcome and the engine state after it into a
// trace record.
func NewTickRecord(runID string, eng *statechart.Engine, out statechart.Outcome) ir.TickRecord {
	g := eng.Graph()
	rec := ir.TickRecord{
		RunID:    runID,
		Tick:     out.Tick,
		Status:   StatusName(out.Status),
		Started:  names(g, out.Started),
		Observed: names(g, out.Observed),
	}
	if out.Status == statechart.StatusAborted {
		rec.AbortedBy = g.Name(out.AbortedBy)
		if out.Err != nil {
			rec.Error = out.Err.Error()
		}
	}

	snap := eng.Snapshot()
	rec.Nodes = make([]ir.NodeState, len(snap))
	for i, s := range snap {
		rec.Nodes[i] = ir.NodeState{
			Name:        s.Name,
			Kind:        s.Kind,
			LifeCycle:   s.LifeCycle.String(),
			Observation: s.Observation.String(),
		}
	}
	return rec
}

// StatusName maps an engine status onto the trace vocabulary.
func StatusName(s statechart.Status) string {
	switch s {
	case statechart.StatusCompleted:
		return ir.StatusCompleted
	case statechart.StatusAborted:
		return ir.StatusAborted
	default:
		return ir.StatusContinuing
	}
}

func names(g *statechart.Graph, ids []statechart.NodeID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = g.Name(id)
	}
	return out
}
