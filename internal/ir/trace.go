package ir

// Run statuses. A run is "running" until its outcome is recorded.
const (
	StatusRunning    = "running"
	StatusContinuing = "continuing"
	StatusCompleted  = "completed"
	StatusAborted    = "aborted"
	StatusCancelled  = "cancelled"
	StatusQuota      = "quota_exceeded"
)

// RunRecord describes one execution of a chart.
type RunRecord struct {
	ID            string `json:"id"` // UUIDv7
	Chart         string `json:"chart"`
	ChartHash     string `json:"chart_hash"`
	Status        string `json:"status"`
	Ticks         int64  `json:"ticks"`
	Error         string `json:"error,omitempty"`
	AbortedBy     string `json:"aborted_by,omitempty"`
	EngineVersion string `json:"engine_version"`
	IRVersion     string `json:"ir_version"`
}

// TickRecord is the trace entry for one engine tick.
//
// Started and Observed list node names in evaluation order. Nodes is a
// full snapshot taken after the tick, in declaration order.
type TickRecord struct {
	RunID     string      `json:"run_id"`
	Tick      int64       `json:"tick"`
	Status    string      `json:"status"`
	Error     string      `json:"error,omitempty"`
	AbortedBy string      `json:"aborted_by,omitempty"`
	Started   []string    `json:"started"`
	Observed  []string    `json:"observed"`
	Nodes     []NodeState `json:"nodes"`
}

// NodeState is the runtime state of one node at the end of a tick.
type NodeState struct {
	Name        string `json:"name"`
	Kind        string `json:"kind"`
	LifeCycle   string `json:"life_cycle"`  // NOT_STARTED | RUNNING
	Observation string `json:"observation"` // true | false | unknown
}

// State returns the state of a node in the snapshot.
func (t *TickRecord) State(name string) (NodeState, bool) {
	name = NormalizeName(name)
	for _, n := range t.Nodes {
		if n.Name == name {
			return n, true
		}
	}
	return NodeState{}, false
}
