package ir

// Built-in node kinds understood by the monitor registry.
const (
	KindTrueMonitor  = "true_monitor"
	KindConstMonitor = "const_monitor"
	KindPrint        = "print"
	KindEndMotion    = "end_motion"
	KindCancelMotion = "cancel_motion"
)

// Completion policies.
const (
	CompletionAll = "all"
	CompletionAny = "any"
)

// ChartSpec represents a compiled statechart definition.
//
// Nodes are in declaration order, which is also the engine's evaluation
// order.
type ChartSpec struct {
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Completion  string     `json:"completion,omitempty"` // "all" (default) or "any"
	Nodes       []NodeSpec `json:"nodes"`
}

// NodeSpec represents one node of a chart.
//
// Start and End hold conditions in the textual condition syntax; empty
// means the default (true for start, false for end). Message, Error and
// Value are kind-specific payload fields.
type NodeSpec struct {
	Name    string `json:"name"`
	Kind    string `json:"kind"`
	Start   string `json:"start,omitempty"`
	End     string `json:"end,omitempty"`
	Message string `json:"message,omitempty"` // print
	Error   string `json:"error,omitempty"`   // cancel_motion
	Value   string `json:"value,omitempty"`   // const_monitor
}

// Node finds a node by (normalized) name.
func (c *ChartSpec) Node(name string) (NodeSpec, bool) {
	name = NormalizeName(name)
	for _, n := range c.Nodes {
		if NormalizeName(n.Name) == name {
			return n, true
		}
	}
	return NodeSpec{}, false
}

// NodeNames returns node names in declaration order.
func (c *ChartSpec) NodeNames() []string {
	names := make([]string, len(c.Nodes))
	for i, n := range c.Nodes {
		names[i] = n.Name
	}
	return names
}
