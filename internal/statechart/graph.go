package statechart

import (
	"sync/atomic"

	"github.com/roach88/motionchart/internal/condition"
	"github.com/roach88/motionchart/internal/ir"
	"github.com/roach88/motionchart/internal/trinary"
)

// Edge is a derived dependency: From is referenced by a condition of To.
type Edge struct {
	From NodeID
	To   NodeID
}

// Graph owns the nodes of a statechart and the edges derived from their
// conditions.
//
// INVARIANTS:
//   - node names are unique (enforced by AddNode)
//   - node order is insertion order and never changes
//   - every condition leaf is a member of the graph
//   - no mutation after Freeze
type Graph struct {
	serial uint64 // token carried by every NodeID this graph issues
	nodes  []*Node
	byName map[string]NodeID
	start  []condition.Expr // nil = default (true)
	end    []condition.Expr // nil = default (false)
	frozen bool
}

// graphSerial hands out graph tokens. Zero is never issued, so the zero
// NodeID belongs to no graph.
var graphSerial atomic.Uint64

// NewGraph creates an empty graph.
func NewGraph() *Graph {
	return &Graph{
		serial: graphSerial.Add(1),
		byName: make(map[string]NodeID),
	}
}

// id returns the ID of the node at index i.
func (g *Graph) id(i int) NodeID {
	return condition.NewNodeID(g.serial, i)
}

// AddNode registers a node and returns its ID.
//
// The name is NFC-normalized before the uniqueness check, so visually
// identical names collide.
func (g *Graph) AddNode(name string, b Behavior) (NodeID, error) {
	name = ir.NormalizeName(name)

	if g.frozen {
		return NodeID{}, newStructuralError(ErrCodeFrozen, name, "cannot add node after compile")
	}
	if name == "" {
		return NodeID{}, newStructuralError(ErrCodeInvalidName, "", "node name must be non-empty")
	}
	if b == nil {
		return NodeID{}, newStructuralError(ErrCodeNilBehavior, name, "node behavior is required")
	}
	if _, exists := g.byName[name]; exists {
		return NodeID{}, newStructuralError(ErrCodeDuplicateNode, name, "duplicate node name %q", name)
	}

	id := g.id(len(g.nodes))
	g.nodes = append(g.nodes, &Node{ID: id, Name: name, Behavior: b})
	g.byName[name] = id
	g.start = append(g.start, nil)
	g.end = append(g.end, nil)

	return id, nil
}

// SetStartCondition replaces the start condition of a node.
// A nil expression restores the default (constant true).
func (g *Graph) SetStartCondition(id NodeID, expr condition.Expr) error {
	if err := g.checkAssignment(id, expr); err != nil {
		return err
	}
	g.start[id.Index()] = expr
	return nil
}

// SetEndCondition replaces the end condition of a node.
// A nil expression restores the default (constant false).
func (g *Graph) SetEndCondition(id NodeID, expr condition.Expr) error {
	if err := g.checkAssignment(id, expr); err != nil {
		return err
	}
	g.end[id.Index()] = expr
	return nil
}

func (g *Graph) checkAssignment(id NodeID, expr condition.Expr) error {
	if !g.contains(id) {
		return newStructuralError(ErrCodeForeignNode, "", "node id %v is not a member of this graph", id)
	}
	owner := g.nodes[id.Index()].Name
	if g.frozen {
		return newStructuralError(ErrCodeFrozen, owner, "cannot change conditions after compile")
	}
	for _, leaf := range condition.Leaves(expr) {
		if !g.contains(leaf) {
			return newStructuralError(ErrCodeForeignNode, owner, "condition references node id %v which is not a member of this graph", leaf)
		}
	}
	return nil
}

// contains reports whether id was issued by this graph.
func (g *Graph) contains(id NodeID) bool {
	return id.Graph() == g.serial && id.Index() >= 0 && id.Index() < len(g.nodes)
}

// StartCondition returns the start condition of a node, substituting the
// default (constant true) when none was set.
func (g *Graph) StartCondition(id NodeID) condition.Expr {
	if g.start[id.Index()] == nil {
		return condition.Literal(trinary.True)
	}
	return g.start[id.Index()]
}

// EndCondition returns the end condition of a node, substituting the
// default (constant false) when none was set.
func (g *Graph) EndCondition(id NodeID) condition.Expr {
	if g.end[id.Index()] == nil {
		return condition.Literal(trinary.False)
	}
	return g.end[id.Index()]
}

// Lookup finds a node by name.
func (g *Graph) Lookup(name string) (NodeID, bool) {
	id, ok := g.byName[ir.NormalizeName(name)]
	return id, ok
}

// Node returns the descriptor for id, or nil if id is not a member.
func (g *Graph) Node(id NodeID) *Node {
	if !g.contains(id) {
		return nil
	}
	return g.nodes[id.Index()]
}

// Nodes returns the nodes in insertion order.
// The returned slice is a copy; the nodes themselves are shared.
func (g *Graph) Nodes() []*Node {
	out := make([]*Node, len(g.nodes))
	copy(out, g.nodes)
	return out
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// Name returns the name of a node, for formatting conditions.
func (g *Graph) Name(id NodeID) string {
	if n := g.Node(id); n != nil {
		return n.Name
	}
	return "<foreign>"
}

// FormatCondition renders expr in condition text form using this graph's
// node names.
func (g *Graph) FormatCondition(expr condition.Expr) string {
	return condition.Format(expr, g.Name)
}

// Edges derives the dependency edges from every condition.
//
// Order: owning node in insertion order, start condition before end
// condition, leaves in first-appearance order.
func (g *Graph) Edges() []Edge {
	var edges []Edge
	for i := range g.nodes {
		to := g.id(i)
		for _, from := range condition.Leaves(g.start[i]) {
			edges = append(edges, Edge{From: from, To: to})
		}
		for _, from := range condition.Leaves(g.end[i]) {
			edges = append(edges, Edge{From: from, To: to})
		}
	}
	return edges
}

// Frozen reports whether the graph rejects further mutation.
func (g *Graph) Frozen() bool {
	return g.frozen
}

// freeze makes the graph read-only.
func (g *Graph) freeze() {
	g.frozen = true
}
