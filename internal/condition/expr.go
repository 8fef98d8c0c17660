package condition

import (
	"fmt"

	"github.com/roach88/motionchart/internal/trinary"
)

// NodeID identifies a node inside the graph that issued it.
//
// The graph token keeps IDs from different graphs apart even when their
// indexes coincide. The zero value belongs to no graph.
type NodeID struct {
	graph uint64
	index int
}

// NewNodeID returns the ID of the node at index in graph.
func NewNodeID(graph uint64, index int) NodeID {
	return NodeID{graph: graph, index: index}
}

// Graph returns the token of the issuing graph.
func (id NodeID) Graph() uint64 { return id.graph }

// Index returns the arena index of the node in its graph.
func (id NodeID) Index() int { return id.index }

func (id NodeID) String() string {
	return fmt.Sprintf("%d/%d", id.graph, id.index)
}

// Expr is a condition expression.
//
// This is a sealed interface - only types in this package implement it.
type Expr interface {
	exprNode() // Marker method - seals interface to this package
}

// Const is a constant truth value.
type Const struct {
	Value trinary.Value
}

func (Const) exprNode() {}

// Ref reads the current observation of another node. The ID carries the
// token of the graph it came from.
type Ref struct {
	Node NodeID
}

func (Ref) exprNode() {}

// And is the n-ary trinary conjunction of its operands.
type And struct {
	Operands []Expr
}

func (And) exprNode() {}

// Or is the n-ary trinary disjunction of its operands.
type Or struct {
	Operands []Expr
}

func (Or) exprNode() {}

// Not negates its operand.
type Not struct {
	Operand Expr
}

func (Not) exprNode() {}

// Literal returns a constant expression.
func Literal(v trinary.Value) Expr {
	return Const{Value: v}
}

// Node returns a reference to the node with the given ID.
func Node(id NodeID) Expr {
	return Ref{Node: id}
}

// AllOf returns the conjunction of operands.
func AllOf(operands ...Expr) Expr {
	return And{Operands: operands}
}

// AnyOf returns the disjunction of operands.
func AnyOf(operands ...Expr) Expr {
	return Or{Operands: operands}
}

// Negate returns the negation of operand.
func Negate(operand Expr) Expr {
	return Not{Operand: operand}
}
