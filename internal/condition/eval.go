package condition

import "github.com/roach88/motionchart/internal/trinary"

// Lookup returns the current observation of a node.
type Lookup func(NodeID) trinary.Value

// Eval evaluates expr against lookup.
//
// Eval is pure: it calls lookup once per Ref and has no other effects.
// A nil expression, or an expression type Eval does not know, evaluates to
// Unknown.
func Eval(expr Expr, lookup Lookup) trinary.Value {
	switch e := expr.(type) {
	case Const:
		return e.Value
	case Ref:
		return lookup(e.Node)
	case And:
		result := trinary.True
		for _, op := range e.Operands {
			result = trinary.And(result, Eval(op, lookup))
		}
		return result
	case Or:
		result := trinary.False
		for _, op := range e.Operands {
			result = trinary.Or(result, Eval(op, lookup))
		}
		return result
	case Not:
		return trinary.Not(Eval(e.Operand, lookup))
	default:
		return trinary.Unknown
	}
}

// Leaves returns the distinct nodes referenced by expr, in order of first
// appearance (depth-first, left to right).
func Leaves(expr Expr) []NodeID {
	var (
		out  []NodeID
		seen = make(map[NodeID]bool)
	)

	var walk func(Expr)
	walk = func(e Expr) {
		switch v := e.(type) {
		case Ref:
			if !seen[v.Node] {
				seen[v.Node] = true
				out = append(out, v.Node)
			}
		case And:
			for _, op := range v.Operands {
				walk(op)
			}
		case Or:
			for _, op := range v.Operands {
				walk(op)
			}
		case Not:
			walk(v.Operand)
		}
	}
	walk(expr)

	return out
}
