package condition

import (
	"fmt"
	"strings"
)

// Format renders expr in the text syntax accepted by Parse.
// name supplies the display name for each referenced node.
func Format(expr Expr, name func(NodeID) string) string {
	switch e := expr.(type) {
	case nil:
		return ""
	case Const:
		return e.Value.String()
	case Ref:
		return name(e.Node)
	case And:
		if len(e.Operands) == 0 {
			return "true"
		}
		return joinOperands(e.Operands, " and ", name, func(op Expr) bool {
			_, isOr := op.(Or)
			return isOr
		})
	case Or:
		if len(e.Operands) == 0 {
			return "false"
		}
		return joinOperands(e.Operands, " or ", name, func(Expr) bool { return false })
	case Not:
		inner := Format(e.Operand, name)
		switch e.Operand.(type) {
		case And, Or:
			return "not (" + inner + ")"
		}
		return "not " + inner
	default:
		return fmt.Sprintf("<%T>", expr)
	}
}

func joinOperands(ops []Expr, sep string, name func(NodeID) string, needParens func(Expr) bool) string {
	parts := make([]string, len(ops))
	for i, op := range ops {
		s := Format(op, name)
		if needParens(op) {
			s = "(" + s + ")"
		}
		parts[i] = s
	}
	return strings.Join(parts, sep)
}
