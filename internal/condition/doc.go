// Package condition defines the boolean expression trees that gate monitor
// nodes.
//
// Expressions are built from five node types: Const, Ref, And, Or and Not.
// Expr is a sealed interface, so evaluators and formatters can switch
// exhaustively over these types.
//
// Leaves reference nodes by NodeID, a dense index into the owning graph
// tagged with that graph's token, never by pointer. An expression is therefore plain data: it can be
// copied, compared and evaluated against any lookup function.
//
// # Evaluation
//
// Eval folds every operand through the trinary algebra. It never
// short-circuits: the algebra is associative and commutative, so folding all
// operands always yields the same answer as a lazy evaluator would, without
// subtle Unknown-versus-False ordering bugs.
//
// # Text form
//
// Chart files spell conditions as text:
//
//	muh3 or muh2
//	not (grasped and lifted)
//	true
//
// Parse turns that text into an Expr, resolving names through a callback.
// Format renders an Expr back to the same syntax.
package condition
