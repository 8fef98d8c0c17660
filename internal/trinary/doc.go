// Package trinary implements three-valued logic for monitor observations.
//
// A Value is one of False, Unknown or True. The encoding is ordered
// (False < Unknown < True) so that conjunction is the minimum and
// disjunction is the maximum of the operands:
//
//	And(True, Unknown)  == Unknown
//	And(Unknown, False) == False
//	Or(False, Unknown)  == Unknown
//	Or(Unknown, True)   == True
//	Not(Unknown)        == Unknown
//
// The algebra is associative, commutative and idempotent, so callers may
// fold any number of operands in any order and get the same answer.
//
// This package imports nothing internal.
package trinary
