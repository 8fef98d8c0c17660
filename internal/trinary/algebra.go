package trinary

// And returns the conjunction of vals: False if any operand is False,
// otherwise Unknown if any is Unknown, otherwise True.
// And() with no operands is True.
func And(vals ...Value) Value {
	result := True
	for _, v := range vals {
		result = min(result, v)
	}
	return result
}

// Or returns the disjunction of vals: True if any operand is True,
// otherwise Unknown if any is Unknown, otherwise False.
// Or() with no operands is False.
func Or(vals ...Value) Value {
	result := False
	for _, v := range vals {
		result = max(result, v)
	}
	return result
}

// Not swaps True and False. Unknown is its own negation.
func Not(v Value) Value {
	switch v {
	case True:
		return False
	case False:
		return True
	default:
		return Unknown
	}
}
