package store

import (
	"fmt"
	"strings"

	"github.com/roach88/motionchart/internal/ir"
)

// Predicate filters node_states rows when reading a trace.
//
// This is a sealed interface - only types in this package implement it.
// Predicates compile to parameterized SQL; values are never interpolated.
//
// Predicate types:
//   - Equals: column = literal
//   - TickRange: tick BETWEEN from AND to
//   - And: all predicates must be true
type Predicate interface {
	predicateNode()
}

// Column is a filterable node_states column.
type Column string

const (
	ColumnNode        Column = "name"
	ColumnKind        Column = "kind"
	ColumnLifeCycle   Column = "life_cycle"
	ColumnObservation Column = "observation"
)

func (c Column) valid() bool {
	switch c {
	case ColumnNode, ColumnKind, ColumnLifeCycle, ColumnObservation:
		return true
	}
	return false
}

// Equals matches rows whose column equals the value.
//
// Example:
//
//	Equals{Column: ColumnObservation, Value: ir.String("true")}
//
// Translates to SQL:
//
//	observation = ?
type Equals struct {
	Column Column
	Value  ir.Value
}

func (Equals) predicateNode() {}

// TickRange matches ticks in [From, To]. A zero bound is open.
type TickRange struct {
	From int64
	To   int64
}

func (TickRange) predicateNode() {}

// And matches rows that satisfy every predicate. An empty And matches all
// rows.
type And struct {
	Predicates []Predicate
}

func (And) predicateNode() {}

// NodeFilter returns a predicate selecting the named node.
// The name is NFC-normalized the same way the engine does.
func NodeFilter(name string) Predicate {
	return Equals{Column: ColumnNode, Value: ir.String(ir.NormalizeName(name))}
}

// compilePredicate compiles a predicate to a SQL WHERE fragment.
// Returns (sql, params, error).
func compilePredicate(p Predicate) (string, []any, error) {
	if p == nil {
		return "1 = 1", nil, nil
	}

	switch pred := p.(type) {
	case Equals:
		return compileEquals(pred)
	case *Equals:
		return compileEquals(*pred)
	case TickRange:
		return compileTickRange(pred)
	case *TickRange:
		return compileTickRange(*pred)
	case And:
		return compileAnd(pred)
	case *And:
		return compileAnd(*pred)
	default:
		return "", nil, fmt.Errorf("unsupported predicate type: %T", p)
	}
}

// compileEquals compiles an Equals predicate to "column = ?".
// The column is checked against a fixed list before it reaches the SQL.
func compileEquals(eq Equals) (string, []any, error) {
	if !eq.Column.valid() {
		return "", nil, fmt.Errorf("unknown column %q", eq.Column)
	}
	param, err := valueToParam(eq.Value)
	if err != nil {
		return "", nil, fmt.Errorf("column %s: %w", eq.Column, err)
	}
	return fmt.Sprintf("ns.%s = ?", eq.Column), []any{param}, nil
}

func compileTickRange(r TickRange) (string, []any, error) {
	if r.From < 0 || r.To < 0 {
		return "", nil, fmt.Errorf("tick range bounds must be >= 0, got [%d, %d]", r.From, r.To)
	}
	if r.To != 0 && r.From > r.To {
		return "", nil, fmt.Errorf("empty tick range [%d, %d]", r.From, r.To)
	}

	var parts []string
	var params []any
	if r.From > 0 {
		parts = append(parts, "ns.tick >= ?")
		params = append(params, r.From)
	}
	if r.To > 0 {
		parts = append(parts, "ns.tick <= ?")
		params = append(params, r.To)
	}
	if len(parts) == 0 {
		return "1 = 1", nil, nil
	}
	return strings.Join(parts, " AND "), params, nil
}

func compileAnd(and And) (string, []any, error) {
	if len(and.Predicates) == 0 {
		return "1 = 1", nil, nil
	}

	sqlParts := make([]string, 0, len(and.Predicates))
	var allParams []any
	for _, pred := range and.Predicates {
		sql, params, err := compilePredicate(pred)
		if err != nil {
			return "", nil, err
		}
		sqlParts = append(sqlParts, "("+sql+")")
		allParams = append(allParams, params...)
	}
	return strings.Join(sqlParts, " AND "), allParams, nil
}

// valueToParam converts an ir.Value to a Go native type for a SQL parameter.
func valueToParam(v ir.Value) (any, error) {
	switch val := v.(type) {
	case ir.String:
		return string(val), nil
	case ir.Int:
		return int64(val), nil
	case ir.Bool:
		return bool(val), nil
	case nil:
		return nil, fmt.Errorf("nil value cannot be used as SQL parameter")
	default:
		return nil, fmt.Errorf("%T cannot be used as SQL parameter", v)
	}
}
