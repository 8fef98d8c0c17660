package monitor

import (
	"github.com/roach88/motionchart/internal/ir"
	"github.com/roach88/motionchart/internal/statechart"
	"github.com/roach88/motionchart/internal/trinary"
)

// TrueMonitor reports true whenever it is observed.
type TrueMonitor struct{}

func (TrueMonitor) Kind() string          { return ir.KindTrueMonitor }
func (TrueMonitor) Role() statechart.Role { return statechart.RoleMonitor }

func (TrueMonitor) Observe(statechart.ObserveContext) (trinary.Value, error) {
	return trinary.True, nil
}

// ConstMonitor reports a fixed value. A const_monitor at unknown models a
// sensor that never resolves; at false, a check that never passes.
type ConstMonitor struct {
	Value trinary.Value
}

func (ConstMonitor) Kind() string          { return ir.KindConstMonitor }
func (ConstMonitor) Role() statechart.Role { return statechart.RoleMonitor }

func (m ConstMonitor) Observe(statechart.ObserveContext) (trinary.Value, error) {
	return m.Value, nil
}

// FuncMonitor evaluates a predicate over the world on every observation.
type FuncMonitor struct {
	Name string
	Fn   func(world any) trinary.Value
}

// Kind returns Name, or "func_monitor" if unset.
func (m FuncMonitor) Kind() string {
	if m.Name == "" {
		return "func_monitor"
	}
	return m.Name
}

func (FuncMonitor) Role() statechart.Role { return statechart.RoleMonitor }

func (m FuncMonitor) Observe(ctx statechart.ObserveContext) (trinary.Value, error) {
	if m.Fn == nil {
		return trinary.Unknown, nil
	}
	return m.Fn(ctx.World), nil
}
