package monitor

import (
	"fmt"
	"io"

	"github.com/roach88/motionchart/internal/ir"
	"github.com/roach88/motionchart/internal/statechart"
	"github.com/roach88/motionchart/internal/trinary"
)

// Print writes Message on its first observation and reports true from then
// on.
//
// The side effect is keyed on ObserveContext.Evaluations, which the engine
// owns, so one Print value can be shared between engines (for example a
// run and its replay) and still prints once per engine.
type Print struct {
	Message string

	// Writer receives the message followed by a newline.
	// Nil logs the message at Info level instead.
	Writer io.Writer
}

func (Print) Kind() string          { return ir.KindPrint }
func (Print) Role() statechart.Role { return statechart.RolePayload }

func (p Print) Observe(ctx statechart.ObserveContext) (trinary.Value, error) {
	if ctx.Evaluations > 0 {
		return trinary.True, nil
	}

	if p.Writer == nil {
		if ctx.Logger != nil {
			ctx.Logger.Info(p.Message, "node", ctx.Node, "tick", ctx.Tick)
		}
		return trinary.True, nil
	}

	if _, err := fmt.Fprintln(p.Writer, p.Message); err != nil {
		return trinary.Unknown, fmt.Errorf("print %s: %w", ctx.Node, err)
	}
	return trinary.True, nil
}
