package monitor

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"sync"

	"github.com/roach88/motionchart/internal/ir"
	"github.com/roach88/motionchart/internal/statechart"
	"github.com/roach88/motionchart/internal/trinary"
)

// Env is what a Factory may use besides the node spec.
type Env struct {
	// Output is where print nodes write. Nil logs instead.
	Output io.Writer
}

// Factory builds the behaviour for one declared node.
type Factory func(spec ir.NodeSpec, env Env) (statechart.Behavior, error)

// Registry maps kind names to factories.
//
// Thread-safety: Register and Lookup may be called from any goroutine.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry creates a registry holding the built-in kinds.
func NewRegistry() *Registry {
	r := &Registry{factories: make(map[string]Factory)}
	r.factories[ir.KindTrueMonitor] = newTrueMonitor
	r.factories[ir.KindConstMonitor] = newConstMonitor
	r.factories[ir.KindPrint] = newPrint
	r.factories[ir.KindEndMotion] = newEndMotion
	r.factories[ir.KindCancelMotion] = newCancelMotion
	return r
}

// DefaultRegistry holds the built-in kinds.
var DefaultRegistry = NewRegistry()

// ErrKindExists is returned when registering a kind twice.
var ErrKindExists = errors.New("kind already registered")

// Register adds a kind. Each kind can be registered once.
func (r *Registry) Register(kind string, f Factory) error {
	if kind == "" {
		return fmt.Errorf("register: kind must be non-empty")
	}
	if f == nil {
		return fmt.Errorf("register %q: factory is nil", kind)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.factories[kind]; exists {
		return fmt.Errorf("register %q: %w", kind, ErrKindExists)
	}
	r.factories[kind] = f
	return nil
}

// Lookup returns the factory for kind.
func (r *Registry) Lookup(kind string) (Factory, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.factories[kind]
	return f, ok
}

// Has reports whether kind is registered.
func (r *Registry) Has(kind string) bool {
	_, ok := r.Lookup(kind)
	return ok
}

// Kinds returns the registered kind names, sorted.
func (r *Registry) Kinds() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	kinds := make([]string, 0, len(r.factories))
	for k := range r.factories {
		kinds = append(kinds, k)
	}
	slices.Sort(kinds)
	return kinds
}

func newTrueMonitor(ir.NodeSpec, Env) (statechart.Behavior, error) {
	return TrueMonitor{}, nil
}

func newConstMonitor(spec ir.NodeSpec, _ Env) (statechart.Behavior, error) {
	v, err := trinary.Parse(spec.Value)
	if err != nil {
		return nil, fmt.Errorf("const_monitor value: %w", err)
	}
	return ConstMonitor{Value: v}, nil
}

func newPrint(spec ir.NodeSpec, env Env) (statechart.Behavior, error) {
	return Print{Message: spec.Message, Writer: env.Output}, nil
}

func newEndMotion(ir.NodeSpec, Env) (statechart.Behavior, error) {
	return EndMotion{}, nil
}

func newCancelMotion(spec ir.NodeSpec, _ Env) (statechart.Behavior, error) {
	if spec.Error == "" {
		return CancelMotion{}, nil
	}
	return CancelMotion{Err: errors.New(spec.Error)}, nil
}
