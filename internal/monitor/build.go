package monitor

import (
	"fmt"
	"io"

	"github.com/roach88/motionchart/internal/condition"
	"github.com/roach88/motionchart/internal/ir"
	"github.com/roach88/motionchart/internal/statechart"
)

// BuildOption configures Build.
type BuildOption func(*buildConfig)

type buildConfig struct {
	registry   *Registry
	env        Env
	engineOpts []statechart.Option
}

// WithRegistry uses r instead of DefaultRegistry.
func WithRegistry(r *Registry) BuildOption {
	return func(c *buildConfig) {
		if r != nil {
			c.registry = r
		}
	}
}

// WithOutput sets where print nodes write.
func WithOutput(w io.Writer) BuildOption {
	return func(c *buildConfig) {
		c.env.Output = w
	}
}

// WithEngineOptions passes options through to statechart.New.
// They are applied after the chart's own completion policy, so they win.
func WithEngineOptions(opts ...statechart.Option) BuildOption {
	return func(c *buildConfig) {
		c.engineOpts = append(c.engineOpts, opts...)
	}
}

// Build turns a chart into a compiled engine.
//
// Nodes are added in declaration order first, then conditions are parsed
// and attached, so a condition may name a node declared after its owner.
func Build(spec ir.ChartSpec, world any, opts ...BuildOption) (*statechart.Engine, error) {
	cfg := buildConfig{registry: DefaultRegistry}
	for _, opt := range opts {
		opt(&cfg)
	}

	policy, err := statechart.ParseCompletionPolicy(spec.Completion)
	if err != nil {
		return nil, fmt.Errorf("chart %q: %w", spec.Name, err)
	}

	engineOpts := append([]statechart.Option{statechart.WithCompletionPolicy(policy)}, cfg.engineOpts...)
	eng := statechart.New(world, engineOpts...)

	ids := make([]statechart.NodeID, len(spec.Nodes))
	for i, n := range spec.Nodes {
		factory, ok := cfg.registry.Lookup(n.Kind)
		if !ok {
			return nil, fmt.Errorf("chart %q: node %q: unknown kind %q", spec.Name, n.Name, n.Kind)
		}
		b, err := factory(n, cfg.env)
		if err != nil {
			return nil, fmt.Errorf("chart %q: node %q: %w", spec.Name, n.Name, err)
		}
		id, err := eng.AddNode(n.Name, b)
		if err != nil {
			return nil, fmt.Errorf("chart %q: %w", spec.Name, err)
		}
		ids[i] = id
	}

	resolve := func(name string) (condition.NodeID, error) {
		id, ok := eng.Lookup(name)
		if !ok {
			return condition.NodeID{}, fmt.Errorf("unknown node %q", name)
		}
		return id, nil
	}

	for i, n := range spec.Nodes {
		if n.Start != "" {
			expr, err := condition.Parse(n.Start, resolve)
			if err != nil {
				return nil, fmt.Errorf("chart %q: node %q: start: %w", spec.Name, n.Name, err)
			}
			if err := eng.SetStartCondition(ids[i], expr); err != nil {
				return nil, fmt.Errorf("chart %q: %w", spec.Name, err)
			}
		}
		if n.End != "" {
			expr, err := condition.Parse(n.End, resolve)
			if err != nil {
				return nil, fmt.Errorf("chart %q: node %q: end: %w", spec.Name, n.Name, err)
			}
			if err := eng.SetEndCondition(ids[i], expr); err != nil {
				return nil, fmt.Errorf("chart %q: %w", spec.Name, err)
			}
		}
	}

	if err := eng.Compile(); err != nil {
		return nil, fmt.Errorf("chart %q: %w", spec.Name, err)
	}
	return eng, nil
}
