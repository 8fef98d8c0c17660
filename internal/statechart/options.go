package statechart

import (
	"fmt"
	"log/slog"
	"strings"
)

// CompletionPolicy decides how several completion nodes combine.
type CompletionPolicy uint8

const (
	// CompletionAll requires every completion node to be true.
	CompletionAll CompletionPolicy = iota
	// CompletionAny requires at least one completion node to be true.
	CompletionAny
)

func (p CompletionPolicy) String() string {
	if p == CompletionAny {
		return "any"
	}
	return "all"
}

// ParseCompletionPolicy parses "all" or "any". The empty string is "all".
func ParseCompletionPolicy(s string) (CompletionPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return CompletionAll, nil
	case "any":
		return CompletionAny, nil
	default:
		return CompletionAll, fmt.Errorf("invalid completion policy %q: must be all or any", s)
	}
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the structured logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithCompletionPolicy sets how multiple completion nodes combine.
//
// Default: CompletionAll.
func WithCompletionPolicy(p CompletionPolicy) Option {
	return func(e *Engine) {
		e.policy = p
	}
}

// WithStrictCycles makes Compile reject start-condition cycles instead of
// logging a warning.
func WithStrictCycles(strict bool) Option {
	return func(e *Engine) {
		e.strictCycles = strict
	}
}

// WithClock sets the tick clock, for callers that continue an existing tick
// sequence instead of starting at 1.
func WithClock(c *Clock) Option {
	return func(e *Engine) {
		if c != nil {
			e.clock = c
		}
	}
}
