package statechart

import "sync/atomic"

// Clock is the logical tick counter of an engine.
//
// Ticks are numbered 1, 2, 3, ... Nothing in the engine reads wall-clock
// time; the tick number is the only notion of time in a trace, which is
// what makes a replay produce an identical trace.
type Clock struct {
	tick atomic.Int64
}

// NewClock creates a clock that has not ticked yet.
func NewClock() *Clock {
	return &Clock{}
}

// NewClockAt creates a clock positioned after tick start.
// The next call to Next returns start+1.
func NewClockAt(start int64) *Clock {
	c := &Clock{}
	c.tick.Store(start)
	return c
}

// Next advances the clock and returns the new tick number.
func (c *Clock) Next() int64 {
	return c.tick.Add(1)
}

// Current returns the number of the last tick, or 0 before the first.
func (c *Clock) Current() int64 {
	return c.tick.Load()
}
