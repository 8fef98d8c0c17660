package testutil

import (
	"sync"
	"time"
)

// ManualTicker is a ticker that only fires when told to.
//
// It satisfies the runner's Ticker interface, so tests drive a fixed-rate
// loop one tick at a time without sleeping.
//
// Thread-safety: Fire and Stop may be called from any goroutine.
type ManualTicker struct {
	mu      sync.Mutex
	c       chan time.Time
	stopped bool
	fired   int
}

// NewManualTicker creates a ticker with a buffered channel of size buf.
// Fire blocks once buf ticks are pending.
func NewManualTicker(buf int) *ManualTicker {
	return &ManualTicker{c: make(chan time.Time, buf)}
}

// C returns the tick channel.
func (t *ManualTicker) C() <-chan time.Time {
	return t.c
}

// Fire delivers one tick. It is a no-op after Stop.
func (t *ManualTicker) Fire() {
	t.mu.Lock()
	if t.stopped {
		t.mu.Unlock()
		return
	}
	t.fired++
	t.mu.Unlock()
	t.c <- time.Time{}
}

// Stop stops the ticker. Pending ticks stay in the channel.
func (t *ManualTicker) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopped = true
}

// Fired returns how many ticks were delivered.
func (t *ManualTicker) Fired() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.fired
}

// Stopped reports whether Stop was called.
func (t *ManualTicker) Stopped() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stopped
}
