package client

import (
	"sync"
	"time"
)

const (
	// SyncInterval bounds general full-state sync emission (image drag,
	// resize) to one event per window.
	SyncInterval = 100 * time.Millisecond

	// PaddleInterval is tighter because gameplay feel is latency-sensitive.
	PaddleInterval = 50 * time.Millisecond
)

// Throttle coalesces a rapid local mutation stream into bounded-rate emits.
// The first Trigger in a window schedules one trailing emit of the state as
// it stands when the window closes; Triggers landing inside a pending
// window are absorbed at no extra cost.
type Throttle struct {
	mu       sync.Mutex
	interval time.Duration
	emit     func()
	pending  bool
	stopped  bool
	timer    *time.Timer
}

// NewThrottle creates a throttle that calls emit at most once per interval.
func NewThrottle(interval time.Duration, emit func()) *Throttle {
	return &Throttle{interval: interval, emit: emit}
}

// Trigger notes a local mutation. The emit callback reads current state, so
// every mutation inside the window is carried by the single trailing emit.
func (t *Throttle) Trigger() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.pending || t.stopped {
		return
	}
	t.pending = true
	t.timer = time.AfterFunc(t.interval, t.fire)
}

func (t *Throttle) fire() {
	t.mu.Lock()
	t.pending = false
	stopped := t.stopped
	t.mu.Unlock()
	if !stopped {
		t.emit()
	}
}

// Stop cancels any pending emit and prevents further ones.
func (t *Throttle) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopped = true
	if t.timer != nil {
		t.timer.Stop()
	}
	t.pending = false
}

// Pending reports whether an emit is scheduled.
func (t *Throttle) Pending() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.pending
}
