// Package ratelimit provides per-source admission control in front of the
// outbound transport: a sliding 60-second window of call timestamps with a
// bounded blocking wait.
package ratelimit

import (
	"sync"
	"time"
)

const (
	windowSpan = 60 * time.Second

	// A waiting caller never sleeps longer than this, even if the window
	// says it should; the call proceeds afterwards. Bounds worst-case
	// stalls at the cost of occasionally exceeding the nominal limit.
	defaultMaxWait = 5 * time.Second

	// Small cushion so the oldest timestamp has actually left the window
	// when the sleeper wakes up
	wakeCushion = 10 * time.Millisecond
)

// Window is a sliding-window rate limiter for one external source. It is
// safe for concurrent use.
type Window struct {
	mu      sync.Mutex
	limit   int
	maxWait time.Duration
	calls   []time.Time

	now   func() time.Time
	sleep func(time.Duration)
}

// NewWindow creates a limiter admitting perMinute calls per trailing minute.
// A non-positive limit disables admission control.
func NewWindow(perMinute int) *Window {
	return &Window{
		limit:   perMinute,
		maxWait: defaultMaxWait,
		now:     time.Now,
		sleep:   time.Sleep,
	}
}

// Acquire blocks until the caller may proceed, then records the call
func (w *Window) Acquire() {
	if w.limit <= 0 {
		return
	}

	w.mu.Lock()
	w.prune(w.now())

	if len(w.calls) >= w.limit {
		wait := windowSpan - w.now().Sub(w.calls[0]) + wakeCushion
		if wait > w.maxWait {
			wait = w.maxWait
		}
		if wait > 0 {
			w.mu.Unlock()
			w.sleep(wait)
			w.mu.Lock()
			w.prune(w.now())
		}
	}

	w.calls = append(w.calls, w.now())
	w.mu.Unlock()
}

// prune drops timestamps that have aged out of the trailing window.
// Caller must hold the mutex.
func (w *Window) prune(now time.Time) {
	cut := 0
	for cut < len(w.calls) && now.Sub(w.calls[cut]) > windowSpan {
		cut++
	}
	if cut > 0 {
		w.calls = append(w.calls[:0], w.calls[cut:]...)
	}
}
