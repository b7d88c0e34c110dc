package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// fakeClock drives a Window deterministically: sleeps advance the clock
// instead of blocking.
type fakeClock struct {
	current time.Time
	slept   []time.Duration
}

func newFakeWindow(perMinute int) (*Window, *fakeClock) {
	clock := &fakeClock{current: time.Unix(1_700_000_000, 0)}
	w := NewWindow(perMinute)
	w.now = func() time.Time { return clock.current }
	w.sleep = func(d time.Duration) {
		clock.slept = append(clock.slept, d)
		clock.current = clock.current.Add(d)
	}
	return w, clock
}

func TestAcquire_UnderLimitNeverSleeps(t *testing.T) {
	w, clock := newFakeWindow(3)

	for i := 0; i < 3; i++ {
		w.Acquire()
		clock.current = clock.current.Add(time.Second)
	}

	assert.Empty(t, clock.slept)
}

func TestAcquire_OverLimitWaitsUntilOldestAgesOut(t *testing.T) {
	w, clock := newFakeWindow(2)

	w.Acquire() // t=0
	clock.current = clock.current.Add(10 * time.Second)
	w.Acquire() // t=10

	clock.current = clock.current.Add(10 * time.Second)
	w.Acquire() // t=20, window full, oldest exits at t=60

	assert.Len(t, clock.slept, 1)
	// Capped at maxWait even though the window wants ~40s
	assert.Equal(t, defaultMaxWait, clock.slept[0])
}

func TestAcquire_WaitBoundedByOldestExit(t *testing.T) {
	w, clock := newFakeWindow(1)
	w.maxWait = time.Minute // disable the cap for this test

	w.Acquire() // t=0
	clock.current = clock.current.Add(58 * time.Second)
	w.Acquire() // oldest exits the window at t=60

	assert.Len(t, clock.slept, 1)
	assert.Equal(t, 2*time.Second+wakeCushion, clock.slept[0])
}

func TestAcquire_ExpiredCallsFreeTheWindow(t *testing.T) {
	w, clock := newFakeWindow(2)

	w.Acquire()
	w.Acquire()
	clock.current = clock.current.Add(61 * time.Second)
	w.Acquire()

	assert.Empty(t, clock.slept)
}

func TestAcquire_ZeroLimitDisabled(t *testing.T) {
	w, clock := newFakeWindow(0)

	for i := 0; i < 100; i++ {
		w.Acquire()
	}

	assert.Empty(t, clock.slept)
}
