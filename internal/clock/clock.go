// Package clock provides the millisecond time source used by the simulation
// and the frame scheduler.
package clock

import (
	"sync"
	"time"
)

// Clock is a monotonic millisecond timestamp source that can also pause the
// calling goroutine.
type Clock interface {
	Millis() int64
	Sleep(d time.Duration)
}

// System reads the process monotonic clock, counting from its creation.
type System struct {
	start time.Time
}

func NewSystem() *System {
	return &System{start: time.Now()}
}

// Millis returns the milliseconds elapsed since the clock was created.
func (s *System) Millis() int64 {
	return time.Since(s.start).Milliseconds()
}

func (s *System) Sleep(d time.Duration) {
	if d > 0 {
		time.Sleep(d)
	}
}

// Manual is a hand-driven clock for tests. Sleep advances time instead of
// blocking and records the requested durations.
type Manual struct {
	mu    sync.Mutex
	now   int64
	slept []time.Duration
}

func NewManual(startMillis int64) *Manual {
	return &Manual{now: startMillis}
}

func (m *Manual) Millis() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Advance moves the clock forward by ms milliseconds.
func (m *Manual) Advance(ms int64) {
	m.mu.Lock()
	m.now += ms
	m.mu.Unlock()
}

// Set jumps the clock to an absolute timestamp.
func (m *Manual) Set(ms int64) {
	m.mu.Lock()
	m.now = ms
	m.mu.Unlock()
}

func (m *Manual) Sleep(d time.Duration) {
	m.mu.Lock()
	m.slept = append(m.slept, d)
	m.now += d.Milliseconds()
	m.mu.Unlock()
}

// Slept returns every duration passed to Sleep so far.
func (m *Manual) Slept() []time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]time.Duration, len(m.slept))
	copy(out, m.slept)
	return out
}
