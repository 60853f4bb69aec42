package clock

import (
	"sync"
	"time"
)

// Clock supplies the current instant. Admission and credential-expiry checks
// take it as a dependency so tests can pin time.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now().UTC()
}

// System returns a clock backed by time.Now in UTC.
func System() Clock {
	return systemClock{}
}

// Fixed is a controllable clock for tests.
type Fixed struct {
	mu      sync.Mutex
	current time.Time
}

func NewFixed(start time.Time) *Fixed {
	return &Fixed{current: start}
}

func (f *Fixed) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.current
}

func (f *Fixed) Set(t time.Time) {
	f.mu.Lock()
	f.current = t
	f.mu.Unlock()
}

// Advance moves the clock forward and returns the updated time.
func (f *Fixed) Advance(d time.Duration) time.Time {
	f.mu.Lock()
	f.current = f.current.Add(d)
	updated := f.current
	f.mu.Unlock()
	return updated
}
