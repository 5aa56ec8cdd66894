package clock

import (
	"sync"
	"time"
)

// Clock supplies the current instant. Redemption timestamps and outbox records read it.
type Clock interface {
	Now() time.Time
}

// UTC reads the system clock in UTC.
type UTC struct{}

func (UTC) Now() time.Time {
	return time.Now().UTC()
}

// Fixed is a settable clock for tests.
type Fixed struct {
	mu      sync.Mutex
	current time.Time
}

func NewFixed(t time.Time) *Fixed {
	return &Fixed{current: t.UTC()}
}

func (f *Fixed) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.current
}

func (f *Fixed) Set(t time.Time) {
	f.mu.Lock()
	f.current = t.UTC()
	f.mu.Unlock()
}

func (f *Fixed) Advance(d time.Duration) {
	f.mu.Lock()
	f.current = f.current.Add(d)
	f.mu.Unlock()
}

// OrUTC returns c, or UTC when c is nil.
func OrUTC(c Clock) Clock {
	if c == nil {
		return UTC{}
	}
	return c
}
