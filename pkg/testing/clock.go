package testing

import (
	"sync"
	"time"
)

type timer struct {
	at   time.Time
	seq  int
	fire func()
}

// FakeClock is manually advanced time with scheduled callbacks, standing in
// for the animation timers of a real host. All methods are safe for
// concurrent use; callbacks run on the goroutine that calls Advance.
type FakeClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []timer
	seq    int
}

// NewFakeClock returns a FakeClock starting at a fixed epoch.
func NewFakeClock() *FakeClock {
	return &FakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

// Now returns the current fake time.
func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Set jumps to t without running timers.
func (c *FakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

// AfterFunc schedules fire to run once the clock has advanced d. A
// non-positive d runs on the next Advance, including Advance(0).
func (c *FakeClock) AfterFunc(d time.Duration, fire func()) {
	if fire == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	c.timers = append(c.timers, timer{at: c.now.Add(max(d, 0)), seq: c.seq, fire: fire})
}

// Advance moves the clock forward by d and runs every timer that has come
// due, earliest first and in scheduling order on ties. Timers scheduled by
// those callbacks also run when already due. It returns how many ran.
func (c *FakeClock) Advance(d time.Duration) int {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()

	ran := 0
	for fire := c.nextDue(); fire != nil; fire = c.nextDue() {
		fire()
		ran++
	}
	return ran
}

// Pending reports how many timers have not run yet.
func (c *FakeClock) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.timers)
}

func (c *FakeClock) nextDue() func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	best := -1
	for i, t := range c.timers {
		if t.at.After(c.now) {
			continue
		}
		if best < 0 || t.at.Before(c.timers[best].at) || (t.at.Equal(c.timers[best].at) && t.seq < c.timers[best].seq) {
			best = i
		}
	}
	if best < 0 {
		return nil
	}
	fire := c.timers[best].fire
	c.timers = append(c.timers[:best], c.timers[best+1:]...)
	return fire
}
