package viewer

import "time"

// Clock tracks elapsed time between frame ticks. Time never runs
// backwards: a tick earlier than the previous one has a zero delta.
type Clock struct {
	start   time.Time
	last    time.Time
	elapsed time.Duration
	delta   time.Duration
	started bool
}

// Tick advances the clock to now and returns the time since the previous
// tick. The first tick returns zero.
func (c *Clock) Tick(now time.Time) time.Duration {
	if !c.started {
		c.start, c.last, c.started = now, now, true
		c.delta = 0
		return 0
	}
	c.delta = max(0, now.Sub(c.last))
	if c.delta > 0 {
		c.last = now
	}
	c.elapsed += c.delta
	return c.delta
}

// Delta returns the duration of the last tick.
func (c *Clock) Delta() time.Duration {
	return c.delta
}

// Elapsed returns the total time accumulated by ticks.
func (c *Clock) Elapsed() time.Duration {
	return c.elapsed
}

// Reset restarts the clock on the next tick.
func (c *Clock) Reset() {
	*c = Clock{}
}
