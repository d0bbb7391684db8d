package dodge

import "time"

// FrameClock measures the time between frames.
type FrameClock struct {
	now  func() time.Time
	last time.Time
}

// NewFrameClock creates a clock anchored at now(). A nil now uses time.Now.
func NewFrameClock(now func() time.Time) *FrameClock {
	if now == nil {
		now = time.Now
	}
	return &FrameClock{now: now, last: now()}
}

// Delta returns the time since the previous call (or anchor) and moves the
// anchor forward.
func (c *FrameClock) Delta() time.Duration {
	t := c.now()
	d := t.Sub(c.last)
	c.last = t
	if d < 0 {
		return 0
	}
	return d
}

// Reanchor discards the time elapsed since the last frame. Called on resume
// so the pause is not simulated as one long frame.
func (c *FrameClock) Reanchor() {
	c.last = c.now()
}
