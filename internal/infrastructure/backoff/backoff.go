package backoff

import (
	"math"
	"math/rand/v2"
	"time"
)

// Backoff computes exponential delays between Min and Max.
type Backoff struct {
	Min    time.Duration
	Max    time.Duration
	Factor float64
	Jitter bool
}

func New(minDelay, maxDelay time.Duration, factor float64) *Backoff {
	return &Backoff{
		Min:    minDelay,
		Max:    maxDelay,
		Factor: factor,
		Jitter: true,
	}
}

// Duration returns the delay before the given 1-based attempt. With jitter
// the delay lies in [d/2, d].
func (b *Backoff) Duration(attempt int) time.Duration {
	if attempt <= 0 {
		return b.Min
	}

	duration := float64(b.Min) * math.Pow(b.Factor, float64(attempt-1))

	if duration > float64(b.Max) {
		duration = float64(b.Max)
	}

	if b.Jitter {
		duration = duration * (0.5 + rand.Float64()*0.5)
	}

	return time.Duration(duration)
}

// Counter tracks consecutive misses, e.g. empty polls of a queue.
type Counter struct {
	policy *Backoff
	misses int
}

func NewCounter(policy *Backoff) *Counter {
	return &Counter{policy: policy}
}

// Miss records a miss and returns how long to wait before the next try.
func (c *Counter) Miss() time.Duration {
	c.misses++
	return c.policy.Duration(c.misses)
}

func (c *Counter) Reset() {
	c.misses = 0
}

func (c *Counter) Misses() int {
	return c.misses
}
