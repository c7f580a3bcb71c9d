package backoff

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBackoff_Duration_Attempt0(t *testing.T) {
	backoff := New(100*time.Millisecond, 5*time.Second, 2.0)
	duration := backoff.Duration(0)
	assert.Equal(t, 100*time.Millisecond, duration)
}

func TestBackoff_Duration_Exponential(t *testing.T) {
	backoff := New(100*time.Millisecond, 5*time.Second, 2.0)
	backoff.Jitter = false

	assert.Equal(t, 100*time.Millisecond, backoff.Duration(1))
	assert.Equal(t, 200*time.Millisecond, backoff.Duration(2))
	assert.Equal(t, 400*time.Millisecond, backoff.Duration(3))
}

func TestBackoff_Duration_CapsAtMax(t *testing.T) {
	backoff := New(100*time.Millisecond, 500*time.Millisecond, 2.0)
	backoff.Jitter = false
	duration := backoff.Duration(10)
	assert.Equal(t, 500*time.Millisecond, duration)
}

func TestBackoff_Duration_WithJitter(t *testing.T) {
	backoff := New(100*time.Millisecond, 5*time.Second, 2.0)

	expected := 400 * time.Millisecond
	minJitter := time.Duration(float64(expected) * 0.5)
	maxJitter := expected

	for i := 0; i < 100; i++ {
		d := backoff.Duration(3)
		assert.GreaterOrEqual(t, d, minJitter)
		assert.LessOrEqual(t, d, maxJitter)
	}
}

func TestCounter_MissAndReset(t *testing.T) {
	policy := New(10*time.Millisecond, time.Second, 2.0)
	policy.Jitter = false
	c := NewCounter(policy)

	assert.Equal(t, 10*time.Millisecond, c.Miss())
	assert.Equal(t, 20*time.Millisecond, c.Miss())
	assert.Equal(t, 2, c.Misses())

	c.Reset()
	assert.Equal(t, 0, c.Misses())
	assert.Equal(t, 10*time.Millisecond, c.Miss())
}
