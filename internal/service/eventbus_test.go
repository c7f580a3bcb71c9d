package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bnema/recap/internal/domain"
)

func TestEventBus_PublishToJobSubscribers(t *testing.T) {
	bus := NewEventBus()
	a := bus.Subscribe("job-a")
	b := bus.Subscribe("job-b")

	bus.Publish("job-a", domain.StageEvent{JobID: "job-a", Activity: domain.ActivityProcessingStarted})

	got := <-a
	assert.Equal(t, domain.ActivityProcessingStarted, got.Activity)
	assert.Empty(t, b)
}

func TestEventBus_SlowSubscriberDropsEvents(t *testing.T) {
	bus := NewEventBus()
	ch := bus.Subscribe("job-a")

	for range 20 {
		bus.Publish("job-a", domain.StageEvent{JobID: "job-a"})
	}

	assert.Len(t, ch, cap(ch))
}

func TestEventBus_Unsubscribe(t *testing.T) {
	bus := NewEventBus()
	first := bus.Subscribe("job-a")
	second := bus.Subscribe("job-a")
	assert.Equal(t, 2, bus.Subscribers("job-a"))

	bus.Unsubscribe("job-a", first)
	_, open := <-first
	assert.False(t, open)
	assert.Equal(t, 1, bus.Subscribers("job-a"))

	bus.Unsubscribe("job-a", second)
	assert.Equal(t, 0, bus.Subscribers("job-a"))

	// publishing without subscribers is a no-op
	bus.Publish("job-a", domain.StageEvent{})
}
