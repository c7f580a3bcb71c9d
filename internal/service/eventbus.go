package service

import (
	"sync"

	"github.com/bnema/recap/internal/domain"
)

// EventPublisher receives every event appended by the pipeline.
type EventPublisher interface {
	Publish(jobID string, event domain.StageEvent)
}

// EventBus fans stage events out to per-job subscribers.
type EventBus struct {
	subscribers map[string][]chan domain.StageEvent
	mu          sync.RWMutex
}

func NewEventBus() *EventBus {
	return &EventBus{
		subscribers: make(map[string][]chan domain.StageEvent),
	}
}

func (eb *EventBus) Subscribe(jobID string) chan domain.StageEvent {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	ch := make(chan domain.StageEvent, 16)
	eb.subscribers[jobID] = append(eb.subscribers[jobID], ch)
	return ch
}

func (eb *EventBus) Unsubscribe(jobID string, ch chan domain.StageEvent) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	subs := eb.subscribers[jobID]
	for i, sub := range subs {
		if sub == ch {
			eb.subscribers[jobID] = append(subs[:i], subs[i+1:]...)
			close(ch)
			break
		}
	}

	if len(eb.subscribers[jobID]) == 0 {
		delete(eb.subscribers, jobID)
	}
}

func (eb *EventBus) Publish(jobID string, event domain.StageEvent) {
	eb.mu.RLock()
	defer eb.mu.RUnlock()

	for _, ch := range eb.subscribers[jobID] {
		select {
		case ch <- event:
		default:
			// slow subscriber, drop
		}
	}
}

// Subscribers reports how many channels listen on a job.
func (eb *EventBus) Subscribers(jobID string) int {
	eb.mu.RLock()
	defer eb.mu.RUnlock()
	return len(eb.subscribers[jobID])
}
