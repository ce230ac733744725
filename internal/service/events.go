package service

import (
	"github.com/bekalpaslan/cosmograph/internal/events"
)

// EventBus allows publishing and subscribing to push events
type EventBus struct {
	subscribers []chan<- events.Event
}

// NewEventBus creates a new event bus
func NewEventBus() *EventBus {
	return &EventBus{
		subscribers: make([]chan<- events.Event, 0),
	}
}

// Subscribe adds a subscriber to receive events. Subscriptions happen during
// startup, before publishing begins.
func (eb *EventBus) Subscribe(ch chan<- events.Event) {
	eb.subscribers = append(eb.subscribers, ch)
}

// Publish sends an event to all subscribers
func (eb *EventBus) Publish(event events.Event) {
	for _, ch := range eb.subscribers {
		select {
		case ch <- event:
		default:
			// Subscriber is slow, skip
		}
	}
}
