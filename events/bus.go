package events

import (
	"github.com/kelindar/event"
)

// Bus wraps a kelindar/event dispatcher.
// Subscribers run asynchronously and must not touch frame loop state.
type Bus struct {
	dispatcher *event.Dispatcher
}

// New creates a new event bus
func New() *Bus {
	return &Bus{
		dispatcher: event.NewDispatcher(),
	}
}

// Publish publishes an event to all subscribers
func (b *Bus) Publish(ev Event) {
	switch e := ev.(type) {
	case SnapshotTakenEvent:
		event.Publish(b.dispatcher, e)
	case SnapshotFailedEvent:
		event.Publish(b.dispatcher, e)
	case RecordingStartedEvent:
		event.Publish(b.dispatcher, e)
	case RecordingStoppedEvent:
		event.Publish(b.dispatcher, e)
	case RecordingFailedEvent:
		event.Publish(b.dispatcher, e)
	case StreamEndedEvent:
		event.Publish(b.dispatcher, e)
	}
}

// Subscribe registers a handler; its parameter type selects the events it receives.
// Returns an unsubscribe function.
func (b *Bus) Subscribe(handler any) func() {
	switch h := handler.(type) {
	case func(SnapshotTakenEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(SnapshotFailedEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(RecordingStartedEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(RecordingStoppedEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(RecordingFailedEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(StreamEndedEvent):
		return event.Subscribe(b.dispatcher, h)
	default:
		return func() {}
	}
}

// Close stops the dispatcher
func (b *Bus) Close() error {
	return b.dispatcher.Close()
}
