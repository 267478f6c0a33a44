package events

import (
	"testing"
	"time"
)

func TestBus_PublishSubscribe(t *testing.T) {
	bus := New()
	received := make(chan SnapshotTakenEvent, 1)

	unsub := bus.Subscribe(func(e SnapshotTakenEvent) {
		received <- e
	})
	defer unsub()

	bus.Publish(SnapshotTakenEvent{Counter: 4, Path: "box_1_4.png"})

	select {
	case got := <-received:
		if got.Counter != 4 || got.Path != "box_1_4.png" {
			t.Errorf("Unexpected event %+v", got)
		}
	case <-time.After(time.Second):
		t.Fatal("Timed out waiting for event")
	}
}

func TestBus_TypesAreRoutedSeparately(t *testing.T) {
	bus := New()
	started := make(chan RecordingStartedEvent, 1)
	stopped := make(chan RecordingStoppedEvent, 1)

	defer bus.Subscribe(func(e RecordingStartedEvent) { started <- e })()
	defer bus.Subscribe(func(e RecordingStoppedEvent) { stopped <- e })()

	bus.Publish(RecordingStoppedEvent{Frames: 10})

	select {
	case got := <-stopped:
		if got.Frames != 10 {
			t.Errorf("Expected 10 frames, got %d", got.Frames)
		}
	case <-time.After(time.Second):
		t.Fatal("Timed out waiting for stop event")
	}

	select {
	case e := <-started:
		t.Errorf("Unexpected start event %+v", e)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestBus_UnknownHandlerIsNoop(t *testing.T) {
	bus := New()
	unsub := bus.Subscribe(func(string) {})
	unsub()
}
