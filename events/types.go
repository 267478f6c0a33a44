package events

import "time"

// Event type constants for kelindar/event.
const (
	TypeSnapshotTaken uint32 = iota + 1
	TypeSnapshotFailed
	TypeRecordingStarted
	TypeRecordingStopped
	TypeRecordingFailed
	TypeStreamEnded
)

// Event interface required by kelindar/event.
type Event interface {
	Type() uint32
}

// SnapshotTakenEvent is published after a snapshot was written.
type SnapshotTakenEvent struct {
	RunID     string
	Counter   int
	Path      string
	Width     int
	Height    int
	Timestamp time.Time
}

// Type returns the event type identifier for SnapshotTakenEvent.
func (e SnapshotTakenEvent) Type() uint32 { return TypeSnapshotTaken }

// SnapshotFailedEvent is published when a snapshot could not be produced or written.
type SnapshotFailedEvent struct {
	RunID     string
	Counter   int
	Path      string
	Error     string
	Timestamp time.Time
}

// Type returns the event type identifier for SnapshotFailedEvent.
func (e SnapshotFailedEvent) Type() uint32 { return TypeSnapshotFailed }

// RecordingStartedEvent is published when a recording session opens.
type RecordingStartedEvent struct {
	RunID     string
	Path      string
	Codec     string
	FPS       float64
	Timestamp time.Time
}

// Type returns the event type identifier for RecordingStartedEvent.
func (e RecordingStartedEvent) Type() uint32 { return TypeRecordingStarted }

// RecordingStoppedEvent is published when a recording session is flushed and closed.
type RecordingStoppedEvent struct {
	RunID     string
	Path      string
	Frames    int
	Duration  time.Duration
	Timestamp time.Time
}

// Type returns the event type identifier for RecordingStoppedEvent.
func (e RecordingStoppedEvent) Type() uint32 { return TypeRecordingStopped }

// RecordingFailedEvent is published when a sink could not be opened.
type RecordingFailedEvent struct {
	RunID     string
	Error     string
	Timestamp time.Time
}

// Type returns the event type identifier for RecordingFailedEvent.
func (e RecordingFailedEvent) Type() uint32 { return TypeRecordingFailed }

// StreamEndedEvent is published once when the frame loop exits.
type StreamEndedEvent struct {
	RunID     string
	Frames    int
	Snapshots int
	Reason    string
	Timestamp time.Time
}

// Type returns the event type identifier for StreamEndedEvent.
func (e StreamEndedEvent) Type() uint32 { return TypeStreamEnded }
