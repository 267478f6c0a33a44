package logging

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
)

// LogEntry is a single log line stored in the ring buffer
type LogEntry struct {
	Timestamp time.Time
	Level     slog.Level
	Module    string
	Message   string
	Attrs     []string
}

// String renders the entry the way the debug panel shows it
func (e LogEntry) String() string {
	var sb strings.Builder
	sb.WriteString(e.Timestamp.Format("15:04:05"))
	sb.WriteString(" ")
	sb.WriteString(e.Message)
	for _, a := range e.Attrs {
		sb.WriteString(" ")
		sb.WriteString(a)
	}
	return sb.String()
}

// RingBuffer is a thread-safe circular buffer for log entries
type RingBuffer struct {
	entries []LogEntry
	size    int
	head    int
	count   int
	mu      sync.RWMutex
}

// NewRingBuffer creates a new ring buffer with the specified capacity
func NewRingBuffer(size int) *RingBuffer {
	return &RingBuffer{
		entries: make([]LogEntry, size),
		size:    size,
	}
}

// Write adds a log entry, overwriting the oldest entry if full
func (rb *RingBuffer) Write(entry LogEntry) {
	rb.mu.Lock()
	defer rb.mu.Unlock()

	rb.entries[rb.head] = entry
	rb.head = (rb.head + 1) % rb.size

	if rb.count < rb.size {
		rb.count++
	}
}

// Last returns up to n most recent entries, oldest first
func (rb *RingBuffer) Last(n int) []LogEntry {
	rb.mu.RLock()
	defer rb.mu.RUnlock()

	if n > rb.count {
		n = rb.count
	}
	if n <= 0 {
		return nil
	}

	result := make([]LogEntry, n)
	start := (rb.head - n + rb.size) % rb.size
	for i := 0; i < n; i++ {
		result[i] = rb.entries[(start+i)%rb.size]
	}
	return result
}

// Count returns the number of entries in the buffer
func (rb *RingBuffer) Count() int {
	rb.mu.RLock()
	defer rb.mu.RUnlock()
	return rb.count
}

// BufferHandler is a slog.Handler that writes to a ring buffer
type BufferHandler struct {
	buffer *RingBuffer
	level  slog.Level
	attrs  []slog.Attr
}

// NewBufferHandler creates a handler that writes to the given ring buffer
func NewBufferHandler(buffer *RingBuffer, level slog.Level) *BufferHandler {
	return &BufferHandler{buffer: buffer, level: level}
}

// Enabled implements slog.Handler
func (h *BufferHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

// Handle implements slog.Handler
func (h *BufferHandler) Handle(_ context.Context, r slog.Record) error {
	entry := LogEntry{
		Timestamp: r.Time,
		Level:     r.Level,
		Module:    "app",
		Message:   r.Message,
	}

	add := func(a slog.Attr) bool {
		switch a.Key {
		case "module":
			entry.Module = a.Value.String()
		case "run_id":
			// same for every line, logged once at startup
		default:
			entry.Attrs = append(entry.Attrs, fmt.Sprintf("%s=%v", a.Key, a.Value.Any()))
		}
		return true
	}
	for _, a := range h.attrs {
		add(a)
	}
	r.Attrs(add)

	h.buffer.Write(entry)
	return nil
}

// WithAttrs implements slog.Handler
func (h *BufferHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	newAttrs := make([]slog.Attr, len(h.attrs)+len(attrs))
	copy(newAttrs, h.attrs)
	copy(newAttrs[len(h.attrs):], attrs)
	return &BufferHandler{buffer: h.buffer, level: h.level, attrs: newAttrs}
}

// WithGroup implements slog.Handler. Groups are flattened in the panel.
func (h *BufferHandler) WithGroup(_ string) slog.Handler {
	return h
}
