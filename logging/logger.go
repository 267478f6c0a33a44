package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"boxcam/types"
)

const defaultBufferSize = 200

var (
	moduleLoggers = make(map[string]*slog.Logger)
	globalConfig  = types.DefaultLoggingConfig()
	logBuffer     = NewRingBuffer(defaultBufferSize)
	mutex         sync.RWMutex
)

var output io.Writer = os.Stdout

// Initialize sets up the logging system and resets existing module loggers
func Initialize(config types.LoggingConfig) {
	mutex.Lock()
	defer mutex.Unlock()

	globalConfig = config
	moduleLoggers = make(map[string]*slog.Logger)

	slog.SetDefault(slog.New(createHandler(config.Format, parseLevel(config.Level))))
}

// SetOutput redirects stdout logging; nil restores os.Stdout
func SetOutput(w io.Writer) {
	mutex.Lock()
	defer mutex.Unlock()
	if w == nil {
		w = os.Stdout
	}
	output = w
	moduleLoggers = make(map[string]*slog.Logger)
}

// GetBuffer returns the ring buffer holding recent log lines
func GetBuffer() *RingBuffer {
	return logBuffer
}

// GetLogger returns a logger for the specified module, creating it if needed
func GetLogger(module string) *slog.Logger {
	mutex.RLock()
	if logger, exists := moduleLoggers[module]; exists {
		mutex.RUnlock()
		return logger
	}
	mutex.RUnlock()

	mutex.Lock()
	defer mutex.Unlock()

	if logger, exists := moduleLoggers[module]; exists {
		return logger
	}

	level := parseLevel(globalConfig.Level)
	if levelStr, ok := globalConfig.Modules[module]; ok {
		level = parseLevel(levelStr)
	}

	logger := slog.New(createHandler(globalConfig.Format, level)).With("module", module)
	moduleLoggers[module] = logger
	return logger
}

func createHandler(format string, level slog.Level) slog.Handler {
	opts := &slog.HandlerOptions{Level: level}

	var stdoutHandler slog.Handler
	if format == "json" {
		stdoutHandler = slog.NewJSONHandler(output, opts)
	} else {
		stdoutHandler = slog.NewTextHandler(output, opts)
	}

	return &multiHandler{handlers: []slog.Handler{
		stdoutHandler,
		NewBufferHandler(logBuffer, level),
	}}
}

// parseLevel converts a level name to slog.Level, defaulting to info
func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// multiHandler fans out log records to multiple handlers
type multiHandler struct {
	handlers []slog.Handler
}

func (m *multiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range m.handlers {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (m *multiHandler) Handle(ctx context.Context, r slog.Record) error {
	for _, h := range m.handlers {
		if h.Enabled(ctx, r.Level) {
			_ = h.Handle(ctx, r.Clone())
		}
	}
	return nil
}

func (m *multiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	handlers := make([]slog.Handler, len(m.handlers))
	for i, h := range m.handlers {
		handlers[i] = h.WithAttrs(attrs)
	}
	return &multiHandler{handlers: handlers}
}

func (m *multiHandler) WithGroup(name string) slog.Handler {
	handlers := make([]slog.Handler, len(m.handlers))
	for i, h := range m.handlers {
		handlers[i] = h.WithGroup(name)
	}
	return &multiHandler{handlers: handlers}
}
