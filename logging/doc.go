// Package logging provides slog module loggers for boxcam.
//
// Initialize once at startup, then ask for a logger per module:
//
//	logging.Initialize(types.LoggingConfig{Level: "info", Format: "text"})
//	logger := logging.GetLogger("detect")
//	logger.Info("Snapshot taken", "path", path)
//
// Every record is also kept in a small ring buffer. The on-screen debug
// panel (toggled with 'd') renders the most recent lines from it.
package logging
