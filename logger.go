package appcore

// Logger defines the interface for lifecycle logging.
// The appcore framework uses structured logging with key-value pairs so
// that hosts can plug in slog, zap, logrus or any compatible library.
//
// The Logger interface uses variadic arguments in key-value pairs:
//
//	logger.Info("message", "key1", "value1", "key2", "value2")
//
// Every lifecycle operation logs a Debug begin marker, same-state
// re-entry logs at Warn, and observer delivery failures log at Error, so
// implementing hosts control how lifecycle diagnostics appear.
//
// Example implementation using Go's standard log/slog:
//
//	type SlogLogger struct {
//	    logger *slog.Logger
//	}
//
//	func (l *SlogLogger) Info(msg string, args ...any) {
//	    l.logger.Info(msg, args...)
//	}
type Logger interface {
	// Info logs an informational message with optional key-value pairs.
	// Used for normal lifecycle events like observer registration.
	Info(msg string, args ...any)

	// Error logs an error message with optional key-value pairs.
	// Used for observer delivery failures and other non-fatal faults.
	Error(msg string, args ...any)

	// Warn logs a warning message with optional key-value pairs.
	// Used for conditions that are unusual but ignored, such as a
	// same-state transition request.
	Warn(msg string, args ...any)

	// Debug logs a debug message with optional key-value pairs.
	// Used for operation begin markers and transition traces.
	Debug(msg string, args ...any)
}

// noopLogger discards all log output. Used when no logger is configured.
type noopLogger struct{}

func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Debug(string, ...any) {}
