// Package log provides the structured logging interface used by churnscope.
//
// The interface is deliberately small and slog-shaped so that estimators and
// pipeline stages do not depend on a concrete backend. The default backend is
// zerolog (see NewZerologProvider).
//
// Example usage:
//
//	logger := log.GetLoggerWithName("analysis.clean").With(
//	    log.StageKey, "clean",
//	)
//	logger.Info("Rows dropped",
//	    log.OperationKey, "drop_missing",
//	    log.SamplesKey, 11,
//	)
package log

// Logger defines a structured logger with key/value fields.
type Logger interface {
	// Debug logs a debug-level message.
	Debug(msg string, fields ...any)

	// Info logs an info-level message.
	Info(msg string, fields ...any)

	// Warn logs a warning-level message.
	Warn(msg string, fields ...any)

	// Error logs an error-level message. If the first field is an error it is
	// attached as the error of the record, the rest are key/value pairs.
	//
	//   logger.Error("Fit failed", err, log.OperationKey, log.OperationFit)
	Error(msg string, fields ...any)

	// With returns a Logger with the given key/value pairs attached to every record.
	With(fields ...any) Logger

	// Enabled reports whether records at level are emitted.
	Enabled(level Level) bool
}

// Level is a logging level. Values are compatible with slog.Level.
type Level int

// Standard logging levels.
const (
	LevelDebug Level = -4
	LevelInfo  Level = 0
	LevelWarn  Level = 4
	LevelError Level = 8
)

// String returns the string representation of the log level.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// LoggerProvider creates loggers sharing one backend and level.
type LoggerProvider interface {
	// GetLogger returns the default logger.
	GetLogger() Logger

	// GetLoggerWithName returns a logger tagged with a component name.
	GetLoggerWithName(name string) Logger

	// SetLevel sets the minimum level for all loggers from this provider.
	SetLevel(level Level)
}
