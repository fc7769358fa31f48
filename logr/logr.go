// Package logr defines the Logger interface used across cdcconv.
package logr

// Logger is a sub-interface of github.com/go-logr/logr::Logger.
// keysAndValues are alternating string keys and arbitrary values.
type Logger interface {
	// Info logs a non-error message with the given key/value pairs as context.
	Info(msg string, keysAndValues ...interface{})

	// Error logs an error, with the given message and key/value pairs as context.
	Error(err error, msg string, keysAndValues ...interface{})

	// WithValues returns a logger carrying some key-value pairs of context.
	WithValues(keysAndValues ...interface{}) Logger
}

type nopLogger struct{}

func (nopLogger) Info(msg string, keysAndValues ...interface{}) {}

func (nopLogger) Error(err error, msg string, keysAndValues ...interface{}) {}

func (nopLogger) WithValues(keysAndValues ...interface{}) Logger { return nopLogger{} }

var (
	// Nop does nothing.
	Nop Logger = nopLogger{}
)

// OrNop returns l, or Nop if l is nil.
func OrNop(l Logger) Logger {
	if l == nil {
		return Nop
	}
	return l
}
