// Package zerologr adapts github.com/rs/zerolog to logr.Logger.
package zerologr

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/huangjunwen/cdcconv/logr"
)

// Logger implements logr.Logger using zerolog.Logger.
type Logger zerolog.Logger

var (
	_ logr.Logger = (*Logger)(nil)
)

// New wraps a zerolog.Logger.
func New(l zerolog.Logger) *Logger {
	return (*Logger)(&l)
}

func (logger *Logger) Info(msg string, keysAndValues ...interface{}) {
	l := (*zerolog.Logger)(logger)
	withFields(l.Info(), keysAndValues).Msg(msg)
}

func (logger *Logger) Error(err error, msg string, keysAndValues ...interface{}) {
	l := (*zerolog.Logger)(logger)
	withFields(l.Error().Err(err), keysAndValues).Msg(msg)
}

func (logger *Logger) WithValues(keysAndValues ...interface{}) logr.Logger {
	ctx := (*zerolog.Logger)(logger).With()
	for i := 0; i < len(keysAndValues); i += 2 {
		key, val := pair(keysAndValues, i)
		ctx = ctx.Interface(key, val)
	}
	return New(ctx.Logger())
}

func withFields(ev *zerolog.Event, keysAndValues []interface{}) *zerolog.Event {
	for i := 0; i < len(keysAndValues); i += 2 {
		key, val := pair(keysAndValues, i)
		ev = ev.Interface(key, val)
	}
	return ev
}

// pair returns the i-th key/value. A dangling key gets a nil value, non-string keys are
// formatted.
func pair(keysAndValues []interface{}, i int) (string, interface{}) {
	key, ok := keysAndValues[i].(string)
	if !ok {
		key = fmt.Sprint(keysAndValues[i])
	}
	if i+1 >= len(keysAndValues) {
		return key, nil
	}
	return key, keysAndValues[i+1]
}
