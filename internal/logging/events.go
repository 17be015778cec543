package logging

import (
	"time"

	"github.com/rs/zerolog"
)

// EventLogger writes dispatcher key-value logs as typed zerolog fields.
// Errors go through AnErr, durations through Dur, and empty strings (a
// lobby line has no room) are left out.
type EventLogger struct {
	logger zerolog.Logger
}

// NewEventLogger tags every entry with the dispatcher component.
func NewEventLogger(logger zerolog.Logger) *EventLogger {
	return &EventLogger{logger: logger.With().Str("component", "dispatcher").Logger()}
}

func (l *EventLogger) Debug(msg string, keysAndValues ...any) {
	write(l.logger.Debug(), msg, keysAndValues)
}

func (l *EventLogger) Info(msg string, keysAndValues ...any) {
	write(l.logger.Info(), msg, keysAndValues)
}

func (l *EventLogger) Error(msg string, keysAndValues ...any) {
	write(l.logger.Error(), msg, keysAndValues)
}

func write(ev *zerolog.Event, msg string, keysAndValues []any) {
	if ev == nil {
		return
	}
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			continue
		}
		switch v := keysAndValues[i+1].(type) {
		case error:
			ev = ev.AnErr(key, v)
		case time.Duration:
			ev = ev.Dur(key, v)
		case string:
			if v != "" {
				ev = ev.Str(key, v)
			}
		default:
			ev = ev.Interface(key, v)
		}
	}
	ev.Msg(msg)
}
