package dispatcher

import (
	"errors"
	"fmt"
	"time"

	"github.com/psbattle/engine/internal/parser"
)

// ErrUnknownCommand is returned by Dispatch when no handler is registered.
var ErrUnknownCommand = errors.New("unknown command")

// Event is one protocol line routed to a handler.
type Event struct {
	Command   parser.Command
	Message   *parser.Message
	Timestamp time.Time
}

// NewEvent wraps a parsed message.
func NewEvent(m *parser.Message) Event {
	return Event{Command: m.Command, Message: m, Timestamp: time.Now()}
}

// HandlerFunc processes an event.
type HandlerFunc func(Event) error

// Logger interface for pluggable logging.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
}

// Option configures handler registration.
type Option func(*config)

type config struct {
	logged  bool
	onError func(Event, error)
}

// Logged adds debug logging to the handler.
func Logged() Option {
	return func(c *config) {
		c.logged = true
	}
}

// OnError calls f with every error the handler returns.
func OnError(f func(Event, error)) Option {
	return func(c *config) {
		c.onError = f
	}
}

// Dispatcher routes events to registered handlers. Registration happens
// before the first Dispatch; Dispatch is called from a single goroutine.
type Dispatcher struct {
	handlers map[parser.Command]HandlerFunc
	logger   Logger

	metrics instruments
}

// New creates a new Dispatcher with the given logger.
// Uses the global OTel meter for metrics (no-op if not configured).
func New(logger Logger) (*Dispatcher, error) {
	ins, err := newInstruments()
	if err != nil {
		return nil, err
	}
	return &Dispatcher{
		handlers: make(map[parser.Command]HandlerFunc),
		logger:   logger,
		metrics:  ins,
	}, nil
}

// Register adds a handler for the given command with optional configuration.
func (d *Dispatcher) Register(command parser.Command, h HandlerFunc, opts ...Option) {
	cfg := &config{}
	for _, opt := range opts {
		opt(cfg)
	}

	handler := h

	if cfg.onError != nil {
		handler = withErrorHook(handler, cfg.onError)
	}

	if cfg.logged {
		handler = d.withLogging(command, handler)
	}

	d.handlers[command] = d.withMetrics(command, handler)
}

// Dispatch routes an event to its registered handler.
func (d *Dispatcher) Dispatch(e Event) error {
	h, ok := d.handlers[e.Command]
	if !ok {
		name := e.Command.String()
		if e.Message != nil {
			name = e.Message.Name
		}
		d.metrics.missing(name)
		return fmt.Errorf("%w: %s", ErrUnknownCommand, name)
	}
	return h(e)
}

// HasHandler returns true if a handler is registered for the command.
func (d *Dispatcher) HasHandler(command parser.Command) bool {
	_, ok := d.handlers[command]
	return ok
}

func (d *Dispatcher) withMetrics(command parser.Command, h HandlerFunc) HandlerFunc {
	attr := commandAttr(command.String())
	return func(e Event) error {
		start := time.Now()
		err := h(e)
		d.metrics.handled(attr, time.Since(start), err)
		return err
	}
}

func withErrorHook(h HandlerFunc, hook func(Event, error)) HandlerFunc {
	return func(e Event) error {
		err := h(e)
		if err != nil {
			hook(e, err)
		}
		return err
	}
}

func (d *Dispatcher) withLogging(command parser.Command, h HandlerFunc) HandlerFunc {
	return func(e Event) error {
		start := time.Now()
		room := ""
		if e.Message != nil {
			room = e.Message.RoomID
		}
		d.logger.Debug("handling event", "command", command.String(), "room", room)

		err := h(e)

		if err != nil {
			d.logger.Error("event failed", "command", command.String(), "room", room, "duration", time.Since(start), "error", err)
		} else {
			d.logger.Debug("event complete", "command", command.String(), "duration", time.Since(start))
		}

		return err
	}
}
