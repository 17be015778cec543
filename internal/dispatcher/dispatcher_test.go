package dispatcher

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/psbattle/engine/internal/parser"
)

// testLogger implements Logger for testing
type testLogger struct {
	mu       sync.Mutex
	messages []string
}

func (l *testLogger) Debug(msg string, keysAndValues ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = append(l.messages, fmt.Sprintf("DEBUG: %s %v", msg, keysAndValues))
}

func (l *testLogger) Info(msg string, keysAndValues ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = append(l.messages, fmt.Sprintf("INFO: %s %v", msg, keysAndValues))
}

func (l *testLogger) Error(msg string, keysAndValues ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = append(l.messages, fmt.Sprintf("ERROR: %s %v", msg, keysAndValues))
}

func newTestDispatcher(t *testing.T) (*Dispatcher, *testLogger) {
	logger := &testLogger{}

	d, err := New(logger)
	if err != nil {
		t.Fatalf("failed to create dispatcher: %v", err)
	}

	return d, logger
}

func TestDispatcher_RoutesByCommand(t *testing.T) {
	d, _ := newTestDispatcher(t)

	var got *parser.Message
	d.Register(parser.CmdTurn, func(e Event) error {
		got = e.Message
		return nil
	})

	m := parser.ParseMessage("battle-1", "|turn|3")
	if err := d.Dispatch(NewEvent(m)); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if got != m {
		t.Error("handler did not receive the message")
	}
}

func TestDispatcher_UnknownCommand(t *testing.T) {
	d, _ := newTestDispatcher(t)

	err := d.Dispatch(NewEvent(parser.ParseMessage("lobby", "|bigerror|x")))

	if !errors.Is(err, ErrUnknownCommand) {
		t.Errorf("expected ErrUnknownCommand, got %v", err)
	}
	if err != nil && !strings.Contains(err.Error(), "bigerror") {
		t.Errorf("expected wire name in error, got %v", err)
	}
}

func TestDispatcher_LoggedHandler(t *testing.T) {
	d, logger := newTestDispatcher(t)

	d.Register(parser.CmdUpkeep, func(e Event) error {
		return nil
	}, Logged())

	d.Dispatch(NewEvent(parser.ParseMessage("battle-1", "|upkeep")))

	logger.mu.Lock()
	defer logger.mu.Unlock()

	if len(logger.messages) < 2 {
		t.Errorf("expected at least 2 log messages, got %d", len(logger.messages))
	}
}

func TestDispatcher_LoggedHandlerError(t *testing.T) {
	d, logger := newTestDispatcher(t)

	d.Register(parser.CmdMove, func(e Event) error {
		return fmt.Errorf("test error")
	}, Logged())

	d.Dispatch(NewEvent(parser.ParseMessage("battle-1", "|move|")))

	logger.mu.Lock()
	defer logger.mu.Unlock()

	hasError := false
	for _, msg := range logger.messages {
		if strings.HasPrefix(msg, "ERROR") {
			hasError = true
			break
		}
	}

	if !hasError {
		t.Error("expected error log message")
	}
}

func TestDispatcher_OnError(t *testing.T) {
	d, _ := newTestDispatcher(t)

	var hooked []error
	d.Register(parser.CmdSwitch, func(e Event) error {
		return parser.ErrNoMoreArgs
	}, OnError(func(e Event, err error) {
		hooked = append(hooked, err)
	}))
	d.Register(parser.CmdFaint, func(e Event) error { return nil }, OnError(func(e Event, err error) {
		t.Error("hook called without error")
	}))

	d.Dispatch(NewEvent(parser.ParseMessage("battle-1", "|switch|")))
	d.Dispatch(NewEvent(parser.ParseMessage("battle-1", "|faint|p1a: A")))

	if len(hooked) != 1 || !errors.Is(hooked[0], parser.ErrNoMoreArgs) {
		t.Errorf("expected one ErrNoMoreArgs, got %v", hooked)
	}
}

func TestDispatcher_HasHandler(t *testing.T) {
	d, _ := newTestDispatcher(t)

	d.Register(parser.CmdWin, func(e Event) error { return nil })

	if !d.HasHandler(parser.CmdWin) {
		t.Error("expected handler to exist")
	}

	if d.HasHandler(parser.CmdTie) {
		t.Error("expected handler to not exist")
	}
}
