package parser

import (
	"errors"
	"strings"
)

const separator = "|"

// DefaultRoom is the room of a batch without a ">roomid" header.
const DefaultRoom = "lobby"

// ErrNoMoreArgs is returned when a positional argument is read past the end.
var ErrNoMoreArgs = errors.New("no more arguments")

// commands whose arguments are free text and never carry keyword arguments
var freeTextCommands = map[string]bool{
	"formats": true,
	"c":       true,
	"c:":      true,
	"chat":    true,
	"tier":    true,
	"error":   true,
	"raw":     true,
	"html":    true,
	"uhtml":   true,
	"request": true,
}

// Message is one tokenized protocol line.
type Message struct {
	RoomID  string
	Name    string // lower-cased command name
	Raw     string // command name as received, "J" and "j" differ
	Command Command

	args   []string
	kwargs map[string]string
	pos    int
}

// ParseMessage tokenizes one line of a batch.
//
//	|COMMAND|a|b|[key] value
//
// A lone "|" is a break, a line not starting with "|" or starting with "||" is raw text.
func ParseMessage(roomID, line string) *Message {
	m := &Message{RoomID: roomID, kwargs: map[string]string{}}

	switch {
	case line == separator:
		m.setName("break")
	case !strings.HasPrefix(line, separator) || strings.HasPrefix(line, "||"):
		m.setName("raw")
		m.args = []string{strings.TrimPrefix(line, "||")}
	default:
		name, rest, hasArgs := strings.Cut(line[1:], separator)
		m.setName(name)
		if hasArgs {
			m.parseArgs(rest)
		}
	}
	return m
}

func (m *Message) setName(raw string) {
	m.Raw = raw
	m.Name = strings.ToLower(raw)
	m.Command = ParseCommand(m.Name)
}

func (m *Message) parseArgs(rest string) {
	parts := strings.Split(rest, separator)
	if freeTextCommands[m.Name] {
		m.args = parts
		return
	}
	m.args = make([]string, 0, len(parts))
	for _, p := range parts {
		if key, value, ok := keyword(p); ok {
			m.kwargs[key] = value
			continue
		}
		m.args = append(m.args, p)
	}
}

// keyword splits "[from] item: Leftovers" into ("from", "item: Leftovers").
func keyword(arg string) (string, string, bool) {
	if !strings.HasPrefix(arg, "[") {
		return "", "", false
	}
	end := strings.IndexByte(arg, ']')
	if end < 0 {
		return "", "", false
	}
	return arg[1:end], strings.TrimSpace(arg[end+1:]), true
}

// Args returns a copy of the positional arguments.
func (m *Message) Args() []string {
	out := make([]string, len(m.args))
	copy(out, m.args)
	return out
}

// Kwargs returns a copy of the keyword arguments.
func (m *Message) Kwargs() map[string]string {
	out := make(map[string]string, len(m.kwargs))
	for k, v := range m.kwargs {
		out[k] = v
	}
	return out
}

// HasNext reports whether a positional argument remains.
func (m *Message) HasNext() bool {
	return m.pos < len(m.args)
}

// Next consumes the next positional argument.
func (m *Message) Next() (string, error) {
	if !m.HasNext() {
		return "", ErrNoMoreArgs
	}
	arg := m.args[m.pos]
	m.pos++
	return arg, nil
}

// NextOpt consumes the next positional argument; ok is false when none is
// left or the argument is empty.
func (m *Message) NextOpt() (string, bool) {
	arg, err := m.Next()
	if err != nil || arg == "" {
		return "", false
	}
	return arg, true
}

// NextOr consumes the next positional argument, returning def when absent or empty.
func (m *Message) NextOr(def string) string {
	if arg, ok := m.NextOpt(); ok {
		return arg
	}
	return def
}

// Rest consumes every remaining positional argument joined with "|".
func (m *Message) Rest() string {
	if !m.HasNext() {
		return ""
	}
	rest := strings.Join(m.args[m.pos:], separator)
	m.pos = len(m.args)
	return rest
}

// Rewind restarts positional iteration.
func (m *Message) Rewind() {
	m.pos = 0
}

// Kwarg looks up a keyword argument regardless of its position.
func (m *Message) Kwarg(key string) (string, bool) {
	v, ok := m.kwargs[key]
	return v, ok
}

// KwargOr returns the keyword argument or "" when absent.
func (m *Message) KwargOr(key string) string {
	return m.kwargs[key]
}

// HasKwarg reports whether a keyword argument is present.
func (m *Message) HasKwarg(key string) bool {
	_, ok := m.kwargs[key]
	return ok
}

// SplitBatch splits a newline separated batch into its room id and lines.
// Blank lines are dropped, order is preserved.
func SplitBatch(data string) (string, []string) {
	roomID := DefaultRoom
	lines := strings.Split(strings.ReplaceAll(data, "\r\n", "\n"), "\n")
	if len(lines) > 0 && strings.HasPrefix(lines[0], ">") {
		if id := strings.TrimSpace(lines[0][1:]); id != "" {
			roomID = id
		}
		lines = lines[1:]
	}
	out := lines[:0]
	for _, l := range lines {
		if strings.TrimSpace(l) != "" {
			out = append(out, l)
		}
	}
	return roomID, out
}

// ParseBatch tokenizes every line of a batch.
func ParseBatch(data string) []*Message {
	roomID, lines := SplitBatch(data)
	msgs := make([]*Message, 0, len(lines))
	for _, l := range lines {
		msgs = append(msgs, ParseMessage(roomID, l))
	}
	return msgs
}
