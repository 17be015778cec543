package codec

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/psbattle/engine/pkg/core"
)

var (
	// ErrNoCommand is returned when encoding a decision with no choice.
	ErrNoCommand = errors.New("decision has no command set")
	// ErrStaleRequest is returned when answering a superseded or already answered request.
	ErrStaleRequest = errors.New("stale request")
	// ErrWaitRequest is returned when answering a request that only asks to wait.
	ErrWaitRequest = errors.New("request expects no decision")
)

// EncodeDecision renders "<room>|/choose <segments>" or "<room>|/team <permutation>".
func EncodeDecision(roomID string, d *core.BattleDecision) (string, error) {
	if d == nil || d.Command() == "" {
		return "", ErrNoCommand
	}
	return RoomCommand(roomID, d.Command(), d.Build()), nil
}

// RoomCommand renders a slash command addressed to a room: "room|/cmd a|b".
func RoomCommand(roomID, command string, args ...string) string {
	var b strings.Builder
	b.WriteString(roomID)
	b.WriteString("|/")
	b.WriteString(command)
	if len(args) > 0 {
		b.WriteByte(' ')
		b.WriteString(strings.Join(args, "|"))
	}
	return b.String()
}

// Tracker remembers the latest request of a room and lets exactly one
// decision through per request.
type Tracker struct {
	mu       sync.Mutex
	roomID   string
	last     *core.BattleActionRequest
	answered bool
}

// NewTracker creates a tracker for roomID.
func NewTracker(roomID string) *Tracker {
	return &Tracker{roomID: roomID}
}

// Observe records a newly received request, superseding the previous one.
func (t *Tracker) Observe(req *core.BattleActionRequest) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.last = req
	t.answered = false
}

// Last returns the current request, nil before the first one.
func (t *Tracker) Last() *core.BattleActionRequest {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.last
}

// Pending reports whether the current request still expects a decision.
func (t *Tracker) Pending() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.last != nil && !t.last.Wait && !t.answered
}

// Reset forgets the current request.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.last = nil
	t.answered = false
}

// Answer encodes d as the reply to request rqid. It fails when rqid is not
// the current request, when the request asks to wait, or when it was answered.
func (t *Tracker) Answer(rqid int, d *core.BattleDecision) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.last == nil || t.last.ID != rqid {
		return "", fmt.Errorf("request %d: %w", rqid, ErrStaleRequest)
	}
	if t.last.Wait {
		return "", fmt.Errorf("request %d: %w", rqid, ErrWaitRequest)
	}
	if t.answered {
		return "", fmt.Errorf("request %d already answered: %w", rqid, ErrStaleRequest)
	}

	out, err := EncodeDecision(t.roomID, d)
	if err != nil {
		return "", err
	}
	t.answered = true
	return out, nil
}
