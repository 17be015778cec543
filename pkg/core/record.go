package core

import (
	"errors"
	"time"
)

// ErrNoBattle is returned when recording outside of a started battle.
var ErrNoBattle = errors.New("no battle started")

// LineKind distinguishes plain narration from server-rendered html.
type LineKind string

const (
	LineText LineKind = "text"
	LineHTML LineKind = "html"
)

// LogLine is one printed line of the battle log.
type LogLine struct {
	RoomID string
	Seq    int
	Turn   int
	Time   time.Time
	Kind   LineKind
	Text   string
}

// BattleEvent is a structured presenter event worth keeping next to the text
// log: switches, moves, faints, toasts and field changes.
type BattleEvent struct {
	RoomID  string
	Turn    int
	Time    time.Time
	Type    string
	Subject string // identity string of the combatant, empty for field events
	Detail  map[string]any
}

// DecisionRecord is a choice sent for an action request.
type DecisionRecord struct {
	RoomID  string
	RQID    int
	Turn    int
	Time    time.Time
	Command string // "choose" or "team"
	Choice  string
}
