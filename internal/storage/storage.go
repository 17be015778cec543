// Package storage records battles: the printed log, structured events, turn
// snapshots and the decisions sent.
package storage

import "github.com/psbattle/engine/pkg/core"

// Backend is the interface all storage implementations must satisfy
type Backend interface {
	// Lifecycle
	Init() error
	Close() error

	// Battle management
	StartBattle(info *core.BattleInfo) error
	EndBattle(winner string) error

	// Recording
	RecordTurn(t *core.TurnRecord) error
	RecordLine(l *core.LogLine) error
	RecordEvent(e *core.BattleEvent) error
	RecordDecision(d *core.DecisionRecord) error
}

// Exportable is an optional interface for backends that write one file per
// battle.
type Exportable interface {
	ExportedFilePath() string
}

// Nop discards everything. It backs the "none" storage type.
type Nop struct{}

func (Nop) Init() error { return nil }
func (Nop) Close() error { return nil }
func (Nop) StartBattle(*core.BattleInfo) error { return nil }
func (Nop) EndBattle(string) error { return nil }
func (Nop) RecordTurn(*core.TurnRecord) error { return nil }
func (Nop) RecordLine(*core.LogLine) error { return nil }
func (Nop) RecordEvent(*core.BattleEvent) error { return nil }
func (Nop) RecordDecision(*core.DecisionRecord) error { return nil }
