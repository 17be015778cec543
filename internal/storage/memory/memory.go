// Package memory keeps one battle in memory and exports it to a JSON file
// when the battle ends.
package memory

import (
	"fmt"
	"sync"
	"time"

	"github.com/psbattle/engine/internal/config"
	v1 "github.com/psbattle/engine/internal/storage/memory/export/v1"
	"github.com/psbattle/engine/pkg/core"
)

// Backend stores battle data in memory and exports to JSON
type Backend struct {
	cfg    config.MemoryConfig
	battle *v1.BattleData
	now    func() time.Time

	lastExportPath string
	mu             sync.RWMutex
}

// New creates a new memory backend
func New(cfg config.MemoryConfig) *Backend {
	return &Backend{cfg: cfg, now: time.Now}
}

// Init initializes the backend
func (b *Backend) Init() error {
	return nil
}

// Close exports a battle that never ended.
func (b *Backend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.battle == nil {
		return nil
	}
	return b.finish("")
}

// StartBattle begins recording a new battle. A battle still in progress is
// dropped without export.
func (b *Backend) StartBattle(info *core.BattleInfo) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.battle = &v1.BattleData{Info: *info}
	return nil
}

// EndBattle finalizes and exports the battle data
func (b *Backend) EndBattle(winner string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.battle == nil {
		return fmt.Errorf("end battle: %w", core.ErrNoBattle)
	}
	return b.finish(winner)
}

func (b *Backend) finish(winner string) error {
	b.battle.Winner = winner
	b.battle.EndedAt = b.now()
	err := b.exportJSON()
	b.battle = nil
	return err
}

// RecordTurn records a turn snapshot
func (b *Backend) RecordTurn(t *core.TurnRecord) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.battle == nil {
		return fmt.Errorf("record turn: %w", core.ErrNoBattle)
	}
	b.battle.Turns = append(b.battle.Turns, *t)
	return nil
}

// RecordLine records a printed line
func (b *Backend) RecordLine(l *core.LogLine) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.battle == nil {
		return fmt.Errorf("record line: %w", core.ErrNoBattle)
	}
	b.battle.Lines = append(b.battle.Lines, *l)
	return nil
}

// RecordEvent records a structured battle event
func (b *Backend) RecordEvent(e *core.BattleEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.battle == nil {
		return fmt.Errorf("record event: %w", core.ErrNoBattle)
	}
	b.battle.Events = append(b.battle.Events, *e)
	return nil
}

// RecordDecision records a decision sent by the local player
func (b *Backend) RecordDecision(d *core.DecisionRecord) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.battle == nil {
		return fmt.Errorf("record decision: %w", core.ErrNoBattle)
	}
	b.battle.Decisions = append(b.battle.Decisions, *d)
	return nil
}

// ExportedFilePath returns the file written by the last finished battle.
func (b *Backend) ExportedFilePath() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lastExportPath
}
