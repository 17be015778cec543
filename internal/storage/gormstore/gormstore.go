// Package gormstore writes battle logs to sqlite or postgres through gorm.
// Record calls only queue rows; a writer goroutine drains the queues in
// batches, and EndBattle flushes before closing the battle row.
package gormstore

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/psbattle/engine/internal/model"
	"github.com/psbattle/engine/internal/model/convert"
	"github.com/psbattle/engine/internal/queue"
	"github.com/psbattle/engine/pkg/core"
)

const defaultFlushInterval = 500 * time.Millisecond

// Dependencies holds everything the backend needs
type Dependencies struct {
	DB            *gorm.DB
	Logger        zerolog.Logger
	FlushInterval time.Duration
}

type queues struct {
	Turns     *queue.Queue[model.Turn]
	Lines     *queue.Queue[model.LogLine]
	Events    *queue.Queue[model.Event]
	Decisions *queue.Queue[model.Decision]
}

func newQueues() *queues {
	return &queues{
		Turns:     queue.New[model.Turn](),
		Lines:     queue.New[model.LogLine](),
		Events:    queue.New[model.Event](),
		Decisions: queue.New[model.Decision](),
	}
}

// Backend is the gorm storage backend
type Backend struct {
	deps   Dependencies
	logger zerolog.Logger
	queues *queues

	mu       sync.Mutex
	battleID uuid.UUID // uuid.Nil outside of a battle

	writeMu  sync.Mutex
	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// New creates a gorm backend over an already migrated database.
func New(deps Dependencies) *Backend {
	if deps.FlushInterval <= 0 {
		deps.FlushInterval = defaultFlushInterval
	}
	return &Backend{
		deps:     deps,
		logger:   deps.Logger.With().Str("component", "gormstore").Logger(),
		queues:   newQueues(),
		stopChan: make(chan struct{}),
	}
}

// Init starts the writer goroutine.
func (b *Backend) Init() error {
	if b.deps.DB == nil {
		return fmt.Errorf("gormstore: no database")
	}
	b.wg.Add(1)
	go b.writeLoop()
	return nil
}

// Close stops the writer, flushes what is queued and closes a battle that
// never ended.
func (b *Backend) Close() error {
	b.stopOnce.Do(func() { close(b.stopChan) })
	b.wg.Wait()

	b.mu.Lock()
	open := b.battleID != uuid.Nil
	b.mu.Unlock()
	if open {
		return b.EndBattle("")
	}
	b.flush()
	return nil
}

// StartBattle inserts the battle row. Rows queued for a previous battle are
// flushed first.
func (b *Backend) StartBattle(info *core.BattleInfo) error {
	b.flush()

	id := uuid.New()
	row := convert.CoreToBattle(id, *info)
	if err := b.deps.DB.Create(&row).Error; err != nil {
		return fmt.Errorf("error creating battle: %w", err)
	}

	b.mu.Lock()
	b.battleID = id
	b.mu.Unlock()

	b.logger.Info().Str("room", info.RoomID).Str("battle", id.String()).Msg("Battle recording started")
	return nil
}

// EndBattle flushes the queued rows and stamps the result.
func (b *Backend) EndBattle(winner string) error {
	b.mu.Lock()
	id := b.battleID
	b.battleID = uuid.Nil
	b.mu.Unlock()

	if id == uuid.Nil {
		return fmt.Errorf("end battle: %w", core.ErrNoBattle)
	}

	b.flush()
	err := b.deps.DB.Model(&model.Battle{}).Where("id = ?", id).Updates(map[string]any{
		"winner":   winner,
		"ended_at": convert.NullTime(time.Now()),
	}).Error
	if err != nil {
		return fmt.Errorf("error ending battle: %w", err)
	}

	b.logger.Info().Str("battle", id.String()).Str("winner", winner).Msg("Battle recording ended")
	return nil
}

// BattleID returns the id of the battle being recorded, uuid.Nil when idle.
func (b *Backend) BattleID() uuid.UUID {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.battleID
}

func (b *Backend) current(op string) (uuid.UUID, error) {
	id := b.BattleID()
	if id == uuid.Nil {
		return id, fmt.Errorf("%s: %w", op, core.ErrNoBattle)
	}
	return id, nil
}

// RecordTurn queues a turn snapshot
func (b *Backend) RecordTurn(t *core.TurnRecord) error {
	id, err := b.current("record turn")
	if err != nil {
		return err
	}
	b.queues.Turns.Push(convert.CoreToTurn(id, *t))
	return nil
}

// RecordLine queues a printed line
func (b *Backend) RecordLine(l *core.LogLine) error {
	id, err := b.current("record line")
	if err != nil {
		return err
	}
	b.queues.Lines.Push(convert.CoreToLogLine(id, *l))
	return nil
}

// RecordEvent queues a structured event
func (b *Backend) RecordEvent(e *core.BattleEvent) error {
	id, err := b.current("record event")
	if err != nil {
		return err
	}
	b.queues.Events.Push(convert.CoreToEvent(id, *e))
	return nil
}

// RecordDecision queues a sent decision
func (b *Backend) RecordDecision(d *core.DecisionRecord) error {
	id, err := b.current("record decision")
	if err != nil {
		return err
	}
	b.queues.Decisions.Push(convert.CoreToDecision(id, *d))
	return nil
}

// writeQueue writes all items from a queue to the database in a transaction.
// On failure the items go back to the queue for the next cycle.
func writeQueue[T any](db *gorm.DB, q *queue.Queue[T], name string, logger zerolog.Logger) {
	if q.Empty() {
		return
	}

	items := q.GetAndEmpty()
	tx := db.Begin()
	if err := tx.Create(&items).Error; err != nil {
		logger.Error().Err(err).Str("table", name).Int("count", len(items)).Msg("Error writing batch")
		tx.Rollback()
		q.Push(items...)
		return
	}
	if err := tx.Commit().Error; err != nil {
		logger.Error().Err(err).Str("table", name).Msg("Error committing batch")
		q.Push(items...)
	}
}

// flush drains every queue once. Calls are serialized with the writer.
func (b *Backend) flush() {
	b.writeMu.Lock()
	defer b.writeMu.Unlock()

	writeQueue(b.deps.DB, b.queues.Turns, "turns", b.logger)
	writeQueue(b.deps.DB, b.queues.Lines, "log lines", b.logger)
	writeQueue(b.deps.DB, b.queues.Events, "battle events", b.logger)
	writeQueue(b.deps.DB, b.queues.Decisions, "decisions", b.logger)
}

// writeLoop periodically drains the queues into the DB.
func (b *Backend) writeLoop() {
	defer b.wg.Done()

	ticker := time.NewTicker(b.deps.FlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-b.stopChan:
			return
		case <-ticker.C:
			b.flush()
		}
	}
}

// QueueLengths reports the rows waiting for the writer, by table.
func (b *Backend) QueueLengths() map[string]int {
	return map[string]int{
		"turns":         b.queues.Turns.Len(),
		"log_lines":     b.queues.Lines.Len(),
		"battle_events": b.queues.Events.Len(),
		"decisions":     b.queues.Decisions.Len(),
	}
}
