package gormstore

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/psbattle/engine/internal/config"
	"github.com/psbattle/engine/internal/database"
	"github.com/psbattle/engine/internal/model"
	"github.com/psbattle/engine/pkg/core"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	m := database.NewManager(config.StorageConfig{
		Type:   "sqlite",
		SQLite: config.SQLiteConfig{Path: filepath.Join(t.TempDir(), "battles.db")},
	}, zerolog.Nop())
	require.NoError(t, m.Connect())
	require.NoError(t, m.Setup())
	t.Cleanup(func() { m.Close() })
	return m.DB
}

func newBackend(t *testing.T, interval time.Duration) (*Backend, *gorm.DB) {
	t.Helper()
	db := setupDB(t)
	b := New(Dependencies{DB: db, Logger: zerolog.Nop(), FlushInterval: interval})
	require.NoError(t, b.Init())
	return b, db
}

var info = core.BattleInfo{
	RoomID:    "battle-gen9ou-1",
	Title:     "Alice vs. Bob",
	Format:    "[Gen 9] OU",
	Gen:       9,
	GameType:  core.Singles,
	P1:        "Alice",
	P2:        "Bob",
	StartedAt: time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC),
}

func TestInitWithoutDB(t *testing.T) {
	b := New(Dependencies{Logger: zerolog.Nop()})
	assert.Error(t, b.Init())
}

func TestRecordWithoutBattle(t *testing.T) {
	b, _ := newBackend(t, time.Hour)
	t.Cleanup(func() { b.Close() })

	assert.ErrorIs(t, b.RecordTurn(&core.TurnRecord{}), core.ErrNoBattle)
	assert.ErrorIs(t, b.RecordLine(&core.LogLine{}), core.ErrNoBattle)
	assert.ErrorIs(t, b.RecordEvent(&core.BattleEvent{}), core.ErrNoBattle)
	assert.ErrorIs(t, b.RecordDecision(&core.DecisionRecord{}), core.ErrNoBattle)
	assert.ErrorIs(t, b.EndBattle("Alice"), core.ErrNoBattle)
}

func TestBattleLifecycle(t *testing.T) {
	b, db := newBackend(t, time.Hour)
	t.Cleanup(func() { b.Close() })

	i := info
	require.NoError(t, b.StartBattle(&i))
	id := b.BattleID()
	require.NotEqual(t, uuid.Nil, id)

	require.NoError(t, b.RecordTurn(&core.TurnRecord{Turn: 1, Actives: []core.ActiveSnapshot{{Name: "Pikachu", HP: 100, MaxHP: 100}}}))
	require.NoError(t, b.RecordLine(&core.LogLine{Seq: 1, Turn: 1, Kind: core.LineText, Text: "Go! Pikachu!"}))
	require.NoError(t, b.RecordLine(&core.LogLine{Seq: 2, Turn: 1, Kind: core.LineText, Text: "Pikachu used Thunderbolt!"}))
	require.NoError(t, b.RecordEvent(&core.BattleEvent{Turn: 1, Type: "move", Subject: "trainera: Pikachu", Detail: map[string]any{"move": "Thunderbolt"}}))
	require.NoError(t, b.RecordDecision(&core.DecisionRecord{RQID: 2, Turn: 1, Command: core.CommandChoose, Choice: "move 1"}))

	// nothing is written before a flush
	assert.Equal(t, map[string]int{"turns": 1, "log_lines": 2, "battle_events": 1, "decisions": 1}, b.QueueLengths())

	require.NoError(t, b.EndBattle("Alice"))
	assert.Equal(t, uuid.Nil, b.BattleID())
	assert.Equal(t, map[string]int{"turns": 0, "log_lines": 0, "battle_events": 0, "decisions": 0}, b.QueueLengths())

	var battle model.Battle
	require.NoError(t, db.First(&battle, "id = ?", id).Error)
	assert.Equal(t, "battle-gen9ou-1", battle.RoomID)
	assert.Equal(t, "singles", battle.GameType)
	assert.Equal(t, "Alice", battle.Winner)
	assert.True(t, battle.EndedAt.Valid)

	var lines []model.LogLine
	require.NoError(t, db.Where("battle_id = ?", id).Order("seq").Find(&lines).Error)
	require.Len(t, lines, 2)
	assert.Equal(t, "Go! Pikachu!", lines[0].Text)
	assert.Equal(t, "Pikachu used Thunderbolt!", lines[1].Text)

	var events []model.Event
	require.NoError(t, db.Where("battle_id = ?", id).Find(&events).Error)
	require.Len(t, events, 1)
	assert.Equal(t, "Thunderbolt", events[0].Detail["move"])

	var count int64
	require.NoError(t, db.Model(&model.Turn{}).Where("battle_id = ?", id).Count(&count).Error)
	assert.Equal(t, int64(1), count)
	require.NoError(t, db.Model(&model.Decision{}).Where("battle_id = ?", id).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestWriterFlushesPeriodically(t *testing.T) {
	b, db := newBackend(t, 10*time.Millisecond)
	t.Cleanup(func() { b.Close() })

	i := info
	require.NoError(t, b.StartBattle(&i))
	require.NoError(t, b.RecordLine(&core.LogLine{Seq: 1, Text: "hello"}))

	assert.Eventually(t, func() bool {
		var count int64
		db.Model(&model.LogLine{}).Count(&count)
		return count == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestCloseEndsOpenBattle(t *testing.T) {
	b, db := newBackend(t, time.Hour)

	i := info
	require.NoError(t, b.StartBattle(&i))
	id := b.BattleID()
	require.NoError(t, b.RecordLine(&core.LogLine{Seq: 1, Text: "unfinished"}))

	require.NoError(t, b.Close())

	var battle model.Battle
	require.NoError(t, db.First(&battle, "id = ?", id).Error)
	assert.True(t, battle.EndedAt.Valid)
	assert.Empty(t, battle.Winner)

	var count int64
	require.NoError(t, db.Model(&model.LogLine{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestConsecutiveBattles(t *testing.T) {
	b, db := newBackend(t, time.Hour)
	t.Cleanup(func() { b.Close() })

	first, second := info, info
	second.RoomID = "battle-gen9ou-2"

	require.NoError(t, b.StartBattle(&first))
	firstID := b.BattleID()
	require.NoError(t, b.RecordLine(&core.LogLine{Seq: 1, Text: "first"}))
	require.NoError(t, b.EndBattle("Bob"))

	require.NoError(t, b.StartBattle(&second))
	require.NotEqual(t, firstID, b.BattleID())
	require.NoError(t, b.RecordLine(&core.LogLine{Seq: 1, Text: "second"}))
	require.NoError(t, b.EndBattle("Alice"))

	var battles []model.Battle
	require.NoError(t, db.Order("room_id").Find(&battles).Error)
	require.Len(t, battles, 2)
	assert.Equal(t, "Bob", battles[0].Winner)
	assert.Equal(t, "Alice", battles[1].Winner)

	var line model.LogLine
	require.NoError(t, db.Where("battle_id = ?", firstID).First(&line).Error)
	assert.Equal(t, "first", line.Text)
}
