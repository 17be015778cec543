package storage

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/psbattle/engine/internal/battle"
	"github.com/psbattle/engine/internal/config"
	"github.com/psbattle/engine/internal/queue"
	"github.com/psbattle/engine/internal/storage/memory"
	"github.com/psbattle/engine/pkg/core"
)

// fakeBackend keeps every call. Only used from the test goroutine.
type fakeBackend struct {
	Nop
	started   []core.BattleInfo
	ended     []string
	turns     []core.TurnRecord
	lines     []core.LogLine
	events    []core.BattleEvent
	decisions []core.DecisionRecord
	startErr  error
}

func (f *fakeBackend) StartBattle(info *core.BattleInfo) error {
	if f.startErr != nil {
		return f.startErr
	}
	f.started = append(f.started, *info)
	return nil
}

func (f *fakeBackend) EndBattle(winner string) error {
	f.ended = append(f.ended, winner)
	return nil
}

func (f *fakeBackend) RecordTurn(t *core.TurnRecord) error {
	f.turns = append(f.turns, *t)
	return nil
}

func (f *fakeBackend) RecordLine(l *core.LogLine) error {
	f.lines = append(f.lines, *l)
	return nil
}

func (f *fakeBackend) RecordEvent(e *core.BattleEvent) error {
	f.events = append(f.events, *e)
	return nil
}

func (f *fakeBackend) RecordDecision(d *core.DecisionRecord) error {
	f.decisions = append(f.decisions, *d)
	return nil
}

var now = time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC)

func newRecorder(b Backend) *Recorder {
	r := NewRecorder(b, zerolog.Nop())
	r.now = func() time.Time { return now }
	return r
}

func TestRecorder_IgnoresEventsOutsideBattle(t *testing.T) {
	fb := &fakeBackend{}
	r := newRecorder(fb)

	r.PrintText("Alice joined")
	r.Faint(core.PokemonID{Name: "Pikachu"})
	r.TurnStarted(core.TurnRecord{Turn: 1})
	r.BattleEnded("Alice")
	r.RoomDeInit("battle-1")
	require.NoError(t, r.RecordDecision(&core.DecisionRecord{RQID: 1}))

	assert.False(t, r.Active())
	assert.Empty(t, fb.lines)
	assert.Empty(t, fb.events)
	assert.Empty(t, fb.turns)
	assert.Empty(t, fb.ended)
	assert.Empty(t, fb.decisions)
}

func TestRecorder_Battle(t *testing.T) {
	fb := &fakeBackend{}
	r := newRecorder(fb)

	r.BattleStarted(core.BattleInfo{RoomID: "battle-1"})
	require.True(t, r.Active())
	require.Len(t, fb.started, 1)
	assert.Equal(t, now, fb.started[0].StartedAt, "missing start time is stamped")

	r.PrintText("Go! Pikachu!")
	r.TurnStarted(core.TurnRecord{Turn: 1})
	r.PrintHTML("<b>hi</b>")

	pikachu := core.PokemonID{Side: core.Trainer, Position: 0, Name: "Pikachu"}
	garchomp := core.PokemonID{Side: core.Foe, Position: 0, Name: "Garchomp"}
	r.Move(pikachu, &garchomp, "Thunderbolt", true)
	r.Move(pikachu, nil, "Substitute", true)
	r.BattleToast(garchomp, "Immune", battle.ToastNeutral)
	r.SideChanged(core.Foe, "Spikes", true)
	r.FieldEffectChanged("Electric Terrain")
	r.Faint(garchomp)
	require.NoError(t, r.RecordDecision(&core.DecisionRecord{RQID: 3, Choice: "move 1"}))
	r.BattleEnded("Alice")

	assert.False(t, r.Active())
	assert.Equal(t, []string{"Alice"}, fb.ended)
	assert.Equal(t, []core.TurnRecord{{Turn: 1}}, fb.turns)

	require.Len(t, fb.lines, 2)
	assert.Equal(t, core.LogLine{RoomID: "battle-1", Seq: 1, Turn: 0, Time: now, Kind: core.LineText, Text: "Go! Pikachu!"}, fb.lines[0])
	assert.Equal(t, core.LogLine{RoomID: "battle-1", Seq: 2, Turn: 1, Time: now, Kind: core.LineHTML, Text: "<b>hi</b>"}, fb.lines[1])

	types := make([]string, 0, len(fb.events))
	for _, e := range fb.events {
		types = append(types, e.Type)
		assert.Equal(t, 1, e.Turn)
		assert.Equal(t, "battle-1", e.RoomID)
	}
	assert.Equal(t, []string{"move", "move", "toast", "side", "field", "faint"}, types)
	assert.Equal(t, map[string]any{"move": "Thunderbolt", "target": garchomp.String()}, fb.events[0].Detail)
	assert.Equal(t, map[string]any{"move": "Substitute"}, fb.events[1].Detail)
	assert.Equal(t, map[string]any{"text": "Immune", "kind": "neutral"}, fb.events[2].Detail)
	assert.Equal(t, "foe", fb.events[3].Subject)
	assert.Equal(t, []core.DecisionRecord{{RQID: 3, Choice: "move 1"}}, fb.decisions)
}

func TestRecorder_NewBattleEndsPrevious(t *testing.T) {
	fb := &fakeBackend{}
	r := newRecorder(fb)

	r.BattleStarted(core.BattleInfo{RoomID: "battle-1"})
	r.PrintText("one")
	r.BattleStarted(core.BattleInfo{RoomID: "battle-2"})
	r.PrintText("two")

	assert.Equal(t, []string{""}, fb.ended)
	require.Len(t, fb.lines, 2)
	assert.Equal(t, 1, fb.lines[1].Seq, "sequence restarts per battle")
	assert.Equal(t, "battle-2", fb.lines[1].RoomID)
}

func TestRecorder_DeInitEndsBattle(t *testing.T) {
	fb := &fakeBackend{}
	r := newRecorder(fb)

	r.BattleStarted(core.BattleInfo{RoomID: "battle-1"})
	r.RoomDeInit("battle-1")

	assert.Equal(t, []string{""}, fb.ended)
	assert.False(t, r.Active())
}

func TestRecorder_StartFailureKeepsIdle(t *testing.T) {
	fb := &fakeBackend{startErr: errors.New("disk full")}
	r := newRecorder(fb)

	r.BattleStarted(core.BattleInfo{RoomID: "battle-1"})
	r.PrintText("lost")

	assert.False(t, r.Active())
	assert.Empty(t, fb.lines)
}

// TestRecorder_ObserverToExport drives a whole battle through the observer
// into the memory backend.
func TestRecorder_ObserverToExport(t *testing.T) {
	q, err := queue.NewActionQueue(queue.Pacing{}, zerolog.Nop())
	require.NoError(t, err)
	q.Start(context.Background())
	t.Cleanup(q.Close)

	backend := memory.New(config.MemoryConfig{OutputDir: t.TempDir()})
	require.NoError(t, backend.Init())
	rec := NewRecorder(backend, zerolog.Nop())

	obs, err := battle.NewObserver(battle.Dependencies{
		Queue:     q,
		Presenter: rec,
		Logger:    zerolog.Nop(),
		Journal:   rec,
	})
	require.NoError(t, err)

	obs.HandleBatch(strings.Join([]string{
		">battle-gen9ou-7",
		"|init|battle",
		"|title|Alice vs. Bob",
		"|player|p1|Alice|1",
		"|player|p2|Bob|2",
		"|gametype|singles",
		"|gen|9",
		"|start",
		"|switch|p1a: Pikachu|Pikachu, L50, M|100/100",
		"|switch|p2a: Garchomp|Garchomp, L50, F|100/100",
		"|turn|1",
		"|move|p1a: Pikachu|Thunderbolt|p2a: Garchomp",
		"|-immune|p2a: Garchomp",
		"|win|Alice",
	}, "\n"))

	require.Eventually(t, func() bool { return backend.ExportedFilePath() != "" }, 2*time.Second, 5*time.Millisecond)
	assert.Contains(t, backend.ExportedFilePath(), "battle-gen9ou-7_")
	assert.False(t, waitRecorder(t, q, rec.Active))
}

// waitRecorder reads a recorder value on the consumer goroutine.
func waitRecorder(t *testing.T, q *queue.ActionQueue, fn func() bool) bool {
	t.Helper()
	result := make(chan bool, 1)
	q.Post(func() { result <- fn() })
	select {
	case v := <-result:
		return v
	case <-time.After(time.Second):
		t.Fatal("consumer did not run")
		return false
	}
}
