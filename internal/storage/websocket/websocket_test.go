package websocket

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	ws "github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/psbattle/engine/pkg/core"
	"github.com/psbattle/engine/pkg/streaming"
)

// testServer upgrades to WebSocket, records received envelopes and acks
// start_battle/end_battle. When dropFirst is set the first connection is
// closed right after its first message.
func testServer(t *testing.T, dropFirst bool) (*httptest.Server, *messageLog) {
	t.Helper()
	ml := &messageLog{}

	upgrader := ws.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ml.secret.Store(r.URL.Query().Get("secret"))
		c, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Logf("upgrade error: %v", err)
			return
		}
		defer c.Close()
		n := ml.conns.Add(1)

		for {
			_, msg, err := c.ReadMessage()
			if err != nil {
				return
			}

			var env streaming.Envelope
			if err := json.Unmarshal(msg, &env); err != nil {
				continue
			}
			ml.add(env)

			if dropFirst && n == 1 {
				return
			}

			if env.Type == streaming.TypeStartBattle || env.Type == streaming.TypeEndBattle {
				ack := streaming.AckMessage{Type: "ack", For: env.Type}
				data, _ := json.Marshal(ack)
				if err := c.WriteMessage(ws.TextMessage, data); err != nil {
					return
				}
			}
		}
	}))
	t.Cleanup(srv.Close)

	return srv, ml
}

type messageLog struct {
	mu       sync.Mutex
	messages []streaming.Envelope
	conns    atomic.Int32
	secret   atomic.Value
}

func (m *messageLog) add(env streaming.Envelope) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, env)
}

func (m *messageLog) all() []streaming.Envelope {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make([]streaming.Envelope, len(m.messages))
	copy(cp, m.messages)
	return cp
}

func (m *messageLog) types() map[string]int {
	types := make(map[string]int)
	for _, env := range m.all() {
		types[env.Type]++
	}
	return types
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func battleInfo() *core.BattleInfo {
	return &core.BattleInfo{
		RoomID:    "battle-gen9ou-1",
		Format:    "[Gen 9] OU",
		Gen:       9,
		GameType:  core.Singles,
		P1:        "Alice",
		P2:        "Bob",
		StartedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestStartAndEndBattle(t *testing.T) {
	srv, ml := testServer(t, false)

	b := New(Config{URL: wsURL(srv), Secret: "test"}, zerolog.Nop())
	require.NoError(t, b.Init())
	defer b.Close()

	require.NoError(t, b.StartBattle(battleInfo()))
	require.NoError(t, b.EndBattle("Alice"))

	msgs := ml.all()
	require.Len(t, msgs, 2)
	assert.Equal(t, streaming.TypeStartBattle, msgs[0].Type)
	assert.Equal(t, streaming.TypeEndBattle, msgs[1].Type)
	assert.Equal(t, "test", ml.secret.Load())

	var start streaming.StartBattlePayload
	require.NoError(t, json.Unmarshal(msgs[0].Payload, &start))
	assert.Equal(t, "battle-gen9ou-1", start.RoomID)
	assert.Equal(t, "singles", start.GameType)
	assert.Equal(t, "Bob", start.P2)

	var end streaming.EndBattlePayload
	require.NoError(t, json.Unmarshal(msgs[1].Payload, &end))
	assert.Equal(t, "battle-gen9ou-1", end.RoomID)
	assert.Equal(t, "Alice", end.Winner)
}

func TestFireAndForgetMessages(t *testing.T) {
	srv, ml := testServer(t, false)

	b := New(Config{URL: wsURL(srv)}, zerolog.Nop())
	require.NoError(t, b.Init())
	defer b.Close()

	require.NoError(t, b.StartBattle(battleInfo()))

	now := time.Now()
	require.NoError(t, b.RecordTurn(&core.TurnRecord{RoomID: "battle-gen9ou-1", Turn: 1, Time: now, Actives: []core.ActiveSnapshot{
		{Side: core.Trainer, Name: "Pikachu", Species: "Pikachu", HP: 100, MaxHP: 100},
	}}))
	require.NoError(t, b.RecordLine(&core.LogLine{RoomID: "battle-gen9ou-1", Seq: 1, Turn: 1, Time: now, Kind: core.LineText, Text: "Go! Pikachu!"}))
	require.NoError(t, b.RecordEvent(&core.BattleEvent{RoomID: "battle-gen9ou-1", Turn: 1, Time: now, Type: "faint", Subject: "foe: Onix"}))
	require.NoError(t, b.RecordDecision(&core.DecisionRecord{RoomID: "battle-gen9ou-1", RQID: 3, Turn: 1, Time: now, Command: core.CommandChoose, Choice: "move 1"}))

	// the end ack arrives after every earlier message was read
	require.NoError(t, b.EndBattle("Alice"))

	types := ml.types()
	assert.Equal(t, 1, types[streaming.TypeStartBattle])
	assert.Equal(t, 1, types[streaming.TypeEndBattle])
	assert.Equal(t, 1, types[streaming.TypeTurn])
	assert.Equal(t, 1, types[streaming.TypeLine])
	assert.Equal(t, 1, types[streaming.TypeEvent])
	assert.Equal(t, 1, types[streaming.TypeDecision])

	for _, env := range ml.all() {
		if env.Type != streaming.TypeTurn {
			continue
		}
		var turn streaming.TurnPayload
		require.NoError(t, json.Unmarshal(env.Payload, &turn))
		require.Len(t, turn.Actives, 1)
		assert.Equal(t, "trainer", turn.Actives[0].Side)
	}
}

func TestRecordWithoutBattle(t *testing.T) {
	srv, _ := testServer(t, false)

	b := New(Config{URL: wsURL(srv)}, zerolog.Nop())
	require.NoError(t, b.Init())
	defer b.Close()

	assert.ErrorIs(t, b.RecordLine(&core.LogLine{Text: "x"}), core.ErrNoBattle)
	assert.ErrorIs(t, b.EndBattle(""), core.ErrNoBattle)
}

func TestCloseEndsRunningBattle(t *testing.T) {
	srv, ml := testServer(t, false)

	b := New(Config{URL: wsURL(srv)}, zerolog.Nop())
	require.NoError(t, b.Init())
	require.NoError(t, b.StartBattle(battleInfo()))
	require.NoError(t, b.Close())

	types := ml.types()
	assert.Equal(t, 1, types[streaming.TypeEndBattle])
}

func TestReconnectReplaysStart(t *testing.T) {
	srv, ml := testServer(t, true)

	b := New(Config{URL: wsURL(srv)}, zerolog.Nop())
	b.conn.backoff = 10 * time.Millisecond
	require.NoError(t, b.Init())
	defer b.Close()

	// the first connection drops before acking: the ack comes from the
	// replayed start_battle on the second connection
	require.NoError(t, b.StartBattle(battleInfo()))
	assert.Equal(t, int32(2), ml.conns.Load())
	assert.Equal(t, 2, ml.types()[streaming.TypeStartBattle])
}

func TestInit_DialFailure(t *testing.T) {
	b := New(Config{URL: "ws://127.0.0.1:1"}, zerolog.Nop())
	assert.ErrorContains(t, b.Init(), "websocket dial failed")
}
