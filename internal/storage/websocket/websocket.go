// Package websocket streams battle records to a live feed server.
package websocket

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/psbattle/engine/pkg/core"
	"github.com/psbattle/engine/pkg/streaming"
)

// Config holds WebSocket backend configuration.
type Config struct {
	URL    string
	Secret string
}

// Backend streams battle records over WebSocket. start_battle and
// end_battle wait for a server ack; everything else is fire-and-forget.
type Backend struct {
	conn *connection
	cfg  Config
	now  func() time.Time

	mu   sync.Mutex
	room string // running battle, empty when idle
}

// New creates a new WebSocket storage backend.
func New(cfg Config, logger zerolog.Logger) *Backend {
	return &Backend{
		conn: newConnection(logger.With().Str("component", "stream").Logger()),
		cfg:  cfg,
		now:  time.Now,
	}
}

// Init connects to the WebSocket server.
func (b *Backend) Init() error {
	return b.conn.dial(b.cfg.URL, b.cfg.Secret)
}

// Close ends a running battle and disconnects.
func (b *Backend) Close() error {
	b.mu.Lock()
	running := b.room != ""
	b.mu.Unlock()

	var err error
	if running {
		err = b.EndBattle("")
	}
	if cerr := b.conn.close(); err == nil {
		err = cerr
	}
	return err
}

// marshalEnvelope builds a JSON-encoded Envelope from a message type and payload.
func marshalEnvelope(msgType string, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", msgType, err)
	}
	env := streaming.Envelope{Type: msgType, Payload: raw}
	data, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("marshal %s envelope: %w", msgType, err)
	}
	return data, nil
}

// sendEnvelope pushes a record of the running battle to the write loop.
func (b *Backend) sendEnvelope(msgType string, payload any) error {
	b.mu.Lock()
	running := b.room != ""
	b.mu.Unlock()
	if !running {
		return fmt.Errorf("stream %s: %w", msgType, core.ErrNoBattle)
	}

	data, err := marshalEnvelope(msgType, payload)
	if err != nil {
		return err
	}
	b.conn.send(data)
	return nil
}

// StartBattle sends the battle header and waits for the server ack. A
// battle still running is ended first.
func (b *Backend) StartBattle(info *core.BattleInfo) error {
	b.mu.Lock()
	running := b.room != ""
	b.mu.Unlock()
	if running {
		if err := b.EndBattle(""); err != nil {
			return err
		}
	}

	data, err := marshalEnvelope(streaming.TypeStartBattle, streaming.NewStartBattle(info))
	if err != nil {
		return err
	}

	b.conn.mu.Lock()
	b.conn.cachedStartMsg = data
	b.conn.mu.Unlock()
	b.mu.Lock()
	b.room = info.RoomID
	b.mu.Unlock()

	return b.conn.sendAndWait(data, streaming.TypeStartBattle, ackTimeout)
}

// EndBattle sends end_battle and waits for the server ack.
func (b *Backend) EndBattle(winner string) error {
	b.mu.Lock()
	room := b.room
	b.room = ""
	b.mu.Unlock()
	if room == "" {
		return fmt.Errorf("end battle: %w", core.ErrNoBattle)
	}

	data, err := marshalEnvelope(streaming.TypeEndBattle, streaming.EndBattlePayload{
		RoomID:  room,
		Winner:  winner,
		EndedAt: b.now().UTC(),
	})
	if err == nil {
		err = b.conn.sendAndWait(data, streaming.TypeEndBattle, ackTimeout)
	}

	// the next reconnect has no battle to announce
	b.conn.mu.Lock()
	b.conn.cachedStartMsg = nil
	b.conn.mu.Unlock()

	return err
}

func (b *Backend) RecordTurn(t *core.TurnRecord) error {
	return b.sendEnvelope(streaming.TypeTurn, streaming.NewTurn(t))
}

func (b *Backend) RecordLine(l *core.LogLine) error {
	return b.sendEnvelope(streaming.TypeLine, streaming.NewLine(l))
}

func (b *Backend) RecordEvent(e *core.BattleEvent) error {
	return b.sendEnvelope(streaming.TypeEvent, streaming.NewEvent(e))
}

func (b *Backend) RecordDecision(d *core.DecisionRecord) error {
	return b.sendEnvelope(streaming.TypeDecision, streaming.NewDecision(d))
}
