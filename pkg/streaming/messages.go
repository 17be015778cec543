// Package streaming defines the live battle feed protocol: JSON envelopes
// carrying one battle record each.
package streaming

import (
	"encoding/json"
	"time"

	"github.com/psbattle/engine/pkg/core"
)

// Message type constants matching the streaming protocol.
const (
	TypeStartBattle = "start_battle"
	TypeEndBattle   = "end_battle"
	TypeTurn        = "turn"
	TypeLine        = "line"
	TypeEvent       = "event"
	TypeDecision    = "decision"
)

// Envelope wraps all messages sent over the WebSocket.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// AckMessage is the server's acknowledgement response.
type AckMessage struct {
	Type string `json:"type"` // always "ack"
	For  string `json:"for"`  // the message type being acknowledged
}

type StartBattlePayload struct {
	RoomID    string    `json:"roomId"`
	Title     string    `json:"title,omitempty"`
	Format    string    `json:"format,omitempty"`
	Gen       int       `json:"gen,omitempty"`
	GameType  string    `json:"gameType"`
	P1        string    `json:"p1"`
	P2        string    `json:"p2"`
	Rated     bool      `json:"rated"`
	StartedAt time.Time `json:"startedAt"`
}

type EndBattlePayload struct {
	RoomID  string    `json:"roomId"`
	Winner  string    `json:"winner"`
	EndedAt time.Time `json:"endedAt"`
}

type ActivePayload struct {
	Side      string         `json:"side"`
	Position  int            `json:"position"`
	Name      string         `json:"name"`
	Species   string         `json:"species"`
	HP        int            `json:"hp"`
	MaxHP     int            `json:"maxhp"`
	Status    string         `json:"status,omitempty"`
	Boosts    map[string]int `json:"boosts,omitempty"`
	Volatiles []string       `json:"volatiles,omitempty"`
}

type TurnPayload struct {
	RoomID  string          `json:"roomId"`
	Turn    int             `json:"turn"`
	Time    time.Time       `json:"time"`
	Field   string          `json:"field,omitempty"`
	Weather string          `json:"weather,omitempty"`
	Actives []ActivePayload `json:"actives"`
}

type LinePayload struct {
	RoomID string    `json:"roomId"`
	Seq    int       `json:"seq"`
	Turn   int       `json:"turn"`
	Time   time.Time `json:"time"`
	Kind   string    `json:"kind"`
	Text   string    `json:"text"`
}

type EventPayload struct {
	RoomID  string         `json:"roomId"`
	Turn    int            `json:"turn"`
	Time    time.Time      `json:"time"`
	Type    string         `json:"type"`
	Subject string         `json:"subject,omitempty"`
	Detail  map[string]any `json:"detail,omitempty"`
}

type DecisionPayload struct {
	RoomID  string    `json:"roomId"`
	RQID    int       `json:"rqid"`
	Turn    int       `json:"turn"`
	Time    time.Time `json:"time"`
	Command string    `json:"command"`
	Choice  string    `json:"choice"`
}

func NewStartBattle(info *core.BattleInfo) StartBattlePayload {
	return StartBattlePayload{
		RoomID:    info.RoomID,
		Title:     info.Title,
		Format:    info.Format,
		Gen:       info.Gen,
		GameType:  info.GameType.String(),
		P1:        info.P1,
		P2:        info.P2,
		Rated:     info.Rated,
		StartedAt: info.StartedAt,
	}
}

func NewTurn(t *core.TurnRecord) TurnPayload {
	p := TurnPayload{
		RoomID:  t.RoomID,
		Turn:    t.Turn,
		Time:    t.Time,
		Field:   t.Field,
		Weather: t.Weather,
		Actives: make([]ActivePayload, 0, len(t.Actives)),
	}
	for _, a := range t.Actives {
		p.Actives = append(p.Actives, ActivePayload{
			Side:      a.Side.String(),
			Position:  a.Position,
			Name:      a.Name,
			Species:   a.Species,
			HP:        a.HP,
			MaxHP:     a.MaxHP,
			Status:    a.Status,
			Boosts:    a.Boosts,
			Volatiles: a.Volatiles,
		})
	}
	return p
}

func NewLine(l *core.LogLine) LinePayload {
	return LinePayload{RoomID: l.RoomID, Seq: l.Seq, Turn: l.Turn, Time: l.Time, Kind: string(l.Kind), Text: l.Text}
}

func NewEvent(e *core.BattleEvent) EventPayload {
	return EventPayload{RoomID: e.RoomID, Turn: e.Turn, Time: e.Time, Type: e.Type, Subject: e.Subject, Detail: e.Detail}
}

func NewDecision(d *core.DecisionRecord) DecisionPayload {
	return DecisionPayload{RoomID: d.RoomID, RQID: d.RQID, Turn: d.Turn, Time: d.Time, Command: d.Command, Choice: d.Choice}
}
