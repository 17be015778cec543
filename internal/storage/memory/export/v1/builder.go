package v1

import (
	"time"

	"github.com/psbattle/engine/pkg/core"
)

// BattleData contains all the data needed to build an export
type BattleData struct {
	Info    core.BattleInfo
	Winner  string
	EndedAt time.Time

	Turns     []core.TurnRecord
	Lines     []core.LogLine
	Events    []core.BattleEvent
	Decisions []core.DecisionRecord
}

// Build creates an Export from the battle data
func Build(data *BattleData) Export {
	export := Export{
		Version:   Version,
		RoomID:    data.Info.RoomID,
		Title:     data.Info.Title,
		Format:    data.Info.Format,
		Gen:       data.Info.Gen,
		GameType:  data.Info.GameType.String(),
		Players:   [2]string{data.Info.P1, data.Info.P2},
		Rated:     data.Info.Rated,
		StartedAt: formatTime(data.Info.StartedAt),
		EndedAt:   formatTime(data.EndedAt),
		Winner:    data.Winner,
		Turns:     make([]Turn, 0, len(data.Turns)),
		Log:       make([]Line, 0, len(data.Lines)),
		Events:    make([][]any, 0, len(data.Events)),
		Decisions: make([]Decision, 0, len(data.Decisions)),
	}

	for _, t := range data.Turns {
		turn := Turn{
			Turn:    t.Turn,
			Time:    formatTime(t.Time),
			Field:   t.Field,
			Weather: t.Weather,
			Actives: make([]Active, 0, len(t.Actives)),
		}
		for _, a := range t.Actives {
			turn.Actives = append(turn.Actives, Active{
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
		export.Turns = append(export.Turns, turn)
	}

	for _, l := range data.Lines {
		export.Log = append(export.Log, Line{Seq: l.Seq, Turn: l.Turn, Kind: string(l.Kind), Text: l.Text})
	}

	for _, e := range data.Events {
		detail := e.Detail
		if detail == nil {
			detail = map[string]any{}
		}
		export.Events = append(export.Events, []any{e.Turn, e.Type, e.Subject, detail})
	}

	for _, d := range data.Decisions {
		export.Decisions = append(export.Decisions, Decision{
			RQID:    d.RQID,
			Turn:    d.Turn,
			Time:    formatTime(d.Time),
			Command: d.Command,
			Choice:  d.Choice,
		})
	}

	return export
}

// formatTime renders t as RFC3339 in UTC, empty for the zero time.
func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
