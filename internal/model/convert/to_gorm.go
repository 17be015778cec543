// Package convert turns recorded core values into gorm models.
package convert

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/psbattle/engine/internal/model"
	"github.com/psbattle/engine/pkg/core"
)

// NullTime wraps t, invalid for the zero time.
func NullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}

// activesToJSON converts turn snapshots to datatypes.JSON for DB storage.
func activesToJSON(actives []core.ActiveSnapshot) datatypes.JSON {
	if len(actives) == 0 {
		return datatypes.JSON("[]")
	}
	states := make([]model.ActiveState, 0, len(actives))
	for _, a := range actives {
		states = append(states, model.ActiveState{
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
	data, _ := json.Marshal(states)
	return datatypes.JSON(data)
}

// CoreToBattle converts a core.BattleInfo to a GORM model.Battle with the given id.
func CoreToBattle(id uuid.UUID, info core.BattleInfo) model.Battle {
	return model.Battle{
		ID:        id,
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

// CoreToTurn converts a core.TurnRecord to a GORM model.Turn
func CoreToTurn(battleID uuid.UUID, t core.TurnRecord) model.Turn {
	return model.Turn{
		BattleID: battleID,
		Turn:     t.Turn,
		Time:     t.Time,
		Field:    t.Field,
		Weather:  t.Weather,
		Actives:  activesToJSON(t.Actives),
	}
}

// CoreToLogLine converts a core.LogLine to a GORM model.LogLine
func CoreToLogLine(battleID uuid.UUID, l core.LogLine) model.LogLine {
	return model.LogLine{
		BattleID: battleID,
		Seq:      l.Seq,
		Turn:     l.Turn,
		Time:     l.Time,
		Kind:     string(l.Kind),
		Text:     l.Text,
	}
}

// CoreToEvent converts a core.BattleEvent to a GORM model.Event
func CoreToEvent(battleID uuid.UUID, e core.BattleEvent) model.Event {
	detail := datatypes.JSONMap{}
	for k, v := range e.Detail {
		detail[k] = v
	}
	return model.Event{
		BattleID: battleID,
		Turn:     e.Turn,
		Time:     e.Time,
		Type:     e.Type,
		Subject:  e.Subject,
		Detail:   detail,
	}
}

// CoreToDecision converts a core.DecisionRecord to a GORM model.Decision
func CoreToDecision(battleID uuid.UUID, d core.DecisionRecord) model.Decision {
	return model.Decision{
		BattleID: battleID,
		RQID:     d.RQID,
		Turn:     d.Turn,
		Time:     d.Time,
		Command:  d.Command,
		Choice:   d.Choice,
	}
}
