package convert

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/psbattle/engine/internal/model"
	"github.com/psbattle/engine/pkg/core"
)

var (
	battleID = uuid.MustParse("0b6f1c2e-7d4a-4c1e-9f55-6a7e2d9c1b10")
	when     = time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC)
)

func TestNullTime(t *testing.T) {
	assert.False(t, NullTime(time.Time{}).Valid)

	nt := NullTime(when)
	assert.True(t, nt.Valid)
	assert.Equal(t, when, nt.Time)
}

func TestCoreToBattle(t *testing.T) {
	b := CoreToBattle(battleID, core.BattleInfo{
		RoomID:    "battle-gen9doublesou-2",
		Title:     "Alice vs. Bob",
		Format:    "[Gen 9] Doubles OU",
		Gen:       9,
		GameType:  core.Doubles,
		P1:        "Alice",
		P2:        "Bob",
		Rated:     true,
		StartedAt: when,
	})

	assert.Equal(t, battleID, b.ID)
	assert.Equal(t, "battle-gen9doublesou-2", b.RoomID)
	assert.Equal(t, "doubles", b.GameType)
	assert.Equal(t, "Alice", b.P1)
	assert.Equal(t, "Bob", b.P2)
	assert.True(t, b.Rated)
	assert.Equal(t, when, b.StartedAt)
	assert.False(t, b.EndedAt.Valid)
	assert.Empty(t, b.Winner)
}

func TestCoreToTurn(t *testing.T) {
	turn := CoreToTurn(battleID, core.TurnRecord{
		Turn:    4,
		Time:    when,
		Weather: "SunnyDay",
		Actives: []core.ActiveSnapshot{
			{Side: core.Foe, Position: 1, Name: "Torkoal", Species: "Torkoal", HP: 55, MaxHP: 100, Status: "brn", Boosts: map[string]int{"def": 2}},
		},
	})

	assert.Equal(t, battleID, turn.BattleID)
	assert.Equal(t, 4, turn.Turn)
	assert.Equal(t, "SunnyDay", turn.Weather)

	var actives []model.ActiveState
	require.NoError(t, json.Unmarshal(turn.Actives, &actives))
	require.Len(t, actives, 1)
	assert.Equal(t, model.ActiveState{
		Side: "foe", Position: 1, Name: "Torkoal", Species: "Torkoal",
		HP: 55, MaxHP: 100, Status: "brn", Boosts: map[string]int{"def": 2},
	}, actives[0])
}

func TestCoreToTurn_NoActives(t *testing.T) {
	turn := CoreToTurn(battleID, core.TurnRecord{Turn: 1})
	assert.Equal(t, datatypes.JSON("[]"), turn.Actives)
}

func TestCoreToLogLine(t *testing.T) {
	l := CoreToLogLine(battleID, core.LogLine{Seq: 12, Turn: 3, Time: when, Kind: core.LineHTML, Text: "<b>x</b>"})

	assert.Equal(t, model.LogLine{BattleID: battleID, Seq: 12, Turn: 3, Time: when, Kind: "html", Text: "<b>x</b>"}, l)
}

func TestCoreToEvent(t *testing.T) {
	detail := map[string]any{"move": "Earthquake", "target": "foea: Heatran"}
	e := CoreToEvent(battleID, core.BattleEvent{Turn: 2, Time: when, Type: "move", Subject: "trainera: Garchomp", Detail: detail})

	assert.Equal(t, "move", e.Type)
	assert.Equal(t, "trainera: Garchomp", e.Subject)
	assert.Equal(t, datatypes.JSONMap{"move": "Earthquake", "target": "foea: Heatran"}, e.Detail)

	// the model does not alias the core map
	detail["move"] = "Protect"
	assert.Equal(t, "Earthquake", e.Detail["move"])
}

func TestCoreToEvent_NilDetail(t *testing.T) {
	e := CoreToEvent(battleID, core.BattleEvent{Type: "faint"})
	assert.NotNil(t, e.Detail)
	assert.Empty(t, e.Detail)
}

func TestCoreToDecision(t *testing.T) {
	d := CoreToDecision(battleID, core.DecisionRecord{RQID: 9, Turn: 5, Time: when, Command: core.CommandTeam, Choice: "312456"})

	assert.Equal(t, model.Decision{BattleID: battleID, RQID: 9, Turn: 5, Time: when, Command: "team", Choice: "312456"}, d)
}
