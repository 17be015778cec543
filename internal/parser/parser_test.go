package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/psbattle/engine/pkg/core"
)

func TestParseMessage_Forms(t *testing.T) {
	tests := []struct {
		name     string
		line     string
		wantName string
		wantCmd  Command
		wantArgs []string
	}{
		{"break", "|", "break", CmdBreak, nil},
		{"raw text", "Battle timer is ON", "raw", CmdRaw, []string{"Battle timer is ON"}},
		{"double pipe raw", "||Welcome!", "raw", CmdRaw, []string{"Welcome!"}},
		{"no args", "|upkeep", "upkeep", CmdUpkeep, nil},
		{"upper-cased", "|J|Ash", "j", CmdJoin, []string{"Ash"}},
		{"minor", "|-damage|p2a: Eevee|48/100 brn", "-damage", CmdDamage, []string{"p2a: Eevee", "48/100 brn"}},
		{"unknown", "|bigerror|x", "bigerror", CmdUnknown, []string{"x"}},
		{"empty positional kept", "|move|p1a: Pikachu|Thunderbolt||[still]", "move", CmdMove, []string{"p1a: Pikachu", "Thunderbolt", ""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := ParseMessage("lobby", tt.line)
			assert.Equal(t, tt.wantName, m.Name)
			assert.Equal(t, tt.wantCmd, m.Command)
			if tt.wantArgs == nil {
				assert.Empty(t, m.Args())
			} else {
				assert.Equal(t, tt.wantArgs, m.Args())
			}
		})
	}
}

func TestMessage_Cursor(t *testing.T) {
	m := ParseMessage("battle-gen9ou-1", "|move|p2a: Pinsir|Close Combat|[miss]|p1a: Latias")

	assert.True(t, m.HasKwarg("miss"))
	v, ok := m.Kwarg("miss")
	assert.True(t, ok)
	assert.Equal(t, "", v)

	src, err := m.Next()
	require.NoError(t, err)
	assert.Equal(t, "p2a: Pinsir", src)
	assert.Equal(t, "Close Combat", m.NextOr("x"))

	target, ok := m.NextOpt()
	assert.True(t, ok)
	assert.Equal(t, "p1a: Latias", target, "keyword args are skipped positionally")

	_, err = m.Next()
	assert.ErrorIs(t, err, ErrNoMoreArgs)
	assert.Equal(t, "fallback", m.NextOr("fallback"))

	// lookups stay the same after consumption
	assert.True(t, m.HasKwarg("miss"))

	m.Rewind()
	assert.Equal(t, "p2a: Pinsir|Close Combat|p1a: Latias", m.Rest())
	assert.False(t, m.HasNext())
	assert.Equal(t, "", m.Rest())
}

func TestMessage_Kwargs(t *testing.T) {
	m := ParseMessage("lobby", "|-damage|p1a: Pikachu|50/100|[from] item: Life Orb|[of] p2a: Eevee")
	assert.Equal(t, map[string]string{"from": "item: Life Orb", "of": "p2a: Eevee"}, m.Kwargs())
	assert.Equal(t, []string{"p1a: Pikachu", "50/100"}, m.Args())
	assert.Equal(t, "", m.KwargOr("silent"))
}

func TestMessage_FreeTextKeepsBrackets(t *testing.T) {
	m := ParseMessage("lobby", "|c|+Ash|[beep] boop|second")
	assert.Empty(t, m.Kwargs())
	assert.Equal(t, []string{"+Ash", "[beep] boop", "second"}, m.Args())

	req := ParseMessage("lobby", `|request|{"rqid":3,"side":{"name":"[x]|y","pokemon":[]}}`)
	assert.Empty(t, req.Kwargs())
	assert.Equal(t, `{"rqid":3,"side":{"name":"[x]|y","pokemon":[]}}`, req.Rest())
}

func TestSplitBatch(t *testing.T) {
	room, lines := SplitBatch(">battle-gen9ou-42\n|init|battle\n\n|title|A vs. B\r\n|j|Ash")
	assert.Equal(t, "battle-gen9ou-42", room)
	assert.Equal(t, []string{"|init|battle", "|title|A vs. B", "|j|Ash"}, lines)

	room, lines = SplitBatch("|challstr|abc")
	assert.Equal(t, DefaultRoom, room)
	assert.Equal(t, []string{"|challstr|abc"}, lines)

	msgs := ParseBatch(">room1\n|turn|2\n|upkeep")
	require.Len(t, msgs, 2)
	assert.Equal(t, "room1", msgs[0].RoomID)
	assert.Equal(t, CmdTurn, msgs[0].Command)
	assert.Equal(t, CmdUpkeep, msgs[1].Command)
}

func TestCommand_RoundTrip(t *testing.T) {
	for _, c := range Commands() {
		assert.NotEqual(t, "unknown", c.String(), "command %d has no wire name", c)
		assert.Equal(t, c, ParseCommand(c.String()))
	}
	assert.Equal(t, CmdJoin, ParseCommand("join"))
	assert.True(t, CmdDamage.Minor())
	assert.False(t, CmdMove.Minor())
	assert.True(t, CmdTitle.RoomLevel())
	assert.False(t, CmdTurn.RoomLevel())
	assert.Equal(t, "unknown", CmdUnknown.String())
}

func TestParseCondition(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    core.Condition
		wantErr bool
	}{
		{"with status", "48/100 brn", core.Condition{HP: 48, MaxHP: 100, Status: "brn"}, false},
		{"no status", "150/150", core.Condition{HP: 150, MaxHP: 150}, false},
		{"fainted", "0 fnt", core.FaintedCondition(), false},
		{"empty", "", core.FaintedCondition(), false},
		{"bad hp", "x/100", core.Condition{}, true},
		{"bad max", "10/y", core.Condition{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCondition(tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	c, err := ParseCondition("48/100 brn")
	require.NoError(t, err)
	assert.InDelta(t, 0.48, c.Health(), 1e-9)
}

func TestParseDetails(t *testing.T) {
	d, err := ParseDetails("Pikachu, L50, F, shiny")
	require.NoError(t, err)
	assert.Equal(t, Details{Species: "Pikachu", Level: 50, Gender: core.GenderFemale, Shiny: true}, d)

	d, err = ParseDetails("Ditto")
	require.NoError(t, err)
	assert.Equal(t, core.DefaultLevel, d.Level)

	_, err = ParseDetails("Mew, Lx")
	assert.Error(t, err)
}

func TestParseSwitch(t *testing.T) {
	players := core.Players{P1: "Ash", P2: "Gary", Self: "Gary"}

	p, err := ParseSwitch(players, "p1a: Sparky|Pikachu, L50, M|150/150")
	require.NoError(t, err)
	assert.Equal(t, core.Foe, p.ID.Side)
	assert.Equal(t, 0, p.Position())
	assert.Equal(t, "Sparky", p.ID.Name)
	assert.Equal(t, "Pikachu", p.Species.Name)
	assert.Equal(t, 50, p.Level)
	require.NotNil(t, p.Condition)
	assert.Equal(t, 150, p.Condition.HP)

	p, err = ParseSwitch(players, "p2b: Eevee|Eevee")
	require.NoError(t, err)
	assert.Equal(t, core.Trainer, p.ID.Side)
	assert.Nil(t, p.Condition)

	_, err = ParseSwitch(players, "p2a: Eevee")
	assert.ErrorIs(t, err, ErrNoMoreArgs)
}

func TestEffectHelpers(t *testing.T) {
	assert.Equal(t, "Life Orb", EffectName("item: Life Orb"))
	assert.Equal(t, "Intimidate", EffectName("ability: Intimidate"))
	assert.Equal(t, "reflect", EffectID("move: Reflect"))
	assert.Equal(t, "stealthrock", EffectID("Stealth Rock"))
}
