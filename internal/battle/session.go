package battle

import (
	"slices"
	"time"

	"github.com/psbattle/engine/pkg/core"
)

// State is the lifecycle of the observed battle room.
type State int

const (
	StateIdle State = iota
	StateInitialized
	StateRunning
	StateEnded
)

func (s State) String() string {
	switch s {
	case StateInitialized:
		return "initialized"
	case StateRunning:
		return "running"
	case StateEnded:
		return "ended"
	default:
		return "idle"
	}
}

// Session is the state of one battle room. It is created on init, dropped
// on deinit and only touched from the queue consumer goroutine.
type Session struct {
	RoomID   string
	Title    string
	Format   string
	Gen      int
	Rated    bool
	Players  core.Players
	GameType core.GameType
	Users    []string
	Turn     int

	// Field and Sides are mutated by scheduled units only
	Field core.FieldState
	Sides [2]core.SideConditions

	state          State
	startedAt      time.Time
	previewIndexes [2]int
	lastRequest    *core.BattleActionRequest
	actives        [2][]*core.BattlingPokemon
}

// NewSession creates the state of a freshly initialized room.
func NewSession(roomID, self string) *Session {
	return &Session{
		RoomID:  roomID,
		Players: core.Players{Self: self},
		state:   StateInitialized,
	}
}

// State returns the lifecycle state.
func (s *Session) State() State {
	return s.state
}

// Running reports whether the battle has not ended yet.
func (s *Session) Running() bool {
	return s.state == StateInitialized || s.state == StateRunning
}

// LastRequest returns the latest action request, nil before the first one.
func (s *Session) LastRequest() *core.BattleActionRequest {
	return s.lastRequest
}

// resize sets the number of active slots per side, keeping occupants that still fit.
func (s *Session) resize(g core.GameType) {
	n := g.Slots()
	for i := range s.actives {
		arr := make([]*core.BattlingPokemon, n)
		copy(arr, s.actives[i])
		s.actives[i] = arr
	}
}

// Pokemon returns the occupant of the slot named by id, nil when the slot
// is empty or id is not in battle.
func (s *Session) Pokemon(id core.PokemonID) *core.BattlingPokemon {
	return s.at(id.Side, id.Position)
}

func (s *Session) at(side core.Side, position int) *core.BattlingPokemon {
	arr := s.actives[side.Index()]
	if position < 0 || position >= len(arr) {
		return nil
	}
	return arr[position]
}

// place puts p into its slot, replacing the previous occupant.
func (s *Session) place(p *core.BattlingPokemon) {
	if !p.ID.InBattle() {
		return
	}
	i := p.ID.Side.Index()
	if p.ID.Position >= len(s.actives[i]) {
		s.actives[i] = append(s.actives[i], make([]*core.BattlingPokemon, p.ID.Position+1-len(s.actives[i]))...)
	}
	s.actives[i][p.ID.Position] = p
}

// indexOf returns the slot of the occupant equal to id, -1 when absent.
func (s *Session) indexOf(id core.PokemonID) int {
	return slices.IndexFunc(s.actives[id.Side.Index()], func(p *core.BattlingPokemon) bool {
		return p != nil && p.ID.Equal(id)
	})
}

// swap exchanges two slots of one side. Both indexes must be valid.
func (s *Session) swap(side core.Side, a, b int) bool {
	arr := s.actives[side.Index()]
	if a < 0 || b < 0 || a >= len(arr) || b >= len(arr) {
		return false
	}
	arr[a], arr[b] = arr[b], arr[a]
	for _, i := range []int{a, b} {
		if arr[i] != nil {
			arr[i].ID.Position = i
		}
	}
	return true
}

// Actives returns every occupied slot, trainer side first.
func (s *Session) Actives() []*core.BattlingPokemon {
	var out []*core.BattlingPokemon
	for _, arr := range s.actives {
		for _, p := range arr {
			if p != nil {
				out = append(out, p)
			}
		}
	}
	return out
}

// Info describes the battle for recorders.
func (s *Session) Info() core.BattleInfo {
	return core.BattleInfo{
		RoomID:    s.RoomID,
		Title:     s.Title,
		Format:    s.Format,
		Gen:       s.Gen,
		GameType:  s.GameType,
		P1:        s.Players.P1,
		P2:        s.Players.P2,
		Rated:     s.Rated,
		StartedAt: s.startedAt,
	}
}

// TurnRecord snapshots the occupied slots at the current turn.
func (s *Session) TurnRecord(now time.Time) core.TurnRecord {
	r := core.TurnRecord{
		RoomID:  s.RoomID,
		Turn:    s.Turn,
		Time:    now,
		Field:   s.Field.Displayed(),
		Weather: s.Field.Weather,
	}
	for _, p := range s.Actives() {
		r.Actives = append(r.Actives, p.Snapshot())
	}
	return r
}
