// pkg/core/battle_info.go
package core

import "time"

// BattleInfo describes a battle room for recording purposes.
type BattleInfo struct {
	RoomID    string
	Title     string
	Format    string
	Gen       int
	GameType  GameType
	P1        string
	P2        string
	Rated     bool
	StartedAt time.Time
}

// TurnRecord is a snapshot of the active combatants at a turn boundary.
type TurnRecord struct {
	RoomID  string
	Turn    int
	Time    time.Time
	Field   string
	Weather string
	Actives []ActiveSnapshot
}

// ActiveSnapshot is the recorded state of one occupied slot.
type ActiveSnapshot struct {
	Side      Side
	Position  int
	Name      string
	Species   string
	HP        int
	MaxHP     int
	Status    string
	Boosts    map[string]int
	Volatiles []string
}

// Snapshot captures the recordable state of p.
func (p *BattlingPokemon) Snapshot() ActiveSnapshot {
	s := ActiveSnapshot{
		Side:      p.ID.Side,
		Position:  p.ID.Position,
		Name:      p.ID.Name,
		Species:   p.Species.Name,
		Boosts:    p.Stats.Stages(),
		Volatiles: p.Volatiles.List(),
	}
	if p.Condition != nil {
		s.HP, s.MaxHP, s.Status = p.Condition.HP, p.Condition.MaxHP, p.Condition.Status
	}
	return s
}
