// pkg/core/game_type.go
package core

import "strings"

// GameType is the battle format's number of active slots per side.
type GameType int

const (
	GameTypeUnknown GameType = iota
	Singles
	Doubles
	Triples
)

// ParseGameType maps the gametype argument; anything unrecognised is singles.
func ParseGameType(raw string) GameType {
	switch strings.TrimSpace(raw) {
	case "doubles":
		return Doubles
	case "triples", "rotation":
		return Triples
	default:
		return Singles
	}
}

// Slots returns the number of active combatants per side, 0 when unknown.
func (g GameType) Slots() int {
	switch g {
	case Singles:
		return 1
	case Doubles:
		return 2
	case Triples:
		return 3
	default:
		return 0
	}
}

func (g GameType) String() string {
	switch g {
	case Singles:
		return "singles"
	case Doubles:
		return "doubles"
	case Triples:
		return "triples"
	default:
		return "unknown"
	}
}
