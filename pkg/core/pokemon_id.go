// pkg/core/pokemon_id.go
package core

import (
	"fmt"
	"strings"
)

// NotInBattle is the position of a combatant referenced without a slot letter.
const NotInBattle = -1

// PokemonID identifies a combatant from a raw identity token such as "p1a: Pikachu".
type PokemonID struct {
	Side     Side
	Position int // slot index, NotInBattle when the token has no slot letter
	Name     string
}

// NewPokemonID parses an identity token for an already resolved side.
func NewPokemonID(side Side, raw string) (PokemonID, error) {
	if len(raw) < 3 || (raw[0] != 'p' && raw[0] != 'P') {
		return PokemonID{}, fmt.Errorf("invalid pokemon identity %q", raw)
	}
	id := PokemonID{Side: side, Position: NotInBattle}
	if c := raw[2]; c >= 'a' && c <= 'z' {
		id.Position = int(c - 'a')
	}
	if _, name, ok := strings.Cut(raw, ":"); ok {
		id.Name = strings.TrimSpace(name)
	}
	return id, nil
}

// SlotID builds the identity of an anonymous slot (team preview, swap targets).
func SlotID(side Side, position int) PokemonID {
	return PokemonID{Side: side, Position: position}
}

// InBattle reports whether the identity names an active slot.
func (id PokemonID) InBattle() bool {
	return id.Position >= 0
}

// Foe is a shorthand for Side == Foe.
func (id PokemonID) Foe() bool {
	return id.Side == Foe
}

// Equal compares by side and slot when both are in battle, by name otherwise.
func (id PokemonID) Equal(other PokemonID) bool {
	if id.InBattle() && other.InBattle() {
		return id.Side == other.Side && id.Position == other.Position
	}
	return id.Side == other.Side && id.Name == other.Name
}

func (id PokemonID) String() string {
	if !id.InBattle() {
		return fmt.Sprintf("%s: %s", id.Side, id.Name)
	}
	return fmt.Sprintf("%s%c: %s", id.Side, 'a'+rune(id.Position), id.Name)
}
