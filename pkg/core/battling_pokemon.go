// pkg/core/battling_pokemon.go
package core

import "slices"

// Gender markers as parsed from the details token.
const (
	GenderMale   = "M"
	GenderFemale = "F"
)

// DefaultLevel is assumed when the details token carries no level.
const DefaultLevel = 100

// volatiles a baton pass does not carry over
var batonPassDropped = []string{
	"airballoon", "attract", "autotomize", "disable", "encore", "foresight",
	"imprison", "laserfocus", "mimic", "miracleeye", "nightmare", "smackdown",
	"stockpile", "torment", "typeadd",
	"typechange", "yawn",
}

// Volatiles is an insertion ordered set of volatile status ids.
type Volatiles struct {
	ids []string
}

// Add inserts id if absent.
func (v *Volatiles) Add(id string) {
	if !v.Has(id) {
		v.ids = append(v.ids, id)
	}
}

// Remove deletes id if present.
func (v *Volatiles) Remove(id string) {
	v.ids = slices.DeleteFunc(v.ids, func(s string) bool { return s == id })
}

// Has reports whether id is active.
func (v *Volatiles) Has(id string) bool {
	return slices.Contains(v.ids, id)
}

// List returns a copy of the active ids in insertion order.
func (v *Volatiles) List() []string {
	return slices.Clone(v.ids)
}

// Len returns the number of active ids.
func (v *Volatiles) Len() int {
	return len(v.ids)
}

// BattlingPokemon is one live combatant occupying a slot.
type BattlingPokemon struct {
	ID        PokemonID
	Species   Species
	Level     int
	Gender    string
	Shiny     bool
	Condition *Condition // nil when the switch line carried no condition
	Stats     StatModifiers
	Volatiles Volatiles

	// TransformSpecies is the sprite id of the pokemon this one transformed into.
	TransformSpecies string

	// LastMove is the move this combatant used most recently.
	LastMove string
}

// NewBattlingPokemon creates a combatant with default level.
func NewBattlingPokemon(id PokemonID, species string) *BattlingPokemon {
	return &BattlingPokemon{
		ID:      id,
		Species: NewSpecies(species),
		Level:   DefaultLevel,
	}
}

// Foe is a shorthand for ID.Foe().
func (p *BattlingPokemon) Foe() bool {
	return p.ID.Foe()
}

// Position is a shorthand for ID.Position.
func (p *BattlingPokemon) Position() int {
	return p.ID.Position
}

// SetSpecies replaces the species and its derived forme fields.
func (p *BattlingPokemon) SetSpecies(name string) {
	p.Species = NewSpecies(name)
}

// CopyVolatiles carries stages and volatiles over from prev.
// copyAll=false is the baton pass rule, copyAll=true is used when an illusion breaks.
func (p *BattlingPokemon) CopyVolatiles(prev *BattlingPokemon, copyAll bool) {
	if prev == nil {
		return
	}
	p.Stats.SetAll(prev.Stats)
	for _, id := range prev.Volatiles.ids {
		p.Volatiles.Add(id)
	}
	if !copyAll {
		for _, id := range batonPassDropped {
			p.Volatiles.Remove(id)
		}
	}
	p.Volatiles.Remove("transform")
	p.Volatiles.Remove("formechange")
}

// SpriteID returns the sprite to display, honouring transform.
func (p *BattlingPokemon) SpriteID() string {
	if p.TransformSpecies != "" {
		return p.TransformSpecies
	}
	return p.Species.SpriteID
}
