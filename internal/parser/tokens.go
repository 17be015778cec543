package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/psbattle/engine/internal/util"
	"github.com/psbattle/engine/pkg/core"
)

// Details is the decoded "Species, L50, M, shiny" token.
type Details struct {
	Species string
	Level   int
	Gender  string
	Shiny   bool
}

// ToID converts a display name into its protocol id.
func ToID(s string) string {
	return util.ToID(s)
}

// ParsePokemonID resolves the side of an identity token with the known players.
func ParsePokemonID(players core.Players, raw string) (core.PokemonID, error) {
	return core.NewPokemonID(players.SideOf(raw), raw)
}

// ParseCondition parses "cur/max status". A token without "/" is a fainted condition.
func ParseCondition(raw string) (core.Condition, error) {
	raw = strings.TrimSpace(raw)
	hpPart, rest, ok := strings.Cut(raw, "/")
	if !ok {
		return core.FaintedCondition(), nil
	}

	hp, err := strconv.Atoi(strings.TrimSpace(hpPart))
	if err != nil {
		return core.Condition{}, fmt.Errorf("error converting hp %q: %w", hpPart, err)
	}

	maxPart, status, _ := strings.Cut(rest, " ")
	maxHP, err := strconv.Atoi(maxPart)
	if err != nil {
		return core.Condition{}, fmt.Errorf("error converting max hp %q: %w", maxPart, err)
	}

	return core.NewCondition(hp, maxHP, strings.TrimSpace(status)), nil
}

// ParseDetails parses a details token such as "Pikachu, L50, F, shiny".
func ParseDetails(raw string) (Details, error) {
	fields := strings.Split(raw, ", ")
	d := Details{Species: strings.TrimSpace(fields[0]), Level: core.DefaultLevel}
	if d.Species == "" {
		return d, fmt.Errorf("empty species in details %q", raw)
	}
	for _, f := range fields[1:] {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		switch f[0] {
		case 's', 'S':
			d.Shiny = true
		case 'm', 'M':
			d.Gender = core.GenderMale
		case 'f', 'F':
			d.Gender = core.GenderFemale
		case 'l', 'L':
			lvl, err := strconv.Atoi(f[1:])
			if err != nil {
				return d, fmt.Errorf("error converting level %q: %w", f, err)
			}
			d.Level = lvl
		}
	}
	return d, nil
}

// ParseSwitch builds a combatant from "ident|details[|condition]", the raw
// remainder of a switch, drag, replace or detailschange line.
func ParseSwitch(players core.Players, raw string) (*core.BattlingPokemon, error) {
	parts := strings.Split(raw, separator)
	id, err := ParsePokemonID(players, parts[0])
	if err != nil {
		return nil, err
	}
	if len(parts) < 2 {
		return nil, fmt.Errorf("missing details for %q: %w", parts[0], ErrNoMoreArgs)
	}

	d, err := ParseDetails(parts[1])
	if err != nil {
		return nil, err
	}

	p := core.NewBattlingPokemon(id, d.Species)
	p.Level = d.Level
	p.Gender = d.Gender
	p.Shiny = d.Shiny

	if len(parts) > 2 {
		c, err := ParseCondition(parts[len(parts)-1])
		if err != nil {
			return nil, err
		}
		p.Condition = &c
	}
	return p, nil
}

// EffectName strips an "item:", "move:" or "ability:" prefix.
func EffectName(effect string) string {
	for _, prefix := range []string{"item:", "move:", "ability:"} {
		if strings.HasPrefix(effect, prefix) {
			return strings.TrimSpace(effect[len(prefix):])
		}
	}
	return strings.TrimSpace(effect)
}

// EffectID is the id of the part after the first ":", "move: Reflect" -> "reflect".
func EffectID(effect string) string {
	return ToID(util.SubstringAfter(effect, ":"))
}
