// pkg/core/decision.go
package core

import (
	"slices"
	"strconv"
	"strings"
)

// Decision command verbs.
const (
	CommandChoose = "choose"
	CommandTeam   = "team"
)

// Choice actions.
const (
	ActionMove   = "move"
	ActionSwitch = "switch"
	ActionPass   = "pass"
)

// Move modifiers, at most one per choice.
const (
	ExtraMega    = "mega"
	ExtraZMove   = "zmove"
	ExtraDynamax = "dynamax"
)

// Choice is one slot's decision. Indexes are 1-based, 0 means absent.
type Choice struct {
	Action string // empty for team preview leads
	Index  int
	Extra  string
	Target int
}

// BattleDecision accumulates per-slot choices for one request.
type BattleDecision struct {
	command  string
	choices  []Choice
	teamSize int
}

// Command returns the verb of the decision, empty while no choice was added.
func (d *BattleDecision) Command() string {
	return d.command
}

// Choices returns a copy of the accumulated choices.
func (d *BattleDecision) Choices() []Choice {
	return slices.Clone(d.choices)
}

// AddMoveChoice adds a move choice; mega wins over zmove which wins over dynamax.
func (d *BattleDecision) AddMoveChoice(which int, mega, zmove, dynamax bool) {
	d.command = CommandChoose
	c := Choice{Action: ActionMove, Index: which}
	switch {
	case mega:
		c.Extra = ExtraMega
	case zmove:
		c.Extra = ExtraZMove
	case dynamax:
		c.Extra = ExtraDynamax
	}
	d.choices = append(d.choices, c)
}

// AddSwitchChoice adds a switch to the 1-based team slot who.
func (d *BattleDecision) AddSwitchChoice(who int) {
	d.command = CommandChoose
	d.choices = append(d.choices, Choice{Action: ActionSwitch, Index: who})
}

// AddPassChoice adds a pass for a slot with nothing to do.
func (d *BattleDecision) AddPassChoice() {
	d.command = CommandChoose
	d.choices = append(d.choices, Choice{Action: ActionPass})
}

// AddLeadChoice picks the 1-based team slot first as the next lead.
func (d *BattleDecision) AddLeadChoice(first, teamSize int) {
	d.command = CommandTeam
	d.teamSize = teamSize
	d.choices = append(d.choices, Choice{Index: first})
}

// SetLastMoveTarget sets the target slot of the last added choice.
func (d *BattleDecision) SetLastMoveTarget(target int) {
	if len(d.choices) == 0 {
		return
	}
	d.choices[len(d.choices)-1].Target = target
}

// LeadChoicesCount returns the number of team preview picks.
func (d *BattleDecision) LeadChoicesCount() int {
	return d.count(func(c Choice) bool { return c.Action == "" })
}

// SwitchChoicesCount returns the number of switch choices.
func (d *BattleDecision) SwitchChoicesCount() int {
	return d.count(func(c Choice) bool { return c.Action == ActionSwitch })
}

// HasSwitchChoice reports whether team slot which is already switched in.
func (d *BattleDecision) HasSwitchChoice(which int) bool {
	return slices.ContainsFunc(d.choices, func(c Choice) bool {
		return c.Action == ActionSwitch && c.Index == which
	})
}

// HasOnlyPassChoice reports whether every choice is a pass.
func (d *BattleDecision) HasOnlyPassChoice() bool {
	return !slices.ContainsFunc(d.choices, func(c Choice) bool { return c.Action != ActionPass })
}

func (d *BattleDecision) count(match func(Choice) bool) int {
	n := 0
	for _, c := range d.choices {
		if match(c) {
			n++
		}
	}
	return n
}

// Build renders the argument of the command: comma joined segments for
// choose, the slot permutation for team.
func (d *BattleDecision) Build() string {
	var b strings.Builder
	if d.command == CommandTeam {
		seen := make(map[int]bool, d.teamSize)
		for _, c := range d.choices {
			b.WriteString(strconv.Itoa(c.Index))
			seen[c.Index] = true
		}
		for i := 1; i <= d.teamSize; i++ {
			if !seen[i] {
				b.WriteString(strconv.Itoa(i))
			}
		}
		return b.String()
	}

	for i, c := range d.choices {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(c.Action)
		if c.Index != 0 {
			b.WriteString(" " + strconv.Itoa(c.Index))
		}
		if c.Extra != "" {
			b.WriteString(" " + c.Extra)
		}
		if c.Target != 0 {
			b.WriteString(" " + strconv.Itoa(c.Target))
		}
	}
	return b.String()
}
