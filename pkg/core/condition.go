// pkg/core/condition.go
package core

import "fmt"

// StatusFainted is the status carried by a condition without an hp fraction.
const StatusFainted = "fnt"

// Condition is a combatant's hit points and major status.
type Condition struct {
	HP     int
	MaxHP  int
	Status string // empty when healthy
}

// FaintedCondition is the condition of an empty or fraction-less token.
func FaintedCondition() Condition {
	return Condition{HP: 0, MaxHP: 100, Status: StatusFainted}
}

// NewCondition builds a condition with hp clamped into [0, max].
func NewCondition(hp, maxHP int, status string) Condition {
	if maxHP <= 0 {
		maxHP = 100
	}
	hp = max(0, min(hp, maxHP))
	return Condition{HP: hp, MaxHP: maxHP, Status: status}
}

// Health is the current hp fraction, computed on every call.
func (c Condition) Health() float64 {
	if c.MaxHP <= 0 {
		return 0
	}
	return float64(c.HP) / float64(c.MaxHP)
}

// Fainted reports whether the combatant is out.
func (c Condition) Fainted() bool {
	return c.Status == StatusFainted || c.HP == 0
}

func (c Condition) String() string {
	if c.Status == "" {
		return fmt.Sprintf("%d/%d", c.HP, c.MaxHP)
	}
	return fmt.Sprintf("%d/%d %s", c.HP, c.MaxHP, c.Status)
}
