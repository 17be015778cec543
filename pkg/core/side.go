// pkg/core/side.go
package core

import "strings"

// Side is the perspective a combatant belongs to, relative to the local user.
type Side int

const (
	Trainer Side = iota
	Foe
)

func (s Side) String() string {
	if s == Foe {
		return "foe"
	}
	return "trainer"
}

// Index returns 0 for Trainer and 1 for Foe, for per-side arrays.
func (s Side) Index() int {
	if s == Foe {
		return 1
	}
	return 0
}

// Players maps the two protocol player slots (p1, p2) to usernames.
type Players struct {
	P1   string
	P2   string
	Self string // local username, empty when anonymous
}

// Known reports whether both player messages have arrived.
func (p Players) Known() bool {
	return p.P1 != "" && p.P2 != ""
}

// Watching is true when the local user is not one of the two players.
// An anonymous user is always watching.
func (p Players) Watching() bool {
	if p.Self == "" {
		return true
	}
	return p.P1 != p.Self && p.P2 != p.Self
}

// SideOf resolves a raw player token ("p1", "p2a: Name") to a Side.
// When watching, p1 is shown as Trainer.
func (p Players) SideOf(raw string) Side {
	prefix := raw
	if len(prefix) > 2 {
		prefix = prefix[:2]
	}
	isOne := strings.EqualFold(prefix, "p1")
	if p.Watching() {
		if isOne {
			return Trainer
		}
		return Foe
	}
	if isOne {
		if p.P1 == p.Self {
			return Trainer
		}
		return Foe
	}
	if p.P2 == p.Self {
		return Trainer
	}
	return Foe
}

// Username returns the username displayed for the given side.
func (p Players) Username(s Side) string {
	switch {
	case !p.Watching() && p.P2 == p.Self:
		if s == Trainer {
			return p.P2
		}
		return p.P1
	default:
		if s == Trainer {
			return p.P1
		}
		return p.P2
	}
}
