// pkg/core/request.go
package core

// MoveTarget is the targeting class of a move.
type MoveTarget int

const (
	TargetNormal MoveTarget = iota
	TargetAllAdjacentFoes
	TargetSelf
	TargetAny
	TargetAdjacentAllyOrSelf
	TargetAllyTeam
	TargetAdjacentAlly
	TargetAllySide
	TargetAllAdjacent
	TargetScripted
	TargetAll
	TargetAdjacentFoe
	TargetRandomNormal
	TargetFoeSide
)

var moveTargetIDs = map[string]MoveTarget{
	"normal":             TargetNormal,
	"alladjacentfoes":    TargetAllAdjacentFoes,
	"self":               TargetSelf,
	"any":                TargetAny,
	"adjacentallyorself": TargetAdjacentAllyOrSelf,
	"allyteam":           TargetAllyTeam,
	"adjacentally":       TargetAdjacentAlly,
	"allyside":           TargetAllySide,
	"alladjacent":        TargetAllAdjacent,
	"scripted":           TargetScripted,
	"all":                TargetAll,
	"adjacentfoe":        TargetAdjacentFoe,
	"randomnormal":       TargetRandomNormal,
	"foeside":            TargetFoeSide,
}

// MoveTargetFromID maps a target id ("adjacentFoe" lowered to "adjacentfoe").
// Unknown ids are TargetNormal.
func MoveTargetFromID(id string) MoveTarget {
	if t, ok := moveTargetIDs[id]; ok {
		return t
	}
	return TargetNormal
}

// Choosable reports whether the player must pick a target slot for this move.
func (t MoveTarget) Choosable() bool {
	switch t {
	case TargetNormal, TargetAny, TargetAdjacentAlly, TargetAdjacentAllyOrSelf, TargetAdjacentFoe:
		return true
	}
	return false
}

// Move is one entry of an active slot's move list.
type Move struct {
	Index    int // 0-based position in the request, choices send Index+1
	Name     string
	ID       string
	PP       int // -1 when unknown
	MaxPP    int
	Target   MoveTarget
	Disabled bool

	ZName string // empty when no Z-move is available

	MaxMoveID     string // empty when not dynamaxed and cannot dynamax
	MaxMoveTarget MoveTarget
}

// CanZMove reports whether a Z variant is offered.
func (m Move) CanZMove() bool {
	return m.ZName != ""
}

// ActiveSlot holds the options of one active combatant.
type ActiveSlot struct {
	Trapped    bool
	CanMegaEvo bool
	CanDynamax bool
	Moves      []Move
}

// Stats are the computed battle stats of a team member.
type Stats struct {
	HP  int `json:"hp"`
	Atk int `json:"atk"`
	Def int `json:"def"`
	Spa int `json:"spa"`
	Spd int `json:"spd"`
	Spe int `json:"spe"`
}

// SidePokemon is a roster entry of the player's own team.
type SidePokemon struct {
	Index       int
	Name        string
	Species     Species
	Level       int
	Gender      string
	Shiny       bool
	Condition   Condition
	Active      bool
	Stats       Stats
	Moves       []string
	BaseAbility string
	Ability     string
	Item        string
	Pokeball    string
}

// BattleActionRequest is one decision prompt from the server.
type BattleActionRequest struct {
	ID          int
	TeamPreview bool
	MaxTeamSize int // 0 when unrestricted
	Wait        bool
	GameType    GameType

	// ForceSwitch and Active are nil when the server omits them.
	ForceSwitch []bool
	Active      []ActiveSlot

	Side []SidePokemon
}

func (r *BattleActionRequest) slot(which int) (ActiveSlot, bool) {
	if which < 0 || which >= len(r.Active) {
		return ActiveSlot{}, false
	}
	return r.Active[which], true
}

// Count is the number of slots a decision must cover.
func (r *BattleActionRequest) Count() int {
	if n := r.GameType.Slots(); n > 0 {
		return n
	}
	return max(len(r.Active), len(r.ForceSwitch), 1)
}

// Moves returns the move list of slot which, nil when it has none.
func (r *BattleActionRequest) Moves(which int) []Move {
	s, ok := r.slot(which)
	if !ok {
		return nil
	}
	return s.Moves
}

// ForcedSwitch reports whether slot which must switch.
func (r *BattleActionRequest) ForcedSwitch(which int) bool {
	return which >= 0 && which < len(r.ForceSwitch) && r.ForceSwitch[which]
}

// Trapped reports whether slot which cannot switch.
func (r *BattleActionRequest) Trapped(which int) bool {
	s, _ := r.slot(which)
	return s.Trapped
}

// CanMegaEvo reports whether slot which may mega evolve.
func (r *BattleActionRequest) CanMegaEvo(which int) bool {
	s, _ := r.slot(which)
	return s.CanMegaEvo
}

// CanDynamax reports whether slot which may dynamax.
func (r *BattleActionRequest) CanDynamax(which int) bool {
	s, _ := r.slot(which)
	return s.CanDynamax
}

// ShouldPass reports whether slot which has nothing to choose.
func (r *BattleActionRequest) ShouldPass(which int) bool {
	return !r.ForcedSwitch(which) && r.Moves(which) == nil
}

// IsDynamaxed reports whether slot which is already dynamaxed: it cannot
// dynamax but its moves carry max variants.
func (r *BattleActionRequest) IsDynamaxed(which int) bool {
	moves := r.Moves(which)
	if r.CanDynamax(which) || moves == nil {
		return false
	}
	for _, m := range moves {
		if m.MaxMoveID != "" {
			return true
		}
	}
	return false
}
