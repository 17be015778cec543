package codec

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/psbattle/engine/internal/parser"
	"github.com/psbattle/engine/internal/util"
	"github.com/psbattle/engine/pkg/core"
)

// ErrMissingField is returned when a required request field is absent.
var ErrMissingField = errors.New("missing required field")

type (
	wireRequest struct {
		RQID        *int          `json:"rqid"`
		Wait        bool          `json:"wait"`
		TeamPreview bool          `json:"teamPreview"`
		MaxTeamSize int           `json:"maxTeamSize"`
		ForceSwitch []bool        `json:"forceSwitch"`
		Active      []wireActive  `json:"active"`
		Side        *wireSideInfo `json:"side"`
	}

	wireActive struct {
		Moves      []wireMove     `json:"moves"`
		Trapped    bool           `json:"trapped"`
		CanMegaEvo bool           `json:"canMegaEvo"`
		CanDynamax bool           `json:"canDynamax"`
		CanZMove   []*wireVariant `json:"canZMove"`
		MaxMoves   *wireMaxMoves  `json:"maxMoves"`
	}

	wireMove struct {
		Move     string `json:"move"`
		ID       string `json:"id"`
		PP       *int   `json:"pp"`
		MaxPP    *int   `json:"maxpp"`
		Target   string `json:"target"`
		Disabled any    `json:"disabled"`
	}

	wireVariant struct {
		Move   string `json:"move"`
		Target string `json:"target"`
	}

	wireMaxMoves struct {
		MaxMoves []*wireVariant `json:"maxMoves"`
	}

	wireSideInfo struct {
		Name    string            `json:"name"`
		ID      string            `json:"id"`
		Pokemon []wireSidePokemon `json:"pokemon"`
	}

	wireSidePokemon struct {
		Ident       string         `json:"ident"`
		Details     string         `json:"details"`
		Condition   string         `json:"condition"`
		Active      bool           `json:"active"`
		Stats       map[string]int `json:"stats"`
		Moves       []string       `json:"moves"`
		BaseAbility string         `json:"baseAbility"`
		Item        string         `json:"item"`
		Pokeball    string         `json:"pokeball"`
		Ability     string         `json:"ability"`
	}
)

// DecodeRequest decodes the JSON payload of a request line.
// Move order is preserved; absent optional arrays mean no restriction.
func DecodeRequest(raw []byte, gameType core.GameType) (*core.BattleActionRequest, error) {
	var w wireRequest
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, fmt.Errorf("error decoding request json: %w", err)
	}
	if w.RQID == nil {
		return nil, fmt.Errorf("rqid: %w", ErrMissingField)
	}
	if w.Side == nil || w.Side.Pokemon == nil {
		return nil, fmt.Errorf("side.pokemon: %w", ErrMissingField)
	}

	req := &core.BattleActionRequest{
		ID:          *w.RQID,
		TeamPreview: w.TeamPreview,
		MaxTeamSize: w.MaxTeamSize,
		Wait:        w.Wait,
		GameType:    gameType,
		ForceSwitch: w.ForceSwitch,
	}

	if w.Active != nil {
		req.Active = make([]core.ActiveSlot, len(w.Active))
		for i, a := range w.Active {
			req.Active[i] = decodeActive(a)
		}
	}

	req.Side = make([]core.SidePokemon, 0, len(w.Side.Pokemon))
	for i, p := range w.Side.Pokemon {
		sp, err := decodeSidePokemon(i, p)
		if err != nil {
			return nil, fmt.Errorf("side.pokemon[%d]: %w", i, err)
		}
		req.Side = append(req.Side, sp)
	}

	return req, nil
}

func decodeActive(a wireActive) core.ActiveSlot {
	slot := core.ActiveSlot{
		Trapped:    a.Trapped,
		CanMegaEvo: a.CanMegaEvo,
		CanDynamax: a.CanDynamax,
		Moves:      make([]core.Move, len(a.Moves)),
	}
	var maxMoves []*wireVariant
	if a.MaxMoves != nil {
		maxMoves = a.MaxMoves.MaxMoves
	}
	for j, m := range a.Moves {
		move := core.Move{
			Index:    j,
			Name:     strings.ReplaceAll(m.Move, "Hidden Power", "HP"),
			ID:       m.ID,
			PP:       intOr(m.PP, -1),
			MaxPP:    intOr(m.MaxPP, -1),
			Target:   core.MoveTargetFromID(util.ToID(m.Target)),
			Disabled: truthy(m.Disabled),
		}
		if z := variantAt(a.CanZMove, j); z != nil {
			move.ZName = z.Move
		}
		if mx := variantAt(maxMoves, j); mx != nil {
			move.MaxMoveID = mx.Move
			move.MaxMoveTarget = core.MoveTargetFromID(util.ToID(mx.Target))
		}
		slot.Moves[j] = move
	}
	return slot
}

func decodeSidePokemon(index int, p wireSidePokemon) (core.SidePokemon, error) {
	d, err := parser.ParseDetails(p.Details)
	if err != nil {
		return core.SidePokemon{}, err
	}
	cond, err := parser.ParseCondition(p.Condition)
	if err != nil {
		return core.SidePokemon{}, err
	}

	ability := p.Ability
	if strings.TrimSpace(ability) == "" {
		ability = p.BaseAbility
	}

	return core.SidePokemon{
		Index:     index,
		Name:      strings.TrimSpace(util.SubstringAfter(p.Ident, ":")),
		Species:   core.NewSpecies(d.Species),
		Level:     d.Level,
		Gender:    d.Gender,
		Shiny:     d.Shiny,
		Condition: cond,
		Active:    p.Active,
		Stats: core.Stats{
			HP:  p.Stats["hp"],
			Atk: p.Stats["atk"],
			Def: p.Stats["def"],
			Spa: p.Stats["spa"],
			Spd: p.Stats["spd"],
			Spe: p.Stats["spe"],
		},
		Moves:       p.Moves,
		BaseAbility: p.BaseAbility,
		Ability:     ability,
		Item:        p.Item,
		Pokeball:    p.Pokeball,
	}, nil
}

func variantAt(vs []*wireVariant, i int) *wireVariant {
	if i < 0 || i >= len(vs) {
		return nil
	}
	return vs[i]
}

func intOr(v *int, def int) int {
	if v == nil {
		return def
	}
	return *v
}

// disabled is a bool, or a string naming the source in some generations
func truthy(v any) bool {
	switch x := v.(type) {
	case bool:
		return x
	case string:
		return x != ""
	default:
		return false
	}
}
