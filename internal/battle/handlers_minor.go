package battle

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/psbattle/engine/internal/dispatcher"
	"github.com/psbattle/engine/internal/parser"
	"github.com/psbattle/engine/internal/queue"
	"github.com/psbattle/engine/internal/util"
	"github.com/psbattle/engine/pkg/core"
)

// minor schedules a narration only unit.
func (o *Observer) minor(text string) {
	o.queue.Enqueue(queue.Minor, func() { o.say(text) })
}

func (o *Observer) handleMessage(e dispatcher.Event) error {
	o.print(e.Message.Rest())
	return nil
}

// |-fail|POKEMON|EFFECT|STAT
func (o *Observer) handleFail(e dispatcher.Event) error {
	m := e.Message
	id, raw, err := o.nextID(m)
	if err != nil {
		return err
	}
	effect, stat := m.NextOr(""), m.NextOr("")
	text := o.text.Fail(raw, effect, stat, kwargs(m))
	o.queue.Enqueue(queue.Minor, func() {
		o.presenter.BattleToast(id, "Failed", ToastNeutral)
		o.say(text)
	})
	return nil
}

// |-miss|SOURCE|TARGET
func (o *Observer) handleMiss(e dispatcher.Event) error {
	m := e.Message
	id, raw, err := o.nextID(m)
	if err != nil {
		return err
	}
	target := m.NextOr("")
	if target != "" {
		if tid, err := o.resolve(target); err == nil {
			id = tid
		}
	}
	text := o.text.Miss(raw, target, kwargs(m))
	o.queue.Enqueue(queue.Minor, func() {
		o.presenter.BattleToast(id, "Missed", ToastNeutral)
		o.say(text)
	})
	return nil
}

// percentage renders the hp lost or gained between two conditions, or the
// raw fraction when the previous condition is unknown.
func percentage(old *core.Condition, cur core.Condition) string {
	if old == nil || old.MaxHP <= 0 {
		return fmt.Sprintf("[%d/%d]", cur.HP, cur.MaxHP)
	}
	pct := math.Round(100 * math.Abs(float64(cur.HP-old.HP)) / float64(old.MaxHP))
	return fmt.Sprintf("%d%%", int(pct))
}

// |-damage|POKEMON|HP STATUS and |-heal|POKEMON|HP STATUS
func (o *Observer) handleHealthChange(e dispatcher.Event) error {
	m := e.Message
	id, raw, err := o.nextID(m)
	if err != nil {
		return err
	}
	condRaw, err := m.Next()
	if err != nil {
		return err
	}
	cond, err := parser.ParseCondition(condRaw)
	if err != nil {
		return err
	}
	kw := kwargs(m)
	damage := e.Command == parser.CmdDamage

	s := o.session
	o.queue.Enqueue(queue.Minor, func() {
		// the text needs the condition installed by the previous unit
		p := s.Pokemon(id)
		var old *core.Condition
		if p != nil {
			old = p.Condition
		}
		pct := percentage(old, cond)

		var text, toast string
		kind := ToastDamage
		if damage {
			text, toast = o.text.Damage(raw, pct, kw), "-"+pct
		} else {
			text, toast, kind = o.text.Heal(raw, kw), "+"+pct, ToastHeal
		}

		if p != nil {
			c := cond
			p.Condition = &c
		}
		o.presenter.HealthChanged(id, cond)
		o.say(text)
		o.presenter.BattleToast(id, toast, kind)
	})
	return nil
}

// |-sethp|POKEMON|HP
func (o *Observer) handleSetHP(e dispatcher.Event) error {
	m := e.Message
	id, _, err := o.nextID(m)
	if err != nil {
		return err
	}
	condRaw, err := m.Next()
	if err != nil {
		return err
	}
	cond, err := parser.ParseCondition(condRaw)
	if err != nil {
		return err
	}
	text := o.text.SetHP(kwargs(m))

	s := o.session
	o.queue.Enqueue(queue.Minor, func() {
		if id.InBattle() {
			if p := s.Pokemon(id); p != nil {
				c := cond
				p.Condition = &c
			}
			o.presenter.HealthChanged(id, cond)
		}
		o.say(text)
	})
	return nil
}

// |-status|POKEMON|STATUS and |-curestatus|POKEMON|STATUS
func (o *Observer) handleStatus(e dispatcher.Event) error {
	m := e.Message
	id, raw, err := o.nextID(m)
	if err != nil {
		return err
	}
	status, err := m.Next()
	if err != nil {
		return err
	}
	cure := e.Command == parser.CmdCureStatus

	var text string
	if cure {
		text = o.text.CureStatus(raw, status, kwargs(m))
	} else {
		text = o.text.Status(raw, status, kwargs(m))
	}

	s := o.session
	o.queue.Enqueue(queue.Minor, func() {
		if id.InBattle() {
			next := status
			if cure {
				next = ""
			}
			if p := s.Pokemon(id); p != nil && p.Condition != nil {
				p.Condition.Status = next
			}
			o.presenter.StatusChanged(id, next)
		}
		o.say(text)
	})
	return nil
}

func (o *Observer) handleCureTeam(e dispatcher.Event) error {
	o.minor(o.text.CureTeam(kwargs(e.Message)))
	return nil
}

// updateStats applies fn to the stages of id and notifies the presenter.
// An empty slot only gets the narration.
func (o *Observer) updateStats(id core.PokemonID, text string, fn func(*core.StatModifiers)) {
	s := o.session
	o.queue.Enqueue(queue.Minor, func() {
		if p := s.Pokemon(id); p != nil {
			fn(&p.Stats)
			o.presenter.StatChanged(id, p.Stats)
		}
		o.say(text)
	})
}

// |-boost|POKEMON|STAT|AMOUNT and |-unboost|POKEMON|STAT|AMOUNT
func (o *Observer) handleBoost(e dispatcher.Event) error {
	m := e.Message
	id, raw, err := o.nextID(m)
	if err != nil {
		return err
	}
	stat, amount := m.NextOr(""), m.NextOr("")
	n, err := strconv.Atoi(amount)
	if err != nil {
		n = 0
	}
	if e.Command == parser.CmdUnboost {
		n = -n
	}

	text := o.text.Boost(m.Name, raw, stat, amount, kwargs(m))
	o.updateStats(id, text, func(sm *core.StatModifiers) { sm.Inc(stat, n) })
	return nil
}

// |-setboost|POKEMON|STAT|AMOUNT
func (o *Observer) handleSetBoost(e dispatcher.Event) error {
	m := e.Message
	id, raw, err := o.nextID(m)
	if err != nil {
		return err
	}
	stat, err := m.Next()
	if err != nil {
		return err
	}
	n, err := strconv.Atoi(m.NextOr("0"))
	if err != nil {
		n = 0
	}

	text := o.text.SetBoost(raw, kwargs(m))
	o.updateStats(id, text, func(sm *core.StatModifiers) { sm.Set(stat, n) })
	return nil
}

// |-clearboost|POKEMON and its positive and negative variants
func (o *Observer) handleClearBoost(e dispatcher.Event) error {
	m := e.Message
	id, raw, err := o.nextID(m)
	if err != nil {
		return err
	}
	source := m.NextOr("")
	text := o.text.ClearBoost(raw, source, kwargs(m))

	reset := (*core.StatModifiers).Clear
	switch e.Command {
	case parser.CmdClearPositiveBoost:
		reset = (*core.StatModifiers).ClearPositive
	case parser.CmdClearNegativeBoost:
		reset = (*core.StatModifiers).ClearNegative
	}
	o.updateStats(id, text, reset)
	return nil
}

func (o *Observer) handleClearAllBoost(e dispatcher.Event) error {
	text := o.text.ClearAllBoost()
	s := o.session
	o.queue.Enqueue(queue.Minor, func() {
		for _, p := range s.Actives() {
			p.Stats.Clear()
			o.presenter.StatChanged(p.ID, p.Stats)
		}
		o.say(text)
	})
	return nil
}

func (o *Observer) handleInvertBoost(e dispatcher.Event) error {
	m := e.Message
	id, raw, err := o.nextID(m)
	if err != nil {
		return err
	}
	o.updateStats(id, o.text.InvertBoost(raw, kwargs(m)), (*core.StatModifiers).Invert)
	return nil
}

// |-weather|WEATHER|[upkeep]
func (o *Observer) handleWeather(e dispatcher.Event) error {
	m := e.Message
	weather, err := m.Next()
	if err != nil {
		return err
	}
	kw := kwargs(m)

	s := o.session
	o.queue.Enqueue(queue.Minor, func() {
		text := o.text.Weather(weather, s.Field.Weather, kw)
		s.Field.SetWeather(weather)
		if !kw.Has("upkeep") {
			o.presenter.FieldEffectChanged(s.Field.Displayed())
		}
		o.say(text)
	})
	return nil
}

// |-fieldstart|CONDITION, |-fieldactivate|CONDITION and |-fieldend|CONDITION
func (o *Observer) handleField(e dispatcher.Event) error {
	m := e.Message
	effect, err := m.Next()
	if err != nil {
		return err
	}
	id := parser.EffectID(effect)
	start := e.Command != parser.CmdFieldEnd

	var text string
	if start {
		text = o.text.Field(m.Name, effect, kwargs(m))
	} else {
		text = o.text.FieldEnd(effect)
	}

	s := o.session
	o.queue.Enqueue(queue.Minor, func() {
		before := s.Field.Displayed()
		if start {
			s.Field.StartEffect(id)
		} else {
			s.Field.EndEffect(id)
		}
		if after := s.Field.Displayed(); after != before {
			o.presenter.FieldEffectChanged(after)
		}
		o.say(text)
	})
	return nil
}

// |-sidestart|SIDE|CONDITION and |-sideend|SIDE|CONDITION
func (o *Observer) handleSide(e dispatcher.Event) error {
	m := e.Message
	raw, err := m.Next()
	if err != nil {
		return err
	}
	effect := m.NextOr("")
	name := strings.TrimSpace(util.SubstringAfter(effect, ":"))
	start := e.Command == parser.CmdSideStart

	s := o.session
	side := s.Players.SideOf(raw)
	var text string
	if start {
		text = o.text.SideStart(side, effect)
	} else {
		text = o.text.SideEnd(side, effect)
	}

	o.queue.Enqueue(queue.Minor, func() {
		conditions := &s.Sides[side.Index()]
		if start {
			conditions.Start(name)
		} else {
			conditions.End(name)
		}
		o.presenter.SideChanged(side, name, start)
		o.say(text)
	})
	return nil
}

// volatileID normalises counters: "stockpile2" is "stockpile", "perish3" is "perish".
func volatileID(effect string) string {
	id := parser.EffectID(effect)
	switch {
	case strings.HasPrefix(id, "stockpile"):
		return "stockpile"
	case strings.HasPrefix(id, "perish"):
		return "perish"
	}
	return id
}

// |-start|POKEMON|EFFECT and |-end|POKEMON|EFFECT
func (o *Observer) handleVolatile(e dispatcher.Event) error {
	m := e.Message
	id, raw, err := o.nextID(m)
	if err != nil {
		return err
	}
	effect, err := m.Next()
	if err != nil {
		return err
	}
	arg3 := m.NextOr("")
	kw := kwargs(m)
	start := e.Command == parser.CmdVolatileStart

	var text string
	if !kw.Has("silent") {
		if start {
			text = o.text.VolatileStart(raw, effect, arg3, kw)
		} else {
			text = o.text.VolatileEnd(raw, effect, kw)
		}
	}

	vid := volatileID(effect)
	s := o.session
	o.queue.Enqueue(queue.Minor, func() {
		o.presenter.VolatileStatusChanged(id, vid, start)
		if p := s.Pokemon(id); p != nil {
			if start && vid == "smackdown" {
				p.Volatiles.Remove("magnetrise")
				p.Volatiles.Remove("telekinesis")
			}
			if start {
				p.Volatiles.Add(vid)
			} else {
				p.Volatiles.Remove(vid)
			}
		}
		o.say(text)
	})
	return nil
}

// |-activate|POKEMON|EFFECT|TARGET
func (o *Observer) handleActivate(e dispatcher.Event) error {
	m := e.Message
	raw, effect, target := m.NextOr(""), m.NextOr(""), m.NextOr("")
	o.minor(o.text.Activate(raw, effect, target, kwargs(m)))
	return nil
}

var moveEffectToasts = map[parser.Command]struct {
	text string
	kind ToastKind
}{
	parser.CmdCrit:           {"Critical", ToastDamage},
	parser.CmdResisted:       {"Resisted", ToastNeutral},
	parser.CmdSuperEffective: {"Super-effective", ToastDamage},
}

// |-crit|POKEMON, |-resisted|POKEMON and |-supereffective|POKEMON
func (o *Observer) handleMoveEffect(e dispatcher.Event) error {
	m := e.Message
	id, raw, err := o.nextID(m)
	if err != nil {
		return err
	}
	text := o.text.MoveEffect(m.Name, raw, kwargs(m))
	toast := moveEffectToasts[e.Command]
	o.queue.Enqueue(queue.Minor, func() {
		o.say(text)
		o.presenter.BattleToast(id, toast.text, toast.kind)
	})
	return nil
}

func (o *Observer) handleImmune(e dispatcher.Event) error {
	m := e.Message
	id, raw, err := o.nextID(m)
	if err != nil {
		return err
	}
	text := o.text.Immune(raw, kwargs(m))
	o.queue.Enqueue(queue.Minor, func() {
		o.say(text)
		o.presenter.BattleToast(id, "Immune", ToastNeutral)
	})
	return nil
}

// |-item|POKEMON|ITEM and |-enditem|POKEMON|ITEM
func (o *Observer) handleItem(e dispatcher.Event) error {
	m := e.Message
	raw, err := m.Next()
	if err != nil {
		return err
	}
	item := m.NextOr("")
	if e.Command == parser.CmdItem {
		o.minor(o.text.Item(raw, item, kwargs(m)))
	} else {
		o.minor(o.text.EndItem(raw, item, kwargs(m)))
	}
	return nil
}

// |-ability|POKEMON|ABILITY|OLDABILITY and |-endability|POKEMON|ABILITY
func (o *Observer) handleAbility(e dispatcher.Event) error {
	m := e.Message
	id, raw, err := o.nextID(m)
	if err != nil {
		return err
	}
	ability := m.NextOr("")
	if e.Command == parser.CmdEndAbility {
		o.minor(o.text.EndAbility(raw, ability, kwargs(m)))
		return nil
	}

	text := o.text.Ability(raw, ability, m.NextOr(""), kwargs(m))
	o.queue.Enqueue(queue.Minor, func() {
		o.say(text)
		if ability != "" {
			o.presenter.BattleToast(id, ability, ToastAbility)
		}
	})
	return nil
}

// |-mega|POKEMON|SPECIES|MEGASTONE and |-primal|POKEMON
func (o *Observer) handleMega(e dispatcher.Event) error {
	m := e.Message
	raw, err := m.Next()
	if err != nil {
		return err
	}
	species, item := m.NextOr(""), m.NextOr("")
	o.minor(o.text.Mega(raw, species, item, e.Command == parser.CmdPrimal))
	return nil
}

// |-formechange|POKEMON|SPECIES
func (o *Observer) handleFormeChange(e dispatcher.Event) error {
	m := e.Message
	id, raw, err := o.nextID(m)
	if err != nil {
		return err
	}
	species, arg3 := m.NextOr(""), m.NextOr("")
	text := o.text.PokemonChange(m.Name, raw, species, arg3, kwargs(m))

	s := o.session
	o.queue.Enqueue(queue.Minor, func() {
		o.say(text)
		if species == "" {
			return
		}
		p := s.Pokemon(id)
		if p == nil {
			return
		}
		p.Species.SpriteID = core.NewSpecies(species).SpriteID
		o.presenter.DetailsChanged(p)
	})
	return nil
}

// |-transform|POKEMON|TARGET|SPECIES : the pokemon takes the stages and
// volatiles of its target, the presenter hears about every difference
func (o *Observer) handleTransform(e dispatcher.Event) error {
	m := e.Message
	id, raw, err := o.nextID(m)
	if err != nil {
		return err
	}
	targetRaw, err := m.Next()
	if err != nil {
		return err
	}
	targetID, err := o.resolve(targetRaw)
	if err != nil {
		return err
	}
	text := o.text.PokemonChange(m.Name, raw, targetRaw, m.NextOr(""), kwargs(m))

	s := o.session
	o.queue.Enqueue(queue.Minor, func() {
		o.say(text)
		if id.Equal(targetID) {
			return
		}
		p, target := s.Pokemon(id), s.Pokemon(targetID)
		if p == nil || target == nil {
			return
		}

		p.TransformSpecies = target.SpriteID()
		o.presenter.DetailsChanged(p)

		var next core.Volatiles
		for _, v := range target.Volatiles.List() {
			next.Add(v)
		}
		next.Add("transform")
		for _, v := range p.Volatiles.List() {
			if !next.Has(v) {
				o.presenter.VolatileStatusChanged(id, v, false)
			}
		}
		for _, v := range next.List() {
			if !p.Volatiles.Has(v) {
				o.presenter.VolatileStatusChanged(id, v, true)
			}
		}
		p.Volatiles = next

		p.Stats.SetAll(target.Stats)
		o.presenter.StatChanged(id, p.Stats)
	})
	return nil
}

func (o *Observer) handleHint(e dispatcher.Event) error {
	hint := e.Message.Rest()
	if hint == "" {
		return nil
	}
	o.minor("(" + hint + ")")
	return nil
}

// |-block|POKEMON|EFFECT|MOVE|ATTACKER
func (o *Observer) handleBlock(e dispatcher.Event) error {
	m := e.Message
	raw, err := m.Next()
	if err != nil {
		return err
	}
	effect, move, attacker := m.NextOr(""), m.NextOr(""), m.NextOr("")
	o.minor(o.text.Block(raw, effect, move, attacker, kwargs(m)))
	return nil
}

// handleSimple covers the argument-less -ohko, -combine and -notarget.
func (o *Observer) handleSimple(e dispatcher.Event) error {
	switch e.Command {
	case parser.CmdOHKO:
		o.minor(o.text.OHKO())
	case parser.CmdCombine:
		o.minor(o.text.Combine())
	case parser.CmdNoTarget:
		o.minor(o.text.NoTarget())
	}
	return nil
}

// |-prepare|ATTACKER|MOVE|DEFENDER
func (o *Observer) handlePrepare(e dispatcher.Event) error {
	m := e.Message
	raw, err := m.Next()
	if err != nil {
		return err
	}
	effect, target := m.NextOr(""), m.NextOr("")
	o.minor(o.text.Prepare(raw, effect, target))
	return nil
}

func (o *Observer) handleZPower(e dispatcher.Event) error {
	raw, err := e.Message.Next()
	if err != nil {
		return err
	}
	if e.Command == parser.CmdZBroken {
		o.minor(o.text.ZBroken(raw))
	} else {
		o.minor(o.text.ZPower(raw))
	}
	return nil
}

// |-hitcount|POKEMON|NUM
func (o *Observer) handleHitCount(e dispatcher.Event) error {
	m := e.Message
	m.NextOr("")
	o.minor(o.text.HitCount(m.NextOr("")))
	return nil
}

// |-singleturn|POKEMON|MOVE and |-singlemove|POKEMON|MOVE
func (o *Observer) handleSingle(e dispatcher.Event) error {
	m := e.Message
	raw, err := m.Next()
	if err != nil {
		return err
	}
	o.minor(o.text.Single(raw, m.NextOr(""), kwargs(m)))
	return nil
}
