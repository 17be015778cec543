package narration

import (
	"strconv"
	"strings"

	"github.com/psbattle/engine/internal/util"
	"github.com/psbattle/engine/pkg/core"
)

const (
	phTrainer    = "[TRAINER]"
	phNickname   = "[NICKNAME]"
	phNumber     = "[NUMBER]"
	phFullname   = "[FULLNAME]"
	phPokemon    = "[POKEMON]"
	phTarget     = "[TARGET]"
	phMove       = "[MOVE]"
	phAbility    = "[ABILITY]"
	phItem       = "[ITEM]"
	phSpecies    = "[SPECIES]"
	phType       = "[TYPE]"
	phEffect     = "[EFFECT]"
	phTeam       = "[TEAM]"
	phSource     = "[SOURCE]"
	phPercentage = "[PERCENTAGE]"
	phStat       = "[STAT]"
	phParty      = "[PARTY]"
	phName       = "[NAME]"
)

// Resolver turns a raw identity token ("p2a: Eevee") into a PokemonID.
type Resolver func(raw string) (core.PokemonID, error)

// Kwargs holds the keyword arguments of a protocol line.
type Kwargs map[string]string

// Get returns the value of key, "" when absent.
func (k Kwargs) Get(key string) string { return k[key] }

// Has reports whether the flag or keyword is present.
func (k Kwargs) Has(key string) bool {
	_, ok := k[key]
	return ok
}

// Builder renders narration lines. Every method returns "" when nothing
// should be printed.
type Builder struct {
	table   Table
	resolve Resolver
}

// NewBuilder creates a builder over table. A nil table uses the embedded one.
func NewBuilder(table Table, resolve Resolver) *Builder {
	if table == nil {
		table = DefaultTable()
	}
	return &Builder{table: table, resolve: resolve}
}

// SetResolver replaces the identity resolver.
func (b *Builder) SetResolver(r Resolver) {
	b.resolve = r
}

func (b *Builder) tpl(key string) string {
	return b.table.resolve(defaultObject, key, true)
}

func (b *Builder) tplOf(objectKey, key string) string {
	return b.table.resolve(objectKey, key, true)
}

func (b *Builder) tplOnly(objectKey, key string) string {
	return b.table.resolve(objectKey, key, false)
}

func (b *Builder) tplOwn(objectKey, key string, own bool) string {
	if own {
		key += "Own"
	}
	return b.tplOf(objectKey, key)
}

func (b *Builder) pokemonName(id core.PokemonID) string {
	if id.Foe() {
		return fill(b.tpl("opposingPokemon"), phNickname, id.Name)
	}
	return fill(b.tpl("pokemon"), phNickname, id.Name)
}

func (b *Builder) id(raw string) (core.PokemonID, bool) {
	if raw == "" || b.resolve == nil {
		return core.PokemonID{}, false
	}
	id, err := b.resolve(raw)
	if err != nil {
		return core.PokemonID{}, false
	}
	return id, true
}

// pokemon renders a raw identity, "" when raw is empty.
func (b *Builder) pokemon(raw string) string {
	if raw == "" {
		return ""
	}
	id, ok := b.id(raw)
	if !ok {
		return "???poke:" + raw + "???"
	}
	return b.pokemonName(id)
}

func (b *Builder) pokemonFull(p *core.BattlingPokemon) string {
	species := p.Species.Name
	if p.ID.Name == "" || strings.EqualFold(species, p.ID.Name) {
		return species
	}
	return p.ID.Name + " (" + species + ")"
}

func (b *Builder) team(side core.Side) string {
	if side == core.Foe {
		return b.tpl("opposingTeam")
	}
	return b.tpl("team")
}

func (b *Builder) party(side core.Side) string {
	if side == core.Foe {
		return b.tpl("opposingParty")
	}
	return b.tpl("party")
}

func (b *Builder) ability(name, holder string) string {
	if name == "" {
		return ""
	}
	return fill(b.tpl("abilityActivation"), phPokemon, b.pokemon(holder), phAbility, effectName(name))
}

func (b *Builder) maybeAbility(effect, holder string) string {
	name, ok := strings.CutPrefix(effect, "ability:")
	if !ok {
		return ""
	}
	return b.ability(strings.TrimSpace(name), holder)
}

// sourceAbility renders the "[from] ability:" activation of of, or of holder.
func (b *Builder) sourceAbility(from, of, holder string) string {
	if of != "" {
		return line(b.maybeAbility(from, of))
	}
	return line(b.maybeAbility(from, holder))
}

func (b *Builder) stat(stat string) string {
	key := stat
	if key == "" {
		key = "stats"
	}
	if name := b.tplOf(key, "statName"); name != "" {
		return name
	}
	return "???stat:" + stat + "???"
}

func effectID(effect string) string {
	return util.ToID(effectName(effect))
}

// Turn announces a new turn.
func (b *Builder) Turn(n int) string {
	return line(fill(b.tpl("turn"), phNumber, strconv.Itoa(n)))
}

// Start announces the battle between two trainers.
func (b *Builder) Start(user1, user2 string) string {
	return line(fill(b.tpl("startBattle"), phTrainer, user1, phTrainer, user2))
}

// Win announces the winner.
func (b *Builder) Win(user string) string {
	return line(fill(b.tpl("winBattle"), phTrainer, user))
}

// Tie announces a tie.
func (b *Builder) Tie(user1, user2 string) string {
	return line(fill(b.tpl("tieBattle"), phTrainer, user1, phTrainer, user2))
}

// SwitchIn narrates p entering the field for trainer.
func (b *Builder) SwitchIn(p *core.BattlingPokemon, trainer string) string {
	return line(fill(b.tplOwn(defaultObject, "switchIn", !p.Foe()), phFullname, b.pokemonFull(p), phTrainer, trainer))
}

// Drag narrates p being forced in.
func (b *Builder) Drag(p *core.BattlingPokemon) string {
	return line(fill(b.tpl("drag"), phFullname, b.pokemonFull(p)))
}

// SwitchOut narrates p leaving the field. A nil p renders nothing.
func (b *Builder) SwitchOut(p *core.BattlingPokemon, trainer, from string) string {
	if p == nil {
		return ""
	}
	template := b.tplOwn(from, "switchOut", !p.Foe())
	return line(fill(template, phTrainer, trainer, phPokemon, b.pokemonName(p.ID), phNickname, p.ID.Name))
}

var formeChangeEffects = map[string]struct {
	effect string
	end    bool
}{
	"greninjaash":        {"battlebond", false},
	"mimikyubusted":      {"disguise", false},
	"zygardecomplete":    {"powerconstruct", false},
	"necrozmaultra":      {"ultranecroziumz", false},
	"darmanitanzen":      {"zenmode", false},
	"darmanitan":         {"zenmode", true},
	"darmanitangalarzen": {"zenmode", false},
	"darmanitangalar":    {"zenmode", true},
	"aegislashblade":     {"stancechange", false},
	"aegislash":          {"stancechange", true},
	"wishiwashischool":   {"schooling", false},
	"wishiwashi":         {"schooling", true},
	"miniormeteor":       {"shieldsdown", false},
	"minior":             {"shieldsdown", true},
	"eiscuenoice":        {"iceface", false},
	"eiscue":             {"iceface", true},
}

// PokemonChange narrates detailschange, -transform and -formechange.
func (b *Builder) PokemonChange(cmd, raw, arg2, arg3 string, kw Kwargs) string {
	var newSpecies string
	switch cmd {
	case "detailschange":
		newSpecies, _, _ = strings.Cut(arg2, ",")
		newSpecies = strings.TrimSpace(newSpecies)
	case "-transform":
		newSpecies = arg3
	case "-formechange":
		newSpecies = arg2
	}

	objectKey := ""
	templateName := "transform"
	if cmd != "-transform" {
		if fx, ok := formeChangeEffects[util.ToID(newSpecies)]; ok {
			objectKey = fx.effect
			if fx.end {
				templateName = "transformEnd"
			}
		}
	} else if newSpecies != "" {
		objectKey = "transform"
	}

	line1 := b.sourceAbility(kw.Get("from"), kw.Get("of"), raw)
	line2 := line(fill(b.tplOf(objectKey, templateName), phPokemon, b.pokemon(raw), phSpecies, newSpecies))
	return lines(line1, line2)
}

// Faint narrates a knock out.
func (b *Builder) Faint(raw string) string {
	return line(fill(b.tpl("faint"), phPokemon, b.pokemon(raw)))
}

// Swap narrates two pokemon trading places, or a move to the center when
// target is empty.
func (b *Builder) Swap(raw, target string) string {
	if target == "" {
		return b.SwapWith(raw, nil)
	}
	return line(fill(b.tpl("swap"), phPokemon, b.pokemon(raw), phTarget, b.pokemon(target)))
}

// SwapWith is Swap for an already resolved target.
func (b *Builder) SwapWith(raw string, target *core.PokemonID) string {
	if target == nil {
		return line(fill(b.tpl("swapCenter"), phPokemon, b.pokemon(raw)))
	}
	return line(fill(b.tpl("swap"), phPokemon, b.pokemon(raw), phTarget, b.pokemonName(*target)))
}

// Move narrates a move use.
func (b *Builder) Move(raw, move string, kw Kwargs) string {
	from := kw.Get("from")
	poke := b.pokemon(raw)
	line1 := b.sourceAbility(from, kw.Get("of"), raw)
	if kw.Has("zeffect") {
		line1 = line(fill(b.tpl("zEffect"), phPokemon, poke))
	}
	line2 := line(fill(b.tplOf(from, "move"), phPokemon, poke, phMove, move))
	return lines(line1, line2)
}

// Cant narrates a pokemon unable to act.
func (b *Builder) Cant(raw, effect, move string, kw Kwargs) string {
	template := b.tplOnly(effect, "cant")
	if template == "" {
		if move == "" {
			template = b.tpl("cantNoMove")
		} else {
			template = b.tpl("cant")
		}
	}
	line1 := b.sourceAbility(effect, kw.Get("of"), raw)
	line2 := line(fill(template, phPokemon, b.pokemon(raw), phMove, move))
	return lines(line1, line2)
}

// VolatileStart narrates -start.
func (b *Builder) VolatileStart(raw, effect, arg3 string, kw Kwargs) string {
	from, of := kw.Get("from"), kw.Get("of")
	line1 := line(b.maybeAbility(effect, raw))
	if line1 == "" {
		line1 = b.sourceAbility(from, of, raw)
	}

	id := effectID(effect)
	poke := b.pokemon(raw)
	switch {
	case id == "typechange":
		return lines(line1, line(fill(b.tplOf(from, "typeChange"), phPokemon, poke, phType, arg3, phSource, b.pokemon(of))))
	case id == "typeadd":
		return lines(line1, line(fill(b.tplOf(from, "typeAdd"), phPokemon, poke, phType, arg3)))
	case strings.HasPrefix(id, "stockpile"):
		return lines(line1, line(fill(b.tplOf("stockpile", "start"), phPokemon, poke, phNumber, id[len("stockpile"):])))
	case strings.HasPrefix(id, "perish"):
		return lines(line1, line(fill(b.tplOf("perishsong", "activate"), phPokemon, poke, phNumber, id[len("perish"):])))
	}

	templateID := "start"
	for _, flag := range []struct{ kw, id string }{
		{"already", "alreadyStarted"},
		{"fatigue", "startFromFatigue"},
		{"zeffect", "startFromZEffect"},
		{"damage", "activate"},
		{"block", "block"},
		{"upkeep", "upkeep"},
	} {
		if kw.Has(flag.kw) {
			templateID = flag.id
		}
	}
	if id == "reflect" || id == "lightscreen" {
		templateID = "startGen1"
	}
	if templateID == "start" && strings.HasPrefix(from, "item:") {
		templateID += "FromItem"
	}
	template := b.tplOf(effect, templateID)
	return lines(line1, line(fill(template,
		phPokemon, poke, phEffect, effectName(effect), phMove, arg3,
		phSource, b.pokemon(of), phItem, effectName(from))))
}

// VolatileEnd narrates -end.
func (b *Builder) VolatileEnd(raw, effect string, kw Kwargs) string {
	from, of := kw.Get("from"), kw.Get("of")
	line1 := line(b.maybeAbility(effect, raw))
	if line1 == "" {
		line1 = b.sourceAbility(from, of, raw)
	}
	id := effectID(effect)
	if id == "doomdesire" || id == "futuresight" {
		return lines(line1, line(fill(b.tplOf(effect, "activate"), phTarget, b.pokemon(raw))))
	}
	template := ""
	if strings.HasPrefix(from, "item:") {
		template = b.tplOf(effect, "endFromItem")
	}
	if template == "" {
		template = b.tplOf(effect, "end")
	}
	return lines(line1, line(fill(template, phPokemon, b.pokemon(raw), phEffect, effectName(effect), phSource, b.pokemon(of))))
}

// Ability narrates -ability.
func (b *Builder) Ability(raw, ability, oldAbility string, kw Kwargs) string {
	from, of := kw.Get("from"), kw.Get("of")
	if strings.HasPrefix(oldAbility, "p1") || strings.HasPrefix(oldAbility, "p2") || oldAbility == "boost" {
		oldAbility = ""
	}
	line1 := ""
	if oldAbility != "" {
		line1 = line(b.ability(oldAbility, raw))
	}
	line1 = lines(line1, line(b.ability(ability, raw)))

	if kw.Has("fail") {
		return lines(line1, line(b.tplOf(from, "block")))
	}
	if from != "" {
		line1 = lines(line(b.maybeAbility(from, raw)), line1)
		template := b.tplOf(from, "changeAbility")
		return lines(line1, line(fill(template, phPokemon, b.pokemon(raw), phAbility, effectName(ability), phSource, b.pokemon(of))))
	}
	id := effectID(ability)
	if id == "unnerve" {
		side := core.Trainer
		if pid, ok := b.id(raw); ok && !pid.Foe() {
			side = core.Foe
		}
		return lines(line1, line(fill(b.tplOf(ability, "start"), phTeam, b.team(side))))
	}
	templateID := "start"
	if id == "anticipation" || id == "sturdy" {
		templateID = "activate"
	}
	return lines(line1, line(fill(b.tplOnly(ability, templateID), phPokemon, b.pokemon(raw))))
}

// EndAbility narrates -endability.
func (b *Builder) EndAbility(raw, ability string, kw Kwargs) string {
	if ability != "" {
		return line(b.ability(ability, raw))
	}
	line1 := b.sourceAbility(kw.Get("from"), kw.Get("of"), raw)
	return lines(line1, line(fill(b.tplOf("Gastro Acid", "start"), phPokemon, b.pokemon(raw))))
}

// Item narrates -item.
func (b *Builder) Item(raw, item string, kw Kwargs) string {
	from, of := kw.Get("from"), kw.Get("of")
	id := effectID(from)
	target := ""
	if id == "magician" || id == "pickpocket" {
		target, of = of, ""
	}
	line1 := b.sourceAbility(from, of, raw)
	switch id {
	case "thief", "covet", "bestow", "magician", "pickpocket":
		source := target
		if source == "" {
			source = of
		}
		return lines(line1, line(fill(b.tplOf(from, "takeItem"),
			phPokemon, b.pokemon(raw), phItem, effectName(item), phSource, b.pokemon(source))))
	case "frisk":
		key := "activateNoTarget"
		if of != "" && raw != "" && b.pokemon(of) != b.pokemon(raw) {
			key = "activate"
		}
		return lines(line1, line(fill(b.tplOf("Frisk", key),
			phPokemon, b.pokemon(of), phItem, effectName(item), phTarget, b.pokemon(raw))))
	}
	if from != "" {
		return lines(line1, line(fill(b.tplOf(from, "addItem"), phPokemon, b.pokemon(raw), phItem, effectName(item))))
	}
	return lines(line1, line(fill(b.tplOnly(item, "start"), phPokemon, b.pokemon(raw))))
}

// EndItem narrates -enditem.
func (b *Builder) EndItem(raw, item string, kw Kwargs) string {
	from, of := kw.Get("from"), kw.Get("of")
	line1 := b.sourceAbility(from, of, raw)
	poke := b.pokemon(raw)
	if kw.Has("eat") {
		return lines(line1, line(fill(b.tplOf(from, "eatItem"), phPokemon, poke, phItem, effectName(item))))
	}
	switch effectID(from) {
	case "gem":
		return lines(line1, line(fill(b.tplOf(item, "useGem"), phPokemon, poke, phItem, effectName(item), phMove, kw.Get("move"))))
	case "stealeat":
		return lines(line1, line(fill(b.tplOf("Bug Bite", "removeItem"), phSource, b.pokemon(of), phItem, effectName(item))))
	}
	if from != "" {
		return lines(line1, line(fill(b.tplOf(from, "removeItem"), phPokemon, poke, phItem, effectName(item), phSource, b.pokemon(of))))
	}
	if kw.Has("weaken") {
		return lines(line1, line(fill(b.tpl("activateWeaken"), phPokemon, poke, phItem, effectName(item))))
	}
	template := b.tplOnly(item, "end")
	if template == "" {
		template = fill(b.tpl("activateItem"), phItem, effectName(item))
	}
	return lines(line1, line(fill(template, phPokemon, poke, phTarget, b.pokemon(of))))
}

// Status narrates -status.
func (b *Builder) Status(raw, status string, kw Kwargs) string {
	from := kw.Get("from")
	line1 := b.sourceAbility(from, kw.Get("of"), raw)
	key := "start"
	if effectID(from) == "rest" {
		key = "startFromRest"
	}
	return lines(line1, line(fill(b.tplOf(status, key), phPokemon, b.pokemon(raw))))
}

// CureStatus narrates -curestatus.
func (b *Builder) CureStatus(raw, status string, kw Kwargs) string {
	from := kw.Get("from")
	if effectID(from) == "naturalcure" {
		return line(fill(b.tplOf(from, "activate"), phPokemon, b.pokemon(raw)))
	}
	line1 := b.sourceAbility(from, kw.Get("of"), raw)
	poke := b.pokemon(raw)
	if strings.HasPrefix(from, "item:") {
		return lines(line1, line(fill(b.tplOf(status, "endFromItem"), phPokemon, poke, phItem, effectName(from))))
	}
	if kw.Has("thaw") {
		return lines(line1, line(fill(b.tplOf(status, "endFromMove"), phPokemon, poke, phMove, effectName(from))))
	}
	template := b.tplOnly(status, "end")
	if template == "" {
		template = fill(b.tpl("end"), phEffect, status)
	}
	return lines(line1, line(fill(template, phPokemon, poke)))
}

// CureTeam narrates -cureteam.
func (b *Builder) CureTeam(kw Kwargs) string {
	return line(b.tplOf(kw.Get("from"), "activate"))
}

// Single narrates -singleturn and -singlemove.
func (b *Builder) Single(raw, effect string, kw Kwargs) string {
	from, of := kw.Get("from"), kw.Get("of")
	line1 := b.sourceAbility(effect, of, raw)
	if line1 == "" {
		line1 = b.sourceAbility(from, of, raw)
	}
	if effectID(effect) == "instruct" {
		return lines(line1, line(fill(b.tplOf(effect, "activate"), phPokemon, b.pokemon(of), phTarget, b.pokemon(raw))))
	}
	template := b.tplOnly(effect, "start")
	if template == "" {
		template = fill(b.tpl("start"), phEffect, effectName(effect))
	}
	team := ""
	if id, ok := b.id(raw); ok {
		team = b.team(id.Side)
	}
	return lines(line1, line(fill(template, phPokemon, b.pokemon(raw), phSource, b.pokemon(of), phTeam, team)))
}

// SideStart narrates a side condition starting.
func (b *Builder) SideStart(side core.Side, effect string) string {
	template := b.tplOnly(effect, "start")
	if template == "" {
		template = fill(b.tpl("startTeamEffect"), phEffect, effectName(effect))
	}
	return line(fill(template, phTeam, b.team(side), phParty, b.party(side)))
}

// SideEnd narrates a side condition ending.
func (b *Builder) SideEnd(side core.Side, effect string) string {
	template := b.tplOnly(effect, "end")
	if template == "" {
		template = fill(b.tpl("endTeamEffect"), phEffect, effectName(effect))
	}
	return line(fill(template, phTeam, b.team(side), phParty, b.party(side)))
}

// Weather narrates -weather. previous is the weather being replaced.
func (b *Builder) Weather(weather, previous string, kw Kwargs) string {
	from := kw.Get("from")
	if weather == "" || weather == core.WeatherNone {
		template := b.tplOnly(previous, "end")
		if template == "" {
			return line(fill(b.tpl("endFieldEffect"), phEffect, effectName(previous)))
		}
		return line(template)
	}
	if kw.Has("upkeep") {
		return line(b.tplOnly(weather, "upkeep"))
	}
	line1 := line(b.maybeAbility(from, kw.Get("of")))
	template := b.tplOnly(weather, "start")
	if template == "" {
		template = fill(b.tpl("startFieldEffect"), phEffect, effectName(weather))
	}
	return lines(line1, line(template))
}

// Field narrates -fieldstart and -fieldactivate.
func (b *Builder) Field(cmd, effect string, kw Kwargs) string {
	of := kw.Get("of")
	line1 := line(b.maybeAbility(kw.Get("from"), of))
	templateID := strings.TrimPrefix(cmd, "-field")
	if effectID(effect) == "perishsong" {
		templateID = "start"
	}
	template := b.tplOnly(effect, templateID)
	if template == "" {
		template = fill(b.tpl("startFieldEffect"), phEffect, effectName(effect))
	}
	return lines(line1, line(fill(template, phPokemon, b.pokemon(of))))
}

// FieldEnd narrates -fieldend.
func (b *Builder) FieldEnd(effect string) string {
	template := b.tplOnly(effect, "end")
	if template == "" {
		template = fill(b.tpl("endFieldEffect"), phEffect, effectName(effect))
	}
	return line(template)
}

// SetHP narrates -sethp.
func (b *Builder) SetHP(kw Kwargs) string {
	return line(b.tplOf(kw.Get("from"), "activate"))
}

var activateRetarget = map[string]bool{
	"hyperspacefury": true, "hyperspacehole": true, "phantomforce": true, "shadowforce": true, "feint": true,
}

// Activate narrates -activate.
func (b *Builder) Activate(raw, effect, target string, kw Kwargs) string {
	of := kw.Get("of")
	id := effectID(effect)
	if id == "celebrate" {
		side := core.Trainer
		if pid, ok := b.id(raw); ok {
			side = pid.Side
		}
		return line(fill(b.tplOf("celebrate", "activate"), phTrainer, b.team(side)))
	}

	poke := raw
	if target != "" && activateRetarget[id] && of != "" {
		poke, target = of, of
	}
	if target != "" {
		if of != "" {
			target = of
		} else {
			target = poke
		}
	}

	line1 := line(b.maybeAbility(effect, poke))
	if id == "lockon" || id == "mindreader" {
		return lines(line1, line(fill(b.tplOf(effect, "start"), phPokemon, b.pokemon(of), phSource, b.pokemon(poke))))
	}
	if id == "mummy" {
		line1 = lines(line1, line(b.ability(kw.Get("ability"), target)), line(b.ability("Mummy", target)))
		return lines(line1, line(fill(b.tplOf("mummy", "changeAbility"), phTarget, b.pokemon(target))))
	}

	templateID := "activate"
	if id == "forewarn" && poke == target {
		templateID = "activateNoTarget"
	}
	template := b.tplOnly(effect, templateID)
	if template == "" {
		if line1 != "" {
			return line1
		}
		return line(fill(b.tpl("activate"), phEffect, effectName(effect)))
	}
	if id == "brickbreak" {
		if tid, ok := b.id(target); ok {
			template = fill(template, phTeam, b.team(tid.Side))
		}
	}
	if a := kw.Get("ability"); a != "" {
		line1 = lines(line1, line(b.ability(a, poke)))
	}
	if a := kw.Get("ability2"); a != "" {
		line1 = lines(line1, line(b.ability(a, target)))
	}
	template = fill(template, phMove, kw.Get("move"), phNumber, kw.Get("number"), phItem, kw.Get("item"), phName, kw.Get("name"))
	return lines(line1, line(fill(template, phPokemon, b.pokemon(poke), phTarget, b.pokemon(target), phSource, b.pokemon(of))))
}

// Prepare narrates a charging move.
func (b *Builder) Prepare(raw, effect, target string) string {
	return line(fill(b.tplOf(effect, "prepare"), phPokemon, b.pokemon(raw), phTarget, b.pokemon(target)))
}

// Damage narrates -damage. percentage may be empty.
func (b *Builder) Damage(raw, percentage string, kw Kwargs) string {
	from, of := kw.Get("from"), kw.Get("of")
	line1 := b.sourceAbility(from, of, raw)
	poke := b.pokemon(raw)
	if template := b.tplOnly(from, "damage"); template != "" {
		return lines(line1, line(fill(template, phPokemon, poke)))
	}
	if from == "" {
		key := "damage"
		if percentage != "" {
			key = "damagePercentage"
		}
		return lines(line1, line(fill(b.tpl(key), phPokemon, poke, phPercentage, percentage)))
	}
	if strings.HasPrefix(from, "item:") {
		key := "damageFromItem"
		if of != "" {
			key = "damageFromPokemon"
		}
		return lines(line1, line(fill(b.tpl(key), phPokemon, poke, phItem, effectName(from), phSource, b.pokemon(of))))
	}
	if id := effectID(from); kw.Has("partiallytrapped") || id == "bind" || id == "wrap" {
		return lines(line1, line(fill(b.tpl("damageFromPartialTrapping"), phPokemon, poke, phMove, effectName(from))))
	}
	return lines(line1, line(fill(b.tpl("damage"), phPokemon, poke)))
}

// Heal narrates -heal.
func (b *Builder) Heal(raw string, kw Kwargs) string {
	from := kw.Get("from")
	line1 := line(b.maybeAbility(from, raw))
	poke := b.pokemon(raw)
	if template := b.tplOnly(from, "heal"); template != "" {
		return lines(line1, line(fill(template, phPokemon, poke, phSource, b.pokemon(kw.Get("of")), phNickname, kw.Get("wisher"))))
	}
	if from != "" && !strings.HasPrefix(from, "ability:") {
		return lines(line1, line(fill(b.tpl("healFromEffect"), phPokemon, poke, phEffect, effectName(from))))
	}
	return lines(line1, line(fill(b.tpl("heal"), phPokemon, poke)))
}

// Boost narrates -boost and -unboost.
func (b *Builder) Boost(cmd, raw, stat, num string, kw Kwargs) string {
	from := kw.Get("from")
	line1 := b.sourceAbility(from, kw.Get("of"), raw)
	amount, err := strconv.Atoi(num)
	if err != nil {
		amount = -1
	}
	templateID := strings.TrimPrefix(cmd, "-")
	switch {
	case amount >= 3:
		templateID += "3"
	case amount >= 2:
		templateID += "2"
	case amount == 0:
		templateID += "0"
	}
	if amount != -1 && kw.Has("zeffect") {
		if kw.Has("multiple") {
			templateID += "MultipleFromZEffect"
		} else {
			templateID += "FromZEffect"
		}
	} else if amount != -1 && strings.HasPrefix(from, "item:") {
		template := b.tplOf(from, templateID+"FromItem")
		return lines(line1, line(fill(template, phPokemon, b.pokemon(raw), phStat, b.stat(stat), phItem, effectName(from))))
	}
	return lines(line1, line(fill(b.tplOf(from, templateID), phPokemon, b.pokemon(raw), phStat, b.stat(stat))))
}

// SetBoost narrates -setboost.
func (b *Builder) SetBoost(raw string, kw Kwargs) string {
	from := kw.Get("from")
	line1 := b.sourceAbility(from, kw.Get("of"), raw)
	return lines(line1, line(fill(b.tplOf(from, "boost"), phPokemon, b.pokemon(raw))))
}

// ClearBoost narrates -clearboost and its positive/negative variants.
func (b *Builder) ClearBoost(raw, source string, kw Kwargs) string {
	from := kw.Get("from")
	line1 := b.sourceAbility(from, kw.Get("of"), raw)
	key := "clearBoost"
	if kw.Has("zeffect") {
		key = "clearBoostFromZEffect"
	}
	return lines(line1, line(fill(b.tplOf(from, key), phPokemon, b.pokemon(raw), phSource, b.pokemon(source))))
}

// InvertBoost narrates -invertboost.
func (b *Builder) InvertBoost(raw string, kw Kwargs) string {
	from := kw.Get("from")
	line1 := b.sourceAbility(from, kw.Get("of"), raw)
	return lines(line1, line(fill(b.tplOf(from, "invertBoost"), phPokemon, b.pokemon(raw))))
}

// ClearAllBoost narrates -clearallboost.
func (b *Builder) ClearAllBoost() string {
	return line(b.tpl("clearAllBoost"))
}

// MoveEffect narrates -crit, -resisted and -supereffective.
func (b *Builder) MoveEffect(cmd, raw string, kw Kwargs) string {
	templateID := strings.TrimPrefix(cmd, "-")
	if templateID == "supereffective" {
		templateID = "superEffective"
	}
	if kw.Has("spread") {
		templateID += "Spread"
	}
	return line(fill(b.tpl(templateID), phPokemon, b.pokemon(raw)))
}

// Block narrates -block.
func (b *Builder) Block(raw, effect, move, attacker string, kw Kwargs) string {
	from, of := kw.Get("from"), kw.Get("of")
	line1 := b.sourceAbility(from, of, raw)
	source := attacker
	if source == "" {
		source = of
	}
	return lines(line1, line(fill(b.tplOf(effect, "block"), phPokemon, b.pokemon(raw), phSource, b.pokemon(source), phMove, move)))
}

// Fail narrates -fail.
func (b *Builder) Fail(raw, effect, stat string, kw Kwargs) string {
	from, of := kw.Get("from"), kw.Get("of")
	id := effectID(effect)
	blocker := effectID(from)
	line1 := b.sourceAbility(from, of, raw)

	templateID := "block"
	switch {
	case (blocker == "desolateland" || blocker == "primordialsea") &&
		id != "sunnyday" && id != "raindance" && id != "sandstorm" && id != "hail":
		templateID = "blockMove"
	case blocker == "uproar" && kw.Has("msg"):
		templateID = "blockSelf"
	}
	if template := b.tplOnly(from, templateID); template != "" {
		return lines(line1, line(fill(template, phPokemon, b.pokemon(raw))))
	}

	if id == "unboost" {
		key := "fail"
		if stat != "" {
			key = "failSingular"
		}
		return lines(line1, line(fill(b.tplOf("unboost", key), phPokemon, b.pokemon(raw), phStat, stat)))
	}

	templateID = "fail"
	switch id {
	case "brn", "frz", "par", "psn", "slp", "substitute":
		templateID = "alreadyStarted"
	}
	if kw.Has("heavy") {
		templateID = "failTooHeavy"
	}
	if kw.Has("weak") {
		templateID = "fail"
	}
	if kw.Has("forme") {
		templateID = "failWrongForme"
	}
	return lines(line1, line(fill(b.tplOf(id, templateID), phPokemon, b.pokemon(raw))))
}

// Immune narrates -immune.
func (b *Builder) Immune(raw string, kw Kwargs) string {
	from := kw.Get("from")
	line1 := b.sourceAbility(from, kw.Get("of"), raw)
	template := b.tplOnly(from, "block")
	if template == "" {
		key := "immune"
		if kw.Has("ohko") {
			key = "immuneOHKO"
		}
		if raw == "" {
			key = "immuneNoPokemon"
		}
		template = b.tplOf(from, key)
	}
	return lines(line1, line(fill(template, phPokemon, b.pokemon(raw))))
}

// Miss narrates -miss. target may be empty.
func (b *Builder) Miss(source, target string, kw Kwargs) string {
	line1 := b.sourceAbility(kw.Get("from"), kw.Get("of"), target)
	if target == "" {
		return lines(line1, line(fill(b.tpl("missNoPokemon"), phSource, b.pokemon(source))))
	}
	return lines(line1, line(fill(b.tpl("miss"), phPokemon, b.pokemon(target))))
}

// Center narrates -center.
func (b *Builder) Center() string { return line(b.tpl("center")) }

// OHKO narrates -ohko.
func (b *Builder) OHKO() string { return line(b.tpl("ohko")) }

// Combine narrates -combine.
func (b *Builder) Combine() string { return line(b.tpl("combine")) }

// NoTarget narrates -notarget.
func (b *Builder) NoTarget() string { return line(b.tpl("noTarget")) }

// Mega narrates -mega and -primal.
func (b *Builder) Mega(raw, species, item string, primal bool) string {
	objectKey := ""
	templateID := "mega"
	if primal {
		templateID = "primal"
	}
	if species == "Rayquaza" {
		objectKey, templateID = "dragonascent", "megaNoItem"
	}
	if item == "" && !primal {
		templateID = "megaNoItem"
	}
	trainer := ""
	if id, ok := b.id(raw); ok {
		trainer = b.team(id.Side)
	}
	poke := b.pokemon(raw)
	line1 := line(fill(b.tplOf(objectKey, templateID), phPokemon, poke, phItem, item, phTrainer, trainer))
	if primal {
		return line1
	}
	return lines(line1, line(fill(b.tpl("transformMega"), phPokemon, poke, phSpecies, species)))
}

// ZPower narrates -zpower.
func (b *Builder) ZPower(raw string) string {
	return line(fill(b.tpl("zPower"), phPokemon, b.pokemon(raw)))
}

// ZBroken narrates -zbroken.
func (b *Builder) ZBroken(raw string) string {
	return line(fill(b.tpl("zBroken"), phPokemon, b.pokemon(raw)))
}

// HitCount narrates -hitcount.
func (b *Builder) HitCount(num string) string {
	if num == "1" {
		return line(b.tpl("hitCountSingular"))
	}
	return line(fill(b.tpl("hitCount"), phNumber, num))
}
