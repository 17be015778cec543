package battle

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/psbattle/engine/internal/codec"
	"github.com/psbattle/engine/internal/dispatcher"
	"github.com/psbattle/engine/internal/parser"
	"github.com/psbattle/engine/internal/queue"
	"github.com/psbattle/engine/internal/util"
	"github.com/psbattle/engine/pkg/core"
)

const timeLeftPrefix = "Time left:"

// |player|p1|USERNAME|AVATAR|RATING
func (o *Observer) handlePlayer(e dispatcher.Event) error {
	m := e.Message
	slot, err := m.Next()
	if err != nil {
		return err
	}
	name, ok := m.NextOpt()
	if !ok {
		return nil
	}

	s := o.session
	if strings.Contains(slot, "1") {
		s.Players.P1 = name
	} else {
		s.Players.P2 = name
	}

	if s.Players.Known() {
		players := s.Players
		o.queue.Enqueue(queue.Immediate, func() {
			o.presenter.PlayerInit(players.Username(core.Trainer), players.Username(core.Foe))
		})
	}
	return nil
}

// |teamsize|p1|6
func (o *Observer) handleTeamSize(e dispatcher.Event) error {
	m := e.Message
	raw, err := m.Next()
	if err != nil {
		return err
	}
	countRaw, err := m.Next()
	if err != nil {
		return err
	}
	count, err := strconv.Atoi(countRaw)
	if err != nil {
		return fmt.Errorf("error converting team size %q: %w", countRaw, err)
	}

	side := o.session.Players.SideOf(raw)
	o.queue.Enqueue(queue.Immediate, func() { o.presenter.TeamSize(side, count) })
	return nil
}

// |gametype|doubles
func (o *Observer) handleGameType(e dispatcher.Event) error {
	raw, err := e.Message.Next()
	if err != nil {
		return err
	}
	s := o.session
	g := core.ParseGameType(raw)
	s.GameType = g
	if s.lastRequest != nil {
		s.lastRequest.GameType = g
	}
	o.queue.Enqueue(queue.Immediate, func() { s.resize(g) })
	return nil
}

// |gen|8
func (o *Observer) handleGen(e dispatcher.Event) error {
	raw, err := e.Message.Next()
	if err != nil {
		return err
	}
	gen, err := strconv.Atoi(raw)
	if err != nil {
		return fmt.Errorf("error converting gen %q: %w", raw, err)
	}
	o.session.Gen = gen
	return nil
}

func (o *Observer) handleTier(e dispatcher.Event) error {
	tier := e.Message.Rest()
	o.session.Format = tier
	o.print(tier)
	return nil
}

func (o *Observer) handleRated(e dispatcher.Event) error {
	o.session.Rated = true
	o.print(e.Message.NextOr("Rated battle"))
	return nil
}

func (o *Observer) handleRule(e dispatcher.Event) error {
	o.print(e.Message.Rest())
	return nil
}

func (o *Observer) handleClearPoke(e dispatcher.Event) error {
	o.session.previewIndexes = [2]int{}
	o.queue.Enqueue(queue.Immediate, o.presenter.PreviewStarted)
	return nil
}

// |poke|p1|Zoroark, M|item
func (o *Observer) handlePoke(e dispatcher.Event) error {
	m := e.Message
	raw, err := m.Next()
	if err != nil {
		return err
	}
	details, err := m.Next()
	if err != nil {
		return err
	}
	_, hasItem := m.NextOpt()

	s := o.session
	side := s.Players.SideOf(raw)
	index := s.previewIndexes[side.Index()]
	s.previewIndexes[side.Index()]++

	species, _, _ := strings.Cut(details, ",")
	id := core.SlotID(side, index)
	sp := core.NewSpecies(strings.TrimSpace(species))
	o.queue.Enqueue(queue.Immediate, func() { o.presenter.PreviewAdd(id, sp, hasItem) })
	return nil
}

// handleTeamPreview schedules an empty unit so that a request received
// before any other unit still reaches the presenter once the queue drains.
func (o *Observer) handleTeamPreview(e dispatcher.Event) error {
	o.queue.Enqueue(queue.Immediate, func() {})
	return nil
}

func (o *Observer) handleStart(e dispatcher.Event) error {
	s := o.session
	s.state = StateRunning
	s.startedAt = e.Timestamp
	text := o.text.Start(s.Players.P1, s.Players.P2)

	o.logger.Info().Str("room", s.RoomID).Str("p1", s.Players.P1).Str("p2", s.Players.P2).Msg("battle started")
	o.queue.Enqueue(queue.Immediate, func() {
		o.presenter.BattleStarted(s.Info())
		o.say(text)
	})
	return nil
}

// |turn|NUMBER
func (o *Observer) handleTurn(e dispatcher.Event) error {
	raw, err := e.Message.Next()
	if err != nil {
		return err
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fmt.Errorf("error converting turn %q: %w", raw, err)
	}

	s := o.session
	text := o.text.Turn(n)
	o.queue.Enqueue(queue.Turn, func() {
		s.Turn = n
		o.say(text)
		o.presenter.TurnStarted(s.TurnRecord(time.Now()))
	})
	return nil
}

// |move|p2a: Pinsir|Close Combat|p1a: Latias|[miss]
func (o *Observer) handleMove(e dispatcher.Event) error {
	m := e.Message
	source, raw, err := o.nextID(m)
	if err != nil {
		return err
	}
	move, err := m.Next()
	if err != nil {
		return err
	}
	var target *core.PokemonID
	if rawTarget, ok := m.NextOpt(); ok {
		if id, err := o.resolve(rawTarget); err == nil {
			target = &id
		}
	}

	// a still, notarget or missed move has no hit to show
	shouldAnim := !(m.HasKwarg("still") || m.HasKwarg("notarget") || m.HasKwarg("miss"))
	text := o.text.Move(raw, move, kwargs(m))

	s := o.session
	o.queue.Enqueue(queue.Minor, func() {
		if p := s.Pokemon(source); p != nil {
			p.LastMove = move
		}
		o.presenter.Move(source, target, move, shouldAnim)
		o.say(text)
	})
	return nil
}

func isBatonPass(move string) bool {
	id := util.ToID(move)
	return id == "batonpass" || id == "zbatonpass"
}

// |switch|p1a: Pikachu|Pikachu, L50, M|150/150
func (o *Observer) handleSwitch(e dispatcher.Event) error {
	m := e.Message
	s := o.session
	p, err := parser.ParseSwitch(s.Players, m.Rest())
	if err != nil {
		return err
	}

	trainer := s.Players.Username(p.ID.Side)
	from := m.KwargOr("from")
	in := o.text.SwitchIn(p, trainer)

	o.queue.Enqueue(queue.Major, func() {
		prev := s.Pokemon(p.ID)
		if p.ID.InBattle() {
			if prev != nil && isBatonPass(prev.LastMove) {
				p.CopyVolatiles(prev, false)
			}
			s.place(p)
		}
		o.presenter.Switch(p)
		if prev != nil && prev != p && (prev.Condition == nil || !prev.Condition.Fainted()) {
			o.say(o.text.SwitchOut(prev, trainer, from))
		}
		o.say(in)
	})
	return nil
}

// |drag|p1a: Pikachu|Pikachu, L50, M|150/150
func (o *Observer) handleDrag(e dispatcher.Event) error {
	s := o.session
	p, err := parser.ParseSwitch(s.Players, e.Message.Rest())
	if err != nil {
		return err
	}

	text := o.text.Drag(p)
	o.queue.Enqueue(queue.Major, func() {
		s.place(p)
		o.presenter.Switch(p)
		o.say(text)
	})
	return nil
}

// |detailschange|p1a: Aerodactyl|Aerodactyl-Mega, M
func (o *Observer) handleDetailsChange(e dispatcher.Event) error {
	m := e.Message
	s := o.session
	p, err := parser.ParseSwitch(s.Players, m.Rest())
	if err != nil {
		return err
	}
	m.Rewind()
	raw, _ := m.Next()
	arg2, arg3 := m.NextOr(""), m.NextOr("")
	text := o.text.PokemonChange(m.Name, raw, arg2, arg3, kwargs(m))

	o.queue.Enqueue(queue.Immediate, func() {
		if cur := s.Pokemon(p.ID); cur != nil {
			cur.Species = p.Species
			p = cur
		}
		o.presenter.DetailsChanged(p)
		o.say(text)
	})
	return nil
}

// |replace|p1a: Zoroark|Zoroark, M|50/100 : an illusion broke, the
// disguised pokemon keeps every volatile of the one it impersonated
func (o *Observer) handleReplace(e dispatcher.Event) error {
	s := o.session
	p, err := parser.ParseSwitch(s.Players, e.Message.Rest())
	if err != nil {
		return err
	}

	o.queue.Enqueue(queue.Immediate, func() {
		prev := s.Pokemon(p.ID)
		if p.Condition == nil && prev != nil {
			p.Condition = prev.Condition
		}
		p.CopyVolatiles(prev, true)
		s.place(p)
		o.presenter.DetailsChanged(p)
	})
	return nil
}

// |faint|p1a: Pikachu : the condition was zeroed by the preceding damage
func (o *Observer) handleFaint(e dispatcher.Event) error {
	id, raw, err := o.nextID(e.Message)
	if err != nil {
		return err
	}
	text := o.text.Faint(raw)
	o.queue.Enqueue(queue.Major, func() {
		o.presenter.Faint(id)
		o.say(text)
	})
	return nil
}

// |cant|POKEMON|REASON|MOVE
func (o *Observer) handleCant(e dispatcher.Event) error {
	m := e.Message
	_, raw, err := o.nextID(m)
	if err != nil {
		return err
	}
	reason := m.NextOr("")
	move := m.NextOr("")
	text := o.text.Cant(raw, reason, move, kwargs(m))
	o.queue.Enqueue(queue.Major, func() { o.say(text) })
	return nil
}

// |swap|p2a: Dugtrio|1|[from] move: Ally Switch
func (o *Observer) handleSwap(e dispatcher.Event) error {
	m := e.Message
	source, raw, err := o.nextID(m)
	if err != nil {
		return err
	}
	with := m.NextOr("-1")

	s := o.session
	o.queue.Enqueue(queue.Major, func() {
		from := s.indexOf(source)
		to, err := strconv.Atoi(with)
		if err != nil {
			other, err := o.resolve(with)
			if err != nil {
				return
			}
			to = s.indexOf(other)
		}
		if to == from || to < 0 || from < 0 {
			return
		}

		var target *core.PokemonID
		if p := s.at(source.Side, to); p != nil {
			target = &p.ID
		}
		text := o.text.SwapWith(raw, target)
		if !s.swap(source.Side, from, to) {
			return
		}
		o.presenter.Swap(source, to)
		o.say(text)
	})
	return nil
}

// |request|JSON
func (o *Observer) handleRequest(e dispatcher.Event) error {
	raw := e.Message.Rest()
	if raw == "" {
		return nil
	}

	s := o.session
	req, err := codec.DecodeRequest([]byte(raw), s.GameType)
	if err != nil {
		return fmt.Errorf("error receiving choices: %w", err)
	}

	s.lastRequest = req
	o.tracker.Observe(req)

	if req.Wait {
		o.queue.SetLastAction(nil)
		return nil
	}
	o.queue.SetLastAction(func() { o.presenter.RequestAsked(req) })
	if o.queue.Len() == 0 {
		// nothing left to drain, so fire the hook right away
		o.queue.Enqueue(queue.Immediate, func() {})
	}
	return nil
}

// |inactive|MESSAGE and |inactiveoff|MESSAGE
func (o *Observer) handleInactive(e dispatcher.Event) error {
	on := e.Command == parser.CmdInactive
	text := e.Message.NextOr("")
	o.queue.Enqueue(queue.Immediate, func() {
		o.presenter.TimerEnabled(on)
		if !strings.HasPrefix(text, timeLeftPrefix) {
			o.say(text)
		}
	})
	return nil
}

// |win|USER and |tie|
func (o *Observer) handleWin(e dispatcher.Event) error {
	s := o.session
	winner := e.Message.NextOr("")

	var text string
	if e.Command == parser.CmdTie {
		text = o.text.Tie(s.Players.P1, s.Players.P2)
	} else {
		text = o.text.Win(winner)
	}

	o.queue.Enqueue(queue.Immediate, func() {
		s.state = StateEnded
		o.logger.Info().Str("room", s.RoomID).Str("winner", winner).Msg("battle ended")
		o.say(text)
		o.presenter.BattleEnded(winner)
		o.queue.SetLastAction(nil)
	})
	return nil
}
