package storage

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/psbattle/engine/internal/battle"
	"github.com/psbattle/engine/pkg/core"
)

// Recorder is a battle.Presenter that writes the paced battle to a Backend,
// from BattleStarted to BattleEnded. Like every presenter it is only called
// from the queue consumer goroutine. It also serves as the observer's
// decision journal.
type Recorder struct {
	battle.NopPresenter

	backend Backend
	logger  zerolog.Logger
	now     func() time.Time

	active bool
	room   string
	turn   int
	seq    int
}

var (
	_ battle.Presenter = (*Recorder)(nil)
	_ battle.Journal   = (*Recorder)(nil)
)

// NewRecorder creates a recorder writing to backend.
func NewRecorder(backend Backend, logger zerolog.Logger) *Recorder {
	return &Recorder{
		backend: backend,
		logger:  logger.With().Str("component", "recorder").Logger(),
		now:     time.Now,
	}
}

// Active reports whether a battle is being recorded.
func (r *Recorder) Active() bool {
	return r.active
}

func (r *Recorder) BattleStarted(info core.BattleInfo) {
	if r.active {
		r.end("")
	}
	if info.StartedAt.IsZero() {
		info.StartedAt = r.now()
	}
	if err := r.backend.StartBattle(&info); err != nil {
		r.logger.Error().Err(err).Str("room", info.RoomID).Msg("Failed to start battle recording")
		return
	}
	r.active = true
	r.room = info.RoomID
	r.turn = 0
	r.seq = 0
}

func (r *Recorder) BattleEnded(winner string) {
	if r.active {
		r.end(winner)
	}
}

// RoomDeInit closes a battle left without a result.
func (r *Recorder) RoomDeInit(string) {
	if r.active {
		r.end("")
	}
}

func (r *Recorder) end(winner string) {
	r.active = false
	if err := r.backend.EndBattle(winner); err != nil {
		r.logger.Error().Err(err).Str("room", r.room).Msg("Failed to end battle recording")
	}
}

func (r *Recorder) TurnStarted(rec core.TurnRecord) {
	if !r.active {
		return
	}
	r.turn = rec.Turn
	r.check("turn", r.backend.RecordTurn(&rec))
}

func (r *Recorder) PrintText(text string) {
	r.line(core.LineText, text)
}

func (r *Recorder) PrintHTML(html string) {
	r.line(core.LineHTML, html)
}

func (r *Recorder) line(kind core.LineKind, text string) {
	if !r.active {
		return
	}
	r.seq++
	r.check("line", r.backend.RecordLine(&core.LogLine{
		RoomID: r.room,
		Seq:    r.seq,
		Turn:   r.turn,
		Time:   r.now(),
		Kind:   kind,
		Text:   text,
	}))
}

func (r *Recorder) Switch(p *core.BattlingPokemon) {
	detail := map[string]any{"species": p.Species.Name}
	if p.Condition != nil {
		detail["hp"], detail["maxhp"], detail["status"] = p.Condition.HP, p.Condition.MaxHP, p.Condition.Status
	}
	r.event("switch", p.ID.String(), detail)
}

func (r *Recorder) DetailsChanged(p *core.BattlingPokemon) {
	r.event("details", p.ID.String(), map[string]any{"sprite": p.SpriteID()})
}

func (r *Recorder) Move(source core.PokemonID, target *core.PokemonID, move string, _ bool) {
	detail := map[string]any{"move": move}
	if target != nil {
		detail["target"] = target.String()
	}
	r.event("move", source.String(), detail)
}

func (r *Recorder) Swap(id core.PokemonID, targetIndex int) {
	r.event("swap", id.String(), map[string]any{"to": targetIndex})
}

func (r *Recorder) Faint(id core.PokemonID) {
	r.event("faint", id.String(), nil)
}

func (r *Recorder) StatusChanged(id core.PokemonID, status string) {
	r.event("status", id.String(), map[string]any{"status": status})
}

func (r *Recorder) SideChanged(side core.Side, effect string, start bool) {
	r.event("side", side.String(), map[string]any{"effect": effect, "start": start})
}

func (r *Recorder) FieldEffectChanged(effect string) {
	r.event("field", "", map[string]any{"effect": effect})
}

func (r *Recorder) BattleToast(id core.PokemonID, text string, kind battle.ToastKind) {
	r.event("toast", id.String(), map[string]any{"text": text, "kind": kind.String()})
}

func (r *Recorder) event(typ, subject string, detail map[string]any) {
	if !r.active {
		return
	}
	r.check("event", r.backend.RecordEvent(&core.BattleEvent{
		RoomID:  r.room,
		Turn:    r.turn,
		Time:    r.now(),
		Type:    typ,
		Subject: subject,
		Detail:  detail,
	}))
}

// RecordDecision implements battle.Journal. Decisions outside of a recorded
// battle are dropped.
func (r *Recorder) RecordDecision(d *core.DecisionRecord) error {
	if !r.active {
		return nil
	}
	return r.backend.RecordDecision(d)
}

func (r *Recorder) check(what string, err error) {
	if err != nil {
		r.logger.Warn().Err(err).Str("room", r.room).Str("record", what).Msg("Failed to record")
	}
}
