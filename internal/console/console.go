// Package console renders the battle as plain text lines.
package console

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/psbattle/engine/internal/battle"
	"github.com/psbattle/engine/pkg/core"
)

// Options selects the optional output.
type Options struct {
	Toasts   bool // print damage/heal/ability toasts
	Requests bool // print the choices of every request
	HTML     bool // print raw html blocks, dropped otherwise
}

// Presenter writes narration to an io.Writer.
type Presenter struct {
	battle.NopPresenter

	mu   sync.Mutex
	out  io.Writer
	opts Options
}

var _ battle.Presenter = (*Presenter)(nil)

func New(out io.Writer, opts Options) *Presenter {
	return &Presenter{out: out, opts: opts}
}

func (p *Presenter) writeln(format string, args ...any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.out, format+"\n", args...)
}

func (p *Presenter) RoomInit(roomID string) {
	p.writeln("== %s ==", roomID)
}

func (p *Presenter) RoomDeInit(roomID string) {
	p.writeln("== left %s ==", roomID)
}

func (p *Presenter) RoomTitle(title string) {
	p.writeln("# %s", title)
}

func (p *Presenter) TurnStarted(record core.TurnRecord) {
	for _, a := range record.Actives {
		status := a.Status
		if status != "" {
			status = " " + strings.ToUpper(status)
		}
		p.writeln("  %s %s %d/%d%s", a.Side, a.Name, a.HP, a.MaxHP, status)
	}
}

func (p *Presenter) TimerEnabled(enabled bool) {
	if enabled {
		p.writeln("[timer on]")
		return
	}
	p.writeln("[timer off]")
}

func (p *Presenter) BattleToast(id core.PokemonID, text string, kind battle.ToastKind) {
	if !p.opts.Toasts {
		return
	}
	p.writeln("  (%s) %s: %s", kind, id.Name, text)
}

func (p *Presenter) RequestAsked(req *core.BattleActionRequest) {
	if !p.opts.Requests || req == nil {
		return
	}
	switch {
	case req.Wait:
		p.writeln("> waiting for the opponent")
		return
	case req.TeamPreview:
		p.writeln("> choose team order (%d pokemon)", len(req.Side))
		return
	}

	for slot := 0; slot < req.Count(); slot++ {
		if req.ShouldPass(slot) {
			continue
		}
		var moves []string
		if !req.ForcedSwitch(slot) {
			for _, m := range req.Moves(slot) {
				if m.Disabled {
					continue
				}
				moves = append(moves, fmt.Sprintf("%d:%s", m.Index+1, m.Name))
			}
		}
		var switches []string
		if !req.Trapped(slot) {
			for _, s := range req.Side {
				if s.Active || s.Condition.Fainted() {
					continue
				}
				switches = append(switches, fmt.Sprintf("%d:%s", s.Index+1, s.Name))
			}
		}
		p.writeln("> #%d slot %d move [%s] switch [%s]", req.ID, slot+1,
			strings.Join(moves, " "), strings.Join(switches, " "))
	}
}

func (p *Presenter) PrintText(text string) {
	text = strings.TrimRight(text, "\n")
	if text == "" {
		return
	}
	p.writeln("%s", text)
}

func (p *Presenter) PrintHTML(html string) {
	if !p.opts.HTML {
		return
	}
	p.writeln("%s", html)
}

func (p *Presenter) NetworkError(err error) {
	p.writeln("! network error: %v", err)
}
