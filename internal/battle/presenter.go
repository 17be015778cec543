package battle

import (
	"github.com/psbattle/engine/pkg/core"
)

// ToastKind tells the presenter how to style a battle toast
type ToastKind int

const (
	ToastNeutral ToastKind = iota // missed, failed, immune, resisted
	ToastDamage                   // damage, critical, super effective
	ToastHeal
	ToastAbility
)

func (k ToastKind) String() string {
	switch k {
	case ToastDamage:
		return "damage"
	case ToastHeal:
		return "heal"
	case ToastAbility:
		return "ability"
	default:
		return "neutral"
	}
}

// Presenter receives paced battle events. Every method is called from a
// scheduled unit on the queue consumer goroutine, one event at a time.
type Presenter interface {
	RoomInit(roomID string)
	RoomDeInit(roomID string)
	RoomTitle(title string)
	UsersChanged(users []string)

	PlayerInit(trainer, foe string)
	TeamSize(side core.Side, size int)
	PreviewStarted()
	PreviewAdd(id core.PokemonID, species core.Species, hasItem bool)
	BattleStarted(info core.BattleInfo)
	TurnStarted(record core.TurnRecord)
	BattleEnded(winner string)
	TimerEnabled(enabled bool)
	RequestAsked(req *core.BattleActionRequest)

	Switch(p *core.BattlingPokemon)
	DetailsChanged(p *core.BattlingPokemon)
	Move(source core.PokemonID, target *core.PokemonID, move string, shouldAnim bool)
	Swap(id core.PokemonID, targetIndex int)
	Faint(id core.PokemonID)
	HealthChanged(id core.PokemonID, c core.Condition)
	StatusChanged(id core.PokemonID, status string)
	StatChanged(id core.PokemonID, stats core.StatModifiers)
	VolatileStatusChanged(id core.PokemonID, status string, start bool)
	SideChanged(side core.Side, effect string, start bool)
	FieldEffectChanged(effect string)
	BattleToast(id core.PokemonID, text string, kind ToastKind)

	PrintText(text string)
	PrintHTML(html string)
	NetworkError(err error)
}

// NopPresenter ignores every event. Embed it to implement only a few methods.
type NopPresenter struct{}

func (NopPresenter) RoomInit(string) {}
func (NopPresenter) RoomDeInit(string) {}
func (NopPresenter) RoomTitle(string) {}
func (NopPresenter) UsersChanged([]string) {}
func (NopPresenter) PlayerInit(string, string) {}
func (NopPresenter) TeamSize(core.Side, int) {}
func (NopPresenter) PreviewStarted() {}
func (NopPresenter) PreviewAdd(core.PokemonID, core.Species, bool) {}
func (NopPresenter) BattleStarted(core.BattleInfo) {}
func (NopPresenter) TurnStarted(core.TurnRecord) {}
func (NopPresenter) BattleEnded(string) {}
func (NopPresenter) TimerEnabled(bool) {}
func (NopPresenter) RequestAsked(*core.BattleActionRequest) {}
func (NopPresenter) Switch(*core.BattlingPokemon) {}
func (NopPresenter) DetailsChanged(*core.BattlingPokemon) {}
func (NopPresenter) Move(core.PokemonID, *core.PokemonID, string, bool) {}
func (NopPresenter) Swap(core.PokemonID, int) {}
func (NopPresenter) Faint(core.PokemonID) {}
func (NopPresenter) HealthChanged(core.PokemonID, core.Condition) {}
func (NopPresenter) StatusChanged(core.PokemonID, string) {}
func (NopPresenter) StatChanged(core.PokemonID, core.StatModifiers) {}
func (NopPresenter) VolatileStatusChanged(core.PokemonID, string, bool) {}
func (NopPresenter) SideChanged(core.Side, string, bool) {}
func (NopPresenter) FieldEffectChanged(string) {}
func (NopPresenter) BattleToast(core.PokemonID, string, ToastKind) {}
func (NopPresenter) PrintText(string) {}
func (NopPresenter) PrintHTML(string) {}
func (NopPresenter) NetworkError(error) {}

// MultiPresenter fans every event out to several presenters, in order.
type MultiPresenter []Presenter

func (m MultiPresenter) RoomInit(roomID string) {
	for _, p := range m {
		p.RoomInit(roomID)
	}
}

func (m MultiPresenter) RoomDeInit(roomID string) {
	for _, p := range m {
		p.RoomDeInit(roomID)
	}
}

func (m MultiPresenter) RoomTitle(title string) {
	for _, p := range m {
		p.RoomTitle(title)
	}
}

func (m MultiPresenter) UsersChanged(users []string) {
	for _, p := range m {
		p.UsersChanged(users)
	}
}

func (m MultiPresenter) PlayerInit(trainer, foe string) {
	for _, p := range m {
		p.PlayerInit(trainer, foe)
	}
}

func (m MultiPresenter) TeamSize(side core.Side, size int) {
	for _, p := range m {
		p.TeamSize(side, size)
	}
}

func (m MultiPresenter) PreviewStarted() {
	for _, p := range m {
		p.PreviewStarted()
	}
}

func (m MultiPresenter) PreviewAdd(id core.PokemonID, species core.Species, hasItem bool) {
	for _, p := range m {
		p.PreviewAdd(id, species, hasItem)
	}
}

func (m MultiPresenter) BattleStarted(info core.BattleInfo) {
	for _, p := range m {
		p.BattleStarted(info)
	}
}

func (m MultiPresenter) TurnStarted(record core.TurnRecord) {
	for _, p := range m {
		p.TurnStarted(record)
	}
}

func (m MultiPresenter) BattleEnded(winner string) {
	for _, p := range m {
		p.BattleEnded(winner)
	}
}

func (m MultiPresenter) TimerEnabled(enabled bool) {
	for _, p := range m {
		p.TimerEnabled(enabled)
	}
}

func (m MultiPresenter) RequestAsked(req *core.BattleActionRequest) {
	for _, p := range m {
		p.RequestAsked(req)
	}
}

func (m MultiPresenter) Switch(pokemon *core.BattlingPokemon) {
	for _, p := range m {
		p.Switch(pokemon)
	}
}

func (m MultiPresenter) DetailsChanged(pokemon *core.BattlingPokemon) {
	for _, p := range m {
		p.DetailsChanged(pokemon)
	}
}

func (m MultiPresenter) Move(source core.PokemonID, target *core.PokemonID, move string, shouldAnim bool) {
	for _, p := range m {
		p.Move(source, target, move, shouldAnim)
	}
}

func (m MultiPresenter) Swap(id core.PokemonID, targetIndex int) {
	for _, p := range m {
		p.Swap(id, targetIndex)
	}
}

func (m MultiPresenter) Faint(id core.PokemonID) {
	for _, p := range m {
		p.Faint(id)
	}
}

func (m MultiPresenter) HealthChanged(id core.PokemonID, c core.Condition) {
	for _, p := range m {
		p.HealthChanged(id, c)
	}
}

func (m MultiPresenter) StatusChanged(id core.PokemonID, status string) {
	for _, p := range m {
		p.StatusChanged(id, status)
	}
}

func (m MultiPresenter) StatChanged(id core.PokemonID, stats core.StatModifiers) {
	for _, p := range m {
		p.StatChanged(id, stats)
	}
}

func (m MultiPresenter) VolatileStatusChanged(id core.PokemonID, status string, start bool) {
	for _, p := range m {
		p.VolatileStatusChanged(id, status, start)
	}
}

func (m MultiPresenter) SideChanged(side core.Side, effect string, start bool) {
	for _, p := range m {
		p.SideChanged(side, effect, start)
	}
}

func (m MultiPresenter) FieldEffectChanged(effect string) {
	for _, p := range m {
		p.FieldEffectChanged(effect)
	}
}

func (m MultiPresenter) BattleToast(id core.PokemonID, text string, kind ToastKind) {
	for _, p := range m {
		p.BattleToast(id, text, kind)
	}
}

func (m MultiPresenter) PrintText(text string) {
	for _, p := range m {
		p.PrintText(text)
	}
}

func (m MultiPresenter) PrintHTML(html string) {
	for _, p := range m {
		p.PrintHTML(html)
	}
}

func (m MultiPresenter) NetworkError(err error) {
	for _, p := range m {
		p.NetworkError(err)
	}
}
