// Package battle turns a stream of protocol batches into paced battle state
// changes and presenter events.
package battle

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/psbattle/engine/internal/codec"
	"github.com/psbattle/engine/internal/dispatcher"
	"github.com/psbattle/engine/internal/logging"
	"github.com/psbattle/engine/internal/narration"
	"github.com/psbattle/engine/internal/parser"
	"github.com/psbattle/engine/internal/queue"
	"github.com/psbattle/engine/pkg/core"
)

// ErrNoSender is returned when a decision is made without a transport.
var ErrNoSender = errors.New("observer has no sender")

// ErrNoSession is returned when no battle room is initialized.
var ErrNoSession = errors.New("no battle room initialized")

// Sender delivers outgoing protocol strings.
type Sender interface {
	Send(msg string) error
}

// Journal keeps the decisions sent for a battle.
type Journal interface {
	RecordDecision(d *core.DecisionRecord) error
}

// Dependencies holds everything the observer needs
type Dependencies struct {
	Queue     *queue.ActionQueue
	Presenter Presenter
	Logger    zerolog.Logger
	Username  string          // local user, empty when anonymous
	Sender    Sender          // optional, required by Choose
	Journal   Journal         // optional
	Table     narration.Table // optional, the embedded table when nil
}

// Observer consumes the protocol of one battle room. Incoming batches are
// parsed on the queue consumer goroutine; state changes and presenter calls
// happen in scheduled units on that same goroutine.
type Observer struct {
	queue     *queue.ActionQueue
	presenter Presenter
	logger    zerolog.Logger
	username  string
	sender    Sender
	journal   Journal

	dispatch *dispatcher.Dispatcher
	text     *narration.Builder

	// consumer goroutine only
	tracker *codec.Tracker
	session *Session
}

// NewObserver creates an observer and registers a handler for every command.
func NewObserver(deps Dependencies) (*Observer, error) {
	if deps.Queue == nil {
		return nil, errors.New("observer needs an action queue")
	}
	if deps.Presenter == nil {
		deps.Presenter = NopPresenter{}
	}

	o := &Observer{
		queue:     deps.Queue,
		presenter: deps.Presenter,
		logger:    deps.Logger.With().Str("component", "observer").Logger(),
		username:  deps.Username,
		sender:    deps.Sender,
		journal:   deps.Journal,
	}
	o.text = narration.NewBuilder(deps.Table, o.resolve)

	d, err := dispatcher.New(logging.NewEventLogger(o.logger))
	if err != nil {
		return nil, fmt.Errorf("error creating dispatcher: %w", err)
	}
	o.dispatch = d
	o.registerHandlers()

	return o, nil
}

func (o *Observer) registerHandlers() {
	handlers := map[parser.Command]dispatcher.HandlerFunc{
		parser.CmdInit:            o.handleInit,
		parser.CmdDeinit:          o.handleDeinit,
		parser.CmdNoInit:          ignore,
		parser.CmdTitle:           o.handleTitle,
		parser.CmdUsers:           o.handleUsers,
		parser.CmdJoin:            o.handleJoin,
		parser.CmdLeave:           o.handleLeave,
		parser.CmdName:            o.handleName,
		parser.CmdChat:            o.handleChat,
		parser.CmdChatTimestamped: o.handleChat,
		parser.CmdTimestamp:       ignore,
		parser.CmdBattleStarted:   o.handleBattleStarted,
		parser.CmdError:           o.handleError,
		parser.CmdRaw:             o.handleRaw,
		parser.CmdHTML:            ignore,
		parser.CmdUHTML:           ignore,
		parser.CmdUHTMLChange:     ignore,
		parser.CmdBreak:           ignore,

		parser.CmdPlayer:        o.handlePlayer,
		parser.CmdTeamSize:      o.handleTeamSize,
		parser.CmdGameType:      o.handleGameType,
		parser.CmdGen:           o.handleGen,
		parser.CmdTier:          o.handleTier,
		parser.CmdRated:         o.handleRated,
		parser.CmdRule:          o.handleRule,
		parser.CmdClearPoke:     o.handleClearPoke,
		parser.CmdPoke:          o.handlePoke,
		parser.CmdTeamPreview:   o.handleTeamPreview,
		parser.CmdStart:         o.handleStart,
		parser.CmdTurn:          o.handleTurn,
		parser.CmdMove:          o.handleMove,
		parser.CmdSwitch:        o.handleSwitch,
		parser.CmdDrag:          o.handleDrag,
		parser.CmdDetailsChange: o.handleDetailsChange,
		parser.CmdReplace:       o.handleReplace,
		parser.CmdFaint:         o.handleFaint,
		parser.CmdCant:          o.handleCant,
		parser.CmdSwap:          o.handleSwap,
		parser.CmdRequest:       o.handleRequest,
		parser.CmdInactive:      o.handleInactive,
		parser.CmdInactiveOff:   o.handleInactive,
		parser.CmdWin:           o.handleWin,
		parser.CmdTie:           o.handleWin,
		parser.CmdUpkeep:        ignore,

		parser.CmdMessage:            o.handleMessage,
		parser.CmdFail:               o.handleFail,
		parser.CmdMiss:               o.handleMiss,
		parser.CmdDamage:             o.handleHealthChange,
		parser.CmdHeal:               o.handleHealthChange,
		parser.CmdSetHP:              o.handleSetHP,
		parser.CmdStatus:             o.handleStatus,
		parser.CmdCureStatus:         o.handleStatus,
		parser.CmdCureTeam:           o.handleCureTeam,
		parser.CmdBoost:              o.handleBoost,
		parser.CmdUnboost:            o.handleBoost,
		parser.CmdSetBoost:           o.handleSetBoost,
		parser.CmdClearBoost:         o.handleClearBoost,
		parser.CmdClearPositiveBoost: o.handleClearBoost,
		parser.CmdClearNegativeBoost: o.handleClearBoost,
		parser.CmdClearAllBoost:      o.handleClearAllBoost,
		parser.CmdInvertBoost:        o.handleInvertBoost,
		parser.CmdWeather:            o.handleWeather,
		parser.CmdFieldStart:         o.handleField,
		parser.CmdFieldActivate:      o.handleField,
		parser.CmdFieldEnd:           o.handleField,
		parser.CmdSideStart:          o.handleSide,
		parser.CmdSideEnd:            o.handleSide,
		parser.CmdVolatileStart:      o.handleVolatile,
		parser.CmdVolatileEnd:        o.handleVolatile,
		parser.CmdActivate:           o.handleActivate,
		parser.CmdCrit:               o.handleMoveEffect,
		parser.CmdResisted:           o.handleMoveEffect,
		parser.CmdSuperEffective:     o.handleMoveEffect,
		parser.CmdImmune:             o.handleImmune,
		parser.CmdItem:               o.handleItem,
		parser.CmdEndItem:            o.handleItem,
		parser.CmdAbility:            o.handleAbility,
		parser.CmdEndAbility:         o.handleAbility,
		parser.CmdMega:               o.handleMega,
		parser.CmdPrimal:             o.handleMega,
		parser.CmdFormeChange:        o.handleFormeChange,
		parser.CmdTransform:          o.handleTransform,
		parser.CmdHint:               o.handleHint,
		parser.CmdCenter:             ignore,
		parser.CmdBlock:              o.handleBlock,
		parser.CmdOHKO:               o.handleSimple,
		parser.CmdCombine:            o.handleSimple,
		parser.CmdNoTarget:           o.handleSimple,
		parser.CmdPrepare:            o.handlePrepare,
		parser.CmdZPower:             o.handleZPower,
		parser.CmdZBroken:            o.handleZPower,
		parser.CmdHitCount:           o.handleHitCount,
		parser.CmdSingleTurn:         o.handleSingle,
		parser.CmdSingleMove:         o.handleSingle,
	}

	for cmd, h := range handlers {
		o.dispatch.Register(cmd, h, dispatcher.Logged(), dispatcher.OnError(o.reportError))
	}
}

func ignore(dispatcher.Event) error { return nil }

// reportError surfaces a malformed line inline; the line has no other effect.
func (o *Observer) reportError(e dispatcher.Event, err error) {
	o.print(fmt.Sprintf("An error has occurred while handling |%s|: %v", e.Message.Name, err))
}

// HandleBatch schedules a raw batch for parsing on the consumer goroutine.
func (o *Observer) HandleBatch(data string) {
	o.queue.Post(func() { o.handleBatch(data) })
}

func (o *Observer) handleBatch(data string) {
	for _, m := range parser.ParseBatch(data) {
		o.handle(m)
	}
}

func (o *Observer) handle(m *parser.Message) {
	if m.Command != parser.CmdInit && (o.session == nil || o.session.RoomID != m.RoomID) {
		o.logger.Debug().Str("room", m.RoomID).Str("command", m.Name).Msg("ignoring message outside of the battle room")
		return
	}

	err := o.dispatch.Dispatch(dispatcher.NewEvent(m))
	if errors.Is(err, dispatcher.ErrUnknownCommand) {
		o.logger.Debug().Str("command", m.Name).Msg("ignoring unknown command")
	}
}

// ReAskForRequest shows the last action request again once pending units ran.
func (o *Observer) ReAskForRequest() {
	o.queue.Post(func() {
		if o.session == nil || o.session.lastRequest == nil {
			return
		}
		req := o.session.lastRequest
		o.queue.Enqueue(queue.Immediate, func() { o.presenter.RequestAsked(req) })
	})
}

// Choose sends d as the answer to request rqid. Each request is answered at
// most once; superseded and wait requests are refused.
func (o *Observer) Choose(ctx context.Context, rqid int, d *core.BattleDecision) error {
	if o.sender == nil {
		return ErrNoSender
	}

	result := make(chan error, 1)
	o.queue.Post(func() {
		if o.tracker == nil {
			result <- ErrNoSession
			return
		}
		msg, err := o.tracker.Answer(rqid, d)
		if err != nil {
			result <- err
			return
		}
		if err := o.sender.Send(msg); err != nil {
			result <- fmt.Errorf("error sending decision: %w", err)
			return
		}
		o.recordDecision(rqid, d)
		result <- nil
	})

	select {
	case err := <-result:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (o *Observer) recordDecision(rqid int, d *core.BattleDecision) {
	if o.journal == nil || o.session == nil {
		return
	}
	err := o.journal.RecordDecision(&core.DecisionRecord{
		RoomID:  o.session.RoomID,
		RQID:    rqid,
		Turn:    o.session.Turn,
		Time:    time.Now(),
		Command: d.Command(),
		Choice:  d.Build(),
	})
	if err != nil {
		o.logger.Warn().Err(err).Int("rqid", rqid).Msg("failed to record decision")
	}
}

// NetworkError forwards a transport failure to the presenter.
func (o *Observer) NetworkError(err error) {
	o.queue.Post(func() { o.presenter.NetworkError(err) })
}

// resolve maps an identity token with the players of the current room.
func (o *Observer) resolve(raw string) (core.PokemonID, error) {
	var players core.Players
	if o.session != nil {
		players = o.session.Players
	}
	return parser.ParsePokemonID(players, raw)
}

// nextID consumes an identity argument.
func (o *Observer) nextID(m *parser.Message) (core.PokemonID, string, error) {
	raw, err := m.Next()
	if err != nil {
		return core.PokemonID{}, "", err
	}
	id, err := o.resolve(raw)
	if err != nil {
		return core.PokemonID{}, raw, err
	}
	return id, raw, nil
}

// print schedules a text line behind the pending units.
func (o *Observer) print(text string) {
	if text == "" {
		return
	}
	o.queue.Enqueue(queue.Immediate, func() { o.presenter.PrintText(text) })
}

// say prints from inside a scheduled unit.
func (o *Observer) say(text string) {
	if text != "" {
		o.presenter.PrintText(text)
	}
}

func kwargs(m *parser.Message) narration.Kwargs {
	return narration.Kwargs(m.Kwargs())
}
