package battle

import (
	"fmt"
	"slices"
	"strings"

	"github.com/psbattle/engine/internal/codec"
	"github.com/psbattle/engine/internal/dispatcher"
	"github.com/psbattle/engine/internal/queue"
)

// handleInit starts a fresh battle room: nothing of the previous one survives.
func (o *Observer) handleInit(e dispatcher.Event) error {
	room := e.Message.RoomID
	o.queue.Clear()
	o.session = NewSession(room, o.username)
	o.tracker = codec.NewTracker(room)

	o.logger.Info().Str("room", room).Msg("room initialized")
	o.queue.Enqueue(queue.Immediate, func() { o.presenter.RoomInit(room) })
	return nil
}

func (o *Observer) handleDeinit(e dispatcher.Event) error {
	room := e.Message.RoomID
	o.queue.Clear()
	o.session = nil
	o.tracker = nil

	o.logger.Info().Str("room", room).Msg("room deinitialized")
	o.queue.Enqueue(queue.Immediate, func() { o.presenter.RoomDeInit(room) })
	return nil
}

func (o *Observer) handleTitle(e dispatcher.Event) error {
	title := e.Message.Rest()
	o.session.Title = title
	o.queue.Enqueue(queue.Immediate, func() { o.presenter.RoomTitle(title) })
	return nil
}

// |users|3, Alice, Bob,+Carol : the count first, then ranked names
func (o *Observer) handleUsers(e dispatcher.Event) error {
	raw, err := e.Message.Next()
	if err != nil {
		return err
	}
	users := []string{}
	for _, u := range strings.Split(raw, ",")[1:] {
		if len(u) > 1 {
			users = append(users, u[1:])
		}
	}
	o.session.Users = users
	o.notifyUsers()
	return nil
}

// |j|USER, |J|USER for a silent join
func (o *Observer) handleJoin(e dispatcher.Event) error {
	user, err := e.Message.Next()
	if err != nil {
		return err
	}
	o.session.Users = append(o.session.Users, user)
	o.notifyUsers()
	if e.Message.Raw != "J" {
		o.print(user + " joined")
	}
	return nil
}

func (o *Observer) handleLeave(e dispatcher.Event) error {
	user, err := e.Message.Next()
	if err != nil {
		return err
	}
	if i := slices.Index(o.session.Users, user); i >= 0 {
		o.session.Users = slices.Delete(o.session.Users, i, i+1)
	}
	o.notifyUsers()
	if e.Message.Raw != "L" {
		o.print(user + " left")
	}
	return nil
}

// |n|NEWNAME|OLDID
func (o *Observer) handleName(e dispatcher.Event) error {
	if e.Message.Raw == "N" {
		return nil
	}
	user, err := e.Message.Next()
	if err != nil {
		return err
	}
	old, err := e.Message.Next()
	if err != nil {
		return err
	}
	o.print(fmt.Sprintf("User %s changed its name and is now %s", old, user))
	return nil
}

func (o *Observer) notifyUsers() {
	users := slices.Clone(o.session.Users)
	o.queue.Enqueue(queue.Immediate, func() { o.presenter.UsersChanged(users) })
}

// |c|USER|MESSAGE and |c:|TIMESTAMP|USER|MESSAGE
func (o *Observer) handleChat(e dispatcher.Event) error {
	m := e.Message
	if m.Name == "c:" {
		if _, err := m.Next(); err != nil {
			return err
		}
	}
	user, err := m.Next()
	if err != nil {
		return err
	}
	user = strings.TrimPrefix(user, " ")
	msg := m.Rest()

	switch {
	case strings.HasPrefix(msg, "/raw "):
		html := strings.TrimPrefix(msg, "/raw ")
		o.queue.Enqueue(queue.Immediate, func() { o.presenter.PrintHTML(html) })
	case strings.HasPrefix(msg, "/uhtml"):
		_, html, _ := strings.Cut(msg, ",")
		o.queue.Enqueue(queue.Immediate, func() { o.presenter.PrintHTML(html) })
	default:
		msg = strings.TrimPrefix(msg, "/announce ")
		o.print(user + ": " + msg)
	}
	return nil
}

// |b|ROOMID|USER1|USER2, |B| is silent
func (o *Observer) handleBattleStarted(e dispatcher.Event) error {
	m := e.Message
	room, err := m.Next()
	if err != nil {
		return err
	}
	user1, user2 := m.NextOr(""), m.NextOr("")
	if m.Raw != "B" {
		o.print(fmt.Sprintf("A battle started between %s and %s (in room %s)", user1, user2, room))
	}
	return nil
}

func (o *Observer) handleError(e dispatcher.Event) error {
	o.print(e.Message.Rest())
	return nil
}

func (o *Observer) handleRaw(e dispatcher.Event) error {
	html := e.Message.Rest()
	if html == "" {
		return nil
	}
	o.queue.Enqueue(queue.Immediate, func() { o.presenter.PrintHTML(html) })
	return nil
}
