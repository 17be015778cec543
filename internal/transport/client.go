// Package transport connects to a battle server over a websocket and moves
// protocol batches in and out.
package transport

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	ws "github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/psbattle/engine/internal/codec"
)

const (
	sendChSize   = 256
	maxReconnect = 10
	maxBackoff   = 30 * time.Second
	writeWait    = 10 * time.Second
)

var (
	// ErrClosed is returned when using a closed client.
	ErrClosed = errors.New("transport closed")
	// ErrNotConnected is returned by Run before a successful Dial.
	ErrNotConnected = errors.New("transport not connected")
	// ErrSendBufferFull is returned when the writer falls behind.
	ErrSendBufferFull = errors.New("send buffer full")
)

// Options configures a Client.
type Options struct {
	URL       string
	Reconnect bool
	Backoff   time.Duration // first reconnect delay, doubled per attempt
	Header    http.Header
	Logger    zerolog.Logger

	// OnNetworkError is called for every read, write or dial failure.
	OnNetworkError func(error)
}

// Client is a websocket connection with a single writer goroutine. Rooms
// joined through JoinRoom are joined again after a reconnect.
type Client struct {
	opts   Options
	logger zerolog.Logger
	dialer *ws.Dialer

	mu     sync.Mutex
	conn   *ws.Conn
	rooms  []string
	closed bool

	sendCh chan string
	done   chan struct{}
}

// New creates an unconnected client.
func New(opts Options) *Client {
	if opts.Backoff <= 0 {
		opts.Backoff = time.Second
	}
	return &Client{
		opts:   opts,
		logger: opts.Logger.With().Str("component", "transport").Logger(),
		dialer: ws.DefaultDialer,
		sendCh: make(chan string, sendChSize),
		done:   make(chan struct{}),
	}
}

// Dial connects and starts the write loop.
func (c *Client) Dial(ctx context.Context) error {
	conn, err := c.dialOnce(ctx)
	if err != nil {
		return err
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		_ = conn.Close()
		return ErrClosed
	}
	c.conn = conn
	c.mu.Unlock()

	go c.writeLoop()
	c.logger.Info().Str("url", c.opts.URL).Msg("connected")
	return nil
}

func (c *Client) dialOnce(ctx context.Context) (*ws.Conn, error) {
	conn, _, err := c.dialer.DialContext(ctx, c.opts.URL, c.opts.Header)
	if err != nil {
		return nil, fmt.Errorf("websocket dial failed: %w", err)
	}
	return conn, nil
}

// Run reads frames and hands each one to handler until ctx is done, the
// client is closed or the connection is lost for good. A frame is one
// protocol batch.
func (c *Client) Run(ctx context.Context, handler func(batch string)) error {
	c.mu.Lock()
	started := c.conn != nil
	c.mu.Unlock()
	if !started {
		return ErrNotConnected
	}

	stop := context.AfterFunc(ctx, func() { _ = c.Close() })
	defer stop()

	for {
		c.mu.Lock()
		conn := c.conn
		c.mu.Unlock()
		if conn == nil {
			return c.exitErr(ctx)
		}

		_, data, err := conn.ReadMessage()
		if err != nil {
			if c.isClosed() {
				return c.exitErr(ctx)
			}
			c.networkError(fmt.Errorf("websocket read error: %w", err))
			if !c.opts.Reconnect {
				return err
			}
			if err := c.reconnect(ctx); err != nil {
				return err
			}
			continue
		}
		handler(string(data))
	}
}

func (c *Client) exitErr(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return nil
}

// reconnect re-establishes the connection with exponential backoff and
// joins the remembered rooms again.
func (c *Client) reconnect(ctx context.Context) error {
	c.mu.Lock()
	if c.conn != nil {
		_ = c.conn.Close()
		c.conn = nil
	}
	c.mu.Unlock()

	backoff := c.opts.Backoff
	for attempt := 1; attempt <= maxReconnect; attempt++ {
		c.logger.Info().Int("attempt", attempt).Dur("backoff", backoff).Msg("Reconnecting to websocket")

		select {
		case <-time.After(backoff):
		case <-c.done:
			return ErrClosed
		case <-ctx.Done():
			return ctx.Err()
		}

		conn, err := c.dialOnce(ctx)
		if err != nil {
			c.logger.Warn().Int("attempt", attempt).Err(err).Msg("Reconnect dial failed")
			backoff *= 2
			if backoff > maxBackoff {
				backoff = maxBackoff
			}
			continue
		}

		c.mu.Lock()
		if c.closed {
			c.mu.Unlock()
			_ = conn.Close()
			return ErrClosed
		}
		c.conn = conn
		rooms := append([]string(nil), c.rooms...)
		c.mu.Unlock()

		for _, room := range rooms {
			if err := c.Send(codec.RoomCommand("", "join", room)); err != nil {
				c.logger.Warn().Str("room", room).Err(err).Msg("Failed to rejoin room")
			}
		}
		c.logger.Info().Int("attempt", attempt).Msg("Websocket reconnected")
		return nil
	}

	err := fmt.Errorf("websocket reconnect failed after %d attempts", maxReconnect)
	c.networkError(err)
	return err
}

// writeLoop is the only goroutine writing to the connection.
func (c *Client) writeLoop() {
	for {
		select {
		case <-c.done:
			return
		case msg := <-c.sendCh:
			c.mu.Lock()
			conn := c.conn
			c.mu.Unlock()

			if conn == nil {
				c.logger.Warn().Str("msg", msg).Msg("Dropping message while disconnected")
				continue
			}
			if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				c.networkError(fmt.Errorf("websocket write deadline: %w", err))
				continue
			}
			if err := conn.WriteMessage(ws.TextMessage, []byte(msg)); err != nil {
				// the read loop notices the broken connection and reconnects
				c.networkError(fmt.Errorf("websocket write error: %w", err))
			}
		}
	}
}

// Send queues msg for the writer. It never blocks.
func (c *Client) Send(msg string) error {
	if c.isClosed() {
		return ErrClosed
	}
	select {
	case c.sendCh <- msg:
		return nil
	default:
		return ErrSendBufferFull
	}
}

// SendRoomCommand sends "room|/command args".
func (c *Client) SendRoomCommand(room, command string, args ...string) error {
	return c.Send(codec.RoomCommand(room, command, args...))
}

// JoinRoom joins room now and after every reconnect.
func (c *Client) JoinRoom(room string) error {
	c.mu.Lock()
	known := false
	for _, r := range c.rooms {
		known = known || r == room
	}
	if !known {
		c.rooms = append(c.rooms, room)
	}
	c.mu.Unlock()
	return c.SendRoomCommand("", "join", room)
}

// LeaveRoom leaves room and forgets it.
func (c *Client) LeaveRoom(room string) error {
	c.mu.Lock()
	for i, r := range c.rooms {
		if r == room {
			c.rooms = append(c.rooms[:i], c.rooms[i+1:]...)
			break
		}
	}
	c.mu.Unlock()
	return c.SendRoomCommand("", "leave", room)
}

func (c *Client) networkError(err error) {
	c.logger.Warn().Err(err).Msg("network error")
	if c.opts.OnNetworkError != nil {
		c.opts.OnNetworkError(err)
	}
}

func (c *Client) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// Close sends a close frame and stops the loops.
func (c *Client) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	close(c.done)
	conn := c.conn
	c.conn = nil
	c.mu.Unlock()

	if conn != nil {
		_ = conn.WriteControl(
			ws.CloseMessage,
			ws.FormatCloseMessage(ws.CloseNormalClosure, ""),
			time.Now().Add(time.Second),
		)
		return conn.Close()
	}
	return nil
}
