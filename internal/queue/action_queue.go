package queue

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/psbattle/engine/internal/queue"

// Class is the pacing class of a scheduled unit. It decides how long the
// consumer waits after running the unit before starting the next one.
type Class int

const (
	Immediate Class = iota
	Minor
	Major
	Turn
)

func (c Class) String() string {
	switch c {
	case Immediate:
		return "immediate"
	case Minor:
		return "minor"
	case Major:
		return "major"
	case Turn:
		return "turn"
	default:
		return "unknown"
	}
}

// Pacing holds the post-unit delays.
type Pacing struct {
	Minor time.Duration
	Major time.Duration
	// LoopToLastTurn fast-forwards leftover units when a new turn arrives.
	// Live battles want it, replays do not.
	LoopToLastTurn bool
}

// DefaultPacing is the live battle pacing.
func DefaultPacing() Pacing {
	return Pacing{
		Minor:          750 * time.Millisecond,
		Major:          1500 * time.Millisecond,
		LoopToLastTurn: true,
	}
}

func (p Pacing) delay(c Class) time.Duration {
	switch c {
	case Minor:
		return p.Minor
	case Major:
		return p.Major
	default:
		return 0
	}
}

type unit struct {
	class Class
	fn    func()
}

func isTurn(u unit) bool { return u.class == Turn }

// ActionQueue is a paced single-consumer scheduler. Units run strictly in
// enqueue order on the consumer goroutine; tasks given to Post run on the
// same goroutine ahead of any unit still waiting for its delay, so state
// owned by the consumer never needs a lock.
type ActionQueue struct {
	units  *Queue[unit]
	inbox  chan func()
	wake   chan struct{}
	logger zerolog.Logger

	mu         sync.Mutex
	pacing     Pacing
	lastAction func()
	notBefore  time.Time
	paused     bool

	cancel    context.CancelFunc
	done      chan struct{}
	closeOnce sync.Once

	depth    metric.Int64ObservableGauge
	executed metric.Int64Counter
	panics   metric.Int64Counter
}

// NewActionQueue creates a queue. Call Start to launch the consumer.
// Uses the global OTel meter for metrics (no-op if not configured).
func NewActionQueue(pacing Pacing, logger zerolog.Logger) (*ActionQueue, error) {
	q := &ActionQueue{
		units:  New[unit](),
		inbox:  make(chan func(), 256),
		wake:   make(chan struct{}, 1),
		logger: logger.With().Str("component", "queue").Logger(),
		pacing: pacing,
		done:   make(chan struct{}),
	}

	m := otel.Meter(instrumentationName)

	var err error

	q.depth, err = m.Int64ObservableGauge(
		"actionqueue.depth",
		metric.WithDescription("Units waiting to be run"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating depth gauge: %w", err)
	}

	_, err = m.RegisterCallback(
		func(ctx context.Context, o metric.Observer) error {
			o.ObserveInt64(q.depth, int64(q.units.Len()))
			return nil
		},
		q.depth,
	)
	if err != nil {
		return nil, fmt.Errorf("registering depth callback: %w", err)
	}

	q.executed, err = m.Int64Counter(
		"actionqueue.units.executed",
		metric.WithDescription("Total units run"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating executed counter: %w", err)
	}

	q.panics, err = m.Int64Counter(
		"actionqueue.units.panicked",
		metric.WithDescription("Total units that panicked"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating panic counter: %w", err)
	}

	return q, nil
}

// Start launches the consumer goroutine. It stops when ctx is done or on Close.
func (q *ActionQueue) Start(ctx context.Context) {
	ctx, q.cancel = context.WithCancel(ctx)
	go q.loop(ctx)
}

// Close stops the consumer and waits for it to exit. Pending units are dropped.
func (q *ActionQueue) Close() {
	q.closeOnce.Do(func() {
		if q.cancel == nil {
			close(q.done)
			return
		}
		q.cancel()
		<-q.done
	})
	q.Clear()
}

// Post runs fn on the consumer goroutine as soon as it is free.
func (q *ActionQueue) Post(fn func()) {
	select {
	case q.inbox <- fn:
	case <-q.done:
	}
}

// Enqueue schedules fn with the given pacing class.
//
// Enqueuing a Turn while another Turn is pending runs, without delay, every
// pending unit up to and including the new Turn when the pacing allows it.
// The fast-forward runs on the calling goroutine, so turn units must be
// enqueued from the consumer (inside a posted task).
func (q *ActionQueue) Enqueue(class Class, fn func()) {
	turnPending := class == Turn && q.units.IndexFunc(isTurn) >= 0
	q.units.Push(unit{class: class, fn: fn})
	q.signal()

	q.mu.Lock()
	loop := q.pacing.LoopToLastTurn
	q.mu.Unlock()

	if turnPending && loop {
		q.runN(q.units.Len())
	}
}

// SetLastAction registers fn to run once after the queue next drains.
// A later call replaces an earlier hook.
func (q *ActionQueue) SetLastAction(fn func()) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.lastAction = fn
}

// Clear drops every pending unit, the pending delay and the last-action hook.
func (q *ActionQueue) Clear() {
	q.units.Clear()
	q.mu.Lock()
	q.lastAction = nil
	q.notBefore = time.Time{}
	q.mu.Unlock()
	q.signal()
}

// FastForwardToTurn runs, without delay, every pending unit up to and
// including the first pending Turn. Without a pending Turn nothing happens.
func (q *ActionQueue) FastForwardToTurn() {
	n := q.units.IndexFunc(isTurn)
	if n < 0 {
		return
	}
	q.runN(n + 1)
}

// SkipToNextTurn behaves like FastForwardToTurn but drains the whole queue
// when no Turn is pending. It runs on the consumer goroutine.
func (q *ActionQueue) SkipToNextTurn() {
	q.Post(func() {
		n := q.units.IndexFunc(isTurn)
		if n < 0 {
			n = q.units.Len() - 1
		}
		q.runN(n + 1)
	})
}

// Pause holds back units; posted tasks still run.
func (q *ActionQueue) Pause() {
	q.mu.Lock()
	q.paused = true
	q.mu.Unlock()
}

// Resume releases a paused queue.
func (q *ActionQueue) Resume() {
	q.mu.Lock()
	q.paused = false
	q.mu.Unlock()
	q.signal()
}

// SetPacing replaces the delays used from the next unit on.
func (q *ActionQueue) SetPacing(p Pacing) {
	q.mu.Lock()
	q.pacing = p
	q.mu.Unlock()
}

// Len returns the number of pending units.
func (q *ActionQueue) Len() int {
	return q.units.Len()
}

// Idle reports whether no unit is pending and no hook is armed.
func (q *ActionQueue) Idle() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.units.Empty() && q.lastAction == nil
}

func (q *ActionQueue) signal() {
	select {
	case q.wake <- struct{}{}:
	default:
	}
}

func (q *ActionQueue) loop(ctx context.Context) {
	defer close(q.done)

	for {
		// posted tasks go first so incoming messages are parsed on arrival
		select {
		case fn := <-q.inbox:
			q.execute(fn, "task")
			continue
		default:
		}

		wait, ready := q.due()
		if ready {
			q.runN(1)
			continue
		}

		var timer *time.Timer
		var fire <-chan time.Time
		if wait > 0 {
			timer = time.NewTimer(wait)
			fire = timer.C
		}

		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return
		case fn := <-q.inbox:
			q.execute(fn, "task")
		case <-q.wake:
		case <-fire:
		}
		if timer != nil {
			timer.Stop()
		}
	}
}

// due reports whether the head unit may run now, or how long to wait for it.
// A zero wait with ready false means there is nothing to wait for.
func (q *ActionQueue) due() (time.Duration, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.paused || q.units.Empty() {
		return 0, false
	}
	wait := time.Until(q.notBefore)
	if wait <= 0 {
		return 0, true
	}
	return wait, false
}

// runN pops and runs up to n units back to back, then arms the delay of the
// last one or fires the last action when the queue is drained.
func (q *ActionQueue) runN(n int) {
	var last unit
	ran := false
	for i := 0; i < n; i++ {
		u, ok := q.units.Pop()
		if !ok {
			break
		}
		q.execute(u.fn, u.class.String())
		last, ran = u, true
	}
	if !ran {
		return
	}

	q.mu.Lock()
	if !q.units.Empty() {
		q.notBefore = time.Now().Add(q.pacing.delay(last.class))
		q.mu.Unlock()
		return
	}
	q.notBefore = time.Time{}
	hook := q.lastAction
	q.lastAction = nil
	q.mu.Unlock()

	if hook != nil {
		q.execute(hook, "last")
	}
}

func (q *ActionQueue) execute(fn func(), kind string) {
	if fn == nil {
		return
	}
	attr := metric.WithAttributes(attribute.String("class", kind))
	defer func() {
		if r := recover(); r != nil {
			q.panics.Add(context.Background(), 1, attr)
			q.logger.Error().
				Str("class", kind).
				Interface("panic", r).
				Msg("recovered panic in scheduled unit")
		}
	}()
	fn()
	q.executed.Add(context.Background(), 1, attr)
}
