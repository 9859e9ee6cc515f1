package sim

import (
	"sync"
)

// TickEvent is a generic event that almost all the component can use to
// update their status.
type TickEvent struct {
	EventBase

	// Epoch identifies the arming of the TickScheduler that produced the event.
	Epoch uint64
}

// MakeTickEvent creates a new TickEvent
func MakeTickEvent(handler Handler, time VTimeInSec, epoch uint64) TickEvent {
	return TickEvent{
		EventBase: *NewEventBase(time, handler),
		Epoch:     epoch,
	}
}

// TickScheduler keeps one chain of periodic tick events alive for a handler.
//
// Start opens a new epoch anchored at the current time and schedules the first
// tick one period later. The handler calls Accept on every TickEvent and, if
// accepted, TickLater to schedule the next one. Cancel closes the epoch; tick
// events of a closed epoch are never accepted, so at most one chain is live.
type TickScheduler struct {
	lock    sync.Mutex
	handler Handler
	Freq    Freq
	Engine  Engine

	epoch        uint64
	active       bool
	nextTickTime VTimeInSec
}

// NewTickScheduler creates a scheduler for tick events.
func NewTickScheduler(
	handler Handler,
	engine Engine,
	freq Freq,
) *TickScheduler {
	ticker := new(TickScheduler)

	ticker.handler = handler
	ticker.Engine = engine
	ticker.Freq = freq
	ticker.nextTickTime = -1

	return ticker
}

// Start opens a new epoch and schedules its first tick. It returns the time
// the epoch is anchored at.
func (t *TickScheduler) Start() VTimeInSec {
	t.lock.Lock()
	defer t.lock.Unlock()

	now := t.Engine.CurrentTime()

	t.epoch++
	t.active = true
	t.scheduleAt(now + t.Freq.Period())

	return now
}

// TickLater schedules the tick that follows the given one, if the tick still
// belongs to the live epoch.
func (t *TickScheduler) TickLater(evt TickEvent) {
	t.lock.Lock()
	defer t.lock.Unlock()

	if !t.isLive(evt) {
		return
	}

	next := evt.Time() + t.Freq.Period()
	if t.nextTickTime >= next {
		return
	}

	t.scheduleAt(next)
}

// Accept tells whether a tick event belongs to the live epoch.
func (t *TickScheduler) Accept(evt TickEvent) bool {
	t.lock.Lock()
	defer t.lock.Unlock()

	return t.isLive(evt)
}

// Cancel closes the current epoch. The tick that is already in the engine
// queue will be ignored when it fires.
func (t *TickScheduler) Cancel() {
	t.lock.Lock()
	defer t.lock.Unlock()

	if !t.active {
		return
	}

	t.active = false
	t.epoch++
	t.nextTickTime = -1
}

// IsActive returns true if an epoch is live.
func (t *TickScheduler) IsActive() bool {
	t.lock.Lock()
	defer t.lock.Unlock()

	return t.active
}

// CurrentTime returns the time of the engine that the ticks are scheduled on.
func (t *TickScheduler) CurrentTime() VTimeInSec {
	return t.Engine.CurrentTime()
}

func (t *TickScheduler) isLive(evt TickEvent) bool {
	return t.active && evt.Epoch == t.epoch
}

func (t *TickScheduler) scheduleAt(time VTimeInSec) {
	t.nextTickTime = time
	tick := MakeTickEvent(t.handler, time, t.epoch)
	t.Engine.Schedule(tick)
}
