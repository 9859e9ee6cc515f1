package sim

import (
	"sync"
	"time"
)

// A RealTimeEngine is an Engine that paces events to the wall clock. An event
// scheduled at time t is handled t seconds after the engine was created.
//
// Unlike the SerialEngine, Run does not return when the queue drains. It waits
// for new events until Stop is called.
type RealTimeEngine struct {
	HookableBase

	queue EventQueue
	start time.Time
	clock func() time.Time

	wakeUp   chan struct{}
	stop     chan struct{}
	stopOnce sync.Once

	isPaused     bool
	isPausedLock sync.Mutex
	pauseLock    sync.Mutex

	singleRunLock sync.Mutex

	endHandlerLock        sync.Mutex
	simulationEndHandlers []SimulationEndHandler
}

// NewRealTimeEngine creates a RealTimeEngine whose time zero is now.
func NewRealTimeEngine() *RealTimeEngine {
	e := &RealTimeEngine{
		queue:  NewEventQueue(),
		clock:  time.Now,
		wakeUp: make(chan struct{}, 1),
		stop:   make(chan struct{}),
	}
	e.start = e.clock()

	return e
}

// CurrentTime returns the number of seconds passed since the engine was
// created.
func (e *RealTimeEngine) CurrentTime() VTimeInSec {
	return VTimeInSec(e.clock().Sub(e.start).Seconds())
}

// Schedule registers an event. Events in the past are handled as soon as
// possible.
func (e *RealTimeEngine) Schedule(evt Event) {
	e.queue.Push(evt)

	select {
	case e.wakeUp <- struct{}{}:
	default:
	}
}

// Run handles events at their wall-clock time until Stop is called.
func (e *RealTimeEngine) Run() error {
	e.singleRunLock.Lock()
	defer e.singleRunLock.Unlock()

	for {
		if e.queue.Len() == 0 {
			select {
			case <-e.wakeUp:
				continue
			case <-e.stop:
				return nil
			}
		}

		wait := e.untilDue(e.queue.Peek())
		if wait > 0 {
			timer := time.NewTimer(wait)
			select {
			case <-timer.C:
			case <-e.wakeUp:
				timer.Stop()
				continue
			case <-e.stop:
				timer.Stop()
				return nil
			}
		}

		select {
		case <-e.stop:
			return nil
		default:
		}

		e.handleNextEvent()
	}
}

func (e *RealTimeEngine) untilDue(evt Event) time.Duration {
	return time.Duration(float64(evt.Time()-e.CurrentTime()) * float64(time.Second))
}

func (e *RealTimeEngine) handleNextEvent() {
	e.pauseLock.Lock()
	defer e.pauseLock.Unlock()

	evt := e.queue.Pop()

	hookCtx := HookCtx{
		Domain: e,
		Pos:    HookPosBeforeEvent,
		Item:   evt,
	}
	e.InvokeHook(hookCtx)

	_ = evt.Handler().Handle(evt)

	hookCtx.Pos = HookPosAfterEvent
	e.InvokeHook(hookCtx)
}

// Stop makes Run return. Pending events are dropped.
func (e *RealTimeEngine) Stop() {
	e.stopOnce.Do(func() {
		close(e.stop)
	})
}

// Pause prevents the RealTimeEngine from handling more events. The clock
// keeps running, so overdue events fire immediately after Continue.
func (e *RealTimeEngine) Pause() {
	e.isPausedLock.Lock()
	defer e.isPausedLock.Unlock()

	if e.isPaused {
		return
	}

	e.pauseLock.Lock()
	e.isPaused = true
}

// Continue allows the RealTimeEngine to handle events again.
func (e *RealTimeEngine) Continue() {
	e.isPausedLock.Lock()
	defer e.isPausedLock.Unlock()

	if !e.isPaused {
		return
	}

	e.pauseLock.Unlock()
	e.isPaused = false
}

// RegisterSimulationEndHandler registers a handler to be called by Finished.
func (e *RealTimeEngine) RegisterSimulationEndHandler(
	handler SimulationEndHandler,
) {
	e.endHandlerLock.Lock()
	defer e.endHandlerLock.Unlock()

	e.simulationEndHandlers = append(e.simulationEndHandlers, handler)
}

// Finished calls all the registered SimulationEndHandler.
func (e *RealTimeEngine) Finished() {
	e.endHandlerLock.Lock()
	handlers := e.simulationEndHandlers
	e.endHandlerLock.Unlock()

	now := e.CurrentTime()
	for _, h := range handlers {
		h.Handle(now)
	}
}
