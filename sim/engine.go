package sim

// Clock tells the current simulated time.
type Clock interface {
	CurrentTime() VTimeInSec
}

// Scheduler accepts events to handle later.
type Scheduler interface {
	Schedule(e Event)
}

// A SimulationEndHandler is called once the engine is finished.
type SimulationEndHandler interface {
	Handle(now VTimeInSec)
}

// An Engine owns the clock and dispatches events to their handlers in time
// order. Hooks see every event before and after it is handled.
type Engine interface {
	Hookable
	Clock
	Scheduler

	// Run dispatches events. The serial engine returns when its queue
	// drains, the real-time engine when it is stopped.
	Run() error

	// Pause holds dispatching until Continue is called.
	Pause()

	// Continue resumes a paused engine.
	Continue()

	// RegisterSimulationEndHandler adds a handler for Finished.
	RegisterSimulationEndHandler(handler SimulationEndHandler)

	// Finished calls the registered SimulationEndHandlers.
	Finished()
}
