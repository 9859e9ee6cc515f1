package cnc

import (
	"log"

	"github.com/sarchlab/cncsim/sim"
)

// Builder can build Controllers.
type Builder struct {
	engine    sim.Engine
	freq      sim.Freq
	state     MachineState
	baseline  int
	durations map[OperationKind]int
	hooks     []sim.Hook
}

// MakeBuilder returns a new Builder with the default configuration.
func MakeBuilder() Builder {
	return Builder{
		freq:      1 * sim.Hz,
		state:     DefaultMachineState(),
		baseline:  DefaultOperationDuration,
		durations: DefaultOperationDurations(),
	}
}

// WithEngine sets the engine that the controller ticks on.
func (b Builder) WithEngine(engine sim.Engine) Builder {
	b.engine = engine
	return b
}

// WithTickFreq sets how often a running cycle updates its progress.
func (b Builder) WithTickFreq(freq sim.Freq) Builder {
	b.freq = freq
	return b
}

// WithInitialState sets the state of the machine when it is switched on.
func (b Builder) WithInitialState(state MachineState) Builder {
	b.state = state
	return b
}

// WithProgressBaseline sets the number of seconds that a cycle takes to reach
// 100% progress.
func (b Builder) WithProgressBaseline(seconds int) Builder {
	b.baseline = seconds
	return b
}

// WithOperationDurations sets the estimated durations of the operations.
func (b Builder) WithOperationDurations(d map[OperationKind]int) Builder {
	b.durations = d
	return b
}

// WithHook registers a hook to the controller at build time.
func (b Builder) WithHook(hook sim.Hook) Builder {
	b.hooks = append(append([]sim.Hook(nil), b.hooks...), hook)
	return b
}

// Build creates a Controller.
func (b Builder) Build(name string) *Controller {
	if b.engine == nil {
		log.Panic("engine is not set")
	}

	if b.baseline <= 0 {
		log.Panicf("progress baseline must be positive, got %d", b.baseline)
	}

	c := &Controller{
		engine:    b.engine,
		baseline:  b.baseline,
		durations: make(map[OperationKind]int, len(b.durations)),
		state:     b.state.clone(),
		broker:    newBroker(),
	}

	for k, v := range b.durations {
		c.durations[k] = v
	}

	c.ComponentBase = sim.NewComponentBase(name)
	c.ticks = sim.NewTickScheduler(c, b.engine, b.freq)

	for _, h := range b.hooks {
		c.AcceptHook(h)
	}

	return c
}
