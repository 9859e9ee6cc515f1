package cnc

import (
	"context"
	"log"
	"math"
	"reflect"

	"github.com/sarchlab/cncsim/sim"
)

// Controller owns the state of one simulated machine and runs its cycles.
//
// All the commands and the tick handler take the controller lock, so they are
// applied one at a time no matter which goroutine issues them. Commands that
// the current state does not allow are ignored. Hooks are invoked while the
// lock is held and must not call back into the Controller.
type Controller struct {
	*sim.ComponentBase

	engine    sim.Engine
	ticks     *sim.TickScheduler
	baseline  int
	durations map[OperationKind]int

	state     MachineState
	cycleID   string
	operation OperationKind
	started   bool
	startTime sim.VTimeInSec
	elapsed   int
	remaining int

	broker *broker
}

// Handle handles the tick events of a running cycle.
func (c *Controller) Handle(evt sim.Event) error {
	tick, ok := evt.(sim.TickEvent)
	if !ok {
		log.Panicf("cannot handle event of type %s", reflect.TypeOf(evt))
	}

	c.Lock()
	defer c.Unlock()

	if !c.ticks.Accept(tick) || c.state.CycleStatus != CycleRunning {
		return nil
	}

	c.elapsed = int(math.Floor(float64(tick.Time()-c.startTime) + 1e-6))
	c.state.ProgramProgress = min(100, c.elapsed*100/c.baseline)

	c.ticks.TickLater(tick)

	snapshot := c.snapshot()
	c.InvokeHook(sim.HookCtx{
		Domain: c,
		Pos:    HookPosProgress,
		Item:   snapshot,
	})
	c.broker.publish(snapshot)

	return nil
}

// Start starts a new cycle. It is ignored during an emergency stop and while
// a cycle is running. Starting a paused cycle restarts it from zero.
func (c *Controller) Start() {
	c.Lock()
	defer c.Unlock()

	if !CanStart(c.state) {
		return
	}

	before := c.state.clone()
	c.start("")
	c.applied(TriggerStart, before)
}

// Pause pauses the running cycle.
func (c *Controller) Pause() {
	c.Lock()
	defer c.Unlock()

	if !CanPause(c.state) {
		return
	}

	before := c.state.clone()
	c.ticks.Cancel()
	c.state.CycleStatus = CyclePaused
	c.state.Status = StatusIdle
	c.applied(TriggerPause, before)
}

// Stop stops the cycle and resets its progress. An emergency stop is kept.
func (c *Controller) Stop() {
	c.Lock()
	defer c.Unlock()

	before := c.state.clone()
	c.stop()
	c.applied(TriggerStop, before)
}

// EmergencyStop stops the cycle and puts the machine into the E-STOP status,
// which no command clears.
func (c *Controller) EmergencyStop() {
	c.Lock()
	defer c.Unlock()

	before := c.state.clone()
	c.stop()
	c.state.Status = StatusEStop
	c.applied(TriggerEmergencyStop, before)
}

// StartOperation starts a cycle running a canned operation. It is ignored
// unless the machine is idle. The parameters are not used by the simulation.
func (c *Controller) StartOperation(kind OperationKind, _ Params) {
	c.Lock()
	defer c.Unlock()

	if !CanStartOperation(c.state) {
		return
	}

	before := c.state.clone()
	c.start(kind)
	c.remaining = c.durationOf(kind)
	c.applied(TriggerOperation, before)
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() Snapshot {
	c.Lock()
	defer c.Unlock()

	return c.snapshot()
}

// Subscribe returns the current snapshot and a channel that receives a new
// snapshot after every state change. The channel is closed when ctx is done
// or the controller shuts down.
func (c *Controller) Subscribe(ctx context.Context) (Snapshot, <-chan Snapshot) {
	c.Lock()
	defer c.Unlock()

	return c.snapshot(), c.broker.subscribe(ctx)
}

// Shutdown stops ticking and closes all the subscriptions. The state is kept.
func (c *Controller) Shutdown() {
	c.Lock()
	defer c.Unlock()

	c.ticks.Cancel()
	c.broker.close()
}

// Engine returns the engine that the controller ticks on.
func (c *Controller) Engine() sim.Engine {
	return c.engine
}

func (c *Controller) start(kind OperationKind) {
	c.startTime = c.ticks.Start()
	c.started = true
	c.elapsed = 0
	c.remaining = DefaultOperationDuration
	c.cycleID = sim.GetIDGenerator().Generate()
	c.operation = kind

	c.state.CycleStatus = CycleRunning
	c.state.Status = StatusRunning
	c.state.ProgramProgress = 0
}

func (c *Controller) stop() {
	c.ticks.Cancel()

	c.started = false
	c.startTime = 0
	c.elapsed = 0

	c.state.CycleStatus = CycleStopped
	c.state.ProgramProgress = 0
	if c.state.Status != StatusEStop {
		c.state.Status = StatusIdle
	}
}

func (c *Controller) durationOf(kind OperationKind) int {
	if d, ok := c.durations[kind]; ok {
		return d
	}

	return DefaultOperationDuration
}

func (c *Controller) applied(trigger Trigger, before MachineState) {
	snapshot := c.snapshot()

	c.InvokeHook(sim.HookCtx{
		Domain: c,
		Pos:    HookPosTransition,
		Item: Transition{
			Controller: c.Name(),
			Trigger:    trigger,
			CycleID:    c.cycleID,
			Operation:  c.operation,
			Time:       snapshot.Now,
			Before:     before,
			After:      snapshot.State,
		},
		Detail: snapshot,
	})
	c.broker.publish(snapshot)
}

func (c *Controller) snapshot() Snapshot {
	s := Snapshot{
		Controller: c.Name(),
		CycleID:    c.cycleID,
		Operation:  c.operation,
		State:      c.state.clone(),
		Timing: CycleTiming{
			ElapsedTime:            c.elapsed,
			EstimatedTimeRemaining: c.remaining,
		},
		Now: c.engine.CurrentTime(),
	}

	if c.started {
		t := c.startTime
		s.Timing.StartTime = &t
	}

	return s
}
