package cnc

import (
	"context"
	"log/slog"

	"github.com/sarchlab/cncsim/sim"
)

// HookPosTransition marks an applied operator command. The hook item is a
// Transition and the detail is the Snapshot after it.
var HookPosTransition = &sim.HookPos{Name: "CNC Transition"}

// HookPosProgress marks a handled tick of a running cycle. The hook item is
// the Snapshot after the tick.
var HookPosProgress = &sim.HookPos{Name: "CNC Progress"}

// Trigger names the command that caused a transition.
type Trigger string

// Triggers of transitions.
const (
	TriggerStart         Trigger = "start"
	TriggerPause         Trigger = "pause"
	TriggerStop          Trigger = "stop"
	TriggerEmergencyStop Trigger = "estop"
	TriggerOperation     Trigger = "operation"
)

// Transition describes an applied command.
type Transition struct {
	Controller string
	Trigger    Trigger
	CycleID    string
	Operation  OperationKind
	Time       sim.VTimeInSec
	Before     MachineState
	After      MachineState
}

// TransitionLogger is a hook that writes transitions and cycle progress into
// a logger.
type TransitionLogger struct {
	logger *slog.Logger
}

// NewTransitionLogger creates a TransitionLogger.
func NewTransitionLogger(logger *slog.Logger) *TransitionLogger {
	return &TransitionLogger{logger: logger}
}

// Func logs the hook item.
func (h *TransitionLogger) Func(ctx sim.HookCtx) {
	switch ctx.Pos {
	case HookPosTransition:
		t := ctx.Item.(Transition)
		h.logger.Info("transition",
			"controller", t.Controller,
			"trigger", string(t.Trigger),
			"time", float64(t.Time),
			"cycle", t.CycleID,
			"operation", string(t.Operation),
			"status", string(t.After.Status),
			"cycle_status", string(t.After.CycleStatus),
		)
	case HookPosProgress:
		if !h.logger.Enabled(context.Background(), slog.LevelDebug) {
			return
		}

		s := ctx.Item.(Snapshot)
		h.logger.Debug("progress",
			"controller", s.Controller,
			"time", float64(s.Now),
			"cycle", s.CycleID,
			"elapsed", s.Timing.ElapsedTime,
			"progress", s.State.ProgramProgress,
		)
	}
}
