package datarecording

import (
	"context"

	"github.com/sarchlab/cncsim/cnc"
	"github.com/sarchlab/cncsim/sim"
)

// TransitionTableName is the table that TransitionRecorder writes into.
const TransitionTableName = "cnc_transitions"

// TransitionEntry is one row of the transition table.
type TransitionEntry struct {
	ID               string
	Controller       string
	Trigger          string
	CycleID          string
	Operation        string
	Time             float64
	BeforeStatus     string
	BeforeCycle      string
	AfterStatus      string
	AfterCycle       string
	AfterProgress    int
	RemainingSeconds int
}

// TransitionRecorder is a hook that records every applied controller command.
type TransitionRecorder struct {
	recorder DataRecorder
}

// NewTransitionRecorder creates the transition table in the recorder and
// returns a hook that fills it.
func NewTransitionRecorder(recorder DataRecorder) *TransitionRecorder {
	recorder.CreateTable(TransitionTableName, TransitionEntry{})

	return &TransitionRecorder{recorder: recorder}
}

// Func records the transition in the hook context.
func (r *TransitionRecorder) Func(ctx sim.HookCtx) {
	if ctx.Pos != cnc.HookPosTransition {
		return
	}

	t := ctx.Item.(cnc.Transition)

	entry := TransitionEntry{
		ID:            sim.GetIDGenerator().Generate(),
		Controller:    t.Controller,
		Trigger:       string(t.Trigger),
		CycleID:       t.CycleID,
		Operation:     string(t.Operation),
		Time:          float64(t.Time),
		BeforeStatus:  string(t.Before.Status),
		BeforeCycle:   string(t.Before.CycleStatus),
		AfterStatus:   string(t.After.Status),
		AfterCycle:    string(t.After.CycleStatus),
		AfterProgress: t.After.ProgramProgress,
	}

	if s, ok := ctx.Detail.(cnc.Snapshot); ok {
		entry.RemainingSeconds = s.Timing.EstimatedTimeRemaining
	}

	r.recorder.InsertData(TransitionTableName, entry)
}

// ReadTransitions returns the recorded transitions in the order they were
// applied.
func ReadTransitions(
	ctx context.Context,
	reader DataReader,
) ([]TransitionEntry, error) {
	reader.MapTable(TransitionTableName, TransitionEntry{})

	results, _, err := reader.Query(ctx, TransitionTableName, QueryParams{
		OrderBy: "rowid",
	})
	if err != nil {
		return nil, err
	}

	entries := make([]TransitionEntry, 0, len(results))
	for _, r := range results {
		entries = append(entries, *r.(*TransitionEntry))
	}

	return entries, nil
}
