package cnc

import "github.com/sarchlab/cncsim/sim"

// CycleTiming is the timing of the current cycle.
type CycleTiming struct {
	// StartTime is nil when no cycle has been started since the last stop.
	StartTime              *sim.VTimeInSec `json:"cycleStartTime"`
	ElapsedTime            int             `json:"cycleElapsedTime"`
	EstimatedTimeRemaining int             `json:"estimatedTimeRemaining"`
}

// Snapshot is an immutable copy of everything a view needs to render a
// controller.
type Snapshot struct {
	Controller string         `json:"controller"`
	CycleID    string         `json:"cycleId,omitempty"`
	Operation  OperationKind  `json:"operation,omitempty"`
	State      MachineState   `json:"state"`
	Timing     CycleTiming    `json:"timing"`
	Now        sim.VTimeInSec `json:"now"`
}
