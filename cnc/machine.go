// Package cnc simulates the cycle state machine of a CNC machine controller.
//
// A Controller owns one MachineState. Operators start, pause and stop cycles,
// trigger an emergency stop, and launch canned operations. While a cycle runs,
// the Controller ticks once per simulated second and derives the program
// progress from the elapsed time. Views read immutable Snapshots and never
// mutate the state directly.
package cnc

// Status is the overall status of the machine.
type Status string

// Machine statuses. Any other value is treated as unknown.
const (
	StatusIdle    Status = "IDLE"
	StatusRunning Status = "RUNNING"
	StatusEStop   Status = "E-STOP"
)

// CycleStatus is the status of the current program cycle.
type CycleStatus string

// Cycle statuses.
const (
	CycleStopped CycleStatus = "STOPPED"
	CycleRunning CycleStatus = "RUNNING"
	CyclePaused  CycleStatus = "PAUSED"
)

// Position is the machine position in machine coordinates.
type Position struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
	Z float64 `json:"z" yaml:"z"`
}

// Coolant tells which coolant channels are on.
type Coolant struct {
	Flood bool `json:"flood"`
	Mist  bool `json:"mist"`
}

// Alarm is an alarm raised by the controller.
type Alarm struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// MachineState is the full state of the simulated machine.
//
// Coolant, ChipConveyor, SingleBlock, OptionalStop, BlockDelete, Alarms and
// ProgramCounter are carried for parity with a real controller. The
// simulation never reads or changes them.
type MachineState struct {
	Position        Position    `json:"position"`
	Status          Status      `json:"status"`
	CycleStatus     CycleStatus `json:"cycleStatus"`
	ProgramCounter  int         `json:"programCounter"`
	ProgramProgress int         `json:"programProgress"`
	SpindleSpeed    float64     `json:"spindleSpeed"`
	FeedRate        float64     `json:"feedRate"`
	Temperature     float64     `json:"temperature"`
	CurrentTool     int         `json:"currentTool"`
	Coolant         Coolant     `json:"coolant"`
	ChipConveyor    string      `json:"chipConveyor"`
	SingleBlock     bool        `json:"singleBlock"`
	OptionalStop    bool        `json:"optionalStop"`
	BlockDelete     bool        `json:"blockDelete"`
	Alarms          []Alarm     `json:"alarms"`
}

// DefaultMachineState returns the state of a machine that was just switched
// on.
func DefaultMachineState() MachineState {
	return MachineState{
		Status:       StatusIdle,
		CycleStatus:  CycleStopped,
		Temperature:  25.0,
		CurrentTool:  1,
		ChipConveyor: "OFF",
		Alarms:       []Alarm{},
	}
}

func (s MachineState) clone() MachineState {
	c := s
	c.Alarms = append([]Alarm{}, s.Alarms...)

	return c
}

// CanStart tells if a cycle can be started from the state.
func CanStart(s MachineState) bool {
	return s.Status != StatusEStop && s.CycleStatus != CycleRunning
}

// CanPause tells if the running cycle can be paused.
func CanPause(s MachineState) bool {
	return s.CycleStatus == CycleRunning
}

// CanStop tells if there is a cycle to stop.
func CanStop(s MachineState) bool {
	return s.CycleStatus != CycleStopped
}

// CanStartOperation tells if a canned operation can be launched.
func CanStartOperation(s MachineState) bool {
	return s.Status == StatusIdle
}
