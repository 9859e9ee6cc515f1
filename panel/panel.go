// Package panel renders controller snapshots into view models that the web
// and terminal dashboards draw. Rendering is pure; the panels never hold
// state and never talk to the controller.
package panel

import (
	"fmt"
	"math"
	"strconv"

	"github.com/sarchlab/cncsim/cnc"
)

// Color is the color of the status indicator.
type Color string

// Indicator colors.
const (
	Yellow Color = "yellow"
	Green  Color = "green"
	Red    Color = "red"
	Gray   Color = "gray"
)

// Button is a control that may be disabled.
type Button struct {
	Label   string `json:"label"`
	Enabled bool   `json:"enabled"`
}

// Header shows the overall status and the emergency stop button.
type Header struct {
	Title         string `json:"title"`
	Indicator     Color  `json:"indicator"`
	Status        string `json:"status"`
	EmergencyStop Button `json:"emergencyStop"`
}

// CycleControl shows the cycle buttons, status, and timing.
type CycleControl struct {
	Start        Button `json:"start"`
	Pause        Button `json:"pause"`
	Stop         Button `json:"stop"`
	CycleStatus  string `json:"cycleStatus"`
	Progress     int    `json:"progress"`
	ProgressText string `json:"progressText"`
	Elapsed      string `json:"elapsed"`
	Remaining    string `json:"remaining"`
}

// MachineStatus shows the machine readings.
type MachineStatus struct {
	Temperature  string `json:"temperature"`
	SpindleSpeed string `json:"spindleSpeed"`
	FeedRate     string `json:"feedRate"`
	Tool         string `json:"tool"`
	X            string `json:"x"`
	Y            string `json:"y"`
	Z            string `json:"z"`
}

// FieldView is one editable parameter of an operation form.
type FieldView struct {
	Name  string `json:"name"`
	Label string `json:"label"`
	Value string `json:"value"`
}

// OperationForm is the form that launches one canned operation.
type OperationForm struct {
	Kind   cnc.OperationKind `json:"kind"`
	Title  string            `json:"title"`
	Fields []FieldView       `json:"fields"`
	Submit Button            `json:"submit"`
}

// Dashboard is the full view model of a controller.
type Dashboard struct {
	Header     Header          `json:"header"`
	Cycle      CycleControl    `json:"cycle"`
	Machine    MachineStatus   `json:"machine"`
	Operations []OperationForm `json:"operations"`
}

// Render renders a snapshot and the operation forms. Operations without a
// form show their default parameters.
func Render(s cnc.Snapshot, forms map[cnc.OperationKind]*cnc.Form) Dashboard {
	d := Dashboard{
		Header:  RenderHeader(s.State),
		Cycle:   RenderCycleControl(s.State, s.Timing),
		Machine: RenderMachineStatus(s.State),
	}

	for _, kind := range cnc.OperationKinds() {
		values := cnc.DefaultParams(kind)
		if f, ok := forms[kind]; ok && f != nil {
			values = f.Values()
		}

		d.Operations = append(d.Operations, RenderOperationForm(kind, values, s.State))
	}

	return d
}

// RenderHeader renders the header.
func RenderHeader(state cnc.MachineState) Header {
	return Header{
		Title:         "CNC Machine Control",
		Indicator:     IndicatorColor(state.Status),
		Status:        string(state.Status),
		EmergencyStop: Button{Label: "EMERGENCY STOP", Enabled: true},
	}
}

// IndicatorColor maps a machine status to the color of its indicator.
func IndicatorColor(status cnc.Status) Color {
	switch status {
	case cnc.StatusIdle:
		return Yellow
	case cnc.StatusRunning:
		return Green
	case cnc.StatusEStop:
		return Red
	default:
		return Gray
	}
}

// RenderCycleControl renders the cycle control panel.
func RenderCycleControl(
	state cnc.MachineState,
	timing cnc.CycleTiming,
) CycleControl {
	return CycleControl{
		Start:        Button{Label: "Cycle Start", Enabled: cnc.CanStart(state)},
		Pause:        Button{Label: "Pause", Enabled: cnc.CanPause(state)},
		Stop:         Button{Label: "Stop", Enabled: cnc.CanStop(state)},
		CycleStatus:  string(state.CycleStatus),
		Progress:     state.ProgramProgress,
		ProgressText: fmt.Sprintf("%d%%", state.ProgramProgress),
		Elapsed:      cnc.FormatTime(timing.ElapsedTime),
		Remaining:    cnc.FormatTime(timing.EstimatedTimeRemaining),
	}
}

// RenderMachineStatus renders the machine status panel.
func RenderMachineStatus(state cnc.MachineState) MachineStatus {
	return MachineStatus{
		Temperature:  fmt.Sprintf("%.1f°C", state.Temperature),
		SpindleSpeed: formatNumber(state.SpindleSpeed) + " RPM",
		FeedRate:     formatNumber(state.FeedRate) + " mm/min",
		Tool:         fmt.Sprintf("T%d", state.CurrentTool),
		X:            fmt.Sprintf("%.3f", state.Position.X),
		Y:            fmt.Sprintf("%.3f", state.Position.Y),
		Z:            fmt.Sprintf("%.3f", state.Position.Z),
	}
}

// RenderOperationForm renders the editable fields of an operation.
func RenderOperationForm(
	kind cnc.OperationKind,
	values cnc.Params,
	state cnc.MachineState,
) OperationForm {
	form := OperationForm{
		Kind:   kind,
		Title:  kind.Title(),
		Fields: []FieldView{},
		Submit: Button{
			Label:   "Start " + kind.Title(),
			Enabled: cnc.CanStartOperation(state),
		},
	}

	for _, f := range cnc.Fields(kind) {
		if !f.Editable {
			continue
		}

		form.Fields = append(form.Fields, FieldView{
			Name:  f.Name,
			Label: f.Label,
			Value: FormatFieldValue(values[f.Name]),
		})
	}

	return form
}

// FormatFieldValue renders a parameter the way an input box shows it. NaN
// renders as an empty box.
func FormatFieldValue(v float64) string {
	if math.IsNaN(v) {
		return ""
	}

	return formatNumber(v)
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
