// Package tui is a terminal dashboard for a machine controller.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sarchlab/cncsim/cnc"
	"github.com/sarchlab/cncsim/panel"
)

// Machine is the controller that the dashboard shows and drives.
type Machine interface {
	cnc.OperationStarter

	Subscribe(ctx context.Context) (cnc.Snapshot, <-chan cnc.Snapshot)
	Start()
	Pause()
	Stop()
	EmergencyStop()
	Shutdown()
}

type snapshotMsg struct {
	snapshot cnc.Snapshot
	ok       bool
}

type fieldInput struct {
	kind  cnc.OperationKind
	field string
	input textinput.Model
}

const noFocus = -1

// Model is the bubbletea model of the dashboard.
type Model struct {
	machine Machine
	cancel  context.CancelFunc
	updates <-chan cnc.Snapshot

	snapshot cnc.Snapshot
	forms    map[cnc.OperationKind]*cnc.Form
	inputs   []fieldInput
	focus    int
	progress progress.Model
	width    int
	quitting bool
}

// NewModel subscribes to the machine and creates the dashboard. The
// subscription ends when ctx is done or the user quits.
func NewModel(ctx context.Context, machine Machine) Model {
	ctx, cancel := context.WithCancel(ctx)
	current, updates := machine.Subscribe(ctx)

	m := Model{
		machine:  machine,
		cancel:   cancel,
		updates:  updates,
		snapshot: current,
		forms:    cnc.NewForms(),
		focus:    noFocus,
		progress: progress.New(
			progress.WithDefaultGradient(),
			progress.WithWidth(40),
			progress.WithoutPercentage(),
		),
	}

	for _, kind := range cnc.OperationKinds() {
		values := m.forms[kind].Values()

		for _, f := range cnc.Fields(kind) {
			if !f.Editable {
				continue
			}

			input := textinput.New()
			input.Placeholder = f.Label
			input.CharLimit = 16
			input.Width = 8
			input.Prompt = ""
			input.SetValue(panel.FormatFieldValue(values[f.Name]))

			m.inputs = append(m.inputs, fieldInput{
				kind:  kind,
				field: f.Name,
				input: input,
			})
		}
	}

	return m
}

func waitForSnapshotCmd(ch <-chan cnc.Snapshot) tea.Cmd {
	return func() tea.Msg {
		s, ok := <-ch
		return snapshotMsg{snapshot: s, ok: ok}
	}
}

// Init starts listening to the machine.
func (m Model) Init() tea.Cmd {
	return waitForSnapshotCmd(m.updates)
}

// Update handles snapshots and key presses.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case snapshotMsg:
		if !msg.ok {
			return m, nil
		}

		m.snapshot = msg.snapshot

		return m, waitForSnapshotCmd(m.updates)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.progress.Width = max(10, min(60, msg.Width-20))

		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m.quit()
		}

		if m.focus != noFocus {
			return m.updateFocused(msg)
		}

		return m.updateCommand(msg)
	}

	return m, nil
}

func (m Model) updateCommand(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "s":
		m.machine.Start()
	case "p":
		m.machine.Pause()
	case "x":
		m.machine.Stop()
	case "e":
		m.machine.EmergencyStop()
	case "1", "2", "3":
		kinds := cnc.OperationKinds()
		kind := kinds[int(msg.Runes[0]-'1')]
		m.forms[kind].Submit(m.machine)
	case "tab":
		return m.focusOn(0)
	case "q":
		return m.quit()
	}

	return m, nil
}

func (m Model) updateFocused(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyTab:
		return m.focusOn(m.focus + 1)
	case tea.KeyShiftTab:
		return m.focusOn(m.focus - 1)
	case tea.KeyEsc, tea.KeyEnter:
		return m.focusOn(noFocus)
	}

	var cmd tea.Cmd

	fi := &m.inputs[m.focus]
	fi.input, cmd = fi.input.Update(msg)
	_ = m.forms[fi.kind].Set(fi.field, fi.input.Value())

	return m, cmd
}

// focusOn moves the focus to the input at index i. Indices outside the
// inputs leave the inputs and return to command keys.
func (m Model) focusOn(i int) (tea.Model, tea.Cmd) {
	if m.focus != noFocus {
		m.inputs[m.focus].input.Blur()
	}

	if i < 0 || i >= len(m.inputs) {
		m.focus = noFocus
		return m, nil
	}

	m.focus = i

	return m, m.inputs[i].input.Focus()
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	m.quitting = true
	m.machine.Shutdown()
	m.cancel()

	return m, tea.Quit
}

// Snapshot returns the last snapshot received.
func (m Model) Snapshot() cnc.Snapshot {
	return m.snapshot
}

// View renders the dashboard.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	d := panel.Render(m.snapshot, m.forms)

	sections := []string{
		m.viewHeader(d.Header),
		m.viewCycle(d.Cycle),
		lipgloss.JoinHorizontal(lipgloss.Top,
			m.viewMachine(d.Machine),
			m.viewOperations(d.Operations),
		),
		m.viewHelp(),
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) viewHeader(h panel.Header) string {
	dot := lipgloss.NewStyle().
		Foreground(indicatorColors[h.Indicator]).
		Render("●")

	return fmt.Sprintf("%s  %s %s   %s",
		titleStyle.Render(h.Title),
		dot,
		valueStyle.Render(h.Status),
		dangerStyle.Render("[e] "+h.EmergencyStop.Label),
	)
}

func (m Model) viewCycle(c panel.CycleControl) string {
	buttons := strings.Join([]string{
		keyLabel("s", c.Start),
		keyLabel("p", c.Pause),
		keyLabel("x", c.Stop),
	}, "  ")

	body := lipgloss.JoinVertical(lipgloss.Left,
		panelTitleStyle.Render("Cycle Control"),
		buttons,
		field("Status", c.CycleStatus)+"   "+field("Progress", c.ProgressText),
		m.progress.ViewAs(float64(c.Progress)/100),
		field("Elapsed Time", c.Elapsed)+"   "+field("Remaining Time", c.Remaining),
	)

	return panelStyle.Render(body)
}

func (m Model) viewMachine(s panel.MachineStatus) string {
	body := lipgloss.JoinVertical(lipgloss.Left,
		panelTitleStyle.Render("Machine Status"),
		field("Temperature", s.Temperature),
		field("Spindle Speed", s.SpindleSpeed),
		field("Feed Rate", s.FeedRate),
		field("Current Tool", s.Tool),
		field("X", s.X)+"  "+field("Y", s.Y)+"  "+field("Z", s.Z),
	)

	return panelStyle.Render(body)
}

func (m Model) viewOperations(ops []panel.OperationForm) string {
	lines := []string{panelTitleStyle.Render("Advanced Operations")}

	for i, op := range ops {
		lines = append(lines, keyLabel(fmt.Sprint(i+1), op.Submit))

		var fields []string
		for _, fi := range m.inputs {
			if fi.kind != op.Kind {
				continue
			}

			fields = append(fields,
				labelStyle.Render(fieldLabel(op, fi.field)+":")+" "+fi.input.View())
		}

		lines = append(lines, "  "+strings.Join(fields, "  "))
	}

	return panelStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func (m Model) viewHelp() string {
	if m.focus != noFocus {
		return helpStyle.Render("tab next field • shift+tab previous • enter/esc done")
	}

	return helpStyle.Render("s start • p pause • x stop • e e-stop • " +
		"tab edit • 1/2/3 run operation • q quit")
}

func keyLabel(key string, b panel.Button) string {
	label := fmt.Sprintf("[%s] %s", key, b.Label)
	if !b.Enabled {
		return disabledKeyStyle.Render(label)
	}

	return enabledKeyStyle.Render(label)
}

func field(label, value string) string {
	return labelStyle.Render(label+": ") + valueStyle.Render(value)
}

func fieldLabel(op panel.OperationForm, name string) string {
	for _, f := range op.Fields {
		if f.Name == name {
			return f.Label
		}
	}

	return name
}
