package cmd

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/sarchlab/cncsim/sim"
	"github.com/sarchlab/cncsim/tui"
)

var tuiRecord string

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Run the machine in real time on a terminal dashboard.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runTUI(cmd.Context())
	},
}

func init() {
	tuiCmd.Flags().StringVar(&tuiRecord, "record", "",
		"record transitions into this SQLite file")

	rootCmd.AddCommand(tuiCmd)
}

func runTUI(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	sim.UseParallelIDGenerator()

	engine := sim.NewRealTimeEngine()
	engine.AcceptHook(sim.NewEventLogger(logger.Logger))

	m, err := buildMachine(engine, recordPath(tuiRecord))
	if err != nil {
		return err
	}

	go func() {
		if err := engine.Run(); err != nil {
			logger.Error("engine stopped", "error", err)
		}
	}()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(tui.NewModel(ctx, m), tea.WithAltScreen())
	_, runErr := p.Run()

	engine.Stop()
	engine.Finished()

	if err := m.close(); err != nil && runErr == nil {
		return err
	}

	return runErr
}
