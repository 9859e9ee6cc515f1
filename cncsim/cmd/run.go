package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/sarchlab/cncsim/cnc"
	"github.com/sarchlab/cncsim/sim"
)

var (
	runOperation   string
	runSeconds     int
	runReportEvery int
	runRecord      string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one cycle headless and print its progress.",
	Long: `Run one cycle on simulated time without waiting for the wall ` +
		`clock. Without --operation a plain cycle is started, otherwise ` +
		`the named operation is started with its default parameters.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if runSeconds <= 0 {
			return fmt.Errorf("--seconds must be positive, got %d", runSeconds)
		}

		if runReportEvery <= 0 {
			return fmt.Errorf(
				"--report-every must be positive, got %d", runReportEvery)
		}

		return runHeadless(cmd.OutOrStdout())
	},
}

func init() {
	runCmd.Flags().StringVar(&runOperation, "operation", "",
		"operation to start: threading, pocket, or drilling")
	runCmd.Flags().IntVar(&runSeconds, "seconds", cnc.DefaultOperationDuration,
		"simulated seconds to run")
	runCmd.Flags().IntVar(&runReportEvery, "report-every", 30,
		"simulated seconds between progress lines")
	runCmd.Flags().StringVar(&runRecord, "record", "",
		"record transitions into this SQLite file")

	rootCmd.AddCommand(runCmd)
}

func runHeadless(out io.Writer) error {
	sim.UseSequentialIDGenerator()

	engine := sim.NewSerialEngine()

	m, err := buildMachine(engine, recordPath(runRecord))
	if err != nil {
		return err
	}

	if runOperation == "" {
		m.Start()
	} else {
		kind, err := cnc.ParseOperationKind(runOperation)
		if err != nil {
			_ = m.close()
			return err
		}

		cnc.NewForm(kind).Submit(m)
	}

	report(out, m.Snapshot())

	for t := runReportEvery; ; t += runReportEvery {
		if t > runSeconds {
			t = runSeconds
		}

		if err := engine.RunUntil(sim.VTimeInSec(t)); err != nil {
			_ = m.close()
			return err
		}

		report(out, m.Snapshot())

		if t == runSeconds {
			break
		}
	}

	engine.Finished()
	summarize(out, m.Snapshot())

	return m.close()
}

func report(out io.Writer, s cnc.Snapshot) {
	fmt.Fprintf(out, "%s  %-7s %-7s %3d%%  elapsed %s  remaining %s\n",
		cnc.FormatTime(int(s.Now)),
		s.State.Status,
		s.State.CycleStatus,
		s.State.ProgramProgress,
		cnc.FormatTime(s.Timing.ElapsedTime),
		cnc.FormatTime(s.Timing.EstimatedTimeRemaining),
	)
}

func summarize(out io.Writer, s cnc.Snapshot) {
	op := "cycle"
	if s.Operation != "" {
		op = s.Operation.Title()
	}

	fmt.Fprintf(out, "%s %s finished at %d%% after %s\n",
		s.Controller, op, s.State.ProgramProgress,
		cnc.FormatTime(s.Timing.ElapsedTime))
}
