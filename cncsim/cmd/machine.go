package cmd

import (
	"fmt"

	"github.com/sarchlab/cncsim/cnc"
	"github.com/sarchlab/cncsim/datarecording"
	"github.com/sarchlab/cncsim/sim"
)

// machine is a controller with the hooks that the configuration asks for.
type machine struct {
	*cnc.Controller

	recorder datarecording.DataRecorder
}

func buildMachine(engine sim.Engine, recordPath string) (*machine, error) {
	b := cfg.ControllerBuilder(engine).
		WithHook(cnc.NewTransitionLogger(logger.Logger))

	m := &machine{}

	if recordPath != "" {
		r, err := datarecording.New(recordPath)
		if err != nil {
			return nil, fmt.Errorf("create recording: %w", err)
		}

		logger.Info("recording transitions", "path", recordPath)

		m.recorder = r
		b = b.WithHook(datarecording.NewTransitionRecorder(r))
	}

	m.Controller = b.Build(cfg.Machine.Name)

	return m, nil
}

// close stops ticking and flushes the recording.
func (m *machine) close() error {
	m.Shutdown()

	if m.recorder == nil {
		return nil
	}

	return m.recorder.Close()
}

func recordPath(flag string) string {
	if flag != "" {
		return flag
	}

	return cfg.Record.Path
}
