package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/browser"
	"github.com/spf13/cobra"

	"github.com/sarchlab/cncsim/monitoring"
	"github.com/sarchlab/cncsim/sim"
)

var (
	servePort   int
	serveOpen   bool
	serveRecord string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the machine in real time behind the web dashboard.",
	Long: `Run the machine in real time and serve the dashboard over HTTP. ` +
		`The server runs until it receives an interrupt.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if cmd.Flags().Changed("port") {
			cfg.Monitor.Port = servePort
		}

		if cmd.Flags().Changed("open") {
			cfg.Monitor.Open = serveOpen
		}

		return serve(cmd.Context())
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0,
		"port of the web dashboard, 0 picks a free port")
	serveCmd.Flags().BoolVar(&serveOpen, "open", false,
		"open the dashboard in a browser")
	serveCmd.Flags().StringVar(&serveRecord, "record", "",
		"record transitions into this SQLite file")

	rootCmd.AddCommand(serveCmd)
}

func serve(ctx context.Context) error {
	sim.UseParallelIDGenerator()

	engine := sim.NewRealTimeEngine()
	engine.AcceptHook(sim.NewEventLogger(logger.Logger))

	m, err := buildMachine(engine, recordPath(serveRecord))
	if err != nil {
		return err
	}

	monitor := monitoring.NewMonitor().
		WithPortNumber(cfg.Monitor.Port).
		WithLogger(logger.Logger)
	monitor.RegisterEngine(engine)
	monitor.RegisterMachine(m.Controller)

	if err := monitor.StartServer(); err != nil {
		_ = m.close()
		return err
	}

	if cfg.Monitor.Open {
		if err := browser.OpenURL(monitor.URL()); err != nil {
			logger.Warn("cannot open browser", "error", err)
		}
	}

	go func() {
		if err := engine.Run(); err != nil {
			logger.Error("engine stopped", "error", err)
		}
	}()

	if ctx == nil {
		ctx = context.Background()
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(), 5*time.Second)
	defer cancel()

	if err := monitor.Shutdown(shutdownCtx); err != nil {
		logger.Warn("monitor shutdown", "error", err)
	}

	engine.Stop()
	engine.Finished()

	return m.close()
}
