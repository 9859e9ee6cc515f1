// Package cmd provides the command-line interface of cncsim.
package cmd

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"

	"github.com/sarchlab/cncsim/config"
	"github.com/sarchlab/cncsim/logs"
)

var (
	configPath string
	envFile    string
	logLevel   string
	logFile    string
)

// cfg and logger are set up before any subcommand runs.
var (
	cfg    config.Config
	logger *logs.Logger
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "cncsim",
	Short: "cncsim simulates a CNC machine controller.",
	Long: `cncsim simulates a CNC machine controller. It runs machining ` +
		`cycles and canned operations against a simulated machine and ` +
		`shows them on a web dashboard, a terminal dashboard, or as plain ` +
		`progress lines.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configPath, "config", "", "YAML configuration file")
	flags.StringVar(&envFile, "env-file", ".env", "file of environment variables to load")
	flags.StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, or error")
	flags.StringVar(&logFile, "log-file", "", "also write JSON logs into this file")
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		atexit.Exit(1)
	}

	atexit.Exit(0)
}

func setup(cmd *cobra.Command, _ []string) error {
	if err := loadEnvFile(cmd); err != nil {
		return err
	}

	c, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if err := c.ApplyEnv(os.LookupEnv); err != nil {
		return err
	}

	if cmd.Flags().Changed("log-level") {
		c.Log.Level = logLevel
	}

	if cmd.Flags().Changed("log-file") {
		c.Log.File = logFile
	}

	if err := c.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	l, err := logs.New(terminalLogWriter(cmd), logs.Options{
		Level: c.Log.Level,
		File:  c.Log.File,
	})
	if err != nil {
		return err
	}

	atexit.Register(func() { _ = l.Close() })
	slog.SetDefault(l.Logger)

	cfg = c
	logger = l

	return nil
}

// loadEnvFile loads the env file. A missing file is only an error when the
// user asked for it.
func loadEnvFile(cmd *cobra.Command) error {
	if envFile == "" {
		return nil
	}

	err := godotenv.Load(envFile)
	if err == nil {
		return nil
	}

	if errors.Is(err, fs.ErrNotExist) && !cmd.Flags().Changed("env-file") {
		return nil
	}

	return fmt.Errorf("load env file %s: %w", envFile, err)
}

// terminalLogWriter keeps the terminal dashboard free of log lines.
func terminalLogWriter(cmd *cobra.Command) io.Writer {
	if cmd.Name() == tuiCmd.Name() {
		return io.Discard
	}

	return cmd.ErrOrStderr()
}
