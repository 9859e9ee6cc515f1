// Package config loads the configuration of the simulator.
//
// Configuration comes from three layers. Default carries the constants of the
// simulated machine, a YAML file overrides them, and CNCSIM_* environment
// variables override the file. Command line flags are applied last by the
// caller.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/sarchlab/cncsim/cnc"
	"github.com/sarchlab/cncsim/sim"
)

// Environment variables that override the configuration file.
const (
	EnvPort     = "CNCSIM_PORT"
	EnvLogLevel = "CNCSIM_LOG_LEVEL"
	EnvRecord   = "CNCSIM_RECORD"
)

// Config is the configuration of the simulator.
type Config struct {
	Machine MachineConfig `yaml:"machine"`
	Cycle   CycleConfig   `yaml:"cycle"`
	Monitor MonitorConfig `yaml:"monitor"`
	Log     LogConfig     `yaml:"log"`
	Record  RecordConfig  `yaml:"record"`
}

// MachineConfig sets the state of the machine when it is switched on.
type MachineConfig struct {
	Name         string       `yaml:"name"`
	Position     cnc.Position `yaml:"position"`
	Temperature  float64      `yaml:"temperature"`
	SpindleSpeed float64      `yaml:"spindle_speed"`
	FeedRate     float64      `yaml:"feed_rate"`
	CurrentTool  int          `yaml:"current_tool"`
}

// CycleConfig sets how cycles advance.
type CycleConfig struct {
	TickHz             float64        `yaml:"tick_hz"`
	ProgressBaseline   int            `yaml:"progress_baseline"`
	OperationDurations map[string]int `yaml:"operation_durations"`
}

// MonitorConfig configures the web monitor.
type MonitorConfig struct {
	Port int  `yaml:"port"`
	Open bool `yaml:"open"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file,omitempty"`
}

// RecordConfig configures transition recording. An empty path disables
// recording.
type RecordConfig struct {
	Path string `yaml:"path,omitempty"`
}

// Default returns the default configuration.
func Default() Config {
	state := cnc.DefaultMachineState()

	durations := make(map[string]int)
	for k, v := range cnc.DefaultOperationDurations() {
		durations[string(k)] = v
	}

	return Config{
		Machine: MachineConfig{
			Name:         "Machine",
			Position:     state.Position,
			Temperature:  state.Temperature,
			SpindleSpeed: state.SpindleSpeed,
			FeedRate:     state.FeedRate,
			CurrentTool:  state.CurrentTool,
		},
		Cycle: CycleConfig{
			TickHz:             1,
			ProgressBaseline:   cnc.DefaultOperationDuration,
			OperationDurations: durations,
		},
		Monitor: MonitorConfig{
			Port: 0,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads a YAML file on top of the default configuration. An empty path
// returns the default configuration.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}

	return cfg, nil
}

// ApplyEnv overrides the configuration with the CNCSIM_* variables returned
// by lookup. Pass os.LookupEnv to use the process environment.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvPort); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvPort, err)
		}

		c.Monitor.Port = port
	}

	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		c.Log.Level = v
	}

	if v, ok := lookup(EnvRecord); ok {
		c.Record.Path = v
	}

	return nil
}

// Validate checks that the configuration can build a controller.
func (c Config) Validate() error {
	var errs []error

	if err := sim.ValidateName(c.Machine.Name); err != nil {
		errs = append(errs, fmt.Errorf("machine.name: %w", err))
	}

	if c.Machine.CurrentTool < 1 {
		errs = append(errs, fmt.Errorf("machine.current_tool must be positive, got %d",
			c.Machine.CurrentTool))
	}

	if c.Cycle.TickHz <= 0 {
		errs = append(errs, fmt.Errorf("cycle.tick_hz must be positive, got %g",
			c.Cycle.TickHz))
	}

	if c.Cycle.ProgressBaseline <= 0 {
		errs = append(errs, fmt.Errorf("cycle.progress_baseline must be positive, got %d",
			c.Cycle.ProgressBaseline))
	}

	for name, d := range c.Cycle.OperationDurations {
		if _, err := cnc.ParseOperationKind(name); err != nil {
			errs = append(errs, fmt.Errorf("cycle.operation_durations: %w", err))
		}

		if d < 0 {
			errs = append(errs, fmt.Errorf("cycle.operation_durations.%s must not be negative", name))
		}
	}

	if c.Monitor.Port < 0 || c.Monitor.Port > 65535 {
		errs = append(errs, fmt.Errorf("monitor.port out of range: %d", c.Monitor.Port))
	}

	return errors.Join(errs...)
}

// InitialState returns the machine state that the configuration describes.
func (c Config) InitialState() cnc.MachineState {
	s := cnc.DefaultMachineState()
	s.Position = c.Machine.Position
	s.Temperature = c.Machine.Temperature
	s.SpindleSpeed = c.Machine.SpindleSpeed
	s.FeedRate = c.Machine.FeedRate
	s.CurrentTool = c.Machine.CurrentTool

	return s
}

// TickFreq returns the tick frequency of running cycles.
func (c Config) TickFreq() sim.Freq {
	return sim.Freq(c.Cycle.TickHz)
}

// ControllerBuilder returns a builder set up from the configuration.
func (c Config) ControllerBuilder(engine sim.Engine) cnc.Builder {
	durations := make(map[cnc.OperationKind]int)
	for k, v := range c.Cycle.OperationDurations {
		durations[cnc.OperationKind(k)] = v
	}

	return cnc.MakeBuilder().
		WithEngine(engine).
		WithTickFreq(c.TickFreq()).
		WithInitialState(c.InitialState()).
		WithProgressBaseline(c.Cycle.ProgressBaseline).
		WithOperationDurations(durations)
}
