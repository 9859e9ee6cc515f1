// Package logs builds the structured logger of the simulator.
package logs

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	slogmulti "github.com/samber/slog-multi"
)

// Options configures a Logger.
type Options struct {
	// Level is one of debug, info, warn, and error.
	Level string

	// File receives the records as JSON lines when set. The file is appended.
	File string
}

// Logger is a slog.Logger that writes text to a terminal and, optionally,
// JSON to a file. The level can be changed after creation.
type Logger struct {
	*slog.Logger

	Level *slog.LevelVar
	file  *os.File
}

// New creates a Logger that writes text records into w.
func New(w io.Writer, opts Options) (*Logger, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, err
	}

	l := &Logger{Level: new(slog.LevelVar)}
	l.Level.Set(level)

	handlers := []slog.Handler{
		slog.NewTextHandler(w, &slog.HandlerOptions{Level: l.Level}),
	}

	if opts.File != "" {
		f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}

		l.file = f
		handlers = append(handlers,
			slog.NewJSONHandler(f, &slog.HandlerOptions{Level: l.Level}))
	}

	l.Logger = slog.New(slogmulti.Fanout(handlers...))

	return l, nil
}

// Close closes the log file, if any.
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}

	return l.file.Close()
}

// ParseLevel converts a level name into a slog.Level. An empty name means
// info.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", name)
	}
}
