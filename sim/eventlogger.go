package sim

import (
	"context"
	"log/slog"
	"reflect"
)

// EventLogger is a hook that writes every handled event to a logger at debug
// level.
type EventLogger struct {
	logger *slog.Logger
}

// NewEventLogger returns a new EventLogger which will write in to the logger
func NewEventLogger(logger *slog.Logger) *EventLogger {
	return &EventLogger{logger: logger}
}

// Func writes the event information into the logger
func (h *EventLogger) Func(ctx HookCtx) {
	if ctx.Pos != HookPosBeforeEvent {
		return
	}

	evt, ok := ctx.Item.(Event)
	if !ok {
		return
	}

	if !h.logger.Enabled(context.Background(), slog.LevelDebug) {
		return
	}

	attrs := []any{
		"time", float64(evt.Time()),
		"event", reflect.TypeOf(evt).String(),
	}

	if comp, ok := evt.Handler().(Named); ok {
		attrs = append(attrs, "handler", comp.Name())
	}

	h.logger.Debug("event", attrs...)
}
