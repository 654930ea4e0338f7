package deploy

import (
	"context"
	"log/slog"
)

// Event is emitted on every state transition and for each archived file.
type Event struct {
	State   State
	Message string
	Attrs   []any
}

type Reporter interface {
	Report(Event)
}

// ReporterFunc adapts a plain function to Reporter.
type ReporterFunc func(Event)

func (f ReporterFunc) Report(e Event) { f(e) }

// LogReporter writes events as structured log lines.
type LogReporter struct {
	Logger *slog.Logger
}

func (r LogReporter) Report(e Event) {
	logger := r.Logger
	if logger == nil {
		logger = slog.Default()
	}
	level := slog.LevelInfo
	if e.State == Aborted {
		level = slog.LevelWarn
	}
	attrs := append([]any{"state", e.State.String()}, e.Attrs...)
	logger.Log(context.Background(), level, e.Message, attrs...)
}
