package errors

import (
	"context"
	"log/slog"
)

// LogHandler writes reports as slog records at error level. It is the
// handler installed until SetHandler replaces it.
type LogHandler struct {
	// Logger defaults to slog.Default().
	Logger *slog.Logger
	// Verbose adds the captured stack as a "stack" attribute.
	Verbose bool
}

func (h *LogHandler) HandleError(err *UIError) {
	if err == nil {
		return
	}
	h.log("uikit error", err.StackTrace,
		slog.String("op", err.Op),
		slog.String("kind", err.Kind.String()),
		slog.Any("err", err.Err))
}

func (h *LogHandler) HandlePanic(err *PanicError) {
	if err == nil {
		return
	}
	h.log("uikit panic", err.StackTrace,
		slog.String("op", err.Op),
		slog.Any("value", err.Value))
}

func (h *LogHandler) log(msg, stack string, attrs ...slog.Attr) {
	logger := h.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if h.Verbose && stack != "" {
		attrs = append(attrs, slog.String("stack", stack))
	}
	logger.LogAttrs(context.Background(), slog.LevelError, msg, attrs...)
}
