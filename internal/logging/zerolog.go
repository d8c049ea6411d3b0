package logging

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// ZeroLogger adapts zerolog to Logger.
type ZeroLogger struct {
	l zerolog.Logger
}

func NewZeroLogger(l zerolog.Logger) *ZeroLogger { return &ZeroLogger{l: l} }

// New builds a logger writing to w. format is "json" or "console"; level is
// any zerolog level name.
func New(w io.Writer, level, format string) (*ZeroLogger, error) {
	lvl := zerolog.InfoLevel
	if s := strings.TrimSpace(level); s != "" {
		parsed, err := zerolog.ParseLevel(strings.ToLower(s))
		if err != nil {
			return nil, fmt.Errorf("log level %q: %w", level, err)
		}
		lvl = parsed
	}
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "console":
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	case "json":
	default:
		return nil, fmt.Errorf("log format %q: want console or json", format)
	}
	l := zerolog.New(w).Level(lvl).With().Timestamp().Logger()
	return NewZeroLogger(l), nil
}

func (z *ZeroLogger) Debug(ctx context.Context, msg string, args ...any) {
	z.emit(ctx, z.l.Debug(), msg, args)
}

func (z *ZeroLogger) Info(ctx context.Context, msg string, args ...any) {
	z.emit(ctx, z.l.Info(), msg, args)
}

func (z *ZeroLogger) Warn(ctx context.Context, msg string, args ...any) {
	z.emit(ctx, z.l.Warn(), msg, args)
}

func (z *ZeroLogger) Error(ctx context.Context, msg string, args ...any) {
	z.emit(ctx, z.l.Error(), msg, args)
}

func (z *ZeroLogger) With(args ...any) Logger {
	return &ZeroLogger{l: z.l.With().Fields(args).Logger()}
}

func (z *ZeroLogger) emit(ctx context.Context, ev *zerolog.Event, msg string, args []any) {
	if ev == nil {
		return
	}
	if id := RequestID(ctx); id != "" {
		ev = ev.Str("request_id", id)
	}
	if len(args) > 0 {
		ev = ev.Fields(args)
	}
	ev.Msg(msg)
}
