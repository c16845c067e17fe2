// Package log provides a small structured logging facade for the pipeline,
// backed by zerolog. Components take a Logger so tests can capture output
// and the CLI can control the level in one place.
package log

import (
	"io"
	"os"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// Logger is the minimal structured logging interface used throughout the
// pipeline. Fields are alternating key/value pairs, slog style.
type Logger interface {
	Debug(msg string, fields ...any)
	Info(msg string, fields ...any)
	Warn(msg string, fields ...any)
	Error(msg string, fields ...any)

	// With returns a child logger with the given fields attached to every
	// subsequent event.
	With(fields ...any) Logger
}

type zerologLogger struct {
	zl zerolog.Logger
}

// New creates a Logger writing JSON events to w at the given level.
// Unknown level strings fall back to info.
func New(w io.Writer, level string) Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	zl := zerolog.New(w).Level(lvl).With().Timestamp().Logger()
	return &zerologLogger{zl: zl}
}

func (l *zerologLogger) Debug(msg string, fields ...any) { l.emit(l.zl.Debug(), msg, fields) }
func (l *zerologLogger) Info(msg string, fields ...any)  { l.emit(l.zl.Info(), msg, fields) }
func (l *zerologLogger) Warn(msg string, fields ...any)  { l.emit(l.zl.Warn(), msg, fields) }
func (l *zerologLogger) Error(msg string, fields ...any) { l.emit(l.zl.Error(), msg, fields) }

func (l *zerologLogger) With(fields ...any) Logger {
	ctx := l.zl.With()
	for i := 0; i+1 < len(fields); i += 2 {
		key, ok := fields[i].(string)
		if !ok {
			continue
		}
		ctx = ctx.Interface(key, fields[i+1])
	}
	return &zerologLogger{zl: ctx.Logger()}
}

func (l *zerologLogger) emit(event *zerolog.Event, msg string, fields []any) {
	for i := 0; i+1 < len(fields); i += 2 {
		key, ok := fields[i].(string)
		if !ok {
			continue
		}
		switch v := fields[i+1].(type) {
		case error:
			// Marshalable error types contribute their structured fields
			// in addition to the message.
			if obj, ok := v.(zerolog.LogObjectMarshaler); ok {
				event = event.Object(key, obj)
			} else {
				event = event.AnErr(key, v)
			}
		default:
			event = event.Interface(key, v)
		}
	}
	event.Msg(msg)
}

var (
	defaultMu     sync.RWMutex
	defaultLogger Logger = New(os.Stderr, "info")
)

// SetDefault replaces the process-wide default logger.
func SetDefault(l Logger) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultLogger = l
}

// Default returns the process-wide default logger.
func Default() Logger {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultLogger
}

// Named returns the default logger with a component field attached.
func Named(component string) Logger {
	return Default().With("component", component)
}

// Nop returns a logger that discards everything. Handy in tests.
func Nop() Logger {
	return &zerologLogger{zl: zerolog.Nop()}
}
