package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Options control how New builds the zerolog backed logger.
type Options struct {
	Level  string
	Pretty bool
	Output io.Writer
}

// ZerologLogger adapts a zerolog.Logger to the Logger interface.
type ZerologLogger struct {
	base zerolog.Logger
}

var _ Logger = (*ZerologLogger)(nil)

// New returns a zerolog logger writing JSON lines, or console output when
// Pretty is set.
func New(opts Options) *ZerologLogger {
	out := opts.Output
	if out == nil {
		out = os.Stdout
	}
	if opts.Pretty {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}
	level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(opts.Level)))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	return NewZerolog(zerolog.New(out).Level(level).With().Timestamp().Logger())
}

// NewZerolog wraps an existing zerolog logger.
func NewZerolog(base zerolog.Logger) *ZerologLogger {
	return &ZerologLogger{base: base}
}

// Zerolog exposes the underlying logger for libraries that want it directly.
func (l *ZerologLogger) Zerolog() zerolog.Logger {
	return l.base
}

func (l *ZerologLogger) With(fields ...Field) Logger {
	if len(fields) == 0 {
		return l
	}
	ctx := l.base.With()
	for _, f := range fields {
		ctx = ctx.Interface(f.Key, fieldValue(f.Value))
	}
	return &ZerologLogger{base: ctx.Logger()}
}

func (l *ZerologLogger) Debug(msg string, fields ...Field) { l.write(l.base.Debug(), msg, fields) }
func (l *ZerologLogger) Info(msg string, fields ...Field)  { l.write(l.base.Info(), msg, fields) }
func (l *ZerologLogger) Warn(msg string, fields ...Field)  { l.write(l.base.Warn(), msg, fields) }
func (l *ZerologLogger) Error(msg string, fields ...Field) { l.write(l.base.Error(), msg, fields) }

func (l *ZerologLogger) write(evt *zerolog.Event, msg string, fields []Field) {
	if evt == nil {
		return
	}
	for _, f := range fields {
		if err, ok := f.Value.(error); ok {
			evt = evt.AnErr(f.Key, err)
			continue
		}
		evt = evt.Interface(f.Key, f.Value)
	}
	evt.Msg(msg)
}

// zerolog renders error values as {} through Interface.
func fieldValue(v any) any {
	if err, ok := v.(error); ok && err != nil {
		return err.Error()
	}
	return v
}
