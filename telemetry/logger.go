// Package telemetry provides the structured logger used by the stages that
// log (prelude.Printer/PrinterSink and the WebSocket adapters), mirroring
// the call shape of a typed leveled logger
// (WithModule, leveled methods, typed field helpers) over a
// github.com/rs/zerolog backend.
package telemetry

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// Field is one structured key/value pair attached to a log line.
type Field struct {
	key string
	val any
}

// String builds a string field.
func String(key, value string) Field { return Field{key: key, val: value} }

// Int builds an integer field.
func Int(key string, value int) Field { return Field{key: key, val: value} }

// Float64 builds a floating point field.
func Float64(key string, value float64) Field { return Field{key: key, val: value} }

// Bool builds a boolean field.
func Bool(key string, value bool) Field { return Field{key: key, val: value} }

// Err builds an error field under the conventional "error" key.
func Err(err error) Field { return Field{key: "error", val: err} }

// Logger is the leveled, structured logger a logging stage is given.
type Logger interface {
	WithModule(name string) Logger
	Trace(msg string, fields ...Field)
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
}

// Config configures a Logger's backend.
type Config struct {
	Level  string // trace, debug, info, warn, error; default info
	Writer io.Writer
}

type zlogger struct {
	z zerolog.Logger
}

// New builds a Logger over zerolog, writing JSON lines to os.Stderr unless
// cfg.Writer is set.
func New(cfg Config) Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}
	w := cfg.Writer
	if w == nil {
		w = os.Stderr
	}
	z := zerolog.New(w).Level(level).With().Timestamp().Logger()
	return &zlogger{z: z}
}

func (l *zlogger) WithModule(name string) Logger {
	return &zlogger{z: l.z.With().Str("module", name).Logger()}
}

func apply(e *zerolog.Event, fields []Field) *zerolog.Event {
	for _, f := range fields {
		switch v := f.val.(type) {
		case string:
			e = e.Str(f.key, v)
		case int:
			e = e.Int(f.key, v)
		case float64:
			e = e.Float64(f.key, v)
		case bool:
			e = e.Bool(f.key, v)
		case error:
			e = e.AnErr(f.key, v)
		default:
			e = e.Interface(f.key, v)
		}
	}
	return e
}

func (l *zlogger) Trace(msg string, fields ...Field) { apply(l.z.Trace(), fields).Msg(msg) }
func (l *zlogger) Debug(msg string, fields ...Field) { apply(l.z.Debug(), fields).Msg(msg) }
func (l *zlogger) Info(msg string, fields ...Field)  { apply(l.z.Info(), fields).Msg(msg) }
func (l *zlogger) Warn(msg string, fields ...Field)  { apply(l.z.Warn(), fields).Msg(msg) }
func (l *zlogger) Error(msg string, fields ...Field) { apply(l.z.Error(), fields).Msg(msg) }

// Nop returns a Logger that discards everything, for tests and for
// pipelines run without an operator watching.
func Nop() Logger {
	return &zlogger{z: zerolog.Nop()}
}
