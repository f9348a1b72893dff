package log

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	gperr "github.com/gpleiss/gpwrapper/pkg/errors"
)

// ZerologLogger is a zerolog-backed implementation of the Logger interface.
type ZerologLogger struct {
	l     zerolog.Logger
	level Level
}

// NewZerologLogger creates a ZerologLogger writing JSON records to w.
func NewZerologLogger(w io.Writer, level Level) *ZerologLogger {
	zl := zerolog.New(w).With().Timestamp().Logger()
	return &ZerologLogger{l: zl, level: level}
}

func (z *ZerologLogger) Debug(msg string, fields ...any) {
	if z.level <= LevelDebug {
		z.emit(z.l.Debug(), msg, fields)
	}
}

func (z *ZerologLogger) Info(msg string, fields ...any) {
	if z.level <= LevelInfo {
		z.emit(z.l.Info(), msg, fields)
	}
}

func (z *ZerologLogger) Warn(msg string, fields ...any) {
	if z.level <= LevelWarn {
		z.emit(z.l.Warn(), msg, fields)
	}
}

func (z *ZerologLogger) Error(msg string, fields ...any) {
	if z.level <= LevelError {
		z.emit(z.l.Error(), msg, fields)
	}
}

func (z *ZerologLogger) With(fields ...any) Logger {
	ctx := z.l.With()
	for i := 0; i+1 < len(fields); i += 2 {
		ctx = ctx.Interface(fmt.Sprintf("%v", fields[i]), fields[i+1])
	}
	return &ZerologLogger{l: ctx.Logger(), level: z.level}
}

func (z *ZerologLogger) Enabled(_ context.Context, level Level) bool {
	return z.level <= level
}

// emit attaches the structured fields to the event. Values implementing
// zerolog.LogObjectMarshaler (all library error and warning types) are
// logged as nested objects.
func (z *ZerologLogger) emit(e *zerolog.Event, msg string, fields []any) {
	for i := 0; i+1 < len(fields); i += 2 {
		key := fmt.Sprintf("%v", fields[i])
		switch v := fields[i+1].(type) {
		case zerolog.LogObjectMarshaler:
			e = e.Object(key, v)
		case error:
			e = e.AnErr(key, v)
		default:
			e = e.Interface(key, v)
		}
	}
	e.Msg(msg)
}

// InstallWarningSink routes library warnings (ConvergenceWarning and
// friends) through the given logger as structured records.
func InstallWarningSink(l Logger) {
	gperr.SetZerologWarnFunc(func(warning error) {
		l.Warn("gpwrapper warning", ErrAttrKey, warning)
	})
}
