package logging

import (
	"go.uber.org/zap"
)

// Logger defines methods for structured logging.
//
// All methods accept alternating key-value pairs. Implementations must not
// panic and have no way to report failures back to the caller.
type Logger interface {
	Debug(msg string, keysAndValues ...interface{})
	Info(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// zapLogger forwards to the key-value methods of a sugared zap logger.
type zapLogger struct {
	s *zap.SugaredLogger
}

var _ Logger = zapLogger{}

func (z zapLogger) Debug(msg string, kv ...interface{}) { z.s.Debugw(msg, kv...) }
func (z zapLogger) Info(msg string, kv ...interface{})  { z.s.Infow(msg, kv...) }
func (z zapLogger) Warn(msg string, kv ...interface{})  { z.s.Warnw(msg, kv...) }
func (z zapLogger) Error(msg string, kv ...interface{}) { z.s.Errorw(msg, kv...) }

// NewZap adapts a *zap.Logger. A nil logger yields Nop.
func NewZap(l *zap.Logger) Logger {
	if l == nil {
		return Nop()
	}
	return zapLogger{s: l.Sugar()}
}

// NewSugared adapts a *zap.SugaredLogger. A nil logger yields Nop.
func NewSugared(s *zap.SugaredLogger) Logger {
	if s == nil {
		return Nop()
	}
	return zapLogger{s: s}
}

// Nop returns a Logger that discards everything.
func Nop() Logger {
	return zapLogger{s: zap.NewNop().Sugar()}
}

// With returns l annotated with keysAndValues. Zap-backed loggers attach
// them as fields; other loggers get them prepended to every call.
func With(l Logger, keysAndValues ...interface{}) Logger {
	switch z := l.(type) {
	case zapLogger:
		return zapLogger{s: z.s.With(keysAndValues...)}
	default:
		return &prefixed{next: l, kv: keysAndValues}
	}
}

// OrNop returns l, or Nop when l is nil.
func OrNop(l Logger) Logger {
	if l == nil {
		return Nop()
	}
	return l
}

type prefixed struct {
	next Logger
	kv   []interface{}
}

func (p *prefixed) merge(kv []interface{}) []interface{} {
	out := make([]interface{}, 0, len(p.kv)+len(kv))
	out = append(out, p.kv...)
	return append(out, kv...)
}

func (p *prefixed) Debug(msg string, kv ...interface{}) { p.next.Debug(msg, p.merge(kv)...) }
func (p *prefixed) Info(msg string, kv ...interface{})  { p.next.Info(msg, p.merge(kv)...) }
func (p *prefixed) Warn(msg string, kv ...interface{})  { p.next.Warn(msg, p.merge(kv)...) }
func (p *prefixed) Error(msg string, kv ...interface{}) { p.next.Error(msg, p.merge(kv)...) }
