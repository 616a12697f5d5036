package core

import "go.uber.org/zap"

// Logger is the minimal structured logging surface the service emits to.
// Keys and values alternate, sugared style.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Warn(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
}

// noopLogger discards all output; it is the default when no logger is configured.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// NewZapLogger adapts a zap logger to the service Logger interface.
func NewZapLogger(l *zap.Logger) Logger {
	return zapLogger{sugar: l.Sugar()}
}

type zapLogger struct {
	sugar *zap.SugaredLogger
}

func (z zapLogger) Debug(msg string, keysAndValues ...any) { z.sugar.Debugw(msg, keysAndValues...) }
func (z zapLogger) Info(msg string, keysAndValues ...any)  { z.sugar.Infow(msg, keysAndValues...) }
func (z zapLogger) Warn(msg string, keysAndValues ...any)  { z.sugar.Warnw(msg, keysAndValues...) }
func (z zapLogger) Error(msg string, keysAndValues ...any) { z.sugar.Errorw(msg, keysAndValues...) }
