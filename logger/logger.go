package logger

import (
	"context"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the structured logger used across the demos.
// It is satisfied by *SugaredLogger, which wraps zap's sugared logger.
type Logger interface {
	Debugw(msg string, keysAndValues ...any)
	Infow(msg string, keysAndValues ...any)
	Warnw(msg string, keysAndValues ...any)
	Errorw(msg string, keysAndValues ...any)
	Sync() error

	DebugwCtx(ctx context.Context, msg string, keysAndValues ...any)
	InfowCtx(ctx context.Context, msg string, keysAndValues ...any)
	WarnwCtx(ctx context.Context, msg string, keysAndValues ...any)
	ErrorwCtx(ctx context.Context, msg string, keysAndValues ...any)
}

type SugaredLogger struct {
	*zap.SugaredLogger
}

// New builds a logger for the given level ("debug", "info", "warn", "error").
// format selects the encoder: "json" or "console" (default).
func New(level, format string) (Logger, error) {
	cfg := zap.NewProductionConfig()

	cfg.Encoding = "console"
	if format == "json" {
		cfg.Encoding = "json"
	}
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncoderConfig.EncodeLevel = zapcore.LowercaseLevelEncoder
	cfg.EncoderConfig.MessageKey = "message"
	cfg.EncoderConfig.LevelKey = "level"
	cfg.EncoderConfig.TimeKey = "timestamp"
	cfg.EncoderConfig.CallerKey = "caller"
	cfg.EncoderConfig.StacktraceKey = "stacktrace"
	// REPL output goes to stdout, keep logs out of the way.
	cfg.OutputPaths = []string{"stderr"}

	cfg.Level = zap.NewAtomicLevelAt(ParseLevel(level))

	zapLogger, err := cfg.Build()
	if err != nil {
		return nil, err
	}

	return &SugaredLogger{SugaredLogger: zapLogger.Sugar()}, nil
}

// ParseLevel maps a level name to a zap level, defaulting to info.
func ParseLevel(level string) zapcore.Level {
	switch level {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func (l *SugaredLogger) DebugwCtx(ctx context.Context, msg string, keysAndValues ...any) {
	l.Debugw(msg, append(FieldsFromContext(ctx), keysAndValues...)...)
}

func (l *SugaredLogger) InfowCtx(ctx context.Context, msg string, keysAndValues ...any) {
	l.Infow(msg, append(FieldsFromContext(ctx), keysAndValues...)...)
}

func (l *SugaredLogger) WarnwCtx(ctx context.Context, msg string, keysAndValues ...any) {
	l.Warnw(msg, append(FieldsFromContext(ctx), keysAndValues...)...)
}

func (l *SugaredLogger) ErrorwCtx(ctx context.Context, msg string, keysAndValues ...any) {
	l.Errorw(msg, append(FieldsFromContext(ctx), keysAndValues...)...)
}

// NopLogger returns a logger that discards everything.
func NopLogger() Logger {
	return &SugaredLogger{SugaredLogger: zap.NewNop().Sugar()}
}
