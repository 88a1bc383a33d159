package logger

import (
	"context"
	"os"
	"runtime/debug"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is a structured JSON logger. Every entry carries the service name, hostname,
// an action tag and the request id found in the context.
type Logger struct {
	service string
	zl      *zap.Logger
}

// NewLogger creates a logger for the service at INFO level.
func NewLogger(service string) *Logger {
	return New(service, "info")
}

// New creates a logger for the service writing to stdout at the given level
// (debug, info, warn, error). Unknown levels fall back to info.
func New(service, level string) *Logger {
	return NewWithCore(service, zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig()),
		zapcore.Lock(os.Stdout),
		parseLevel(level),
	))
}

// NewWithCore builds a logger on top of an arbitrary zap core (tests use an observer core).
func NewWithCore(service string, core zapcore.Core) *Logger {
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}

	zl := zap.New(core).With(
		zap.String("service", service),
		zap.String("hostname", hostname),
	)
	return &Logger{service: service, zl: zl}
}

// NewNop returns a logger that discards everything.
func NewNop() *Logger {
	return &Logger{zl: zap.NewNop()}
}

// Sync flushes buffered entries.
func (logger *Logger) Sync() {
	_ = logger.zl.Sync()
}

func encoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		TimeKey:        "timestamp",
		LevelKey:       "level",
		MessageKey:     "message",
		NameKey:        zapcore.OmitKey,
		CallerKey:      zapcore.OmitKey,
		StacktraceKey:  zapcore.OmitKey,
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.CapitalLevelEncoder,
		EncodeTime:     utcRFC3339,
		EncodeDuration: zapcore.MillisDurationEncoder,
	}
}

func utcRFC3339(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
	zapcore.RFC3339TimeEncoder(t.UTC(), enc)
}

func parseLevel(level string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// Define an unexported type for context keys.
type ctxKey string

// requestIDKey is the context key for the request ID.
const requestIDKey ctxKey = "request_id"

// WithRequestID returns a context carrying a request id.
func (logger *Logger) WithRequestID(ctx context.Context, rid string) context.Context {
	return context.WithValue(ctx, requestIDKey, rid)
}

// RequestIDFrom returns the request id saved in the context, if any.
func RequestIDFrom(ctx context.Context) string {
	if v := ctx.Value(requestIDKey); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

func (logger *Logger) fields(ctx context.Context, action string, details any) []zap.Field {
	fields := []zap.Field{
		zap.String("action", action),
		zap.String("request_id", RequestIDFrom(ctx)),
	}
	if details != nil {
		fields = append(fields, zap.Any("details", details))
	}
	return fields
}

// -- Logger helper functions --

func (logger *Logger) Info(ctx context.Context, action, msg string, details any) {
	logger.zl.Info(msg, logger.fields(ctx, action, details)...)
}

func (logger *Logger) Debug(ctx context.Context, action, msg string, details any) {
	logger.zl.Debug(msg, logger.fields(ctx, action, details)...)
}

func (logger *Logger) Warn(ctx context.Context, action, msg string, details any) {
	logger.zl.Warn(msg, logger.fields(ctx, action, details)...)
}

// Error logs err together with the current goroutine's stack.
func (logger *Logger) Error(ctx context.Context, action, msg string, err error) {
	errMsg := "unknown error"
	if err != nil {
		errMsg = err.Error()
	}
	fields := append(logger.fields(ctx, action, nil), zap.Dict("error",
		zap.String("msg", errMsg),
		zap.String("stack", string(debug.Stack())),
	))
	logger.zl.Error(msg, fields...)
}
